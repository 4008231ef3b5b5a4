// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package tui

import "io"

// Option modifies the default CLI behavior.
type Option func(*CLI) error

// WithVersion is an option to modify the CLI version.
// Default is `tfgoal.Version()`.
func WithVersion(v string) Option {
	return func(c *CLI) error {
		c.version = v
		return nil
	}
}

// WithStdin is an option to modify the CLI stdin channel.
func WithStdin(r io.Reader) Option {
	return func(c *CLI) error {
		c.state.stdin = r
		return nil
	}
}

// WithStdout is an option to modify the CLI stdout channel.
func WithStdout(w io.Writer) Option {
	return func(c *CLI) error {
		c.state.stdout = w
		return nil
	}
}

// WithStderr is an option to modify the CLI stderr channel.
func WithStderr(w io.Writer) Option {
	return func(c *CLI) error {
		c.state.stderr = w
		return nil
	}
}

// WithWorkingDir is an option to set the working directory instead of the
// process one. The --chdir flag is relative to it.
func WithWorkingDir(dir string) Option {
	return func(c *CLI) error {
		c.state.wd = dir
		return nil
	}
}
