// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/commands"
	argscmd "github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/commands/args"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/commands/completions"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/commands/goal"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/commands/markers"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/commands/version"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog/log"
)

// ErrSetup indicates a failure handling the global flags.
const ErrSetup errors.Kind = "failed to setup tfgoal"

// handle configures the CLI from the global flags and returns the executor
// of the parsed command.
func (c *CLI) handle(kctx *kong.Context) (commands.Executor, error) {
	parsedArgs := c.input

	err := ConfigureLogging(parsedArgs.LogLevel, parsedArgs.LogFmt,
		parsedArgs.LogDestination, c.state.stdout, c.state.stderr)
	if err != nil {
		return nil, errors.E(ErrSetup, err)
	}

	command := kctx.Command()

	switch command {
	case "version":
		return &version.Spec{
			Version: c.version,
			Stdout:  c.state.stdout,
		}, nil
	case "install-completions":
		return &completions.Spec{
			Installer: parsedArgs.InstallCompletions,
			KongCtx:   kctx,
		}, nil
	}

	err = expandHome(
		&parsedArgs.Chdir,
		&parsedArgs.Execute.Config,
		&parsedArgs.Execute.ContinuationFile,
		&parsedArgs.Execute.LogFile,
		&parsedArgs.Destroy.Config,
		&parsedArgs.Destroy.LogFile,
		&parsedArgs.Args.Config,
		&parsedArgs.Markers.File,
	)
	if err != nil {
		return nil, err
	}

	if err := c.setupWorkingDir(); err != nil {
		return nil, err
	}

	logger := log.With().
		Str("action", "tui.handle()").
		Str("cmd", command).
		Str("workingDir", c.state.wd).
		Logger()

	logger.Debug().Msg("Handle command.")

	switch command {
	case "execute":
		return &goal.Spec{
			Mode:             goal.Execute,
			WorkingDir:       c.state.wd,
			ConfigFile:       parsedArgs.Execute.Config,
			Continuation:     parsedArgs.Execute.Continuation,
			ContinuationFile: parsedArgs.Execute.ContinuationFile,
			LogURL:           parsedArgs.Execute.LogURL,
			LogFile:          parsedArgs.Execute.LogFile,
			Output:           parsedArgs.Execute.Output,
			Stdout:           c.state.stdout,
			Stderr:           c.state.stderr,
		}, nil
	case "destroy":
		return &goal.Spec{
			Mode:       goal.Destroy,
			WorkingDir: c.state.wd,
			ConfigFile: parsedArgs.Destroy.Config,
			LogURL:     parsedArgs.Destroy.LogURL,
			LogFile:    parsedArgs.Destroy.LogFile,
			Output:     parsedArgs.Destroy.Output,
			Stdout:     c.state.stdout,
			Stderr:     c.state.stderr,
		}, nil
	case "args <action>":
		return &argscmd.Spec{
			WorkingDir: c.state.wd,
			ConfigFile: parsedArgs.Args.Config,
			Action:     parsedArgs.Args.Action,
			AsJSON:     parsedArgs.Args.AsJSON,
			Stdout:     c.state.stdout,
		}, nil
	case "markers", "markers <file>":
		return &markers.Spec{
			WorkingDir: c.state.wd,
			File:       parsedArgs.Markers.File,
			Stdin:      c.state.stdin,
			Stdout:     c.state.stdout,
		}, nil
	}

	return nil, errors.E(errors.ErrInternal, "unexpected command sequence %q", command)
}

// expandHome expands a leading ~ on each of the path flags.
func expandHome(paths ...*string) error {
	for _, p := range paths {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return errors.E(ErrSetup, err, "expanding %q", *p)
		}
		*p = expanded
	}
	return nil
}

// setupWorkingDir resolves the working directory from the process (or the
// one set with WithWorkingDir) and the --chdir flag.
func (c *CLI) setupWorkingDir() error {
	if c.state.wd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.E(ErrSetup, err, "getting workdir")
		}
		c.state.wd = wd
	}

	if chdir := c.input.Chdir; chdir != "" {
		if !filepath.IsAbs(chdir) {
			chdir = filepath.Join(c.state.wd, chdir)
		}
		st, err := os.Stat(chdir)
		if err != nil {
			return errors.E(ErrSetup, err, "changing working dir to %s", c.input.Chdir)
		}
		if !st.IsDir() {
			return errors.E(ErrSetup, "changing working dir to %s: not a directory", c.input.Chdir)
		}
		c.state.wd = chdir
	}

	wd, err := filepath.EvalSymlinks(c.state.wd)
	if err != nil {
		return errors.E(ErrSetup, err, "evaluating symlinks on working dir: %s", c.state.wd)
	}
	c.state.wd = wd
	return nil
}
