// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package tui implements the tfgoal command-line interface.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tfgoal "github.com/ipcrmdemo/ipcrmdemo-sdm-sub000"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/exit"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/printer"
	"github.com/posener/complete"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/willabides/kongplete"
)

// ErrUnknownLogDest indicates an unsupported log destination.
const ErrUnknownLogDest errors.Kind = "unknown log destination"

const (
	name        = "tfgoal"
	description = "Resumable Terraform plan, approval and apply."
)

const (
	defaultLogLevel = "warn"
	defaultLogFmt   = "console"
	defaultLogDest  = "stderr"
)

// CLI is the tfgoal command-line interface.
type CLI struct {
	version string
	state   state

	printers struct {
		stdout *printer.Printer
		stderr *printer.Printer
	}

	kongExit       bool
	kongExitStatus int

	input  *Spec
	parser *kong.Kong
}

type state struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	wd     string
}

// NewCLI creates a new CLI instance. The opts options modify the default CLI behavior.
func NewCLI(opts ...Option) (*CLI, error) {
	c := &CLI{
		version: tfgoal.Version(),
		state: state{
			stdin:  os.Stdin,
			stdout: os.Stdout,
			stderr: os.Stderr,
		},
		input: &Spec{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	parser, err := kong.New(c.input,
		kong.Name(name),
		kong.Description(description),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Exit(func(status int) {
			// Avoid kong aborting entire process since we designed CLI as a lib
			c.kongExit = true
			c.kongExitStatus = status
		}),
		kong.Writers(c.state.stdout, c.state.stderr),
	)
	if err != nil {
		return nil, errors.E(errors.ErrInternal, err, "creating cli parser")
	}
	c.parser = parser

	kongplete.Complete(c.parser,
		kongplete.WithPredictor("file", complete.PredictFiles("*")),
	)

	c.printers.stdout = printer.NewPrinter(c.state.stdout)
	c.printers.stderr = printer.NewPrinter(c.state.stderr)
	return c, nil
}

// Version of the CLI.
func (c *CLI) Version() string { return c.version }

// WorkingDir returns the working dir after flags are handled.
func (c *CLI) WorkingDir() string { return c.state.wd }

// Exec parses args and executes the selected command.
// Only flags and commands must be on the args slice.
//
// Results are written on stdout and errors on stderr. Exec never aborts the
// process: it returns the exit status the process should finish with.
func (c *CLI) Exec(ctx context.Context, args []string) exit.Status {
	err := ConfigureLogging(defaultLogLevel, defaultLogFmt, defaultLogDest,
		c.state.stdout, c.state.stderr)
	if err != nil {
		c.printers.stderr.ErrorWithDetailsln("configuring logging", err)
		return exit.Failed
	}

	if len(args) == 0 {
		// WHY: avoid default kong error, print help
		args = []string{"--help"}
	}

	kctx, err := c.parser.Parse(args)
	if c.kongExit && c.kongExitStatus == 0 {
		return exit.OK
	}

	// When we run tfgoal --version the kong parser just fails
	// since no subcommand was provided.
	// So we check if the flag for version is present before checking the error.
	if c.input.VersionFlag {
		fmt.Fprintln(c.state.stdout, c.version)
		return exit.OK
	}

	if err != nil {
		c.printers.stderr.ErrorWithDetailsln("parsing command line", err)
		return exit.Failed
	}

	cmd, err := c.handle(kctx)
	if err != nil {
		c.printers.stderr.ErrorWithDetailsln("setting up tfgoal", err)
		return exit.Failed
	}

	status, err := cmd.Exec(ctx)
	if err != nil {
		c.printers.stderr.ErrorWithDetailsln(fmt.Sprintf("executing %q", cmd.Name()), err)
		if status == exit.OK {
			status = exit.Failed
		}
	}
	return status
}

// ConfigureLogging configures tfgoal global logging.
func ConfigureLogging(logLevel, logFmt, logdest string, stdout, stderr io.Writer) error {
	var output io.Writer

	switch logdest {
	case "stdout":
		output = stdout
	case "stderr":
		output = stderr
	default:
		return errors.E(ErrUnknownLogDest, "%q", logdest)
	}

	zloglevel, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		zloglevel = zerolog.FatalLevel
	}

	zerolog.SetGlobalLevel(zloglevel)

	switch logFmt {
	case "json":
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(output)
	case "text": // no color
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: output, NoColor: true, TimeFormat: time.RFC3339})
	default: // default: console mode using color
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: output, NoColor: false, TimeFormat: time.RFC3339})
	}
	return nil
}
