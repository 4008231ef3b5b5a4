// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package run executes the IaC binary as a subprocess.
package run

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	// ErrFailed represents the error when the execution fails, whatever the reason.
	ErrFailed errors.Kind = "execution failed"

	// ErrCommandNotFound represents the error when the command cannot be found
	// in the system.
	ErrCommandNotFound errors.Kind = "command not found"
)

// Cmd describes a command to be executed.
type Cmd struct {
	Path string   // Path is the command path or name looked up in PATH.
	Args []string // Args is the command arguments.
	Dir  string   // Dir is the working directory.

	// Env is merged over the ambient process environment.
	// Keys defined here win.
	Env map[string]string

	// Log receives every stdout/stderr line as soon as it is read.
	// May be nil.
	Log io.Writer
}

func (c Cmd) String() string {
	return c.Path + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of a finished command.
type Result struct {
	// ExitCode is -1 when the process could not be started.
	ExitCode int
	Stdout   string
	Stderr   string
}

// Exec runs the command and blocks until it exits.
// Output is streamed line by line to cmd.Log while also being captured in the
// returned Result. A non-zero exit returns an error of kind ErrFailed together
// with the Result; a missing binary returns ErrCommandNotFound.
func Exec(ctx context.Context, spec Cmd) (Result, error) {
	logger := log.With().
		Str("action", "run.Exec()").
		Str("cmd", spec.String()).
		Str("dir", spec.Dir).
		Logger()

	environ := MergeEnv(os.Environ(), spec.Env)

	cmdPath, err := LookPath(CommandPath(spec.Dir, spec.Path), environ)
	if err != nil {
		return Result{ExitCode: -1}, errors.E(ErrCommandNotFound, err, "running `%s`", spec)
	}

	cmd := exec.CommandContext(ctx, cmdPath, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = environ

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{ExitCode: -1}, errors.E(ErrFailed, err, "creating stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{ExitCode: -1}, errors.E(ErrFailed, err, "creating stderr pipe")
	}

	logger.Debug().Msg("running")

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, errors.E(ErrFailed, err, "starting `%s`", spec)
	}

	sink := &lineSink{w: spec.Log}
	var outbuf, errbuf bytes.Buffer

	g := errgroup.Group{}
	g.Go(func() error { return sink.copyLines(&outbuf, stdout) })
	g.Go(func() error { return sink.copyLines(&errbuf, stderr) })

	// pipes must be drained before Wait closes them.
	copyErr := g.Wait()
	waitErr := cmd.Wait()

	res := Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   outbuf.String(),
		Stderr:   errbuf.String(),
	}

	logger.Debug().Int("exit_code", res.ExitCode).Msg("finished")

	if waitErr != nil {
		return res, errors.E(ErrFailed, waitErr, "running `%s`", spec)
	}
	if copyErr != nil {
		return res, errors.E(ErrFailed, copyErr, "reading output of `%s`", spec)
	}
	return res, nil
}

// lineSink serializes whole lines coming from stdout and stderr into a
// single writer.
type lineSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *lineSink) copyLines(capture *bytes.Buffer, r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			capture.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}
			s.write(line)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *lineSink) write(line string) {
	if s.w == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.w, line); err != nil {
		log.Debug().Err(err).Msg("failed to write to log sink")
	}
}
