// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package goal provides the execute and destroy commands.
package goal

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/config"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/executor"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/exit"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/printer"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/progress"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/project"
	"github.com/rs/zerolog/log"
)

// Mode selects what the command drives the goal to.
type Mode string

// Available modes.
const (
	Execute Mode = "execute"
	Destroy Mode = "destroy"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// ErrContinuationFile indicates the continuation file could not be used.
const ErrContinuationFile errors.Kind = "continuation file error"

const progressBuffer = 16

// Spec represents the execute and destroy commands specification.
type Spec struct {
	Mode Mode

	// WorkingDir is used to locate the project root and relative paths.
	WorkingDir string
	ConfigFile string

	// Continuation is the token given inline. Mutually exclusive with
	// ContinuationFile.
	Continuation string

	// ContinuationFile holds the token between invocations. It is written
	// when the goal suspends and removed when the goal terminates.
	ContinuationFile string

	LogURL  string
	LogFile string
	Output  string

	Stdout io.Writer
	Stderr io.Writer
}

// Name returns the name of the command.
func (s *Spec) Name() string { return string(s.Mode) }

// Exec loads the registration, runs the goal and reports its result.
// The exit status is derived from the result state.
func (s *Spec) Exec(ctx context.Context) (exit.Status, error) {
	logger := log.With().
		Str("action", "commands.goal.Exec()").
		Str("mode", string(s.Mode)).
		Str("workingDir", s.WorkingDir).
		Logger()

	if s.Continuation != "" && s.ContinuationFile != "" {
		return exit.Failed, errors.E(ErrContinuationFile,
			"continuation and continuation file are mutually exclusive")
	}

	reg, err := config.LoadFrom(s.abs(s.ConfigFile))
	if err != nil {
		return exit.Failed, errors.E(err, "loading goal registration")
	}

	root, err := project.FindRoot(s.WorkingDir)
	if err != nil {
		return exit.Failed, err
	}

	token := s.Continuation
	if s.ContinuationFile != "" {
		token, err = readContinuation(s.abs(s.ContinuationFile))
		if err != nil {
			return exit.Failed, err
		}
	}

	logw, closeLog, err := s.logWriter()
	if err != nil {
		return exit.Failed, err
	}
	defer closeLog()

	events := progress.NewStream(progressBuffer)
	reported := make(chan struct{})
	go func() {
		progress.Report(events, printer.NewPrinter(s.Stderr))
		close(reported)
	}()

	req := executor.Request{
		Registration: &reg,
		Continuation: token,
		LogURL:       s.LogURL,
		ProjectRoot:  root.Dir,
		Log:          logw,
		Progress:     events,
	}

	goalDir, ok := project.FriendlyFmtDir(root.Dir, s.WorkingDir, reg.Dir(root.Dir))
	if !ok {
		goalDir = reg.Dir(root.Dir)
	}

	logger.Debug().
		Str("root", root.Dir).
		Bool("repo", root.IsRepo).
		Str("goalDir", goalDir).
		Bool("continuation", token != "").
		Msg("running goal")

	var res executor.Result
	switch s.Mode {
	case Destroy:
		res = executor.Destroy(ctx, req)
	default:
		res = executor.Execute(ctx, req)
	}

	events.Close()
	<-reported

	if s.ContinuationFile != "" {
		if err := saveContinuation(s.abs(s.ContinuationFile), res); err != nil {
			return exit.Failed, err
		}
	}

	if err := s.report(res); err != nil {
		return exit.Failed, err
	}
	return Status(res), nil
}

// Status returns the exit status of a goal result.
func Status(res executor.Result) exit.Status {
	switch res.Status {
	case executor.Succeeded:
		return exit.OK
	case executor.WaitingForApproval:
		return exit.WaitingForApproval
	default:
		return exit.Failed
	}
}

func (s *Spec) abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.WorkingDir, path)
}

func (s *Spec) logWriter() (io.Writer, func(), error) {
	if s.LogFile == "" {
		return s.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(s.abs(s.LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, errors.E(err, "opening log file")
	}
	closeFn := func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Str("file", f.Name()).Msg("closing log file")
		}
	}
	return io.MultiWriter(s.Stderr, f), closeFn, nil
}

func (s *Spec) report(res executor.Result) error {
	if s.Output == OutputJSON {
		enc := json.NewEncoder(s.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return errors.E(err, "encoding result")
		}
		return nil
	}

	p := printer.NewPrinter(s.Stdout)
	switch res.Status {
	case executor.Succeeded:
		p.Successln("Goal succeeded")
	case executor.WaitingForApproval:
		p.Warnln("Plan succeeded, waiting for approval")
		if s.ContinuationFile == "" && res.Continuation != nil {
			encoded, err := res.Continuation.Encode()
			if err != nil {
				return errors.E(err, "encoding continuation token")
			}
			p.Linkln("Continuation", encoded)
		}
	default:
		p.Errorln(res.Message)
	}
	for _, link := range res.ExternalURLs {
		p.Linkln(link.Label, link.URL)
	}
	return nil
}

func readContinuation(fname string) (string, error) {
	data, err := os.ReadFile(fname)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.E(ErrContinuationFile, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func saveContinuation(fname string, res executor.Result) error {
	if res.Continuation == nil {
		err := os.Remove(fname)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return errors.E(ErrContinuationFile, err)
		}
		if res.Message == executor.InvalidContinuationMessage {
			log.Warn().
				Str("action", "commands.goal.saveContinuation()").
				Str("file", fname).
				Msg("removed invalid continuation token, the goal will plan again")
		}
		return nil
	}
	encoded, err := res.Continuation.Encode()
	if err != nil {
		return errors.E(ErrContinuationFile, err)
	}
	if err := os.WriteFile(fname, []byte(encoded+"\n"), 0o600); err != nil {
		return errors.E(ErrContinuationFile, err)
	}
	return nil
}
