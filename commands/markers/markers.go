// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package markers provides the markers command, which reports the phases
// found in a raw log carrying legacy `phase:<name>` lines.
package markers

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/exit"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/printer"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/progress"
)

// Spec represents the markers command specification.
type Spec struct {
	WorkingDir string

	// File is the raw log. Empty or "-" reads from Stdin.
	File string

	Stdin  io.Reader
	Stdout io.Writer
}

// Name returns the name of the command.
func (s *Spec) Name() string { return "markers" }

// Exec scans the log and prints the label of each phase marker found.
func (s *Spec) Exec(context.Context) (exit.Status, error) {
	r := s.Stdin
	if s.File != "" && s.File != "-" {
		fname := s.File
		if !filepath.IsAbs(fname) {
			fname = filepath.Join(s.WorkingDir, fname)
		}
		f, err := os.Open(fname)
		if err != nil {
			return exit.Failed, errors.E(err, "opening log")
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	events := progress.NewStream(0)
	reported := make(chan struct{})
	go func() {
		progress.Report(events, printer.NewPrinter(s.Stdout))
		close(reported)
	}()

	err := progress.ScanMarkers(r, events)
	events.Close()
	<-reported

	if err != nil {
		return exit.Failed, errors.E(err, "reading log")
	}
	return exit.OK, nil
}
