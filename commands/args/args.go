// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package args provides the args command, which prints the command line a
// goal action would run.
package args

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/alessio/shellescape"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/config"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/exit"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/tf"
)

// Spec represents the args command specification.
type Spec struct {
	WorkingDir string
	ConfigFile string
	Action     string
	AsJSON     bool
	Stdout     io.Writer
}

// Name returns the name of the command.
func (s *Spec) Name() string { return "args" }

// Exec prints the argument list of the action, shell quoted or as a JSON
// list. Values are printed as is, so the output may contain secrets passed
// as variables.
func (s *Spec) Exec(context.Context) (exit.Status, error) {
	action, err := tf.ParseAction(s.Action)
	if err != nil {
		return exit.Failed, err
	}

	fname := s.ConfigFile
	if !filepath.IsAbs(fname) {
		fname = filepath.Join(s.WorkingDir, fname)
	}
	reg, err := config.LoadFrom(fname)
	if err != nil {
		return exit.Failed, errors.E(err, "loading goal registration")
	}

	cmdline := append([]string{reg.Binary()}, tf.CommandArgs(action, &reg)...)
	if s.AsJSON {
		data, err := json.Marshal(cmdline)
		if err != nil {
			return exit.Failed, errors.E(errors.ErrInternal, err, "encoding arguments")
		}
		fmt.Fprintln(s.Stdout, string(data))
		return exit.OK, nil
	}

	fmt.Fprintln(s.Stdout, shellescape.QuoteCommand(cmdline))
	return exit.OK, nil
}
