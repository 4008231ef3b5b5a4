// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package version provides the version command.
package version

import (
	"context"
	"fmt"
	"io"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/exit"
)

// Spec represents the version command specification.
type Spec struct {
	Version string
	Stdout  io.Writer
}

// Name returns the name of the version command.
func (s *Spec) Name() string { return "version" }

// Exec executes the version command.
func (s *Spec) Exec(context.Context) (exit.Status, error) {
	fmt.Fprintln(s.Stdout, s.Version)
	return exit.OK, nil
}
