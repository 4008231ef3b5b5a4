// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package completions provides the install-completions command.
package completions

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/exit"
	"github.com/willabides/kongplete"
)

// Spec represents the install-completions command specification.
type Spec struct {
	Installer kongplete.InstallCompletions
	KongCtx   *kong.Context
}

// Name returns the name of the command.
func (s *Spec) Name() string { return "install-completions" }

// Exec installs the shell completions.
func (s *Spec) Exec(_ context.Context) (exit.Status, error) {
	err := s.Installer.Run(s.KongCtx)
	if err != nil {
		return exit.Failed, errors.E(err, "installing shell completions")
	}
	return exit.OK, nil
}
