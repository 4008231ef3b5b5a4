// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package commands

import (
	"context"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/exit"
)

// Executor is a runnable command.
type Executor interface {
	// Name of the command.
	Name() string
	// Exec executes the command. The returned status is the exit status of
	// the process when err is nil.
	Exec(ctx context.Context) (exit.Status, error)
}
