// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package exit provides standard exit codes for tfgoal.
package exit

// Status represents the exit status of a command.
type Status int

// Standard exit codes of tfgoal
const (
	OK Status = iota
	Failed
	WaitingForApproval
)
