// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package tfgoal drives Terraform goals through plan, approval and apply.
// See the executor package for the state machine and cmd/tfgoal for the
// command line host.
package tfgoal

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version of tfgoal.
func Version() string {
	return strings.TrimSpace(version)
}
