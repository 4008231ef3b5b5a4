// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package printer defines functionality for "printing" text to an io.Writer
// e.g. os.Stdout, os.Stderr etc. with a consistent style for errors,
// warnings, progress and goal results.
package printer
