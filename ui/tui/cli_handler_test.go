// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"path/filepath"
	"testing"

	errtest "github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/test/errors"
	"github.com/madlambda/spells/assert"
	"github.com/mitchellh/go-homedir"
)

func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := homedir.Dir()
	assert.NoError(t, err)

	config := "~/goals/prod.hcl"
	logfile := "~"
	relative := "goal.token"
	empty := ""

	assert.NoError(t, expandHome(&config, &logfile, &relative, &empty))
	assert.EqualStrings(t, filepath.Join(home, "goals", "prod.hcl"), config)
	assert.EqualStrings(t, home, logfile)
	assert.EqualStrings(t, "goal.token", relative)
	assert.EqualStrings(t, "", empty)

	other := "~someone/goal.hcl"
	errtest.AssertIsKind(t, expandHome(&other), ErrSetup)
}
