// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package tfgoal_test

import (
	"testing"

	"github.com/hashicorp/go-version"
	tfgoal "github.com/ipcrmdemo/ipcrmdemo-sdm-sub000"
	"github.com/madlambda/spells/assert"
)

func TestVersionIsSemver(t *testing.T) {
	t.Parallel()

	v := tfgoal.Version()
	_, err := version.NewSemver(v)
	assert.NoError(t, err, "version %q", v)
	assert.EqualStrings(t, v, tfgoal.Version())
}
