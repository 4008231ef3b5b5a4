// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package config_test

import (
	"path/filepath"
	"testing"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/config"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	errtest "github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/test/errors"
	"github.com/madlambda/spells/assert"
)

func ptr[T any](v T) *T { return &v }

func TestRegistrationShouldRunInit(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name    string
		runInit *bool
		want    bool
	}{
		{name: "unset defaults to true", runInit: nil, want: true},
		{name: "explicit true", runInit: ptr(true), want: true},
		{name: "explicit false disables init", runInit: ptr(false), want: false},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			reg := config.Registration{RunInit: tc.runInit}
			assert.IsTrue(t, reg.ShouldRunInit() == tc.want)
		})
	}
}

func TestRegistrationShouldRunWorkspaceSelect(t *testing.T) {
	t.Parallel()

	reg := config.Registration{}
	assert.IsTrue(t, !reg.ShouldRunWorkspaceSelect())

	reg.Workspace = "prod"
	assert.IsTrue(t, reg.ShouldRunWorkspaceSelect())
}

func TestRegistrationBinaryAndDir(t *testing.T) {
	t.Parallel()

	reg := config.Registration{}
	assert.EqualStrings(t, "terraform", reg.Binary())
	assert.EqualStrings(t, "/project", reg.Dir("/project"))

	reg.BinaryPath = "/usr/local/bin/tofu"
	reg.BaseLocation = "infra/prod"
	assert.EqualStrings(t, "/usr/local/bin/tofu", reg.Binary())
	assert.EqualStrings(t, filepath.Join("/project", "infra", "prod"), reg.Dir("/project"))
}

func TestArgAndVarRendering(t *testing.T) {
	t.Parallel()

	assert.EqualStrings(t, "-refresh=false", config.Arg{Flag: "-refresh", Value: ptr("false")}.String())
	assert.EqualStrings(t, "-compact-warnings", config.Arg{Flag: "-compact-warnings"}.String())
	assert.EqualStrings(t, "region=us-east-1", config.Var{Name: "region", Value: ptr("us-east-1")}.String())
	assert.EqualStrings(t, "region=", config.Var{Name: "region"}.String())
}

func TestRegistrationValidate(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name    string
		reg     config.Registration
		wantErr bool
	}{
		{name: "empty registration is valid", reg: config.Registration{}},
		{
			name: "complete registration is valid",
			reg: config.Registration{
				BaseLocation: "infra",
				EnvVars:      map[string]string{"TF_IN_AUTOMATION": "1"},
				Args:         []config.Arg{{Flag: "-lock-timeout", Value: ptr("5m")}},
				Vars:         []config.Var{{Name: "region", Value: ptr("us-east-1")}},
				VarFiles:     []string{"prod.tfvars"},
				Workspace:    "prod",
			},
		},
		{name: "absolute base location", reg: config.Registration{BaseLocation: "/etc"}, wantErr: true},
		{name: "base location outside root", reg: config.Registration{BaseLocation: "../other"}, wantErr: true},
		{name: "empty arg flag", reg: config.Registration{Args: []config.Arg{{}}}, wantErr: true},
		{name: "empty var name", reg: config.Registration{Vars: []config.Var{{Value: ptr("x")}}}, wantErr: true},
		{name: "empty var file", reg: config.Registration{VarFiles: []string{""}}, wantErr: true},
		{name: "invalid env name", reg: config.Registration{EnvVars: map[string]string{"A=B": "x"}}, wantErr: true},
		{name: "workspace with spaces", reg: config.Registration{Workspace: "my ws"}, wantErr: true},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.reg.Validate()
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			errtest.AssertErrorList(t, err, []error{errors.E(config.ErrSchema)})
		})
	}
}
