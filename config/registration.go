// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package config defines the Terraform goal registration and how it is
// loaded from configuration files.
package config

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	"github.com/mitchellh/go-homedir"
)

// DefaultBinary is the IaC binary used when the registration sets none.
const DefaultBinary = "terraform"

// ErrSchema indicates the registration is not valid.
const ErrSchema errors.Kind = "registration schema error"

// Registration is the user supplied configuration of a Terraform goal.
// It is supplied once per task instance and never modified afterwards.
type Registration struct {
	// BaseLocation is the working directory, relative to the project root.
	BaseLocation string `json:"base_location,omitempty" yaml:"base_location" toml:"base_location"`

	// EnvVars are merged over the process environment.
	EnvVars map[string]string `json:"env,omitempty" yaml:"env" toml:"env"`

	// Args are passed verbatim to plan, apply and destroy.
	Args []Arg `json:"args,omitempty" yaml:"args" toml:"args"`

	// Vars are rendered as `-var name=value`.
	Vars []Var `json:"vars,omitempty" yaml:"vars" toml:"vars"`

	// VarFiles are rendered as `-var-file=path`.
	VarFiles []string `json:"var_files,omitempty" yaml:"var_files" toml:"var_files"`

	// RunInit controls the init step. Nil means true.
	RunInit *bool `json:"run_init,omitempty" yaml:"run_init" toml:"run_init"`

	Workspace   string `json:"workspace,omitempty" yaml:"workspace" toml:"workspace"`
	AutoApprove bool   `json:"auto_approve,omitempty" yaml:"auto_approve" toml:"auto_approve"`

	// BinaryPath overrides DefaultBinary.
	BinaryPath string `json:"binary,omitempty" yaml:"binary" toml:"binary"`

	// RequiredVersion is an optional version constraint (eg.: ">= 1.5, < 2")
	// that the binary must satisfy.
	RequiredVersion string `json:"required_version,omitempty" yaml:"required_version" toml:"required_version"`

	// AllowPrereleases makes RequiredVersion match prerelease versions.
	AllowPrereleases bool `json:"required_version_allow_prereleases,omitempty" yaml:"required_version_allow_prereleases" toml:"required_version_allow_prereleases"`
}

// Arg is a CLI argument rendered as `flag` or `flag=value`.
type Arg struct {
	Flag  string  `json:"flag" yaml:"flag" toml:"flag"`
	Value *string `json:"value,omitempty" yaml:"value" toml:"value"`
}

// Var is a Terraform input variable.
type Var struct {
	Name  string  `json:"name" yaml:"name" toml:"name"`
	Value *string `json:"value,omitempty" yaml:"value" toml:"value"`
}

// String renders the argument.
func (a Arg) String() string {
	if a.Value == nil {
		return a.Flag
	}
	return a.Flag + "=" + *a.Value
}

// String renders the variable as name=value. A variable without value
// renders as name= (empty string value).
func (v Var) String() string {
	if v.Value == nil {
		return v.Name + "="
	}
	return v.Name + "=" + *v.Value
}

// ShouldRunInit tells if the init step must run. Init runs unless RunInit is
// explicitly set to false.
func (r *Registration) ShouldRunInit() bool {
	return r.RunInit == nil || *r.RunInit
}

// ShouldRunWorkspaceSelect tells if the workspace select step must run.
func (r *Registration) ShouldRunWorkspaceSelect() bool {
	return r.Workspace != ""
}

// Binary returns the IaC binary to execute.
func (r *Registration) Binary() string {
	if r.BinaryPath == "" {
		return DefaultBinary
	}
	return r.BinaryPath
}

// Dir returns the working directory of the goal inside projectRoot.
func (r *Registration) Dir(projectRoot string) string {
	if r.BaseLocation == "" {
		return projectRoot
	}
	return filepath.Join(projectRoot, filepath.FromSlash(r.BaseLocation))
}

// ExpandHome expands a leading ~ in the binary path and the var files.
func (r *Registration) ExpandHome() error {
	binary, err := homedir.Expand(r.BinaryPath)
	if err != nil {
		return errors.E(ErrSchema, err, "binary %q", r.BinaryPath)
	}
	r.BinaryPath = binary

	varFiles := make([]string, len(r.VarFiles))
	for i, f := range r.VarFiles {
		varFiles[i], err = homedir.Expand(f)
		if err != nil {
			return errors.E(ErrSchema, err, "var_files[%d] %q", i, f)
		}
	}
	if r.VarFiles != nil {
		r.VarFiles = varFiles
	}
	return nil
}

// Validate checks the registration for invalid values.
// All problems found are reported as an *errors.List.
func (r *Registration) Validate() error {
	errs := errors.L()
	if r.BaseLocation != "" {
		loc := filepath.ToSlash(r.BaseLocation)
		clean := path.Clean(loc)
		if path.IsAbs(loc) || filepath.IsAbs(r.BaseLocation) {
			errs.Append(errors.E(ErrSchema, "base_location %q must be relative to the project root", r.BaseLocation))
		} else if clean == ".." || strings.HasPrefix(clean, "../") {
			errs.Append(errors.E(ErrSchema, "base_location %q is outside the project root", r.BaseLocation))
		}
	}
	for i, arg := range r.Args {
		if arg.Flag == "" {
			errs.Append(errors.E(ErrSchema, "args[%d]: flag must not be empty", i))
		}
	}
	for i, v := range r.Vars {
		if v.Name == "" {
			errs.Append(errors.E(ErrSchema, "vars[%d]: name must not be empty", i))
		}
	}
	for i, f := range r.VarFiles {
		if f == "" {
			errs.Append(errors.E(ErrSchema, "var_files[%d]: path must not be empty", i))
		}
	}
	for name := range r.EnvVars {
		if name == "" || strings.ContainsAny(name, "=\x00") {
			errs.Append(errors.E(ErrSchema, "env: invalid variable name %q", name))
		}
	}
	if strings.ContainsAny(r.Workspace, " \t\n") {
		errs.Append(errors.E(ErrSchema, "workspace %q must not contain whitespace", r.Workspace))
	}
	return errs.AsError()
}
