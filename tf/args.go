// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package tf resolves a goal registration into the argument lists given to
// the Terraform (or compatible) binary.
package tf

import (
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/config"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
)

// ErrUnknownAction indicates an action name that is not supported.
const ErrUnknownAction errors.Kind = "unknown terraform action"

// Action is a Terraform subcommand driven by the goal.
type Action string

// Supported actions.
const (
	Init            Action = "init"
	WorkspaceSelect Action = "workspace-select"
	Plan            Action = "plan"
	Apply           Action = "apply"
	Destroy         Action = "destroy"
)

// Actions lists all supported actions in lifecycle order.
var Actions = []Action{Init, WorkspaceSelect, Plan, Apply, Destroy}

// ParseAction parses an action name.
func ParseAction(name string) (Action, error) {
	for _, a := range Actions {
		if string(a) == name {
			return a, nil
		}
	}
	return "", errors.E(ErrUnknownAction, "%q", name)
}

// BuildArgs returns the built-in flags of action followed by the
// registration args, in declaration order.
// Apply always starts with -auto-approve and destroy with -force.
func BuildArgs(action Action, reg *config.Registration) []string {
	var args []string
	switch action {
	case Apply:
		args = append(args, "-auto-approve")
	case Destroy:
		args = append(args, "-force")
	}
	for _, arg := range reg.Args {
		args = append(args, arg.String())
	}
	return args
}

// BuildVars renders the registration variables. All `-var name=value` pairs
// come first, in input order, followed by all `-var-file=path` entries.
func BuildVars(reg *config.Registration) []string {
	vars := make([]string, 0, 2*len(reg.Vars)+len(reg.VarFiles))
	for _, v := range reg.Vars {
		vars = append(vars, "-var", v.String())
	}
	for _, f := range reg.VarFiles {
		vars = append(vars, "-var-file="+f)
	}
	return vars
}

// CommandArgs returns the full argument list (subcommand included) to run
// action with the binary.
func CommandArgs(action Action, reg *config.Registration) []string {
	switch action {
	case Init:
		return append([]string{"init"}, BuildVars(reg)...)
	case WorkspaceSelect:
		return []string{"workspace", "select", reg.Workspace}
	}
	args := []string{string(action)}
	args = append(args, BuildArgs(action, reg)...)
	return append(args, BuildVars(reg)...)
}
