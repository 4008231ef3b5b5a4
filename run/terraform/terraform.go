// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package terraform executes the actions of a goal registration with the
// terraform (or a compatible) binary.
package terraform

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/config"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	runpkg "github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/run"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/tf"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/versions"
	"github.com/rs/zerolog/log"
)

// ErrVersion indicates the binary does not satisfy the required version.
const ErrVersion errors.Kind = "terraform version check error"

// Runner runs terraform actions for a registration.
type Runner struct {
	// Registration is the goal configuration. It is never modified.
	Registration *config.Registration

	// WorkingDir for the commands.
	WorkingDir string

	// Log receives the raw output of the commands.
	Log io.Writer
}

// NewRunner creates a runner executing inside the registration directory of
// projectRoot.
func NewRunner(reg *config.Registration, projectRoot string, logw io.Writer) *Runner {
	return &Runner{
		Registration: reg,
		WorkingDir:   reg.Dir(projectRoot),
		Log:          logw,
	}
}

// Name returns the CLI name for this runner.
func (r *Runner) Name() string {
	return filepath.Base(r.Registration.Binary())
}

// Run executes the action and blocks until it finishes.
func (r *Runner) Run(ctx context.Context, action tf.Action) (runpkg.Result, error) {
	cmd := runpkg.Cmd{
		Path: r.Registration.Binary(),
		Args: tf.CommandArgs(action, r.Registration),
		Dir:  r.WorkingDir,
		Env:  r.Registration.EnvVars,
		Log:  r.Log,
	}

	log.Debug().
		Str("action", "terraform.Runner.Run()").
		Str("tf_action", string(action)).
		Str("dir", r.WorkingDir).
		Msg("running terraform")

	return runpkg.Exec(ctx, cmd)
}

// Version returns the semantic version string of the binary, or an empty
// string if it could not be determined.
func (r *Runner) Version(ctx context.Context) string {
	environ := runpkg.MergeEnv(os.Environ(), r.Registration.EnvVars)
	return runpkg.ResolveVersion(ctx, environ, r.WorkingDir, r.Registration.Binary())
}

// CheckVersion checks the binary version against the registration
// required_version constraint. It is a no-op if no constraint is set.
func (r *Runner) CheckVersion(ctx context.Context) error {
	vconstraint := r.Registration.RequiredVersion
	if vconstraint == "" {
		return nil
	}

	logger := log.With().
		Str("action", "terraform.Runner.CheckVersion()").
		Str("constraint", vconstraint).
		Logger()

	version := r.Version(ctx)
	if version == "" {
		return errors.E(ErrVersion, "unable to detect the version of %s", r.Name())
	}

	logger.Trace().Str("version", version).Msg("checking version constraint")

	err := versions.Check(r.Name(), version, vconstraint, r.Registration.AllowPrereleases)
	if err != nil {
		return errors.E(ErrVersion, err)
	}
	return nil
}
