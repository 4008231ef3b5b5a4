// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package hooks implements the ordered pipeline of steps executed before
// the goal plans, applies or destroys.
package hooks

import (
	"context"
	"fmt"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/config"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/progress"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/run"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/tf"
	"github.com/rs/zerolog/log"
)

// Runner runs a terraform action. It is implemented by *terraform.Runner.
type Runner interface {
	Run(ctx context.Context, action tf.Action) (run.Result, error)
}

// Step is a named pre-execution step.
type Step struct {
	Name    string
	Action  tf.Action
	Phase   progress.Phase
	Enabled func(reg *config.Registration) bool
}

// PreExecution returns the pre-execution steps in execution order.
func PreExecution() []Step {
	return []Step{
		{
			Name:    "init",
			Action:  tf.Init,
			Phase:   progress.Init,
			Enabled: (*config.Registration).ShouldRunInit,
		},
		{
			Name:    "workspace select",
			Action:  tf.WorkspaceSelect,
			Phase:   progress.WorkspaceSelect,
			Enabled: (*config.Registration).ShouldRunWorkspaceSelect,
		},
	}
}

// FailureMessage is the user visible message of a failed step. It never
// includes the command output, which may contain secrets.
func FailureMessage(step string) string {
	return fmt.Sprintf("Failed to run %s! Output redacted due to secrets.", step)
}

// StepError is returned when a step fails.
// Its message is always FailureMessage(Step).
type StepError struct {
	Step     string
	ExitCode int
	Err      error
}

func (e *StepError) Error() string { return FailureMessage(e.Step) }

// Unwrap returns the underlying execution error.
func (e *StepError) Unwrap() error { return e.Err }

// Run runs each enabled step once, in order, stopping at the first failure
// which is returned as a *StepError. Each started step emits its phase on
// events.
func Run(ctx context.Context, runner Runner, reg *config.Registration, events progress.Stream) error {
	for _, step := range PreExecution() {
		logger := log.With().
			Str("action", "hooks.Run()").
			Str("step", step.Name).
			Logger()

		if !step.Enabled(reg) {
			logger.Debug().Msg("step disabled, skipping")
			continue
		}

		events.Emit(step.Phase)
		logger.Info().Msg(step.Phase.Label())

		res, err := runner.Run(ctx, step.Action)
		if err != nil {
			logger.Debug().
				Err(err).
				Int("exit_code", res.ExitCode).
				Msg("step failed")

			return &StepError{Step: step.Name, ExitCode: res.ExitCode, Err: err}
		}
	}
	return nil
}
