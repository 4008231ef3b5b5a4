// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package executor drives the Terraform goal state machine.
//
// A goal starts unplanned. Unless auto approve is configured, the first
// invocation runs a plan and suspends, returning a continuation token that
// the host persists. A later invocation given that token applies. Nothing is
// kept in memory between invocations: Execute is a function of the
// registration and the token only.
package executor

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/config"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/continuation"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/hooks"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/progress"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/run"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/run/terraform"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/tf"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Status of an execution result.
type Status string

// Result statuses.
const (
	Succeeded          Status = "succeeded"
	Failed             Status = "failed"
	WaitingForApproval Status = "waiting_for_approval"
)

// Labels of the external URLs.
const (
	PlanLogLabel    = "Plan Log"
	ApplyLogLabel   = "Apply Log"
	DestroyLogLabel = "Destroy Log"
)

// InvalidContinuationMessage is the result message for malformed tokens.
const InvalidContinuationMessage = "Invalid continuation state! The goal must be planned again."

// Link is an external URL shown by the host.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Result of one invocation. It is never modified after being returned.
type Result struct {
	Code         int                 `json:"code"`
	Status       Status              `json:"state"`
	Message      string              `json:"message,omitempty"`
	ExternalURLs []Link              `json:"external_urls,omitempty"`
	Continuation *continuation.Token `json:"continuation,omitempty"`
}

// Request holds everything an invocation depends on.
type Request struct {
	// Registration of the goal. Read only.
	Registration *config.Registration

	// Continuation is the raw token stored by the host, empty if none.
	Continuation string

	// LogURL is the URL of this invocation's log, as published by the host.
	LogURL string

	// ProjectRoot is the checkout the goal runs in.
	ProjectRoot string

	// Log receives the raw output of all commands. May be nil.
	Log io.Writer

	// Progress receives phase events. May be nil.
	Progress progress.Stream

	// InvocationID identifies this invocation in the logs. A random UUID is
	// used when empty.
	InvocationID string
}

// Execute runs the pre-execution steps and then plans or applies.
//
// It applies if the registration auto approves or the continuation token is
// planned. Otherwise it plans and, on success, returns a WaitingForApproval
// result carrying a planned token. Every failure is terminal for the
// invocation and its message never contains command output.
func Execute(ctx context.Context, req Request) Result {
	logger := log.With().
		Str("action", "executor.Execute()").
		Str("invocation", invocationID(req)).
		Str("root", req.ProjectRoot).
		Logger()

	token, err := continuation.Parse(req.Continuation)
	if err != nil {
		logger.Error().Err(err).Msg("rejecting continuation token")
		return Result{Code: 1, Status: Failed, Message: InvalidContinuationMessage}
	}

	runner := terraform.NewRunner(req.Registration, req.ProjectRoot, req.Log)
	if res, ok := prepare(ctx, logger, runner, req); !ok {
		return res
	}

	if req.Registration.AutoApprove || token.IsPlanned() {
		logger.Info().
			Bool("auto_approve", req.Registration.AutoApprove).
			Stringer("continuation", token).
			Msg("applying")

		return apply(ctx, logger, runner, req, token)
	}

	logger.Info().Msg("planning")
	return plan(ctx, logger, runner, req)
}

// Destroy runs the pre-execution steps and destroys the infrastructure.
// It never suspends.
func Destroy(ctx context.Context, req Request) Result {
	logger := log.With().
		Str("action", "executor.Destroy()").
		Str("invocation", invocationID(req)).
		Str("root", req.ProjectRoot).
		Logger()

	runner := terraform.NewRunner(req.Registration, req.ProjectRoot, req.Log)
	if res, ok := prepare(ctx, logger, runner, req); !ok {
		return res
	}

	req.Progress.Emit(progress.Destroy)
	res, err := runner.Run(ctx, tf.Destroy)
	if err != nil {
		return failure(logger, "destroy", res, err)
	}

	logger.Info().Msg("destroy succeeded")
	return Result{
		Code:         0,
		Status:       Succeeded,
		ExternalURLs: links(Link{DestroyLogLabel, req.LogURL}),
	}
}

func prepare(ctx context.Context, logger zerolog.Logger, runner *terraform.Runner, req Request) (Result, bool) {
	if err := runner.CheckVersion(ctx); err != nil {
		logger.Error().Err(err).Msg("version check failed")
		return Result{Code: 1, Status: Failed, Message: hooks.FailureMessage("version check")}, false
	}

	err := hooks.Run(ctx, runner, req.Registration, req.Progress)
	if err != nil {
		var stepErr *hooks.StepError
		code := 1
		if errors.As(err, &stepErr) && stepErr.ExitCode > 0 {
			code = stepErr.ExitCode
		}
		return Result{Code: code, Status: Failed, Message: err.Error()}, false
	}
	return Result{}, true
}

func plan(ctx context.Context, logger zerolog.Logger, runner *terraform.Runner, req Request) Result {
	req.Progress.Emit(progress.Plan)
	res, err := runner.Run(ctx, tf.Plan)
	if err != nil {
		return failure(logger, "plan", res, err)
	}

	token := continuation.NewPlanned(req.LogURL)
	logger.Info().
		Stringer("continuation", token).
		Msg("plan succeeded, waiting for approval")

	return Result{
		Code:         0,
		Status:       WaitingForApproval,
		Continuation: &token,
	}
}

func apply(ctx context.Context, logger zerolog.Logger, runner *terraform.Runner, req Request, token continuation.Token) Result {
	req.Progress.Emit(progress.Apply)
	res, err := runner.Run(ctx, tf.Apply)
	if err != nil {
		return failure(logger, "apply", res, err)
	}

	var planLog string
	if token.IsPlanned() {
		planLog = token.PlanLogURL
	}

	logger.Info().Msg("apply succeeded")
	return Result{
		Code:   0,
		Status: Succeeded,
		ExternalURLs: links(
			Link{PlanLogLabel, planLog},
			Link{ApplyLogLabel, req.LogURL},
		),
	}
}

func failure(logger zerolog.Logger, step string, res run.Result, err error) Result {
	logger.Error().
		Err(err).
		Str("step", step).
		Int("exit_code", res.ExitCode).
		Msg("execution failed")

	code := res.ExitCode
	if code <= 0 {
		code = 1
	}
	return Result{Code: code, Status: Failed, Message: hooks.FailureMessage(step)}
}

func invocationID(req Request) string {
	if req.InvocationID != "" {
		return req.InvocationID
	}
	id, err := uuid.NewRandom()
	if err != nil {
		log.Warn().Err(err).Msg("creating invocation UUID")
		return ""
	}
	return id.String()
}

// links returns the links that have an URL, in order.
func links(all ...Link) []Link {
	var res []Link
	for _, l := range all {
		if l.URL != "" {
			res = append(res, l)
		}
	}
	return res
}
