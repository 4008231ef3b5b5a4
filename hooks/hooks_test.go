// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package hooks_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/config"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/hooks"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/progress"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/run"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/tf"
	"github.com/madlambda/spells/assert"
)

const secret = "Error: password=hunter2 rejected"

type fakeRunner struct {
	fail map[tf.Action]bool
	ran  []tf.Action
}

func (r *fakeRunner) Run(_ context.Context, action tf.Action) (run.Result, error) {
	r.ran = append(r.ran, action)
	if r.fail[action] {
		return run.Result{ExitCode: 1, Stderr: secret}, errors.E(run.ErrFailed, secret)
	}
	return run.Result{}, nil
}

func ptr[T any](v T) *T { return &v }

func TestPreExecutionOrder(t *testing.T) {
	t.Parallel()

	var names []string
	for _, step := range hooks.PreExecution() {
		names = append(names, step.Name)
	}
	if diff := cmp.Diff([]string{"init", "workspace select"}, names); diff != "" {
		t.Fatalf("-(want) +(got):\n%s", diff)
	}
}

func TestRunSteps(t *testing.T) {
	t.Parallel()

	type testcase struct {
		name       string
		reg        config.Registration
		fail       tf.Action
		wantRan    []tf.Action
		wantPhases []progress.Phase
		wantStep   string
	}

	for _, tc := range []testcase{
		{
			name:       "init only by default",
			wantRan:    []tf.Action{tf.Init},
			wantPhases: []progress.Phase{progress.Init},
		},
		{
			name:       "init and workspace select",
			reg:        config.Registration{Workspace: "prod"},
			wantRan:    []tf.Action{tf.Init, tf.WorkspaceSelect},
			wantPhases: []progress.Phase{progress.Init, progress.WorkspaceSelect},
		},
		{
			name:       "init disabled",
			reg:        config.Registration{RunInit: ptr(false), Workspace: "prod"},
			wantRan:    []tf.Action{tf.WorkspaceSelect},
			wantPhases: []progress.Phase{progress.WorkspaceSelect},
		},
		{
			name: "nothing to run",
			reg:  config.Registration{RunInit: ptr(false)},
		},
		{
			name:       "init failure stops the pipeline",
			reg:        config.Registration{Workspace: "prod"},
			fail:       tf.Init,
			wantRan:    []tf.Action{tf.Init},
			wantPhases: []progress.Phase{progress.Init},
			wantStep:   "init",
		},
		{
			name:       "workspace select failure",
			reg:        config.Registration{Workspace: "missing"},
			fail:       tf.WorkspaceSelect,
			wantRan:    []tf.Action{tf.Init, tf.WorkspaceSelect},
			wantPhases: []progress.Phase{progress.Init, progress.WorkspaceSelect},
			wantStep:   "workspace select",
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			runner := &fakeRunner{fail: map[tf.Action]bool{tc.fail: true}}
			events := progress.NewStream(10)

			err := hooks.Run(context.Background(), runner, &tc.reg, events)
			events.Close()

			if diff := cmp.Diff(tc.wantRan, runner.ran); diff != "" {
				t.Fatalf("actions: -(want) +(got):\n%s", diff)
			}
			var phases []progress.Phase
			for ev := range events {
				phases = append(phases, ev.Phase)
			}
			if diff := cmp.Diff(tc.wantPhases, phases); diff != "" {
				t.Fatalf("phases: -(want) +(got):\n%s", diff)
			}

			if tc.wantStep == "" {
				assert.NoError(t, err)
				return
			}

			var stepErr *hooks.StepError
			assert.IsTrue(t, errors.As(err, &stepErr), "got %v", err)
			assert.EqualStrings(t, tc.wantStep, stepErr.Step)
			assert.EqualInts(t, 1, stepErr.ExitCode)
			assert.EqualStrings(t, hooks.FailureMessage(tc.wantStep), err.Error())
			assert.IsTrue(t, !strings.Contains(err.Error(), "hunter2"))
			assert.IsTrue(t, errors.IsKind(err, run.ErrFailed))
		})
	}
}

func TestFailureMessage(t *testing.T) {
	t.Parallel()

	assert.EqualStrings(t, "Failed to run init! Output redacted due to secrets.", hooks.FailureMessage("init"))
}
