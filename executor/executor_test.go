// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package executor_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/config"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/continuation"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/executor"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/progress"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/test"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/test/faketf"
	"github.com/madlambda/spells/assert"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestMain(m *testing.M) {
	faketf.Main()
	os.Exit(m.Run())
}

const (
	planLogURL  = "https://logs.example.com/runs/1"
	applyLogURL = "https://logs.example.com/runs/2"
)

func ptr[T any](v T) *T { return &v }

type sandbox struct {
	root   string
	record string
	log    bytes.Buffer
}

func newSandbox(t *testing.T) *sandbox {
	t.Helper()
	return &sandbox{
		root:   t.TempDir(),
		record: filepath.Join(t.TempDir(), "record"),
	}
}

func (s *sandbox) registration(t *testing.T, reg config.Registration, fail ...string) *config.Registration {
	t.Helper()
	reg.BinaryPath = faketf.Path(t)
	env := faketf.Env(s.record, fail...)
	for k, v := range reg.EnvVars {
		env[k] = v
	}
	reg.EnvVars = env
	return &reg
}

func (s *sandbox) request(reg *config.Registration, token, logURL string) executor.Request {
	return executor.Request{
		Registration: reg,
		Continuation: token,
		LogURL:       logURL,
		ProjectRoot:  s.root,
		Log:          &s.log,
	}
}

func (s *sandbox) subcommands(t *testing.T) []string {
	t.Helper()
	return faketf.Subcommands(faketf.Invocations(t, s.record))
}

func assertSubcommands(t *testing.T, s *sandbox, want ...string) {
	t.Helper()
	if diff := cmp.Diff(want, s.subcommands(t)); diff != "" {
		t.Fatalf("subcommands: -(want) +(got):\n%s", diff)
	}
}

func TestPlanThenApply(t *testing.T) {
	t.Parallel()

	s := newSandbox(t)
	reg := s.registration(t, config.Registration{
		Vars:        []config.Var{{Name: "region", Value: ptr("us-east-1")}},
		AutoApprove: false,
	})

	first := executor.Execute(context.Background(), s.request(reg, "", planLogURL))

	planned := continuation.NewPlanned(planLogURL)
	want := executor.Result{
		Code:         0,
		Status:       executor.WaitingForApproval,
		Continuation: &planned,
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("first run: -(want) +(got):\n%s", diff)
	}
	assertSubcommands(t, s, "init", "plan")

	token, err := first.Continuation.Encode()
	assert.NoError(t, err)

	second := executor.Execute(context.Background(), s.request(reg, token, applyLogURL))
	want = executor.Result{
		Code:   0,
		Status: executor.Succeeded,
		ExternalURLs: []executor.Link{
			{Label: "Plan Log", URL: planLogURL},
			{Label: "Apply Log", URL: applyLogURL},
		},
	}
	if diff := cmp.Diff(want, second); diff != "" {
		t.Fatalf("second run: -(want) +(got):\n%s", diff)
	}
	assertSubcommands(t, s, "init", "plan", "init", "apply")

	invocations := faketf.Invocations(t, s.record)
	wantApply := []string{"apply", "-auto-approve", "-var", "region=us-east-1"}
	if diff := cmp.Diff(wantApply, invocations[3].Args); diff != "" {
		t.Fatalf("apply args: -(want) +(got):\n%s", diff)
	}
}

func TestAutoApproveAppliesDirectly(t *testing.T) {
	t.Parallel()

	s := newSandbox(t)
	reg := s.registration(t, config.Registration{AutoApprove: true, RunInit: ptr(false)})

	got := executor.Execute(context.Background(), s.request(reg, "", applyLogURL))
	want := executor.Result{
		Code:         0,
		Status:       executor.Succeeded,
		ExternalURLs: []executor.Link{{Label: "Apply Log", URL: applyLogURL}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("-(want) +(got):\n%s", diff)
	}
	assertSubcommands(t, s, "apply")
}

func TestPlannedTokenAppliesRegardlessOfAutoApprove(t *testing.T) {
	t.Parallel()

	for _, autoApprove := range []bool{false, true} {
		s := newSandbox(t)
		reg := s.registration(t, config.Registration{AutoApprove: autoApprove, RunInit: ptr(false)})

		got := executor.Execute(context.Background(),
			s.request(reg, `{"state":"planned","log":"`+planLogURL+`"}`, applyLogURL))

		assert.EqualStrings(t, string(executor.Succeeded), string(got.Status))
		assertSubcommands(t, s, "apply")
		assert.EqualInts(t, 2, len(got.ExternalURLs))
		assert.EqualStrings(t, "Plan Log", got.ExternalURLs[0].Label)
	}
}

func TestReplanWhileUnplanned(t *testing.T) {
	t.Parallel()

	s := newSandbox(t)
	reg := s.registration(t, config.Registration{RunInit: ptr(false)})

	for i := 0; i < 2; i++ {
		got := executor.Execute(context.Background(), s.request(reg, "", planLogURL))
		assert.EqualStrings(t, string(executor.WaitingForApproval), string(got.Status))
		assert.IsTrue(t, got.Continuation.IsPlanned())
	}
	assertSubcommands(t, s, "plan", "plan")
}

func TestFailuresAreTerminalAndRedacted(t *testing.T) {
	t.Parallel()

	type testcase struct {
		name     string
		reg      config.Registration
		token    string
		fail     string
		wantRun  []string
		wantMsg  string
		wantCode int
	}

	for _, tc := range []testcase{
		{
			name:     "plan failure",
			fail:     "plan",
			wantRun:  []string{"init", "plan"},
			wantMsg:  "Failed to run plan! Output redacted due to secrets.",
			wantCode: 1,
		},
		{
			name:     "apply failure",
			reg:      config.Registration{AutoApprove: true},
			fail:     "apply",
			wantRun:  []string{"init", "apply"},
			wantMsg:  "Failed to run apply! Output redacted due to secrets.",
			wantCode: 1,
		},
		{
			name:     "apply failure after plan",
			token:    `{"state":"planned","log":"x"}`,
			fail:     "apply",
			wantRun:  []string{"init", "apply"},
			wantMsg:  "Failed to run apply! Output redacted due to secrets.",
			wantCode: 1,
		},
		{
			name:     "init failure",
			fail:     "init",
			wantRun:  []string{"init"},
			wantMsg:  "Failed to run init! Output redacted due to secrets.",
			wantCode: 1,
		},
		{
			name:     "workspace select failure",
			reg:      config.Registration{Workspace: "missing"},
			fail:     "workspace",
			wantRun:  []string{"init", "workspace"},
			wantMsg:  "Failed to run workspace select! Output redacted due to secrets.",
			wantCode: 1,
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := newSandbox(t)
			reg := s.registration(t, tc.reg, tc.fail)

			got := executor.Execute(context.Background(), s.request(reg, tc.token, applyLogURL))

			assert.EqualStrings(t, string(executor.Failed), string(got.Status))
			assert.EqualInts(t, tc.wantCode, got.Code)
			assert.EqualStrings(t, tc.wantMsg, got.Message)
			assert.IsTrue(t, got.Continuation == nil, "failures must not suspend")
			assert.IsTrue(t, len(got.ExternalURLs) == 0)
			assert.IsTrue(t, !strings.Contains(got.Message, faketf.SecretOutput))
			assert.IsTrue(t, strings.Contains(s.log.String(), faketf.SecretOutput),
				"raw output must reach the log")

			if diff := cmp.Diff(tc.wantRun, s.subcommands(t)); diff != "" {
				t.Fatalf("subcommands: -(want) +(got):\n%s", diff)
			}
		})
	}
}

func TestInvalidContinuationToken(t *testing.T) {
	t.Parallel()

	s := newSandbox(t)
	reg := s.registration(t, config.Registration{})

	got := executor.Execute(context.Background(), s.request(reg, "{not json", applyLogURL))
	assert.EqualStrings(t, string(executor.Failed), string(got.Status))
	assert.EqualStrings(t, executor.InvalidContinuationMessage, got.Message)
	assert.IsTrue(t, len(s.subcommands(t)) == 0, "nothing must run with an invalid token")
}

func TestBaseLocationIsTheWorkingDir(t *testing.T) {
	t.Parallel()

	s := newSandbox(t)
	test.MkdirAll(t, filepath.Join(s.root, "infra", "prod"))
	reg := s.registration(t, config.Registration{BaseLocation: "infra/prod", AutoApprove: true})

	got := executor.Execute(context.Background(), s.request(reg, "", applyLogURL))
	assert.EqualStrings(t, string(executor.Succeeded), string(got.Status))

	want := test.CanonPath(t, filepath.Join(s.root, "infra", "prod"))
	for _, inv := range faketf.Invocations(t, s.record) {
		assert.EqualStrings(t, want, test.CanonPath(t, inv.Dir))
	}
}

func TestProgressEvents(t *testing.T) {
	t.Parallel()

	s := newSandbox(t)
	reg := s.registration(t, config.Registration{Workspace: "prod"})

	req := s.request(reg, "", planLogURL)
	req.Progress = progress.NewStream(10)
	_ = executor.Execute(context.Background(), req)
	req.Progress.Close()

	var phases []progress.Phase
	for ev := range req.Progress {
		phases = append(phases, ev.Phase)
	}
	want := []progress.Phase{progress.Init, progress.WorkspaceSelect, progress.Plan}
	if diff := cmp.Diff(want, phases); diff != "" {
		t.Fatalf("-(want) +(got):\n%s", diff)
	}
}

func TestRequiredVersion(t *testing.T) {
	t.Parallel()

	s := newSandbox(t)
	reg := s.registration(t, config.Registration{
		AutoApprove:     true,
		RequiredVersion: ">= 99.0",
	})

	got := executor.Execute(context.Background(), s.request(reg, "", applyLogURL))
	assert.EqualStrings(t, string(executor.Failed), string(got.Status))
	assert.EqualStrings(t, "Failed to run version check! Output redacted due to secrets.", got.Message)
	assert.IsTrue(t, len(s.subcommands(t)) == 0)
}

func TestDestroy(t *testing.T) {
	t.Parallel()

	s := newSandbox(t)
	reg := s.registration(t, config.Registration{
		Args: []config.Arg{{Flag: "-lock=false"}},
	})

	got := executor.Destroy(context.Background(), s.request(reg, "", applyLogURL))
	want := executor.Result{
		Code:         0,
		Status:       executor.Succeeded,
		ExternalURLs: []executor.Link{{Label: "Destroy Log", URL: applyLogURL}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("-(want) +(got):\n%s", diff)
	}

	invocations := faketf.Invocations(t, s.record)
	assertSubcommands(t, s, "init", "destroy")
	if diff := cmp.Diff([]string{"destroy", "-force", "-lock=false"}, invocations[1].Args); diff != "" {
		t.Fatalf("-(want) +(got):\n%s", diff)
	}
}

// not parallel: it replaces the global logger.
func TestInvocationIDIsLogged(t *testing.T) {
	var logs bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&logs)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	s := newSandbox(t)
	reg := s.registration(t, config.Registration{RunInit: ptr(false)})

	executor.Execute(context.Background(), s.request(reg, "", planLogURL))
	executor.Execute(context.Background(), s.request(reg, "", planLogURL))

	req := s.request(reg, "", planLogURL)
	req.InvocationID = "run-42"
	executor.Execute(context.Background(), req)

	seen := map[string]bool{}
	var order []string
	scanner := bufio.NewScanner(&logs)
	for scanner.Scan() {
		var entry map[string]any
		assert.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "log line: %s", scanner.Text())
		id, ok := entry["invocation"].(string)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)
	}
	assert.NoError(t, scanner.Err())

	assert.EqualInts(t, 3, len(order), "invocations: %v", order)
	for _, id := range order[:2] {
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "invocation %q must be a UUID", id)
	}
	assert.EqualStrings(t, "run-42", order[2])
}
