// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package run_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/run"
	errtest "github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/test/errors"
	"github.com/madlambda/spells/assert"
)

func writeBin(t *testing.T, dir, name string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(binPath, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	return binPath
}

func TestLookPathFindsExecutableInOverriddenPATH(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	binPath := writeBin(t, tmpDir, "tfgoal-foo")

	env := append([]string{}, os.Environ()...)
	env = append(env, "PATH="+tmpDir)

	found, err := run.LookPath("tfgoal-foo", env)
	assert.NoError(t, err)
	assert.EqualStrings(t, binPath, found)
}

func TestLookPathAbsolutePath(t *testing.T) {
	t.Parallel()

	binPath := writeBin(t, t.TempDir(), "tfgoal-abs")

	found, err := run.LookPath(binPath, os.Environ())
	assert.NoError(t, err)
	assert.EqualStrings(t, binPath, found)
}

func TestLookPathIgnoresRelativePATHEntries(t *testing.T) {
	t.Parallel()

	_, err := run.LookPath("tfgoal-rel", []string{"PATH=.:relative/dir"})
	errtest.Assert(t, err, errors.E(run.ErrNotFound))
}

func TestLookPathNotFound(t *testing.T) {
	t.Parallel()

	env := append([]string{}, os.Environ()...)
	env = append(env, "PATH=")

	_, err := run.LookPath("definitely-not-found-xyz", env)
	errtest.Assert(t, err, errors.E(run.ErrNotFound))
}

func TestLookPathNonExecutable(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("execute permission bits are not used on windows")
	}

	file := filepath.Join(t.TempDir(), "not-exec")
	assert.NoError(t, os.WriteFile(file, []byte("data"), 0o644))

	_, err := run.LookPath(file, os.Environ())
	errtest.Assert(t, err, errors.E(run.ErrNotFound))
}

func TestCommandPath(t *testing.T) {
	t.Parallel()

	type testcase struct {
		dir  string
		file string
		want string
	}

	abs := filepath.Join(t.TempDir(), "terraform")

	for _, tc := range []testcase{
		{dir: "/goal", file: "terraform", want: "terraform"},
		{dir: "/goal", file: abs, want: abs},
		{dir: "/goal", file: "./bin/terraform", want: filepath.Join("/goal", "bin", "terraform")},
		{dir: "/goal", file: "../tools/tofu", want: filepath.Join("/tools", "tofu")},
		{dir: "", file: "./bin/terraform", want: "./bin/terraform"},
	} {
		assert.EqualStrings(t, tc.want, run.CommandPath(tc.dir, tc.file), "dir %q file %q", tc.dir, tc.file)
	}
}
