// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package test provides helpers shared by the package tests.
package test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/madlambda/spells/assert"
)

// DoesNotExist calls os.Stat and asserts that the entry does not exist
func DoesNotExist(t testing.TB, dir, fname string) {
	t.Helper()
	_, err := os.Stat(filepath.Join(dir, fname))
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	assert.NoError(t, err, "stat error")

	t.Fatalf("should not exist: %s", fname)
}

// WriteFile writes content to a filename inside dir directory, creating the
// missing parent directories.
// If dir is empty string then the file is created inside a temporary directory.
func WriteFile(t testing.TB, dir string, filename string, content string) string {
	t.Helper()

	if dir == "" {
		dir = t.TempDir()
	}

	path := filepath.Join(dir, filename)
	MkdirAll(t, filepath.Dir(path))
	err := os.WriteFile(path, []byte(content), 0700)
	assert.NoError(t, err, "writing test file %s", path)

	return path
}

// ReadFile reads the content of fname from dir directory.
func ReadFile(t testing.TB, dir, fname string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, fname))
	assert.NoError(t, err, "reading file")
	return data
}

// MkdirAll creates a directory and its parents with default test permission bits.
func MkdirAll(t testing.TB, path string) {
	t.Helper()

	assert.NoError(t, os.MkdirAll(path, 0700), "failed to create directory")
}

// CanonPath returns a canonical absolute path for the given path.
// Fails the test if any error is found.
func CanonPath(t testing.TB, path string) string {
	t.Helper()

	p, err := filepath.EvalSymlinks(path)
	assert.NoError(t, err)
	p, err = filepath.Abs(p)
	assert.NoError(t, err)
	return p
}
