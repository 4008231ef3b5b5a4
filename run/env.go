// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package run

import (
	"runtime"
	"slices"
	"strings"
)

// MergeEnv returns a new environment with overrides merged over environ.
// Variables defined in overrides win; new ones are appended in lexicographic
// order. Neither environ nor overrides are modified.
func MergeEnv(environ []string, overrides map[string]string) []string {
	merged := make([]string, 0, len(environ)+len(overrides))
	seen := make(map[string]bool, len(overrides))
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if v, ok := lookupOverride(overrides, name); ok {
			if !seen[name] {
				merged = append(merged, name+"="+v)
			}
			seen[name] = true
			continue
		}
		merged = append(merged, kv)
	}
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if seenOverride(seen, name) {
			continue
		}
		merged = append(merged, name+"="+overrides[name])
	}
	return merged
}

// Getenv returns the value of the environment variable key in environ.
// When the variable is defined more than once the last definition wins,
// matching the behavior of exec.Cmd.
func Getenv(key string, environ []string) (string, bool) {
	for i := len(environ) - 1; i >= 0; i-- {
		name, val, ok := strings.Cut(environ[i], "=")
		if ok && envNameEqual(name, key) {
			return val, true
		}
	}
	return "", false
}

func lookupOverride(overrides map[string]string, name string) (string, bool) {
	if v, ok := overrides[name]; ok {
		return v, true
	}
	if runtime.GOOS != "windows" {
		return "", false
	}
	for k, v := range overrides {
		if envNameEqual(k, name) {
			return v, true
		}
	}
	return "", false
}

func seenOverride(seen map[string]bool, name string) bool {
	if seen[name] {
		return true
	}
	if runtime.GOOS != "windows" {
		return false
	}
	for k := range seen {
		if envNameEqual(k, name) {
			return true
		}
	}
	return false
}

func envNameEqual(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
