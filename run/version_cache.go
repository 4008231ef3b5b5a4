// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package run

import (
	"context"
	"os/exec"
	"regexp"
	"sync"

	"github.com/rs/zerolog/log"
)

var semverRe = regexp.MustCompile(`v?(\d+\.\d+\.\d+(?:-[0-9A-Za-z.]+)?)`)

type versionEntry struct {
	mu      sync.Mutex
	done    bool
	version string
}

var (
	versionCacheMu sync.Mutex
	versionCache   = map[string]*versionEntry{}
	testOverrideMu sync.Mutex
	testOverride   = map[string]string{}
)

func getVersionEntry(resolvedPath string) *versionEntry {
	versionCacheMu.Lock()
	defer versionCacheMu.Unlock()
	entry, ok := versionCache[resolvedPath]
	if !ok {
		entry = &versionEntry{}
		versionCache[resolvedPath] = entry
	}
	return entry
}

// ResolveVersion returns the semantic version of binary by executing
// "<binary> --version" with environ. A relative binary path with a separator
// is resolved against dir. The shell-out succeeds at most once per resolved
// binary path across the process: failed probes are not cached. It returns an
// empty string if the binary cannot be found or reports no version.
func ResolveVersion(ctx context.Context, environ []string, dir, binary string) string {
	testOverrideMu.Lock()
	v, ok := testOverride[binary]
	testOverrideMu.Unlock()
	if ok {
		return v
	}

	cmdPath, err := LookPath(CommandPath(dir, binary), environ)
	if err != nil {
		return ""
	}

	entry := getVersionEntry(cmdPath)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.done {
		return entry.version
	}

	cmd := exec.CommandContext(ctx, cmdPath, "--version")
	cmd.Dir = dir
	cmd.Env = environ
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.Debug().
			Str("action", "run.ResolveVersion()").
			Str("binary", cmdPath).
			Err(err).
			Msg("probing version")
		return ""
	}
	matches := semverRe.FindStringSubmatch(string(out))
	if len(matches) < 2 {
		return ""
	}
	entry.version = matches[1]
	entry.done = true
	return entry.version
}

// ResetVersionCache clears the shared version cache. Intended for tests.
func ResetVersionCache() {
	versionCacheMu.Lock()
	defer versionCacheMu.Unlock()
	versionCache = map[string]*versionEntry{}
}

// SetTestVersionOverride sets a version override by binary name for tests.
// When set, ResolveVersion returns this value without shelling out.
// An empty version removes the override.
func SetTestVersionOverride(binary, version string) {
	testOverrideMu.Lock()
	defer testOverrideMu.Unlock()
	if version == "" {
		delete(testOverride, binary)
		return
	}
	testOverride[binary] = version
}
