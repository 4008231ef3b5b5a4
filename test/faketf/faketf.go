// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package faketf turns a Go test binary into a fake terraform binary.
//
// Packages using it must call Main from TestMain before m.Run. Tests then
// execute the test binary itself (Path) with the environment returned by Env.
package faketf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"
)

// Environment variables controlling the fake.
const (
	EnvEnable  = "FAKETF_ENABLE"
	EnvFail    = "FAKETF_FAIL"     // comma separated subcommands that must fail.
	EnvRecord  = "FAKETF_RECORD"   // file where invocations are appended.
	EnvEcho    = "FAKETF_ECHO_ENV" // variable name printed as NAME=value.
	EnvVersion = "FAKETF_VERSION"

	// EnvWaitFile makes the fake print its first line and then wait for the
	// named file to exist before finishing.
	EnvWaitFile = "FAKETF_WAIT_FILE"
)

const waitTimeout = 30 * time.Second

// SecretOutput is written to stderr by failing subcommands.
const SecretOutput = "fake secret: hunter2"

const argSep = "\x1f"

// Invocation is a recorded execution of the fake.
type Invocation struct {
	Dir  string
	Args []string
}

// Main runs the fake binary and exits if the fake is enabled.
// It is a no-op otherwise.
func Main() {
	if os.Getenv(EnvEnable) != "1" {
		return
	}
	os.Exit(run(os.Args[1:]))
}

// Path returns the path of the running test binary.
func Path(t testing.TB) string {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("resolving test executable: %v", err)
	}
	return exe
}

// Install copies the running test binary to dir/name and returns its path.
func Install(t testing.TB, dir, name string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	data, err := os.ReadFile(Path(t))
	if err != nil {
		t.Fatalf("reading test executable: %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating %s: %v", dir, err)
	}
	dst := filepath.Join(dir, name)
	if err := os.WriteFile(dst, data, 0o755); err != nil {
		t.Fatalf("installing fake terraform: %v", err)
	}
	return dst
}

// Env returns the environment enabling the fake, recording invocations into
// record and failing the given subcommands.
func Env(record string, fail ...string) map[string]string {
	env := map[string]string{
		EnvEnable: "1",
		EnvRecord: record,
	}
	if len(fail) > 0 {
		env[EnvFail] = strings.Join(fail, ",")
	}
	return env
}

// Invocations reads the invocations recorded in record.
func Invocations(t testing.TB, record string) []Invocation {
	t.Helper()
	data, err := os.ReadFile(record)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("reading fake terraform record: %v", err)
	}
	var invocations []Invocation
	for _, line := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, argSep)
		invocations = append(invocations, Invocation{Dir: parts[0], Args: parts[1:]})
	}
	return invocations
}

// Subcommands returns the first argument of each invocation.
func Subcommands(invocations []Invocation) []string {
	cmds := make([]string, 0, len(invocations))
	for _, inv := range invocations {
		if len(inv.Args) > 0 {
			cmds = append(cmds, inv.Args[0])
		}
	}
	return cmds
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: terraform <command> [args]")
		return 2
	}
	if args[0] == "--version" {
		version := os.Getenv(EnvVersion)
		if version == "" {
			version = "1.6.2"
		}
		fmt.Printf("Terraform v%s\non %s\n", version, "fake_amd64")
		return 0
	}

	if record := os.Getenv(EnvRecord); record != "" {
		wd, _ := os.Getwd()
		line := strings.Join(append([]string{filepath.Clean(wd)}, args...), argSep) + "\n"
		f, err := os.OpenFile(record, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 3
		}
		_, _ = f.WriteString(line)
		_ = f.Close()
	}

	fmt.Printf("fake terraform %s\n", strings.Join(args, " "))
	if fname := os.Getenv(EnvWaitFile); fname != "" {
		if !waitFor(fname) {
			fmt.Fprintf(os.Stderr, "timeout waiting for %s\n", fname)
			return 4
		}
	}
	if name := os.Getenv(EnvEcho); name != "" {
		fmt.Printf("%s=%s\n", name, os.Getenv(name))
	}

	if slices.Contains(strings.Split(os.Getenv(EnvFail), ","), args[0]) {
		fmt.Fprintln(os.Stderr, SecretOutput)
		return 1
	}
	fmt.Fprintf(os.Stderr, "%s done\n", args[0])
	return 0
}

func waitFor(fname string) bool {
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(fname); err == nil {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
