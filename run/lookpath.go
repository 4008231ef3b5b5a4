// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package run

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cli/safeexec"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
const ErrNotFound errors.Kind = "executable file not found in $PATH"

// LookPath searches for an executable named file in the PATH defined by
// environ. If file contains a path separator it is checked directly.
// When environ does not override the process PATH the lookup is delegated
// to safeexec, which never resolves binaries from the current directory.
func LookPath(file string, environ []string) (string, error) {
	if hasSeparator(file) {
		if err := checkExecutable(file); err != nil {
			return "", errors.E(ErrNotFound, err, "%s", file)
		}
		return file, nil
	}

	pathenv, _ := Getenv("PATH", environ)
	if pathenv == os.Getenv("PATH") {
		found, err := safeexec.LookPath(file)
		if err != nil {
			return "", errors.E(ErrNotFound, err, "%s", file)
		}
		return found, nil
	}

	for _, dir := range filepath.SplitList(pathenv) {
		if dir == "" || !filepath.IsAbs(dir) {
			// relative entries would resolve against the working directory.
			continue
		}
		for _, name := range candidates(file) {
			path := filepath.Join(dir, name)
			if err := checkExecutable(path); err == nil {
				return path, nil
			}
		}
	}
	return "", errors.E(ErrNotFound, "%s", file)
}

// CommandPath returns the path that runs file from dir. A relative path
// with a separator is joined to dir, matching how exec.Cmd resolves it when
// Dir is set. Bare names are kept for the PATH lookup.
func CommandPath(dir, file string) string {
	if dir == "" || filepath.IsAbs(file) || !hasSeparator(file) {
		return file
	}
	return filepath.Join(dir, file)
}

func hasSeparator(file string) bool {
	return strings.ContainsRune(file, '/') || strings.ContainsRune(file, filepath.Separator)
}

func candidates(file string) []string {
	if runtime.GOOS != "windows" || filepath.Ext(file) != "" {
		return []string{file}
	}
	return []string{file + ".exe", file + ".bat", file + ".cmd", file}
}

func checkExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if d.IsDir() {
		return fs.ErrPermission
	}
	if runtime.GOOS != "windows" && d.Mode()&0o111 == 0 {
		return fs.ErrPermission
	}
	return nil
}
