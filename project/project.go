// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package project locates the checkout a goal runs in.
package project

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
	"github.com/rs/zerolog/log"
)

// ErrRootNotFound indicates the project root could not be resolved.
const ErrRootNotFound errors.Kind = "project root not found"

// Root is the resolved project root.
type Root struct {
	// Dir is the absolute, symlink free, root directory.
	Dir string

	// IsRepo tells if Dir is the worktree of a git repository.
	IsRepo bool
}

// FindRoot returns the project root for the working directory wd.
// If wd is inside a git worktree the root is the top level of the worktree,
// otherwise wd itself is the root.
func FindRoot(wd string) (Root, error) {
	logger := log.With().
		Str("action", "project.FindRoot()").
		Str("wd", wd).
		Logger()

	absWd, err := filepath.Abs(wd)
	if err != nil {
		return Root{}, errors.E(ErrRootNotFound, err, "resolving %q", wd)
	}
	st, err := os.Stat(absWd)
	if err != nil {
		return Root{}, errors.E(ErrRootNotFound, err)
	}
	if !st.IsDir() {
		return Root{}, errors.E(ErrRootNotFound, "%q is not a directory", absWd)
	}

	isRepo := true
	rootdir := absWd
	repo, err := git.PlainOpenWithOptions(absWd, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	switch {
	case err == nil:
		worktree, err := repo.Worktree()
		if err != nil {
			// bare repositories have no worktree to run in.
			logger.Debug().Err(err).Msg("no worktree, using working dir")
			isRepo = false
			break
		}
		rootdir = worktree.Filesystem.Root()
	case stderrors.Is(err, git.ErrRepositoryNotExists):
		logger.Debug().Msg("not a git repository, using working dir")
		isRepo = false
	default:
		return Root{}, errors.E(ErrRootNotFound, err, "opening git repository")
	}

	evaluated, err := filepath.EvalSymlinks(rootdir)
	if err != nil {
		return Root{}, errors.E(ErrRootNotFound, err, "failed evaluating symlinks of %q", rootdir)
	}

	logger.Debug().
		Str("root", evaluated).
		Bool("repo", isRepo).
		Msg("found project root")

	return Root{Dir: evaluated, IsRepo: isRepo}, nil
}

// FriendlyFmtDir formats the host directory dir relative to wd for tooling
// output. It returns false if dir is outside root.
func FriendlyFmtDir(root, wd, dir string) (string, bool) {
	if !isInside(root, dir) {
		return "", false
	}
	rel, err := filepath.Rel(wd, dir)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func isInside(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
