// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package git provides typed access to a project's git repository.
//
// Repository detection uses go-git in-process, so a missing git binary
// does not prevent the probe. Tree hashing shells out to the git CLI
// because it must honour the user's git configuration (filters,
// attributes) exactly as "git add" would. All CLI commands target the
// repository directory via "git -C <dir>".
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repository represents a git working tree at a specific directory.
type Repository struct {
	dir string
}

// NewRepository returns a Repository targeting the given directory.
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// Available reports whether a git executable is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// HasCommits reports whether dir is the root of a git repository with
// at least one commit. Parent directories are not searched: a project
// nested inside some other repository is not that repository.
func (r *Repository) HasCommits() (bool, error) {
	repository, err := gogit.PlainOpen(r.dir)
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("opening repository %s: %w", r.dir, err)
	}
	if _, err := repository.Head(); err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("resolving HEAD in %s: %w", r.dir, err)
	}
	return true, nil
}

// Run executes a git command targeting this repository and returns
// stdout. Stderr is included in the error on failure. env entries are
// appended to the process environment.
func (r *Repository) Run(ctx context.Context, env []string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	command := r.Command(ctx, args...)
	command.Env = append(os.Environ(), env...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), r.dir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Command returns an *exec.Cmd for a git command without running it.
// The -C flag targeting this repository is prepended.
func (r *Repository) Command(ctx context.Context, args ...string) *exec.Cmd {
	fullArgs := append([]string{"-C", r.dir}, args...)
	return exec.CommandContext(ctx, "git", fullArgs...)
}

// WriteTree stages exactly the given paths (relative to the repository
// root, forward slashes) into a throwaway index and returns the full
// hex id of the resulting tree object. The repository's own index is
// never read or modified.
func (r *Repository) WriteTree(ctx context.Context, paths []string) (string, error) {
	scratch, err := os.MkdirTemp("", "inferex-index-")
	if err != nil {
		return "", fmt.Errorf("creating scratch index directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	env := []string{
		"GIT_INDEX_FILE=" + filepath.Join(scratch, "index"),
		"GIT_LITERAL_PATHSPECS=1",
	}

	if len(paths) > 0 {
		var list bytes.Buffer
		for _, path := range paths {
			list.WriteString(path)
			list.WriteByte(0)
		}
		listPath := filepath.Join(scratch, "paths")
		if err := os.WriteFile(listPath, list.Bytes(), 0o600); err != nil {
			return "", fmt.Errorf("writing pathspec list: %w", err)
		}
		if _, err := r.Run(ctx, env, "add", "--force", "--pathspec-from-file="+listPath, "--pathspec-file-nul"); err != nil {
			return "", err
		}
	}

	output, err := r.Run(ctx, env, "write-tree")
	if err != nil {
		return "", err
	}
	tree := strings.TrimSpace(output)
	if tree == "" {
		return "", fmt.Errorf("git write-tree in %s returned no tree id", r.dir)
	}
	return tree, nil
}
