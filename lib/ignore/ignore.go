// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package ignore resolves the set of path exclusions applied when a
// project is hashed and bundled.
//
// Patterns are plain name fragments, not globs: a path is excluded
// when any pattern is a substring of its final path component. The
// same [Rules] value must be handed to both the content addresser and
// the bundler so that the deployment identifier describes exactly the
// files that are uploaded.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the per-project ignore file, read from the project root.
const FileName = ".ixignore"

// Builtin is the fixed set of patterns excluded from every project:
// version control metadata, interpreter caches, editor settings, build
// output, and virtual environments.
var Builtin = []string{
	"venv",
	"__pycache__",
	".git",
	".pytest_cache",
	".egg-info",
	".vscode",
	"dist",
	FileName,
}

// Rules is an ordered list of exclusion patterns.
type Rules struct {
	patterns []string
}

// New returns Rules holding the built-in patterns followed by extra.
func New(extra ...string) *Rules {
	patterns := make([]string, 0, len(Builtin)+len(extra))
	patterns = append(patterns, Builtin...)
	patterns = append(patterns, extra...)
	return &Rules{patterns: patterns}
}

// Resolve returns the effective rules for the project at dir: the
// built-in patterns plus each non-empty line of dir/.ixignore. A
// missing ignore file is not an error.
func Resolve(dir string, logger *slog.Logger) (*Rules, error) {
	if logger == nil {
		logger = slog.Default()
	}

	path := filepath.Join(dir, FileName)
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("no ignore file found, using built-in ignore list",
			"path", path,
			"patterns", strings.Join(Builtin, ","),
		)
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer file.Close()

	var extra []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		extra = append(extra, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file %s: %w", path, err)
	}

	logger.Debug("loaded ignore file", "path", path, "patterns", len(extra))
	return New(extra...), nil
}

// Match reports whether a file or directory with the given final path
// component is excluded.
func (r *Rules) Match(name string) bool {
	for _, pattern := range r.patterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// File is one non-ignored regular file found by [Rules.Walk].
type File struct {
	// Path is relative to the walk root and uses forward slashes.
	Path string
	// Abs is the absolute path on disk.
	Abs  string
	Size int64
}

// Walk visits every regular file under root that is not excluded,
// top-down in lexical order. Excluded directories are pruned before
// descent. Symlinks and other special files are skipped.
func (r *Rules) Walk(root string, visit func(File) error) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if r.Match(entry.Name()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return visit(File{Path: filepath.ToSlash(relative), Abs: path, Size: info.Size()})
	})
}

// Files returns every non-ignored regular file under root in the order
// [Rules.Walk] visits them.
func (r *Rules) Files(root string) ([]File, error) {
	var files []File
	err := r.Walk(root, func(file File) error {
		files = append(files, file)
		return nil
	})
	return files, err
}
