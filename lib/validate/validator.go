// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/inferex/inferex/lib/ignore"
	"github.com/inferex/inferex/lib/pysource"
)

// SDKModule is the client library's own import name. Projects import
// it without listing it in their requirements.
const SDKModule = "inferex"

// WarningKind classifies advisory findings.
type WarningKind int

const (
	MissingManifest WarningKind = iota
	UndeclaredImport
	UnusedDependency
)

// Warning is an advisory finding. Warnings never fail validation.
type Warning struct {
	Kind    WarningKind
	Modules []string
	Message string
}

// Report is the result of a successful validation.
type Report struct {
	Pipelines []Pipeline
	// Imports are the distinct top-level modules imported by the
	// project, sorted.
	Imports []string
	// Requirements are the normalized manifest entries.
	Requirements []string
	Warnings     []Warning
	// Files is the number of python files parsed.
	Files int
}

// Config holds the parameters for creating a Validator.
type Config struct {
	Logger *slog.Logger
}

// Validator statically checks a project before anything is uploaded.
type Validator struct {
	logger *slog.Logger
}

// New creates a Validator.
func New(config Config) *Validator {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Validate parses every non-ignored python file under dir, checks
// pipeline declarations, and cross-checks imports against
// requirements.txt. A *ValidationError is returned for hard failures;
// dependency mismatches are logged and returned as report warnings.
func (v *Validator) Validate(ctx context.Context, dir string, rules *ignore.Rules) (*Report, error) {
	if err := checkDiscovery(dir, rules); err != nil {
		return nil, err
	}

	report := &Report{}
	var pipelines []Pipeline
	imports := map[string]bool{}
	local := map[string]bool{}

	err := rules.Walk(dir, func(file ignore.File) error {
		if !strings.HasSuffix(file.Path, ".py") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		source, err := os.ReadFile(file.Abs)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file.Path, err)
		}
		module, err := pysource.Parse(file.Path, source)
		if err != nil {
			var syntaxErr *pysource.SyntaxError
			if errors.As(err, &syntaxErr) {
				return &ValidationError{Kind: ErrSyntax, Path: file.Path, Line: syntaxErr.Line, Detail: syntaxErr.Message}
			}
			return err
		}
		report.Files++

		declared, err := extractPipelines(file.Path, module)
		if err != nil {
			return err
		}
		pipelines = append(pipelines, declared...)

		for _, imported := range module.Imports {
			if imported.Level > 0 || imported.Module == "" {
				continue
			}
			imports[imported.Root()] = true
		}
		for _, component := range strings.Split(strings.TrimSuffix(file.Path, ".py"), "/") {
			local[component] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := checkUnique(pipelines); err != nil {
		return nil, err
	}
	report.Pipelines = pipelines

	for module := range imports {
		report.Imports = append(report.Imports, module)
	}
	sort.Strings(report.Imports)

	requirements, found, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}
	report.Requirements = requirements
	if !found {
		v.warn(report, Warning{
			Kind:    MissingManifest,
			Message: fmt.Sprintf("No %s found in %s", ManifestFile, dir),
		})
	}
	v.crossCheck(report, local)

	v.logger.Debug("validated project",
		"dir", dir,
		"files", report.Files,
		"pipelines", len(report.Pipelines),
		"imports", len(report.Imports),
	)
	return report, nil
}

func (v *Validator) crossCheck(report *Report, local map[string]bool) {
	declared := map[string]bool{}
	for _, requirement := range report.Requirements {
		declared[canonicalModule(requirement)] = true
	}

	used := map[string]bool{}
	for _, module := range report.Imports {
		used[canonicalModule(module)] = true
		if IsStandardLibrary(module) || module == SDKModule || local[module] {
			continue
		}
		if !declared[canonicalModule(module)] {
			v.warn(report, Warning{
				Kind:    UndeclaredImport,
				Modules: []string{module},
				Message: fmt.Sprintf("Expected imported module '%s' to be in %s", module, ManifestFile),
			})
		}
	}

	var unused []string
	for _, requirement := range report.Requirements {
		if !used[canonicalModule(requirement)] && !slices.Contains(unused, requirement) {
			unused = append(unused, requirement)
		}
	}
	if len(unused) > 0 {
		v.warn(report, Warning{
			Kind:    UnusedDependency,
			Modules: unused,
			Message: fmt.Sprintf("Unused dependencies found: %s. Removing these could improve deployment time.",
				strings.Join(unused, ", ")),
		})
	}
}

func (v *Validator) warn(report *Report, warning Warning) {
	report.Warnings = append(report.Warnings, warning)
	v.logger.Warn(warning.Message, "modules", warning.Modules)
}

func canonicalModule(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "-", "_"))
}

// checkDiscovery requires at least one python file in dir or in one of
// its immediate, non-ignored subdirectories, so that deploying from
// the wrong directory fails before a deep walk.
func checkDiscovery(dir string, rules *ignore.Rules) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading project directory: %w", err)
	}
	var subdirectories []string
	for _, entry := range entries {
		if rules.Match(entry.Name()) {
			continue
		}
		if entry.IsDir() {
			subdirectories = append(subdirectories, entry.Name())
			continue
		}
		if path.Ext(entry.Name()) == ".py" {
			return nil
		}
	}
	for _, subdirectory := range subdirectories {
		children, err := os.ReadDir(filepath.Join(dir, subdirectory))
		if err != nil {
			continue
		}
		for _, child := range children {
			if !child.IsDir() && path.Ext(child.Name()) == ".py" {
				return nil
			}
		}
	}
	return &ValidationError{
		Kind:   ErrWrongDirectory,
		Detail: fmt.Sprintf("nothing in or directly beneath %s. Is this the right directory?", dir),
	}
}
