// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/inferex/inferex/lib/pysource"
)

// DecoratorKeyword is the substring that marks a decorator as a
// pipeline declaration: "pipeline", "inferex.pipeline", and so on.
const DecoratorKeyword = "pipeline"

// AllowedKeywords are the keyword arguments a pipeline decorator may
// carry, in the order they are listed in error messages.
var AllowedKeywords = []string{"name", "is_async", "timeout"}

var pipelineNamePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Pipeline is one validated pipeline declaration.
type Pipeline struct {
	Name     string
	Function string
	Path     string
	Line     int
	IsAsync  bool
	// Timeout is the literal timeout in seconds, nil when absent or
	// not a numeric literal.
	Timeout *float64
}

// NormalizeName maps a pipeline name to its canonical form:
// underscores become hyphens and letters are lowercased.
func NormalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}

// ValidName reports whether name is already in canonical form and is
// a hyphenated lowercase alphanumeric string.
func ValidName(name string) bool {
	return name == NormalizeName(name) && pipelineNamePattern.MatchString(name)
}

// extractPipelines returns the pipeline declarations in module, or the
// first declaration error.
func extractPipelines(path string, module *pysource.Module) ([]Pipeline, error) {
	var pipelines []Pipeline
	for _, function := range module.Functions {
		for _, decorator := range function.Decorators {
			if !decorator.Called || !strings.Contains(decorator.Name, DecoratorKeyword) {
				continue
			}
			pipeline, err := checkDecorator(path, function, decorator)
			if err != nil {
				return nil, err
			}
			pipelines = append(pipelines, pipeline)
		}
	}
	return pipelines, nil
}

func checkDecorator(path string, function pysource.FunctionDef, decorator pysource.Decorator) (Pipeline, error) {
	fail := func(kind error, detail string) (Pipeline, error) {
		return Pipeline{}, &ValidationError{Kind: kind, Path: path, Line: decorator.Line, Detail: detail}
	}

	pipeline := Pipeline{Function: function.Name, Path: path, Line: decorator.Line}
	named := false

	for _, argument := range decorator.Args {
		switch argument.Kind {
		case pysource.Positional, pysource.StarArgs:
			return fail(ErrArgumentsNotSupported, fmt.Sprintf(
				"@%s on %s takes keyword arguments only (supported keywords are: %s)",
				decorator.Name, function.Name, strings.Join(AllowedKeywords, ", ")))
		case pysource.StarKwargs:
			return fail(ErrUnsupportedKeyword, fmt.Sprintf(
				"**%s; supported keywords are: %s", argument.Value.Source, strings.Join(AllowedKeywords, ", ")))
		}

		switch argument.Keyword {
		case "name":
			if argument.Value.Kind != pysource.String {
				return fail(ErrInvalidName, fmt.Sprintf(
					"%s: pipeline names must be string literals", argument.Value.Source))
			}
			name := argument.Value.Str
			if !ValidName(name) {
				detail := fmt.Sprintf("%q: pipeline names must be hyphenated lowercase alphanumeric strings", name)
				if normalized := NormalizeName(name); normalized != name && pipelineNamePattern.MatchString(normalized) {
					detail += fmt.Sprintf(" (did you mean %q?)", normalized)
				}
				return fail(ErrInvalidName, detail)
			}
			pipeline.Name = name
			named = true
		case "is_async":
			pipeline.IsAsync = argument.Value.Kind == pysource.Bool && argument.Value.Source == "True"
		case "timeout":
			if argument.Value.Kind == pysource.Number {
				if seconds, err := strconv.ParseFloat(strings.ReplaceAll(argument.Value.Source, "_", ""), 64); err == nil {
					pipeline.Timeout = &seconds
				}
			}
		default:
			return fail(ErrUnsupportedKeyword, fmt.Sprintf(
				"%q; supported keywords are: %s", argument.Keyword, strings.Join(AllowedKeywords, ", ")))
		}
	}

	if !named {
		return fail(ErrMissingName, fmt.Sprintf("@%s on %s needs name=\"...\"", decorator.Name, function.Name))
	}
	return pipeline, nil
}

// checkUnique fails on the first pipeline name declared twice anywhere
// in the project.
func checkUnique(pipelines []Pipeline) error {
	first := make(map[string]Pipeline, len(pipelines))
	for _, pipeline := range pipelines {
		if previous, ok := first[pipeline.Name]; ok {
			return &ValidationError{
				Kind: ErrDuplicateName,
				Path: pipeline.Path,
				Line: pipeline.Line,
				Detail: fmt.Sprintf("%q is also declared at %s:%d",
					pipeline.Name, previous.Path, previous.Line),
			}
		}
		first[pipeline.Name] = pipeline
	}
	return nil
}
