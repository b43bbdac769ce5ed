// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package project reads the per-project inferex.yaml file.
//
// The file is optional. When present it must name the project and may
// carry scaling hints that are passed through to the server untouched:
//
//	project:
//	  name: sentiment
//	scaling:
//	  replicas: 2
//	  memory: 4Gi
//	  cpu: 500m
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file in the project root.
const FileName = "inferex.yaml"

// DefaultName is used when neither the file nor the directory supplies
// a project name.
const DefaultName = "untitled"

// Config is the parsed inferex.yaml.
type Config struct {
	Project Info     `yaml:"project"`
	Scaling *Scaling `yaml:"scaling,omitempty"`
}

// Info identifies the project.
type Info struct {
	Name string `yaml:"name"`
}

// Scaling holds resource hints for the served deployment.
type Scaling struct {
	Replicas int      `yaml:"replicas"`
	Memory   Quantity `yaml:"memory,omitempty"`
	CPU      Quantity `yaml:"cpu,omitempty"`
}

// Quantity is a resource amount written either as a string ("500m",
// "4Gi") or a bare number.
type Quantity string

func (q *Quantity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a string or number", node.Line)
	}
	*q = Quantity(node.Value)
	return nil
}

var (
	memoryPattern = regexp.MustCompile(`^\d+(?:Gi|G)$`)
	cpuPattern    = regexp.MustCompile(`^\d+m?$`)
)

// SchemaError lists everything wrong with an inferex.yaml.
type SchemaError struct {
	Path     string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s is invalid: %s", e.Path, strings.Join(e.Problems, "; "))
}

// Load reads dir/inferex.yaml. A missing file is not an error: found
// is false and cfg is nil.
func Load(dir string) (cfg *Config, found bool, err error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading project config: %w", err)
	}

	cfg = &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, true, fmt.Errorf("parsing %s: %w", path, err)
	}
	if problems := cfg.check(); len(problems) > 0 {
		return nil, true, &SchemaError{Path: path, Problems: problems}
	}
	return cfg, true, nil
}

func (c *Config) check() []string {
	var problems []string
	if strings.TrimSpace(c.Project.Name) == "" {
		problems = append(problems, "project.name is required")
	}
	if c.Scaling == nil {
		return problems
	}
	if c.Scaling.Replicas < 1 || c.Scaling.Replicas > 10 {
		problems = append(problems, fmt.Sprintf("scaling.replicas must be between 1 and 10 (got %d)", c.Scaling.Replicas))
	}
	if c.Scaling.Memory != "" && !memoryPattern.MatchString(string(c.Scaling.Memory)) {
		problems = append(problems, fmt.Sprintf("scaling.memory %q must look like 4Gi or 4G", c.Scaling.Memory))
	}
	if c.Scaling.CPU != "" && !cpuPattern.MatchString(string(c.Scaling.CPU)) {
		problems = append(problems, fmt.Sprintf("scaling.cpu %q must look like 2 or 500m", c.Scaling.CPU))
	}
	return problems
}

// Name picks the project name for dir: the configured name, else the
// directory's base name, else DefaultName.
func Name(dir string, cfg *Config) string {
	if cfg != nil && strings.TrimSpace(cfg.Project.Name) != "" {
		return strings.TrimSpace(cfg.Project.Name)
	}
	if absolute, err := filepath.Abs(dir); err == nil {
		dir = absolute
	}
	base := filepath.Base(dir)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return DefaultName
	}
	return base
}
