// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inferex/inferex/lib/testutil"
)

func TestLoad_Missing(t *testing.T) {
	cfg, found, err := Load(t.TempDir())
	if err != nil || found || cfg != nil {
		t.Errorf("Load() = %v, %v, %v; want nil, false, nil", cfg, found, err)
	}
}

func TestLoad_Valid(t *testing.T) {
	dir := testutil.WriteProject(t, map[string]string{
		FileName: "project:\n  name: sentiment\nscaling:\n  replicas: 2\n  memory: 4Gi\n  cpu: 500\n",
	})

	cfg, found, err := Load(dir)
	if err != nil || !found {
		t.Fatalf("Load() = %v, %v", found, err)
	}
	if cfg.Project.Name != "sentiment" {
		t.Errorf("name = %q", cfg.Project.Name)
	}
	if cfg.Scaling == nil || cfg.Scaling.Replicas != 2 || cfg.Scaling.Memory != "4Gi" || cfg.Scaling.CPU != "500" {
		t.Errorf("scaling = %+v", cfg.Scaling)
	}
}

func TestLoad_SchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no name", "project: {}\n", "project.name is required"},
		{"too many replicas", "project:\n  name: a\nscaling:\n  replicas: 11\n", "scaling.replicas"},
		{"bad memory", "project:\n  name: a\nscaling:\n  replicas: 1\n  memory: 4MB\n", "scaling.memory"},
		{"bad cpu", "project:\n  name: a\nscaling:\n  replicas: 1\n  cpu: two\n", "scaling.cpu"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dir := testutil.WriteProject(t, map[string]string{FileName: test.content})
			_, found, err := Load(dir)
			var schemaError *SchemaError
			if !found || !errors.As(err, &schemaError) {
				t.Fatalf("Load() = %v, %v; want a SchemaError", found, err)
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %q does not mention %q", err, test.want)
			}
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := testutil.WriteProject(t, map[string]string{FileName: "project: [unterminated\n"})
	if _, _, err := Load(dir); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fraud-detector")
	if got := Name(dir, nil); got != "fraud-detector" {
		t.Errorf("Name without config = %q", got)
	}
	if got := Name(dir, &Config{Project: Info{Name: " churn "}}); got != "churn" {
		t.Errorf("Name with config = %q", got)
	}
	if got := Name("/", nil); got != DefaultName {
		t.Errorf("Name of the root = %q, want %q", got, DefaultName)
	}
}
