// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"

	"github.com/inferex/inferex/lib/api"
	"github.com/inferex/inferex/lib/bundle"
	"github.com/inferex/inferex/lib/validate"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestAge(t *testing.T) {
	tests := []struct {
		addedAt string
		want    string
	}{
		{"2026-03-01T09:00:00Z", "3 hours ago"},
		{"2026-03-01T11:59:30", "30 seconds ago"},
		{"2026-02-27", "2 days ago"},
		{"", "-"},
		{"yesterday-ish", "yesterday-ish"},
	}
	for _, test := range tests {
		if got := Age(test.addedAt, now); got != test.want {
			t.Errorf("Age(%q) = %q, want %q", test.addedAt, got, test.want)
		}
	}
}

func TestDeployments_Table(t *testing.T) {
	var buffer bytes.Buffer
	err := Deployments(&buffer, []api.Deployment{
		{
			GitSHA:      "1a2b3c4d",
			ProjectName: "sentiment",
			Status:      "running",
			AddedAt:     "2026-03-01T11:00:00Z",
			URL:         "sentiment.inferex.net",
			Version:     "3",
		},
		{GitSHA: "5e6f7a8b-x1z", ProjectName: "sentiment"},
	}, now)
	if err != nil {
		t.Fatalf("Deployments: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buffer.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buffer.String())
	}
	if fields := strings.Fields(lines[0]); strings.Join(fields, " ") != "SHA PROJECT STATUS AGE DOMAIN VERSION" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "1 hour ago") || !strings.Contains(lines[1], "sentiment.inferex.net") {
		t.Errorf("first row = %q", lines[1])
	}
	if fields := strings.Fields(lines[2]); strings.Join(fields, " ") != "5e6f7a8b-x1z sentiment - - - -" {
		t.Errorf("second row = %q", lines[2])
	}
	// Columns are aligned: every row starts its PROJECT column at the same offset.
	column := strings.Index(lines[0], "PROJECT")
	if strings.Index(lines[1], "sentiment") != column || strings.Index(lines[2], "sentiment") != column {
		t.Errorf("PROJECT column not aligned:\n%s", buffer.String())
	}
}

func TestPipelines_Table(t *testing.T) {
	var buffer bytes.Buffer
	err := Pipelines(&buffer, []api.Pipeline{
		{GitSHA: "1a2b3c4d", ProjectName: "sentiment", Status: "running", Path: "/sentiment/predict", IsAsync: true},
	}, now)
	if err != nil {
		t.Fatalf("Pipelines: %v", err)
	}
	output := buffer.String()
	for _, want := range []string{"PATH", "ASYNC", "/sentiment/predict", "true"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestProjects_EmptyListPrintsHeader(t *testing.T) {
	var buffer bytes.Buffer
	if err := Projects(&buffer, nil, now); err != nil {
		t.Fatalf("Projects: %v", err)
	}
	if strings.TrimSpace(buffer.String()) != "NAME   AGE" {
		t.Errorf("output = %q", buffer.String())
	}
}

func TestPrinter_PlainProfile(t *testing.T) {
	var buffer bytes.Buffer
	printer := NewPrinter(&buffer, termenv.Ascii)

	printer.StreamLine("→ build")
	printer.StreamLine("   ↳ install deps")
	printer.StreamLine("\x1b[31mModuleNotFoundError: torch\x1b[0m")
	printer.Success("Deployment %s is live.", "1a2b3c4d")

	want := "→ build\n   ↳ install deps\nModuleNotFoundError: torch\nDeployment 1a2b3c4d is live.\n"
	if buffer.String() != want {
		t.Errorf("output = %q, want %q", buffer.String(), want)
	}
}

func TestValidationReport(t *testing.T) {
	var buffer bytes.Buffer
	err := ValidationReport(&buffer, &validate.Report{
		Pipelines: []validate.Pipeline{
			{Name: "sentiment", Function: "predict", Path: "app.py", Line: 4},
			{Name: "sentiment-batch", Function: "predict_batch", Path: "batch/app.py", Line: 12, IsAsync: true},
		},
		Files:    2,
		Warnings: []validate.Warning{{Kind: validate.UnusedDependency, Message: "Unused dependencies found: pandas."}},
	})
	if err != nil {
		t.Fatalf("ValidationReport: %v", err)
	}
	output := buffer.String()
	for _, want := range []string{"app.py:4", "batch/app.py:12", "2 pipelines in 2 python files, 1 warning."} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestBundleSummary(t *testing.T) {
	got := BundleSummary(&bundle.Bundle{Files: 4, Size: 1_200_000, CompressedSize: 310_000, Compression: bundle.CompressionXZ})
	if got != "4 files, 1.2 MB → 310 kB xz" {
		t.Errorf("BundleSummary = %q", got)
	}
}

func TestUploadBar_RedrawsOnPercentChange(t *testing.T) {
	var buffer bytes.Buffer
	bar := NewUploadBar(&buffer, termenv.Ascii)

	bar.Update(0, 0)
	if buffer.Len() != 0 {
		t.Fatalf("drew a bar for an unknown total: %q", buffer.String())
	}
	bar.Update(10, 1000)
	bar.Update(11, 1000) // still 1%
	bar.Update(1000, 1000)
	bar.Done()

	output := buffer.String()
	if redraws := strings.Count(output, "\r"); redraws != 2 {
		t.Errorf("redraws = %d, want 2:\n%q", redraws, output)
	}
	if !strings.Contains(output, "1.0 kB / 1.0 kB") || !strings.HasSuffix(output, "\n") {
		t.Errorf("final frame = %q", output)
	}
}
