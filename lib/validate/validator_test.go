// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/inferex/inferex/lib/ignore"
	"github.com/inferex/inferex/lib/testutil"
)

func newTestValidator() *Validator {
	return New(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func validateProject(t *testing.T, files map[string]string) (*Report, error) {
	t.Helper()
	dir := testutil.WriteProject(t, files)
	rules, err := ignore.Resolve(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return newTestValidator().Validate(context.Background(), dir, rules)
}

const validApp = `import os
import numpy as np
import inferex
from helpers import tidy

@inferex.pipeline(name="sentiment", is_async=True, timeout=30)
def predict(payload):
    return tidy(np.array(payload))
`

func TestValidateAcceptsWellFormedProject(t *testing.T) {
	report, err := validateProject(t, map[string]string{
		"app.py":           validApp,
		"helpers.py":       "def tidy(x):\n    return x\n",
		"requirements.txt": "numpy==1.26.4\n",
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(report.Pipelines) != 1 {
		t.Fatalf("Pipelines = %+v, want one", report.Pipelines)
	}
	pipeline := report.Pipelines[0]
	if pipeline.Name != "sentiment" || pipeline.Function != "predict" || !pipeline.IsAsync {
		t.Errorf("pipeline = %+v", pipeline)
	}
	if pipeline.Timeout == nil || *pipeline.Timeout != 30 {
		t.Errorf("Timeout = %v, want 30", pipeline.Timeout)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", report.Warnings)
	}
	want := []string{"helpers", "inferex", "numpy", "os"}
	if !reflect.DeepEqual(report.Imports, want) {
		t.Errorf("Imports = %v, want %v", report.Imports, want)
	}
	if report.Files != 2 {
		t.Errorf("Files = %d, want 2", report.Files)
	}
}

func TestValidateDuplicateNamesAcrossFiles(t *testing.T) {
	_, err := validateProject(t, map[string]string{
		"a.py":             "@pipeline(name=\"foo\")\ndef a():\n    pass\n",
		"models/b.py":      "@pipeline(name=\"foo\")\ndef b():\n    pass\n",
		"requirements.txt": "",
	})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
	if !strings.Contains(err.Error(), `"foo"`) {
		t.Errorf("error %q does not name the duplicate", err)
	}
}

func TestValidateKeywordWhitelist(t *testing.T) {
	_, err := validateProject(t, map[string]string{
		"app.py": "@pipeline(name=\"x\", endpoint=\"y\")\ndef f():\n    pass\n",
	})
	if !errors.Is(err, ErrUnsupportedKeyword) {
		t.Fatalf("err = %v, want ErrUnsupportedKeyword", err)
	}
	message := err.Error()
	if !strings.Contains(message, "endpoint") || !strings.Contains(message, "name, is_async, timeout") {
		t.Errorf("error %q should name the keyword and list the whitelist", message)
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Path != "app.py" || validationErr.Line != 1 {
		t.Errorf("location = %+v", validationErr)
	}
}

func TestValidateNameNormalization(t *testing.T) {
	_, err := validateProject(t, map[string]string{
		"app.py": "@pipeline(name=\"My_Pipeline\")\ndef f():\n    pass\n",
	})
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("err = %v, want ErrInvalidName", err)
	}
	if !strings.Contains(err.Error(), "My_Pipeline") || !strings.Contains(err.Error(), `"my-pipeline"`) {
		t.Errorf("error %q should include the value and its normalized form", err)
	}

	report, err := validateProject(t, map[string]string{
		"app.py": "@pipeline(name=\"my-pipeline\")\ndef f():\n    pass\n",
	})
	if err != nil {
		t.Fatalf("my-pipeline rejected: %v", err)
	}
	if report.Pipelines[0].Name != "my-pipeline" {
		t.Errorf("Name = %q", report.Pipelines[0].Name)
	}
}

func TestValidateRejectsBadDeclarations(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   error
	}{
		{"positional", "@pipeline(\"version-1\", name=\"inference\")\ndef f():\n    pass\n", ErrArgumentsNotSupported},
		{"star kwargs", "@pipeline(**options)\ndef f():\n    pass\n", ErrUnsupportedKeyword},
		{"punctuation", "@pipeline(name=\"my-inference!\")\ndef f():\n    pass\n", ErrInvalidName},
		{"non literal", "@pipeline(name=NAME)\ndef f():\n    pass\n", ErrInvalidName},
		{"missing name", "@pipeline(timeout=5)\ndef f():\n    pass\n", ErrMissingName},
		{"unclosed", "@pipeline(name=\"x\"\n", ErrSyntax},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validateProject(t, map[string]string{"app.py": tc.source})
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidateSkipsUncalledAndForeignDecorators(t *testing.T) {
	report, err := validateProject(t, map[string]string{
		"app.py": `import functools

@functools.lru_cache(maxsize=None)
@pipeline
def cached():
    pass

class Model:
    @pipeline(name="method-pipeline")
    def run(self):
        pass
`,
		"requirements.txt": "",
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(report.Pipelines) != 1 || report.Pipelines[0].Name != "method-pipeline" {
		t.Errorf("Pipelines = %+v", report.Pipelines)
	}
}

func TestValidateDiscoveryGuard(t *testing.T) {
	_, err := validateProject(t, map[string]string{
		"README.md":      "hello",
		"deep/nested.py": "",
	})
	if err != nil {
		t.Fatalf("python file one level down should satisfy the guard: %v", err)
	}

	_, err = validateProject(t, map[string]string{
		"README.md":        "hello",
		"a/b/too_deep.py":  "",
		"venv/lib/site.py": "",
	})
	if !errors.Is(err, ErrWrongDirectory) {
		t.Fatalf("err = %v, want ErrWrongDirectory", err)
	}
}

func TestValidateIgnoresExcludedDirectories(t *testing.T) {
	report, err := validateProject(t, map[string]string{
		"app.py":             "import os\n",
		"venv/lib/broken.py": "@pipeline(name=\"x\"\n",
		"__pycache__/app.py": "@pipeline(bad=1)\ndef f(): pass\n",
		"requirements.txt":   "",
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if report.Files != 1 {
		t.Errorf("Files = %d, want 1", report.Files)
	}
}

func TestValidateDependencyWarnings(t *testing.T) {
	report, err := validateProject(t, map[string]string{
		"app.py":           "import requests\nimport torch\nimport json\n",
		"requirements.txt": "# pinned\nrequests==2.31.0\npandas>=2.0\n",
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(report.Warnings) != 2 {
		t.Fatalf("Warnings = %+v, want two", report.Warnings)
	}
	undeclared := report.Warnings[0]
	if undeclared.Kind != UndeclaredImport || !reflect.DeepEqual(undeclared.Modules, []string{"torch"}) {
		t.Errorf("first warning = %+v", undeclared)
	}
	unused := report.Warnings[1]
	if unused.Kind != UnusedDependency || !reflect.DeepEqual(unused.Modules, []string{"pandas"}) {
		t.Errorf("second warning = %+v", unused)
	}
	if !strings.Contains(unused.Message, "Removing these could improve deployment time") {
		t.Errorf("unused message = %q", unused.Message)
	}
}

func TestValidateMissingManifestWarns(t *testing.T) {
	report, err := validateProject(t, map[string]string{"app.py": "import os\n"})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(report.Warnings) != 1 || report.Warnings[0].Kind != MissingManifest {
		t.Errorf("Warnings = %+v, want one MissingManifest", report.Warnings)
	}
}

func TestParseManifest(t *testing.T) {
	input := `# comment
numpy==1.26.4
scikit-learn>=1.3
Flask~=3.0
torch!=2.0.0
uvicorn[standard]>=0.20
-r extra.txt
--index-url https://example.invalid/simple

requests ; python_version > "3.8"
`
	names, err := ParseManifest(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	want := []string{"numpy", "scikit_learn", "Flask", "torch", "uvicorn", "requests"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestNormalizeAndValidName(t *testing.T) {
	for name, valid := range map[string]bool{
		"my-pipeline":  true,
		"a1-b2-c3":     true,
		"My_Pipeline":  false,
		"my_pipeline":  false,
		"-leading":     false,
		"double--dash": false,
		"":             false,
	} {
		if got := ValidName(name); got != valid {
			t.Errorf("ValidName(%q) = %v, want %v", name, got, valid)
		}
	}
	if got := NormalizeName("My_Pipeline"); got != "my-pipeline" {
		t.Errorf("NormalizeName = %q", got)
	}
}
