// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/inferex/inferex/cmd/inferex/cli"
	"github.com/inferex/inferex/cmd/inferex/clitest"
	"github.com/inferex/inferex/lib/testutil"
	"github.com/inferex/inferex/lib/validate"
)

const sentimentApp = `import inferex
import numpy

@inferex.pipeline(name="sentiment")
def predict(payload):
    return numpy.asarray(payload).tolist()
`

func sentimentProject(t *testing.T) string {
	t.Helper()
	return testutil.WriteProject(t, map[string]string{
		"app.py":           sentimentApp,
		"requirements.txt": "numpy==1.26.4\n",
		"inferex.yaml":     "project:\n  name: sentiment\n",
	})
}

// deployServer answers project registration and uploads, and serves
// statusBody for every status request.
func deployServer(t *testing.T, uploadBody, statusBody string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var statusRequests atomic.Int32
	router := chi.NewRouter()
	router.Post("/projects", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"name":"`+r.URL.Query().Get("project_name")+`"}`)
	})
	router.Post("/deployments", func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, uploadBody)
	})
	router.Get("/deployments/status", func(w http.ResponseWriter, r *http.Request) {
		statusRequests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, statusBody)
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, &statusRequests
}

func TestDeploy_JSONKeepsStdoutParseable(t *testing.T) {
	server, statusRequests := deployServer(t, `{"message":"deployment queued"}`, `{"state":"SUCCESS"}`)
	clitest.IsolateEnvironment(t, server.URL, "secret")
	stdout, stderr := clitest.CaptureOutput(t)
	dir := sentimentProject(t)

	if err := Command().ExecuteContext(context.Background(), []string{dir, "--json"}); err != nil {
		t.Fatalf("deploy: %v", err)
	}

	var result deployResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if result.ProjectName != "sentiment" || len(result.DeploymentID) != 8 {
		t.Errorf("result = %+v", result)
	}
	if result.StatusCode != http.StatusOK || result.TaskID != "" {
		t.Errorf("non-streaming result = %+v", result)
	}
	human := stderr.String()
	for _, want := range []string{"Project: sentiment", "Your deployment SHA is: " + result.DeploymentID} {
		if !strings.Contains(human, want) {
			t.Errorf("stderr missing %q:\n%s", want, human)
		}
	}
	if statusRequests.Load() != 0 {
		t.Errorf("non-streaming deploy polled status %d times", statusRequests.Load())
	}
}

func TestDeploy_FailedStreamExitsOne(t *testing.T) {
	server, statusRequests := deployServer(t,
		`{"task_id":"task-7"}`,
		`{"state":"FAILURE","stage":"build","exception":"ModuleNotFoundError: torch"}`)
	clitest.IsolateEnvironment(t, server.URL, "secret")
	stdout, _ := clitest.CaptureOutput(t)
	dir := sentimentProject(t)

	err := Command().ExecuteContext(context.Background(), []string{dir, "--stream"})

	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) || coder.ExitCode() != 1 {
		t.Fatalf("deploy --stream = %v, want exit code 1", err)
	}
	if statusRequests.Load() != 1 {
		t.Errorf("status requests = %d, want 1", statusRequests.Load())
	}
	output := stdout.String()
	for _, want := range []string{"→ build", "ModuleNotFoundError: torch", "failed."} {
		if !strings.Contains(output, want) {
			t.Errorf("stdout missing %q:\n%s", want, output)
		}
	}
}

func TestDeploy_StreamSuccessWithJSON(t *testing.T) {
	server, _ := deployServer(t, `{"task_id":"task-8"}`, `{"state":"SUCCESS","stage":"deploy"}`)
	clitest.IsolateEnvironment(t, server.URL, "secret")
	stdout, _ := clitest.CaptureOutput(t)
	dir := sentimentProject(t)

	if err := Command().ExecuteContext(context.Background(), []string{dir, "--stream", "--json"}); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	var result deployResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if result.TaskID != "task-8" || result.State != "SUCCESS" {
		t.Errorf("result = %+v", result)
	}
	if len(result.Lines) != 1 || result.Lines[0] != "→ deploy" {
		t.Errorf("Lines = %q, want the single stage line", result.Lines)
	}
}

func TestDeploy_UnknownCompressionIsValidation(t *testing.T) {
	server, _ := deployServer(t, `{}`, `{}`)
	clitest.IsolateEnvironment(t, server.URL, "secret")
	clitest.CaptureOutput(t)

	err := Command().ExecuteContext(context.Background(), []string{sentimentProject(t), "--compression", "bzip2"})
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Errorf("error = %v (category %q), want validation", err, cli.CategoryOf(err))
	}
}

func TestValidate_RunsWithoutServer(t *testing.T) {
	// Nothing listens on the configured API; validate must not need it.
	clitest.IsolateEnvironment(t, "http://127.0.0.1:1", "")
	stdout, _ := clitest.CaptureOutput(t)

	if err := ValidateCommand().ExecuteContext(context.Background(), []string{sentimentProject(t), "-o", "json"}); err != nil {
		t.Fatalf("validate: %v", err)
	}
	var result validateResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if len(result.Pipelines) != 1 || result.Pipelines[0].Name != "sentiment" || result.Pipelines[0].Path != "app.py" {
		t.Errorf("pipelines = %+v", result.Pipelines)
	}
	if result.Warnings == nil {
		t.Error("warnings encoded as null")
	}
}

func TestValidate_DuplicateNameFails(t *testing.T) {
	clitest.IsolateEnvironment(t, "http://127.0.0.1:1", "")
	clitest.CaptureOutput(t)
	dir := testutil.WriteProject(t, map[string]string{
		"a.py":             "@pipeline(name=\"foo\")\ndef a():\n    pass\n",
		"models/b.py":      "@pipeline(name=\"foo\")\ndef b():\n    pass\n",
		"requirements.txt": "",
	})

	err := ValidateCommand().ExecuteContext(context.Background(), []string{dir})
	if !errors.Is(err, validate.ErrDuplicateName) {
		t.Fatalf("validate = %v, want a duplicate name error", err)
	}
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Errorf("category = %q, want validation", cli.CategoryOf(err))
	}
}
