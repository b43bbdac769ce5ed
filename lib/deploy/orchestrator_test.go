// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/inferex/inferex/lib/api"
	"github.com/inferex/inferex/lib/bundle"
	"github.com/inferex/inferex/lib/contenthash"
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
		"venv/lib/big.so":  "not uploaded",
		"weights/model.pt": "uploaded",
	})
}

// fakeAPI is an in-memory deployment server. It records every request
// and keeps the archive entries of the last upload.
type fakeAPI struct {
	t *testing.T

	mu          sync.Mutex
	requests    []string
	uploadQuery url.Values
	statusQuery url.Values
	entries     []string

	uploadStatus int
	uploadBody   string
	statusBody   string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	return &fakeAPI{
		t:            t,
		uploadStatus: http.StatusOK,
		uploadBody:   `{"message":"deployment queued"}`,
		statusBody:   `{"state":"SUCCESS","stage":"deploy"}`,
	}
}

func (f *fakeAPI) record(request *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request.Method+" "+request.URL.Path)
}

func (f *fakeAPI) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

func (f *fakeAPI) lastUpload() (url.Values, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploadQuery, f.entries
}

func (f *fakeAPI) lastStatusQuery() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusQuery
}

func (f *fakeAPI) handler() http.Handler {
	archive := filepath.Join(f.t.TempDir(), "received.tar.xz")

	router := chi.NewRouter()
	router.Post("/projects", func(writer http.ResponseWriter, request *http.Request) {
		f.record(request)
		fmt.Fprintf(writer, `{"name":%q}`, request.URL.Query().Get("project_name"))
	})
	router.Post("/deployments", func(writer http.ResponseWriter, request *http.Request) {
		f.record(request)
		file, _, err := request.FormFile(api.UploadField)
		if err != nil {
			http.Error(writer, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if err := os.WriteFile(archive, data, 0o644); err != nil {
			f.t.Errorf("saving upload: %v", err)
		}
		entries := testutil.ArchiveEntries(f.t, archive, bundle.CompressionXZ.NewReader)

		f.mu.Lock()
		f.uploadQuery = request.URL.Query()
		f.entries = entries
		status, body := f.uploadStatus, f.uploadBody
		f.mu.Unlock()

		writer.WriteHeader(status)
		io.WriteString(writer, body)
	})
	router.Get("/deployments/status", func(writer http.ResponseWriter, request *http.Request) {
		f.record(request)
		f.mu.Lock()
		f.statusQuery = request.URL.Query()
		body := f.statusBody
		f.mu.Unlock()
		io.WriteString(writer, body)
	})
	return router
}

func newTestOrchestrator(t *testing.T, server *fakeAPI, config Config) *Orchestrator {
	t.Helper()
	httpServer := httptest.NewServer(server.handler())
	t.Cleanup(httpServer.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session, err := api.NewSession(api.Config{
		BaseURL:     httpServer.URL,
		Token:       "test-token",
		HTTPClient:  httpServer.Client(),
		Credentials: api.StaticCredentials{},
		Logger:      logger,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	config.Server = session
	config.Logger = logger
	return New(config)
}

func TestDeploy_NonStreaming(t *testing.T) {
	server := newFakeAPI(t)
	orchestrator := newTestOrchestrator(t, server, Config{})
	dir := sentimentProject(t)

	var archivePath, identified string
	result, err := orchestrator.Deploy(context.Background(), Options{
		Dir: dir,
		Hooks: Hooks{
			Identified: func(id string) { identified = id },
			Bundled:    func(b *bundle.Bundle) { archivePath = b.Path },
		},
	})
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	if result.Response == nil || !result.Response.OK() || result.Stream != nil {
		t.Fatalf("result = %+v, want an OK response and no stream", result)
	}
	if result.ProjectName != "sentiment" {
		t.Errorf("ProjectName = %q", result.ProjectName)
	}
	if len(result.DeploymentID) != contenthash.ShortLength || identified != result.DeploymentID {
		t.Errorf("DeploymentID = %q, hook saw %q", result.DeploymentID, identified)
	}

	want := []string{"POST /projects", "POST /deployments"}
	if got := server.recorded(); !slices.Equal(got, want) {
		t.Errorf("requests = %v, want %v", got, want)
	}
	query, entries := server.lastUpload()
	if query.Get("project_name") != "sentiment" || query.Get("git_commit_sha") != result.DeploymentID || query.Get("stream") != "false" {
		t.Errorf("upload query = %v", query)
	}

	wantEntries := []string{"app.py", "inferex.yaml", "requirements.txt", "weights/model.pt"}
	if !slices.Equal(entries, wantEntries) {
		t.Errorf("archive entries = %v, want %v", entries, wantEntries)
	}

	if archivePath == "" {
		t.Fatal("Bundled hook not called")
	}
	if _, err := os.Stat(archivePath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("archive %s still exists after Deploy (stat error %v)", archivePath, err)
	}
}

func TestDeploy_Streaming(t *testing.T) {
	server := newFakeAPI(t)
	server.uploadBody = `{"task_id":"task-42"}`
	orchestrator := newTestOrchestrator(t, server, Config{})

	result, err := orchestrator.Deploy(context.Background(), Options{Dir: sentimentProject(t), Stream: true})
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}
	if result.Stream == nil || result.Response != nil {
		t.Fatalf("result = %+v, want a stream", result)
	}
	if query, _ := server.lastUpload(); query.Get("stream") != "true" {
		t.Errorf("upload query = %v", query)
	}

	var lines []string
	for line := range result.Stream.Lines() {
		lines = append(lines, line)
	}
	if !slices.Equal(lines, []string{"→ deploy"}) {
		t.Errorf("lines = %q", lines)
	}
	if result.Stream.Err() != nil {
		t.Errorf("stream error: %v", result.Stream.Err())
	}
	if query := server.lastStatusQuery(); query.Get("task_id") != "task-42" {
		t.Errorf("status query = %v", query)
	}
}

func TestDeploy_StreamingWithoutTaskID(t *testing.T) {
	server := newFakeAPI(t)
	orchestrator := newTestOrchestrator(t, server, Config{})

	_, err := orchestrator.Deploy(context.Background(), Options{Dir: sentimentProject(t), Stream: true})
	var failure *DeployFailureError
	if !errors.As(err, &failure) || failure.Step != StepUpload {
		t.Fatalf("err = %v, want an upload failure", err)
	}
}

func TestDeploy_ValidationFailureSendsNothing(t *testing.T) {
	server := newFakeAPI(t)
	orchestrator := newTestOrchestrator(t, server, Config{})
	dir := testutil.WriteProject(t, map[string]string{
		"a.py":             "@pipeline(name=\"predict\")\ndef a():\n    pass\n",
		"b.py":             "@pipeline(name=\"predict\")\ndef b():\n    pass\n",
		"requirements.txt": "",
	})

	_, err := orchestrator.Deploy(context.Background(), Options{Dir: dir})
	var failure *DeployFailureError
	if !errors.As(err, &failure) || failure.Step != StepValidate {
		t.Fatalf("err = %v, want a validate failure", err)
	}
	if !errors.Is(err, validate.ErrDuplicateName) {
		t.Errorf("err = %v, want ErrDuplicateName", err)
	}
	if got := server.recorded(); len(got) != 0 {
		t.Errorf("server received %v before validation passed", got)
	}
}

func TestDeploy_EmptyProject(t *testing.T) {
	server := newFakeAPI(t)
	orchestrator := newTestOrchestrator(t, server, Config{})

	_, err := orchestrator.Deploy(context.Background(), Options{Dir: t.TempDir()})
	var empty *contenthash.EmptyProjectError
	if !errors.As(err, &empty) {
		t.Fatalf("err = %v, want EmptyProjectError", err)
	}
	if got := server.recorded(); len(got) != 0 {
		t.Errorf("server received %v", got)
	}
}

func TestDeploy_UploadFailureRemovesArchive(t *testing.T) {
	server := newFakeAPI(t)
	server.uploadStatus = http.StatusBadRequest
	server.uploadBody = `{"detail":"bundle rejected"}`
	orchestrator := newTestOrchestrator(t, server, Config{})

	var archivePath string
	_, err := orchestrator.Deploy(context.Background(), Options{
		Dir:   sentimentProject(t),
		Hooks: Hooks{Bundled: func(b *bundle.Bundle) { archivePath = b.Path }},
	})
	var failure *DeployFailureError
	if !errors.As(err, &failure) || failure.Step != StepUpload {
		t.Fatalf("err = %v, want an upload failure", err)
	}
	if api.StatusCode(err) != http.StatusBadRequest || !strings.Contains(err.Error(), "bundle rejected") {
		t.Errorf("err = %v, want the 400 with its detail", err)
	}
	if _, statErr := os.Stat(archivePath); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("archive %s survived a failed upload", archivePath)
	}
}

func TestDeploy_ForceAppendsDistinctSuffixes(t *testing.T) {
	suffixes := []string{"a1b", "z9y"}
	var next int
	addresser := contenthash.New(contenthash.Config{
		Hashers: []contenthash.TreeHasher{contenthash.Content{}},
		Suffix: func() (string, error) {
			suffix := suffixes[next]
			next++
			return suffix, nil
		},
	})
	server := newFakeAPI(t)
	orchestrator := newTestOrchestrator(t, server, Config{Addresser: addresser})
	dir := sentimentProject(t)

	first, err := orchestrator.Deploy(context.Background(), Options{Dir: dir, Force: true})
	if err != nil {
		t.Fatalf("first Deploy: %v", err)
	}
	second, err := orchestrator.Deploy(context.Background(), Options{Dir: dir, Force: true})
	if err != nil {
		t.Fatalf("second Deploy: %v", err)
	}

	if first.DeploymentID[:8] != second.DeploymentID[:8] {
		t.Errorf("prefixes differ: %s vs %s", first.DeploymentID, second.DeploymentID)
	}
	if !strings.HasSuffix(first.DeploymentID, "-a1b") || !strings.HasSuffix(second.DeploymentID, "-z9y") {
		t.Errorf("identifiers = %s, %s", first.DeploymentID, second.DeploymentID)
	}
}

func TestDeploy_ProjectNameResolution(t *testing.T) {
	t.Run("override", func(t *testing.T) {
		server := newFakeAPI(t)
		orchestrator := newTestOrchestrator(t, server, Config{})
		result, err := orchestrator.Deploy(context.Background(), Options{Dir: sentimentProject(t), ProjectName: "sentiment-v2"})
		if err != nil {
			t.Fatalf("Deploy: %v", err)
		}
		if result.ProjectName != "sentiment-v2" {
			t.Errorf("ProjectName = %q", result.ProjectName)
		}
	})

	t.Run("directory name", func(t *testing.T) {
		server := newFakeAPI(t)
		orchestrator := newTestOrchestrator(t, server, Config{})
		dir := testutil.WriteProject(t, map[string]string{
			"app.py":           sentimentApp,
			"requirements.txt": "numpy\n",
		})
		result, err := orchestrator.Deploy(context.Background(), Options{Dir: dir})
		if err != nil {
			t.Fatalf("Deploy: %v", err)
		}
		if result.ProjectName != filepath.Base(dir) {
			t.Errorf("ProjectName = %q, want %q", result.ProjectName, filepath.Base(dir))
		}
	})

	t.Run("invalid inferex.yaml", func(t *testing.T) {
		server := newFakeAPI(t)
		orchestrator := newTestOrchestrator(t, server, Config{})
		dir := testutil.WriteProject(t, map[string]string{
			"app.py":       sentimentApp,
			"inferex.yaml": "project: {}\n",
		})
		_, err := orchestrator.Deploy(context.Background(), Options{Dir: dir})
		var failure *DeployFailureError
		if !errors.As(err, &failure) || failure.Step != StepConfigure {
			t.Fatalf("err = %v, want a configure failure", err)
		}
		if got := server.recorded(); len(got) != 0 {
			t.Errorf("server received %v", got)
		}
	})
}
