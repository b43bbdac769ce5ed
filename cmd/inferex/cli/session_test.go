// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/inferex/inferex/lib/config"
)

func TestSessionFilePath_Precedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	t.Setenv(EnvSessionFile, "/explicit/token.json")
	if path, _ := SessionFilePath("/configured.json"); path != "/explicit/token.json" {
		t.Errorf("with %s set: path = %q", EnvSessionFile, path)
	}

	t.Setenv(EnvSessionFile, "")
	if path, _ := SessionFilePath("/configured.json"); path != "/configured.json" {
		t.Errorf("with auth.session_file: path = %q", path)
	}
	if path, _ := SessionFilePath(""); path != filepath.Join("/xdg", "inferex", "config.json") {
		t.Errorf("default path = %q", path)
	}
}

func TestSessionFile_MissingFileHasNoToken(t *testing.T) {
	file := SessionFile{Path: filepath.Join(t.TempDir(), "absent.json")}
	token, err := file.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "" {
		t.Errorf("token = %q, want empty", token)
	}
}

func TestSessionFile_ToleratesCommentsAndKeepsFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	handEdited := `{
  // pasted from the dashboard
  "access_token": "first",
  "theme": "dark",
}
`
	if err := os.WriteFile(path, []byte(handEdited), 0o600); err != nil {
		t.Fatal(err)
	}
	file := SessionFile{Path: path}

	token, err := file.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "first" {
		t.Errorf("token = %q, want first", token)
	}

	if err := file.SaveToken("second"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("saved file is not strict JSON: %v\n%s", err, data)
	}
	if fields["access_token"] != "second" || fields["theme"] != "dark" {
		t.Errorf("saved fields = %v", fields)
	}
}

func TestSessionFile_NullContentIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("null\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	file := SessionFile{Path: path}

	token, err := file.Token()
	if err != nil || token != "" {
		t.Fatalf("Token = %q, %v; want empty, nil", token, err)
	}
	if err := file.SaveToken("refreshed"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	if token, _ := file.Token(); token != "refreshed" {
		t.Errorf("token after save = %q, want refreshed", token)
	}
}

func TestSessionFile_SaveCreatesPrivateFile(t *testing.T) {
	directory := filepath.Join(t.TempDir(), "nested", "inferex")
	file := SessionFile{Path: filepath.Join(directory, "config.json")}

	if err := file.SaveToken("secret"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(file.Path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}
	directoryInfo, err := os.Stat(directory)
	if err != nil {
		t.Fatal(err)
	}
	if directoryInfo.Mode().Perm() != 0o700 {
		t.Errorf("directory mode = %v, want 0700", directoryInfo.Mode().Perm())
	}

	removed, err := file.Remove()
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v; want true, nil", removed, err)
	}
	removed, err = file.Remove()
	if err != nil || removed {
		t.Errorf("second Remove = %v, %v; want false, nil", removed, err)
	}
}

func TestOpen_TokenPrecedence(t *testing.T) {
	t.Setenv(EnvSessionFile, "")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	path := filepath.Join(t.TempDir(), "config.json")
	if err := (SessionFile{Path: path}).SaveToken("from-file"); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Auth.SessionFile = path
	client, err := Open(cfg, logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if client.Token() != "from-file" {
		t.Errorf("token = %q, want the session file token", client.Token())
	}
	if client.SessionFile.Path != path {
		t.Errorf("session file = %q, want %q", client.SessionFile.Path, path)
	}

	cfg.Auth.Token = "from-config"
	client, err = Open(cfg, logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if client.Token() != "from-config" {
		t.Errorf("token = %q, want the configured token", client.Token())
	}
}
