// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// EnvSessionFile overrides the location of the token file.
const EnvSessionFile = "INFEREX_SESSION_FILE"

// tokenKey is the token file field holding the bearer token.
const tokenKey = "access_token"

// SessionFilePath returns the token file location. INFEREX_SESSION_FILE
// wins, then configured (auth.session_file from the client config),
// then $XDG_CONFIG_HOME/inferex/config.json with ~/.config standing in
// for an unset XDG_CONFIG_HOME.
func SessionFilePath(configured string) (string, error) {
	if path := os.Getenv(EnvSessionFile); path != "" {
		return path, nil
	}
	if configured != "" {
		return configured, nil
	}
	directory := os.Getenv("XDG_CONFIG_HOME")
	if directory == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating session file: %w", err)
		}
		directory = filepath.Join(home, ".config")
	}
	return filepath.Join(directory, "inferex", "config.json"), nil
}

// SessionFile is the on-disk token store written by "inferex login".
// It is a JSON object whose access_token field holds the bearer token.
// Comments and trailing commas are tolerated on read, and fields other
// than access_token are preserved on write.
type SessionFile struct {
	Path string
}

// Token returns the stored token, or "" when the file does not exist.
func (f SessionFile) Token() (string, error) {
	fields, err := f.read()
	if err != nil {
		return "", err
	}
	token, _ := fields[tokenKey].(string)
	return token, nil
}

// SaveToken stores token, creating the parent directory with mode 0700
// and the file with mode 0600.
func (f SessionFile) SaveToken(token string) error {
	fields, err := f.read()
	if err != nil {
		fields = map[string]any{}
	}
	fields[tokenKey] = token

	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session file: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(f.Path)
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}
	temporary, err := os.CreateTemp(directory, ".session-*")
	if err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	defer os.Remove(temporary.Name())
	if err := temporary.Chmod(0o600); err != nil {
		temporary.Close()
		return fmt.Errorf("writing session file: %w", err)
	}
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(temporary.Name(), f.Path); err != nil {
		return fmt.Errorf("writing session file %s: %w", f.Path, err)
	}
	return nil
}

// Remove deletes the file. It reports false when there was nothing to
// delete.
func (f SessionFile) Remove() (bool, error) {
	err := os.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("removing session file: %w", err)
	}
	return true, nil
}

func (f SessionFile) read() (map[string]any, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file %s: %w", f.Path, err)
	}
	fields := map[string]any{}
	cleaned := bytes.TrimSpace(jsonc.ToJSON(data))
	if len(cleaned) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(cleaned, &fields); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", f.Path, err)
	}
	// A literal null decodes into a nil map.
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}
