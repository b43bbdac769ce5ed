// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadPassword returns the password for "inferex login". A non-empty
// path names a file to read ("-" reads stdin); otherwise the user is
// prompted on the terminal with echo disabled.
func ReadPassword(path string) (string, error) {
	switch path {
	case "":
		return promptPassword()
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", Internal("reading password from stdin: %w", err)
		}
		return trimSecret(string(data), "stdin")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", Validation("reading password file: %w", err)
	}
	return trimSecret(string(data), path)
}

func promptPassword() (string, error) {
	descriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(descriptor) {
		return "", Validation("no terminal available for the password prompt (use --password-file)")
	}
	fmt.Fprint(Stderr, "Password: ")
	password, err := term.ReadPassword(descriptor)
	fmt.Fprintln(Stderr)
	if err != nil {
		return "", Internal("reading password: %w", err)
	}
	if len(password) == 0 {
		return "", Validation("password is empty")
	}
	return string(password), nil
}

// trimSecret strips the trailing newline left by echo and editors.
func trimSecret(value, source string) (string, error) {
	value = strings.TrimRight(value, "\r\n")
	if value == "" {
		return "", Validation("password from %s is empty", source)
	}
	return value, nil
}
