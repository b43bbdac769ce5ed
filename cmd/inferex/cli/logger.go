// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// EnvLogLevel overrides the command log level.
const EnvLogLevel = "INFEREX_LOG_LEVEL"

// defaultLevel keeps routine progress out of the terminal unless asked for.
const defaultLevel = slog.LevelWarn

// LevelConfigurer is implemented by params structs that adjust the
// command log level after flags are parsed. [ClientOptions] implements
// it for --verbose and the configured log.level.
type LevelConfigurer interface {
	ConfigureLevel(level *slog.LevelVar)
}

// NewCommandLogger creates the logger handed to a command's Run. Output
// goes to [Stderr]: text when it is a terminal, JSON otherwise.
func NewCommandLogger(level slog.Leveler) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if IsTerminal(Stderr) {
		return slog.New(slog.NewTextHandler(Stderr, options))
	}
	return slog.New(slog.NewJSONHandler(Stderr, options))
}

// ParseLevel maps debug, info, warn (or warning) and error to a level.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}

func initialLevel(fromEnvironment string) slog.Level {
	if level, ok := ParseLevel(fromEnvironment); ok {
		return level
	}
	return defaultLevel
}

// IsTerminal reports whether w is an *os.File attached to a terminal.
func IsTerminal(w any) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
