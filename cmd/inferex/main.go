// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/inferex/inferex/cmd/inferex/commands"
)

func main() {
	if err := run(); err != nil {
		// A command that has already reported its outcome (a failed
		// deployment stream) returns an exit code instead of a message.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
