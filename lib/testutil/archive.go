// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"testing"
)

// ArchiveEntries returns the member names of the tar archive at path,
// read through decompress (which receives the raw file).
func ArchiveEntries(t testing.TB, path string, decompress func(io.Reader) (io.ReadCloser, error)) []string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	defer file.Close()

	stream, err := decompress(file)
	if err != nil {
		t.Fatalf("opening decompressor: %v", err)
	}
	defer stream.Close()

	var names []string
	reader := tar.NewReader(stream)
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return names
		}
		if err != nil {
			t.Fatalf("reading archive %s: %v", path, err)
		}
		names = append(names, header.Name)
	}
}
