// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ManifestFile is the dependency manifest read from the project root.
const ManifestFile = "requirements.txt"

var operatorReplacer = strings.NewReplacer(
	"<", " ", ">", " ", "=", " ", "~", " ", "!", " ",
	";", " ", "[", " ", "@", " ",
	"-", "_",
)

// ParseManifest extracts normalized package names from a requirements
// file. Comment lines and pip option lines ("-r", "--index-url") are
// skipped. Version operators are stripped, "-" becomes "_", and only
// the first whitespace-separated token is kept.
func ParseManifest(reader io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		fields := strings.Fields(operatorReplacer.Replace(line))
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// LoadManifest reads dir/requirements.txt. found is false when the
// file does not exist, in which case names is empty and err is nil.
func LoadManifest(dir string) (names []string, found bool, err error) {
	file, err := os.Open(filepath.Join(dir, ManifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("opening %s: %w", ManifestFile, err)
	}
	defer file.Close()

	names, err = ParseManifest(file)
	if err != nil {
		return nil, true, fmt.Errorf("reading %s: %w", ManifestFile, err)
	}
	return names, true, nil
}
