// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package contenthash

import "fmt"

// EmptyProjectError reports a project directory that does not exist
// or contains no entries.
type EmptyProjectError struct {
	Dir     string
	Missing bool
}

func (e *EmptyProjectError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s does not exist", e.Dir)
	}
	return fmt.Sprintf("%s is empty, please add files to it", e.Dir)
}
