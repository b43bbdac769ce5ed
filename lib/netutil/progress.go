// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import "io"

// ProgressReader wraps a reader and reports the cumulative number of
// bytes read after every successful Read. The reported count never
// decreases.
type ProgressReader struct {
	reader   io.Reader
	read     int64
	total    int64
	progress func(sent, total int64)
}

// NewProgressReader returns a reader that calls progress with the
// running byte count and the expected total. A nil progress function
// makes the wrapper transparent.
func NewProgressReader(reader io.Reader, total int64, progress func(sent, total int64)) *ProgressReader {
	return &ProgressReader{reader: reader, total: total, progress: progress}
}

func (p *ProgressReader) Read(buffer []byte) (int, error) {
	n, err := p.reader.Read(buffer)
	if n > 0 {
		p.read += int64(n)
		if p.progress != nil {
			p.progress(p.read, p.total)
		}
	}
	return n, err
}
