// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Compression names the stream codec wrapped around the tar archive.
type Compression string

const (
	// CompressionXZ is the default: the deployment API expects
	// application/x-xz uploads.
	CompressionXZ   Compression = "xz"
	CompressionZstd Compression = "zstd"
	CompressionGzip Compression = "gzip"
	CompressionLZ4  Compression = "lz4"
)

// ErrUnsupportedCompression is returned for an unknown codec name.
var ErrUnsupportedCompression = errors.New("unsupported compression")

// ParseCompression parses a codec name. The empty string selects
// CompressionXZ.
func ParseCompression(name string) (Compression, error) {
	switch Compression(name) {
	case "":
		return CompressionXZ, nil
	case CompressionXZ, CompressionZstd, CompressionGzip, CompressionLZ4:
		return Compression(name), nil
	default:
		return "", fmt.Errorf("%w %q (supported: xz, zstd, gzip, lz4)", ErrUnsupportedCompression, name)
	}
}

// Extension returns the archive file suffix, including the ".tar".
func (c Compression) Extension() string {
	switch c {
	case CompressionZstd:
		return ".tar.zst"
	case CompressionGzip:
		return ".tar.gz"
	case CompressionLZ4:
		return ".tar.lz4"
	default:
		return ".tar.xz"
	}
}

// ContentType returns the MIME type sent with the upload.
func (c Compression) ContentType() string {
	switch c {
	case CompressionZstd:
		return "application/zstd"
	case CompressionGzip:
		return "application/gzip"
	case CompressionLZ4:
		return "application/x-lz4"
	default:
		return "application/x-xz"
	}
}

// NewWriter wraps w in a compressing writer. Close flushes the codec
// but does not close w.
func (c Compression) NewWriter(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionXZ:
		return xz.NewWriter(w)
	case CompressionZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedCompression, string(c))
	}
}

// NewReader wraps r in a decompressing reader.
func (c Compression) NewReader(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CompressionXZ:
		reader, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(reader), nil
	case CompressionZstd:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return decoder.IOReadCloser(), nil
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedCompression, string(c))
	}
}
