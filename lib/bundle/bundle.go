// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle packages a project directory into a compressed tar
// archive for upload.
//
// The walk honours the same [ignore.Rules] used to compute the
// deployment identifier. Paths inside the archive are relative to the
// project root. The uncompressed byte total is reported so callers can
// warn about projects that carry virtual environments or model
// weights.
package bundle

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/inferex/inferex/lib/ignore"
)

// DefaultSizeWarning is the uncompressed size above which Build logs
// a warning recommending an ignore file.
const DefaultSizeWarning int64 = 100_000_000

// BundleError reports a failure while writing the archive.
type BundleError struct {
	Path string
	Err  error
}

func (e *BundleError) Error() string {
	return fmt.Sprintf("building archive %s: %v", e.Path, e.Err)
}

func (e *BundleError) Unwrap() error { return e.Err }

// Bundle describes a finished archive.
type Bundle struct {
	Path        string
	Compression Compression
	Files       int
	// Size is the total uncompressed size of the archived files.
	Size int64
	// CompressedSize is the archive size on disk.
	CompressedSize int64
	// Oversized is set when Size exceeded the warning threshold.
	Oversized bool
}

// Config holds the parameters for creating a Bundler.
type Config struct {
	// Compression defaults to CompressionXZ.
	Compression Compression

	// SizeWarning defaults to DefaultSizeWarning.
	SizeWarning int64

	Logger *slog.Logger
}

// Bundler builds project archives.
type Bundler struct {
	compression Compression
	sizeWarning int64
	logger      *slog.Logger
}

// New creates a Bundler.
func New(config Config) *Bundler {
	compression := config.Compression
	if compression == "" {
		compression = CompressionXZ
	}
	sizeWarning := config.SizeWarning
	if sizeWarning <= 0 {
		sizeWarning = DefaultSizeWarning
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bundler{compression: compression, sizeWarning: sizeWarning, logger: logger}
}

// Compression returns the codec this bundler writes.
func (b *Bundler) Compression() Compression {
	return b.compression
}

// Scratch creates a private temporary directory and returns the
// archive path inside it together with a cleanup function that
// removes the directory. The caller must call cleanup on every path.
func (b *Bundler) Scratch() (string, func(), error) {
	dir, err := os.MkdirTemp("", "inferex-bundle-")
	if err != nil {
		return "", func() {}, fmt.Errorf("creating bundle directory: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			b.logger.Warn("removing bundle directory", "dir", dir, "error", err)
		}
	}
	return filepath.Join(dir, "project"+b.compression.Extension()), cleanup, nil
}

// Build writes every non-ignored regular file under dir into a
// compressed tar archive at archivePath. Failures are returned as
// *BundleError and logged with their cause.
func (b *Bundler) Build(ctx context.Context, dir string, rules *ignore.Rules, archivePath string) (*Bundle, error) {
	bundle, err := b.build(ctx, dir, rules, archivePath)
	if err != nil {
		b.logger.Error("archive build failed", "path", archivePath, "error", err)
		return nil, &BundleError{Path: archivePath, Err: err}
	}

	if bundle.Size > b.sizeWarning {
		bundle.Oversized = true
		b.logger.Warn(fmt.Sprintf("Project exceeds %s. Maybe you've left your venv or weights in the project. "+
			"It is recommended to use a %s file and pull artifacts at build time.",
			humanize.Bytes(uint64(b.sizeWarning)), ignore.FileName),
			"size", bundle.Size,
		)
	}
	b.logger.Debug("built archive",
		"path", archivePath,
		"files", bundle.Files,
		"size", humanize.Bytes(uint64(bundle.Size)),
		"compressed", humanize.Bytes(uint64(bundle.CompressedSize)),
	)
	return bundle, nil
}

func (b *Bundler) build(ctx context.Context, dir string, rules *ignore.Rules, archivePath string) (*Bundle, error) {
	output, err := os.OpenFile(archivePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	defer output.Close()

	compressor, err := b.compression.NewWriter(output)
	if err != nil {
		return nil, err
	}
	archive := tar.NewWriter(compressor)

	bundle := &Bundle{Path: archivePath, Compression: b.compression}
	err = rules.Walk(dir, func(file ignore.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		written, err := addFile(archive, file)
		if err != nil {
			return fmt.Errorf("adding %s: %w", file.Path, err)
		}
		bundle.Files++
		bundle.Size += written
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := archive.Close(); err != nil {
		return nil, fmt.Errorf("closing tar stream: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return nil, fmt.Errorf("closing %s stream: %w", b.compression, err)
	}
	info, err := output.Stat()
	if err != nil {
		return nil, err
	}
	bundle.CompressedSize = info.Size()
	return bundle, output.Close()
}

func addFile(archive *tar.Writer, file ignore.File) (int64, error) {
	handle, err := os.Open(file.Abs)
	if err != nil {
		return 0, err
	}
	defer handle.Close()

	info, err := handle.Stat()
	if err != nil {
		return 0, err
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return 0, err
	}
	header.Name = file.Path
	header.Uname, header.Gname = "", ""
	if err := archive.WriteHeader(header); err != nil {
		return 0, err
	}
	return io.Copy(archive, io.LimitReader(handle, info.Size()))
}
