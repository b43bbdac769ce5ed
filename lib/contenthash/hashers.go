// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package contenthash

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/inferex/inferex/lib/git"
	"github.com/inferex/inferex/lib/ignore"
)

// TreeHasher computes a hex digest over a project's non-ignored files.
type TreeHasher interface {
	// Name identifies the hasher in logs.
	Name() string

	// Available reports whether the hasher applies to dir.
	Available(ctx context.Context, dir string) bool

	// TreeHash returns a lowercase hex digest of files under dir.
	TreeHash(ctx context.Context, dir string, files []ignore.File) (string, error)
}

// GitTree hashes the staged working tree of a git repository.
type GitTree struct{}

func (GitTree) Name() string { return "git" }

// Available requires a git binary and a repository rooted at dir with
// at least one commit.
func (GitTree) Available(ctx context.Context, dir string) bool {
	if !git.Available() {
		return false
	}
	hasCommits, err := git.NewRepository(dir).HasCommits()
	return err == nil && hasCommits
}

func (GitTree) TreeHash(ctx context.Context, dir string, files []ignore.File) (string, error) {
	paths := make([]string, len(files))
	for i, file := range files {
		paths[i] = file.Path
	}
	return git.NewRepository(dir).WriteTree(ctx, paths)
}

// contentDomainKey is the BLAKE3 key for project content digests: the
// ASCII domain name zero-padded to 32 bytes.
var contentDomainKey = [32]byte{
	'i', 'n', 'f', 'e', 'r', 'e', 'x', '.', 'd', 'e', 'p', 'l', 'o', 'y', '.',
	'c', 'o', 'n', 't', 'e', 'n', 't',
}

// Content hashes relative paths and file bytes. Each file contributes
// its length-prefixed path followed by its length-prefixed contents,
// in sorted path order, so the digest does not depend on walk order.
type Content struct{}

func (Content) Name() string { return "content" }

func (Content) Available(context.Context, string) bool { return true }

func (Content) TreeHash(ctx context.Context, dir string, files []ignore.File) (string, error) {
	hasher, err := blake3.NewKeyed(contentDomainKey[:])
	if err != nil {
		return "", fmt.Errorf("creating content hasher: %w", err)
	}

	sorted := append([]ignore.File(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	for _, file := range sorted {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		writeLength(hasher, uint64(len(file.Path)))
		io.WriteString(hasher, file.Path)
		if err := hashFile(hasher, file); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func hashFile(hasher *blake3.Hasher, file ignore.File) error {
	handle, err := os.Open(file.Abs)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", file.Path, err)
	}
	defer handle.Close()

	info, err := handle.Stat()
	if err != nil {
		return fmt.Errorf("hashing %s: %w", file.Path, err)
	}
	writeLength(hasher, uint64(info.Size()))
	if _, err := io.Copy(hasher, io.LimitReader(handle, info.Size())); err != nil {
		return fmt.Errorf("hashing %s: %w", file.Path, err)
	}
	return nil
}

func writeLength(w io.Writer, n uint64) {
	var buffer [8]byte
	binary.BigEndian.PutUint64(buffer[:], n)
	w.Write(buffer[:])
}
