// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package contenthash

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/big"
	"os"

	"github.com/inferex/inferex/lib/ignore"
)

// ShortLength is the number of hex characters kept from the digest.
const ShortLength = 8

// SuffixLength is the number of random characters appended in force
// mode.
const SuffixLength = 3

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Config holds the parameters for creating an Addresser.
type Config struct {
	// Hashers are tried in order; the first one that is Available and
	// succeeds wins. Defaults to GitTree then Content.
	Hashers []TreeHasher

	// Suffix produces the random force-mode suffix. Defaults to
	// RandomSuffix.
	Suffix func() (string, error)

	Logger *slog.Logger
}

// Addresser computes deployment identifiers.
type Addresser struct {
	hashers []TreeHasher
	suffix  func() (string, error)
	logger  *slog.Logger
}

// New creates an Addresser.
func New(config Config) *Addresser {
	hashers := config.Hashers
	if len(hashers) == 0 {
		hashers = []TreeHasher{GitTree{}, Content{}}
	}
	suffix := config.Suffix
	if suffix == nil {
		suffix = RandomSuffix
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Addresser{hashers: hashers, suffix: suffix, logger: logger}
}

// Compute returns the 8-character identifier for the project at dir.
// With randomize set, "-" and three random [a-z0-9] characters are
// appended so that the server treats the upload as a new deployment.
func (a *Addresser) Compute(ctx context.Context, dir string, rules *ignore.Rules, randomize bool) (string, error) {
	if err := CheckNonEmpty(dir); err != nil {
		return "", err
	}

	files, err := rules.Files(dir)
	if err != nil {
		return "", fmt.Errorf("listing project files: %w", err)
	}

	digest, err := a.hash(ctx, dir, files)
	if err != nil {
		return "", err
	}
	identifier := digest[:ShortLength]

	if randomize {
		suffix, err := a.suffix()
		if err != nil {
			return "", fmt.Errorf("generating deployment suffix: %w", err)
		}
		identifier += "-" + suffix
	}
	return identifier, nil
}

func (a *Addresser) hash(ctx context.Context, dir string, files []ignore.File) (string, error) {
	var lastErr error
	for _, hasher := range a.hashers {
		if !hasher.Available(ctx, dir) {
			continue
		}
		digest, err := hasher.TreeHash(ctx, dir, files)
		if err != nil {
			a.logger.Debug("tree hasher failed, trying next",
				"hasher", hasher.Name(),
				"error", err,
			)
			lastErr = err
			continue
		}
		if len(digest) < ShortLength {
			lastErr = fmt.Errorf("%s hasher returned short digest %q", hasher.Name(), digest)
			continue
		}
		a.logger.Debug("computed deployment identifier", "hasher", hasher.Name(), "files", len(files))
		return digest, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no tree hasher available")
	}
	return "", fmt.Errorf("hashing project: %w", lastErr)
}

// CheckNonEmpty returns an *EmptyProjectError when dir does not exist
// or has no entries.
func CheckNonEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return &EmptyProjectError{Dir: dir, Missing: true}
	}
	if err != nil {
		return fmt.Errorf("reading project directory: %w", err)
	}
	if len(entries) == 0 {
		return &EmptyProjectError{Dir: dir}
	}
	return nil
}

// RandomSuffix returns SuffixLength characters drawn uniformly from
// [a-z0-9] using crypto/rand.
func RandomSuffix() (string, error) {
	limit := big.NewInt(int64(len(suffixAlphabet)))
	suffix := make([]byte, SuffixLength)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		suffix[i] = suffixAlphabet[n.Int64()]
	}
	return string(suffix), nil
}
