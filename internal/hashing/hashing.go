// Package hashing computes the content hashes the hook engine uses for
// optimistic-locking and stale-read detection.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/orchestrated/intentgate/internal/logging"
)

// Prefix is prepended to every hash this package produces, so a hash
// string is self-describing about its algorithm.
const Prefix = "sha256:"

var log = logging.Component("hashing")

// ComputeContentHash returns the prefixed, lowercase-hex SHA-256 digest
// of content.
func ComputeContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return Prefix + hex.EncodeToString(sum[:])
}

// ComputeFileHash reads absPath and returns its content hash. A
// missing file is not an error: it returns (nil, nil), since "the file
// does not exist yet" is a legitimate pre-hash for a creation. Any
// other I/O failure is logged and also degrades to (nil, nil) per the
// fail-open policy — hashing never blocks a tool call.
func ComputeFileHash(absPath string) (*string, error) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		log.Warn().Err(err).Str("path", absPath).Msg("failed to read file for hashing")
		return nil, nil
	}

	hash := ComputeContentHash(content)
	return &hash, nil
}

// Matches reports whether expected (possibly nil, meaning "file did
// not previously exist") agrees with the hash freshly computed from
// absPath.
func Matches(expected *string, absPath string) (bool, error) {
	actual, err := ComputeFileHash(absPath)
	if err != nil {
		return false, fmt.Errorf("hashing.Matches: %w", err)
	}

	if expected == nil && actual == nil {
		return true, nil
	}
	if expected == nil || actual == nil {
		return false, nil
	}
	return *expected == *actual, nil
}
