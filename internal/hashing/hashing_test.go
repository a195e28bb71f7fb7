package hashing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestComputeContentHash(t *testing.T) {
	h1 := ComputeContentHash([]byte("hello"))
	h2 := ComputeContentHash([]byte("hello"))
	h3 := ComputeContentHash([]byte("world"))

	if h1 != h2 {
		t.Errorf("same content produced different hashes: %q vs %q", h1, h2)
	}
	if h1 == h3 {
		t.Errorf("different content produced the same hash")
	}
	if len(h1) != len(Prefix)+64 {
		t.Errorf("hash length = %d, want %d", len(h1), len(Prefix)+64)
	}
	if h1[:len(Prefix)] != Prefix {
		t.Errorf("hash %q missing prefix %q", h1, Prefix)
	}
}

func TestComputeFileHashMissingFile(t *testing.T) {
	dir := t.TempDir()
	got, err := ComputeFileHash(filepath.Join(dir, "missing.txt"))
	if err != nil {
		t.Fatalf("ComputeFileHash() error = %v", err)
	}
	if got != nil {
		t.Errorf("ComputeFileHash() = %v, want nil for missing file", *got)
	}
}

func TestComputeFileHashExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := ComputeFileHash(path)
	if err != nil {
		t.Fatalf("ComputeFileHash() error = %v", err)
	}
	if got == nil {
		t.Fatal("ComputeFileHash() = nil, want a hash")
	}
	want := ComputeContentHash([]byte("content"))
	if *got != want {
		t.Errorf("ComputeFileHash() = %q, want %q", *got, want)
	}
}

func TestMatches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	hashV1 := ComputeContentHash([]byte("v1"))

	ok, err := Matches(&hashV1, path)
	if err != nil {
		t.Fatalf("Matches() error = %v", err)
	}
	if !ok {
		t.Errorf("Matches() = false, want true for matching content")
	}

	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	ok, err = Matches(&hashV1, path)
	if err != nil {
		t.Fatalf("Matches() error = %v", err)
	}
	if ok {
		t.Errorf("Matches() = true, want false after content changed")
	}
}

func TestMatchesBothNilForNonexistentFile(t *testing.T) {
	dir := t.TempDir()
	ok, err := Matches(nil, filepath.Join(dir, "never-created.txt"))
	if err != nil {
		t.Fatalf("Matches() error = %v", err)
	}
	if !ok {
		t.Errorf("Matches() = false, want true when both expected and actual are nil")
	}
}
