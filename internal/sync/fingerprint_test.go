package sync

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestComputeHash(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "d41d8cd98f00b204e9800998ecf8427e",
		},
		{
			name:  "known vector",
			input: "Hello, World!",
			want:  "65a8e27d8879283831b664bd8b7f0ad4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeHash(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ComputeHash: %v", err)
			}
			if got != tt.want {
				t.Errorf("hash = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComputeFileHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	if err := os.WriteFile(
		path, []byte("Hello, World!"), 0o644,
	); err != nil {
		t.Fatal(err)
	}

	got, err := ComputeFileHash(path)
	if err != nil {
		t.Fatalf("ComputeFileHash: %v", err)
	}
	if got != "65a8e27d8879283831b664bd8b7f0ad4" {
		t.Errorf("hash = %q", got)
	}
}

func TestComputeFileHashSingleByteChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	if err := os.WriteFile(
		path, []byte("Hello, World!"), 0o644,
	); err != nil {
		t.Fatal(err)
	}
	before, err := ComputeFileHash(path)
	if err != nil {
		t.Fatal(err)
	}

	// Same length, one byte different.
	if err := os.WriteFile(
		path, []byte("Hello, World?"), 0o644,
	); err != nil {
		t.Fatal(err)
	}
	after, err := ComputeFileHash(path)
	if err != nil {
		t.Fatal(err)
	}

	if before == after {
		t.Error("single-byte change did not alter the hash")
	}
}

func TestComputeFileHashMissing(t *testing.T) {
	_, err := ComputeFileHash(
		filepath.Join(t.TempDir(), "nope.jsonl"),
	)
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	if err := os.WriteFile(
		path, []byte("12345"), 0o644,
	); err != nil {
		t.Fatal(err)
	}

	size, err := fileSize(path)
	if err != nil {
		t.Fatalf("fileSize: %v", err)
	}
	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}

	if _, err := fileSize(
		filepath.Join(dir, "missing"),
	); err == nil {
		t.Error("expected error for missing file")
	}
}
