//go:build !windows

package iomap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_MapsFileContentVerbatim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	want := "a,b\n1,2\n"
	if err := os.WriteFile(path, []byte(want), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	if got := string(f.Bytes()); got != want {
		t.Fatalf("Bytes() = %q, want %q", got, want)
	}
}

func TestOpen_EmptyFileMapsToZeroLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	if len(f.Bytes()) != 0 {
		t.Fatalf("Bytes() len = %d, want 0", len(f.Bytes()))
	}
}
