//go:build windows

package iomap

import (
	"fmt"
	"io"
	"os"
)

// File holds a CSV file's bytes, read in full (no Windows mmap support;
// matches the teacher's own mmap_windows.go fallback).
type File struct {
	data []byte
}

// Open reads path in full.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("iomap: open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("iomap: read %s: %w", path, err)
	}
	return &File{data: data}, nil
}

// Bytes returns the file's content.
func (f *File) Bytes() []byte { return f.data }

// Close is a no-op: there is no mapping to release.
func (f *File) Close() error { return nil }
