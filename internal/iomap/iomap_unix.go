//go:build !windows

// Package iomap loads a CSV file into memory for colcsv.Parse. It is the
// File I/O collaborator the core pipeline deliberately stays independent
// of (spec §1): nothing under internal/scanner, internal/boundary,
// internal/reconcile or internal/materialize imports this package.
//
// Grounded on the teacher's MmapFile/MunmapFile pair (mmap_windows.go's
// fallback shows the intended shape; this file supplies the unix mmap
// path the teacher's retrieved sources were missing, using
// golang.org/x/sys/unix instead of a raw syscall.Mmap call).
package iomap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// File is a CSV file mapped read-only into the process's address space.
// Bytes returns the mapped content; Close unmaps it. A File must be
// closed once the caller is done reading Bytes — after Close, Bytes's
// backing memory is no longer valid.
type File struct {
	data []byte
}

// Open mmaps path read-only. An empty file maps to a zero-length File
// rather than failing, since mmap itself refuses a zero-length mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("iomap: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("iomap: stat %s: %w", path, err)
	}
	size := info.Size()
	if size == 0 {
		return &File{data: nil}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("iomap: mmap %s: %w", path, err)
	}
	return &File{data: data}, nil
}

// Bytes returns the file's mapped content.
func (f *File) Bytes() []byte { return f.data }

// Close unmaps the file. Safe to call on a zero-length File.
func (f *File) Close() error {
	if f.data == nil {
		return nil
	}
	return unix.Munmap(f.data)
}
