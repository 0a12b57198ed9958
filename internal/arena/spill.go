package arena

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
)

// Spill persists a Block's elements to an lz4-compressed temp file and
// frees the in-memory pages, the same external-spill shape as the
// teacher's indexer.Sorter (flushChunk writes an lz4-compressed run,
// kWayMerge streams it back) applied here to a single chunk's oversized
// column value buffer instead of a sort run.
type Spill[T any] struct {
	path string
}

// WriteSpill compresses and writes every element currently in b to a new
// temp file under dir, then releases b's memory. The data streams back,
// in original order, via Spill.Open — a good fit for stage 2, which only
// ever walks a chunk's offsets and values forward.
func WriteSpill[T any](dir string, b *Block[T]) (*Spill[T], error) {
	f, err := os.CreateTemp(dir, "colcsv-arena-*.lz4")
	if err != nil {
		return nil, fmt.Errorf("arena: create spill file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriterSize(f, 256*1024)
	zw := lz4.NewWriter(bw)

	n := b.Len()
	if err := binary.Write(zw, binary.LittleEndian, int64(n)); err != nil {
		return nil, fmt.Errorf("arena: write spill header: %w", err)
	}

	const batch = 4096
	buf := make([]T, batch)
	for i := 0; i < n; i += batch {
		k := batch
		if i+k > n {
			k = n - i
		}
		b.CopyInto(buf[:k], i, k)
		if err := binary.Write(zw, binary.LittleEndian, buf[:k]); err != nil {
			return nil, fmt.Errorf("arena: write spill page: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("arena: close spill writer: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("arena: flush spill file: %w", err)
	}

	b.release()

	return &Spill[T]{path: f.Name()}, nil
}

// Open returns a reader that streams the spilled elements back in order.
func (s *Spill[T]) Open() (*SpillReader[T], error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("arena: open spill file: %w", err)
	}
	zr := lz4.NewReader(bufio.NewReaderSize(f, 64*1024))
	var n int64
	if err := binary.Read(zr, binary.LittleEndian, &n); err != nil {
		f.Close()
		return nil, fmt.Errorf("arena: read spill header: %w", err)
	}
	return &SpillReader[T]{f: f, zr: zr, remaining: int(n)}, nil
}

// Close removes the backing temp file. Safe to call once the data has
// been fully streamed back (or if it never needs to be).
func (s *Spill[T]) Close() error {
	return os.Remove(s.path)
}

// Transform streams every element back through f, writes the results to
// a new spill file in dir, and removes the old one. Used when a column's
// type is reconciled after some of its chunk-local values already spilled
// (internal/reconcile's cross-chunk INT64->DOUBLE promotion): the spilled
// slots are raw bit patterns and need the same reinterpretation an
// in-memory Block's values get.
func (s *Spill[T]) Transform(dir string, f func(T) T) (*Spill[T], error) {
	r, err := s.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	b := NewBlock[T]()
	buf := make([]T, 4096)
	for {
		n, rerr := r.Next(buf)
		for i := 0; i < n; i++ {
			b.Append(f(buf[i]))
		}
		if rerr != nil {
			break
		}
	}

	out, err := WriteSpill(dir, b)
	if err != nil {
		return nil, fmt.Errorf("arena: write transformed spill: %w", err)
	}
	if err := s.Close(); err != nil {
		return nil, fmt.Errorf("arena: remove old spill: %w", err)
	}
	return out, nil
}

// SpillReader streams a Spill's elements back in the order they were
// written.
type SpillReader[T any] struct {
	f         *os.File
	zr        *lz4.Reader
	remaining int
}

// Next fills dst with up to len(dst) elements and returns how many were
// read. It returns io.EOF once every spilled element has been returned.
func (r *SpillReader[T]) Next(dst []T) (int, error) {
	n := len(dst)
	if n > r.remaining {
		n = r.remaining
	}
	if n == 0 {
		return 0, io.EOF
	}
	if err := binary.Read(r.zr, binary.LittleEndian, dst[:n]); err != nil {
		return 0, fmt.Errorf("arena: read spill page: %w", err)
	}
	r.remaining -= n
	return n, nil
}

// Close releases the reader's open file handle.
func (r *SpillReader[T]) Close() error {
	return r.f.Close()
}
