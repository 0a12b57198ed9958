// Package arena implements the amortized-append block buffer described in
// spec §9 ("linked block buffers"): a per-chunk bump allocator that grows by
// chaining fixed-size pages instead of reallocating and copying a single
// growing array, while still supporting O(1) random access and a
// contiguous-walk iterator for the final copy into host output buffers.
package arena

import "unsafe"

// defaultPageLen is the number of elements per page. spec §9 suggests
// 1-4 KiB pages; 1024 elements gives 4 KiB pages for the uint32 offsets
// this package stores and 8 KiB pages for the uint64 value slots.
const defaultPageLen = 1024

// Block is an append-only sequence of T backed by fixed-size pages. A zero
// Block is not usable; construct with NewBlock.
type Block[T any] struct {
	pages   [][]T
	pageLen int
	n       int // total elements appended
}

// NewBlock creates a Block with the default page size.
func NewBlock[T any]() *Block[T] {
	return &Block[T]{pageLen: defaultPageLen}
}

// NewBlockSize creates a Block with a caller-chosen page size, mainly for
// tests that want to exercise the page-boundary-crossing path cheaply.
func NewBlockSize[T any](pageLen int) *Block[T] {
	if pageLen < 1 {
		pageLen = 1
	}
	return &Block[T]{pageLen: pageLen}
}

// Append adds v to the end of the block, allocating a new page if the
// current last page is full. Previously appended elements are never moved,
// so pointers/indexes handed out earlier stay valid.
func (b *Block[T]) Append(v T) {
	if len(b.pages) == 0 || len(b.pages[len(b.pages)-1]) == b.pageLen {
		b.pages = append(b.pages, make([]T, 0, b.pageLen))
	}
	last := len(b.pages) - 1
	b.pages[last] = append(b.pages[last], v)
	b.n++
}

// Len returns the number of elements appended so far.
func (b *Block[T]) Len() int {
	return b.n
}

// Get returns the i-th appended element in O(1).
func (b *Block[T]) Get(i int) T {
	return b.pages[i/b.pageLen][i%b.pageLen]
}

// Set overwrites the i-th appended element in place. Used to patch a
// reserved slot (e.g. a record's cell count) once it becomes known.
func (b *Block[T]) Set(i int, v T) {
	b.pages[i/b.pageLen][i%b.pageLen] = v
}

// CopyInto copies elements [from, from+n) contiguously into dst, crossing
// page boundaries as needed. This is the "iterator that walks blocks
// contiguously" spec §9 calls for, specialized to bulk copy; Slice and
// WriteSpill use it.
func (b *Block[T]) CopyInto(dst []T, from, n int) {
	for n > 0 {
		pageIdx := from / b.pageLen
		offset := from % b.pageLen
		page := b.pages[pageIdx]
		chunk := len(page) - offset
		if chunk > n {
			chunk = n
		}
		copy(dst, page[offset:offset+chunk])
		dst = dst[chunk:]
		from += chunk
		n -= chunk
	}
}

// Slice materializes elements [from, from+n) as a freshly allocated slice.
// Prefer CopyInto when writing into an existing buffer.
func (b *Block[T]) Slice(from, n int) []T {
	out := make([]T, n)
	b.CopyInto(out, from, n)
	return out
}

// ApproxBytes estimates the block's current memory footprint, used by
// internal/scanner to decide when a column's value buffer has grown past
// its configured spill threshold (see arena.WriteSpill).
func (b *Block[T]) ApproxBytes() int {
	var zero T
	return b.n * int(unsafe.Sizeof(zero))
}

// release drops all in-memory pages. Used only by WriteSpill once the data
// has been durably persisted.
func (b *Block[T]) release() {
	b.pages = nil
	b.n = 0
}
