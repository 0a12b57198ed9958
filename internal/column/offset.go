package column

import "github.com/csvquery/colcsv/internal/arena"

// OffsetCursor walks a chunk's offset buffer one record at a time. The
// buffer encodes, per record, [ncols, end_0, end_1, ..., end_{ncols-1}]
// where each end_i is the byte position one past cell i's trailing
// separator or newline, measured from the record's first byte (spec §4.3,
// "offset buffer encoding" — this is camog's own LINKED_PUT encoding,
// carried over unchanged since the spec leaves the choice open).
type OffsetCursor struct {
	buf *arena.Block[uint32]
	idx int
}

// NewOffsetCursor starts walking buf from its beginning (or from a chunk's
// OffsetBase, for a chunk sharing another chunk's buffer after fix-up).
func NewOffsetCursor(buf *arena.Block[uint32], base int) *OffsetCursor {
	return &OffsetCursor{buf: buf, idx: base}
}

// Pos returns the cursor's current index into buf, usable as a chunk's
// OffsetBase when splitting a shared buffer across chunks (see
// internal/boundary).
func (c *OffsetCursor) Pos() int {
	return c.idx
}

// Next returns the next record's view and advances the cursor. ok is
// false once every record in buf (from the cursor's current position)
// has been consumed.
func (c *OffsetCursor) Next() (RecordView, bool) {
	if c.idx >= c.buf.Len() {
		return RecordView{}, false
	}
	ncols := int(c.buf.Get(c.idx))
	c.idx++
	rv := RecordView{buf: c.buf, base: c.idx, ncols: ncols}
	c.idx += ncols
	return rv, true
}

// RecordView is a read-only view of one record's cell boundaries.
type RecordView struct {
	buf   *arena.Block[uint32]
	base  int
	ncols int
}

// NumCols returns the number of cells stage 1 actually saw in this record
// (which may be fewer than the column's final count, for a ragged row).
func (r RecordView) NumCols() int {
	return r.ncols
}

// CellEnd returns the byte offset, relative to the record's first byte,
// one past cell i's trailing separator or newline.
func (r RecordView) CellEnd(i int) int {
	return int(r.buf.Get(r.base + i))
}

// CellStart returns the byte offset, relative to the record's first byte,
// of cell i's first byte.
func (r RecordView) CellStart(i int) int {
	if i == 0 {
		return 0
	}
	return r.CellEnd(i - 1)
}

// RecordWidth returns the total byte length of the record, including its
// trailing newline.
func (r RecordView) RecordWidth() int {
	return r.CellEnd(r.ncols - 1)
}
