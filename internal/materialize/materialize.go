// Package materialize implements stage 2 (spec §4.5, component C5): once
// every column's final type and destination buffer are known, copy each
// chunk's decoded cells into the right place in that buffer.
//
// Ported from fastcsv.c's fill_arrays. Numeric columns reuse the
// per-chunk value buffer internal/scanner built during stage 1 (the same
// "decode once, copy into place later" shape as the original); STRING
// columns are re-read from the original bytes here, independently
// re-detecting quotes from each cell's offset span rather than carrying
// decoded string content out of stage 1 — exactly what fill_arrays itself
// does. Binary packing into the destination buffer uses encoding/binary
// rather than a raw pointer cast, matching the teacher's
// common.WriteRecord convention for writing typed values into a byte
// buffer.
package materialize

import (
	"encoding/binary"
	"io"

	"github.com/csvquery/colcsv/internal/column"
	"github.com/csvquery/colcsv/internal/numeric"
	"github.com/csvquery/colcsv/internal/reconcile"
)

// Materialize fills every plan's destination buffer from chunks, which
// must already have been through internal/scanner, internal/boundary and
// internal/reconcile. It runs all chunks in order on the calling
// goroutine; internal/coordinator instead calls MaterializeChunk once per
// worker so stage 2 actually runs in parallel (spec §5: each worker writes
// a disjoint byte range, no synchronization needed).
func Materialize(chunks []*column.Chunk, plans []reconcile.ColumnPlan) {
	for i := range chunks {
		MaterializeChunk(chunks, i, plans)
	}
}

// MaterializeChunk fills the row range belonging to chunks[idx] for every
// column. chunks[:idx] is only consulted to compute idx's starting row
// offset (a prefix sum over NRows, replacing the per-column ArrPtr the C
// original keeps): safe for one goroutine per idx to call concurrently,
// since no two chunks' row ranges overlap in any plan's buffer.
func MaterializeChunk(chunks []*column.Chunk, idx int, plans []reconcile.ColumnPlan) {
	rowOffset := 0
	for i := 0; i < idx; i++ {
		rowOffset += chunks[i].NRows
	}
	c := chunks[idx]
	for col, plan := range plans {
		if plan.Type == column.String {
			materializeStringChunk(c, rowOffset, col, plan)
		} else {
			materializeNumericChunk(c, rowOffset, col, plan)
		}
	}
}

func materializeNumericChunk(c *column.Chunk, rowOffset, col int, plan reconcile.ColumnPlan) {
	elemSize := plan.Type.ElemSize(plan.Width)
	dst := plan.Buf[rowOffset*elemSize : (rowOffset+c.NRows)*elemSize]
	if col >= c.NCols {
		zeroBytes(dst)
		return
	}

	d := c.Column(col)
	firstRow := d.FirstRow
	if firstRow > c.NRows {
		firstRow = c.NRows
	}
	zeroBytes(dst[:firstRow*elemSize])
	writeValues(dst[firstRow*elemSize:], d, plan.Type, elemSize)
}

// writeValues copies d's buffered (or spilled) values into dst, converting
// each 8-byte slot to typ's on-the-wire width.
func writeValues(dst []byte, d *column.Descriptor, typ column.Type, elemSize int) {
	off := 0
	emit := func(bits uint64) bool {
		if off+elemSize > len(dst) {
			return false
		}
		putValue(dst[off:off+elemSize], typ, bits)
		off += elemSize
		return true
	}

	if d.Spill != nil {
		r, err := d.Spill.Open()
		if err != nil {
			return
		}
		defer r.Close()
		buf := make([]uint64, 4096)
		for {
			n, rerr := r.Next(buf)
			for i := 0; i < n; i++ {
				if !emit(buf[i]) {
					return
				}
			}
			if rerr != nil {
				if rerr != io.EOF {
					return
				}
				break
			}
		}
	}

	if d.Values == nil {
		return
	}
	n := d.Values.Len()
	for i := 0; i < n; i++ {
		if !emit(d.Values.Get(i)) {
			return
		}
	}
}

func putValue(dst []byte, typ column.Type, bits uint64) {
	switch typ {
	case column.Int32:
		binary.LittleEndian.PutUint32(dst, uint32(numeric.BitsToInt(bits)))
	default: // Int64, Double: both stored as a raw 8-byte slot already
		binary.LittleEndian.PutUint64(dst, bits)
	}
}

func materializeStringChunk(c *column.Chunk, rowOffset, col int, plan reconcile.ColumnPlan) {
	width := plan.Width
	dst := plan.Buf[rowOffset*width : (rowOffset+c.NRows)*width]
	if c.Offsets == nil || c.NRows == 0 {
		zeroBytes(dst)
		return
	}

	cur := column.NewOffsetCursor(c.Offsets, c.OffsetBase)
	rowp := c.Start
	for r := 0; r < c.NRows; r++ {
		cellDst := dst[r*width : (r+1)*width]
		rv, ok := cur.Next()
		if !ok {
			zeroBytes(cellDst)
			continue
		}
		if col >= rv.NumCols() {
			zeroBytes(cellDst)
		} else {
			start := rowp + rv.CellStart(col)
			end := rowp + rv.CellEnd(col) - 1 // exclude the trailing separator/newline
			n := decodeStringCell(c.Data[start:end], cellDst)
			zeroBytes(cellDst[n:])
		}
		rowp += rv.RecordWidth()
	}
}

// decodeStringCell writes src's content into dst, stripping one layer of
// Excel-style quoting and collapsing "" escapes to a single " when src
// opens with a quote. Bytes following a closing quote are appended
// verbatim (fastcsv.c's fill_arrays does the same: a malformed quoted
// cell's trailing garbage is kept, not rejected), except for '\r', which
// spec §4.2 says is never part of a cell's value. Returns the number of
// bytes written, clamped to len(dst).
func decodeStringCell(src, dst []byte) int {
	n := 0
	p := 0
	if len(src) > 0 && src[0] == '"' {
		p = 1
		for p < len(src) {
			c := src[p]
			if c == '"' {
				p++
				if p < len(src) && src[p] == '"' {
					n = appendByte(dst, n, '"')
					p++
					continue
				}
				break
			}
			if c != '\r' {
				n = appendByte(dst, n, c)
			}
			p++
		}
	}
	for p < len(src) {
		if src[p] != '\r' {
			n = appendByte(dst, n, src[p])
		}
		p++
	}
	if n > len(dst) {
		n = len(dst)
	}
	return n
}

func appendByte(dst []byte, n int, b byte) int {
	if n < len(dst) {
		dst[n] = b
	}
	return n + 1
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
