// Package reconcile implements stage 1's allocation pass (spec §4.4,
// component C4): once every chunk has a column's local type and width,
// this package computes the column's final type across the whole input,
// asks the host for a destination buffer, and promotes each chunk's
// buffered values to match.
//
// Ported from fastcsv.c's allocate_arrays. The host's add_column callback
// becomes Sink.AllocateColumn; fix_column_type becomes the optional
// TypeNarrower capability, following spec §9's guidance to express an
// optional host capability as a small interface rather than a
// nil-checked function pointer.
package reconcile

import (
	"fmt"

	"github.com/csvquery/colcsv/internal/column"
	"github.com/csvquery/colcsv/internal/numeric"
)

// Sink receives the reconciled schema: one header cell per column (via
// internal/header, not this package) and, for each column, a
// caller-owned destination buffer sized nrows*typ.ElemSize(width) bytes
// for the parser to fill in during materialization.
type Sink interface {
	AllocateColumn(col int, typ column.Type, nrows, width int) ([]byte, error)
}

// TypeNarrower is an optional Sink capability: a host that wants the last
// word on a column's type (e.g. to force a numeric-looking column to
// stay STRING, or to accept a narrower integer width) implements it.
type TypeNarrower interface {
	NarrowType(col int, inferred column.Type) column.Type
}

// ColumnPlan is one column's reconciled type, width and destination
// buffer, handed to internal/materialize.
type ColumnPlan struct {
	Type  column.Type
	Width int
	Buf   []byte
}

// Reconcile computes each column's final type and width across every
// chunk, promotes chunk-local INT64 value buffers to DOUBLE where the
// column as a whole was promoted, and asks sink for each column's
// destination buffer. It returns one ColumnPlan per column, in order.
func Reconcile(chunks []*column.Chunk, sink Sink) ([]ColumnPlan, error) {
	ncols := 0
	nrows := 0
	for _, c := range chunks {
		if c.NCols > ncols {
			ncols = c.NCols
		}
		nrows += c.NRows
	}

	narrower, _ := sink.(TypeNarrower)
	plans := make([]ColumnPlan, ncols)

	for col := 0; col < ncols; col++ {
		typ := column.Int64 // stage 1 never emits INT32: the supremum of an
		// all-integer column is INT64 unless a TypeNarrower narrows it below
		width := 1 // matches fastcsv.c's NumPy-compatible minimum string width

		for _, c := range chunks {
			if col >= c.NCols {
				continue
			}
			d := c.Column(col)
			typ = column.Sup(typ, d.Type)
			if d.Width > width {
				width = d.Width
			}
		}

		// fix_column_type's contract (spec §6): absent, the inferred type
		// (the lattice supremum above) is used as-is; present, its return
		// value is authoritative, trusted without re-validation against the
		// buffered values — narrowing INT64 to INT32 for a value that
		// doesn't fit is the host's mistake to make, not ours to prevent.
		if narrower != nil {
			typ = narrower.NarrowType(col, typ)
		}

		for _, c := range chunks {
			if col >= c.NCols {
				continue
			}
			d := c.Column(col)
			if d.Type != column.String && typ == column.Double && d.Type != column.Double {
				promoteChunkColumn(d)
			}
			if d.Type != column.String {
				d.Type = typ
			}
			d.Width = width
		}

		buf, err := sink.AllocateColumn(col, typ, nrows, width)
		if err != nil {
			return nil, fmt.Errorf("reconcile: allocate column %d: %w", col, err)
		}
		plans[col] = ColumnPlan{Type: typ, Width: width, Buf: buf}
	}

	return plans, nil
}

// promoteChunkColumn reinterprets every INT64 value already buffered (or
// spilled) for d as its DOUBLE equivalent (fastcsv.c's CHANGE_TYPE), for a
// chunk whose local scan never saw a fractional value but whose column
// was promoted by evidence from a different chunk. A spilled int range is
// read back, converted and re-spilled rather than promoted in place,
// since the file on disk holds raw bit patterns that reconcile can't
// rewrite byte-for-byte without decompressing it anyway.
func promoteChunkColumn(d *column.Descriptor) {
	if d.Spill != nil && d.SpillIsInt {
		if s, err := d.Spill.Transform("", numeric.PromoteIntBitsToFloat); err == nil {
			d.Spill = s
			d.SpillIsInt = false
		}
	}
	if d.Values == nil {
		return
	}
	n := d.Values.Len()
	for i := 0; i < n; i++ {
		d.Values.Set(i, numeric.PromoteIntBitsToFloat(d.Values.Get(i)))
	}
}
