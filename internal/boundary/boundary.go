// Package boundary implements stage 1's fix-up pass (spec §4.3, component
// C3): detecting that a chunk's quote-blind "skip to the next newline"
// guess landed inside a quoted cell, and repairing every chunk from that
// point on with a single correctly quote-aware re-scan.
//
// Ported from fastcsv.c's fixup_parse. The C original repoints downstream
// chunks' value and offset buffers as non-owning views into the re-scanned
// super-chunk's linked buffers; this port copies the relevant value
// ranges into fresh per-chunk buffers instead of aliasing raw pointers
// into shared pages, which Go's arena.Block does not expose. The copy
// only happens on the fix-up path (rare — one bad boundary guess per
// input, not per chunk), so the simplification costs little.
package boundary

import (
	"github.com/csvquery/colcsv/internal/arena"
	"github.com/csvquery/colcsv/internal/column"
	"github.com/csvquery/colcsv/internal/scanner"
)

// Fix scans chunks (already populated by scanner.Scan) for the first
// boundary mismatch and, if one exists, re-scans and repoints every chunk
// from that point onward. It returns the super-chunk it built (or nil, if
// no fix-up was needed) so the caller can fold its transient allocations
// into the rest of the run's bookkeeping if desired.
func Fix(chunks []*column.Chunk, opt scanner.Options) *column.Chunk {
	n := len(chunks)
	i := 1
	for ; i < n; i++ {
		if chunks[i].Start >= chunks[i].BufEnd {
			continue
		}
		if chunks[i-1].FoundEnd != chunks[i].Start {
			break
		}
	}
	if i >= n {
		return nil
	}

	// big.Idx is deliberately 0: chunks[i-1].FoundEnd already points one
	// past a genuine record boundary (see scanner.Scan's FoundEnd
	// convention), so the super-chunk must not re-run the quote-blind
	// "skip to the next newline" guess scanner.Scan applies for Idx > 0.
	big := &column.Chunk{
		Idx:     0,
		Data:    chunks[i-1].Data,
		Start:   chunks[i-1].FoundEnd,
		SoftEnd: chunks[i-1].BufEnd,
		BufEnd:  chunks[i-1].BufEnd,
	}
	scanner.Scan(big, opt)

	cur := column.NewOffsetCursor(big.Offsets, 0)
	rowp := big.Start
	firstRow := 0
	valueCursor := make([]int, big.NCols)

	for ; i < n; i++ {
		chunk := chunks[i]
		chunk.Data = big.Data
		chunk.Offsets = big.Offsets
		chunk.OffsetsOwned = false
		chunk.OffsetBase = cur.Pos()
		chunk.Start = rowp

		nrows := 0
		for rowp < chunk.SoftEnd {
			rv, ok := cur.Next()
			if !ok {
				break
			}
			rowp += rv.RecordWidth()
			nrows++
		}
		chunk.NRows = nrows

		newCols := make([]column.Descriptor, 0, big.NCols)
		for colIdx := 0; colIdx < big.NCols; colIdx++ {
			bigCol := big.Column(colIdx)
			if bigCol.FirstRow >= firstRow+nrows {
				break
			}

			col := column.Descriptor{Type: bigCol.Type, Width: bigCol.Width}
			if bigCol.FirstRow > firstRow {
				col.FirstRow = bigCol.FirstRow - firstRow
			}

			if col.Type == column.Int64 || col.Type == column.Double {
				count := nrows - col.FirstRow
				col.Values = copyValues(bigCol.Values, valueCursor[colIdx], count)
				valueCursor[colIdx] += count
			}

			newCols = append(newCols, col)
		}
		chunk.Columns = newCols
		chunk.NCols = len(newCols)

		firstRow += nrows
	}

	return big
}

func copyValues(src *arena.Block[uint64], from, n int) *arena.Block[uint64] {
	out := arena.NewBlock[uint64]()
	if src == nil || n <= 0 {
		return out
	}
	for _, v := range src.Slice(from, n) {
		out.Append(v)
	}
	return out
}
