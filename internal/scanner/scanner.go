// Package scanner implements stage 1 of the parse pipeline (spec §4.2,
// component C2): a single forward pass over one chunk's byte range that
// discovers columns, classifies each cell as INT64, DOUBLE or STRING,
// eagerly decodes numeric cells into a per-column value buffer, and
// records each record's cell boundaries as a cumulative offset buffer.
//
// This is a direct port of fastcsv.c's parse_stage1, adapted to use
// internal/numeric.Decode for digit parsing instead of an inlined
// mantissa/exponent accumulator, and to drop the goto-based state machine
// in favor of a small set of named helper functions — the control flow
// the C state machine encodes, expressed the way Go expresses it.
package scanner

import (
	"math"

	"github.com/csvquery/colcsv/internal/arena"
	"github.com/csvquery/colcsv/internal/column"
	"github.com/csvquery/colcsv/internal/numeric"
)

// Options controls how cells are recognized. Separator and ExcelQuotes
// mirror FastCsvInput.sep and FLAG_EXCEL_QUOTES; MissingInt and
// MissingFloat are the sentinel values an empty cell gets in a numeric
// column (spec §6, "missing_int_val" / "missing_float_val" input fields); a
// ragged row's absent trailing columns get a literal 0 instead (see
// padRaggedColumns). SpillBytes and SpillDir bound how
// large a single column's in-memory value buffer is allowed to grow
// within one chunk before it's pushed out to an lz4-compressed temp file
// (internal/arena.WriteSpill) and replaced with a fresh buffer; SpillBytes
// <= 0 disables spilling entirely.
type Options struct {
	Separator    byte
	ExcelQuotes  bool
	MissingInt   int64
	MissingFloat float64
	SpillBytes   int
	SpillDir     string
}

// DefaultOptions matches the conventional CSV dialect: comma-separated,
// Excel-style quoting enabled, missing sentinels 0 / NaN, spilling
// disabled.
func DefaultOptions() Options {
	return Options{Separator: ',', ExcelQuotes: true, MissingInt: 0, MissingFloat: math.NaN()}
}

// Scan runs stage 1 over c's assigned byte range. c.Data, c.Idx, c.Start,
// c.SoftEnd and c.BufEnd must already be set by the caller (the
// coordinator, per spec §4.7's chunk partitioning). Scan populates
// c.Columns, c.Offsets, c.NRows, c.NCols and c.FoundEnd.
//
// For chunk 0 this starts parsing at c.Start. For any later chunk whose
// c.Start doesn't already sit right after a '\n', it first skips forward
// to the first '\n' at or after c.Start — a cheap, quote-blind guess at a
// record boundary. If that guess lands inside a quoted cell it will be
// wrong, but that is by design: internal/boundary detects the mistake
// from the resulting chunk gap and re-scans the affected range correctly.
// Scan never needs to get this right itself.
func Scan(c *column.Chunk, opt Options) {
	data := c.Data
	bufEnd := c.BufEnd
	sep := opt.Separator

	offsets := arena.NewBlock[uint32]()
	c.Offsets = offsets
	c.OffsetsOwned = true
	c.OffsetBase = 0

	p := c.Start
	if c.Idx > 0 && !(p > 0 && data[p-1] == '\n') {
		// p already sitting right after a newline (internal/coordinator's
		// partition pre-check landed on one) needs no skip: scanning
		// forward here would consume the very next record. Otherwise fall
		// back to the cheap, quote-blind guess — skip to the first '\n' at
		// or after p.
		for p < bufEnd && data[p] != '\n' {
			p++
		}
		if p >= bufEnd {
			c.Start = p
			c.FoundEnd = p
			return
		}
		p++ // consume the newline we guessed at
		// c.Start becomes the effective start of this chunk's parse, not
		// just a nominal guess — internal/boundary compares it against
		// the previous chunk's FoundEnd to detect a bad guess.
		c.Start = p
		if p >= c.SoftEnd {
			c.FoundEnd = p
			return
		}
	}

	rowp := p
	rowIdx := 0
	colIdx := 0
	ncols := 0
	offsets.Append(0) // reserved ncols slot, patched once the row ends
	rowNColsAt := offsets.Len() - 1

	for {
		if colIdx >= ncols {
			ncols++
			d := c.Column(colIdx)
			d.Type = column.Int64
			d.FirstRow = rowIdx
		}

		if p >= bufEnd {
			// Ran out of input with a cell in progress (no trailing
			// newline in the file). Close the record out as-is.
			offsets.Append(uint32(p - rowp + 1))
			offsets.Set(rowNColsAt, uint32(colIdx+1))
			if p == rowp {
				rowIdx-- // nothing followed the previous record's newline
			}
			c.FoundEnd = p
			c.NCols = ncols
			c.NRows = rowIdx + 1
			return
		}

		cellStart := p
		sc := scanCell(data, p, bufEnd, sep)
		p = sc.after

		d := c.Column(colIdx)
		classifyCell(d, data, cellStart, sc, opt)

		width := sc.after - cellStart
		if width > d.Width {
			d.Width = width
		}

		if p >= bufEnd {
			// The cell ran to the true end of input without a
			// separator or newline in sight.
			offsets.Append(uint32(p - rowp + 1))
			offsets.Set(rowNColsAt, uint32(colIdx+1))
			if p == rowp {
				rowIdx--
			}
			c.FoundEnd = p
			c.NCols = ncols
			c.NRows = rowIdx + 1
			return
		}

		offsets.Append(uint32(p - rowp + 1))

		if data[p] == '\n' {
			offsets.Set(rowNColsAt, uint32(colIdx+1))
			padRaggedColumns(c, colIdx+1, ncols, opt)

			if p+1 >= c.SoftEnd {
				c.FoundEnd = p + 1
				c.NCols = ncols
				c.NRows = rowIdx + 1
				return
			}

			colIdx = 0
			rowIdx++
			rowp = p + 1
			offsets.Append(0)
			rowNColsAt = offsets.Len() - 1
		} else {
			colIdx++
		}
		p++
	}
}

// padRaggedColumns fills in a literal 0 for every numeric column this row
// didn't reach (spec §4.2: "pad numeric columns with 0"), distinct from
// appendMissing's configurable sentinel for a cell the row did reach but
// which was empty. STRING columns need no placeholder here since
// internal/materialize zero-fills them directly from NRows/NCols.
func padRaggedColumns(c *column.Chunk, from, ncols int, opt Options) {
	for j := from; j < ncols; j++ {
		d := c.Column(j)
		switch d.Type {
		case column.Double:
			appendValue(d, numeric.FloatBits(0), opt)
		case column.Int64, column.Int32:
			appendValue(d, numeric.IntBits(0), opt)
		}
	}
}

// appendMissing buffers d's configured missing sentinel for a cell the row
// did reach but whose content was empty (spec §7: "empty cell in numeric
// column (→ missing sentinel)").
func appendMissing(d *column.Descriptor, opt Options) {
	switch d.Type {
	case column.Double:
		appendValue(d, numeric.FloatBits(opt.MissingFloat), opt)
	case column.Int64, column.Int32:
		appendValue(d, numeric.IntBits(opt.MissingInt), opt)
	}
}

// cellSpan is the result of locating one cell's boundary.
type cellSpan struct {
	after      int  // position of the separator/newline, or bufEnd
	quoted     bool
	wellFormed bool // quoted cell closed cleanly right before sep/newline/EOF
	innerStart int  // quoted: byte after the opening quote
	innerEnd   int  // quoted: byte of the closing quote
}

// scanCell finds the end of the cell starting at data[start], honoring
// Excel-style "" escaping inside a leading quote. Trailing bytes after a
// closing quote are tolerated (ported from fastcsv.c's parsestring, which
// keeps consuming characters after the closing quote rather than treating
// them as an error) — they disqualify the cell from a numeric
// interpretation but do not affect where the cell ends.
func scanCell(data []byte, start, bufEnd int, sep byte) cellSpan {
	if start >= bufEnd || data[start] != '"' {
		p := start
		for p < bufEnd && data[p] != sep && data[p] != '\n' {
			p++
		}
		return cellSpan{after: p}
	}

	p := start + 1
	innerStart := p
	for {
		if p >= bufEnd {
			return cellSpan{after: p, quoted: true}
		}
		if data[p] == '"' {
			if p+1 < bufEnd && data[p+1] == '"' {
				p += 2
				continue
			}
			break
		}
		p++
	}
	innerEnd := p
	p++ // past the closing quote

	wellFormed := p >= bufEnd || data[p] == sep || data[p] == '\n'
	for p < bufEnd && data[p] != sep && data[p] != '\n' {
		p++
	}
	return cellSpan{after: p, quoted: true, wellFormed: wellFormed, innerStart: innerStart, innerEnd: innerEnd}
}

// classifyCell attempts to decode the cell as a number (when d isn't
// already a STRING column) and promotes or demotes d accordingly.
func classifyCell(d *column.Descriptor, data []byte, cellStart int, sc cellSpan, opt Options) {
	if d.Type == column.String {
		return
	}

	if sc.quoted && (!opt.ExcelQuotes || !sc.wellFormed) {
		demoteToString(d)
		return
	}

	var candidate []byte
	if sc.quoted {
		candidate = unescapeQuotes(data[sc.innerStart:sc.innerEnd])
	} else {
		candidate = data[cellStart:sc.after]
	}
	candidate = StripCR(candidate)

	if len(candidate) == 0 {
		// An empty cell is recovered-from-data, not a parse failure (spec
		// §7): it takes the column's missing sentinel and never forces a
		// demotion to STRING on its own.
		appendMissing(d, opt)
		return
	}

	res := numeric.Decode(candidate)
	switch res.Outcome {
	case numeric.Int:
		if d.Type == column.Double {
			// Column was already promoted by an earlier cell; keep the
			// buffer homogeneous by storing this integer as a double.
			appendValue(d, numeric.FloatBits(float64(res.Int)), opt)
		} else {
			appendValue(d, numeric.IntBits(res.Int), opt)
		}
	case numeric.Double:
		if d.Type != column.Double {
			promoteToDouble(d, opt.SpillDir)
		}
		appendValue(d, numeric.FloatBits(res.Float), opt)
	default:
		demoteToString(d)
	}
}

// StripCR drops any '\r' byte from b: spec §4.2 says \r is never part of a
// cell's value, quoted or not. Allocates only if a '\r' is actually
// present. Exported so internal/header can apply the same rule to header
// cells, which are scanned by their own small cell scanner rather than
// this one.
func StripCR(b []byte) []byte {
	hasCR := false
	for _, c := range b {
		if c == '\r' {
			hasCR = true
			break
		}
	}
	if !hasCR {
		return b
	}
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c != '\r' {
			out = append(out, c)
		}
	}
	return out
}

// unescapeQuotes collapses "" pairs to a single " within a quoted cell's
// inner content. Allocates only on the (rare) path where a quoted cell is
// still a numeric candidate.
func unescapeQuotes(inner []byte) []byte {
	hasEscape := false
	for i := 0; i+1 < len(inner); i++ {
		if inner[i] == '"' && inner[i+1] == '"' {
			hasEscape = true
			break
		}
	}
	if !hasEscape {
		return inner
	}
	out := make([]byte, 0, len(inner))
	for i := 0; i < len(inner); i++ {
		out = append(out, inner[i])
		if inner[i] == '"' && i+1 < len(inner) && inner[i+1] == '"' {
			i++
		}
	}
	return out
}

// appendValue appends bits to d's live value buffer, spilling it to disk
// first if it has already grown past opt.SpillBytes (see
// internal/arena.WriteSpill). A column spills at most once per chunk:
// once d.Spill is set, new values simply accumulate in a fresh d.Values,
// which internal/materialize streams after the spilled range.
func appendValue(d *column.Descriptor, bits uint64, opt Options) {
	if d.Values == nil {
		d.Values = arena.NewBlock[uint64]()
	}
	d.Values.Append(bits)

	if opt.SpillBytes > 0 && d.Spill == nil && d.Values.ApproxBytes() >= opt.SpillBytes {
		isInt := d.Type == column.Int64 || d.Type == column.Int32
		if s, err := arena.WriteSpill(opt.SpillDir, d.Values); err == nil {
			d.Spill = s
			d.SpillIsInt = isInt
			d.Values = nil
		}
	}
}

// promoteToDouble reinterprets every INT64 value already buffered for d as
// its DOUBLE equivalent, matching fastcsv.c's CHANGE_TYPE macro. Values
// already spilled as int64 bit patterns are converted too, into a new
// spill file under spillDir.
func promoteToDouble(d *column.Descriptor, spillDir string) {
	d.Type = column.Double
	if d.Spill != nil && d.SpillIsInt {
		if s, err := d.Spill.Transform(spillDir, numeric.PromoteIntBitsToFloat); err == nil {
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

// demoteToString drops any buffered numeric values: a STRING column is
// re-read from the original bytes during materialization instead.
func demoteToString(d *column.Descriptor) {
	d.Type = column.String
	d.Values = nil
}
