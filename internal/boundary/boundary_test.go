package boundary

import (
	"testing"

	"github.com/csvquery/colcsv/internal/column"
	"github.com/csvquery/colcsv/internal/scanner"
)

// TestFix_QuotedNewlineStraddlesChunkBoundary builds two chunks whose
// nominal split point falls inside a quoted cell containing a literal
// newline. Chunk 1's quote-blind "skip to the next newline" guess lands on
// that embedded newline and starts parsing one byte into the quoted
// content — a wrong guess Fix must detect and repair.
func TestFix_QuotedNewlineStraddlesChunkBoundary(t *testing.T) {
	data := "x,\"a\nb\",y\np,q,r\n"
	// byte layout:
	// 0:x 1:, 2:" 3:a 4:\n 5:b 6:" 7:, 8:y 9:\n 10:p 11:, 12:q 13:, 14:r 15:\n
	opt := scanner.DefaultOptions()

	c0 := &column.Chunk{Idx: 0, Data: []byte(data), Start: 0, SoftEnd: 3, BufEnd: len(data)}
	scanner.Scan(c0, opt)
	if c0.NRows != 1 || c0.NCols != 3 {
		t.Fatalf("chunk0: NRows=%d NCols=%d, want 1,3", c0.NRows, c0.NCols)
	}

	c1 := &column.Chunk{Idx: 1, Data: []byte(data), Start: 3, SoftEnd: len(data), BufEnd: len(data)}
	scanner.Scan(c1, opt)
	// c1's naive guess lands inside the quotes; its row count here is
	// meaningless and is not asserted — Fix must discard it entirely.

	chunks := []*column.Chunk{c0, c1}
	big := Fix(chunks, opt)
	if big == nil {
		t.Fatal("Fix returned nil, want a mismatch to be detected")
	}

	if c1.NRows != 1 {
		t.Fatalf("after Fix, chunk1.NRows = %d, want 1", c1.NRows)
	}
	if c1.NCols != 3 {
		t.Fatalf("after Fix, chunk1.NCols = %d, want 3", c1.NCols)
	}

	cur := column.NewOffsetCursor(c1.Offsets, c1.OffsetBase)
	rv, ok := cur.Next()
	if !ok {
		t.Fatal("no record in chunk1 after Fix")
	}
	want := []string{"p", "q", "r"}
	for i, w := range want {
		start := c1.Start + rv.CellStart(i)
		end := c1.Start + rv.CellEnd(i) - 1
		if got := data[start:end]; got != w {
			t.Fatalf("cell %d = %q, want %q", i, got, w)
		}
	}
}

// TestFix_NoMismatchReturnsNil uses a split that lands mid-row (as a real
// nominal chunk partition normally would, rather than coincidentally on a
// record boundary): chunk 0 scans past its own soft end to finish that
// row, and chunk 1 independently guesses the same resuming point, so
// their found-end/start views agree and no fix-up is needed.
func TestFix_NoMismatchReturnsNil(t *testing.T) {
	data := "1,22\n3,4\n"
	opt := scanner.DefaultOptions()

	c0 := &column.Chunk{Idx: 0, Data: []byte(data), Start: 0, SoftEnd: 2, BufEnd: len(data)}
	scanner.Scan(c0, opt)
	c1 := &column.Chunk{Idx: 1, Data: []byte(data), Start: 2, SoftEnd: len(data), BufEnd: len(data)}
	scanner.Scan(c1, opt)

	if got := Fix([]*column.Chunk{c0, c1}, opt); got != nil {
		t.Fatalf("Fix = %+v, want nil (no mismatch)", got)
	}
	if c1.NRows != 1 {
		t.Fatalf("chunk1.NRows = %d, want 1 (\"3,4\" row)", c1.NRows)
	}
}
