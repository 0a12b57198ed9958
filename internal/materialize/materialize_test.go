package materialize

import (
	"encoding/binary"
	"testing"

	"github.com/csvquery/colcsv/internal/column"
	"github.com/csvquery/colcsv/internal/numeric"
	"github.com/csvquery/colcsv/internal/reconcile"
	"github.com/csvquery/colcsv/internal/scanner"
)

type fakeSink struct{}

func (fakeSink) AllocateColumn(col int, typ column.Type, nrows, width int) ([]byte, error) {
	return make([]byte, nrows*typ.ElemSize(width)), nil
}

// int32Sink narrows every column to Int32 via reconcile.TypeNarrower.
type int32Sink struct{ fakeSink }

func (int32Sink) NarrowType(col int, inferred column.Type) column.Type { return column.Int32 }

func scanChunk(data string, start, softEnd int) *column.Chunk {
	c := &column.Chunk{Data: []byte(data), Start: start, SoftEnd: softEnd, BufEnd: len(data)}
	scanner.Scan(c, scanner.DefaultOptions())
	return c
}

func TestMaterialize_NumericColumnsNarrowedToInt32(t *testing.T) {
	data := "1,2\n3,4\n5,6\n"
	c := scanChunk(data, 0, len(data))

	plans, err := reconcile.Reconcile([]*column.Chunk{c}, int32Sink{})
	if err != nil {
		t.Fatal(err)
	}
	Materialize([]*column.Chunk{c}, plans)

	for col, want := range [][]int32{{1, 3, 5}, {2, 4, 6}} {
		plan := plans[col]
		if plan.Type != column.Int32 {
			t.Fatalf("column %d type = %v, want Int32", col, plan.Type)
		}
		for row, v := range want {
			got := int32(binary.LittleEndian.Uint32(plan.Buf[row*4 : row*4+4]))
			if got != v {
				t.Fatalf("column %d row %d = %d, want %d", col, row, got, v)
			}
		}
	}
}

func TestMaterialize_MixedIntDoublePromotesAcrossChunks(t *testing.T) {
	c0 := scanChunk("1\n2\n", 0, 4)
	c1 := scanChunk("3.5\n", 0, 4)

	plans, err := reconcile.Reconcile([]*column.Chunk{c0, c1}, fakeSink{})
	if err != nil {
		t.Fatal(err)
	}
	Materialize([]*column.Chunk{c0, c1}, plans)

	plan := plans[0]
	if plan.Type != column.Double {
		t.Fatalf("type = %v, want Double", plan.Type)
	}
	want := []float64{1.0, 2.0, 3.5}
	for row, w := range want {
		bits := binary.LittleEndian.Uint64(plan.Buf[row*8 : row*8+8])
		got := numeric.BitsToFloat(bits)
		if got != w {
			t.Fatalf("row %d = %v, want %v", row, got, w)
		}
	}
}

func TestMaterialize_StringColumnUnescapesAndZeroFills(t *testing.T) {
	data := "\"a,b\",1\n\"c\"\"d\",22\nxy,3\n"
	c := scanChunk(data, 0, len(data))

	plans, err := reconcile.Reconcile([]*column.Chunk{c}, fakeSink{})
	if err != nil {
		t.Fatal(err)
	}
	Materialize([]*column.Chunk{c}, plans)

	plan := plans[0]
	if plan.Type != column.String {
		t.Fatalf("type = %v, want String", plan.Type)
	}
	width := plan.Width
	rows := []string{"a,b", `c"d`, "xy"}
	for row, want := range rows {
		cell := plan.Buf[row*width : (row+1)*width]
		n := len(want)
		if got := string(cell[:n]); got != want {
			t.Fatalf("row %d = %q, want %q", row, got, want)
		}
		for _, b := range cell[n:] {
			if b != 0 {
				t.Fatalf("row %d trailing byte not zero: %v", row, cell)
			}
		}
	}
}

func TestMaterialize_RaggedRowZeroFillsMissingStringCell(t *testing.T) {
	data := "a,b,c\nd\n"
	c := scanChunk(data, 0, len(data))

	plans, err := reconcile.Reconcile([]*column.Chunk{c}, fakeSink{})
	if err != nil {
		t.Fatal(err)
	}
	Materialize([]*column.Chunk{c}, plans)

	width := plans[1].Width
	row1 := plans[1].Buf[width : 2*width]
	for _, b := range row1 {
		if b != 0 {
			t.Fatalf("ragged row cell not zero-filled: %v", row1)
		}
	}
}

func TestMaterialize_SpilledColumnReassemblesAcrossSpillAndLiveValues(t *testing.T) {
	data := "1\n2\n3\n4\n"
	opt := scanner.DefaultOptions()
	opt.SpillBytes = 17 // spills after the 3rd value; the 4th stays live
	opt.SpillDir = t.TempDir()
	c := &column.Chunk{Data: []byte(data), Start: 0, SoftEnd: len(data), BufEnd: len(data)}
	scanner.Scan(c, opt)
	if c.Column(0).Spill == nil {
		t.Fatal("expected column to have spilled for this test to be meaningful")
	}

	plans, err := reconcile.Reconcile([]*column.Chunk{c}, int32Sink{})
	if err != nil {
		t.Fatal(err)
	}
	Materialize([]*column.Chunk{c}, plans)

	plan := plans[0]
	for row, want := range []int32{1, 2, 3, 4} {
		got := int32(binary.LittleEndian.Uint32(plan.Buf[row*4 : row*4+4]))
		if got != want {
			t.Fatalf("row %d = %d, want %d", row, got, want)
		}
	}
}

func TestMaterialize_ColumnAbsentFromChunkIsZeroFilled(t *testing.T) {
	c0 := scanChunk("1,2\n3,4\n", 0, 8)
	c1 := scanChunk("5\n", 0, 2) // only one column observed in this chunk

	plans, err := reconcile.Reconcile([]*column.Chunk{c0, c1}, fakeSink{})
	if err != nil {
		t.Fatal(err)
	}
	Materialize([]*column.Chunk{c0, c1}, plans)

	plan := plans[1]
	elemSize := plan.Type.ElemSize(plan.Width)
	// rows 0-1 come from c0 (values 2, 4); row 2 comes from c1, which never
	// saw column 1 at all and must be zero-filled.
	got := plan.Buf[2*elemSize : 3*elemSize]
	for _, b := range got {
		if b != 0 {
			t.Fatalf("column absent from chunk not zero-filled: %v", got)
		}
	}
}
