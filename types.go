package colcsv

import (
	"math"

	"github.com/csvquery/colcsv/internal/column"
)

// ColumnType is a column's inferred type, one of Int32, Int64, Double or
// String, ordered as a lattice (spec §3): once a column is observed wide
// enough to need DOUBLE or STRING, it never narrows back.
type ColumnType = column.Type

const (
	Int32  = column.Int32
	Int64  = column.Int64
	Double = column.Double
	String = column.String
)

// Input configures a single Parse call. The zero value is not directly
// usable — call DefaultInput to get the conventional CSV dialect, then
// override only the fields that need to differ.
type Input struct {
	// Data is the CSV bytes to parse. Required.
	Data []byte

	// Threads is the size of the worker pool stage 1 and stage 2 both run
	// on. Values below 1 are treated as 1.
	Threads int

	// Headers, when true, treats the first record as column names and
	// reports them to Sink.EmitHeader before any data row is parsed.
	Headers bool

	// Separator is the cell delimiter byte. Defaults to ','.
	Separator byte

	// ExcelQuotes enables Excel-style '"'-delimited cells with ""
	// escaping for an embedded quote. Defaults to true; a disabled
	// column never classifies a quoted cell as numeric, since the
	// quotes themselves become part of the cell's literal text.
	ExcelQuotes bool

	// MissingInt and MissingFloat are the sentinel values an empty cell
	// gets, for a column that otherwise stayed numeric. Default 0 and NaN
	// respectively. A ragged row's absent trailing columns are filled with
	// 0, not with these sentinels.
	MissingInt   int64
	MissingFloat float64

	// ArenaSpillBytes bounds how large a single column's in-memory value
	// buffer is allowed to grow within one chunk before it spills to an
	// lz4-compressed temp file under ArenaSpillDir and continues in a
	// fresh buffer. Zero disables spilling.
	ArenaSpillBytes int
	ArenaSpillDir   string
}

// DefaultInput returns an Input with the conventional CSV dialect applied
// and Data left empty; callers set Data (and usually Threads) before
// calling Parse.
func DefaultInput() Input {
	return Input{
		Threads:      1,
		Separator:    ',',
		ExcelQuotes:  true,
		MissingInt:   0,
		MissingFloat: math.NaN(),
	}
}

// Sink receives the parsed schema and owns every destination buffer Parse
// writes into.
//
// EmitHeader is called once per column, in order, only when Input.Headers
// is true. AllocateColumn is called once per column once its final type
// is known across the whole input; the returned buffer must be exactly
// nrows*typ.ElemSize(width) bytes and remains valid until Parse returns.
type Sink interface {
	EmitHeader(cell []byte) error
	AllocateColumn(col int, typ ColumnType, nrows, width int) ([]byte, error)
}

// TypeNarrower is an optional Sink capability. A Sink that implements it
// gets the last word on each column's reconciled type — to force a
// numeric-looking column to stay String, or to accept a type Parse
// inferred as-is by returning it unchanged.
type TypeNarrower interface {
	NarrowType(col int, inferred ColumnType) ColumnType
}
