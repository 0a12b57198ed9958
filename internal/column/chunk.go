package column

import "github.com/csvquery/colcsv/internal/arena"

// Descriptor is a column's state within a single chunk (spec §3, "Column
// descriptor"). It is created lazily the first time stage 1 encounters the
// column's index in that chunk.
type Descriptor struct {
	Type     Type
	Width    int // max raw cell byte span seen (quotes included)
	FirstRow int // row index within the chunk at which this column first appeared

	// Values buffers stage 1's eagerly decoded numeric cells as raw 8-byte
	// slots (fastcsv.c's shared int64_t/double LinkedBuf slot — spec §4.2
	// "Value buffers"). A slot holds either an int64 bit pattern or a
	// float64 bit pattern depending on Type at the time it was written;
	// internal/reconcile reinterprets int64 slots to float64 (a real
	// numeric cast, not a bit copy) when a column is promoted to DOUBLE.
	// Storing raw bits instead of widening every integer to float64 up
	// front avoids silently losing precision on large int64 values before
	// the final type is known. Only populated while Type is Int32, Int64
	// or Double; nil for STRING columns, which re-read from the original
	// bytes in stage 2.
	Values *arena.Block[uint64]

	// Spill is non-nil once Values has been persisted to disk because it
	// grew past the configured arena budget (see internal/arena.WriteSpill
	// and SPEC_FULL.md's DOMAIN STACK). Once Spill is set, Values holds
	// only the values appended after the spill; stage 2 streams the
	// column's values back from Spill first, then copies Values.
	Spill *arena.Spill[uint64]

	// SpillIsInt records whether the slots already on disk in Spill are
	// int64 bit patterns (true) or float64 bit patterns (false) — the
	// same ambiguity Values carries while Type is still being decided,
	// but frozen at the moment of spilling. internal/reconcile needs this
	// to know whether a later INT64->DOUBLE promotion must convert the
	// spilled slots too.
	SpillIsInt bool
}

// Chunk is one worker's byte range plus everything stage 1 accumulates
// while scanning it (spec §3, "Chunk").
type Chunk struct {
	Idx int

	// Data is the full input buffer; Start/SoftEnd/BufEnd are absolute
	// byte offsets into it delimiting this chunk's range. Using shared
	// slice + offsets (instead of sub-slicing per chunk) keeps absolute
	// positions, which boundary fix-up and materialization both need,
	// cheap to compute without re-deriving them from a base pointer.
	Data    []byte
	Start   int
	SoftEnd int
	BufEnd  int

	// FoundEnd is the byte position stage 1 actually stopped at (one past
	// the last newline consumed, or BufEnd at end of input).
	FoundEnd int

	Columns []Descriptor

	// Offsets holds this chunk's per-record cell-boundary encoding (see
	// OffsetCursor). OffsetsOwned is false when Offsets is a shared,
	// non-owning view into another chunk's (or the fix-up super-chunk's)
	// buffer, per spec §4.3.
	Offsets      *arena.Block[uint32]
	OffsetsOwned bool
	OffsetBase   int // index into Offsets where this chunk's records begin

	NRows int
	NCols int
}

// Column returns the descriptor for column j, growing the slice (doubling,
// spec §9) if needed.
func (c *Chunk) Column(j int) *Descriptor {
	if j >= cap(c.Columns) {
		n := cap(c.Columns)
		if n == 0 {
			n = 1
		}
		for n <= j {
			n *= 2
		}
		grown := make([]Descriptor, len(c.Columns), n)
		copy(grown, c.Columns)
		c.Columns = grown
	}
	if j >= len(c.Columns) {
		c.Columns = c.Columns[:j+1]
	}
	return &c.Columns[j]
}
