package colcsv

import (
	"github.com/csvquery/colcsv/internal/coordinator"
	"github.com/csvquery/colcsv/internal/scanner"
)

// Parse runs the full two-stage pipeline over in.Data and delivers the
// header (if in.Headers is set) and every column's destination buffer to
// sink. It returns the first error sink.AllocateColumn produced; there is
// no other error path (spec §7 — this core performs no input validation
// of its own and never fails on malformed CSV, only on a host-side
// allocation failure).
//
// sink additionally satisfying TypeNarrower is picked up automatically —
// Go's implicit interface satisfaction means no adapter is needed between
// this package's Sink and internal/coordinator's.
func Parse(in Input, sink Sink) error {
	opt := coordinator.Options{
		Threads: in.Threads,
		Headers: in.Headers,
		Scan: scanner.Options{
			Separator:    orDefaultSeparator(in.Separator),
			ExcelQuotes:  in.ExcelQuotes,
			MissingInt:   in.MissingInt,
			MissingFloat: in.MissingFloat,
			SpillBytes:   in.ArenaSpillBytes,
			SpillDir:     in.ArenaSpillDir,
		},
	}
	return coordinator.Run(in.Data, opt, sink)
}

func orDefaultSeparator(sep byte) byte {
	if sep == 0 {
		return ','
	}
	return sep
}
