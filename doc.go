// Package colcsv parses a CSV file already loaded into memory into a set
// of typed columnar buffers, splitting the work across a fixed pool of
// goroutines.
//
// The pipeline has two stages. Stage 1 (internal/scanner) gives each
// worker a disjoint byte range of the input and has it classify every
// cell it finds (INT64, DOUBLE or STRING), buffering numeric values and
// recording each record's cell boundaries as it goes — all without
// knowing yet where other workers' chunks begin or end. A boundary-repair
// pass (internal/boundary) then re-scans and corrects any worker that
// guessed wrong about where its chunk actually starts, a type
// reconciliation pass (internal/reconcile) computes each column's final
// type across every chunk and asks the Sink for a destination buffer, and
// stage 2 (internal/materialize) copies each chunk's decoded cells into
// place. internal/coordinator drives the whole sequence, synchronizing
// the two serial steps between the parallel stages with a pair of
// barriers.
//
// Parse does not read a file itself — callers load the CSV into a
// []byte however suits them (internal/iomap's mmap loader is one option)
// and hand it to Parse along with a Sink that receives the header and
// allocates each column's destination buffer.
package colcsv
