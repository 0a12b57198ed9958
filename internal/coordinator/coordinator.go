// Package coordinator implements the top-level parse pipeline (spec §4.7,
// component C7): partitioning the input into per-worker chunks, running
// stages 1 and 2 across a fixed goroutine pool, and synchronizing the
// serial fix-up/reconciliation step between them with two barriers.
//
// Ported from fastcsv.c's parse_csv/parse_thread. Threads become
// goroutines and pthread_barrier_t becomes internal/barrier.Barrier;
// chunk-boundary precomputation before launching workers follows
// internal/indexer/scanner.go's Scan (itself the same
// findSafeRecordBoundary idea fastcsv.c's parse_csv skips: a cheap
// even/odd-quote-count pre-check nudges each worker's nominal starting
// point onto a newline that's very likely a genuine record boundary,
// reducing — but never eliminating — how often internal/boundary.Fix's
// expensive re-scan actually triggers. internal/scanner.Scan runs its own
// newline-skip only for a chunk whose Start is not right after a '\n',
// which a pre-checked boundary always is, so a wrong pre-check guess is
// caught by internal/boundary.Fix, the sole source of correctness).
package coordinator

import (
	"bytes"
	"sync"

	"github.com/csvquery/colcsv/internal/barrier"
	"github.com/csvquery/colcsv/internal/boundary"
	"github.com/csvquery/colcsv/internal/column"
	"github.com/csvquery/colcsv/internal/header"
	"github.com/csvquery/colcsv/internal/materialize"
	"github.com/csvquery/colcsv/internal/reconcile"
	"github.com/csvquery/colcsv/internal/scanner"
)

// Sink receives every callback a parse produces, in the order spec §6
// requires: headers during C6 on the calling goroutine, then one
// AllocateColumn call per column (optionally preceded by NarrowType, via
// reconcile.TypeNarrower) from the elected barrier-1 serial worker, and
// nothing else — materialize fills the buffers AllocateColumn returned
// without any further callback.
type Sink interface {
	header.Sink
	reconcile.Sink
}

// Options configures a single Run call. Threads mirrors
// FastCsvInput.nthreads (spec §6): the caller-requested worker count,
// typically 1-8. Headers mirrors nheaders: whether the first record is a
// header row consumed by C6 rather than treated as data.
type Options struct {
	Threads int
	Headers bool
	Scan    scanner.Options
}

// Run executes the full pipeline over data and delivers every column and
// header to sink. It returns the first error any AllocateColumn call
// produced (spec §7 category 3: fatal, host-side allocation failure);
// there is no other error path, matching the core's no-rich-errors
// contract.
func Run(data []byte, opt Options, sink Sink) error {
	threads := opt.Threads
	if threads < 1 {
		threads = 1
	}

	dataStart := 0
	if opt.Headers {
		next, err := header.Parse(data, 0, opt.Scan, sink)
		if err != nil {
			return err
		}
		dataStart = next
	}

	if dataStart >= len(data) {
		return nil
	}

	chunks := partition(data, dataStart, threads)

	barrier1 := barrier.New(threads)
	barrier2 := barrier.New(threads)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	recordErr := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	var plans []reconcile.ColumnPlan

	wg.Add(threads)
	for i := 0; i < threads; i++ {
		go func(idx int) {
			defer wg.Done()

			scanner.Scan(chunks[idx], opt.Scan)

			if barrier1.Wait() {
				// Single goroutine here: every other worker is blocked on
				// barrier1, so chunks and plans are exclusively ours until
				// barrier2 releases them (spec §5, "host callback
				// thread-safety").
				boundary.Fix(chunks, opt.Scan)
				p, err := reconcile.Reconcile(chunks, sink)
				if err != nil {
					recordErr(err)
				} else {
					plans = p
				}
			}

			barrier2.Wait()

			if firstErr == nil {
				materialize.MaterializeChunk(chunks, idx, plans)
			}
		}(i)
	}
	wg.Wait()

	return firstErr
}

// partition splits data[dataStart:] into threads equal byte ranges
// (fastcsv.c's parse_csv: chunk_buf = data_begin + buf_len*i/nthreads),
// nudging each internal boundary onto a nearby newline that a cheap
// quote-parity check can't immediately disprove. Chunk 0's Start is
// never nudged — it is always dataStart exactly, since there is no
// preceding chunk to align with.
func partition(data []byte, dataStart, threads int) []*column.Chunk {
	n := len(data)
	bufLen := n - dataStart

	boundaries := make([]int, threads+1)
	boundaries[0] = dataStart
	boundaries[threads] = n
	for i := 1; i < threads; i++ {
		hint := dataStart + bufLen*i/threads
		if hint < n {
			boundaries[i] = findSafeBoundary(data, hint)
		} else {
			boundaries[i] = n
		}
	}

	chunks := make([]*column.Chunk, threads)
	for i := 0; i < threads; i++ {
		chunks[i] = &column.Chunk{
			Idx:     i,
			Data:    data,
			Start:   boundaries[i],
			SoftEnd: boundaries[i+1],
			BufEnd:  n,
		}
	}
	return chunks
}

// findSafeBoundary looks for the first newline at or after hint whose
// following line contains an even number of '"' bytes — a line that, on
// its own, can't be half of a quoted multi-line cell. Ported from
// internal/indexer/scanner.go's findSafeRecordBoundary. This is only ever
// a hint: the result always sits right after a newline (or at len(data)),
// so internal/scanner.Scan starts there without its own newline-skip even
// when the guess lands inside a quoted cell, and internal/boundary.Fix is
// what actually corrects a wrong guess.
func findSafeBoundary(data []byte, hint int) int {
	pos := hint
	if pos >= len(data) {
		return len(data)
	}
	nextNL := bytes.IndexByte(data[pos:], '\n')
	if nextNL < 0 {
		return len(data)
	}
	pos += nextNL
	currentNL := pos

	for {
		if currentNL+1 >= len(data) {
			return len(data)
		}
		nextNL := bytes.IndexByte(data[currentNL+1:], '\n')
		if nextNL < 0 {
			return len(data)
		}
		nextPos := currentNL + 1 + nextNL

		quotes := 0
		for i := currentNL + 1; i < nextPos; i++ {
			if data[i] == '"' {
				quotes++
			}
		}
		if quotes%2 == 0 {
			return currentNL + 1
		}
		currentNL = nextPos
	}
}
