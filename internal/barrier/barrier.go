// Package barrier implements a reusable cyclic barrier for the fixed-size
// worker pool internal/coordinator runs: n goroutines, two sync points per
// parse (one after stage 1, one before stage 2), with exactly one goroutine
// singled out at each point; the coordinator has the one singled out at the
// first point run the serial work in between.
//
// Ported from original_source/osx_pthread_barrier.h's pthread_barrier
// shim, translated into the idiomatic Go equivalent: sync.Mutex/sync.Cond
// instead of pthread_mutex_t/pthread_cond_t, and a generation counter
// added so the barrier can be waited on more than once without the
// lost-wakeup race a bare counter reset has if a late goroutine from cycle
// N is still waking up when cycle N+1 starts filling the counter back up.
package barrier

import "sync"

// Barrier is a cyclic barrier for a fixed party size. The zero value is
// not usable; construct with New.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	n          int
	count      int
	generation int
}

// New creates a Barrier for n parties.
func New(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until n goroutines have called Wait for the current
// generation, then releases them all together. It returns true for
// exactly one caller per generation (mirroring
// PTHREAD_BARRIER_SERIAL_THREAD) — the coordinator uses that goroutine to
// run the serial reconciliation step between stage 1 and stage 2.
func (b *Barrier) Wait() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.count++
	if b.count == b.n {
		b.count = 0
		b.generation++
		b.cond.Broadcast()
		return true
	}
	for gen == b.generation {
		b.cond.Wait()
	}
	return false
}
