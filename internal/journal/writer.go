package journal

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielpatrickdp/focus-companion/internal/decision"
	"github.com/danielpatrickdp/focus-companion/internal/ledger"
	"github.com/danielpatrickdp/focus-companion/internal/reward"
)

// DefaultBuffer is the number of pending writes an AsyncWriter holds.
const DefaultBuffer = 256

type job func(*Store) error

// #region writer
// AsyncWriter journals from the tick goroutine without blocking it. Writes
// run on a background goroutine; when the buffer is full the record is
// dropped and counted.
type AsyncWriter struct {
	store   *Store
	ch      chan job
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewAsyncWriter starts a writer over store. buffer <= 0 uses DefaultBuffer.
func NewAsyncWriter(store *Store, buffer int) *AsyncWriter {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	w := &AsyncWriter{store: store, ch: make(chan job, buffer)}
	w.wg.Add(1)
	go w.loop()
	return w
}

func (w *AsyncWriter) loop() {
	defer w.wg.Done()
	for j := range w.ch {
		if err := j(w.store); err != nil {
			log.Printf("[JOURNAL] write failed: %v", err)
		}
	}
}

func (w *AsyncWriter) submit(j job) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.ch <- j:
	default:
		if n := w.dropped.Add(1); n == 1 || n%100 == 0 {
			log.Printf("[JOURNAL] buffer full, dropped %d records so far", n)
		}
	}
}

// Dropped returns how many records were discarded because the buffer was full.
func (w *AsyncWriter) Dropped() int64 { return w.dropped.Load() }

// Close drains pending writes and stops the writer. It does not close the store.
func (w *AsyncWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.ch)
	w.mu.Unlock()
	w.wg.Wait()
}
// #endregion writer

// #region journal
// RecordDecision queues a decision row.
func (w *AsyncWriter) RecordDecision(at time.Time, d decision.Decision) {
	w.submit(func(s *Store) error { return s.InsertDecision(at, d) })
}

// RecordReward queues a reward row.
func (w *AsyncWriter) RecordReward(at time.Time, ev reward.Event) {
	w.submit(func(s *Store) error { return s.InsertReward(at, ev) })
}

// RecordIntervention queues an intervention row.
func (w *AsyncWriter) RecordIntervention(at time.Time, req decision.InterventionRequest) {
	w.submit(func(s *Store) error { return s.InsertIntervention(at, req) })
}

// RecordResponse queues a response row.
func (w *AsyncWriter) RecordResponse(at time.Time, typeID string, resp ledger.UserResponse, multiplier float64) {
	w.submit(func(s *Store) error { return s.InsertResponse(at, typeID, resp, multiplier) })
}
// #endregion journal
