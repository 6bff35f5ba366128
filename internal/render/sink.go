package render

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielpatrickdp/focus-companion/internal/animation"
)

// #region sink
// Player is what AsyncSink forwards batches to. *Client satisfies it.
type Player interface {
	Play(ctx context.Context, cmds []animation.Command) (int, error)
}

// AsyncSink hands command batches to a Player without blocking the tick.
// When the buffer is full the batch is dropped.
type AsyncSink struct {
	player  Player
	timeout time.Duration
	ch      chan []animation.Command
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	sent    atomic.Int64
	dropped atomic.Int64
	failed  atomic.Int64
}

// NewAsyncSink starts a sink with room for buffer pending batches.
func NewAsyncSink(p Player, buffer int, timeout time.Duration) *AsyncSink {
	if buffer <= 0 {
		buffer = 32
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	s := &AsyncSink{player: p, timeout: timeout, ch: make(chan []animation.Command, buffer)}
	s.wg.Add(1)
	go s.loop()
	return s
}

func (s *AsyncSink) loop() {
	defer s.wg.Done()
	for batch := range s.ch {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		_, err := s.player.Play(ctx, batch)
		cancel()
		if err != nil {
			if n := s.failed.Add(1); n == 1 || n%100 == 0 {
				log.Printf("[RENDER] play failed (%d so far): %v", n, err)
			}
			continue
		}
		s.sent.Add(1)
	}
}

// Play queues cmds for delivery. Never blocks.
func (s *AsyncSink) Play(cmds []animation.Command) {
	if len(cmds) == 0 {
		return
	}
	batch := make([]animation.Command, len(cmds))
	copy(batch, cmds)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- batch:
	default:
		if n := s.dropped.Add(1); n == 1 || n%100 == 0 {
			log.Printf("[RENDER] renderer backlog, dropped %d batches so far", n)
		}
	}
}

// Stats returns delivered, dropped and failed batch counts.
func (s *AsyncSink) Stats() (sent, dropped, failed int64) {
	return s.sent.Load(), s.dropped.Load(), s.failed.Load()
}

// Close drains queued batches and stops the sink.
func (s *AsyncSink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()
	s.wg.Wait()
}
// #endregion sink
