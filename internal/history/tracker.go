package history

import "time"

// #region constants

// DefaultCapacity is the number of snapshots retained before eviction.
const DefaultCapacity = 1000

// #endregion constants

// #region tracker

// Tracker is a fixed-capacity circular log of recent snapshots.
// The oldest entry is overwritten once the log is full. Not goroutine-safe;
// the engine owns it and mutates it only from the tick loop.
type Tracker struct {
	buf   []Snapshot
	start int // index of the oldest entry
	n     int
}

// NewTracker creates a tracker. capacity <= 0 falls back to DefaultCapacity.
func NewTracker(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Tracker{buf: make([]Snapshot, capacity)}
}

// Capacity returns the maximum number of retained snapshots.
func (t *Tracker) Capacity() int { return len(t.buf) }

// Len returns the number of retained snapshots.
func (t *Tracker) Len() int { return t.n }

// #endregion tracker

// #region record

// Record appends a snapshot, evicting the oldest when full.
// Confidence is clamped to [0, 1] and negative durations are zeroed.
func (t *Tracker) Record(s Snapshot) {
	s.Confidence = clamp01(s.Confidence)
	if s.Duration < 0 {
		s.Duration = 0
	}
	if t.n < len(t.buf) {
		t.buf[(t.start+t.n)%len(t.buf)] = s
		t.n++
		return
	}
	t.buf[t.start] = s
	t.start = (t.start + 1) % len(t.buf)
}

// #endregion record

// #region access

// at returns the i-th oldest retained snapshot.
func (t *Tracker) at(i int) Snapshot {
	return t.buf[(t.start+i)%len(t.buf)]
}

// Latest returns the most recent snapshot.
func (t *Tracker) Latest() (Snapshot, bool) {
	if t.n == 0 {
		return Snapshot{}, false
	}
	return t.at(t.n - 1), true
}

// Previous returns the snapshot recorded before the latest one.
func (t *Tracker) Previous() (Snapshot, bool) {
	if t.n < 2 {
		return Snapshot{}, false
	}
	return t.at(t.n - 2), true
}

// Recent returns up to n snapshots ordered oldest to newest.
func (t *Tracker) Recent(n int) []Snapshot {
	if n <= 0 || t.n == 0 {
		return nil
	}
	if n > t.n {
		n = t.n
	}
	out := make([]Snapshot, n)
	for i := 0; i < n; i++ {
		out[i] = t.at(t.n - n + i)
	}
	return out
}

// #endregion access

// #region durations

// ContinuousDuration sums the durations of the contiguous run of snapshots
// that share the latest snapshot's type.
func (t *Tracker) ContinuousDuration() time.Duration {
	latest, ok := t.Latest()
	if !ok {
		return 0
	}
	var total time.Duration
	for i := t.n - 1; i >= 0; i-- {
		s := t.at(i)
		if s.Type != latest.Type {
			break
		}
		total += s.Duration
	}
	return total
}

// TimeIn totals the duration of snapshots of the given type recorded at or after since.
func (t *Tracker) TimeIn(st StateType, since time.Time) time.Duration {
	var total time.Duration
	for i := t.n - 1; i >= 0; i-- {
		s := t.at(i)
		if s.RecordedAt.Before(since) {
			break
		}
		if s.Type == st {
			total += s.Duration
		}
	}
	return total
}

// Summary aggregates the retained history.
func (t *Tracker) Summary() Summary {
	var sum Summary
	var run time.Duration
	var prev StateType
	for i := 0; i < t.n; i++ {
		s := t.at(i)
		sum.Samples++
		if i > 0 && s.Type != prev {
			sum.Transitions++
		}
		switch {
		case s.Type.Focused():
			sum.TotalFocus += s.Duration
		case s.Type == StateDistracted:
			sum.TotalDistracted += s.Duration
		}
		if s.Type == StateFlow {
			if prev == StateFlow {
				run += s.Duration
			} else {
				run = s.Duration
			}
			if run > sum.LongestFlow {
				sum.LongestFlow = run
			}
		}
		prev = s.Type
	}
	return sum
}

// #endregion durations

// #region helpers

func clamp01(v float64) float64 {
	if v != v || v < 0 { // NaN or negative
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
