package ledger

import "time"

// #region ledger

// Ledger holds per-intervention cooldown entries and per-kind reward timestamps.
// Its clock only moves in whole-second steps so cooldown arithmetic does not
// depend on the frame rate. Not goroutine-safe.
type Ledger struct {
	now       time.Time
	cooldowns map[string]*CooldownEntry
	rewards   map[string]time.Time
	fired     []time.Time // trigger times, oldest first
}

// New creates a ledger whose clock starts at start (truncated to the second).
func New(start time.Time) *Ledger {
	return &Ledger{
		now:       start.Truncate(time.Second),
		cooldowns: make(map[string]*CooldownEntry),
		rewards:   make(map[string]time.Time),
	}
}

// #endregion ledger

// #region clock

// Advance moves the ledger clock forward by the whole seconds elapsed up to now.
// Returns the number of seconds stepped. Time never moves backwards.
func (l *Ledger) Advance(now time.Time) int {
	if !now.After(l.now) {
		return 0
	}
	steps := int(now.Sub(l.now) / time.Second)
	l.now = l.now.Add(time.Duration(steps) * time.Second)
	return steps
}

// Now returns the ledger's quantized clock.
func (l *Ledger) Now() time.Time { return l.now }

// #endregion clock

// #region cooldowns

func (l *Ledger) entry(typeID string) *CooldownEntry {
	e, ok := l.cooldowns[typeID]
	if !ok {
		e = &CooldownEntry{TypeID: typeID, Multiplier: 1.0}
		l.cooldowns[typeID] = e
	}
	return e
}

// Entry returns a copy of the cooldown entry for typeID.
func (l *Ledger) Entry(typeID string) CooldownEntry {
	if e, ok := l.cooldowns[typeID]; ok {
		return *e
	}
	return CooldownEntry{TypeID: typeID, Multiplier: 1.0}
}

// Multiplier returns the current cooldown multiplier for typeID.
func (l *Ledger) Multiplier(typeID string) float64 {
	return l.Entry(typeID).Multiplier
}

// CanTrigger reports whether more than minCooldown*multiplier has elapsed
// since typeID last fired. Types that never fired can always trigger.
func (l *Ledger) CanTrigger(typeID string, minCooldown time.Duration) bool {
	e := l.Entry(typeID)
	if e.LastTriggeredAt.IsZero() {
		return true
	}
	required := time.Duration(float64(minCooldown) * e.Multiplier)
	return l.now.Sub(e.LastTriggeredAt) > required
}

// Remaining returns how much cooldown is left for typeID, or 0.
func (l *Ledger) Remaining(typeID string, minCooldown time.Duration) time.Duration {
	e := l.Entry(typeID)
	if e.LastTriggeredAt.IsZero() {
		return 0
	}
	left := time.Duration(float64(minCooldown)*e.Multiplier) - l.now.Sub(e.LastTriggeredAt)
	if left < 0 {
		return 0
	}
	return left
}

// MarkTriggered stamps typeID with the current ledger time.
func (l *Ledger) MarkTriggered(typeID string) {
	l.entry(typeID).LastTriggeredAt = l.now
	l.fired = append(l.fired, l.now)
}

// TriggeredWithin counts interventions fired within window of the ledger clock.
// Entries older than the window are pruned.
func (l *Ledger) TriggeredWithin(window time.Duration) int {
	cutoff := l.now.Add(-window)
	i := 0
	for i < len(l.fired) && !l.fired[i].After(cutoff) {
		i++
	}
	l.fired = l.fired[i:]
	return len(l.fired)
}

// ApplyResponse adapts the multiplier for typeID: quick dismissals stretch the
// cooldown, positive engagement shortens it. Ignored responses leave it alone.
func (l *Ledger) ApplyResponse(typeID string, resp UserResponse) float64 {
	e := l.entry(typeID)
	switch resp {
	case ResponseDismissed:
		e.Multiplier *= dismissFactor
	case ResponseEngaged:
		e.Multiplier *= engageFactor
	}
	e.Multiplier = clampMultiplier(e.Multiplier)
	return e.Multiplier
}

// #endregion cooldowns

// #region rewards

// MarkRewarded records that a reward of kind was granted now.
func (l *Ledger) MarkRewarded(kind string) {
	l.rewards[kind] = l.now
}

// LastRewarded returns when kind was last granted.
func (l *Ledger) LastRewarded(kind string) (time.Time, bool) {
	t, ok := l.rewards[kind]
	return t, ok
}

// #endregion rewards

// #region helpers

func clampMultiplier(m float64) float64 {
	if m != m || m < MinMultiplier {
		return MinMultiplier
	}
	if m > MaxMultiplier {
		return MaxMultiplier
	}
	return m
}

// #endregion helpers
