package history

import (
	"strings"
	"time"
)

// #region state-type

// StateType is the behavioral-state label produced by the upstream classifier.
type StateType string

const (
	StateFlow          StateType = "flow"
	StateHyperfocus    StateType = "hyperfocus"
	StateDistracted    StateType = "distracted"
	StateTransitioning StateType = "transitioning"
	StateNeutral       StateType = "neutral"
)

// ParseStateType normalizes a classifier label. Unknown labels return false.
func ParseStateType(s string) (StateType, bool) {
	switch StateType(strings.ToLower(strings.TrimSpace(s))) {
	case StateFlow:
		return StateFlow, true
	case StateHyperfocus:
		return StateHyperfocus, true
	case StateDistracted:
		return StateDistracted, true
	case StateTransitioning:
		return StateTransitioning, true
	case StateNeutral:
		return StateNeutral, true
	default:
		return "", false
	}
}

// Valid reports whether t is one of the known state types.
func (t StateType) Valid() bool {
	switch t {
	case StateFlow, StateHyperfocus, StateDistracted, StateTransitioning, StateNeutral:
		return true
	}
	return false
}

// Focused reports whether t counts as productive focus time.
func (t StateType) Focused() bool {
	return t == StateFlow || t == StateHyperfocus
}

// #endregion state-type

// #region metrics

// Metrics carries the classifier's activity measurements for one snapshot.
type Metrics struct {
	KeystrokesPerMin  float64 `json:"keystrokes_per_min"`
	MouseEventsPerMin float64 `json:"mouse_events_per_min"`
	ContextSwitches   int     `json:"context_switches"`
	IdleSeconds       float64 `json:"idle_seconds"`
	ActiveApp         string  `json:"active_app,omitempty"`
	WorkType          string  `json:"work_type,omitempty"` // e.g. "coding", "writing", "browsing"
}

// #endregion metrics

// #region snapshot

// Snapshot is one recorded classification. Stored by value; never mutated after Record.
type Snapshot struct {
	Type       StateType
	Confidence float64
	Duration   time.Duration
	Metrics    Metrics
	RecordedAt time.Time
}

// #endregion snapshot

// #region summary

// Summary aggregates the snapshots currently held by a Tracker.
type Summary struct {
	TotalFocus      time.Duration
	TotalDistracted time.Duration
	LongestFlow     time.Duration
	Transitions     int
	Samples         int
}

// #endregion summary
