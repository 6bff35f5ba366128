package animation

import (
	"strings"
	"time"
)

// #region priority

// Priority orders queued commands. Higher values win.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	}
	return "unknown"
}

// ParsePriority maps a priority name onto a Priority. Unknown names return false.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(s) {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	case "urgent":
		return PriorityUrgent, true
	}
	return PriorityLow, false
}

func (p Priority) valid() bool { return p >= PriorityLow && p <= PriorityUrgent }

// #endregion priority

// #region command-type

// CommandType classifies an animation command.
type CommandType string

const (
	TypeBaseState     CommandType = "base_state"
	TypeExpression    CommandType = "expression"
	TypeReaction      CommandType = "reaction"
	TypeCelebration   CommandType = "celebration"
	TypeIdleVariation CommandType = "idle_variation"
)

// #endregion command-type

// #region quality

// Quality is the renderer detail level.
type Quality int

const (
	QualityLow Quality = iota
	QualityMedium
	QualityHigh
)

func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	}
	return "unknown"
}

// #endregion quality

// #region command

// Glow describes the companion's aura.
type Glow struct {
	Color     string  `json:"color"`
	Intensity float64 `json:"intensity"`
}

// Particles describes an emitter attached to a command.
type Particles struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// Command is a value object handed to the renderer. Once dispatched it is not mutated.
type Command struct {
	ID            string
	Type          CommandType
	Name          string
	Duration      time.Duration // ignored when Loop is set
	Loop          bool
	Priority      Priority
	Interruptible bool
	Glow          *Glow
	Particles     *Particles
	Sound         string
}

// clone deep-copies the optional descriptors so callers cannot alias them.
func (c Command) clone() Command {
	if c.Glow != nil {
		g := *c.Glow
		c.Glow = &g
	}
	if c.Particles != nil {
		p := *c.Particles
		c.Particles = &p
	}
	return c
}

// #endregion command

// #region config

// Config tunes the orchestrator.
type Config struct {
	Capacity        int           // max queued commands
	BlendDuration   time.Duration // crossfade length
	HardTimeout     time.Duration // max runtime for non-interruptible commands
	MaxQueueWait    time.Duration // queued commands older than this are dropped (urgent exempt)
	TargetFrameTime time.Duration
	QualityWindow   int     // frame-time samples per quality decision
	DegradeFactor   float64 // step down above TargetFrameTime * DegradeFactor
	RecoverFactor   float64 // step up below TargetFrameTime * RecoverFactor
	BaseDuration    time.Duration
	IdleFactor      float64 // idle threshold = BaseDuration * IdleFactor
	IdleChance      float64
}

// DefaultConfig returns the shipped tuning for a 60 Hz target.
func DefaultConfig() Config {
	return Config{
		Capacity:        10,
		BlendDuration:   300 * time.Millisecond,
		HardTimeout:     8 * time.Second,
		MaxQueueWait:    15 * time.Second,
		TargetFrameTime: time.Second / 60,
		QualityWindow:   60,
		DegradeFactor:   1.5,
		RecoverFactor:   0.7,
		BaseDuration:    4 * time.Second,
		IdleFactor:      3,
		IdleChance:      0.3,
	}
}

// #endregion config

// #region frame

// Blend is an in-progress crossfade. Weights sum to 1.
type Blend struct {
	From     string
	To       string
	Progress float64 // [0, 1]
}

// FromWeight is the outgoing command's contribution.
func (b Blend) FromWeight() float64 { return 1 - b.Progress }

// ToWeight is the incoming command's contribution.
func (b Blend) ToWeight() float64 { return b.Progress }

// Frame is the orchestrator's output for one tick.
type Frame struct {
	Active   Command
	Elapsed  time.Duration // time the active command has been playing
	Blend    *Blend        // nil when not crossfading
	Quality  Quality
	Started  []Command // commands that began this tick, for dispatch
	Retired  []Command // commands that finished or were preempted this tick
	Dropped  []Command // commands evicted or expired before they ever played
	QueueLen int
}

// #endregion frame

// #region rand

// RandSource is the randomness used for idle variations.
type RandSource interface {
	Float64() float64
	IntN(n int) int
}

// #endregion rand
