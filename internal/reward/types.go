package reward

import (
	"math/rand/v2"
	"time"
)

// #region kind

// Kind classifies a reward event.
type Kind string

const (
	KindCoins       Kind = "coins"
	KindAchievement Kind = "achievement"
	KindMilestone   Kind = "milestone"
	KindBonus       Kind = "bonus"
)

// Priority mirrors the animation priority vocabulary so sinks can order rewards.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// #endregion kind

// #region event

// Event is a granted reward. Produced once, handed to sinks, then discarded.
type Event struct {
	ID             string   `json:"id"`
	Kind           Kind     `json:"kind"`
	Amount         int      `json:"amount,omitempty"`
	AchievementRef string   `json:"achievement_ref,omitempty"`
	Reason         string   `json:"reason"`
	Priority       Priority `json:"priority"`
}

// #endregion event

// #region config

// Config holds the deterministic and stochastic tuning constants.
type Config struct {
	FocusThreshold         time.Duration // flow period length that earns a focus reward
	FocusCoins             int
	RecoveryCoins          int
	RecoveryMinDistraction time.Duration // distraction must last this long to count as a recovery
	RecoveryCooldown       time.Duration

	BonusBaseRate    float64       // probability ceiling before dampening
	BonusWindow      time.Duration // time to reach the full time term
	BonusCap         float64       // cap on the time term
	BonusStreakDecay float64       // per-consecutive-bonus dampening
	BonusFloor       float64       // minimum dampening factor
	BonusMinCoins    int
	BonusMaxCoins    int
	BonusIdleCutoff  time.Duration // idle time at which bonus time stops accruing (0 = never)
}

// DefaultConfig returns the shipped tuning.
func DefaultConfig() Config {
	return Config{
		FocusThreshold:         15 * time.Minute,
		FocusCoins:             10,
		RecoveryCoins:          5,
		RecoveryMinDistraction: 2 * time.Minute,
		RecoveryCooldown:       10 * time.Minute,

		BonusBaseRate:    0.15,
		BonusWindow:      10 * time.Minute,
		BonusCap:         1.0,
		BonusStreakDecay: 0.25,
		BonusFloor:       0.2,
		BonusMinCoins:    3,
		BonusMaxCoins:    12,
		BonusIdleCutoff:  2 * time.Minute,
	}
}

// #endregion config

// #region session

// Session is caller-supplied context that outlives this process.
type Session struct {
	StartedAt        time.Time
	DayStreak        int           // consecutive days with a completed focus block
	PersonalBestFlow time.Duration // longest flow period on record
}

// Progress is the scheduler's running tally for the current session.
type Progress struct {
	TotalFocus    time.Duration
	FlowRun       time.Duration // current contiguous flow period
	BestFlow      time.Duration
	FocusBlocks   int // flow periods that earned a focus reward
	Recoveries    int
	BonusesEarned int
}

// #endregion session

// #region achievement

// Achievement is a static, once-per-lifetime reward definition.
type Achievement struct {
	ID        string
	Name      string
	Coins     int
	Predicate func(Progress, Session) bool
}

// DefaultAchievements is the built-in achievement table.
var DefaultAchievements = []Achievement{
	{ID: "first_focus", Name: "First Focus", Coins: 15, Predicate: func(p Progress, _ Session) bool {
		return p.TotalFocus >= 15*time.Minute
	}},
	{ID: "focus_hour", Name: "Hour of Power", Coins: 30, Predicate: func(p Progress, _ Session) bool {
		return p.TotalFocus >= time.Hour
	}},
	{ID: "focus_marathon", Name: "Marathon", Coins: 100, Predicate: func(p Progress, _ Session) bool {
		return p.TotalFocus >= 4*time.Hour
	}},
	{ID: "comeback_kid", Name: "Comeback Kid", Coins: 20, Predicate: func(p Progress, _ Session) bool {
		return p.Recoveries >= 3
	}},
	{ID: "five_blocks", Name: "Five Blocks", Coins: 50, Predicate: func(p Progress, _ Session) bool {
		return p.FocusBlocks >= 5
	}},
	{ID: "streak_3", Name: "Three-Day Streak", Coins: 25, Predicate: func(_ Progress, s Session) bool {
		return s.DayStreak >= 3
	}},
	{ID: "streak_7", Name: "Week Streak", Coins: 70, Predicate: func(_ Progress, s Session) bool {
		return s.DayStreak >= 7
	}},
}

// #endregion achievement

// #region rand

// RandSource is the randomness the scheduler draws from. *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a seeded PCG source.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// #endregion rand
