package reward

import (
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/focus-companion/internal/history"
	"github.com/danielpatrickdp/focus-companion/internal/ledger"
)

// #region scheduler

// Scheduler emits deterministic and variable-ratio rewards from state changes.
// Not goroutine-safe.
type Scheduler struct {
	cfg          Config
	achievements []Achievement
	granted      map[string]bool
	ledger       *ledger.Ledger
	rng          RandSource

	progress      Progress
	distractedRun time.Duration
	runBaseline   time.Duration // personal best at the start of the current flow run
	flowRewarded  bool
	recordInRun   bool

	sinceBonus  time.Duration
	bonusStreak int
}

// NewScheduler creates a scheduler over DefaultAchievements.
// rng may be nil, in which case the stochastic bonus never fires.
func NewScheduler(cfg Config, l *ledger.Ledger, rng RandSource) *Scheduler {
	return NewSchedulerWithAchievements(cfg, l, rng, DefaultAchievements)
}

// NewSchedulerWithAchievements creates a scheduler over a custom achievement table.
func NewSchedulerWithAchievements(cfg Config, l *ledger.Ledger, rng RandSource, table []Achievement) *Scheduler {
	t := make([]Achievement, len(table))
	copy(t, table)
	return &Scheduler{
		cfg:          cfg,
		achievements: t,
		granted:      make(map[string]bool),
		ledger:       l,
		rng:          rng,
	}
}

// Progress returns the running tally.
func (s *Scheduler) Progress() Progress { return s.progress }

// Granted reports whether achievement id has already been awarded.
func (s *Scheduler) Granted(id string) bool { return s.granted[id] }

// BonusStreak returns the number of consecutive bonuses since the last distraction.
func (s *Scheduler) BonusStreak() int { return s.bonusStreak }

// #endregion scheduler

// #region on-state-change

// OnStateChange is called once per classification. previous is the prior
// classification's type, current the new one, and duration how long the user
// spent in current since the last call.
func (s *Scheduler) OnStateChange(
	previous, current history.StateType,
	duration time.Duration,
	metrics history.Metrics,
	session Session,
) []Event {
	if !current.Valid() {
		log.Printf("[REWARD] unknown state %q, no rewards", current)
		return nil
	}
	if duration < 0 {
		duration = 0
	}

	s.track(previous, current, duration, session)

	var events []Event

	// Recovery: distracted → flow after a real distraction
	if previous == history.StateDistracted && current == history.StateFlow {
		if ev, ok := s.recovery(); ok {
			events = append(events, ev)
		}
	}

	if current == history.StateFlow {
		// Focus reward: once per flow period
		if !s.flowRewarded && s.progress.FlowRun >= s.cfg.FocusThreshold {
			s.flowRewarded = true
			s.progress.FocusBlocks++
			events = append(events, s.emit(Event{
				Kind: KindCoins, Amount: s.cfg.FocusCoins, Reason: "focus", Priority: PriorityHigh,
			}))
		}
		// Personal record: once per flow period, only against an existing record
		if !s.recordInRun && s.runBaseline > 0 &&
			s.progress.FlowRun >= s.cfg.FocusThreshold && s.progress.FlowRun > s.runBaseline {
			s.recordInRun = true
			events = append(events, s.emit(Event{
				Kind: KindMilestone, Reason: "personal_record", Priority: PriorityUrgent,
			}))
		}
	}

	events = append(events, s.checkAchievements(session)...)

	if ev, ok := s.rollBonus(current, duration, metrics); ok {
		events = append(events, ev)
	}

	for _, ev := range events {
		log.Printf("[REWARD] grant kind=%s reason=%s amount=%d", ev.Kind, ev.Reason, ev.Amount)
	}
	return events
}

// track updates the running tallies before any rule is evaluated.
func (s *Scheduler) track(previous, current history.StateType, d time.Duration, session Session) {
	if current.Focused() {
		s.progress.TotalFocus += d
	}

	if current == history.StateFlow {
		if previous == history.StateFlow {
			s.progress.FlowRun += d
		} else {
			s.progress.FlowRun = d
			s.flowRewarded = false
			s.recordInRun = false
			s.runBaseline = maxDuration(s.progress.BestFlow, session.PersonalBestFlow)
		}
		s.progress.BestFlow = maxDuration(s.progress.BestFlow, s.progress.FlowRun)
	} else {
		s.progress.FlowRun = 0
	}

	if current == history.StateDistracted {
		if previous == history.StateDistracted {
			s.distractedRun += d
		} else {
			s.distractedRun = d
		}
		s.bonusStreak = 0
	}
}

func (s *Scheduler) recovery() (Event, bool) {
	if s.distractedRun < s.cfg.RecoveryMinDistraction {
		return Event{}, false
	}
	if s.ledger != nil && s.cfg.RecoveryCooldown > 0 {
		if last, ok := s.ledger.LastRewarded("recovery"); ok && s.ledger.Now().Sub(last) < s.cfg.RecoveryCooldown {
			return Event{}, false
		}
	}
	s.distractedRun = 0
	s.progress.Recoveries++
	return s.emit(Event{
		Kind: KindCoins, Amount: s.cfg.RecoveryCoins, Reason: "recovery", Priority: PriorityMedium,
	}), true
}

// #endregion on-state-change

// #region achievements

func (s *Scheduler) checkAchievements(session Session) []Event {
	var events []Event
	for _, a := range s.achievements {
		if s.granted[a.ID] {
			continue
		}
		if a.ID == "" || a.Predicate == nil {
			log.Printf("[REWARD] achievement %q has no predicate, skipping", a.ID)
			continue
		}
		if !a.Predicate(s.progress, session) {
			continue
		}
		s.granted[a.ID] = true
		events = append(events, s.emit(Event{
			Kind:           KindAchievement,
			Amount:         a.Coins,
			AchievementRef: a.ID,
			Reason:         a.Name,
			Priority:       PriorityHigh,
		}))
	}
	return events
}

// #endregion achievements

// #region bonus

// rollBonus applies the variable-ratio rule while the user is focused.
// A hit resets the elapsed accumulator and extends the streak; a miss only
// accumulates time. Idle stretches neither roll nor accumulate. Bonus rewards
// keep their own bookkeeping and never touch focus, recovery, or achievement state.
func (s *Scheduler) rollBonus(current history.StateType, d time.Duration, m history.Metrics) (Event, bool) {
	if !current.Focused() || s.rng == nil {
		return Event{}, false
	}
	if s.cfg.BonusIdleCutoff > 0 && time.Duration(m.IdleSeconds*float64(time.Second)) >= s.cfg.BonusIdleCutoff {
		return Event{}, false
	}
	chance := BonusChance(s.cfg, s.sinceBonus, s.bonusStreak)
	if s.rng.Float64() >= chance {
		s.sinceBonus += d
		return Event{}, false
	}
	s.sinceBonus = 0
	s.bonusStreak++
	s.progress.BonusesEarned++

	amount := s.cfg.BonusMinCoins
	if span := s.cfg.BonusMaxCoins - s.cfg.BonusMinCoins; span > 0 {
		amount += s.rng.IntN(span + 1)
	}
	return s.emit(Event{
		Kind: KindBonus, Amount: amount, Reason: "bonus", Priority: PriorityMedium,
	}), true
}

// BonusChance computes
//
//	base_rate * min(since/window, cap) * max(1 - streak*decay, floor)
//
// Zero or invalid tuning values fall back to DefaultConfig and the result is
// always within [0, 1].
func BonusChance(cfg Config, since time.Duration, streak int) float64 {
	def := DefaultConfig()
	window := cfg.BonusWindow
	if window <= 0 {
		window = def.BonusWindow
	}
	capTerm := cfg.BonusCap
	if !(capTerm > 0) || math.IsInf(capTerm, 0) {
		capTerm = def.BonusCap
	}
	base := sanitize(cfg.BonusBaseRate)
	decay := sanitize(cfg.BonusStreakDecay)
	floor := sanitize(cfg.BonusFloor)
	if streak < 0 {
		streak = 0
	}
	if since < 0 {
		since = 0
	}

	timeTerm := math.Min(float64(since)/float64(window), capTerm)
	damp := math.Max(1-float64(streak)*decay, floor)
	return clamp01(base * timeTerm * damp)
}

// #endregion bonus

// #region helpers

func (s *Scheduler) emit(ev Event) Event {
	ev.ID = uuid.New().String()
	if s.ledger != nil {
		key := ev.Reason
		if ev.AchievementRef != "" {
			key = ev.AchievementRef
		}
		s.ledger.MarkRewarded(key)
	}
	return ev
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// #endregion helpers
