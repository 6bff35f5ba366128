package mood

import (
	"math"
	"time"

	"github.com/danielpatrickdp/focus-companion/internal/history"
)

// #region transition-table

// transitions is the explicit mood state machine. Missing entries leave the mood unchanged.
var transitions = map[Mood]map[Event]Mood{
	MoodIdle: {
		EventFlow:          MoodCalm,
		EventHyperfocus:    MoodCalm,
		EventDistracted:    MoodConcerned,
		EventTransitioning: MoodSupportive,
		EventReward:        MoodExcited,
		EventIntervention:  MoodSupportive,
	},
	MoodSupportive: {
		EventFlow:       MoodCalm,
		EventHyperfocus: MoodCalm,
		EventDistracted: MoodConcerned,
		EventNeutral:    MoodIdle,
		EventReward:     MoodCelebrating,
		EventRest:       MoodCalm,
	},
	MoodExcited: {
		EventDistracted:    MoodConcerned,
		EventTransitioning: MoodSupportive,
		EventNeutral:       MoodIdle,
		EventReward:        MoodCelebrating,
		EventIntervention:  MoodSupportive,
		EventRest:          MoodCalm,
	},
	MoodCalm: {
		EventDistracted:    MoodConcerned,
		EventTransitioning: MoodSupportive,
		EventNeutral:       MoodIdle,
		EventReward:        MoodCelebrating,
		EventIntervention:  MoodSupportive,
	},
	MoodConcerned: {
		EventFlow:          MoodCalm,
		EventHyperfocus:    MoodCalm,
		EventTransitioning: MoodSupportive,
		EventNeutral:       MoodIdle,
		EventReward:        MoodCelebrating,
		EventIntervention:  MoodSupportive,
		EventRest:          MoodCalm,
	},
	MoodCelebrating: {
		EventCelebrationDone: MoodIdle,
		EventRest:            MoodIdle,
	},
	MoodTired: {
		EventReward: MoodSupportive,
		EventRest:   MoodCalm,
	},
	MoodMelting: {
		EventRest: MoodCalm,
	},
}

// Transition returns the mood reached from m on ev. Unknown moods or events
// return m unchanged.
func Transition(m Mood, ev Event) Mood {
	if next, ok := transitions[m][ev]; ok {
		return next
	}
	return m
}

// EventForState maps a classifier state onto its mood event.
func EventForState(st history.StateType) (Event, bool) {
	switch st {
	case history.StateFlow:
		return EventFlow, true
	case history.StateHyperfocus:
		return EventHyperfocus, true
	case history.StateDistracted:
		return EventDistracted, true
	case history.StateTransitioning:
		return EventTransitioning, true
	case history.StateNeutral:
		return EventNeutral, true
	}
	return "", false
}

// #endregion transition-table

// #region reducers

// UpdateMood sets the mood to target. Unknown moods are ignored.
func UpdateMood(s State, target Mood) State {
	if _, ok := visuals[target]; !ok {
		return s
	}
	next := s
	next.Mood = target
	return normalize(next, s)
}

// UpdateEnergy adds delta to energy.
func UpdateEnergy(s State, delta float64) State {
	next := s
	next.Energy += delta
	return normalize(next, s)
}

// UpdateHappiness adds delta to happiness.
func UpdateHappiness(s State, delta float64) State {
	next := s
	next.Happiness += delta
	return normalize(next, s)
}

// UpdateFocus adds delta to focus.
func UpdateFocus(s State, delta float64) State {
	next := s
	next.Focus += delta
	return normalize(next, s)
}

// UpdateMeltLevel adds delta to the melt level. Crossing MeltThreshold forces
// MoodMelting and drains energy once.
func UpdateMeltLevel(s State, delta float64) State {
	next := s
	next.MeltLevel += delta
	return normalize(next, s)
}

// SetActivity replaces the visible activity.
func SetActivity(s State, a Activity) State {
	next := s
	next.Activity = a
	return normalize(next, s)
}

// Apply runs ev through the transition table and applies its side effects.
func Apply(s State, ev Event) State {
	next := UpdateMood(s, Transition(s.Mood, ev))
	switch ev {
	case EventReward:
		next = UpdateHappiness(next, 8)
		next = UpdateEnergy(next, 3)
		next = SetActivity(next, ActivityCheering)
	case EventIntervention:
		next = SetActivity(next, ActivityNudging)
	case EventRest:
		next = UpdateEnergy(next, 15)
		next = UpdateMeltLevel(next, -20)
		next = SetActivity(next, ActivityRecovering)
	case EventCelebrationDone:
		next = SetActivity(next, ActivityWatching)
	case EventFlow, EventHyperfocus, EventDistracted, EventTransitioning, EventNeutral:
		if next.Activity != ActivityMelting {
			next = SetActivity(next, ActivityWatching)
		}
	}
	return next
}

// #endregion reducers

// #region drift

// driftRates are per-minute deltas applied while the user is in a state.
var driftRates = map[history.StateType]struct {
	energy, happiness, focus, melt float64
}{
	history.StateFlow:          {energy: -0.5, happiness: 0.5, focus: 2, melt: -0.5},
	history.StateHyperfocus:    {energy: -1.5, happiness: 0, focus: 1, melt: 2},
	history.StateDistracted:    {energy: -0.5, happiness: -1, focus: -3, melt: -1},
	history.StateTransitioning: {energy: 1, happiness: 0, focus: -0.5, melt: -2},
	history.StateNeutral:       {energy: 1, happiness: 0, focus: -0.5, melt: -2},
}

// Drift applies time-based energy/focus/melt dynamics for elapsed time spent in st.
func Drift(s State, st history.StateType, elapsed time.Duration) State {
	r, ok := driftRates[st]
	if !ok || elapsed <= 0 {
		return s
	}
	m := elapsed.Minutes()
	next := s
	next.Energy += r.energy * m
	next.Happiness += r.happiness * m
	next.Focus += r.focus * m
	next.MeltLevel += r.melt * m
	return normalize(next, s)
}

// #endregion drift

// #region normalize

// visuals holds the glow/particle baseline per mood.
var visuals = map[Mood]Visual{
	MoodIdle:        {GlowIntensity: 0.3, ParticleCount: 0},
	MoodSupportive:  {GlowIntensity: 0.6, ParticleCount: 10},
	MoodExcited:     {GlowIntensity: 0.9, ParticleCount: 40},
	MoodCalm:        {GlowIntensity: 0.4, ParticleCount: 4},
	MoodConcerned:   {GlowIntensity: 0.35, ParticleCount: 0},
	MoodCelebrating: {GlowIntensity: 1.0, ParticleCount: MaxParticles},
	MoodTired:       {GlowIntensity: 0.15, ParticleCount: 0},
	MoodMelting:     {GlowIntensity: 0.2, ParticleCount: 6},
}

// normalize clamps every bounded field and applies cross-field rules.
// prev is the state before the change and is used to detect threshold crossings.
func normalize(next, prev State) State {
	next.Energy = clamp100(next.Energy)
	next.Happiness = clamp100(next.Happiness)
	next.Focus = clamp100(next.Focus)
	next.MeltLevel = clamp100(next.MeltLevel)

	if next.MeltLevel > MeltThreshold && prev.MeltLevel <= MeltThreshold {
		next.Energy = clamp100(next.Energy - meltEnergyDrain)
	}

	switch {
	case next.MeltLevel > MeltThreshold:
		next.Mood = MoodMelting
		next.Activity = ActivityMelting
	case next.Energy < TiredThreshold:
		next.Mood = MoodTired
	case next.Mood == MoodMelting:
		next.Mood = MoodCalm
		next.Activity = ActivityRecovering
	case next.Mood == MoodTired:
		next.Mood = MoodCalm
	}
	if _, ok := visuals[next.Mood]; !ok {
		next.Mood = MoodIdle
	}
	if next.Activity == "" {
		next.Activity = ActivityResting
	}

	base := visuals[next.Mood]
	scale := 0.5 + 0.5*next.Energy/100
	next.Visual = Visual{
		GlowIntensity: math.Min(1, base.GlowIntensity*scale),
		ParticleCount: int(math.Round(float64(base.ParticleCount) * scale)),
	}
	return next
}

func clamp100(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// #endregion normalize
