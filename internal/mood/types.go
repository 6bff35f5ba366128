package mood

// #region mood

// Mood is the companion's discrete emotional state.
type Mood string

const (
	MoodIdle        Mood = "idle"
	MoodSupportive  Mood = "supportive"
	MoodExcited     Mood = "excited"
	MoodCalm        Mood = "calm"
	MoodConcerned   Mood = "concerned"
	MoodCelebrating Mood = "celebrating"
	MoodTired       Mood = "tired"
	MoodMelting     Mood = "melting"
)

// #endregion mood

// #region event

// Event drives a mood transition.
type Event string

const (
	EventFlow            Event = "state_flow"
	EventHyperfocus      Event = "state_hyperfocus"
	EventDistracted      Event = "state_distracted"
	EventTransitioning   Event = "state_transitioning"
	EventNeutral         Event = "state_neutral"
	EventReward          Event = "reward"
	EventIntervention    Event = "intervention"
	EventCelebrationDone Event = "celebration_done"
	EventRest            Event = "rest"
)

// #endregion event

// #region activity

// Activity describes what the companion is visibly doing.
type Activity string

const (
	ActivityResting    Activity = "resting"
	ActivityWatching   Activity = "watching"
	ActivityCheering   Activity = "cheering"
	ActivityNudging    Activity = "nudging"
	ActivityMelting    Activity = "melting"
	ActivityRecovering Activity = "recovering"
)

// #endregion activity

// #region visual

// Visual is the glow/particle descriptor derived from mood.
type Visual struct {
	GlowIntensity float64 // [0, 1]
	ParticleCount int     // [0, MaxParticles]
}

// MaxParticles bounds Visual.ParticleCount.
const MaxParticles = 64

// #endregion visual

// #region state

// State is the companion's derived mood/energy state. All bounded fields are
// kept in [0, 100] by the reducers.
type State struct {
	Mood      Mood
	Energy    float64
	Happiness float64
	Focus     float64
	MeltLevel float64
	Activity  Activity
	Visual    Visual
}

// Thresholds for forced moods.
const (
	MeltThreshold   = 70.0
	TiredThreshold  = 20.0
	meltEnergyDrain = 10.0
)

// Initial returns the state a companion starts with.
func Initial() State {
	return normalize(State{
		Mood:      MoodIdle,
		Energy:    80,
		Happiness: 60,
		Focus:     50,
		MeltLevel: 0,
		Activity:  ActivityResting,
	}, State{})
}

// #endregion state
