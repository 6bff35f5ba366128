package decision

// #region imports
import (
	"time"

	"github.com/danielpatrickdp/focus-companion/internal/history"
)

// #endregion

// #region category

// Category groups intervention types by intent.
type Category string

const (
	CategoryEncouragement Category = "encouragement"
	CategorySuggestion    Category = "suggestion"
	CategoryCelebration   Category = "celebration"
	CategoryGentleNudge   Category = "gentle_nudge"
)

// #endregion

// #region intervention-type

// InterventionType is a static catalog entry.
type InterventionType struct {
	ID            string
	Category      Category
	MinCooldown   time.Duration
	Adaptive      bool // multiplier adapts to user responses
	AllowedStates []history.StateType
}

// Allows reports whether the type may fire in state st.
func (t InterventionType) Allows(st history.StateType) bool {
	for _, s := range t.AllowedStates {
		if s == st {
			return true
		}
	}
	return false
}

// #endregion

// #region catalog

// DefaultCatalog is the built-in intervention set, in evaluation order.
var DefaultCatalog = []InterventionType{
	{
		ID:            "focus_encouragement",
		Category:      CategoryEncouragement,
		MinCooldown:   20 * time.Minute,
		Adaptive:      true,
		AllowedStates: []history.StateType{history.StateTransitioning, history.StateNeutral},
	},
	{
		ID:            "refocus_suggestion",
		Category:      CategorySuggestion,
		MinCooldown:   15 * time.Minute,
		Adaptive:      true,
		AllowedStates: []history.StateType{history.StateDistracted},
	},
	{
		ID:            "break_suggestion",
		Category:      CategorySuggestion,
		MinCooldown:   45 * time.Minute,
		Adaptive:      true,
		AllowedStates: []history.StateType{history.StateHyperfocus},
	},
	{
		ID:            "session_celebration",
		Category:      CategoryCelebration,
		MinCooldown:   30 * time.Minute,
		Adaptive:      false,
		AllowedStates: []history.StateType{history.StateNeutral, history.StateTransitioning},
	},
	{
		ID:            "gentle_nudge",
		Category:      CategoryGentleNudge,
		MinCooldown:   10 * time.Minute,
		Adaptive:      true,
		AllowedStates: []history.StateType{history.StateDistracted, history.StateTransitioning},
	},
}

// #endregion

// #region preferences

// Personality traits shape message tone. Each trait is in [0, 1].
type Personality struct {
	Warmth      float64 `json:"warmth"`
	Playfulness float64 `json:"playfulness"`
	Directness  float64 `json:"directness"`
}

// Preferences is the user-tunable decision configuration.
type Preferences struct {
	MinCooldown             time.Duration
	AdaptiveCooldown        bool
	MaxInterventionsPerHour int // 0 = unlimited
	RespectFlowStates       bool
	FlowStateThreshold      float64
	InterventionThreshold   float64 // minimum score to interrupt
	EmergencyOverride       bool    // bypasses flow protection
	Personality             Personality
}

// DefaultPreferences returns the shipped defaults.
func DefaultPreferences() Preferences {
	return Preferences{
		MinCooldown:             10 * time.Minute,
		AdaptiveCooldown:        true,
		MaxInterventionsPerHour: 4,
		RespectFlowStates:       true,
		FlowStateThreshold:      0.8,
		InterventionThreshold:   0.5,
		Personality:             Personality{Warmth: 0.7, Playfulness: 0.5, Directness: 0.4},
	}
}

// #endregion

// #region context

// Context carries situational inputs that are not part of the snapshot.
type Context struct {
	Now                time.Time
	ContinuousDuration time.Duration // time spent in the current state
	ExpectedWorkType   string        // what the user said they are working on
	RecentFocus        time.Duration // focus time in the last hour
}

// Session carries per-session counters.
type Session struct {
	StartedAt             time.Time
	InterventionsLastHour int
}

// #endregion

// #region decision

// Decision is the output of Decide.
type Decision struct {
	Intervene  bool
	Type       *InterventionType // nil unless Intervene
	State      history.StateType
	Confidence float64
	Reason     string
}

// #endregion

// #region request

// Urgency is how insistently the message collaborator should present a request.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Tone selects the register of the composed message.
type Tone string

const (
	ToneWarm    Tone = "warm"
	TonePlayful Tone = "playful"
	ToneDirect  Tone = "direct"
	ToneGentle  Tone = "gentle"
	ToneNeutral Tone = "neutral"
)

// InterventionRequest is handed to the message-composition collaborator.
type InterventionRequest struct {
	TypeID      string   `json:"type_id"`
	Category    Category `json:"category"`
	Urgency     Urgency  `json:"urgency"`
	MessageSlot string   `json:"message_slot"`
	Tone        Tone     `json:"tone"`
}

// #endregion
