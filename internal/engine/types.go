package engine

import (
	"time"

	"github.com/danielpatrickdp/focus-companion/internal/animation"
	"github.com/danielpatrickdp/focus-companion/internal/decision"
	"github.com/danielpatrickdp/focus-companion/internal/history"
	"github.com/danielpatrickdp/focus-companion/internal/ledger"
	"github.com/danielpatrickdp/focus-companion/internal/mood"
	"github.com/danielpatrickdp/focus-companion/internal/reward"
)

// #region events

// EventKind names an asynchronous input merged into the next tick.
type EventKind string

const (
	EventClassification EventKind = "classification"
	EventResponse       EventKind = "response"
	EventInteraction    EventKind = "interaction"
	EventRest           EventKind = "rest"
)

// Event is posted from any goroutine and consumed by Tick.
type Event struct {
	Kind     EventKind
	Snapshot history.Snapshot    // EventClassification
	TypeID   string              // EventResponse
	Response ledger.UserResponse // EventResponse
}

// #endregion events

// #region output

// Output is everything one tick produced. Slices are owned by the caller.
type Output struct {
	Commands      []animation.Command // commands started this tick
	Frame         animation.Frame
	Rewards       []reward.Event
	Interventions []decision.InterventionRequest
	Decisions     []decision.Decision
	Mood          mood.State
	Quality       animation.Quality
}

// #endregion output

// #region sinks

// Renderer receives animation commands. Implementations must not block.
type Renderer interface {
	Play(cmds []animation.Command)
}

// RewardSink receives granted rewards.
type RewardSink interface {
	Reward(ev reward.Event)
}

// InterventionSink receives requests for the message-composition collaborator.
type InterventionSink interface {
	Intervene(req decision.InterventionRequest)
}

// Journal persists what the companion did. Never read back by the engine.
type Journal interface {
	RecordDecision(at time.Time, d decision.Decision)
	RecordReward(at time.Time, ev reward.Event)
	RecordIntervention(at time.Time, req decision.InterventionRequest)
	RecordResponse(at time.Time, typeID string, resp ledger.UserResponse, multiplier float64)
}

// Sinks bundles the optional collaborators. Nil fields are skipped.
type Sinks struct {
	Renderer      Renderer
	Rewards       RewardSink
	Interventions InterventionSink
	Journal       Journal
}

// #endregion sinks

// #region config

// Config assembles the per-component tuning.
type Config struct {
	HistoryCapacity  int
	Preferences      decision.Preferences
	Reward           reward.Config
	Animation        animation.Config
	Session          reward.Session
	ExpectedWorkType string
	Enabled          bool // kill switch: false suppresses decisions and rewards
}

// DefaultConfig returns the shipped configuration with the companion enabled.
func DefaultConfig() Config {
	return Config{
		HistoryCapacity: history.DefaultCapacity,
		Preferences:     decision.DefaultPreferences(),
		Reward:          reward.DefaultConfig(),
		Animation:       animation.DefaultConfig(),
		Enabled:         true,
	}
}

// #endregion config
