package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/focus-companion/internal/config"
	"github.com/danielpatrickdp/focus-companion/internal/engine"
	"github.com/danielpatrickdp/focus-companion/internal/history"
	"github.com/danielpatrickdp/focus-companion/internal/ledger"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string            `json:"description"`
	Seed        uint64            `json:"seed"`
	Start       time.Time         `json:"start"`
	TickMillis  int               `json:"tick_ms"`
	Enabled     *bool             `json:"enabled,omitempty"`
	Prefs       config.Prefs      `json:"prefs"`
	Steps       []FixtureStep     `json:"steps"`
	Expected    []FixtureExpected `json:"expected"`
}

// FixtureStep is one timed input. AtSeconds is relative to Start.
type FixtureStep struct {
	ID         string          `json:"id"`
	AtSeconds  int             `json:"at_s"`
	Event      string          `json:"event"`
	State      string          `json:"state,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
	DurationS  float64         `json:"duration_s,omitempty"`
	Metrics    history.Metrics `json:"metrics,omitempty"`
	TypeID     string          `json:"type_id,omitempty"`
	Response   string          `json:"response,omitempty"`
}

// FixtureExpected lists the outcomes checked for one step. Absent fields are not checked.
type FixtureExpected struct {
	Step           string   `json:"step"`
	Intervene      *bool    `json:"intervene,omitempty"`
	Intervention   string   `json:"intervention,omitempty"`
	ReasonPrefix   string   `json:"reason_prefix,omitempty"`
	RewardsInclude []string `json:"rewards_include,omitempty"`
	RewardsExclude []string `json:"rewards_exclude,omitempty"`
	Mood           string   `json:"mood,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	last := -1
	for i, s := range f.Steps {
		if s.ID == "" {
			return fmt.Errorf("step %d: missing id", i)
		}
		if s.AtSeconds < last {
			return fmt.Errorf("step %s: at_s %d goes backwards", s.ID, s.AtSeconds)
		}
		last = s.AtSeconds
		if _, err := s.ToEvent(); err != nil {
			return fmt.Errorf("step %s: %w", s.ID, err)
		}
	}
	return nil
}

// ToEngineConfig builds the engine configuration the fixture runs under.
func (f *Fixture) ToEngineConfig() (engine.Config, error) {
	cfg := engine.DefaultConfig()
	if err := config.ApplyPrefs(&cfg, f.Prefs); err != nil {
		return engine.Config{}, err
	}
	if f.Enabled != nil {
		cfg.Enabled = *f.Enabled
	}
	return cfg, nil
}

// Tick returns the fixture's tick interval, defaulting to one second.
func (f *Fixture) Tick() time.Duration {
	if f.TickMillis <= 0 {
		return time.Second
	}
	return time.Duration(f.TickMillis) * time.Millisecond
}

// ToEvent converts a FixtureStep to an engine event. Unknown attention
// states pass through untouched so fixtures can exercise the engine's
// handling of bad classifier output.
func (s *FixtureStep) ToEvent() (engine.Event, error) {
	switch engine.EventKind(s.Event) {
	case engine.EventClassification:
		st, ok := history.ParseStateType(s.State)
		if !ok {
			st = history.StateType(s.State)
		}
		return engine.Event{
			Kind: engine.EventClassification,
			Snapshot: history.Snapshot{
				Type:       st,
				Confidence: s.Confidence,
				Duration:   time.Duration(s.DurationS * float64(time.Second)),
				Metrics:    s.Metrics,
			},
		}, nil
	case engine.EventResponse:
		resp, ok := ledger.ParseUserResponse(s.Response)
		if !ok {
			return engine.Event{}, fmt.Errorf("unknown response %q", s.Response)
		}
		return engine.Event{Kind: engine.EventResponse, TypeID: s.TypeID, Response: resp}, nil
	case engine.EventInteraction, engine.EventRest:
		return engine.Event{Kind: engine.EventKind(s.Event)}, nil
	}
	return engine.Event{}, fmt.Errorf("unknown event %q", s.Event)
}

// #endregion fixture-loader
