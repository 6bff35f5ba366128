package replay

import (
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/focus-companion/internal/animation"
	"github.com/danielpatrickdp/focus-companion/internal/engine"
	"github.com/danielpatrickdp/focus-companion/internal/mood"
	"github.com/danielpatrickdp/focus-companion/internal/reward"
)

// #region types
// StepResult captures what the companion did on the tick a step was merged into.
type StepResult struct {
	StepID       string
	At           time.Time
	Intervene    bool
	Intervention string // type id, empty when none
	Reason       string // decision reason, empty when no decision ran
	Rewards      []reward.Event
	Commands     []string // animations started on this tick
	Mood         mood.State
	Quality      animation.Quality
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Steps         int
	Interventions int
	Rewards       int
	Coins         int
	FinalMood     mood.State
	Progress      reward.Progress
}

// Mismatch is one expectation the run did not meet.
type Mismatch struct {
	Step    string
	Message string
}

func (m Mismatch) String() string { return m.Step + ": " + m.Message }

// #endregion types

// #region replay
// Replay drives a fresh companion through the fixture on a synthetic clock.
// Idle ticks fill the gaps between steps so time-based behavior matches a
// live run. The run is deterministic for a given seed.
func Replay(f *Fixture) ([]StepResult, Summary, error) {
	cfg, err := f.ToEngineConfig()
	if err != nil {
		return nil, Summary{}, fmt.Errorf("fixture config: %w", err)
	}
	start := f.Start
	if start.IsZero() {
		start = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	}
	tick := f.Tick()
	// the synthetic clock renders every frame on budget
	frameTime := cfg.Animation.TargetFrameTime
	c := engine.New(cfg, start, reward.NewRand(f.Seed), engine.Sinks{})

	results := make([]StepResult, 0, len(f.Steps))
	now := start
	var last engine.Output
	for _, step := range f.Steps {
		ev, err := step.ToEvent()
		if err != nil {
			return nil, Summary{}, fmt.Errorf("step %s: %w", step.ID, err)
		}
		target := start.Add(time.Duration(step.AtSeconds) * time.Second)
		for now.Add(tick).Before(target) {
			now = now.Add(tick)
			c.Tick(now, tick, frameTime)
		}
		delta := target.Sub(now)
		now = target

		c.Post(ev)
		out := c.Tick(now, delta, frameTime)
		last = out
		results = append(results, toResult(step.ID, now, out))
	}

	sum := Summarize(results)
	sum.FinalMood = last.Mood
	sum.Progress = c.Progress()
	return results, sum, nil
}

func toResult(id string, at time.Time, out engine.Output) StepResult {
	r := StepResult{StepID: id, At: at, Rewards: out.Rewards, Mood: out.Mood, Quality: out.Quality}
	if len(out.Decisions) > 0 {
		d := out.Decisions[len(out.Decisions)-1]
		r.Intervene = d.Intervene
		r.Reason = d.Reason
		if d.Type != nil {
			r.Intervention = d.Type.ID
		}
	}
	for _, cmd := range out.Commands {
		r.Commands = append(r.Commands, cmd.Name)
	}
	return r
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []StepResult) Summary {
	s := Summary{Steps: len(results)}
	for _, r := range results {
		if r.Intervene {
			s.Interventions++
		}
		s.Rewards += len(r.Rewards)
		for _, ev := range r.Rewards {
			if ev.Kind == reward.KindCoins || ev.Kind == reward.KindBonus {
				s.Coins += ev.Amount
			}
		}
	}
	return s
}
// #endregion replay

// #region check
// Check compares results against the fixture's expectations.
func Check(results []StepResult, expected []FixtureExpected) []Mismatch {
	byID := make(map[string]StepResult, len(results))
	for _, r := range results {
		byID[r.StepID] = r
	}

	var out []Mismatch
	for _, exp := range expected {
		r, ok := byID[exp.Step]
		if !ok {
			out = append(out, Mismatch{exp.Step, "no such step"})
			continue
		}
		if exp.Intervene != nil && r.Intervene != *exp.Intervene {
			out = append(out, Mismatch{exp.Step, fmt.Sprintf("intervene=%v, want %v (%s)", r.Intervene, *exp.Intervene, r.Reason)})
		}
		if exp.Intervention != "" && r.Intervention != exp.Intervention {
			out = append(out, Mismatch{exp.Step, fmt.Sprintf("intervention=%q, want %q", r.Intervention, exp.Intervention)})
		}
		if exp.ReasonPrefix != "" && !strings.HasPrefix(r.Reason, exp.ReasonPrefix) {
			out = append(out, Mismatch{exp.Step, fmt.Sprintf("reason=%q, want prefix %q", r.Reason, exp.ReasonPrefix)})
		}
		for _, want := range exp.RewardsInclude {
			if !hasReward(r.Rewards, want) {
				out = append(out, Mismatch{exp.Step, fmt.Sprintf("missing reward %q", want)})
			}
		}
		for _, unwanted := range exp.RewardsExclude {
			if hasReward(r.Rewards, unwanted) {
				out = append(out, Mismatch{exp.Step, fmt.Sprintf("unexpected reward %q", unwanted)})
			}
		}
		if exp.Mood != "" && string(r.Mood.Mood) != exp.Mood {
			out = append(out, Mismatch{exp.Step, fmt.Sprintf("mood=%s, want %s", r.Mood.Mood, exp.Mood)})
		}
	}
	return out
}

// hasReward matches on reason or achievement id.
func hasReward(events []reward.Event, key string) bool {
	for _, ev := range events {
		if ev.Reason == key || ev.AchievementRef == key {
			return true
		}
	}
	return false
}
// #endregion check
