package engine

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielpatrickdp/focus-companion/internal/animation"
	"github.com/danielpatrickdp/focus-companion/internal/decision"
	"github.com/danielpatrickdp/focus-companion/internal/history"
	"github.com/danielpatrickdp/focus-companion/internal/ledger"
	"github.com/danielpatrickdp/focus-companion/internal/mood"
	"github.com/danielpatrickdp/focus-companion/internal/reward"
)

// Companion owns every piece of mutable state. Post may be called from any
// goroutine; Tick and the accessors belong to the tick goroutine.
type Companion struct {
	cfg     Config
	sinks   Sinks
	enabled atomic.Bool

	mu    sync.Mutex
	inbox []Event

	started time.Time
	tracker *history.Tracker
	ledger  *ledger.Ledger
	decider *decision.Engine
	rewards *reward.Scheduler
	mood    *mood.Store
	anim    *animation.Orchestrator
}

// New wires a companion starting at start. rng drives bonus rolls and idle
// variations; nil disables both.
func New(cfg Config, start time.Time, rng reward.RandSource, sinks Sinks) *Companion {
	l := ledger.New(start)
	c := &Companion{
		cfg:     cfg,
		sinks:   sinks,
		started: l.Now(),
		tracker: history.NewTracker(cfg.HistoryCapacity),
		ledger:  l,
		decider: decision.NewEngine(l),
		rewards: reward.NewScheduler(cfg.Reward, l, rng),
		mood:    mood.NewStore(),
	}
	var animRng animation.RandSource
	if rng != nil {
		animRng = rng
	}
	c.anim = animation.New(cfg.Animation, animRng)
	if c.cfg.Session.StartedAt.IsZero() {
		c.cfg.Session.StartedAt = c.started
	}
	c.enabled.Store(cfg.Enabled)
	return c
}

// #region inputs

// Post queues ev for the next tick.
func (c *Companion) Post(ev Event) {
	c.mu.Lock()
	c.inbox = append(c.inbox, ev)
	c.mu.Unlock()
}

// SetEnabled flips the kill switch. Safe from any goroutine.
func (c *Companion) SetEnabled(on bool) {
	if c.enabled.Swap(on) != on {
		log.Printf("[ENGINE] enabled=%v", on)
	}
}

// Enabled reports the kill switch.
func (c *Companion) Enabled() bool { return c.enabled.Load() }

func (c *Companion) drain() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	evs := c.inbox
	c.inbox = nil
	return evs
}

// #endregion inputs

// #region tick

// Tick merges posted events and advances every component by one frame.
// now drives the ledger clock, delta the animation and mood drift, and
// frameTime the renderer quality estimate.
func (c *Companion) Tick(now time.Time, delta, frameTime time.Duration) Output {
	var out Output
	c.ledger.Advance(now)

	for _, ev := range c.drain() {
		switch ev.Kind {
		case EventClassification:
			c.classify(ev.Snapshot, &out)
		case EventResponse:
			c.respond(ev.TypeID, ev.Response)
		case EventInteraction:
			c.anim.Interaction()
		case EventRest:
			c.mood.Update(func(s mood.State) mood.State { return mood.Apply(s, mood.EventRest) })
		default:
			log.Printf("[ENGINE] unknown event kind %q dropped", ev.Kind)
		}
	}

	current := history.StateNeutral
	if latest, ok := c.tracker.Latest(); ok && latest.Type.Valid() {
		current = latest.Type
	}
	if delta > 0 {
		c.mood.Update(func(s mood.State) mood.State { return mood.Drift(s, current, delta) })
	}
	c.anim.SetBase(animation.BaseFor(current, c.mood.Snapshot()))

	frame := c.anim.Tick(delta, frameTime)
	// a celebration that never gets to play still ends the celebrating mood
	for _, batch := range [][]animation.Command{frame.Retired, frame.Dropped} {
		for _, r := range batch {
			if r.Type == animation.TypeCelebration {
				c.mood.Update(func(s mood.State) mood.State { return mood.Apply(s, mood.EventCelebrationDone) })
			}
		}
	}
	if len(frame.Started) > 0 && c.sinks.Renderer != nil {
		c.sinks.Renderer.Play(frame.Started)
	}

	out.Commands = frame.Started
	out.Frame = frame
	out.Quality = frame.Quality
	out.Mood = c.mood.Snapshot()
	return out
}

func (c *Companion) classify(snap history.Snapshot, out *Output) {
	if snap.RecordedAt.IsZero() {
		snap.RecordedAt = c.ledger.Now()
	}
	previous := history.StateNeutral
	if prev, ok := c.tracker.Latest(); ok && prev.Type.Valid() {
		previous = prev.Type
	}
	c.tracker.Record(snap)
	recorded, _ := c.tracker.Latest()

	if ev, ok := mood.EventForState(recorded.Type); ok {
		c.mood.Update(func(s mood.State) mood.State { return mood.Apply(s, ev) })
	}
	if cmd, ok := animation.ForStateChange(previous, recorded.Type); ok {
		c.anim.Enqueue(cmd)
	}

	if !c.Enabled() {
		return
	}

	for _, ev := range c.rewards.OnStateChange(previous, recorded.Type, recorded.Duration, recorded.Metrics, c.cfg.Session) {
		c.grant(ev, out)
	}

	now := c.ledger.Now()
	ctx := decision.Context{
		Now:                now,
		ContinuousDuration: c.tracker.ContinuousDuration(),
		ExpectedWorkType:   c.cfg.ExpectedWorkType,
		RecentFocus: c.tracker.TimeIn(history.StateFlow, now.Add(-time.Hour)) +
			c.tracker.TimeIn(history.StateHyperfocus, now.Add(-time.Hour)),
	}
	session := decision.Session{
		StartedAt:             c.started,
		InterventionsLastHour: c.ledger.TriggeredWithin(time.Hour),
	}
	d := c.decider.Decide(recorded, recorded.Metrics, ctx, c.cfg.Preferences, session)
	out.Decisions = append(out.Decisions, d)
	if c.sinks.Journal != nil {
		c.sinks.Journal.RecordDecision(now, d)
	}
	if !d.Intervene {
		return
	}

	c.decider.Record(d)
	req, ok := decision.Request(d, c.cfg.Preferences)
	if !ok {
		return
	}
	out.Interventions = append(out.Interventions, req)
	if c.sinks.Interventions != nil {
		c.sinks.Interventions.Intervene(req)
	}
	if c.sinks.Journal != nil {
		c.sinks.Journal.RecordIntervention(now, req)
	}
	c.anim.Enqueue(animation.ForIntervention(req))
	c.mood.Update(func(s mood.State) mood.State { return mood.Apply(s, mood.EventIntervention) })
}

func (c *Companion) grant(ev reward.Event, out *Output) {
	out.Rewards = append(out.Rewards, ev)
	if c.sinks.Rewards != nil {
		c.sinks.Rewards.Reward(ev)
	}
	if c.sinks.Journal != nil {
		c.sinks.Journal.RecordReward(c.ledger.Now(), ev)
	}
	c.anim.Enqueue(animation.ForReward(ev))
	c.mood.Update(func(s mood.State) mood.State { return mood.Apply(s, mood.EventReward) })
}

func (c *Companion) respond(typeID string, resp ledger.UserResponse) {
	c.anim.Interaction()
	if !c.Enabled() {
		return
	}
	m := c.decider.RecordResponse(typeID, resp, c.cfg.Preferences)
	if c.sinks.Journal != nil {
		c.sinks.Journal.RecordResponse(c.ledger.Now(), typeID, resp, m)
	}
}

// #endregion tick

// #region accessors

// Mood returns a copy of the current mood state.
func (c *Companion) Mood() mood.State { return c.mood.Snapshot() }

// Summary aggregates the recorded attention history.
func (c *Companion) Summary() history.Summary { return c.tracker.Summary() }

// Progress returns the reward tally for this session.
func (c *Companion) Progress() reward.Progress { return c.rewards.Progress() }

// Multiplier exposes the adaptive cooldown multiplier for an intervention type.
func (c *Companion) Multiplier(typeID string) float64 { return c.ledger.Multiplier(typeID) }

// #endregion accessors
