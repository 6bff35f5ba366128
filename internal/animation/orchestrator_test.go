package animation

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/focus-companion/internal/decision"
	"github.com/danielpatrickdp/focus-companion/internal/history"
	"github.com/danielpatrickdp/focus-companion/internal/mood"
	"github.com/danielpatrickdp/focus-companion/internal/reward"
)

const frame = time.Second / 60

type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(int) int     { return r.n }

func cmd(name string, p Priority, interruptible bool) Command {
	return Command{Name: name, Priority: p, Interruptible: interruptible}
}

// #region queue

func TestQueueOrdersByPriorityThenArrival(t *testing.T) {
	q := NewQueue(10)
	q.Push(Command{ID: "a", Priority: PriorityLow})
	q.Push(Command{ID: "b", Priority: PriorityHigh})
	q.Push(Command{ID: "c", Priority: PriorityMedium})
	q.Push(Command{ID: "d", Priority: PriorityUrgent})
	q.Push(Command{ID: "e", Priority: PriorityHigh})

	want := []string{"d", "b", "e", "c", "a"}
	for i, id := range want {
		c, ok := q.Pop()
		if !ok || c.ID != id {
			t.Fatalf("pop %d: got %q (ok=%v), want %q", i, c.ID, ok, id)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("expected empty queue")
	}
}

func TestQueueEvictsLowestOldest(t *testing.T) {
	q := NewQueue(3)
	q.Push(Command{ID: "low1", Priority: PriorityLow})
	q.Push(Command{ID: "high", Priority: PriorityHigh})
	q.Push(Command{ID: "low2", Priority: PriorityLow})

	evicted, ok := q.Push(Command{ID: "med", Priority: PriorityMedium})
	if !ok || evicted.ID != "low1" {
		t.Fatalf("expected low1 evicted, got %q (ok=%v)", evicted.ID, ok)
	}
	if q.Len() != 3 {
		t.Fatalf("len = %d, want 3", q.Len())
	}
}

func TestQueueNeverExceedsCapacity(t *testing.T) {
	q := NewQueue(10)
	for i := 0; i < 500; i++ {
		q.Push(Command{Priority: Priority(i % 4)})
		if i%7 == 0 {
			q.Pop()
		}
		if q.Len() > 10 {
			t.Fatalf("step %d: len %d exceeds capacity", i, q.Len())
		}
	}
}

func TestQueueAgingCountsEachTickOnce(t *testing.T) {
	q := NewQueue(10)
	q.Push(Command{ID: "tap", Priority: PriorityLow})
	if dropped := q.age(10*time.Second, 15*time.Second); len(dropped) != 0 {
		t.Fatalf("nothing should expire yet, dropped %+v", dropped)
	}
	q.Push(Command{ID: "cheer", Priority: PriorityHigh})

	dropped := q.age(6*time.Second, 15*time.Second)
	if len(dropped) != 1 || dropped[0].ID != "tap" {
		t.Fatalf("expected tap to expire, dropped %+v", dropped)
	}
	if q.Len() != 1 || q.h[0].waited != 6*time.Second {
		t.Fatalf("cheer should have waited 6s, got len=%d waited=%s", q.Len(), q.h[0].waited)
	}
	if dropped := q.age(4*time.Second, 15*time.Second); len(dropped) != 0 {
		t.Fatalf("cheer dropped after 10s of a 15s limit")
	}
	if dropped := q.age(5*time.Second, 15*time.Second); len(dropped) != 0 || q.Len() != 1 {
		t.Fatalf("cheer at exactly 15s should survive, len=%d", q.Len())
	}
}

func TestQueueAgingKeepsOrder(t *testing.T) {
	q := NewQueue(10)
	q.Push(Command{ID: "old-low", Priority: PriorityLow})
	q.Push(Command{ID: "old-med", Priority: PriorityMedium})
	q.Push(Command{ID: "old-urgent", Priority: PriorityUrgent})
	q.age(10*time.Second, 15*time.Second)
	q.Push(Command{ID: "new-low", Priority: PriorityLow})
	q.Push(Command{ID: "new-high", Priority: PriorityHigh})
	q.age(6*time.Second, 15*time.Second)

	want := []string{"old-urgent", "new-high", "new-low"}
	for i, id := range want {
		c, ok := q.Pop()
		if !ok || c.ID != id {
			t.Fatalf("pop %d: got %q (ok=%v), want %q", i, c.ID, ok, id)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, len=%d", q.Len())
	}
}

// #endregion queue

// #region playback

func TestBaseFallbackWhenIdle(t *testing.T) {
	o := New(DefaultConfig(), nil)
	f := o.Tick(frame, frame)
	if f.Active.Name != SafeDefault || f.Active.Type != TypeBaseState {
		t.Fatalf("expected %s base, got %+v", SafeDefault, f.Active)
	}
	if len(f.Started) != 1 {
		t.Fatalf("expected base dispatched once, got %d", len(f.Started))
	}
	if f.Blend != nil {
		t.Fatal("first frame must not blend")
	}
	f = o.Tick(frame, frame)
	if len(f.Started) != 0 {
		t.Fatal("base should not restart every tick")
	}
}

func TestUnknownNameSubstituted(t *testing.T) {
	o := New(DefaultConfig(), nil)
	o.Tick(frame, frame)
	o.Enqueue(cmd("does_not_exist", PriorityHigh, true))
	f := o.Tick(frame, frame)
	if f.Active.Name != SafeDefault || f.Active.Type != TypeBaseState {
		t.Fatalf("expected safe default, got %+v", f.Active)
	}
}

func TestBaseYieldsToQueued(t *testing.T) {
	o := New(DefaultConfig(), nil)
	o.Tick(frame, frame)
	o.Enqueue(cmd("blink_twice", PriorityLow, true))
	f := o.Tick(frame, frame)
	if f.Active.Name != "blink_twice" {
		t.Fatalf("base should yield to any queued command, active=%s", f.Active.Name)
	}
	if f.Blend == nil || f.Blend.From != SafeDefault || f.Blend.To != "blink_twice" {
		t.Fatalf("expected crossfade from base, got %+v", f.Blend)
	}
}

func TestPreemptionCrossfades(t *testing.T) {
	o := New(DefaultConfig(), nil)
	o.Tick(frame, frame)
	o.Enqueue(cmd("worried_look", PriorityMedium, true))
	o.Tick(frame, frame)

	o.Enqueue(cmd("nudge_wave", PriorityHigh, true))
	f := o.Tick(frame, frame)
	if f.Active.Name != "nudge_wave" {
		t.Fatalf("expected preemption, active=%s", f.Active.Name)
	}
	if len(f.Retired) != 1 || f.Retired[0].Name != "worried_look" {
		t.Fatalf("expected worried_look retired, got %+v", f.Retired)
	}
	if f.Blend == nil || f.Blend.Progress != 0 {
		t.Fatalf("expected fresh blend, got %+v", f.Blend)
	}

	f = o.Tick(150*time.Millisecond, frame)
	if f.Blend == nil || f.Blend.Progress < 0.49 || f.Blend.Progress > 0.51 {
		t.Fatalf("expected half blend, got %+v", f.Blend)
	}
	if w := f.Blend.FromWeight() + f.Blend.ToWeight(); w != 1 {
		t.Fatalf("blend weights sum to %v", w)
	}
	f = o.Tick(150*time.Millisecond, frame)
	if f.Blend != nil {
		t.Fatalf("blend should be done after 300ms, got %+v", f.Blend)
	}
}

func TestSamePriorityDoesNotPreempt(t *testing.T) {
	o := New(DefaultConfig(), nil)
	o.Tick(frame, frame)
	o.Enqueue(cmd("gentle_tap", PriorityMedium, true))
	o.Tick(frame, frame)
	o.Enqueue(cmd("thumbs_up", PriorityMedium, true))
	f := o.Tick(frame, frame)
	if f.Active.Name != "gentle_tap" {
		t.Fatalf("equal priority must wait, active=%s", f.Active.Name)
	}
}

func TestNonInterruptibleRunsToCompletion(t *testing.T) {
	o := New(DefaultConfig(), nil)
	o.Tick(frame, frame)
	o.Enqueue(cmd("coin_shower", PriorityHigh, false))
	o.Tick(frame, frame)

	o.Enqueue(cmd("achievement_fanfare", PriorityUrgent, false))
	f := o.Tick(time.Second, frame)
	if f.Active.Name != "coin_shower" {
		t.Fatalf("non-interruptible command preempted by %s", f.Active.Name)
	}
	f = o.Tick(1600*time.Millisecond, frame)
	if f.Active.Name != "achievement_fanfare" {
		t.Fatalf("expected fanfare after coin_shower finished, got %s", f.Active.Name)
	}
	if len(f.Retired) != 1 || f.Retired[0].Type != TypeCelebration {
		t.Fatalf("expected celebration retired, got %+v", f.Retired)
	}
}

func TestHardTimeout(t *testing.T) {
	o := New(DefaultConfig(), nil)
	o.Tick(frame, frame)
	o.Enqueue(Command{Name: "milestone_fireworks", Priority: PriorityUrgent, Duration: time.Minute})
	o.Tick(frame, frame)

	f := o.Tick(7*time.Second, frame)
	if f.Active.Name != "milestone_fireworks" {
		t.Fatalf("retired too early: %s", f.Active.Name)
	}
	f = o.Tick(time.Second, frame)
	if f.Active.Name == "milestone_fireworks" {
		t.Fatal("non-interruptible command outlived the hard timeout")
	}
	if f.Active.Type != TypeBaseState {
		t.Fatalf("expected base after timeout, got %+v", f.Active)
	}
}

func TestStaleQueuedCommandsDropped(t *testing.T) {
	o := New(DefaultConfig(), nil)
	o.Tick(frame, frame)
	o.Enqueue(Command{Name: "milestone_fireworks", Priority: PriorityUrgent, Duration: time.Minute})
	o.Tick(frame, frame)
	o.Enqueue(cmd("gentle_tap", PriorityMedium, true))
	o.Enqueue(Command{Name: "cheer", Priority: PriorityUrgent, Interruptible: true, Duration: 30 * time.Second})

	var f Frame
	for i := 0; i < 4; i++ {
		f = o.Tick(4*time.Second, frame)
	}
	// fireworks timed out at 8s and cheer took over; gentle_tap waited
	// behind it past 15s and was dropped.
	if f.Active.Name != "cheer" {
		t.Fatalf("active = %s, want cheer", f.Active.Name)
	}
	if o.QueueLen() != 0 {
		t.Fatalf("queue len %d, want 0", o.QueueLen())
	}
}

func TestSetBaseSwitches(t *testing.T) {
	o := New(DefaultConfig(), nil)
	o.Tick(frame, frame)
	o.SetBase(BaseFor(history.StateFlow, mood.Initial()))
	f := o.Tick(frame, frame)
	if f.Active.Name != "focus_glow" {
		t.Fatalf("expected focus_glow base, got %s", f.Active.Name)
	}
	if f.Active.Glow == nil || f.Active.Glow.Color != "#4FC3F7" {
		t.Fatalf("expected flow glow, got %+v", f.Active.Glow)
	}
}

func TestFrameReportsEvictedCommands(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 1
	o := New(cfg, nil)
	o.Tick(frame, frame)
	o.Enqueue(cmd("wink", PriorityLow, true))
	o.Enqueue(Command{Name: "coin_shower", Priority: PriorityHigh})

	f := o.Tick(frame, frame)
	if len(f.Dropped) != 1 || f.Dropped[0].Name != "wink" {
		t.Fatalf("expected wink reported as dropped, got %+v", f.Dropped)
	}
	if f.Active.Name != "coin_shower" {
		t.Fatalf("active = %s, want coin_shower", f.Active.Name)
	}
	if f = o.Tick(frame, frame); len(f.Dropped) != 0 {
		t.Fatalf("dropped commands reported twice: %+v", f.Dropped)
	}
}

func TestFrameReportsStaleCommands(t *testing.T) {
	o := New(DefaultConfig(), nil)
	o.Tick(frame, frame)
	o.Enqueue(Command{Name: "achievement_fanfare", Priority: PriorityUrgent, Duration: time.Minute})
	o.Tick(frame, frame)
	o.Enqueue(Command{Name: "coin_shower", Priority: PriorityHigh})

	var dropped []Command
	for i := 0; i < 4; i++ {
		dropped = append(dropped, o.Tick(4*time.Second, frame).Dropped...)
	}
	// the fanfare held the stage for the 8s hard timeout, then coin_shower
	// started; nothing waited past 15s
	if len(dropped) != 0 {
		t.Fatalf("unexpected drops: %+v", dropped)
	}

	// two urgent fireworks each hold the stage for the full hard timeout
	o.Enqueue(
		Command{Name: "milestone_fireworks", Priority: PriorityUrgent, Duration: time.Minute},
		Command{Name: "milestone_fireworks", Priority: PriorityUrgent, Duration: time.Minute},
		Command{Name: "bonus_sparkle", Priority: PriorityHigh},
	)
	for i := 0; i < 6; i++ {
		dropped = append(dropped, o.Tick(4*time.Second, frame).Dropped...)
	}
	if len(dropped) != 1 || dropped[0].Name != "bonus_sparkle" {
		t.Fatalf("expected bonus_sparkle to expire behind the fireworks, got %+v", dropped)
	}
}

func TestBaseRedispatchedWhenRestyled(t *testing.T) {
	o := New(DefaultConfig(), nil)
	o.Tick(frame, frame)
	o.SetBase(BaseFor(history.StateFlow, mood.Initial()))
	o.Tick(frame, frame)

	o.SetBase(BaseFor(history.StateHyperfocus, mood.Initial()))
	f := o.Tick(frame, frame)
	if len(f.Started) != 1 || f.Started[0].Name != "focus_glow" {
		t.Fatalf("expected focus_glow redispatched, got %+v", f.Started)
	}
	if f.Active.Glow == nil || f.Active.Glow.Color != "#7E57C2" {
		t.Fatalf("expected hyperfocus glow, got %+v", f.Active.Glow)
	}
	if f.Blend != nil {
		t.Fatalf("same loop should not crossfade into itself: %+v", f.Blend)
	}

	m := mood.Initial()
	m.Visual.GlowIntensity += 0.01
	o.SetBase(BaseFor(history.StateHyperfocus, m))
	if f = o.Tick(frame, frame); len(f.Started) != 0 {
		t.Fatalf("tiny glow drift should not redispatch, started %+v", f.Started)
	}
}

// #endregion playback

// #region quality

func tickN(o *Orchestrator, n int, ft time.Duration) {
	for i := 0; i < n; i++ {
		o.Tick(ft, ft)
	}
}

func TestQualityStepsDownAndUp(t *testing.T) {
	o := New(DefaultConfig(), nil)
	tickN(o, 60, 40*time.Millisecond)
	if o.Quality() != QualityMedium {
		t.Fatalf("quality = %s, want medium", o.Quality())
	}
	tickN(o, 59, 40*time.Millisecond)
	if o.Quality() != QualityMedium {
		t.Fatal("window must refill before the next step")
	}
	tickN(o, 1, 40*time.Millisecond)
	if o.Quality() != QualityLow {
		t.Fatalf("quality = %s, want low", o.Quality())
	}
	tickN(o, 60, 5*time.Millisecond)
	if o.Quality() != QualityMedium {
		t.Fatalf("quality = %s, want medium after recovery", o.Quality())
	}
}

func TestQualityDeadBand(t *testing.T) {
	o := New(DefaultConfig(), nil)
	tickN(o, 300, 20*time.Millisecond) // 1.2x target
	if o.Quality() != QualityHigh {
		t.Fatalf("quality changed inside the dead band: %s", o.Quality())
	}
}

func TestLowQualityStripsEffects(t *testing.T) {
	o := New(DefaultConfig(), nil)
	tickN(o, 120, 40*time.Millisecond)
	o.Enqueue(ForReward(reward.Event{Kind: reward.KindAchievement}))
	f := o.Tick(frame, 0)
	if f.Active.Name != "achievement_fanfare" {
		t.Fatalf("active = %s", f.Active.Name)
	}
	if f.Active.Glow != nil || f.Active.Particles != nil {
		t.Fatalf("low quality must drop glow and particles: %+v", f.Active)
	}
}

func TestMediumQualityHalvesParticles(t *testing.T) {
	o := New(DefaultConfig(), nil)
	tickN(o, 60, 40*time.Millisecond)
	o.Enqueue(ForReward(reward.Event{Kind: reward.KindAchievement}))
	f := o.Tick(frame, 0)
	if f.Active.Particles == nil || f.Active.Particles.Count != 24 {
		t.Fatalf("expected 24 particles, got %+v", f.Active.Particles)
	}
}

// #endregion quality

// #region idle

func TestIdleVariationAfterThreshold(t *testing.T) {
	o := New(DefaultConfig(), fixedRand{f: 0.1, n: 2})
	o.Tick(frame, frame)
	tickN(o, 12, time.Second)
	f := o.Tick(time.Second, frame)
	if f.Active.Type != TypeIdleVariation || f.Active.Name != "blink_twice" {
		t.Fatalf("expected idle variation, got %+v", f.Active)
	}
}

func TestIdleVariationRollCanMiss(t *testing.T) {
	o := New(DefaultConfig(), fixedRand{f: 0.9})
	o.Tick(frame, frame)
	tickN(o, 30, time.Second)
	if f := o.Tick(time.Second, frame); f.Active.Type != TypeBaseState {
		t.Fatalf("expected base, got %+v", f.Active)
	}
}

func TestInteractionPostponesIdle(t *testing.T) {
	o := New(DefaultConfig(), fixedRand{f: 0.1})
	o.Tick(frame, frame)
	for i := 0; i < 30; i++ {
		o.Tick(time.Second, frame)
		if i%10 == 9 {
			o.Interaction()
		}
	}
	if f := o.Tick(frame, frame); f.Active.Type != TypeBaseState {
		t.Fatalf("interaction should reset idle timer, got %+v", f.Active)
	}
}

// #endregion idle

// #region builders

func TestBaseForMood(t *testing.T) {
	m := mood.Initial()
	m.Mood = mood.MoodMelting
	if c := BaseFor(history.StateDistracted, m); c.Name != "melt_drip" {
		t.Fatalf("melting base = %s", c.Name)
	}
	m.Mood = mood.MoodCalm
	if c := BaseFor(history.StateNeutral, m); c.Name != "calm_float" {
		t.Fatalf("calm base = %s", c.Name)
	}
	m.Mood = mood.MoodIdle
	if c := BaseFor(history.StateNeutral, m); c.Name != SafeDefault {
		t.Fatalf("idle base = %s", c.Name)
	}
}

func TestForIntervention(t *testing.T) {
	c := ForIntervention(decision.InterventionRequest{TypeID: "break_suggestion", Category: decision.CategorySuggestion, Urgency: decision.UrgencyHigh})
	if c.Name != "break_stretch" || c.Priority != PriorityHigh || !c.Interruptible {
		t.Fatalf("unexpected command %+v", c)
	}
	c = ForIntervention(decision.InterventionRequest{TypeID: "gentle_nudge", Category: decision.CategoryGentleNudge, Urgency: decision.UrgencyLow})
	if c.Name != "gentle_tap" || c.Priority != PriorityLow {
		t.Fatalf("unexpected command %+v", c)
	}
}

func TestForRewardUsesEventPriority(t *testing.T) {
	c := ForReward(reward.Event{Kind: reward.KindCoins, Amount: 5, Priority: reward.PriorityMedium})
	if c.Name != "coin_shower" || c.Priority != PriorityMedium || c.Interruptible {
		t.Fatalf("unexpected command %+v", c)
	}
	if c.Particles.Count != 10 {
		t.Fatalf("particles = %d, want 10", c.Particles.Count)
	}
}

func TestForStateChange(t *testing.T) {
	if _, ok := ForStateChange(history.StateFlow, history.StateFlow); ok {
		t.Fatal("no expression without a change")
	}
	c, ok := ForStateChange(history.StateDistracted, history.StateFlow)
	if !ok || c.Name != "smile" {
		t.Fatalf("got %+v ok=%v", c, ok)
	}
	if _, ok := ForStateChange(history.StateTransitioning, history.StateNeutral); ok {
		t.Fatal("neutral after unfocused state has no expression")
	}
}

// #endregion builders
