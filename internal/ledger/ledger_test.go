package ledger

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestCanTriggerCooldownExample(t *testing.T) {
	l := New(epoch)
	l.MarkTriggered("refocus")

	l.Advance(epoch.Add(10 * time.Minute))
	if l.CanTrigger("refocus", 15*time.Minute) {
		t.Fatal("10m after trigger with 15m cooldown should not trigger")
	}
	if rem := l.Remaining("refocus", 15*time.Minute); rem != 5*time.Minute {
		t.Fatalf("expected 5m remaining, got %v", rem)
	}

	l.Advance(epoch.Add(16 * time.Minute))
	if !l.CanTrigger("refocus", 15*time.Minute) {
		t.Fatal("16m after trigger with 15m cooldown should trigger")
	}
}

func TestCanTriggerNeedsCooldownExceeded(t *testing.T) {
	l := New(epoch)
	l.MarkTriggered("refocus")
	l.Advance(epoch.Add(15 * time.Minute))
	if l.CanTrigger("refocus", 15*time.Minute) {
		t.Fatal("exactly 15m after trigger should still be cooling down")
	}
	l.Advance(epoch.Add(15*time.Minute + time.Second))
	if !l.CanTrigger("refocus", 15*time.Minute) {
		t.Fatal("one second past the cooldown should trigger")
	}
}

func TestCanTriggerNeverFired(t *testing.T) {
	l := New(epoch)
	if !l.CanTrigger("anything", time.Hour) {
		t.Fatal("unfired type should be able to trigger")
	}
}

func TestCooldownMonotonicAcrossMultipliers(t *testing.T) {
	for _, resp := range []UserResponse{ResponseDismissed, ResponseEngaged, ResponseIgnored} {
		t.Run(string(resp), func(t *testing.T) {
			l := New(epoch)
			l.ApplyResponse("nudge", resp)
			l.MarkTriggered("nudge")
			required := time.Duration(float64(10*time.Minute) * l.Multiplier("nudge"))
			for s := time.Duration(0); s < required; s += 30 * time.Second {
				l.Advance(epoch.Add(s))
				if l.CanTrigger("nudge", 10*time.Minute) {
					t.Fatalf("triggered %v into a %v cooldown", s, required)
				}
			}
		})
	}
}

func TestAdvanceQuantizesToSeconds(t *testing.T) {
	l := New(epoch.Add(300 * time.Millisecond))
	if !l.Now().Equal(epoch) {
		t.Fatalf("start should truncate to second, got %v", l.Now())
	}
	if steps := l.Advance(epoch.Add(900 * time.Millisecond)); steps != 0 {
		t.Fatalf("expected 0 steps, got %d", steps)
	}
	if steps := l.Advance(epoch.Add(2500 * time.Millisecond)); steps != 2 {
		t.Fatalf("expected 2 steps, got %d", steps)
	}
	if steps := l.Advance(epoch); steps != 0 {
		t.Fatalf("clock must not move backwards, got %d steps", steps)
	}
	if !l.Now().Equal(epoch.Add(2 * time.Second)) {
		t.Fatalf("unexpected clock %v", l.Now())
	}
}

func TestApplyResponseBounds(t *testing.T) {
	l := New(epoch)
	for i := 0; i < 10; i++ {
		l.ApplyResponse("a", ResponseDismissed)
	}
	if m := l.Multiplier("a"); m != MaxMultiplier {
		t.Fatalf("expected cap %.1f, got %.3f", MaxMultiplier, m)
	}
	for i := 0; i < 20; i++ {
		l.ApplyResponse("a", ResponseEngaged)
	}
	if m := l.Multiplier("a"); m != MinMultiplier {
		t.Fatalf("expected floor %.1f, got %.3f", MinMultiplier, m)
	}
	before := l.Multiplier("a")
	l.ApplyResponse("a", ResponseIgnored)
	if l.Multiplier("a") != before {
		t.Fatal("ignored response should not change multiplier")
	}
}

func TestTriggeredWithin(t *testing.T) {
	l := New(epoch)
	l.MarkTriggered("a")
	l.Advance(epoch.Add(30 * time.Minute))
	l.MarkTriggered("b")
	l.Advance(epoch.Add(50 * time.Minute))
	l.MarkTriggered("c")
	if n := l.TriggeredWithin(time.Hour); n != 3 {
		t.Fatalf("expected 3 within the hour, got %d", n)
	}
	l.Advance(epoch.Add(70 * time.Minute))
	if n := l.TriggeredWithin(time.Hour); n != 2 {
		t.Fatalf("expected 2 within the hour, got %d", n)
	}
}

func TestRewardTimestamps(t *testing.T) {
	l := New(epoch)
	if _, ok := l.LastRewarded("bonus"); ok {
		t.Fatal("no reward recorded yet")
	}
	l.Advance(epoch.Add(5 * time.Second))
	l.MarkRewarded("bonus")
	at, ok := l.LastRewarded("bonus")
	if !ok || !at.Equal(epoch.Add(5*time.Second)) {
		t.Fatalf("unexpected reward time %v (%v)", at, ok)
	}
}

func TestParseUserResponse(t *testing.T) {
	if r, ok := ParseUserResponse("dismissed_quickly"); !ok || r != ResponseDismissed {
		t.Fatalf("got %q,%v", r, ok)
	}
	if _, ok := ParseUserResponse("thumbs_up"); ok {
		t.Fatal("unknown response should not parse")
	}
}
