package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/focus-companion/internal/decision"
	"github.com/danielpatrickdp/focus-companion/internal/engine"
	"github.com/danielpatrickdp/focus-companion/internal/history"
	"github.com/danielpatrickdp/focus-companion/internal/ledger"
	"github.com/danielpatrickdp/focus-companion/internal/reward"
)

var _ engine.Journal = (*AsyncWriter)(nil)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func nudge() *decision.InterventionType {
	for i := range decision.DefaultCatalog {
		if decision.DefaultCatalog[i].ID == "gentle_nudge" {
			return &decision.DefaultCatalog[i]
		}
	}
	return nil
}

func TestInsertAndCount(t *testing.T) {
	s := tempStore(t)

	if err := s.InsertDecision(t0, decision.Decision{State: history.StateFlow, Confidence: 0.9, Reason: "flow protected"}); err != nil {
		t.Fatalf("InsertDecision: %v", err)
	}
	if err := s.InsertDecision(t0, decision.Decision{Intervene: true, Type: nudge(), State: history.StateDistracted, Confidence: 0.7}); err != nil {
		t.Fatalf("InsertDecision: %v", err)
	}
	if err := s.InsertReward(t0, reward.Event{ID: "r1", Kind: reward.KindCoins, Amount: 5, Reason: "recovery", Priority: reward.PriorityMedium}); err != nil {
		t.Fatalf("InsertReward: %v", err)
	}
	if err := s.InsertIntervention(t0, decision.InterventionRequest{TypeID: "gentle_nudge", Category: decision.CategoryGentleNudge, Urgency: decision.UrgencyMedium, MessageSlot: "gentle_nudge.distracted", Tone: decision.ToneGentle}); err != nil {
		t.Fatalf("InsertIntervention: %v", err)
	}
	if err := s.InsertResponse(t0, "gentle_nudge", ledger.ResponseDismissed, 1.5); err != nil {
		t.Fatalf("InsertResponse: %v", err)
	}

	c, err := s.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	want := Counts{Decisions: 2, Interventions: 1, Rewards: 1, Responses: 1}
	if c != want {
		t.Fatalf("counts = %+v, want %+v", c, want)
	}
}

func TestDuplicateRewardIDRejected(t *testing.T) {
	s := tempStore(t)
	ev := reward.Event{ID: "dup", Kind: reward.KindBonus, Amount: 3, Priority: reward.PriorityMedium}
	if err := s.InsertReward(t0, ev); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := s.InsertReward(t0, ev); err == nil {
		t.Fatal("expected primary key violation")
	}
}

func TestRecentRewardsAndCoins(t *testing.T) {
	s := tempStore(t)
	s.InsertReward(t0, reward.Event{Kind: reward.KindCoins, Amount: 10, Reason: "focus", Priority: reward.PriorityHigh})
	s.InsertReward(t0.Add(time.Minute), reward.Event{Kind: reward.KindAchievement, AchievementRef: "first_focus", Amount: 15, Priority: reward.PriorityHigh})
	s.InsertReward(t0.Add(2*time.Minute), reward.Event{Kind: reward.KindBonus, Amount: 4, Reason: "bonus", Priority: reward.PriorityMedium})

	rows, err := s.RecentRewards(2)
	if err != nil {
		t.Fatalf("RecentRewards: %v", err)
	}
	if len(rows) != 2 || rows[0].Kind != "bonus" || rows[1].AchievementRef != "first_focus" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if !rows[0].CreatedAt.Equal(t0.Add(2 * time.Minute)) {
		t.Fatalf("created_at = %s", rows[0].CreatedAt)
	}

	total, err := s.CoinTotal()
	if err != nil {
		t.Fatalf("CoinTotal: %v", err)
	}
	if total != 14 {
		t.Fatalf("coin total = %d, want 14 (achievements excluded)", total)
	}
}

func TestInterventionStats(t *testing.T) {
	s := tempStore(t)
	req := decision.InterventionRequest{TypeID: "gentle_nudge", Category: decision.CategoryGentleNudge, Urgency: decision.UrgencyLow, MessageSlot: "x", Tone: decision.ToneGentle}
	s.InsertIntervention(t0, req)
	s.InsertIntervention(t0.Add(time.Minute), req)
	s.InsertResponse(t0, "gentle_nudge", ledger.ResponseDismissed, 1.5)
	s.InsertResponse(t0.Add(time.Minute), "gentle_nudge", ledger.ResponseEngaged, 1.2)

	stats, err := s.InterventionStats()
	if err != nil {
		t.Fatalf("InterventionStats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected one type, got %+v", stats)
	}
	st := stats[0]
	if st.Delivered != 2 || st.Dismissed != 1 || st.Engaged != 1 || st.Ignored != 0 {
		t.Fatalf("unexpected stat %+v", st)
	}
	if st.LastMultiplier != 1.2 {
		t.Fatalf("last multiplier = %v, want 1.2", st.LastMultiplier)
	}
}

func TestAsyncWriterFlushesOnClose(t *testing.T) {
	s := tempStore(t)
	w := NewAsyncWriter(s, 0)
	for i := 0; i < 20; i++ {
		w.RecordDecision(t0, decision.Decision{State: history.StateNeutral, Reason: "below threshold"})
	}
	w.RecordReward(t0, reward.Event{Kind: reward.KindCoins, Amount: 5, Priority: reward.PriorityMedium})
	w.RecordIntervention(t0, decision.InterventionRequest{TypeID: "gentle_nudge", Category: decision.CategoryGentleNudge, Urgency: decision.UrgencyLow, MessageSlot: "x", Tone: decision.ToneGentle})
	w.RecordResponse(t0, "gentle_nudge", ledger.ResponseIgnored, 1.0)
	w.Close()

	c, err := s.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if c.Decisions != 20 || c.Rewards != 1 || c.Interventions != 1 || c.Responses != 1 {
		t.Fatalf("counts after close = %+v", c)
	}
	if w.Dropped() != 0 {
		t.Fatalf("dropped = %d", w.Dropped())
	}

	// Writes after Close are ignored, not panics.
	w.RecordDecision(t0, decision.Decision{})
	w.Close()
}

func TestAsyncWriterDropsWhenFull(t *testing.T) {
	// No consumer goroutine: the buffer fills and the rest is dropped.
	w := &AsyncWriter{ch: make(chan job, 2)}
	for i := 0; i < 5; i++ {
		w.RecordDecision(t0, decision.Decision{})
	}
	if w.Dropped() != 3 {
		t.Fatalf("dropped = %d, want 3", w.Dropped())
	}
}
