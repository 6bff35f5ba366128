package decision

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/danielpatrickdp/focus-companion/internal/history"
	"github.com/danielpatrickdp/focus-companion/internal/ledger"
)

// #region engine

// Engine decides whether and how to interrupt the user.
type Engine struct {
	catalog []InterventionType
	ledger  *ledger.Ledger
}

// NewEngine creates an engine over DefaultCatalog.
func NewEngine(l *ledger.Ledger) *Engine {
	return NewEngineWithCatalog(l, DefaultCatalog)
}

// NewEngineWithCatalog creates an engine over a custom catalog. The catalog is copied.
func NewEngineWithCatalog(l *ledger.Ledger, catalog []InterventionType) *Engine {
	c := make([]InterventionType, len(catalog))
	copy(c, catalog)
	return &Engine{catalog: c, ledger: l}
}

// Lookup returns the catalog entry for id.
func (e *Engine) Lookup(id string) (InterventionType, bool) {
	for _, t := range e.catalog {
		if t.ID == id {
			return t, true
		}
	}
	return InterventionType{}, false
}

// #endregion engine

// #region decide

// Decide runs hard guards first, then scores the surviving catalog entries.
// It never panics on malformed input; anything unrecognized yields no intervention.
func (e *Engine) Decide(
	state history.Snapshot,
	metrics history.Metrics,
	ctx Context,
	prefs Preferences,
	session Session,
) Decision {
	if !state.Type.Valid() {
		log.Printf("[DECIDE] unknown state type %q, skipping", state.Type)
		return Decision{State: state.Type, Reason: "unknown state"}
	}
	conf := state.Confidence
	if conf != conf || conf < 0 || conf > 1 {
		log.Printf("[DECIDE] malformed confidence %v, skipping", conf)
		return Decision{State: state.Type, Reason: "malformed confidence"}
	}

	// --- Hard guards ---

	// 1. Flow protection
	if state.Type == history.StateFlow && prefs.RespectFlowStates &&
		conf > prefs.FlowStateThreshold && !prefs.EmergencyOverride {
		return Decision{
			State:      state.Type,
			Confidence: conf,
			Reason:     fmt.Sprintf("flow protected: confidence %.2f > %.2f", conf, prefs.FlowStateThreshold),
		}
	}

	// 2. Hourly cap
	if prefs.MaxInterventionsPerHour > 0 && session.InterventionsLastHour >= prefs.MaxInterventionsPerHour {
		return Decision{
			State:  state.Type,
			Reason: fmt.Sprintf("hourly limit reached: %d/%d", session.InterventionsLastHour, prefs.MaxInterventionsPerHour),
		}
	}

	// 3. Allowed state + cooldown filter
	var candidates []InterventionType
	allowedAny := false
	for _, t := range e.catalog {
		if !t.Allows(state.Type) {
			continue
		}
		allowedAny = true
		if !e.ledger.CanTrigger(t.ID, effectiveCooldown(t, prefs)) {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		reason := "all on cooldown"
		if !allowedAny {
			reason = fmt.Sprintf("no intervention allowed in %s", state.Type)
		}
		return Decision{State: state.Type, Reason: reason}
	}

	// --- Soft scoring ---
	var best *InterventionType
	bestScore := -1.0
	for i := range candidates {
		s := score(candidates[i], state.Type, conf, metrics, ctx)
		if s > bestScore {
			bestScore = s
			best = &candidates[i]
		}
	}

	if bestScore <= prefs.InterventionThreshold {
		return Decision{
			State:      state.Type,
			Confidence: bestScore,
			Reason:     fmt.Sprintf("best %s scored %.2f <= threshold %.2f", best.ID, bestScore, prefs.InterventionThreshold),
		}
	}

	chosen := *best
	log.Printf("[DECIDE] intervene: type=%s state=%s score=%.2f", chosen.ID, state.Type, bestScore)
	return Decision{
		Intervene:  true,
		Type:       &chosen,
		State:      state.Type,
		Confidence: bestScore,
		Reason:     fmt.Sprintf("selected %s: score=%.2f", chosen.ID, bestScore),
	}
}

// #endregion decide

// #region record

// Record stamps the ledger for an intervention that was actually delivered.
func (e *Engine) Record(d Decision) {
	if !d.Intervene || d.Type == nil {
		return
	}
	e.ledger.MarkTriggered(d.Type.ID)
}

// RecordResponse adapts the cooldown multiplier of typeID from the user's reaction.
// Returns the resulting multiplier.
func (e *Engine) RecordResponse(typeID string, resp ledger.UserResponse, prefs Preferences) float64 {
	t, ok := e.Lookup(typeID)
	if !ok {
		log.Printf("[DECIDE] response for unknown intervention %q ignored", typeID)
		return e.ledger.Multiplier(typeID)
	}
	if !prefs.AdaptiveCooldown || !t.Adaptive {
		return e.ledger.Multiplier(typeID)
	}
	m := e.ledger.ApplyResponse(typeID, resp)
	log.Printf("[DECIDE] response %s on %s → multiplier=%.2f", resp, typeID, m)
	return m
}

// #endregion record

// #region request

// Request builds the message-composition request for an intervening decision.
func Request(d Decision, prefs Preferences) (InterventionRequest, bool) {
	if !d.Intervene || d.Type == nil {
		return InterventionRequest{}, false
	}
	return InterventionRequest{
		TypeID:      d.Type.ID,
		Category:    d.Type.Category,
		Urgency:     urgencyFor(d.Confidence),
		MessageSlot: fmt.Sprintf("%s.%s", d.Type.Category, d.State),
		Tone:        toneFor(d.Type.Category, prefs.Personality),
	}, true
}

func urgencyFor(conf float64) Urgency {
	switch {
	case conf >= 0.8:
		return UrgencyHigh
	case conf >= 0.6:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

func toneFor(c Category, p Personality) Tone {
	switch c {
	case CategoryCelebration:
		if p.Playfulness >= 0.5 {
			return TonePlayful
		}
		return ToneWarm
	case CategoryGentleNudge:
		return ToneGentle
	case CategorySuggestion:
		if p.Directness >= 0.6 {
			return ToneDirect
		}
		return ToneWarm
	case CategoryEncouragement:
		if p.Warmth >= 0.5 {
			return ToneWarm
		}
	}
	return ToneNeutral
}

// #endregion request

// #region scoring

// baseScores is the per-category starting score for each state.
var baseScores = map[Category]map[history.StateType]float64{
	CategoryEncouragement: {
		history.StateTransitioning: 0.55,
		history.StateNeutral:       0.45,
	},
	CategorySuggestion: {
		history.StateDistracted: 0.45,
		history.StateHyperfocus: 0.3,
	},
	CategoryCelebration: {
		history.StateNeutral:       0.2,
		history.StateTransitioning: 0.2,
	},
	CategoryGentleNudge: {
		history.StateDistracted:    0.5,
		history.StateTransitioning: 0.4,
	},
}

// score produces a 0-1 composite for one candidate.
func score(t InterventionType, st history.StateType, conf float64, m history.Metrics, ctx Context) float64 {
	s := baseScores[t.Category][st]

	// Sustained distraction: ramps to +0.3 over 10 minutes
	if st == history.StateDistracted {
		s += 0.3 * ratio(ctx.ContinuousDuration, 10*time.Minute)
		s += 0.1 * minf(float64(m.ContextSwitches)/20, 1)
	}

	// Long hyperfocus: break suggestions ramp up over 90 minutes
	if st == history.StateHyperfocus && t.Category == CategorySuggestion {
		s += 0.5 * ratio(ctx.ContinuousDuration, 90*time.Minute)
	}

	// Work-type mismatch
	if (t.Category == CategorySuggestion || t.Category == CategoryGentleNudge) &&
		m.WorkType != "" && ctx.ExpectedWorkType != "" &&
		!strings.EqualFold(m.WorkType, ctx.ExpectedWorkType) {
		s += 0.15
	}

	// Celebrations need a recent focus block to celebrate
	if t.Category == CategoryCelebration {
		if ctx.RecentFocus < 25*time.Minute {
			return 0
		}
		s += 0.5 * ratio(ctx.RecentFocus, time.Hour)
	}

	// Time of day
	if !ctx.Now.IsZero() {
		h := ctx.Now.Hour()
		switch {
		case h >= 13 && h < 15: // post-lunch dip
			if t.Category == CategoryEncouragement || t.Category == CategoryGentleNudge {
				s += 0.1
			}
		case h >= 23 || h < 5:
			if t.Category == CategorySuggestion {
				s += 0.1
			}
		}
	}

	return clamp01(s * (0.5 + 0.5*conf))
}

// effectiveCooldown is the larger of the type's and the user's minimum cooldown.
func effectiveCooldown(t InterventionType, prefs Preferences) time.Duration {
	if prefs.MinCooldown > t.MinCooldown {
		return prefs.MinCooldown
	}
	return t.MinCooldown
}

func ratio(d, full time.Duration) float64 {
	if full <= 0 || d <= 0 {
		return 0
	}
	return minf(float64(d)/float64(full), 1)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion scoring
