package animation

import (
	"github.com/danielpatrickdp/focus-companion/internal/decision"
	"github.com/danielpatrickdp/focus-companion/internal/history"
	"github.com/danielpatrickdp/focus-companion/internal/mood"
	"github.com/danielpatrickdp/focus-companion/internal/reward"
)

// #region base

var moodBase = map[mood.Mood]string{
	mood.MoodSupportive:  "supportive_sway",
	mood.MoodExcited:     "excited_bounce",
	mood.MoodConcerned:   "concerned_wobble",
	mood.MoodCelebrating: "celebrate_glow",
	mood.MoodTired:       "tired_droop",
	mood.MoodMelting:     "melt_drip",
}

var stateColor = map[history.StateType]string{
	history.StateFlow:          "#4FC3F7",
	history.StateHyperfocus:    "#7E57C2",
	history.StateDistracted:    "#FFB74D",
	history.StateTransitioning: "#AED581",
	history.StateNeutral:       "#E0E0E0",
}

// BaseFor derives the looping base animation from the attention state and
// the companion's mood. Mood wins when it has a dedicated loop.
func BaseFor(st history.StateType, m mood.State) Command {
	name, ok := moodBase[m.Mood]
	if !ok {
		switch {
		case st.Focused():
			name = "focus_glow"
		case m.Mood == mood.MoodCalm:
			name = "calm_float"
		default:
			name = SafeDefault
		}
	}
	color, ok := stateColor[st]
	if !ok {
		color = stateColor[history.StateNeutral]
	}
	cmd := Command{
		Type:          TypeBaseState,
		Name:          name,
		Loop:          true,
		Priority:      PriorityLow,
		Interruptible: true,
		Glow:          &Glow{Color: color, Intensity: m.Visual.GlowIntensity},
	}
	if m.Visual.ParticleCount > 0 {
		cmd.Particles = &Particles{Kind: "motes", Count: m.Visual.ParticleCount}
	}
	return cmd
}

// #endregion base

// #region reward

// ForReward maps a granted reward onto a celebration. Celebrations run to
// completion.
func ForReward(ev reward.Event) Command {
	cmd := Command{Type: TypeCelebration, Interruptible: false}
	switch ev.Kind {
	case reward.KindCoins:
		cmd.Name = "coin_shower"
		cmd.Priority = PriorityHigh
		cmd.Sound = "coin"
		cmd.Glow = &Glow{Color: "#FFD54F", Intensity: 0.8}
		cmd.Particles = &Particles{Kind: "coins", Count: min(max(ev.Amount*2, 4), 40)}
	case reward.KindBonus:
		cmd.Name = "bonus_sparkle"
		cmd.Priority = PriorityHigh
		cmd.Sound = "sparkle"
		cmd.Glow = &Glow{Color: "#FFF176", Intensity: 0.9}
		cmd.Particles = &Particles{Kind: "sparkles", Count: 24}
	case reward.KindAchievement:
		cmd.Name = "achievement_fanfare"
		cmd.Priority = PriorityUrgent
		cmd.Sound = "fanfare"
		cmd.Glow = &Glow{Color: "#FFD54F", Intensity: 1}
		cmd.Particles = &Particles{Kind: "confetti", Count: 48}
	case reward.KindMilestone:
		cmd.Name = "milestone_fireworks"
		cmd.Priority = PriorityUrgent
		cmd.Sound = "fireworks"
		cmd.Glow = &Glow{Color: "#FF8A65", Intensity: 1}
		cmd.Particles = &Particles{Kind: "fireworks", Count: 64}
	default:
		return Command{Type: TypeReaction, Name: "thumbs_up", Priority: PriorityMedium, Interruptible: true}
	}
	if p, ok := ParsePriority(string(ev.Priority)); ok {
		cmd.Priority = p
	}
	return cmd
}

// #endregion reward

// #region intervention

var categoryReaction = map[decision.Category]string{
	decision.CategoryGentleNudge:   "gentle_tap",
	decision.CategorySuggestion:    "nudge_wave",
	decision.CategoryEncouragement: "thumbs_up",
	decision.CategoryCelebration:   "cheer",
}

// ForIntervention picks the reaction that accompanies an intervention request.
func ForIntervention(req decision.InterventionRequest) Command {
	name := categoryReaction[req.Category]
	if req.TypeID == "break_suggestion" {
		name = "break_stretch"
	}
	if name == "" {
		name = "gentle_tap"
	}
	cmd := Command{Type: TypeReaction, Name: name, Interruptible: true}
	switch req.Urgency {
	case decision.UrgencyHigh:
		cmd.Priority = PriorityHigh
		cmd.Sound = "chime"
	case decision.UrgencyMedium:
		cmd.Priority = PriorityMedium
	default:
		cmd.Priority = PriorityLow
	}
	return cmd
}

// #endregion intervention

// #region expression

// ForStateChange returns the short expression played on an attention-state
// change. False when the state did not change.
func ForStateChange(prev, cur history.StateType) (Command, bool) {
	if prev == cur {
		return Command{}, false
	}
	var name string
	switch cur {
	case history.StateDistracted:
		name = "worried_look"
	case history.StateFlow:
		if prev == history.StateDistracted {
			name = "smile"
		} else {
			name = "wink"
		}
	case history.StateHyperfocus:
		name = "curious_tilt"
	case history.StateNeutral:
		if !prev.Focused() {
			return Command{}, false
		}
		name = "yawn"
	case history.StateTransitioning:
		name = "wink"
	default:
		return Command{}, false
	}
	return Command{Type: TypeExpression, Name: name, Priority: PriorityMedium, Interruptible: true}, true
}

// #endregion expression
