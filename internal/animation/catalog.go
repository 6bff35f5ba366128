package animation

import "time"

// #region catalog

// Asset is the static description of a renderable animation.
type Asset struct {
	Type     CommandType
	Duration time.Duration
	Loop     bool
}

// SafeDefault is substituted for any unknown animation name.
const SafeDefault = "idle_breathing"

// catalog lists every animation the renderer ships.
var catalog = map[string]Asset{
	// base states
	"idle_breathing":   {Type: TypeBaseState, Duration: 4 * time.Second, Loop: true},
	"focus_glow":       {Type: TypeBaseState, Duration: 4 * time.Second, Loop: true},
	"calm_float":       {Type: TypeBaseState, Duration: 4 * time.Second, Loop: true},
	"supportive_sway":  {Type: TypeBaseState, Duration: 4 * time.Second, Loop: true},
	"excited_bounce":   {Type: TypeBaseState, Duration: 2 * time.Second, Loop: true},
	"concerned_wobble": {Type: TypeBaseState, Duration: 3 * time.Second, Loop: true},
	"celebrate_glow":   {Type: TypeBaseState, Duration: 2 * time.Second, Loop: true},
	"tired_droop":      {Type: TypeBaseState, Duration: 5 * time.Second, Loop: true},
	"melt_drip":        {Type: TypeBaseState, Duration: 5 * time.Second, Loop: true},

	// expressions
	"smile":        {Type: TypeExpression, Duration: 1500 * time.Millisecond},
	"wink":         {Type: TypeExpression, Duration: 800 * time.Millisecond},
	"curious_tilt": {Type: TypeExpression, Duration: 1500 * time.Millisecond},
	"worried_look": {Type: TypeExpression, Duration: 2 * time.Second},
	"yawn":         {Type: TypeExpression, Duration: 2 * time.Second},

	// reactions
	"gentle_tap":    {Type: TypeReaction, Duration: 2 * time.Second},
	"nudge_wave":    {Type: TypeReaction, Duration: 2500 * time.Millisecond},
	"break_stretch": {Type: TypeReaction, Duration: 3 * time.Second},
	"thumbs_up":     {Type: TypeReaction, Duration: 1500 * time.Millisecond},
	"cheer":         {Type: TypeReaction, Duration: 2 * time.Second},

	// celebrations
	"coin_shower":         {Type: TypeCelebration, Duration: 2500 * time.Millisecond},
	"bonus_sparkle":       {Type: TypeCelebration, Duration: 2 * time.Second},
	"achievement_fanfare": {Type: TypeCelebration, Duration: 4 * time.Second},
	"milestone_fireworks": {Type: TypeCelebration, Duration: 5 * time.Second},

	// idle variations
	"look_around": {Type: TypeIdleVariation, Duration: 3 * time.Second},
	"stretch":     {Type: TypeIdleVariation, Duration: 2500 * time.Millisecond},
	"blink_twice": {Type: TypeIdleVariation, Duration: time.Second},
	"hum":         {Type: TypeIdleVariation, Duration: 3 * time.Second},
	"doodle":      {Type: TypeIdleVariation, Duration: 4 * time.Second},
}

// idleVariations is the ordered pool drawn from during inactivity.
var idleVariations = []string{"look_around", "stretch", "blink_twice", "hum", "doodle"}

// Lookup returns the asset registered under name.
func Lookup(name string) (Asset, bool) {
	a, ok := catalog[name]
	return a, ok
}

// #endregion catalog
