package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/danielpatrickdp/focus-companion/internal/decision"
	"github.com/danielpatrickdp/focus-companion/internal/engine"
)

// #region types
// Config is the process-level configuration for the companion binaries.
type Config struct {
	DBPath       string // journal database, empty disables the journal
	RendererAddr string // renderer gRPC address, empty disables rendering
	PrefsPath    string // optional JSON preferences overlay
	Seed         uint64
	TickHz       int
	Engine       engine.Config
}

// Prefs is the on-disk preferences overlay. Absent fields keep their defaults.
type Prefs struct {
	MinCooldownMinutes      *float64              `json:"min_cooldown_minutes"`
	AdaptiveCooldown        *bool                 `json:"adaptive_cooldown"`
	MaxInterventionsPerHour *int                  `json:"max_interventions_per_hour"`
	RespectFlowStates       *bool                 `json:"respect_flow_states"`
	FlowStateThreshold      *float64              `json:"flow_state_threshold"`
	InterventionThreshold   *float64              `json:"intervention_threshold"`
	EmergencyOverride       *bool                 `json:"emergency_override"`
	Personality             *decision.Personality `json:"personality"`
	ExpectedWorkType        *string               `json:"expected_work_type"`
	DayStreak               *int                  `json:"day_streak"`
	PersonalBestFlowMinutes *float64              `json:"personal_best_flow_minutes"`
}
// #endregion types

// #region defaults
const (
	DefaultTickHz = 30
	minTickHz     = 1
	maxTickHz     = 120
)

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	cfg := Config{
		DBPath:       "companion.db",
		RendererAddr: "",
		TickHz:       DefaultTickHz,
		Engine:       engine.DefaultConfig(),
	}
	cfg.Engine.Animation.TargetFrameTime = time.Second / DefaultTickHz
	return cfg
}
// #endregion defaults

// #region load
// Load reads the environment and the optional preferences file.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()
	env := func(key, fallback string) string { return envOr(getenv, key, fallback) }

	cfg.DBPath = env("COMPANION_DB", cfg.DBPath)
	cfg.RendererAddr = env("RENDERER_ADDR", cfg.RendererAddr)
	cfg.PrefsPath = env("COMPANION_PREFS", "")

	enabled, err := strconv.ParseBool(env("COMPANION_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("COMPANION_ENABLED: %w", err)
	}
	cfg.Engine.Enabled = enabled

	if s := getenv("COMPANION_SEED"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("COMPANION_SEED: %w", err)
		}
		cfg.Seed = seed
	} else {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	hz, err := strconv.Atoi(env("COMPANION_TICK_HZ", strconv.Itoa(DefaultTickHz)))
	if err != nil {
		return Config{}, fmt.Errorf("COMPANION_TICK_HZ: %w", err)
	}
	cfg.TickHz = min(max(hz, minTickHz), maxTickHz)
	cfg.Engine.Animation.TargetFrameTime = time.Second / time.Duration(cfg.TickHz)

	if cfg.PrefsPath != "" {
		if err := ApplyPrefsFile(&cfg.Engine, cfg.PrefsPath); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
// #endregion load

// #region prefs
// ApplyPrefsFile overlays the JSON preferences at path onto cfg.
func ApplyPrefsFile(cfg *engine.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read prefs: %w", err)
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse prefs %s: %w", path, err)
	}
	return ApplyPrefs(cfg, p)
}

// ApplyPrefs overlays p onto cfg after validating ranges.
func ApplyPrefs(cfg *engine.Config, p Prefs) error {
	prefs := &cfg.Preferences
	if p.MinCooldownMinutes != nil {
		if *p.MinCooldownMinutes < 0 {
			return fmt.Errorf("min_cooldown_minutes: must be >= 0, got %v", *p.MinCooldownMinutes)
		}
		prefs.MinCooldown = time.Duration(*p.MinCooldownMinutes * float64(time.Minute))
	}
	if p.AdaptiveCooldown != nil {
		prefs.AdaptiveCooldown = *p.AdaptiveCooldown
	}
	if p.MaxInterventionsPerHour != nil {
		if *p.MaxInterventionsPerHour < 0 {
			return fmt.Errorf("max_interventions_per_hour: must be >= 0, got %d", *p.MaxInterventionsPerHour)
		}
		prefs.MaxInterventionsPerHour = *p.MaxInterventionsPerHour
	}
	if p.RespectFlowStates != nil {
		prefs.RespectFlowStates = *p.RespectFlowStates
	}
	if p.FlowStateThreshold != nil {
		if err := unit("flow_state_threshold", *p.FlowStateThreshold); err != nil {
			return err
		}
		prefs.FlowStateThreshold = *p.FlowStateThreshold
	}
	if p.InterventionThreshold != nil {
		if err := unit("intervention_threshold", *p.InterventionThreshold); err != nil {
			return err
		}
		prefs.InterventionThreshold = *p.InterventionThreshold
	}
	if p.EmergencyOverride != nil {
		prefs.EmergencyOverride = *p.EmergencyOverride
	}
	if p.Personality != nil {
		for name, v := range map[string]float64{
			"personality.warmth":      p.Personality.Warmth,
			"personality.playfulness": p.Personality.Playfulness,
			"personality.directness":  p.Personality.Directness,
		} {
			if err := unit(name, v); err != nil {
				return err
			}
		}
		prefs.Personality = *p.Personality
	}
	if p.ExpectedWorkType != nil {
		cfg.ExpectedWorkType = *p.ExpectedWorkType
	}
	if p.DayStreak != nil {
		cfg.Session.DayStreak = max(*p.DayStreak, 0)
	}
	if p.PersonalBestFlowMinutes != nil && *p.PersonalBestFlowMinutes > 0 {
		cfg.Session.PersonalBestFlow = time.Duration(*p.PersonalBestFlowMinutes * float64(time.Minute))
	}
	return nil
}
// #endregion prefs

// #region helpers
func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func unit(name string, v float64) error {
	if v != v || v < 0 || v > 1 {
		return fmt.Errorf("%s: must be in [0, 1], got %v", name, v)
	}
	return nil
}
// #endregion helpers
