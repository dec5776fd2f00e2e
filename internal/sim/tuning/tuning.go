package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mood parameter sources. The same t drives the gradient sampler and the
// comfort-range gate; where it comes from is an authored policy.
const (
	MoodSourceTimeOfDay = "time_of_day"
	MoodSourceAffection = "affection"
	MoodSourceBlend     = "blend"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz    int     `yaml:"tick_rate_hz"`
	DayTicks      int     `yaml:"day_ticks"`
	MorningTime   float64 `yaml:"morning_time"`
	ObsEveryTicks int     `yaml:"obs_every_ticks"`
	Seed          int64   `yaml:"seed"`

	Encounter EncounterTuning `yaml:"encounter"`
	Pool      PoolTuning      `yaml:"pool"`
	Scoring   ScoringTuning   `yaml:"scoring"`
	Mood      MoodTuning      `yaml:"mood"`
	Clutter   ClutterTuning   `yaml:"clutter"`

	Grades []GradeBreakpoint `yaml:"grades"`
}

type EncounterTuning struct {
	SessionDurationTicks int     `yaml:"session_duration_ticks"`
	EntranceScanMax      int     `yaml:"entrance_scan_max"`
	InitialAffection     float64 `yaml:"initial_affection"`
}

type PoolTuning struct {
	PersonalsPerDay   int  `yaml:"personals_per_day"`
	CommercialsPerDay int  `yaml:"commercials_per_day"`
	AllowRepeats      bool `yaml:"allow_repeats"`
}

type ScoringTuning struct {
	PerObjectCap   float64 `yaml:"per_object_cap"`
	ComfortPenalty float64 `yaml:"comfort_penalty"`
	ScentPenalty   float64 `yaml:"scent_penalty"`
	CheckpointCap  float64 `yaml:"checkpoint_cap"`
	MessTag        string  `yaml:"mess_tag"`
}

type MoodTuning struct {
	Source      string  `yaml:"source"`
	BlendWeight float64 `yaml:"blend_weight"`
}

type ClutterTuning struct {
	PerDay int `yaml:"per_day"`
}

type GradeBreakpoint struct {
	Min   float64 `yaml:"min"`
	Grade string  `yaml:"grade"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Validate rejects self-contradictory authored numbers. Failures here are the
// only error class that aborts startup.
func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tuning: tick_rate_hz must be > 0, got %d", t.TickRateHz)
	}
	if t.DayTicks <= 0 {
		return fmt.Errorf("tuning: day_ticks must be > 0, got %d", t.DayTicks)
	}
	if t.MorningTime < 0 || t.MorningTime >= 1 {
		return fmt.Errorf("tuning: morning_time must be in [0,1), got %v", t.MorningTime)
	}
	if t.ObsEveryTicks < 0 {
		return fmt.Errorf("tuning: obs_every_ticks must be >= 0, got %d", t.ObsEveryTicks)
	}
	if t.Encounter.SessionDurationTicks <= 0 {
		return fmt.Errorf("tuning: encounter.session_duration_ticks must be > 0, got %d", t.Encounter.SessionDurationTicks)
	}
	if t.Encounter.EntranceScanMax <= 0 {
		return fmt.Errorf("tuning: encounter.entrance_scan_max must be > 0, got %d", t.Encounter.EntranceScanMax)
	}
	if t.Encounter.InitialAffection < 0 || t.Encounter.InitialAffection > 100 {
		return fmt.Errorf("tuning: encounter.initial_affection must be in [0,100], got %v", t.Encounter.InitialAffection)
	}
	if t.Pool.PersonalsPerDay <= 0 {
		return fmt.Errorf("tuning: pool.personals_per_day must be > 0, got %d", t.Pool.PersonalsPerDay)
	}
	if t.Pool.CommercialsPerDay < 0 {
		return fmt.Errorf("tuning: pool.commercials_per_day must be >= 0, got %d", t.Pool.CommercialsPerDay)
	}
	if t.Scoring.PerObjectCap <= 0 {
		return fmt.Errorf("tuning: scoring.per_object_cap must be > 0, got %v", t.Scoring.PerObjectCap)
	}
	if t.Scoring.ComfortPenalty <= 0 || t.Scoring.ComfortPenalty >= 1 {
		return fmt.Errorf("tuning: scoring.comfort_penalty must be in (0,1), got %v", t.Scoring.ComfortPenalty)
	}
	if t.Scoring.ScentPenalty < 0 {
		return fmt.Errorf("tuning: scoring.scent_penalty must be >= 0, got %v", t.Scoring.ScentPenalty)
	}
	if t.Scoring.CheckpointCap <= 0 {
		return fmt.Errorf("tuning: scoring.checkpoint_cap must be > 0, got %v", t.Scoring.CheckpointCap)
	}
	if t.Scoring.MessTag == "" {
		return fmt.Errorf("tuning: scoring.mess_tag must be set")
	}
	switch t.Mood.Source {
	case MoodSourceTimeOfDay, MoodSourceAffection, MoodSourceBlend:
	default:
		return fmt.Errorf("tuning: mood.source must be one of time_of_day|affection|blend, got %q", t.Mood.Source)
	}
	if t.Mood.BlendWeight < 0 || t.Mood.BlendWeight > 1 {
		return fmt.Errorf("tuning: mood.blend_weight must be in [0,1], got %v", t.Mood.BlendWeight)
	}
	if t.Clutter.PerDay < 0 {
		return fmt.Errorf("tuning: clutter.per_day must be >= 0, got %d", t.Clutter.PerDay)
	}
	if len(t.Grades) == 0 {
		return fmt.Errorf("tuning: grades must not be empty")
	}
	prev := 101.0
	for i, g := range t.Grades {
		if g.Grade == "" {
			return fmt.Errorf("tuning: grades[%d] missing grade label", i)
		}
		if g.Min < 0 || g.Min > 100 {
			return fmt.Errorf("tuning: grades[%d].min must be in [0,100], got %v", i, g.Min)
		}
		if g.Min >= prev {
			return fmt.Errorf("tuning: grades must be strictly descending by min, got %v after %v", g.Min, prev)
		}
		prev = g.Min
	}
	if t.Grades[len(t.Grades)-1].Min != 0 {
		return fmt.Errorf("tuning: last grade breakpoint must have min 0, got %v", t.Grades[len(t.Grades)-1].Min)
	}
	return nil
}
