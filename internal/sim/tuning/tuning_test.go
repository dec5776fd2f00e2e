package tuning

import "testing"

func TestLoad_RealTuning(t *testing.T) {
	tune, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := tune.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if tune.TickRateHz != 5 || tune.DayTicks != 6000 {
		t.Fatalf("loaded %d Hz / %d ticks", tune.TickRateHz, tune.DayTicks)
	}
	if tune.Scoring.MessTag != "mess" {
		t.Fatalf("mess tag %q", tune.Scoring.MessTag)
	}
	if len(tune.Grades) != 4 || tune.Grades[0].Grade != "S" {
		t.Fatalf("grades %v", tune.Grades)
	}
}

func validTuning() Tuning {
	return Tuning{
		TickRateHz:  5,
		DayTicks:    6000,
		MorningTime: 0.28,
		Encounter:   EncounterTuning{SessionDurationTicks: 1500, EntranceScanMax: 4, InitialAffection: 50},
		Pool:        PoolTuning{PersonalsPerDay: 2, CommercialsPerDay: 3},
		Scoring:     ScoringTuning{PerObjectCap: 10, ComfortPenalty: 0.5, ScentPenalty: 0.5, CheckpointCap: 15, MessTag: "mess"},
		Mood:        MoodTuning{Source: MoodSourceTimeOfDay, BlendWeight: 0.5},
		Clutter:     ClutterTuning{PerDay: 2},
		Grades: []GradeBreakpoint{
			{Min: 80, Grade: "S"},
			{Min: 60, Grade: "A"},
			{Min: 0, Grade: "C"},
		},
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	if err := validTuning().Validate(); err != nil {
		t.Fatalf("baseline rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Tuning)
	}{
		{"zero tick rate", func(tu *Tuning) { tu.TickRateHz = 0 }},
		{"zero day ticks", func(tu *Tuning) { tu.DayTicks = 0 }},
		{"morning_time at 1", func(tu *Tuning) { tu.MorningTime = 1 }},
		{"negative obs cadence", func(tu *Tuning) { tu.ObsEveryTicks = -1 }},
		{"zero session duration", func(tu *Tuning) { tu.Encounter.SessionDurationTicks = 0 }},
		{"zero entrance scan", func(tu *Tuning) { tu.Encounter.EntranceScanMax = 0 }},
		{"initial affection over 100", func(tu *Tuning) { tu.Encounter.InitialAffection = 150 }},
		{"zero personals per day", func(tu *Tuning) { tu.Pool.PersonalsPerDay = 0 }},
		{"zero per-object cap", func(tu *Tuning) { tu.Scoring.PerObjectCap = 0 }},
		{"comfort penalty at 1", func(tu *Tuning) { tu.Scoring.ComfortPenalty = 1 }},
		{"comfort penalty at 0", func(tu *Tuning) { tu.Scoring.ComfortPenalty = 0 }},
		{"negative scent penalty", func(tu *Tuning) { tu.Scoring.ScentPenalty = -0.1 }},
		{"empty mess tag", func(tu *Tuning) { tu.Scoring.MessTag = "" }},
		{"unknown mood source", func(tu *Tuning) { tu.Mood.Source = "lunar_phase" }},
		{"blend weight over 1", func(tu *Tuning) { tu.Mood.BlendWeight = 1.5 }},
		{"negative clutter", func(tu *Tuning) { tu.Clutter.PerDay = -1 }},
		{"no grades", func(tu *Tuning) { tu.Grades = nil }},
		{"ascending grades", func(tu *Tuning) {
			tu.Grades = []GradeBreakpoint{{Min: 0, Grade: "C"}, {Min: 60, Grade: "A"}}
		}},
		{"last grade above zero", func(tu *Tuning) {
			tu.Grades = []GradeBreakpoint{{Min: 80, Grade: "S"}, {Min: 40, Grade: "B"}}
		}},
		{"unnamed grade", func(tu *Tuning) {
			tu.Grades = []GradeBreakpoint{{Min: 80, Grade: "S"}, {Min: 0, Grade: ""}}
		}},
	}

	for _, tc := range cases {
		tu := validTuning()
		tc.mutate(&tu)
		if err := tu.Validate(); err == nil {
			t.Fatalf("%s: accepted", tc.name)
		}
	}
}
