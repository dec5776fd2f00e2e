package day

import (
	"testing"

	"hearthday.ai/internal/sim/catalogs"
	"hearthday.ai/internal/sim/tuning"
)

func rampProfile() catalogs.MoodProfile {
	return catalogs.MoodProfile{
		Points: []catalogs.MoodPoint{
			{
				T:             0.2,
				Light:         [3]float64{0, 0, 0},
				Ambient:       [3]float64{0.1, 0.1, 0.1},
				Fog:           [3]float64{1, 1, 1},
				FogDensity:    0.0,
				Precipitation: 1.0,
			},
			{
				T:             0.8,
				Light:         [3]float64{1, 1, 1},
				Ambient:       [3]float64{0.5, 0.5, 0.5},
				Fog:           [3]float64{0, 0, 0},
				FogDensity:    0.6,
				Precipitation: 0.0,
			},
		},
	}
}

func TestSampleMood_Midpoint(t *testing.T) {
	p := rampProfile()
	got := SampleMood(&p, 0.5)
	if !approx(got.Light[0], 0.5) || !approx(got.Light[2], 0.5) {
		t.Fatalf("light = %v", got.Light)
	}
	if !approx(got.Ambient[1], 0.3) {
		t.Fatalf("ambient = %v", got.Ambient)
	}
	if !approx(got.FogDensity, 0.3) {
		t.Fatalf("fog_density = %v", got.FogDensity)
	}
	if !approx(got.Precipitation, 0.5) {
		t.Fatalf("precipitation = %v", got.Precipitation)
	}
}

func TestSampleMood_BeforeFirstAndAfterLast(t *testing.T) {
	p := rampProfile()
	lo := SampleMood(&p, 0.05)
	if !approx(lo.Light[0], 0) || !approx(lo.Precipitation, 1.0) {
		t.Fatalf("below first point: %+v", lo)
	}
	hi := SampleMood(&p, 0.95)
	if !approx(hi.Light[0], 1.0) || !approx(hi.FogDensity, 0.6) {
		t.Fatalf("past last point: %+v", hi)
	}
}

func TestSampleMood_ClampsT(t *testing.T) {
	p := rampProfile()
	lo := SampleMood(&p, -2)
	hi := SampleMood(&p, 3)
	if lo.T != 0 || hi.T != 1 {
		t.Fatalf("t not clamped: %v, %v", lo.T, hi.T)
	}
}

func TestSampleMood_ExactControlPoint(t *testing.T) {
	p := rampProfile()
	got := SampleMood(&p, 0.8)
	if !approx(got.Light[0], 1.0) || !approx(got.Precipitation, 0.0) {
		t.Fatalf("exact point: %+v", got)
	}
}

func TestMoodT_SourcePolicies(t *testing.T) {
	tod := testTune()
	tod.Mood.Source = tuning.MoodSourceTimeOfDay
	c := newTestCoreWith(t, tod)
	c.clock.TimeOfDay = 0.4
	if !approx(c.moodT(), 0.4) {
		t.Fatalf("time_of_day: %v", c.moodT())
	}

	aff := testTune()
	aff.Mood.Source = tuning.MoodSourceAffection
	c = newTestCoreWith(t, aff)
	if !approx(c.moodT(), 0.5) {
		t.Fatalf("affection without encounter should default to 0.5, got %v", c.moodT())
	}
	c.enc = newEncounter(c.cats.Content.ByID["visitor_tinkerer"], 80, 0)
	if !approx(c.moodT(), 0.8) {
		t.Fatalf("affection source: %v", c.moodT())
	}

	blend := testTune()
	blend.Mood.Source = tuning.MoodSourceBlend
	blend.Mood.BlendWeight = 0.25
	c = newTestCoreWith(t, blend)
	c.clock.TimeOfDay = 0.4
	c.enc = newEncounter(c.cats.Content.ByID["visitor_tinkerer"], 80, 0)
	// 0.75*0.4 + 0.25*0.8
	if !approx(c.moodT(), 0.5) {
		t.Fatalf("blend source: %v", c.moodT())
	}
}
