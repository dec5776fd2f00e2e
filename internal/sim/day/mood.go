package day

import (
	"hearthday.ai/internal/sim/catalogs"
	"hearthday.ai/internal/sim/tuning"
)

// MoodSample is the environment presentation at one mood value.
type MoodSample struct {
	T             float64
	Light         [3]float64
	Ambient       [3]float64
	Fog           [3]float64
	FogDensity    float64
	Precipitation float64
}

// SampleMood interpolates the profile's control points at t. Pure; safe to
// call at arbitrary rates.
func SampleMood(p *catalogs.MoodProfile, t float64) MoodSample {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	pts := p.Points
	if t <= pts[0].T {
		return sampleAt(pts[0], t)
	}
	last := pts[len(pts)-1]
	if t >= last.T {
		return sampleAt(last, t)
	}

	for i := 1; i < len(pts); i++ {
		if t > pts[i].T {
			continue
		}
		a, b := pts[i-1], pts[i]
		u := (t - a.T) / (b.T - a.T)
		return MoodSample{
			T:             t,
			Light:         lerp3(a.Light, b.Light, u),
			Ambient:       lerp3(a.Ambient, b.Ambient, u),
			Fog:           lerp3(a.Fog, b.Fog, u),
			FogDensity:    lerp(a.FogDensity, b.FogDensity, u),
			Precipitation: lerp(a.Precipitation, b.Precipitation, u),
		}
	}
	return sampleAt(last, t)
}

func sampleAt(p catalogs.MoodPoint, t float64) MoodSample {
	return MoodSample{
		T:             t,
		Light:         p.Light,
		Ambient:       p.Ambient,
		Fog:           p.Fog,
		FogDensity:    p.FogDensity,
		Precipitation: p.Precipitation,
	}
}

func lerp(a, b, u float64) float64 { return a + (b-a)*u }

func lerp3(a, b [3]float64, u float64) [3]float64 {
	return [3]float64{lerp(a[0], b[0], u), lerp(a[1], b[1], u), lerp(a[2], b[2], u)}
}

// moodT resolves the authored mood-source policy. The same value feeds both
// the gradient sampler and the scorer's comfort-range gate each tick.
func (c *Core) moodT() float64 {
	aff := 0.5
	if c.enc != nil {
		aff = c.enc.Affection / 100.0
	}
	switch c.cfg.Tune.Mood.Source {
	case tuning.MoodSourceAffection:
		return aff
	case tuning.MoodSourceBlend:
		w := c.cfg.Tune.Mood.BlendWeight
		return (1-w)*c.clock.TimeOfDay + w*aff
	default:
		return c.clock.TimeOfDay
	}
}

func (c *Core) systemMood() {
	c.mood = SampleMood(&c.cats.Mood, c.moodT())
}
