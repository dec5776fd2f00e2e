package day

import "hearthday.ai/internal/sim/catalogs"

// ScoreParams are the authored scoring knobs, resolved once at startup.
type ScoreParams struct {
	PerObjectCap   float64 // magnitude cap on the tag-match term
	ComfortPenalty float64 // (0,1) scale applied when mood is out of comfort range
	ScentPenalty   float64 // per unit of scent intensity on mess-tagged objects
	MessTagID      uint16
	HasMessTag     bool
}

// ScoreObject is a pure function of the visitor's preference profile, one
// object descriptor, and the current mood value. Idempotence (at most one
// contribution per object per encounter) is enforced by the caller's noticed
// set, not here.
func ScoreObject(p *catalogs.PreferenceProfile, o *TagObject, mood float64, revealed bool, sp ScoreParams) float64 {
	if o == nil || p == nil {
		return 0
	}
	if !o.Active {
		return 0
	}
	if o.Private && !revealed {
		return 0
	}

	liked := catalogs.IntersectCount(o.TagIDs, p.LikedIDs)
	disliked := catalogs.IntersectCount(o.TagIDs, p.DislikedIDs)

	raw := p.ReactionStrength * float64(liked-disliked)
	if raw > sp.PerObjectCap {
		raw = sp.PerObjectCap
	} else if raw < -sp.PerObjectCap {
		raw = -sp.PerObjectCap
	}

	// Out-of-comfort mood dampens the match term; it never flips its sign.
	if mood < p.MoodComfortMin || mood > p.MoodComfortMax {
		raw *= sp.ComfortPenalty
	}

	// Scent is an ambient nuisance, judged independently of the liked/disliked
	// sets: a smelly mess object penalizes even a visitor who likes its tags.
	if o.Scent > 0 && sp.HasMessTag && catalogs.ContainsID(o.TagIDs, sp.MessTagID) {
		raw -= p.ReactionStrength * sp.ScentPenalty * o.Scent
	}

	return raw
}

// gradeFor maps a final affection value to a grade label via descending
// breakpoints. The last breakpoint has min 0, so there is always a match.
func gradeFor(affection float64, grades []gradeBreakpoint) string {
	for _, g := range grades {
		if affection >= g.Min {
			return g.Grade
		}
	}
	return grades[len(grades)-1].Grade
}

type gradeBreakpoint struct {
	Min   float64
	Grade string
}
