package day

import (
	"sort"

	"hearthday.ai/internal/protocol"
	"hearthday.ai/internal/sim/catalogs"
)

// Encounter is the nested lifecycle of a single scripted visit. Exactly one
// may be live per day; it becomes inert at resolution and is cleared when the
// next morning starts.
type Encounter struct {
	Visitor   *catalogs.ContentEntry
	Affection float64
	Grade     string

	subPhase string

	// Monotonic within one encounter; an object contributes at most once.
	noticed  map[string]bool
	revealed map[string]bool
	applied  map[string]bool // checkpoints already applied

	arrivalAtTick uint64
	endsAtTick    uint64

	resolved       bool
	resolvedReason string
}

func newEncounter(visitor *catalogs.ContentEntry, initialAffection float64, arrivalAtTick uint64) *Encounter {
	return &Encounter{
		Visitor:       visitor,
		Affection:     clampAffection(initialAffection),
		subPhase:      protocol.SubSpawn,
		noticed:       map[string]bool{},
		revealed:      map[string]bool{},
		applied:       map[string]bool{},
		arrivalAtTick: arrivalAtTick,
	}
}

func clampAffection(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// addAffection applies one delta and clamps immediately, so an intermediate
// value can never leave [0,100] and leak into a comparison.
func (e *Encounter) addAffection(delta float64) (value float64, changed bool) {
	before := e.Affection
	e.Affection = clampAffection(e.Affection + delta)
	return e.Affection, e.Affection != before
}

func (e *Encounter) noticedIDs() []string {
	out := make([]string, 0, len(e.noticed))
	for id := range e.noticed {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (e *Encounter) revealedIDs() []string {
	out := make([]string, 0, len(e.revealed))
	for id := range e.revealed {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (e *Encounter) appliedIDs() []string {
	out := make([]string, 0, len(e.applied))
	for id := range e.applied {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// systemEncounter advances the visit's timers: spawn arrival and the fixed
// session duration. Event-driven moves (gaze, checkpoints, early end) happen
// in the action path.
func (c *Core) systemEncounter(nowTick uint64) {
	if c.phase != protocol.PhaseEncounter || c.enc == nil || c.enc.resolved {
		return
	}
	e := c.enc
	switch e.subPhase {
	case protocol.SubSpawn:
		if nowTick >= e.arrivalAtTick {
			c.pushEvent(protocol.Event{
				"t":       nowTick,
				"type":    "VISITOR_ARRIVED",
				"visitor": e.Visitor.ID,
			})
			c.entranceAppraisal(nowTick)
		}
	case protocol.SubFree, protocol.SubCheckpoint:
		if e.endsAtTick != 0 && nowTick >= e.endsAtTick {
			c.resolveEncounter(nowTick, "TIMEOUT")
		}
	}
}

// entranceAppraisal scores the fixed entry-vantage scan once, then opens free
// interaction and arms the session timer.
func (c *Core) entranceAppraisal(nowTick uint64) {
	e := c.enc
	e.subPhase = protocol.SubEntrance

	var total float64
	scanned := 0
	for _, o := range c.registry.EntryVisible(c.cfg.Tune.Encounter.EntranceScanMax) {
		if e.noticed[o.ID] {
			continue
		}
		if !o.Active || (o.Private && !e.revealed[o.ID]) {
			// Not notable at the entry vantage; a later activation or
			// reveal still scores.
			continue
		}
		e.noticed[o.ID] = true
		scanned++
		delta := ScoreObject(e.Visitor.Preferences, o, c.mood.T, e.revealed[o.ID], c.score)
		if delta == 0 {
			continue
		}
		total += delta
		if v, changed := e.addAffection(delta); changed {
			c.pushEvent(protocol.Event{
				"t":      nowTick,
				"type":   "AFFECTION_CHANGED",
				"value":  v,
				"delta":  delta,
				"source": "ENTRANCE",
				"object": o.ID,
			})
		}
	}
	c.pushEvent(protocol.Event{
		"t":       nowTick,
		"type":    "ENTRANCE_APPRAISAL",
		"visitor": e.Visitor.ID,
		"scanned": scanned,
		"delta":   total,
	})

	e.subPhase = protocol.SubFree
	e.endsAtTick = nowTick + uint64(c.cfg.Tune.Encounter.SessionDurationTicks)
}

// resolveEncounter computes the grade, emits the summary, and makes the
// session inert. Pending timers are disarmed so nothing fires afterwards.
func (c *Core) resolveEncounter(nowTick uint64, reason string) {
	e := c.enc
	if e == nil || e.resolved {
		return
	}
	e.resolved = true
	e.resolvedReason = reason
	e.subPhase = protocol.SubResolution
	e.arrivalAtTick = 0
	e.endsAtTick = 0
	e.Grade = gradeFor(e.Affection, c.grades)

	c.pushEvent(protocol.Event{
		"t":           nowTick,
		"type":        "ENCOUNTER_RESOLVED",
		"visitor":     e.Visitor.ID,
		"affection":   e.Affection,
		"grade":       e.Grade,
		"reason":      reason,
		"noticed":     len(e.noticed),
		"checkpoints": len(e.applied),
	})

	if c.auditLogger != nil {
		_ = c.auditLogger.WriteSummary(DaySummary{
			Day:         c.clock.Day,
			Tick:        nowTick,
			VisitorID:   e.Visitor.ID,
			Affection:   e.Affection,
			Grade:       e.Grade,
			Reason:      reason,
			Noticed:     len(e.noticed),
			Checkpoints: len(e.applied),
		})
	}

	c.setPhase(nowTick, protocol.PhaseWindDown)
}
