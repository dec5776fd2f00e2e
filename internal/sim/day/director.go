package day

import "hearthday.ai/internal/protocol"

// setPhase advances the top-level day state machine. Transitions are strictly
// cyclic: MORNING -> PREP -> ENCOUNTER -> WIND_DOWN -> MORNING. Entering a
// phase tears down the previous phase's timers first; there is no stacking
// and no re-entrancy.
func (c *Core) setPhase(nowTick uint64, next string) {
	if next == c.phase {
		return
	}
	prev := c.phase

	// Teardown: disarm anything the previous phase left armed.
	if prev == protocol.PhaseEncounter && c.enc != nil && !c.enc.resolved {
		c.enc.arrivalAtTick = 0
		c.enc.endsAtTick = 0
	}

	c.phase = next
	c.phaseTick = nowTick

	switch next {
	case protocol.PhaseMorning:
		// Clear the previous day's remnants.
		c.clearClutter(nowTick)
		c.enc = nil
	case protocol.PhasePrep:
		c.populateClutter(nowTick)
	case protocol.PhaseWindDown:
		// The grade/summary surface reads the ENCOUNTER_RESOLVED payload.
	}

	c.pushEvent(protocol.Event{
		"t":    nowTick,
		"type": "PHASE_CHANGED",
		"from": prev,
		"to":   next,
	})
}

// advanceDay is the WIND_DOWN -> MORNING edge: roll the clock, refresh the
// content pool (NEW_DAY is its sole trigger), and re-enter MORNING.
func (c *Core) advanceDay(nowTick uint64) {
	c.clock.Sleep()
	c.pushEvent(protocol.Event{
		"t":    nowTick,
		"type": "NEW_DAY",
		"day":  c.clock.Day,
	})

	personals, commercials, reset := c.selector.Refresh(c.clock.Day)
	if reset {
		c.pushEvent(protocol.Event{
			"t":    nowTick,
			"type": "POOL_NOTICE",
			"note": "pool exhausted; exclusion set recycled",
		})
	}
	c.pushEvent(protocol.Event{
		"t":           nowTick,
		"type":        "POOL_REFRESHED",
		"day":         c.clock.Day,
		"personals":   personals,
		"commercials": commercials,
	})

	c.setPhase(nowTick, protocol.PhaseMorning)
}

// populateClutter activates the day's mess objects: a deterministic draw over
// the inactive mess-tagged descriptors.
func (c *Core) populateClutter(nowTick uint64) {
	if !c.score.HasMessTag || c.cfg.Tune.Clutter.PerDay <= 0 {
		return
	}
	candidates := c.registry.TaggedInactive(c.score.MessTagID)
	if len(candidates) == 0 {
		return
	}
	n := c.cfg.Tune.Clutter.PerDay
	if n > len(candidates) {
		n = len(candidates)
	}
	ordered := make([]string, len(candidates))
	copy(ordered, candidates)
	for i := 0; i < len(ordered); i++ {
		j := i + int(hash2(c.cfg.Seed, c.clock.Day, i)%uint64(len(ordered)-i))
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}
	c.clutter = ordered[:n]
	for _, id := range c.clutter {
		c.registry.SetActive(id, true)
	}
	c.pushEvent(protocol.Event{
		"t":       nowTick,
		"type":    "CLUTTER_POPULATED",
		"objects": append([]string(nil), c.clutter...),
	})
}

func (c *Core) clearClutter(nowTick uint64) {
	if len(c.clutter) == 0 {
		return
	}
	for _, id := range c.clutter {
		c.registry.SetActive(id, false)
	}
	c.pushEvent(protocol.Event{
		"t":     nowTick,
		"type":  "CLUTTER_CLEARED",
		"count": len(c.clutter),
	})
	c.clutter = nil
}
