package day

import (
	"encoding/json"

	"hearthday.ai/internal/protocol"
)

func (c *Core) applyAct(env ActionEnvelope, nowTick uint64) {
	act := env.Act

	// Staleness check: accept only [now-2, now].
	if act.Tick+2 < nowTick || act.Tick > nowTick {
		c.pushEvent(actionResult(nowTick, env.HostID, "ACT", false, protocol.ErrStale, "act tick out of range"))
		return
	}

	for _, inst := range act.Instants {
		c.applyInstant(env.HostID, inst, nowTick)
	}
}

func (c *Core) applyInstant(hostID string, inst protocol.InstantReq, nowTick uint64) {
	switch inst.Type {
	case protocol.InstReadDone:
		if c.phase != protocol.PhaseMorning {
			c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrInvalidTransition, "READ_DONE only valid in MORNING"))
			return
		}
		c.setPhase(nowTick, protocol.PhasePrep)
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, true, "", "ok"))

	case protocol.InstSelectVisitor:
		c.applySelectVisitor(hostID, inst, nowTick)

	case protocol.InstReportGaze:
		c.applyGaze(hostID, inst, nowTick)

	case protocol.InstReportCheckpoint:
		c.applyCheckpoint(hostID, inst, nowTick)

	case protocol.InstRevealObject:
		if c.phase != protocol.PhaseEncounter || c.enc == nil || c.enc.resolved {
			c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrInvalidTransition, "no live encounter"))
			return
		}
		if c.registry.Get(inst.ObjectID) == nil {
			c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrUnknownRef, "unknown object "+inst.ObjectID))
			return
		}
		c.enc.revealed[inst.ObjectID] = true
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, true, "", "ok"))

	case protocol.InstSetActive:
		if inst.Active == nil {
			c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrBadRequest, "missing active"))
			return
		}
		if !c.registry.SetActive(inst.ObjectID, *inst.Active) {
			c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrUnknownRef, "unknown object "+inst.ObjectID))
			return
		}
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, true, "", "ok"))

	case protocol.InstRequestEarlyEnd:
		if c.phase != protocol.PhaseEncounter || c.enc == nil || c.enc.resolved {
			c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrInvalidTransition, "no live encounter"))
			return
		}
		c.resolveEncounter(nowTick, "EARLY_END")
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, true, "", "ok"))

	case protocol.InstGoToSleep:
		if c.phase != protocol.PhaseWindDown {
			c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrInvalidTransition, "GO_TO_SLEEP only valid in WIND_DOWN"))
			return
		}
		c.advanceDay(nowTick)
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, true, "", "ok"))

	case protocol.InstEventBatchReq:
		c.applyEventBatchReq(hostID, inst, nowTick)

	default:
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrBadRequest, "unknown instant "+inst.Type))
	}
}

func (c *Core) applySelectVisitor(hostID string, inst protocol.InstantReq, nowTick uint64) {
	if c.phase != protocol.PhasePrep {
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrInvalidTransition, "SELECT_VISITOR only valid in PREP"))
		return
	}
	if c.selector.Committed() {
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrInvalidTransition, "visitor already committed"))
		return
	}
	entry := c.cats.Content.ByID[inst.EntryID]
	if entry == nil {
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrUnknownRef, "unknown entry "+inst.EntryID))
		return
	}
	if entry.Kind != protocol.KindPersonal {
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrBadRequest, "entry is not a visitor"))
		return
	}
	if !c.selector.TodayPersonal(entry.ID) {
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrBadRequest, "entry not in today's pool"))
		return
	}

	c.selector.committed = true
	arrivalTicks := uint64(entry.ArrivalDelaySec * float64(c.cfg.Tune.TickRateHz))
	c.enc = newEncounter(entry, c.cfg.Tune.Encounter.InitialAffection, nowTick+arrivalTicks)
	c.setPhase(nowTick, protocol.PhaseEncounter)
	c.pushEvent(protocol.Event{
		"t":       nowTick,
		"type":    "ENCOUNTER_STARTED",
		"visitor": entry.ID,
	})
	c.pushEvent(actionResult(nowTick, hostID, inst.ID, true, "", "ok"))
}

func (c *Core) applyGaze(hostID string, inst protocol.InstantReq, nowTick uint64) {
	e := c.enc
	if c.phase != protocol.PhaseEncounter || e == nil || e.resolved {
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrInvalidTransition, "no live encounter"))
		return
	}
	if e.subPhase != protocol.SubFree && e.subPhase != protocol.SubCheckpoint {
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrInvalidTransition, "visitor not in free interaction"))
		return
	}
	obj := c.registry.Get(inst.ObjectID)
	if obj == nil {
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrUnknownRef, "unknown object "+inst.ObjectID))
		return
	}
	if e.noticed[obj.ID] {
		// Idempotent re-gaze: same set, zero further delta.
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, true, "", "already noticed"))
		return
	}
	if obj.Private && !e.revealed[obj.ID] {
		// A hidden object cannot be noticed; revealing it later still scores.
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, true, "", "object is out of sight"))
		return
	}
	if !obj.Active {
		// An inactive object is not notable yet; activating it later still scores.
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, true, "", "object is not notable"))
		return
	}
	e.noticed[obj.ID] = true
	delta := ScoreObject(e.Visitor.Preferences, obj, c.mood.T, e.revealed[obj.ID], c.score)
	c.pushEvent(protocol.Event{
		"t":      nowTick,
		"type":   "GAZE_SCORED",
		"object": obj.ID,
		"delta":  delta,
	})
	if v, changed := e.addAffection(delta); changed {
		c.pushEvent(protocol.Event{
			"t":      nowTick,
			"type":   "AFFECTION_CHANGED",
			"value":  v,
			"delta":  delta,
			"source": "GAZE",
			"object": obj.ID,
		})
	}
	c.pushEvent(actionResult(nowTick, hostID, inst.ID, true, "", "ok"))
}

func (c *Core) applyCheckpoint(hostID string, inst protocol.InstantReq, nowTick uint64) {
	e := c.enc
	if c.phase != protocol.PhaseEncounter || e == nil || e.resolved {
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrInvalidTransition, "no live encounter"))
		return
	}
	if e.subPhase != protocol.SubFree {
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrInvalidTransition, "visitor not in free interaction"))
		return
	}
	def := c.cats.Checkpoints.ByID[inst.CheckpointID]
	if def == nil {
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, false, protocol.ErrUnknownRef, "unknown checkpoint "+inst.CheckpointID))
		return
	}
	if e.applied[def.ID] {
		c.pushEvent(actionResult(nowTick, hostID, inst.ID, true, "", "already applied"))
		return
	}

	e.subPhase = protocol.SubCheckpoint
	e.applied[def.ID] = true

	// Scripted delta, bounded by the authored cap, independent of tag matching.
	delta := def.Delta
	bound := c.cfg.Tune.Scoring.CheckpointCap
	if delta > bound {
		delta = bound
	} else if delta < -bound {
		delta = -bound
	}
	c.pushEvent(protocol.Event{
		"t":          nowTick,
		"type":       "CHECKPOINT",
		"checkpoint": def.ID,
		"delta":      delta,
	})
	if v, changed := e.addAffection(delta); changed {
		c.pushEvent(protocol.Event{
			"t":          nowTick,
			"type":       "AFFECTION_CHANGED",
			"value":      v,
			"delta":      delta,
			"source":     "CHECKPOINT",
			"checkpoint": def.ID,
		})
	}

	e.subPhase = protocol.SubFree
	c.pushEvent(actionResult(nowTick, hostID, inst.ID, true, "", "ok"))
}

func (c *Core) applyEventBatchReq(hostID string, inst protocol.InstantReq, nowTick uint64) {
	cl := c.clients[hostID]
	if cl == nil {
		return
	}
	limit := inst.Limit
	if limit <= 0 || limit > 256 {
		limit = 256
	}
	items := c.eventsSince(inst.SinceCursor, limit)
	next := inst.SinceCursor
	if len(items) > 0 {
		next = items[len(items)-1].Cursor + 1
	}
	msg := protocol.EventBatchMsg{
		Type:            protocol.TypeEventBatch,
		ProtocolVersion: protocol.Version,
		ReqID:           inst.ID,
		Events:          items,
		NextCursor:      next,
	}
	if b, err := json.Marshal(msg); err == nil {
		sendLatest(cl.Out, b)
	}
}

func actionResult(tick uint64, hostID, ref string, ok bool, code string, message string) protocol.Event {
	if !protocol.IsKnownCode(code) {
		code = protocol.ErrInternal
		if message == "" {
			message = "unknown error code"
		}
	}
	e := protocol.Event{
		"t":    tick,
		"type": "ACTION_RESULT",
		"host": hostID,
		"ref":  ref,
		"ok":   ok,
	}
	if code != "" {
		e["code"] = code
	}
	if message != "" {
		e["message"] = message
	}
	return e
}
