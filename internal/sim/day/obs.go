package day

import (
	"encoding/json"

	"hearthday.ai/internal/protocol"
)

func (c *Core) broadcastObs(nowTick uint64) {
	for _, cl := range c.clients {
		if nowTick%uint64(cl.obsEveryTicks) != 0 {
			continue
		}
		obs := c.buildObs(cl, nowTick)
		b, err := json.Marshal(obs)
		if err != nil {
			continue
		}
		sendLatest(cl.Out, b)
	}
}

func (c *Core) buildObs(cl *clientState, nowTick uint64) protocol.ObsMsg {
	obs := protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		HostID:          cl.ID,
		Day: protocol.DayObs{
			Day:       c.clock.Day,
			TimeOfDay: c.clock.TimeOfDay,
			Phase:     c.phase,
		},
		Mood: protocol.MoodObs{
			T:             c.mood.T,
			Light:         c.mood.Light,
			Ambient:       c.mood.Ambient,
			Fog:           c.mood.Fog,
			FogDensity:    c.mood.FogDensity,
			Precipitation: c.mood.Precipitation,
		},
		Events: []protocol.Event{},
	}

	// The day's pool is readable while mail is open and during prep.
	if c.phase == protocol.PhaseMorning || c.phase == protocol.PhasePrep {
		personals, commercials := c.selector.Today()
		pool := &protocol.PoolObs{Committed: c.selector.Committed()}
		for _, id := range personals {
			pool.Personals = append(pool.Personals, c.poolEntryObs(id))
		}
		for _, id := range commercials {
			pool.Commercials = append(pool.Commercials, c.poolEntryObs(id))
		}
		obs.Pool = pool
	}

	if e := c.enc; e != nil {
		eo := &protocol.EncounterObs{
			VisitorID:    e.Visitor.ID,
			SubPhase:     e.subPhase,
			Affection:    e.Affection,
			NoticedCount: len(e.noticed),
			Grade:        e.Grade,
		}
		if e.subPhase == protocol.SubSpawn && e.arrivalAtTick > nowTick {
			eo.ArrivalEtaTicks = int(e.arrivalAtTick - nowTick)
		}
		if !e.resolved && e.endsAtTick > nowTick {
			eo.EndsEtaTicks = int(e.endsAtTick - nowTick)
		}
		obs.Encounter = eo
	}

	for _, it := range c.eventsSince(cl.cursor, 0) {
		obs.Events = append(obs.Events, it.Event)
	}
	cl.cursor = c.nextCursor

	return obs
}

func (c *Core) poolEntryObs(id string) protocol.PoolEntryObs {
	entry := c.cats.Content.ByID[id]
	return protocol.PoolEntryObs{ID: entry.ID, DisplayText: entry.DisplayText}
}
