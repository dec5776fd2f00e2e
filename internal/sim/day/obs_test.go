package day

import (
	"encoding/json"
	"testing"

	"hearthday.ai/internal/protocol"
)

func joinTestHost(c *Core, name string, out chan []byte) (string, protocol.WelcomeMsg) {
	resp := make(chan JoinResponse, 1)
	c.handleJoin(JoinRequest{Name: name, Out: out, Resp: resp})
	r := <-resp
	return r.Welcome.HostID, r.Welcome
}

func TestJoin_WelcomeCarriesCatalogDigests(t *testing.T) {
	c := newTestCore(t)
	id, welcome := joinTestHost(c, "shell", make(chan []byte, 4))
	if id != "H1" {
		t.Fatalf("host id %s", id)
	}
	if welcome.Catalogs.Content.Digest != c.cats.Content.Digest {
		t.Fatalf("content digest mismatch")
	}
	if welcome.Catalogs.Content.Count != len(c.cats.Content.Order) {
		t.Fatalf("content count %d", welcome.Catalogs.Content.Count)
	}
	if welcome.Catalogs.TagsDigest != c.cats.Tags.Digest() {
		t.Fatalf("tags digest mismatch")
	}
	if welcome.SessionParams.TickRateHz != 5 || welcome.SessionParams.DayTicks != 6000 {
		t.Fatalf("session params %+v", welcome.SessionParams)
	}

	id2, _ := joinTestHost(c, "other", make(chan []byte, 4))
	if id2 != "H2" {
		t.Fatalf("second host id %s", id2)
	}
}

func TestObs_PoolVisibleOnlyBeforeEncounter(t *testing.T) {
	c := newTestCore(t)
	out := make(chan []byte, 4)
	id, _ := joinTestHost(c, "shell", out)
	cl := c.clients[id]

	obs := c.buildObs(cl, c.tick.Load())
	if obs.Pool == nil {
		t.Fatalf("morning obs missing pool")
	}
	if len(obs.Pool.Personals) != 5 || obs.Pool.Committed {
		t.Fatalf("pool %+v", obs.Pool)
	}
	if obs.Encounter != nil {
		t.Fatalf("morning obs has encounter")
	}
	if obs.Day.Phase != protocol.PhaseMorning || obs.Day.Day != 1 {
		t.Fatalf("day obs %+v", obs.Day)
	}

	commitVisitor(t, c, "visitor_tinkerer")
	obs = c.buildObs(cl, c.tick.Load())
	if obs.Pool != nil {
		t.Fatalf("encounter obs still shows pool")
	}
	if obs.Encounter == nil {
		t.Fatalf("encounter obs missing session")
	}
	if obs.Encounter.VisitorID != "visitor_tinkerer" || obs.Encounter.SubPhase != protocol.SubFree {
		t.Fatalf("encounter obs %+v", obs.Encounter)
	}
	if obs.Encounter.EndsEtaTicks <= 0 {
		t.Fatalf("ends eta %d", obs.Encounter.EndsEtaTicks)
	}
}

func TestObs_ArrivalEtaDuringSpawn(t *testing.T) {
	c := newTestCore(t)
	out := make(chan []byte, 4)
	id, _ := joinTestHost(c, "shell", out)
	cl := c.clients[id]

	stepWith(c, id, protocol.InstantReq{ID: "R1", Type: protocol.InstReadDone})
	stepWith(c, id, protocol.InstantReq{ID: "V1", Type: protocol.InstSelectVisitor, EntryID: "visitor_tinkerer"})

	obs := c.buildObs(cl, c.tick.Load())
	if obs.Encounter == nil || obs.Encounter.SubPhase != protocol.SubSpawn {
		t.Fatalf("expected spawn obs, got %+v", obs.Encounter)
	}
	if obs.Encounter.ArrivalEtaTicks <= 0 {
		t.Fatalf("arrival eta %d", obs.Encounter.ArrivalEtaTicks)
	}
}

func TestObs_EventsDeliveredOncePerClient(t *testing.T) {
	c := newTestCore(t)
	out := make(chan []byte, 4)
	id, _ := joinTestHost(c, "shell", out)
	cl := c.clients[id]

	// Apply directly so the per-tick broadcast doesn't consume the cursor.
	c.applyInstant(id, protocol.InstantReq{ID: "R1", Type: protocol.InstReadDone}, c.tick.Load())
	first := c.buildObs(cl, c.tick.Load())
	if len(first.Events) == 0 {
		t.Fatalf("no events delivered")
	}
	second := c.buildObs(cl, c.tick.Load())
	if len(second.Events) != 0 {
		t.Fatalf("events redelivered: %v", second.Events)
	}
}

func TestEventBatch_ReplaysFromCursor(t *testing.T) {
	c := newTestCore(t)
	out := make(chan []byte, 8)
	id, _ := joinTestHost(c, "shell", out)

	// Generate a few events, then ask for everything from cursor 0.
	stepWith(c, id, protocol.InstantReq{ID: "R1", Type: protocol.InstReadDone})
	c.applyEventBatchReq(id, protocol.InstantReq{ID: "B1", Type: protocol.InstEventBatchReq, SinceCursor: 0, Limit: 100}, c.tick.Load())

	var batch protocol.EventBatchMsg
	found := false
	for !found {
		select {
		case b := <-out:
			base, err := protocol.DecodeBase(b)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if base.Type != protocol.TypeEventBatch {
				continue
			}
			if err := json.Unmarshal(b, &batch); err != nil {
				t.Fatalf("unmarshal batch: %v", err)
			}
			found = true
		default:
			t.Fatalf("no EVENT_BATCH frame on the wire")
		}
	}

	if batch.ReqID != "B1" || len(batch.Events) == 0 {
		t.Fatalf("batch %+v", batch)
	}
	if batch.NextCursor != batch.Events[len(batch.Events)-1].Cursor+1 {
		t.Fatalf("next_cursor %d", batch.NextCursor)
	}
	for i := 1; i < len(batch.Events); i++ {
		if batch.Events[i].Cursor <= batch.Events[i-1].Cursor {
			t.Fatalf("cursors not ascending")
		}
	}

	// Resuming from next_cursor yields nothing new.
	rest := c.eventsSince(batch.NextCursor, 0)
	for _, it := range rest {
		if it.Cursor < batch.NextCursor {
			t.Fatalf("eventsSince returned old cursor %d", it.Cursor)
		}
	}
}
