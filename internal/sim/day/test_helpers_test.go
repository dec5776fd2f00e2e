package day

import (
	"testing"

	"hearthday.ai/internal/protocol"
	"hearthday.ai/internal/sim/catalogs"
	"hearthday.ai/internal/sim/tuning"
)

func testTune() tuning.Tuning {
	return tuning.Tuning{
		TickRateHz:  5,
		DayTicks:    6000,
		MorningTime: 0.28,
		Encounter: tuning.EncounterTuning{
			SessionDurationTicks: 200,
			EntranceScanMax:      4,
			InitialAffection:     50,
		},
		Pool: tuning.PoolTuning{
			PersonalsPerDay:   5,
			CommercialsPerDay: 3,
		},
		Scoring: tuning.ScoringTuning{
			PerObjectCap:   10,
			ComfortPenalty: 0.5,
			ScentPenalty:   0.5,
			CheckpointCap:  15,
			MessTag:        "mess",
		},
		Mood:    tuning.MoodTuning{Source: tuning.MoodSourceTimeOfDay, BlendWeight: 0.5},
		Clutter: tuning.ClutterTuning{PerDay: 2},
		Grades: []tuning.GradeBreakpoint{
			{Min: 80, Grade: "S"},
			{Min: 60, Grade: "A"},
			{Min: 40, Grade: "B"},
			{Min: 0, Grade: "C"},
		},
	}
}

func loadTestCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

func newTestCore(t *testing.T) *Core {
	t.Helper()
	return newTestCoreWith(t, testTune())
}

func newTestCoreWith(t *testing.T, tune tuning.Tuning) *Core {
	t.Helper()
	c, err := New(Config{ID: "test", Seed: 42, Tune: tune}, loadTestCatalogs(t))
	if err != nil {
		t.Fatalf("core: %v", err)
	}
	return c
}

func stepN(c *Core, n int) {
	for i := 0; i < n; i++ {
		c.step(nil, nil, nil)
	}
}

func stepWith(c *Core, hostID string, instants ...protocol.InstantReq) {
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            c.tick.Load(),
		HostID:          hostID,
		Instants:        instants,
	}
	c.step(nil, nil, []ActionEnvelope{{HostID: hostID, Act: act}})
}

// commitVisitor drives MORNING -> PREP -> ENCOUNTER for id and steps until
// the visitor has arrived and free interaction is open.
func commitVisitor(t *testing.T, c *Core, id string) {
	t.Helper()
	stepWith(c, "H1", protocol.InstantReq{ID: "I1", Type: protocol.InstReadDone})
	if c.phase != protocol.PhasePrep {
		t.Fatalf("expected PREP, got %s", c.phase)
	}
	stepWith(c, "H1", protocol.InstantReq{ID: "I2", Type: protocol.InstSelectVisitor, EntryID: id})
	if c.phase != protocol.PhaseEncounter {
		t.Fatalf("expected ENCOUNTER, got %s", c.phase)
	}
	for i := 0; i < 1000; i++ {
		if c.enc != nil && c.enc.subPhase == protocol.SubFree {
			return
		}
		stepN(c, 1)
	}
	t.Fatalf("visitor %s never arrived", id)
}

func lastEventOfType(c *Core, typ string) protocol.Event {
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].Event["type"] == typ {
			return c.events[i].Event
		}
	}
	return nil
}

func countEventsOfType(c *Core, typ string) int {
	n := 0
	for _, it := range c.events {
		if it.Event["type"] == typ {
			n++
		}
	}
	return n
}

// lastResultFor finds the newest ACTION_RESULT for an instant ref.
func lastResultFor(t *testing.T, c *Core, ref string) protocol.Event {
	t.Helper()
	for i := len(c.events) - 1; i >= 0; i-- {
		e := c.events[i].Event
		if e["type"] == "ACTION_RESULT" && e["ref"] == ref {
			return e
		}
	}
	t.Fatalf("no ACTION_RESULT for ref %q", ref)
	return nil
}

func wantResult(t *testing.T, c *Core, ref string, ok bool, code string) {
	t.Helper()
	e := lastResultFor(t, c, ref)
	if e["ok"] != ok {
		t.Fatalf("ref %s: ok=%v, want %v (event %v)", ref, e["ok"], ok, e)
	}
	if code == "" {
		if _, has := e["code"]; has {
			t.Fatalf("ref %s: unexpected code %v", ref, e["code"])
		}
		return
	}
	if e["code"] != code {
		t.Fatalf("ref %s: code=%v, want %s", ref, e["code"], code)
	}
}

func approx(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
