package log

import (
	"path/filepath"
	"testing"

	"hearthday.ai/internal/protocol"
	"hearthday.ai/internal/sim/day"
)

func TestTickLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)

	entries := []day.TickLogEntry{
		{Tick: 0, Digest: "d0"},
		{
			Tick:   1,
			Digest: "d1",
			Actions: []day.RecordedAction{{
				HostID: "H1",
				Act: protocol.ActMsg{
					Type:            protocol.TypeAct,
					ProtocolVersion: protocol.Version,
					Tick:            1,
					HostID:          "H1",
					Instants:        []protocol.InstantReq{{ID: "R1", Type: protocol.InstReadDone}},
				},
			}},
		},
		{Tick: 2, Digest: "d2"},
	}
	for _, e := range entries {
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := ReadTickLogDir(filepath.Join(dir, "ticks"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i, e := range entries {
		if got[i].Tick != e.Tick || got[i].Digest != e.Digest {
			t.Fatalf("entry %d: %+v", i, got[i])
		}
	}
	acts := got[1].Actions
	if len(acts) != 1 || acts[0].HostID != "H1" {
		t.Fatalf("actions %+v", acts)
	}
	if len(acts[0].Act.Instants) != 1 || acts[0].Act.Instants[0].Type != protocol.InstReadDone {
		t.Fatalf("instants %+v", acts[0].Act.Instants)
	}
}

func TestAuditLogger_WritesSummaries(t *testing.T) {
	dir := t.TempDir()
	l := NewAuditLogger(dir)
	err := l.WriteSummary(day.DaySummary{
		Day: 1, Tick: 251, VisitorID: "visitor_tinkerer",
		Affection: 48, Grade: "B", Reason: "TIMEOUT", Noticed: 4,
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "audit", "summary-*.jsonl.zst"))
	if err != nil || len(paths) != 1 {
		t.Fatalf("audit files %v (%v)", paths, err)
	}
}

func TestReadTickLogDir_EmptyDirIsFine(t *testing.T) {
	got, err := ReadTickLogDir(t.TempDir())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d entries", len(got))
	}
}
