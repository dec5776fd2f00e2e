package day

import "hearthday.ai/internal/protocol"

// TickLogEntry records one tick's inputs and resulting digest, enough to
// replay a run deterministically.
type TickLogEntry struct {
	Tick    uint64           `json:"tick"`
	Actions []RecordedAction `json:"actions,omitempty"`
	Digest  string           `json:"digest"`
}

type RecordedAction struct {
	HostID string          `json:"host_id"`
	Act    protocol.ActMsg `json:"act"`
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

// DaySummary is the resolved outcome of one day's encounter.
type DaySummary struct {
	Day         int     `json:"day"`
	Tick        uint64  `json:"tick"`
	VisitorID   string  `json:"visitor_id"`
	Affection   float64 `json:"affection"`
	Grade       string  `json:"grade"`
	Reason      string  `json:"reason"`
	Noticed     int     `json:"noticed"`
	Checkpoints int     `json:"checkpoints"`
}

type AuditLogger interface {
	WriteSummary(s DaySummary) error
}
