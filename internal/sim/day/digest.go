package day

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// canonicalState is the digest input: every field rendered deterministically
// (floats formatted, sets sorted) so equal runs produce equal digests.
type canonicalState struct {
	Tick      uint64   `json:"tick"`
	Day       int      `json:"day"`
	TimeOfDay string   `json:"time_of_day"`
	Phase     string   `json:"phase"`
	MoodT     string   `json:"mood_t"`
	ActiveIDs []string `json:"active_ids"`
	Clutter   []string `json:"clutter"`

	PoolPersonals   []string `json:"pool_personals"`
	PoolCommercials []string `json:"pool_commercials"`
	PoolCommitted   bool     `json:"pool_committed"`
	Shown           []string `json:"shown"`

	Encounter *canonicalEncounter `json:"encounter,omitempty"`
}

type canonicalEncounter struct {
	Visitor     string   `json:"visitor"`
	SubPhase    string   `json:"sub_phase"`
	Affection   string   `json:"affection"`
	Grade       string   `json:"grade,omitempty"`
	Noticed     []string `json:"noticed"`
	Revealed    []string `json:"revealed"`
	Checkpoints []string `json:"checkpoints"`
	ArrivalAt   uint64   `json:"arrival_at"`
	EndsAt      uint64   `json:"ends_at"`
	Resolved    bool     `json:"resolved"`
}

func (c *Core) stateDigest(nowTick uint64) string {
	personals, commercials := c.selector.Today()
	st := canonicalState{
		Tick:            nowTick,
		Day:             c.clock.Day,
		TimeOfDay:       strconv.FormatFloat(c.clock.TimeOfDay, 'f', 9, 64),
		Phase:           c.phase,
		MoodT:           strconv.FormatFloat(c.mood.T, 'f', 9, 64),
		ActiveIDs:       c.registry.ActiveIDs(),
		Clutter:         append([]string{}, c.clutter...),
		PoolPersonals:   append([]string{}, personals...),
		PoolCommercials: append([]string{}, commercials...),
		PoolCommitted:   c.selector.Committed(),
		Shown:           c.selector.ShownIDs(),
	}
	if e := c.enc; e != nil {
		st.Encounter = &canonicalEncounter{
			Visitor:     e.Visitor.ID,
			SubPhase:    e.subPhase,
			Affection:   strconv.FormatFloat(e.Affection, 'f', 6, 64),
			Grade:       e.Grade,
			Noticed:     e.noticedIDs(),
			Revealed:    e.revealedIDs(),
			Checkpoints: e.appliedIDs(),
			ArrivalAt:   e.arrivalAtTick,
			EndsAt:      e.endsAtTick,
			Resolved:    e.resolved,
		}
	}

	b, err := json.Marshal(st)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// StateDigest exposes the digest for replays and admin tooling.
func (c *Core) StateDigest() string {
	return c.stateDigest(c.tick.Load())
}
