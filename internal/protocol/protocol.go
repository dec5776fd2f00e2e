package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello         = "HELLO"
	TypeWelcome       = "WELCOME"
	TypeCatalog       = "CATALOG"
	TypeObs           = "OBS"
	TypeAct           = "ACT"
	TypeEventBatchReq = "EVENT_BATCH_REQ"
	TypeEventBatch    = "EVENT_BATCH"
)

// Day phases as they appear on the wire.
const (
	PhaseMorning   = "MORNING"
	PhasePrep      = "PREP"
	PhaseEncounter = "ENCOUNTER"
	PhaseWindDown  = "WIND_DOWN"
)

// Encounter sub-phases.
const (
	SubSpawn      = "SPAWN"
	SubEntrance   = "ENTRANCE_APPRAISAL"
	SubFree       = "FREE_INTERACTION"
	SubCheckpoint = "CHECKPOINT"
	SubResolution = "RESOLUTION"
)

// Content kinds.
const (
	KindPersonal   = "PERSONAL"
	KindCommercial = "COMMERCIAL"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
