package protocol

type ObsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	HostID          string `json:"host_id"`

	Day       DayObs        `json:"day"`
	Pool      *PoolObs      `json:"pool,omitempty"`
	Encounter *EncounterObs `json:"encounter,omitempty"`
	Mood      MoodObs       `json:"mood"`

	Events []Event `json:"events"`
}

type DayObs struct {
	Day       int     `json:"day"`
	TimeOfDay float64 `json:"time_of_day"` // 0..1
	Phase     string  `json:"phase"`
}

type PoolObs struct {
	Personals   []PoolEntryObs `json:"personals"`
	Commercials []PoolEntryObs `json:"commercials"`
	Committed   bool           `json:"committed"`
}

type PoolEntryObs struct {
	ID          string `json:"id"`
	DisplayText string `json:"display_text"`
}

type EncounterObs struct {
	VisitorID       string  `json:"visitor_id"`
	SubPhase        string  `json:"sub_phase"`
	Affection       float64 `json:"affection"`
	NoticedCount    int     `json:"noticed_count"`
	ArrivalEtaTicks int     `json:"arrival_eta_ticks,omitempty"`
	EndsEtaTicks    int     `json:"ends_eta_ticks,omitempty"`
	Grade           string  `json:"grade,omitempty"`
}

type MoodObs struct {
	T             float64    `json:"t"`
	Light         [3]float64 `json:"light"`
	Ambient       [3]float64 `json:"ambient"`
	Fog           [3]float64 `json:"fog"`
	FogDensity    float64    `json:"fog_density"`
	Precipitation float64    `json:"precipitation"`
}

// ACT (host shell -> core)
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	HostID          string `json:"host_id"`

	Instants []InstantReq `json:"instants,omitempty"`
}

// Instant request types.
const (
	InstSelectVisitor    = "SELECT_VISITOR"
	InstReportGaze       = "REPORT_GAZE"
	InstReportCheckpoint = "REPORT_CHECKPOINT"
	InstRevealObject     = "REVEAL_OBJECT"
	InstSetActive        = "SET_ACTIVE"
	InstReadDone         = "READ_DONE"
	InstRequestEarlyEnd  = "REQUEST_EARLY_END"
	InstGoToSleep        = "GO_TO_SLEEP"
	InstEventBatchReq    = "EVENT_BATCH_REQ"
)

type InstantReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	EntryID      string `json:"entry_id,omitempty"`
	ObjectID     string `json:"object_id,omitempty"`
	CheckpointID string `json:"checkpoint_id,omitempty"`
	Active       *bool  `json:"active,omitempty"`

	SinceCursor uint64 `json:"since_cursor,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

type Event map[string]interface{}
