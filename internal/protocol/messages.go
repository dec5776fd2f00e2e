package protocol

// HELLO (host shell -> core)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	HostName        string            `json:"host_name"`
	Capabilities    HelloCapabilities `json:"capabilities,omitempty"`
}

type HelloCapabilities struct {
	EventCursor   bool `json:"event_cursor,omitempty"`
	ObsEveryTicks int  `json:"obs_every_ticks,omitempty"`
}

// WELCOME (core -> host shell)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	HostID          string         `json:"host_id"`
	SessionID       string         `json:"session_id,omitempty"`
	SessionParams   SessionParams  `json:"session_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type SessionParams struct {
	TickRateHz  int     `json:"tick_rate_hz"`
	DayTicks    int     `json:"day_ticks"`
	MorningTime float64 `json:"morning_time"`
	Seed        int64   `json:"seed"`
}

type CatalogDigests struct {
	Content           DigestRef `json:"content"`
	Objects           DigestRef `json:"objects"`
	Checkpoints       DigestRef `json:"checkpoints"`
	MoodProfileDigest string    `json:"mood_profile_digest"`
	TagsDigest        string    `json:"tags_digest"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// CATALOG (core -> host shell): one authored catalog as a single part.
type CatalogMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Name            string      `json:"name"`   // e.g. "content"
	Digest          string      `json:"digest"` // sha256 hex
	Part            int         `json:"part"`
	TotalParts      int         `json:"total_parts"`
	Data            interface{} `json:"data"`
}
