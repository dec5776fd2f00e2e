package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Catalogs struct {
	Tags *TagInterner

	Content     ContentCatalog
	Objects     ObjectCatalog
	Checkpoints CheckpointCatalog
	Mood        MoodProfile
}

type ContentCatalog struct {
	ByID   map[string]*ContentEntry
	Order  []string // authored order, stable across loads
	Digest string
}

type ContentEntry struct {
	ID              string             `json:"id"`
	Kind            string             `json:"kind"` // "PERSONAL","COMMERCIAL"
	DisplayText     string             `json:"display_text"`
	ArrivalDelaySec float64            `json:"arrival_delay_sec,omitempty"`
	Preferences     *PreferenceProfile `json:"preferences,omitempty"`
}

type PreferenceProfile struct {
	LikedTags        []string `json:"liked_tags"`
	DislikedTags     []string `json:"disliked_tags"`
	MoodComfortMin   float64  `json:"mood_comfort_min"`
	MoodComfortMax   float64  `json:"mood_comfort_max"`
	ReactionStrength float64  `json:"reaction_strength"`

	// Interned tag id sets, sorted. Filled by Load.
	LikedIDs    []uint16 `json:"-"`
	DislikedIDs []uint16 `json:"-"`
}

type ObjectCatalog struct {
	ByID   map[string]*ObjectDef
	Order  []string
	Digest string
}

type ObjectDef struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"display_name"`
	Tags         []string `json:"tags"`
	Active       bool     `json:"active"`
	Private      bool     `json:"private"`
	Scent        float64  `json:"scent,omitempty"`
	EntryVisible bool     `json:"entry_visible,omitempty"`

	TagIDs []uint16 `json:"-"` // interned, sorted
}

type CheckpointCatalog struct {
	ByID   map[string]*CheckpointDef
	Order  []string
	Digest string
}

type CheckpointDef struct {
	ID          string  `json:"id"`
	Delta       float64 `json:"delta"`
	Description string  `json:"description,omitempty"`
}

type MoodProfile struct {
	Points []MoodPoint `json:"points"`
	Digest string      `json:"-"`
}

// MoodPoint is one control point of the environment gradient set.
type MoodPoint struct {
	T             float64    `json:"t"`
	Light         [3]float64 `json:"light"`
	Ambient       [3]float64 `json:"ambient"`
	Fog           [3]float64 `json:"fog"`
	FogDensity    float64    `json:"fog_density"`
	Precipitation float64    `json:"precipitation"`
}

// Load reads the authored catalogs from dir and validates them. Validation
// failures mean the authored data is self-contradictory and are fatal.
func Load(dir string) (*Catalogs, error) {
	c := &Catalogs{}

	var contentFile struct {
		Entries []*ContentEntry `json:"entries"`
	}
	raw, err := readCatalogFile(filepath.Join(dir, "content.json"), &contentFile)
	if err != nil {
		return nil, err
	}
	c.Content = ContentCatalog{ByID: map[string]*ContentEntry{}, Digest: digestOf(raw)}
	for _, e := range contentFile.Entries {
		if e.ID == "" {
			return nil, fmt.Errorf("content.json: entry with empty id")
		}
		if _, dup := c.Content.ByID[e.ID]; dup {
			return nil, fmt.Errorf("content.json: duplicate entry id %q", e.ID)
		}
		switch e.Kind {
		case "PERSONAL":
			if e.Preferences == nil {
				return nil, fmt.Errorf("content.json: personal entry %q missing preferences", e.ID)
			}
			if e.ArrivalDelaySec < 0 {
				return nil, fmt.Errorf("content.json: entry %q arrival_delay_sec must be >= 0", e.ID)
			}
		case "COMMERCIAL":
			if e.Preferences != nil || e.ArrivalDelaySec != 0 {
				return nil, fmt.Errorf("content.json: commercial entry %q must not carry preferences or arrival delay", e.ID)
			}
		default:
			return nil, fmt.Errorf("content.json: entry %q has unknown kind %q", e.ID, e.Kind)
		}
		if p := e.Preferences; p != nil {
			if p.MoodComfortMin < 0 || p.MoodComfortMax > 1 || p.MoodComfortMin > p.MoodComfortMax {
				return nil, fmt.Errorf("content.json: entry %q comfort range [%v,%v] invalid", e.ID, p.MoodComfortMin, p.MoodComfortMax)
			}
			if p.ReactionStrength <= 0 {
				return nil, fmt.Errorf("content.json: entry %q reaction_strength must be > 0, got %v", e.ID, p.ReactionStrength)
			}
		}
		c.Content.ByID[e.ID] = e
		c.Content.Order = append(c.Content.Order, e.ID)
	}

	var objectsFile struct {
		Objects []*ObjectDef `json:"objects"`
	}
	raw, err = readCatalogFile(filepath.Join(dir, "objects.json"), &objectsFile)
	if err != nil {
		return nil, err
	}
	c.Objects = ObjectCatalog{ByID: map[string]*ObjectDef{}, Digest: digestOf(raw)}
	for _, o := range objectsFile.Objects {
		if o.ID == "" {
			return nil, fmt.Errorf("objects.json: object with empty id")
		}
		if _, dup := c.Objects.ByID[o.ID]; dup {
			return nil, fmt.Errorf("objects.json: duplicate object id %q", o.ID)
		}
		if o.Scent < 0 {
			return nil, fmt.Errorf("objects.json: object %q scent must be >= 0, got %v", o.ID, o.Scent)
		}
		c.Objects.ByID[o.ID] = o
		c.Objects.Order = append(c.Objects.Order, o.ID)
	}

	var checkpointsFile struct {
		Checkpoints []*CheckpointDef `json:"checkpoints"`
	}
	raw, err = readCatalogFile(filepath.Join(dir, "checkpoints.json"), &checkpointsFile)
	if err != nil {
		return nil, err
	}
	c.Checkpoints = CheckpointCatalog{ByID: map[string]*CheckpointDef{}, Digest: digestOf(raw)}
	for _, cp := range checkpointsFile.Checkpoints {
		if cp.ID == "" {
			return nil, fmt.Errorf("checkpoints.json: checkpoint with empty id")
		}
		if _, dup := c.Checkpoints.ByID[cp.ID]; dup {
			return nil, fmt.Errorf("checkpoints.json: duplicate checkpoint id %q", cp.ID)
		}
		c.Checkpoints.ByID[cp.ID] = cp
		c.Checkpoints.Order = append(c.Checkpoints.Order, cp.ID)
	}

	raw, err = readCatalogFile(filepath.Join(dir, "mood_profile.json"), &c.Mood)
	if err != nil {
		return nil, err
	}
	c.Mood.Digest = digestOf(raw)
	if len(c.Mood.Points) < 2 {
		return nil, fmt.Errorf("mood_profile.json: need at least 2 control points, got %d", len(c.Mood.Points))
	}
	prev := -1.0
	for i, p := range c.Mood.Points {
		if p.T < 0 || p.T > 1 {
			return nil, fmt.Errorf("mood_profile.json: points[%d].t must be in [0,1], got %v", i, p.T)
		}
		if p.T <= prev {
			return nil, fmt.Errorf("mood_profile.json: points must be strictly ascending by t, got %v after %v", p.T, prev)
		}
		prev = p.T
		if p.FogDensity < 0 || p.Precipitation < 0 {
			return nil, fmt.Errorf("mood_profile.json: points[%d] scalar values must be >= 0", i)
		}
	}

	// Intern the open tag vocabulary to compact ids.
	c.Tags = newInterner(c)
	for _, id := range c.Content.Order {
		if p := c.Content.ByID[id].Preferences; p != nil {
			p.LikedIDs = c.Tags.Intern(p.LikedTags)
			p.DislikedIDs = c.Tags.Intern(p.DislikedTags)
		}
	}
	for _, id := range c.Objects.Order {
		o := c.Objects.ByID[id]
		o.TagIDs = c.Tags.Intern(o.Tags)
	}

	return c, nil
}

func readCatalogFile(path string, v any) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return raw, nil
}

func digestOf(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// PersonalIDs returns the ids of personal entries in authored order.
func (c ContentCatalog) PersonalIDs() []string {
	return c.idsOfKind("PERSONAL")
}

// CommercialIDs returns the ids of commercial entries in authored order.
func (c ContentCatalog) CommercialIDs() []string {
	return c.idsOfKind("COMMERCIAL")
}

func (c ContentCatalog) idsOfKind(kind string) []string {
	out := make([]string, 0, len(c.Order))
	for _, id := range c.Order {
		if c.ByID[id].Kind == kind {
			out = append(out, id)
		}
	}
	return out
}

// SortedObjectIDs returns object ids sorted lexically, for deterministic scans.
func (c ObjectCatalog) SortedObjectIDs() []string {
	ids := make([]string, len(c.Order))
	copy(ids, c.Order)
	sort.Strings(ids)
	return ids
}
