package day

import (
	"sort"

	"hearthday.ai/internal/sim/catalogs"
)

// TagObject is the runtime descriptor of one placed prop. It carries no
// encounter-scoped state; "already scored" lives in the encounter's noticed
// set so every object starts unscored again on the next day's visit.
type TagObject struct {
	ID           string
	DisplayName  string
	Tags         []string
	TagIDs       []uint16 // interned, sorted
	Active       bool
	Private      bool
	Scent        float64
	EntryVisible bool
}

// TagRegistry holds the placed-prop descriptors, created at load time and
// toggled (never destroyed) by host signals.
type TagRegistry struct {
	byID  map[string]*TagObject
	order []string // sorted ids for deterministic iteration
}

func NewTagRegistry(cats *catalogs.Catalogs) *TagRegistry {
	r := &TagRegistry{byID: make(map[string]*TagObject, len(cats.Objects.Order))}
	for _, id := range cats.Objects.Order {
		def := cats.Objects.ByID[id]
		r.byID[id] = &TagObject{
			ID:           def.ID,
			DisplayName:  def.DisplayName,
			Tags:         def.Tags,
			TagIDs:       def.TagIDs,
			Active:       def.Active,
			Private:      def.Private,
			Scent:        def.Scent,
			EntryVisible: def.EntryVisible,
		}
		r.order = append(r.order, id)
	}
	sort.Strings(r.order)
	return r
}

func (r *TagRegistry) Get(id string) *TagObject {
	return r.byID[id]
}

// SetActive toggles a descriptor and reports whether it exists.
func (r *TagRegistry) SetActive(id string, active bool) bool {
	o := r.byID[id]
	if o == nil {
		return false
	}
	o.Active = active
	return true
}

// EntryVisible returns up to max entry-vantage objects in id order.
// max must be positive (enforced by tuning validation).
func (r *TagRegistry) EntryVisible(max int) []*TagObject {
	out := make([]*TagObject, 0, max)
	for _, id := range r.order {
		o := r.byID[id]
		if !o.EntryVisible {
			continue
		}
		out = append(out, o)
		if len(out) >= max {
			break
		}
	}
	return out
}

// ActiveIDs returns the ids of currently active objects, sorted.
func (r *TagRegistry) ActiveIDs() []string {
	out := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if r.byID[id].Active {
			out = append(out, id)
		}
	}
	return out
}

// TaggedInactive returns sorted ids of inactive objects carrying tagID.
func (r *TagRegistry) TaggedInactive(tagID uint16) []string {
	out := []string{}
	for _, id := range r.order {
		o := r.byID[id]
		if !o.Active && catalogs.ContainsID(o.TagIDs, tagID) {
			out = append(out, id)
		}
	}
	return out
}
