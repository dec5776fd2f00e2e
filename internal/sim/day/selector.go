package day

import (
	"sort"

	"hearthday.ai/internal/sim/catalogs"
	"hearthday.ai/internal/sim/tuning"
)

// Selector draws each day's content pool: a bounded subset of personal and
// commercial entries, without replacement within the day, and (unless repeats
// are allowed) excluding entries shown on previous days until the whole pool
// has been cycled through.
type Selector struct {
	cats *catalogs.Catalogs
	cfg  tuning.PoolTuning
	seed int64

	shown map[string]bool

	todayPersonals   []string
	todayCommercials []string
	committed        bool
}

func NewSelector(cats *catalogs.Catalogs, cfg tuning.PoolTuning, seed int64) *Selector {
	return &Selector{
		cats:  cats,
		cfg:   cfg,
		seed:  seed,
		shown: map[string]bool{},
	}
}

// Refresh draws the pools for day. reset reports that a pool's exclusion set
// was exhausted and had to be recycled; availability never goes to zero.
func (s *Selector) Refresh(day int) (personals, commercials []string, reset bool) {
	s.committed = false
	var r1, r2 bool
	s.todayPersonals, r1 = s.draw(s.cats.Content.PersonalIDs(), s.cfg.PersonalsPerDay, day, 0)
	s.todayCommercials, r2 = s.draw(s.cats.Content.CommercialIDs(), s.cfg.CommercialsPerDay, day, 1)
	return s.todayPersonals, s.todayCommercials, r1 || r2
}

func (s *Selector) draw(pool []string, n, day, salt int) ([]string, bool) {
	if n > len(pool) {
		n = len(pool)
	}
	if n <= 0 {
		return nil, false
	}

	if s.cfg.AllowRepeats {
		out := s.ordered(pool, day, salt)[:n]
		for _, id := range out {
			s.shown[id] = true
		}
		return out, false
	}

	candidates := s.ordered(s.unshown(pool), day, salt)
	out := candidates
	if len(out) > n {
		out = out[:n]
	}

	reset := false
	if len(out) < n {
		// Round-robin exhaustion: everything unshown goes in first, then the
		// exclusion set recycles and tops up the draw, skipping today's picks.
		reset = true
		for _, id := range pool {
			delete(s.shown, id)
		}
		today := map[string]bool{}
		for _, id := range out {
			today[id] = true
		}
		for _, id := range s.ordered(pool, day, salt) {
			if len(out) >= n {
				break
			}
			if today[id] {
				continue
			}
			out = append(out, id)
		}
	}

	for _, id := range out {
		s.shown[id] = true
	}
	return out, reset
}

func (s *Selector) ordered(ids []string, day, salt int) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.SliceStable(out, func(i, j int) bool {
		return hashStr(s.seed, day, salt, out[i]) < hashStr(s.seed, day, salt, out[j])
	})
	return out
}

func (s *Selector) unshown(pool []string) []string {
	out := make([]string, 0, len(pool))
	for _, id := range pool {
		if !s.shown[id] {
			out = append(out, id)
		}
	}
	return out
}

// TodayPersonal reports whether id is in today's personal pool.
func (s *Selector) TodayPersonal(id string) bool {
	for _, p := range s.todayPersonals {
		if p == id {
			return true
		}
	}
	return false
}

func (s *Selector) Today() (personals, commercials []string) {
	return s.todayPersonals, s.todayCommercials
}

func (s *Selector) Committed() bool { return s.committed }

// ShownIDs returns the cross-day exclusion set, sorted (used by digests).
func (s *Selector) ShownIDs() []string {
	out := make([]string, 0, len(s.shown))
	for id := range s.shown {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
