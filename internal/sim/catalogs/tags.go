package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// TagInterner maps the open tag vocabulary to compact ids assigned in sorted
// order at load time, so tag-set intersections are integer compares instead of
// string hashing.
type TagInterner struct {
	byText map[string]uint16
	texts  []string
	digest string
}

func newInterner(c *Catalogs) *TagInterner {
	seen := map[string]struct{}{}
	collect := func(tags []string) {
		for _, t := range tags {
			if t != "" {
				seen[t] = struct{}{}
			}
		}
	}
	for _, id := range c.Content.Order {
		if p := c.Content.ByID[id].Preferences; p != nil {
			collect(p.LikedTags)
			collect(p.DislikedTags)
		}
	}
	for _, id := range c.Objects.Order {
		collect(c.Objects.ByID[id].Tags)
	}

	texts := make([]string, 0, len(seen))
	for t := range seen {
		texts = append(texts, t)
	}
	sort.Strings(texts)

	in := &TagInterner{byText: make(map[string]uint16, len(texts)), texts: texts}
	for i, t := range texts {
		in.byText[t] = uint16(i)
	}
	sum := sha256.Sum256([]byte(strings.Join(texts, "\n")))
	in.digest = hex.EncodeToString(sum[:])
	return in
}

// ID returns the interned id for a tag and whether it is in the vocabulary.
func (in *TagInterner) ID(text string) (uint16, bool) {
	id, ok := in.byText[text]
	return id, ok
}

// Text returns the tag text for an interned id.
func (in *TagInterner) Text(id uint16) string {
	if int(id) >= len(in.texts) {
		return ""
	}
	return in.texts[id]
}

// Intern maps tag texts to a sorted, de-duplicated id slice. Tags outside the
// vocabulary are dropped (Intern is only called on the texts the vocabulary
// was built from).
func (in *TagInterner) Intern(tags []string) []uint16 {
	ids := make([]uint16, 0, len(tags))
	for _, t := range tags {
		if id, ok := in.byText[t]; ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := ids[:0]
	var last uint16
	for i, id := range ids {
		if i > 0 && id == last {
			continue
		}
		out = append(out, id)
		last = id
	}
	return out
}

// Count returns the vocabulary size.
func (in *TagInterner) Count() int { return len(in.texts) }

// Digest is a stable hash of the sorted vocabulary.
func (in *TagInterner) Digest() string { return in.digest }

// IntersectCount counts common ids in two sorted id slices.
func IntersectCount(a, b []uint16) int {
	n, i, j := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			n++
			i++
			j++
		}
	}
	return n
}

// ContainsID reports whether a sorted id slice contains id.
func ContainsID(ids []uint16, id uint16) bool {
	i := sort.Search(len(ids), func(k int) bool { return ids[k] >= id })
	return i < len(ids) && ids[i] == id
}
