package feed

import (
	"sort"
	"strings"

	"quadrangle.org/core/models"
)

// CategoryAll is the category sentinel that matches every entry.
const CategoryAll = "All"

// Filter is the free-text query and category selector applied on top
// of a composed feed. A zero Filter matches everything.
type Filter struct {
	Query    string
	Category string
}

// Matches reports whether an entry passes the filter: the category
// must match exactly (or be the All sentinel), and the query, when
// non-empty, must appear case-insensitively in the entry's title,
// joined tags, or description.
func (f Filter) Matches(e Entry) bool {
	if f.Category != "" && f.Category != CategoryAll && e.category() != f.Category {
		return false
	}

	q := strings.TrimSpace(f.Query)
	if q == "" {
		return true
	}
	q = strings.ToLower(q)

	if strings.Contains(strings.ToLower(e.title()), q) {
		return true
	}
	if strings.Contains(strings.ToLower(strings.Join(e.tags(), " ")), q) {
		return true
	}
	return strings.Contains(strings.ToLower(e.description()), q)
}

// Events returns the event entries passing the filter, in feed order.
func (f Filter) Events(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Kind == models.KindEvent && f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Groups returns the group entries passing the filter, reordered for
// the groups screen: groups the viewer belongs to first, then by
// activity score descending. Ties keep feed order (the sort is
// stable).
func (f Filter) Groups(entries []Entry, viewerID string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Kind == models.KindGroup && f.Matches(e) {
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		gi, gj := out[i].Group, out[j].Group
		ji := gi.JoinedByUser(viewerID) || gi.OwnedBy(viewerID)
		jj := gj.JoinedByUser(viewerID) || gj.OwnedBy(viewerID)
		if ji != jj {
			return ji
		}
		return gi.ActivityScore > gj.ActivityScore
	})

	return out
}
