package feed

import (
	"sort"

	"quadrangle.org/core/models"
	"quadrangle.org/core/temporal"
)

// Snapshot is the latest full record set for every collection. Each
// delivery from the backend is a complete replacement, never a patch,
// so a Snapshot is all the composer ever needs to look at.
type Snapshot struct {
	Events    []models.Event
	Groups    []models.Group
	Resources []models.Resource
}

// Compose merges the three collections into one reverse-chronological
// feed. Records that cannot be dated are dropped: an entry with no
// instant has no defined position. The sort is stable, so entries with
// equal instants keep their delivered order. Compose is a pure
// function of its input; composing the same snapshot twice yields
// identical output.
func Compose(snap Snapshot) []Entry {
	entries := make([]Entry, 0, len(snap.Events)+len(snap.Groups)+len(snap.Resources))

	for i := range snap.Events {
		ev := &snap.Events[i]
		if in := temporal.Normalize(ev); in.Present() {
			entries = append(entries, Entry{Kind: models.KindEvent, Instant: in, Event: ev})
		}
	}
	for i := range snap.Groups {
		g := &snap.Groups[i]
		if in := temporal.Normalize(g); in.Present() {
			entries = append(entries, Entry{Kind: models.KindGroup, Instant: in, Group: g})
		}
	}
	for i := range snap.Resources {
		r := &snap.Resources[i]
		if in := temporal.Normalize(r); in.Present() {
			entries = append(entries, Entry{Kind: models.KindResource, Instant: in, Resource: r})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Instant.After(entries[j].Instant)
	})

	return entries
}

// Locate returns the position of the entry with the given identifier
// in an already-composed list, or -1. Missing targets are an expected
// condition (the entry may be filtered out), not an error.
func Locate(entries []Entry, id string) int {
	for i, e := range entries {
		if e.ID() == id {
			return i
		}
	}
	return -1
}
