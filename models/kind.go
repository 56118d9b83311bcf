package models

import "fmt"

// EntityKind identifies which backend collection a record came from.
type EntityKind string

const (
	KindEvent    EntityKind = "event"
	KindGroup    EntityKind = "group"
	KindResource EntityKind = "resource"
)

func (k EntityKind) Valid() bool {
	switch k {
	case KindEvent, KindGroup, KindResource:
		return true
	}
	return false
}

func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
	return k, nil
}
