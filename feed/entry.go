package feed

import (
	"quadrangle.org/core/models"
	"quadrangle.org/core/temporal"
)

// Entry is a record tagged with its source collection and resolved
// instant, ready for ordering. Exactly one of Event, Group, Resource
// is set, matching Kind.
type Entry struct {
	Kind    models.EntityKind
	Instant temporal.Instant

	Event    *models.Event
	Group    *models.Group
	Resource *models.Resource
}

func (e Entry) ID() string {
	switch e.Kind {
	case models.KindEvent:
		return e.Event.ID
	case models.KindGroup:
		return e.Group.ID
	case models.KindResource:
		return e.Resource.ID
	}
	return ""
}

func (e Entry) CreatedBy() string {
	switch e.Kind {
	case models.KindEvent:
		return e.Event.CreatedBy
	case models.KindGroup:
		return e.Group.CreatedBy
	case models.KindResource:
		return e.Resource.CreatedBy
	}
	return ""
}

func (e Entry) title() string {
	switch e.Kind {
	case models.KindEvent:
		return e.Event.Title
	case models.KindGroup:
		return e.Group.Name
	case models.KindResource:
		return e.Resource.Title
	}
	return ""
}

func (e Entry) description() string {
	switch e.Kind {
	case models.KindEvent:
		return e.Event.Description
	case models.KindGroup:
		return e.Group.Description
	case models.KindResource:
		return e.Resource.Description
	}
	return ""
}

func (e Entry) category() string {
	switch e.Kind {
	case models.KindEvent:
		return e.Event.Category
	case models.KindGroup:
		return e.Group.Category
	case models.KindResource:
		return e.Resource.Category
	}
	return ""
}

func (e Entry) tags() []string {
	switch e.Kind {
	case models.KindEvent:
		return e.Event.Tags
	case models.KindGroup:
		return e.Group.Tags
	case models.KindResource:
		return e.Resource.Tags
	}
	return nil
}
