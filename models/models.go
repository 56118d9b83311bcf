package models

import "slices"

// Dated is the capability the temporal normalizer consumes: the
// primary date field, the optional "HH:MM" companion, and the two
// creation-date fallbacks.
type Dated interface {
	DateField() RawDate
	TimeField() string
	CreatedAtField() RawDate
	DateCreatedField() RawDate
}

// Keyed is implemented by anything addressable by identifier within
// its own collection.
type Keyed interface {
	Key() string
}

// Event is a record from the events collection. Date holds whatever
// the author's client wrote; Time is only meaningful alongside a
// date-only Date.
type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Location    string   `json:"location,omitempty"`

	Date RawDate `json:"date,omitempty"`
	Time string  `json:"time,omitempty"`

	CreatedAt   RawDate `json:"createdAt,omitempty"`
	DateCreated RawDate `json:"dateCreated,omitempty"`

	// GroupID is empty for campus-wide events.
	GroupID   string `json:"groupId,omitempty"`
	CreatedBy string `json:"createdBy,omitempty"`
}

func (e Event) Key() string              { return e.ID }
func (e Event) DateField() RawDate       { return e.Date }
func (e Event) TimeField() string        { return e.Time }
func (e Event) CreatedAtField() RawDate  { return e.CreatedAt }
func (e Event) DateCreatedField() RawDate { return e.DateCreated }

// Global reports whether the event is visible campus-wide rather than
// scoped to a group.
func (e Event) Global() bool { return e.GroupID == "" }

// Group is a record from the groups collection.
type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	OwnerID  string   `json:"ownerId,omitempty"`
	JoinedBy []string `json:"joinedBy,omitempty"`

	// ActivityScore ranks groups within filtered views.
	ActivityScore int `json:"activityScore,omitempty"`

	CreatedAt   RawDate `json:"createdAt,omitempty"`
	DateCreated RawDate `json:"dateCreated,omitempty"`
	CreatedBy   string  `json:"createdBy,omitempty"`
}

func (g Group) Key() string              { return g.ID }
func (g Group) DateField() RawDate       { return MissingDate() }
func (g Group) TimeField() string        { return "" }
func (g Group) CreatedAtField() RawDate  { return g.CreatedAt }
func (g Group) DateCreatedField() RawDate { return g.DateCreated }

func (g Group) OwnedBy(userID string) bool {
	return userID != "" && g.OwnerID == userID
}

func (g Group) JoinedByUser(userID string) bool {
	return userID != "" && slices.Contains(g.JoinedBy, userID)
}

// Resource is a record from the resources collection.
type Resource struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	URL         string   `json:"url,omitempty"`

	CreatedAt   RawDate `json:"createdAt,omitempty"`
	DateCreated RawDate `json:"dateCreated,omitempty"`
	CreatedBy   string  `json:"createdBy,omitempty"`
}

func (r Resource) Key() string              { return r.ID }
func (r Resource) DateField() RawDate       { return MissingDate() }
func (r Resource) TimeField() string        { return "" }
func (r Resource) CreatedAtField() RawDate  { return r.CreatedAt }
func (r Resource) DateCreatedField() RawDate { return r.DateCreated }
