package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawDateUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind DateKind
	}{
		{"iso string", `{"date": "2025-10-26T14:30:00Z"}`, DateString},
		{"date only string", `{"date": "2025-10-26"}`, DateString},
		{"timestamp object", `{"date": {"seconds": 1761480000, "nanoseconds": 0}}`, DateTimestamp},
		{"underscored timestamp", `{"date": {"_seconds": 1761480000, "_nanoseconds": 500}}`, DateTimestamp},
		{"null", `{"date": null}`, DateMissing},
		{"absent", `{}`, DateMissing},
		{"empty string", `{"date": ""}`, DateMissing},
		{"unrecognized object", `{"date": {"foo": "bar"}}`, DateMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Event
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &e))
			assert.Equal(t, tt.kind, e.Date.Kind())
		})
	}
}

func TestRawDateTimestampValue(t *testing.T) {
	var e Event
	require.NoError(t, json.Unmarshal([]byte(`{"date": {"seconds": 1761480000, "nanoseconds": 0}}`), &e))
	assert.True(t, e.Date.Timestamp().Equal(time.Unix(1_761_480_000, 0)))
}

func TestRawDateRoundTrip(t *testing.T) {
	e := Event{
		ID:        "e1",
		Title:     "orientation",
		Date:      TimestampDate(time.Unix(1_761_480_000, 42)),
		CreatedAt: StringDate("2025-10-01T09:00:00Z"),
	}

	b, err := json.Marshal(e)
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, DateTimestamp, got.Date.Kind())
	assert.True(t, got.Date.Timestamp().Equal(e.Date.Timestamp()))
	assert.Equal(t, "2025-10-01T09:00:00Z", got.CreatedAt.String())
}

func TestGroupMembership(t *testing.T) {
	g := Group{ID: "g1", OwnerID: "alice", JoinedBy: []string{"bob", "carol"}}

	assert.True(t, g.OwnedBy("alice"))
	assert.False(t, g.OwnedBy("bob"))
	assert.True(t, g.JoinedByUser("bob"))
	assert.False(t, g.JoinedByUser("alice"))
	assert.False(t, g.OwnedBy(""))
	assert.False(t, g.JoinedByUser(""))
}
