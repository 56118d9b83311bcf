package models

import (
	"encoding/json"
	"time"
)

// DateKind discriminates the shapes a date-ish field can arrive in
// from the backend: a structured timestamp object, a bare string, or
// nothing at all.
type DateKind int

const (
	DateMissing DateKind = iota
	DateTimestamp
	DateString
)

// RawDate is the tagged union a record's date fields are decoded into
// at the ingestion boundary. The backend is inconsistent: the same
// field may hold a timestamp object ({"seconds": ..., "nanoseconds": ...}),
// an ISO-8601 string, a bare "YYYY-MM-DD" string, or be absent entirely.
// Decoding the shape exactly once here lets everything downstream
// switch over Kind instead of re-sniffing JSON.
type RawDate struct {
	kind DateKind
	ts   time.Time
	str  string
}

func MissingDate() RawDate {
	return RawDate{kind: DateMissing}
}

func TimestampDate(t time.Time) RawDate {
	return RawDate{kind: DateTimestamp, ts: t}
}

func StringDate(s string) RawDate {
	if s == "" {
		return MissingDate()
	}
	return RawDate{kind: DateString, str: s}
}

func (d RawDate) Kind() DateKind { return d.kind }

// Timestamp returns the decoded timestamp. Only meaningful when
// Kind() == DateTimestamp.
func (d RawDate) Timestamp() time.Time { return d.ts }

// String returns the raw string form. Only meaningful when
// Kind() == DateString.
func (d RawDate) String() string { return d.str }

func (d RawDate) IsMissing() bool { return d.kind == DateMissing }

// wireTimestamp covers both spellings the backend SDKs emit.
type wireTimestamp struct {
	Seconds      *int64 `json:"seconds"`
	Nanoseconds  *int64 `json:"nanoseconds"`
	USeconds     *int64 `json:"_seconds"`
	UNanoseconds *int64 `json:"_nanoseconds"`
}

func (d *RawDate) UnmarshalJSON(b []byte) error {
	// json.Unmarshal never hands us an absent field, but null shows up.
	if string(b) == "null" {
		*d = MissingDate()
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = StringDate(s)
		return nil
	}

	var w wireTimestamp
	if err := json.Unmarshal(b, &w); err == nil {
		secs, nanos := w.Seconds, w.Nanoseconds
		if secs == nil {
			secs, nanos = w.USeconds, w.UNanoseconds
		}
		if secs != nil {
			var n int64
			if nanos != nil {
				n = *nanos
			}
			*d = TimestampDate(time.Unix(*secs, n))
			return nil
		}
	}

	// Unrecognized shape degrades to missing rather than failing the
	// whole record.
	*d = MissingDate()
	return nil
}

func (d RawDate) MarshalJSON() ([]byte, error) {
	switch d.kind {
	case DateTimestamp:
		return json.Marshal(map[string]int64{
			"seconds":     d.ts.Unix(),
			"nanoseconds": int64(d.ts.Nanosecond()),
		})
	case DateString:
		return json.Marshal(d.str)
	default:
		return []byte("null"), nil
	}
}
