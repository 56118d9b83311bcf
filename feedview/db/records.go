package db

import (
	"encoding/json"
	"fmt"
	"time"

	"quadrangle.org/core/feed"
	"quadrangle.org/core/models"
	"quadrangle.org/core/stream"
	"quadrangle.org/core/temporal"
)

// ReplaceRecords persists one full collection delivery, replacing
// whatever was stored for that kind. Deliveries are full sets, so
// anything missing from the new snapshot is gone for real. Run it
// inside a transaction when a half-written snapshot must not be
// observable.
func ReplaceRecords(e Execer, recs stream.Records) error {
	if _, err := e.Exec(`delete from records where kind = ?`, string(recs.Kind)); err != nil {
		return err
	}

	stmt, err := e.Prepare(`
		insert into records (kind, id, payload, instant)
		values (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	insert := func(id string, payload any, in temporal.Instant) error {
		if id == "" {
			// A record without an identifier is unaddressable; skip it
			// rather than fail the batch.
			return nil
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		var millis int64
		if in.Present() {
			millis = in.Time().UnixMilli()
		}
		_, err = stmt.Exec(string(recs.Kind), id, string(b), millis)
		return err
	}

	switch recs.Kind {
	case models.KindEvent:
		for _, ev := range recs.Events {
			if err := insert(ev.ID, ev, temporal.Normalize(ev)); err != nil {
				return err
			}
		}
	case models.KindGroup:
		for _, g := range recs.Groups {
			if err := insert(g.ID, g, temporal.Normalize(g)); err != nil {
				return err
			}
		}
	case models.KindResource:
		for _, r := range recs.Resources {
			if err := insert(r.ID, r, temporal.Normalize(r)); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("replace records: unknown kind %q", recs.Kind)
	}

	return nil
}

// LoadSnapshot reassembles the last persisted snapshot for cold
// starts. Rows that no longer decode are skipped, not fatal.
func LoadSnapshot(e Execer) (feed.Snapshot, error) {
	var snap feed.Snapshot

	rows, err := e.Query(`select kind, payload from records order by instant desc`)
	if err != nil {
		return snap, err
	}
	defer rows.Close()

	for rows.Next() {
		var kind, payload string
		if err := rows.Scan(&kind, &payload); err != nil {
			return snap, err
		}

		switch models.EntityKind(kind) {
		case models.KindEvent:
			var ev models.Event
			if json.Unmarshal([]byte(payload), &ev) == nil {
				snap.Events = append(snap.Events, ev)
			}
		case models.KindGroup:
			var g models.Group
			if json.Unmarshal([]byte(payload), &g) == nil {
				snap.Groups = append(snap.Groups, g)
			}
		case models.KindResource:
			var r models.Resource
			if json.Unmarshal([]byte(payload), &r) == nil {
				snap.Resources = append(snap.Resources, r)
			}
		}
	}

	return snap, rows.Err()
}

// PruneEventsBefore drops persisted event records whose resolved
// instant is older than the cutoff. Live deliveries replace the table
// anyway; this only keeps the cold-start snapshot from resurrecting
// long-gone events.
func PruneEventsBefore(e Execer, cutoff time.Time) (int64, error) {
	res, err := e.Exec(
		`delete from records where kind = ? and instant > 0 and instant < ?`,
		string(models.KindEvent), cutoff.UnixMilli(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
