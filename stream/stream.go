package stream

import (
	"encoding/json"
	"fmt"

	"quadrangle.org/core/models"
)

// Records is one full delivery for a single collection. The backend
// pushes complete replacement sets, never patches: consumers must
// treat every delivery as the entire current collection.
type Records struct {
	Kind models.EntityKind

	Events    []models.Event
	Groups    []models.Group
	Resources []models.Resource
}

// Subscriber is the live-collection abstraction the rest of the
// system consumes. Subscribe registers a handler for one collection
// and returns a cancel function; after cancel returns, the handler is
// never invoked again. A newly registered handler immediately receives
// the latest known delivery for its collection, if there is one.
type Subscriber interface {
	Subscribe(kind models.EntityKind, fn func(Records)) (cancel func(), err error)
}

// frame is the wire shape of one snapshot push.
type frame struct {
	Kind    string          `json:"kind"`
	Cursor  int64           `json:"cursor"`
	Records json.RawMessage `json:"records"`
}

func decodeFrame(f frame) (Records, error) {
	kind, err := models.ParseEntityKind(f.Kind)
	if err != nil {
		return Records{}, err
	}

	recs := Records{Kind: kind}
	switch kind {
	case models.KindEvent:
		err = json.Unmarshal(f.Records, &recs.Events)
	case models.KindGroup:
		err = json.Unmarshal(f.Records, &recs.Groups)
	case models.KindResource:
		err = json.Unmarshal(f.Records, &recs.Resources)
	}
	if err != nil {
		return Records{}, fmt.Errorf("decode %s snapshot: %w", kind, err)
	}

	return recs, nil
}
