package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"quadrangle.org/core/feed"
	"quadrangle.org/core/feedview"
	"quadrangle.org/core/models"
	"quadrangle.org/core/profile"
)

type feedEntryResponse struct {
	Kind     string          `json:"kind"`
	ID       string          `json:"id"`
	Instant  time.Time       `json:"instant"`
	Relative string          `json:"relative"`
	Author   *models.Profile `json:"author,omitempty"`

	Event    *models.Event    `json:"event,omitempty"`
	Group    *models.Group    `json:"group,omitempty"`
	Resource *models.Resource `json:"resource,omitempty"`
}

func entryResponse(s *feedview.State, e feed.Entry) feedEntryResponse {
	resp := feedEntryResponse{
		Kind:     string(e.Kind),
		ID:       e.ID(),
		Instant:  e.Instant.Time(),
		Relative: humanize.Time(e.Instant.Time()),
		Event:    e.Event,
		Group:    e.Group,
		Resource: e.Resource,
	}
	if by := e.CreatedBy(); by != "" {
		author := s.Author(by)
		resp.Author = &author
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func getFeed(s *feedview.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := s.Entries()
		out := make([]feedEntryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, entryResponse(s, e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func filterFromRequest(s *feedview.State, r *http.Request) (feed.Filter, bool) {
	f := feed.Filter{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}
	return f, s.Collections().ValidCategory(f.Category)
}

func getFeedEvents(s *feedview.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := filterFromRequest(s, r)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}

		entries := f.Events(s.Entries())
		out := make([]feedEntryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, entryResponse(s, e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getFeedGroups(s *feedview.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := filterFromRequest(s, r)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}

		entries := f.Groups(s.Entries(), r.URL.Query().Get("viewer"))
		out := make([]feedEntryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, entryResponse(s, e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type upcomingResponse struct {
	Event    models.Event `json:"event"`
	Instant  time.Time    `json:"instant"`
	Relative string       `json:"relative"`
}

func getUpcoming(s *feedview.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user")
		events := s.UpcomingFor(userID, time.Now())
		writeJSON(w, http.StatusOK, upcomingResponses(events))
	}
}

type locateResponse struct {
	Found bool   `json:"found"`
	Index int    `json:"index"`
	ID    string `json:"id"`
}

// locate maps a deep-link or search hand-off to a position in the
// current composed feed. A missing id is not an error; the client
// simply skips the scroll.
func locate(s *feedview.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing id")
			return
		}

		idx := feed.Locate(s.Entries(), id)
		writeJSON(w, http.StatusOK, locateResponse{
			Found: idx >= 0,
			Index: idx,
			ID:    id,
		})
	}
}

func getProfile(s *feedview.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		p, err := s.Directory().Lookup(r.Context(), id)
		if err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				writeJSON(w, http.StatusOK, models.UnknownProfile(id))
				return
			}
			writeError(w, http.StatusBadGateway, "profile lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
