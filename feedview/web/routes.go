package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quadrangle.org/core/feedview"
)

// Router assembles the read-side API over the composed feed. Handlers
// are plain functions taking their dependencies; shared state lives in
// feedview.State only.
func Router(logger *slog.Logger, s *feedview.State) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))

	r.Get("/health", health)
	r.Get("/feed", getFeed(s))
	r.Get("/feed/events", getFeedEvents(s))
	r.Get("/feed/groups", getFeedGroups(s))
	r.Get("/upcoming", getUpcoming(s))
	r.Get("/upcoming/ws", watchUpcoming(logger, s))
	r.Get("/locate", locate(s))
	r.Get("/profiles/{id}", getProfile(s))

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}
