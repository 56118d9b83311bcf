package web

import (
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"

	"quadrangle.org/core/feedview"
	"quadrangle.org/core/models"
	"quadrangle.org/core/temporal"
	"quadrangle.org/core/upcoming"
)

func upcomingResponses(events []models.Event) []upcomingResponse {
	out := make([]upcomingResponse, 0, len(events))
	for _, e := range events {
		in := temporal.Normalize(e)
		out = append(out, upcomingResponse{
			Event:    e,
			Instant:  in.Time(),
			Relative: humanize.Time(in.Time()),
		})
	}
	return out
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// watchUpcoming pushes the user's upcoming-events list over a
// websocket, recomputed on every relevant backend delivery. Each
// connection owns one resolver; closing the socket tears it down,
// subscriptions included.
func watchUpcoming(logger *slog.Logger, s *feedview.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("upgrade failed", "err", err)
			return
		}
		defer conn.Close()

		writes := make(chan []models.Event, 1)
		resolver := upcoming.NewResolver(userID, s.Consumer(), func(events []models.Event) {
			// Coalesce: only the latest list matters.
			select {
			case writes <- events:
			default:
				select {
				case <-writes:
				default:
				}
				writes <- events
			}
		})
		if err := resolver.Start(); err != nil {
			logger.Error("resolver start failed", "user", userID, "err", err)
			return
		}
		defer resolver.Close()

		// Reads are discarded; a read error means the client went away.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case <-r.Context().Done():
				return
			case events := <-writes:
				if err := conn.WriteJSON(upcomingResponses(events)); err != nil {
					return
				}
			}
		}
	}
}
