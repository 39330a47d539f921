/*
stream.go - Server-sent event stream

PURPOSE:
  Bridges the notify.Hub fan-out to the browser over SSE. Each connected
  client gets a Subscription registered for its rooms; events are written
  as named SSE frames and the subscription is removed when the client
  disconnects.

ROOM MEMBERSHIP:
  Every caller joins the room keyed by its own user id (status updates).
  Managers additionally join the shared managers room and their
  department's managers_{department} room (new submissions).

WIRE FORMAT:
  event: <name>\n
  data: <json>\n\n
  A comment frame (": ping") is sent periodically as a heartbeat so
  intermediaries do not drop idle connections.

SEE ALSO:
  - notify/hub.go: Subscription registry and fan-out
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/leave-tracker/notify"
)

// heartbeatInterval paces SSE keep-alive comments.
const heartbeatInterval = 30 * time.Second

// Events streams real-time updates to the caller.
// GET /api/events
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	rooms := []string{notify.UserRoom(actor.ID)}
	if actor.IsManager() {
		rooms = append(rooms, notify.ManagersRoom, notify.DepartmentManagersRoom(actor.Department))
	}

	sub := h.Hub.Subscribe(rooms...)
	defer h.Hub.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case event, open := <-sub.C:
			if !open {
				return
			}
			if err := writeSSE(w, event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event notify.Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
	return err
}
