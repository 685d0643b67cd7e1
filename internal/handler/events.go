package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// streamEvents relays change notifications to the admin dashboard over
// Server-Sent Events. Consumers re-fetch on receipt; missed events are
// harmless.
func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	if h.stream == nil {
		respondError(w, http.StatusServiceUnavailable, "event streaming is not configured")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, err := h.stream.Subscribe(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Heartbeats keep intermediaries from closing an idle stream.
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case e, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Topic, data)
			flusher.Flush()
		}
	}
}
