package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/campuslib/backend/realtime"
)

// allowed change-feed tables; anything else is ignored.
var feedTables = map[string]bool{
	"books":           true,
	"categories":      true,
	"book_issues":     true,
	"reading_history": true,
}

type RealtimeHandler struct {
	Hub *realtime.Hub
}

// Stream serves row-level change events over SSE. Clients pick tables with
// ?tables=books,categories (default books). Events are named after the
// table; the data payload is the change event JSON.
func (h *RealtimeHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	tables := []string{"books"}
	if v := r.URL.Query().Get("tables"); v != "" {
		tables = nil
		for _, t := range strings.Split(v, ",") {
			t = strings.TrimSpace(t)
			if feedTables[t] {
				tables = append(tables, t)
			}
		}
	}
	if len(tables) == 0 {
		http.Error(w, `{"error":"no valid tables requested"}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	merged := make(chan realtime.Event, 16)
	done := make(chan struct{})
	var cancels []func()
	for _, table := range tables {
		ch, cancel := h.Hub.Subscribe(table)
		cancels = append(cancels, cancel)
		go func(ch <-chan realtime.Event) {
			for ev := range ch {
				select {
				case merged <- ev:
				case <-done:
					return
				}
			}
		}(ch)
	}
	defer func() {
		close(done)
		for _, cancel := range cancels {
			cancel()
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-merged:
			fmt.Fprintf(w, "event: %s\n", ev.Table)
			fmt.Fprintf(w, "data: {\"event\":%q,\"row\":%s}\n\n", ev.Event, rowJSON(ev))
			flusher.Flush()
		}
	}
}

func rowJSON(ev realtime.Event) string {
	if len(ev.Row) == 0 {
		return "null"
	}
	return string(ev.Row)
}
