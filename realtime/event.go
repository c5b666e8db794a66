package realtime

import "encoding/json"

// Change event types, mirroring row-level store changes.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Event is one row-level change on a named table. Row carries the new row
// for inserts/updates and the old row's id for deletes.
type Event struct {
	Table string          `json:"table"`
	Event string          `json:"event"`
	Row   json.RawMessage `json:"row,omitempty"`
}

// NewEvent marshals row into an Event. Marshal failures produce an event
// with an empty row rather than an error; change feeds are best-effort.
func NewEvent(table, eventType string, row any) Event {
	raw, err := json.Marshal(row)
	if err != nil {
		raw = nil
	}
	return Event{Table: table, Event: eventType, Row: raw}
}
