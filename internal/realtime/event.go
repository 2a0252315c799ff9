package realtime

import "encoding/json"

// EventType classifies a row change.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// TableAll subscribes to changes on every table.
const TableAll = "*"

// Event is one row-level change. Record carries the new row image; OldRecord
// is populated for updates and deletes.
type Event struct {
	Type      EventType       `json:"type"`
	Table     string          `json:"table"`
	Record    json.RawMessage `json:"record,omitempty"`
	OldRecord json.RawMessage `json:"old_record,omitempty"`
}

// NewEvent builds an event, marshaling the row images. Marshal failures are
// reported to the caller; an event with a half-built payload is never
// published.
func NewEvent(typ EventType, table string, record, oldRecord any) (Event, error) {
	ev := Event{Type: typ, Table: table}

	if record != nil {
		data, err := json.Marshal(record)
		if err != nil {
			return Event{}, err
		}
		ev.Record = data
	}
	if oldRecord != nil {
		data, err := json.Marshal(oldRecord)
		if err != nil {
			return Event{}, err
		}
		ev.OldRecord = data
	}
	return ev, nil
}

// Decode unmarshals the new row image into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Record, v)
}

// DecodeOld unmarshals the old row image into v.
func (e Event) DecodeOld(v any) error {
	return json.Unmarshal(e.OldRecord, v)
}
