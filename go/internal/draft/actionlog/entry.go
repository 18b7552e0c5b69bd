package actionlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/auctiondraft/go/internal/draft/events"
)

// Entry records one accepted mutation.
type Entry struct {
	ID        uuid.UUID
	Timestamp time.Time
	OwnerID   *int // nil for actions not taken on behalf of an owner
	Version   int64
	Payload   events.Payload
}

// Action returns the kind of the entry's payload.
func (e Entry) Action() events.Action {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Action()
}

type entryJSON struct {
	ID        uuid.UUID       `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Action    events.Action   `json:"action"`
	OwnerID   *int            `json:"owner_id"`
	Version   int64           `json:"version"`
	Data      json.RawMessage `json:"data"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, errors.New("action log entry has no payload")
	}
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entryJSON{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Action:    e.Payload.Action(),
		OwnerID:   e.OwnerID,
		Version:   e.Version,
		Data:      data,
	})
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	payload, err := events.Decode(raw.Action, raw.Data)
	if err != nil {
		return fmt.Errorf("entry %s: %w", raw.ID, err)
	}
	*e = Entry{
		ID:        raw.ID,
		Timestamp: raw.Timestamp,
		OwnerID:   raw.OwnerID,
		Version:   raw.Version,
		Payload:   payload,
	}
	return nil
}

// Document is the persisted shape of the whole log.
type Document struct {
	Entries []Entry `json:"entries"`
}
