package events

import (
	"encoding/json"
	"time"
)

// Entities and actions carried by change events.
const (
	EntityMonth   = "month"
	EntityBill    = "bill"
	EntityMoneyIn = "money_in"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent announces a successful ledger mutation. Consumers fetch the
// full record themselves; the event only identifies what changed.
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	YM        string    `json:"ym,omitempty"`
	ID        int64     `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeEvent creates an event stamped with the current time.
func NewChangeEvent(entity, action, ym string, id int64) ChangeEvent {
	return ChangeEvent{
		Entity:    entity,
		Action:    action,
		YM:        ym,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON creates an event from JSON bytes.
func ChangeEventFromJSON(data []byte) (ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return ChangeEvent{}, err
	}
	return e, nil
}
