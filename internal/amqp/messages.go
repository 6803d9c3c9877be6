package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"triplog/internal/core"
)

const (
	ActionCreated Action = "created"
	ActionDeleted Action = "deleted"
)

// Action is what happened to a record.
type Action string

// RecordEvent announces a change to the record collection. Created events
// carry the record in the stored entry format so consumers do not need
// access to the store.
type RecordEvent struct {
	Action    Action          `json:"action"`
	Kind      core.RecordKind `json:"kind"`
	ID        string          `json:"id"`
	Record    json.RawMessage `json:"record,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewRecordEvent(action Action, kind core.RecordKind, id string, record []byte) *RecordEvent {
	return &RecordEvent{
		Action:    action,
		Kind:      kind,
		ID:        id,
		Record:    record,
		Timestamp: time.Now().UTC(),
	}
}

// RoutingKey is "record.<action>".
func (e *RecordEvent) RoutingKey() string {
	return "record." + string(e.Action)
}

func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes and checks an event body.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

func (e *RecordEvent) validate() error {
	var problems []error
	if e.Action != ActionCreated && e.Action != ActionDeleted {
		problems = append(problems, fmt.Errorf("unknown action %q", e.Action))
	}
	if e.Kind != core.KindExpense && e.Kind != core.KindMileage {
		problems = append(problems, fmt.Errorf("unknown record kind %q", e.Kind))
	}
	if e.ID == "" {
		problems = append(problems, errors.New("missing record id"))
	}
	return errors.Join(problems...)
}
