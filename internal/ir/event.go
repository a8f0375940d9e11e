package ir

import (
	"encoding/json"
	"fmt"
)

// Event is a sealed interface over the four inputs the reducer understands.
// Only Tick, SpawnNote, KeyPress and End implement it.
type Event interface {
	// Kind returns the stable name used in logs and persisted records.
	Kind() EventKind

	isEvent()
}

// EventKind names an event variant.
type EventKind string

const (
	KindTick  EventKind = "tick"
	KindSpawn EventKind = "spawn"
	KindKey   EventKind = "key"
	KindEnd   EventKind = "end"
)

// Tick advances simulation time by one fixed step.
// Time is the tick index since song start.
type Tick struct {
	Time int64 `json:"time"`
}

// SpawnNote delivers one entry of the score schedule.
type SpawnNote struct {
	Note PlayableNote `json:"note"`
}

// KeyPress is a key-down edge on one lane.
type KeyPress struct {
	Lane Lane `json:"lane"`
}

// End marks song completion. Delivered once, after the last SpawnNote.
type End struct{}

func (Tick) Kind() EventKind      { return KindTick }
func (SpawnNote) Kind() EventKind { return KindSpawn }
func (KeyPress) Kind() EventKind  { return KindKey }
func (End) Kind() EventKind       { return KindEnd }

func (Tick) isEvent()      {}
func (SpawnNote) isEvent() {}
func (KeyPress) isEvent()  {}
func (End) isEvent()       {}

// MarshalEvent encodes an event's payload as JSON for storage.
// The kind travels separately so the payload stays variant-specific.
func MarshalEvent(ev Event) (EventKind, []byte, error) {
	if ev == nil {
		return "", nil, fmt.Errorf("marshal event: nil event")
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return "", nil, fmt.Errorf("marshal %s event: %w", ev.Kind(), err)
	}
	return ev.Kind(), data, nil
}

// UnmarshalEvent decodes a payload produced by MarshalEvent.
func UnmarshalEvent(kind EventKind, data []byte) (Event, error) {
	switch kind {
	case KindTick:
		var ev Tick
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("unmarshal tick event: %w", err)
		}
		return ev, nil
	case KindSpawn:
		var ev SpawnNote
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("unmarshal spawn event: %w", err)
		}
		return ev, nil
	case KindKey:
		var ev KeyPress
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("unmarshal key event: %w", err)
		}
		if !ev.Lane.Valid() {
			return nil, fmt.Errorf("unmarshal key event: invalid lane %d", ev.Lane)
		}
		return ev, nil
	case KindEnd:
		return End{}, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
}
