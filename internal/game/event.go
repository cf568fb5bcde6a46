package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Tick boundary with seed and counts
	EventTypeSpawn
	EventTypeStateChange
	EventTypeShot
	EventTypeDamage
	EventTypeDeath
	EventTypeReload
	EventTypePlayerDamage
)

// EventVersion tags the line schema.
const EventVersion uint8 = 1

// Event is one line of the JSONL event log.
type Event struct {
	Version   uint8           `json:"version"`
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"timestamp"` // Unix nano
	Sequence  uint64          `json:"sequence"`
	TickNum   uint64          `json:"tickNum"`
	SourceID  string          `json:"sourceId,omitempty"` // Enemy ID, used for per-source rate limiting
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypeSpawn:
		return "spawn"
	case EventTypeStateChange:
		return "state_change"
	case EventTypeShot:
		return "shot"
	case EventTypeDamage:
		return "damage"
	case EventTypeDeath:
		return "death"
	case EventTypeReload:
		return "reload"
	case EventTypePlayerDamage:
		return "player_damage"
	default:
		return "unknown"
	}
}

// MarshalText writes the readable name into the log.
func (t EventType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText reads a name written by MarshalText.
func (t *EventType) UnmarshalText(b []byte) error {
	for c := EventTypeTick; c <= EventTypePlayerDamage; c++ {
		if c.String() == string(b) {
			*t = c
			return nil
		}
	}
	*t = EventTypeUnknown
	return nil
}

// TickPayload contains tick boundary information
type TickPayload struct {
	Seed        int64 `json:"seed"`
	EnemyCount  int   `json:"enemyCount"`
	ActiveCount int   `json:"activeCount"`
	DeltaTimeNs int64 `json:"deltaTimeNs"`
}

// SpawnPayload records a new enemy.
type SpawnPayload struct {
	Kind string  `json:"kind"`
	Room int     `json:"room"`
	X    float64 `json:"x"`
	Z    float64 `json:"z"`
}

// StatePayload records an FSM transition.
type StatePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ShotPayload records one shot.
type ShotPayload struct {
	Hit    bool    `json:"hit"`
	Damage float64 `json:"damage"`
}

// DamagePayload records damage taken by an enemy.
type DamagePayload struct {
	Amount float64 `json:"amount"`
	Source string  `json:"source,omitempty"`
	Health float64 `json:"health"`
}

// PlayerDamagePayload records damage taken by the player.
type PlayerDamagePayload struct {
	Amount float64 `json:"amount"`
	Health float64 `json:"health"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) json.RawMessage {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, sourceID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		SourceID:  sourceID,
		Payload:   EncodePayload(payload),
	}
}
