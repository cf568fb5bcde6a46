package ai

// State is the active behaviour of an enemy. Exactly one is active at a time.
type State int

const (
	Wandering State = iota
	Patrol
	Chasing
	Attacking
)

func (s State) String() string {
	switch s {
	case Wandering:
		return "wandering"
	case Patrol:
		return "patrol"
	case Chasing:
		return "chasing"
	case Attacking:
		return "attacking"
	default:
		return "unknown"
	}
}

// MarshalText lets states appear by name in JSON.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// EventType classifies what an enemy did during an update.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventDiscover    EventType = "discover"
	EventShot        EventType = "shot"
	EventReload      EventType = "reload"
	EventDamaged     EventType = "damaged"
	EventDeath       EventType = "death"
	EventPathSolve   EventType = "path_solve"
)

// Event is a notable enemy action, drained by the simulation for logging.
type Event struct {
	Type   EventType `json:"type"`
	Enemy  string    `json:"enemy"`
	From   State     `json:"from"`
	To     State     `json:"to"`
	Hit    bool      `json:"hit,omitempty"`
	Amount float64   `json:"amount,omitempty"`
	Source string    `json:"source,omitempty"`
	OK     bool      `json:"ok,omitempty"`
}
