package game

import "github.com/tomz197/astrds/internal/object"

// State is the lifecycle phase of a session.
type State int

const (
	StateStart    State = iota // Title screen, waiting for launch
	StatePlaying                // Active simulation
	StateDead                   // Craft destroyed, respawn pending
	StateGameOver               // Lives exhausted, waiting for launch
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StatePlaying:
		return "playing"
	case StateDead:
		return "dead"
	case StateGameOver:
		return "gameover"
	default:
		return "unknown"
	}
}

// AwaitingLaunch reports whether the state only advances on a launch signal.
func (s State) AwaitingLaunch() bool {
	return s == StateStart || s == StateGameOver
}

// Intents are the logical inputs sampled once per frame. How physical keys
// map onto them is up to the host.
type Intents struct {
	RotateLeft  bool
	RotateRight bool
	Thrust      bool
	Fire        bool
	Launch      bool
	Hyperspace  bool
}

// EventKind identifies something notable that happened during a frame.
type EventKind int

const (
	EventLaunched EventKind = iota
	EventObstacleDestroyed
	EventCraftDestroyed
	EventRespawned
	EventLevelCleared
	EventGameOver
	EventHyperspace
	EventHighScore
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventLaunched:
		return "launched"
	case EventObstacleDestroyed:
		return "obstacle_destroyed"
	case EventCraftDestroyed:
		return "craft_destroyed"
	case EventRespawned:
		return "respawned"
	case EventLevelCleared:
		return "level_cleared"
	case EventGameOver:
		return "game_over"
	case EventHyperspace:
		return "hyperspace"
	case EventHighScore:
		return "high_score"
	default:
		return "unknown"
	}
}

// Event is emitted by Update. Only the fields relevant to the kind are set:
// Tier, Points and X/Y for destroyed obstacles, Level for level changes,
// Score for game over and high score events.
type Event struct {
	Kind   EventKind
	Tier   object.Tier
	Points int
	Level  int
	Score  int
	X, Y   float64
}
