package game

import (
	"github.com/tomz197/astrds/internal/config"
	"github.com/tomz197/astrds/internal/object"
)

// Snapshot is a read-only copy of everything a renderer needs for one frame.
// It shares no memory with the session except the immutable obstacle
// silhouettes.
type Snapshot struct {
	State     State
	Score     int
	HighScore int
	Lives     int
	Level     int
	Field     object.Field
	RespawnIn float64 // Seconds until respawn while dead

	Craft       CraftView
	Obstacles   []ObstacleView
	Projectiles []object.Vec
	Events      []Event
}

// CraftView describes the craft as it should be drawn.
type CraftView struct {
	Present    bool // false before the first launch
	X, Y       float64
	Angle      float64
	Alive      bool
	Invincible bool
	Visible    bool // blink phase while invincible
	Thrusting  bool
	Outline    [4]object.Vec
}

// ObstacleView describes an obstacle as it should be drawn.
type ObstacleView struct {
	X, Y     float64
	Radius   float64
	Tier     object.Tier
	Vertices []object.Vec // local space
}

// Snapshot captures the current render state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:     s.state,
		Score:     s.score,
		HighScore: s.highScore,
		Lives:     s.lives,
		Level:     s.level,
		Field:     s.field,
		RespawnIn: s.RespawnIn(),
	}

	if c := s.craft; c != nil {
		snap.Craft = CraftView{
			Present:    true,
			X:          c.X,
			Y:          c.Y,
			Angle:      c.Angle,
			Alive:      !c.Dead,
			Invincible: c.Invincible,
			Visible:    !c.Dead && c.BlinkVisible(config.BlinkFrequency),
			Thrusting:  c.Thrusting && !c.Dead,
			Outline:    c.Silhouette(),
		}
	}

	if len(s.obstacles) > 0 {
		snap.Obstacles = make([]ObstacleView, len(s.obstacles))
		for i, o := range s.obstacles {
			snap.Obstacles[i] = ObstacleView{
				X:        o.X,
				Y:        o.Y,
				Radius:   o.Radius,
				Tier:     o.Tier,
				Vertices: o.Vertices,
			}
		}
	}

	if len(s.projectiles) > 0 {
		snap.Projectiles = make([]object.Vec, len(s.projectiles))
		for i, p := range s.projectiles {
			snap.Projectiles[i] = p.Position()
		}
	}

	if len(s.events) > 0 {
		snap.Events = append([]Event(nil), s.events...)
	}
	return snap
}
