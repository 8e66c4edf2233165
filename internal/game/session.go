// Package game implements the session controller: the lifecycle state
// machine, per-frame orchestration of the craft, projectiles and obstacles,
// collision handling, scoring and level progression.
//
// A Session is driven by a host calling Update once per rendered frame.
// It is not safe for concurrent use; each player gets their own Session.
package game

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/astrds/internal/config"
	"github.com/tomz197/astrds/internal/object"
)

// ErrInvalidTimeStep is returned by Update for a negative, NaN or infinite
// time step. Such a value would corrupt integration, so the frame is
// rejected instead of being absorbed.
var ErrInvalidTimeStep = errors.New("invalid time step")

// HighScoreStore is a durable slot for the best score. Load is called once
// when the session is created; Save whenever the high score increases.
// Errors from either are logged and otherwise ignored.
type HighScoreStore interface {
	Load() (int, error)
	Save(score int) error
}

// Options configures a Session. Zero values are replaced with defaults.
type Options struct {
	// Store persists the high score. Nil keeps it in memory only.
	Store HighScoreStore
	// Rand drives spawning, silhouettes and hyperspace. Nil seeds from the clock.
	Rand object.Rand
	// Logger receives transition and store diagnostics. Nil discards them.
	Logger *log.Logger
	// Field overrides the play area. Zero uses config.FieldWidth x FieldHeight.
	Field object.Field
}

// Session owns all simulation state for one player.
type Session struct {
	field    object.Field
	store    HighScoreStore
	rng      object.Rand
	logger   *log.Logger
	detector *Detector

	state       State
	craft       *object.Craft
	obstacles   []*object.Obstacle
	projectiles []*object.Projectile

	score     int
	highScore int
	lives     int
	level     int

	fireCooldown       float64
	respawnTimer       float64
	hyperspaceCooldown float64

	events []Event
}

// New creates a session in StateStart and loads the persisted high score.
func New(opts Options) *Session {
	field := opts.Field
	if field.Width <= 0 || field.Height <= 0 {
		field = object.Field{Width: config.FieldWidth, Height: config.FieldHeight}
	}
	rng := opts.Rand
	if rng == nil {
		rng = object.NewRand(time.Now().UnixNano())
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Session{
		field:    field,
		store:    opts.Store,
		rng:      rng,
		logger:   logger,
		detector: NewDetector(field),
		state:    StateStart,
		lives:    config.InitialLives,
		level:    1,
	}
	s.highScore = s.loadHighScore()
	return s
}

// loadHighScore reads the stored high score, treating any failure or
// nonsense value as no prior score.
func (s *Session) loadHighScore() int {
	if s.store == nil {
		return 0
	}
	score, err := s.store.Load()
	if err != nil {
		s.logger.Warn("could not load high score", "error", err)
		return 0
	}
	if score < 0 {
		return 0
	}
	return score
}

// Launch starts a fresh game. It is ignored unless the session is waiting
// on the title or game over screen.
func (s *Session) Launch() {
	if !s.state.AwaitingLaunch() {
		return
	}

	s.score = 0
	s.lives = config.InitialLives
	s.level = 1
	s.projectiles = s.projectiles[:0]
	s.resetTimers()

	center := s.field.Center()
	s.craft = object.NewCraft(center.X, center.Y)
	s.obstacles = s.spawnWave(config.InitialObstacles)

	s.setState(StatePlaying)
	s.emit(Event{Kind: EventLaunched, Level: s.level})
}

// Update advances the simulation by dt seconds using this frame's intents.
// dt above config.MaxDelta is clamped. Negative, NaN and infinite values
// return ErrInvalidTimeStep and leave the session untouched.
func (s *Session) Update(dt float64, in Intents) error {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTimeStep, dt)
	}
	if dt > config.MaxDelta {
		dt = config.MaxDelta
	}

	s.events = s.events[:0]

	switch s.state {
	case StateStart, StateGameOver:
		if in.Launch {
			s.Launch()
		}
	case StateDead:
		s.updateDead(dt)
	case StatePlaying:
		s.updatePlaying(dt, in)
	}
	return nil
}

// updateDead keeps obstacles drifting while the respawn timer runs down.
// Projectiles stay frozen and input is ignored.
func (s *Session) updateDead(dt float64) {
	s.respawnTimer -= dt
	if s.respawnTimer <= 0 {
		s.respawnTimer = 0
		center := s.field.Center()
		s.craft.Respawn(center.X, center.Y)
		s.setState(StatePlaying)
		s.emit(Event{Kind: EventRespawned, X: center.X, Y: center.Y})
	}

	for _, o := range s.obstacles {
		o.Update(dt, s.field)
	}
}

// updatePlaying runs one simulation frame.
func (s *Session) updatePlaying(dt float64, in Intents) {
	c := s.craft
	c.RotatingLeft = in.RotateLeft
	c.RotatingRight = in.RotateRight
	c.Thrusting = in.Thrust

	if s.fireCooldown > 0 {
		s.fireCooldown -= dt
	}
	if in.Fire && s.fireCooldown <= 0 {
		s.fire()
		s.fireCooldown = config.FireCooldown
	}

	if s.hyperspaceCooldown > 0 {
		s.hyperspaceCooldown -= dt
	}
	if in.Hyperspace && s.hyperspaceCooldown <= 0 {
		s.hyperspace()
		s.hyperspaceCooldown = config.HyperspaceCooldown
	}

	c.Update(dt, s.field)

	kept := s.projectiles[:0]
	for _, p := range s.projectiles {
		p.Update(dt, s.field)
		if p.Active {
			kept = append(kept, p)
		}
	}
	s.projectiles = kept

	for _, o := range s.obstacles {
		o.Update(dt, s.field)
	}

	s.resolveProjectileHits()

	if _, hit := s.detector.Craft(c, s.obstacles); hit {
		s.destroyCraft()
	}

	if s.state == StatePlaying && len(s.obstacles) == 0 {
		s.nextLevel()
	}

	s.recordHighScore()
}

// fire spawns a projectile at the craft's nose along its facing.
func (s *Session) fire() {
	tip := s.craft.TipPosition()
	s.projectiles = append(s.projectiles, object.NewProjectile(tip.X, tip.Y, s.craft.Angle))
}

// hyperspace teleports the craft to a random point away from the edges and
// gives it a short shield so it cannot materialize straight into a rock.
func (s *Session) hyperspace() {
	m := float64(config.HyperspaceMargin)
	x := m + s.rng.Float64()*(s.field.Width-2*m)
	y := m + s.rng.Float64()*(s.field.Height-2*m)
	s.craft.Teleport(x, y)
	s.craft.Grant(config.HyperspaceShield)
	s.emit(Event{Kind: EventHyperspace, X: x, Y: y})
}

// resolveProjectileHits runs the projectile pass and applies its results.
func (s *Session) resolveProjectileHits() {
	res := s.detector.Projectiles(s.projectiles, s.obstacles, s.rng)
	if len(res.Hits) == 0 {
		return
	}

	s.score += res.Points
	for _, h := range res.Hits {
		s.emit(Event{
			Kind:   EventObstacleDestroyed,
			Tier:   h.Obstacle.Tier,
			Points: h.Obstacle.Points,
			X:      h.Obstacle.X,
			Y:      h.Obstacle.Y,
		})
	}
	s.obstacles = res.Obstacles

	kept := s.projectiles[:0]
	for _, p := range s.projectiles {
		if p.Active {
			kept = append(kept, p)
		}
	}
	s.projectiles = kept
}

// destroyCraft handles an unshielded collision: a life is lost, then the
// session either waits to respawn or ends.
func (s *Session) destroyCraft() {
	s.craft.Dead = true
	s.lives--
	s.emit(Event{Kind: EventCraftDestroyed, X: s.craft.X, Y: s.craft.Y})

	if s.lives <= 0 {
		s.lives = 0
		s.recordHighScore()
		s.setState(StateGameOver)
		s.emit(Event{Kind: EventGameOver, Score: s.score})
		return
	}

	s.respawnTimer = config.RespawnDelay
	s.setState(StateDead)
}

// nextLevel replaces the cleared field with a bigger wave and a fresh,
// shielded craft.
func (s *Session) nextLevel() {
	s.level++
	s.projectiles = s.projectiles[:0]
	s.resetTimers()

	center := s.field.Center()
	s.craft = object.NewCraft(center.X, center.Y)
	s.craft.Grant(config.LevelInvincibility)
	s.obstacles = s.spawnWave(config.InitialObstacles + s.level - 1)

	s.emit(Event{Kind: EventLevelCleared, Level: s.level})
	s.logger.Debug("level cleared", "level", s.level, "obstacles", len(s.obstacles))
}

// spawnWave places n large obstacles clear of the craft's start point.
func (s *Session) spawnWave(n int) []*object.Obstacle {
	return object.PlaceObstacles(n, s.field, s.field.Center(), config.SafeSpawnRadius, s.rng)
}

// recordHighScore raises and persists the high score if the score beat it.
// A failed save is logged; the next increase tries again.
func (s *Session) recordHighScore() {
	if s.score <= s.highScore {
		return
	}
	s.highScore = s.score
	s.emit(Event{Kind: EventHighScore, Score: s.highScore})

	if s.store == nil {
		return
	}
	if err := s.store.Save(s.highScore); err != nil {
		s.logger.Warn("could not save high score", "score", s.highScore, "error", err)
	}
}

func (s *Session) resetTimers() {
	s.fireCooldown = 0
	s.respawnTimer = 0
	s.hyperspaceCooldown = 0
}

func (s *Session) setState(next State) {
	if next == s.state {
		return
	}
	s.logger.Debug("state change", "from", s.state, "to", next, "score", s.score, "lives", s.lives, "level", s.level)
	s.state = next
}

func (s *Session) emit(e Event) {
	s.events = append(s.events, e)
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Score returns the current score.
func (s *Session) Score() int { return s.score }

// HighScore returns the best score seen, including the loaded one.
func (s *Session) HighScore() int { return s.highScore }

// Lives returns the remaining lives.
func (s *Session) Lives() int { return s.lives }

// Level returns the current level, starting at 1.
func (s *Session) Level() int { return s.level }

// RespawnIn returns the seconds left before the craft respawns, or 0 when
// not in StateDead.
func (s *Session) RespawnIn() float64 {
	if s.state != StateDead {
		return 0
	}
	return s.respawnTimer
}

// Field returns the play area.
func (s *Session) Field() object.Field { return s.field }

// Craft returns the player's craft, or nil before the first launch.
func (s *Session) Craft() *object.Craft { return s.craft }

// Obstacles returns the live obstacles. The slice is owned by the session.
func (s *Session) Obstacles() []*object.Obstacle { return s.obstacles }

// Projectiles returns the live projectiles. The slice is owned by the session.
func (s *Session) Projectiles() []*object.Projectile { return s.projectiles }

// Events returns what happened during the most recent Update or Launch.
// The slice is reused by the next call.
func (s *Session) Events() []Event { return s.events }
