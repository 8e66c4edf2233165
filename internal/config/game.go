package config

import "time"

// Field dimensions in world units. Shared by the engine and every renderer.
const (
	FieldWidth  = 800
	FieldHeight = 600
)

// Session rules
const (
	InitialLives     = 3
	InitialObstacles = 4   // Large obstacles on level 1; each level adds one
	SafeSpawnRadius  = 150 // Minimum distance between a new obstacle and the craft start
)

// Timers, in seconds
const (
	FireCooldown         = 0.25
	RespawnDelay         = 1.5
	RespawnInvincibility = 3.0
	LevelInvincibility   = 4.0 // Longer than RespawnInvincibility: a new wave spawns all at once
	HyperspaceCooldown   = 1.0
	HyperspaceShield     = 1.0
	HyperspaceMargin     = 50 // Hyperspace never lands closer than this to an edge
)

// MaxDelta is the largest time step the engine integrates in one frame.
// Longer frames (stalls, resumed terminals) are clamped to it.
const MaxDelta = 0.05

// BlinkFrequency is how often an invincible craft toggles visibility (Hz).
const BlinkFrequency = 8.0

// HighScoreKey is the default slot used for the persisted high score.
const HighScoreKey = "astrds_highscore"

// Terminal rendering
const (
	MaxTermWidth  = 200
	MaxTermHeight = 60
)

// Frame pacing for hosts
const (
	DefaultFPS = 60
)

// Inactivity limits for remote sessions
const (
	InactivityDisconnect = 5 * time.Minute
)
