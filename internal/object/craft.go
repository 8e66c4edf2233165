package object

import (
	"math"

	"github.com/tomz197/astrds/internal/config"
)

// Craft tuning.
const (
	CraftSize          = 15.0         // Nose-to-center length of the silhouette
	CraftRotationSpeed = math.Pi      // Radians per second
	CraftThrust        = 300.0        // Acceleration, units per second²
	CraftMaxSpeed      = 400.0        // Velocity magnitude cap
	CraftFriction      = 0.985        // Velocity retained per 1/60 s without thrust
	CraftUpAngle       = -math.Pi / 2 // Canonical facing: straight up the screen
)

// craftHitFraction shrinks the collision circle below the drawn silhouette
// so grazes are forgiven.
const craftHitFraction = 0.8

// Craft is the player-controlled ship.
type Craft struct {
	Body
	Angle float64 // Facing in radians; 0 points right, positive turns clockwise on screen

	Thrusting     bool
	RotatingLeft  bool
	RotatingRight bool

	Invincible      bool
	InvincibleTimer float64 // Seconds of protection left
	Dead            bool
}

// NewCraft creates a craft at rest at (x, y), facing up.
func NewCraft(x, y float64) *Craft {
	return &Craft{
		Body:  Body{X: x, Y: y},
		Angle: CraftUpAngle,
	}
}

// Update applies rotation, thrust or friction, moves the craft and counts
// down its invincibility.
func (c *Craft) Update(dt float64, f Field) {
	if c.Invincible {
		c.InvincibleTimer -= dt
		if c.InvincibleTimer <= 0 {
			c.Invincible = false
			c.InvincibleTimer = 0
		}
	}

	// Both directions held cancel out.
	if c.RotatingLeft {
		c.Angle -= CraftRotationSpeed * dt
	}
	if c.RotatingRight {
		c.Angle += CraftRotationSpeed * dt
	}

	// Normalize angle to [-π, π]
	for c.Angle > math.Pi {
		c.Angle -= 2 * math.Pi
	}
	for c.Angle < -math.Pi {
		c.Angle += 2 * math.Pi
	}

	if c.Thrusting {
		c.VX += math.Cos(c.Angle) * CraftThrust * dt
		c.VY += math.Sin(c.Angle) * CraftThrust * dt

		// Clamp to max speed
		speed := math.Hypot(c.VX, c.VY)
		if speed > CraftMaxSpeed {
			scale := CraftMaxSpeed / speed
			c.VX *= scale
			c.VY *= scale
		}
	} else {
		damping := math.Pow(CraftFriction, dt*60)
		c.VX *= damping
		c.VY *= damping
	}

	c.Integrate(dt)
	c.WrapFlush(f)
}

// Speed returns the magnitude of the craft's velocity.
func (c *Craft) Speed() float64 {
	return math.Hypot(c.VX, c.VY)
}

// TipPosition returns the nose of the silhouette, where projectiles spawn.
func (c *Craft) TipPosition() Vec {
	return Vec{
		X: c.X + math.Cos(c.Angle)*CraftSize,
		Y: c.Y + math.Sin(c.Angle)*CraftSize,
	}
}

// CollisionRadius returns the radius used for obstacle hit tests.
func (c *Craft) CollisionRadius() float64 {
	return CraftSize * craftHitFraction
}

// Respawn puts the craft back at (x, y) at rest, facing up, alive and
// invincible for config.RespawnInvincibility seconds.
func (c *Craft) Respawn(x, y float64) {
	c.X = x
	c.Y = y
	c.VX = 0
	c.VY = 0
	c.Angle = CraftUpAngle
	c.Dead = false
	c.Invincible = false
	c.InvincibleTimer = 0
	c.Grant(config.RespawnInvincibility)
}

// Grant makes the craft invincible for at least the given number of
// seconds. A longer window already running is left alone.
func (c *Craft) Grant(seconds float64) {
	if seconds <= 0 {
		return
	}
	if !c.Invincible || c.InvincibleTimer < seconds {
		c.Invincible = true
		c.InvincibleTimer = seconds
	}
}

// Teleport moves the craft to (x, y) and stops it. Used by hyperspace.
func (c *Craft) Teleport(x, y float64) {
	c.X = x
	c.Y = y
	c.VX = 0
	c.VY = 0
}

// Silhouette returns the craft outline in world coordinates: nose, right
// wing, tail notch, left wing.
func (c *Craft) Silhouette() [4]Vec {
	local := [4]Vec{
		{X: CraftSize, Y: 0},
		{X: -CraftSize * 0.8, Y: CraftSize * 0.6},
		{X: -CraftSize * 0.5, Y: 0},
		{X: -CraftSize * 0.8, Y: -CraftSize * 0.6},
	}
	sin, cos := math.Sincos(c.Angle)
	var out [4]Vec
	for i, p := range local {
		out[i] = Vec{
			X: c.X + p.X*cos - p.Y*sin,
			Y: c.Y + p.X*sin + p.Y*cos,
		}
	}
	return out
}

// BlinkVisible reports whether an invincible craft is in the visible half
// of its blink cycle. A vulnerable craft is always visible.
func (c *Craft) BlinkVisible(frequency float64) bool {
	if !c.Invincible {
		return true
	}
	return BlinkVisible(c.InvincibleTimer, frequency)
}
