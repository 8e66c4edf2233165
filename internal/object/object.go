// Package object implements the moving bodies of the simulation: the
// player's craft, obstacles and projectiles. Objects know how to move and
// wrap themselves; the session decides when they collide or die.
package object

import (
	"math/rand"
)

// Vec is a 2D point or offset in world units.
type Vec struct {
	X, Y float64
}

// Field is the rectangular play area. Coordinates run from (0,0) at the
// top-left to (Width, Height); bodies leaving one edge re-enter opposite.
type Field struct {
	Width  float64
	Height float64
}

// Center returns the middle of the field.
func (f Field) Center() Vec {
	return Vec{X: f.Width / 2, Y: f.Height / 2}
}

// Body is the shared kinematic state of every moving object.
type Body struct {
	X, Y   float64 // Position
	VX, VY float64 // Velocity (units per second)
}

// Position returns the body's center.
func (b *Body) Position() Vec {
	return Vec{X: b.X, Y: b.Y}
}

// Integrate advances the position by velocity * dt.
func (b *Body) Integrate(dt float64) {
	b.X += b.VX * dt
	b.Y += b.VY * dt
}

// WrapFlush wraps the position exactly at the field edges so it stays in
// [0, extent) on both axes. One correction per axis is enough as long as a
// single frame never moves a body further than the field extent.
func (b *Body) WrapFlush(f Field) {
	if b.X < 0 {
		b.X += f.Width
	} else if b.X >= f.Width {
		b.X -= f.Width
	}
	if b.Y < 0 {
		b.Y += f.Height
	} else if b.Y >= f.Height {
		b.Y -= f.Height
	}
}

// WrapMargin wraps a body of the given radius only once it is fully off
// screen, translating it by extent + 2*radius so it slides back in from the
// opposite edge instead of popping into view.
func (b *Body) WrapMargin(f Field, radius float64) {
	if b.X < -radius {
		b.X += f.Width + radius*2
	} else if b.X > f.Width+radius {
		b.X -= f.Width + radius*2
	}
	if b.Y < -radius {
		b.Y += f.Height + radius*2
	} else if b.Y > f.Height+radius {
		b.Y -= f.Height + radius*2
	}
}

// Rand is the random source used for every randomized decision in the
// simulation. *rand.Rand satisfies it; tests substitute scripted sources.
type Rand interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// NewRand returns a seeded Rand. Equal seeds produce equal games.
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// BlinkVisible reports whether something with the given remaining
// protection time should be drawn this frame. It always returns true once
// the protection has run out.
func BlinkVisible(remaining, frequency float64) bool {
	if remaining <= 0 {
		return true
	}
	return int(remaining*frequency)%2 != 0
}
