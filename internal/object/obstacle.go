package object

import (
	"math"
)

// Tier is the size class of an obstacle. Tiers are ordered from largest to
// smallest; splitting always moves one step towards TierSmall.
type Tier int

const (
	TierLarge Tier = iota
	TierMedium
	TierSmall
)

// tierProps holds the fixed properties of one tier.
type tierProps struct {
	radius float64
	speed  float64 // Base speed, scaled per obstacle by a random factor
	points int
}

var tiers = [...]tierProps{
	TierLarge:  {radius: 50, speed: 80, points: 20},
	TierMedium: {radius: 25, speed: 130, points: 50},
	TierSmall:  {radius: 12, speed: 200, points: 100},
}

// Randomization ranges for new obstacles: speed factor in [0.6, 1.4),
// 8 to 12 vertices, radial jitter in [0.65, 1.25).
const (
	speedFactorMin   = 0.6
	speedFactorSpan  = 0.8
	vertexCountMin   = 8
	vertexCountSpan  = 5
	vertexJitterMin  = 0.65
	vertexJitterSpan = 0.6
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierLarge:
		return "large"
	case TierMedium:
		return "medium"
	case TierSmall:
		return "small"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	return t >= TierLarge && t <= TierSmall
}

// Radius returns the collision radius for the tier.
func (t Tier) Radius() float64 {
	return tiers[t].radius
}

// Speed returns the tier's base speed before randomization.
func (t Tier) Speed() float64 {
	return tiers[t].speed
}

// Points returns the score awarded for destroying an obstacle of the tier.
func (t Tier) Points() int {
	return tiers[t].points
}

// Smaller returns the next tier down and false if t is already the smallest.
func (t Tier) Smaller() (Tier, bool) {
	if t >= TierSmall {
		return t, false
	}
	return t + 1, true
}

// Obstacle is a drifting rock. Its silhouette is rolled once at creation
// and never changes.
type Obstacle struct {
	Body
	Tier     Tier
	Radius   float64
	Points   int
	Vertices []Vec // Silhouette in local space, evenly spaced by angle
}

// NewObstacle creates an obstacle of the given tier at (x, y) with a random
// heading, a randomized speed and a freshly generated silhouette.
func NewObstacle(x, y float64, tier Tier, rng Rand) *Obstacle {
	if !tier.Valid() {
		tier = TierLarge
	}
	props := tiers[tier]

	speed := props.speed * (speedFactorMin + rng.Float64()*speedFactorSpan)
	angle := rng.Float64() * 2 * math.Pi

	o := &Obstacle{
		Body: Body{
			X:  x,
			Y:  y,
			VX: math.Cos(angle) * speed,
			VY: math.Sin(angle) * speed,
		},
		Tier:   tier,
		Radius: props.radius,
		Points: props.points,
	}
	o.Vertices = silhouette(props.radius, rng)
	return o
}

// silhouette generates an irregular ring of vertices around the origin.
func silhouette(radius float64, rng Rand) []Vec {
	count := vertexCountMin + rng.Intn(vertexCountSpan)
	vertices := make([]Vec, count)
	for i := range vertices {
		angle := float64(i) / float64(count) * 2 * math.Pi
		r := radius * (vertexJitterMin + rng.Float64()*vertexJitterSpan)
		vertices[i] = Vec{X: math.Cos(angle) * r, Y: math.Sin(angle) * r}
	}
	return vertices
}

// Update moves the obstacle and wraps it once it has fully left the field.
func (o *Obstacle) Update(dt float64, f Field) {
	o.Integrate(dt)
	o.WrapMargin(f, o.Radius)
}

// Split returns the fragments left behind when the obstacle is destroyed:
// two independently randomized obstacles one tier smaller at the same
// position, or nil for the smallest tier.
func (o *Obstacle) Split(rng Rand) []*Obstacle {
	next, ok := o.Tier.Smaller()
	if !ok {
		return nil
	}
	return []*Obstacle{
		NewObstacle(o.X, o.Y, next, rng),
		NewObstacle(o.X, o.Y, next, rng),
	}
}

// WorldVertices returns the silhouette translated to the obstacle's
// position, reusing buf when it is large enough.
func (o *Obstacle) WorldVertices(buf []Vec) []Vec {
	if cap(buf) < len(o.Vertices) {
		buf = make([]Vec, len(o.Vertices))
	}
	buf = buf[:len(o.Vertices)]
	for i, v := range o.Vertices {
		buf[i] = Vec{X: o.X + v.X, Y: o.Y + v.Y}
	}
	return buf
}
