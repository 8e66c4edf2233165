package game

import (
	"github.com/tomz197/astrds/internal/object"
	"github.com/tomz197/astrds/internal/physics"
)

// collisionGridCellSize must cover the largest interaction distance: a large
// obstacle against the craft (50 + 12).
const collisionGridCellSize = 64.0

// Detector runs the per-frame circle tests. It keeps a spatial grid and
// scratch buffers between frames so steady-state frames do not allocate.
//
// The grid only prunes candidates. Among candidates the detector always
// picks the lowest obstacle index, so results match a plain scan of the
// obstacle list in order.
type Detector struct {
	grid      *physics.SpatialGrid
	destroyed []bool
	pending   []*object.Obstacle
	hits      []Hit
}

// Hit records one projectile/obstacle impact.
type Hit struct {
	Obstacle   *object.Obstacle
	Projectile *object.Projectile
}

// HitResult is the outcome of the projectile pass.
type HitResult struct {
	// Obstacles is the new obstacle list: survivors in their original
	// order followed by fragments from destroyed obstacles.
	Obstacles []*object.Obstacle
	// Hits lists impacts in the order they were resolved. It is reused by
	// the next call.
	Hits []Hit
	// Points is the total score earned this pass.
	Points int
}

// NewDetector creates a detector for the given field.
func NewDetector(f object.Field) *Detector {
	return &Detector{
		grid: physics.NewSpatialGrid(f.Width, f.Height, collisionGridCellSize),
	}
}

// index rebuilds the grid from the current obstacle positions.
func (d *Detector) index(obstacles []*object.Obstacle) {
	d.grid.Clear()
	for i, o := range obstacles {
		d.grid.Insert(o.X, o.Y, i)
	}
}

// Projectiles resolves projectile hits. Each active projectile, in order,
// takes out the first obstacle in list order that it lies strictly inside
// and that no earlier projectile destroyed this frame. The projectile is
// deactivated, points are awarded and the obstacle's fragments are queued.
//
// The returned Obstacles slice may share the backing array of obstacles.
// Spent projectiles are only deactivated; the caller filters them.
func (d *Detector) Projectiles(projectiles []*object.Projectile, obstacles []*object.Obstacle, rng object.Rand) HitResult {
	d.index(obstacles)

	if cap(d.destroyed) < len(obstacles) {
		d.destroyed = make([]bool, len(obstacles))
	}
	d.destroyed = d.destroyed[:len(obstacles)]
	clear(d.destroyed)
	d.pending = d.pending[:0]
	d.hits = d.hits[:0]

	points := 0
	for _, p := range projectiles {
		if !p.Active {
			continue
		}

		target := -1
		d.grid.QueryAround(p.X, p.Y, func(i int) bool {
			if d.destroyed[i] || (target >= 0 && i > target) {
				return false
			}
			o := obstacles[i]
			if physics.PointInCircle(p.X, p.Y, o.X, o.Y, o.Radius) {
				target = i
			}
			return false
		})
		if target < 0 {
			continue
		}

		o := obstacles[target]
		p.Deactivate()
		d.destroyed[target] = true
		points += o.Points
		d.hits = append(d.hits, Hit{Obstacle: o, Projectile: p})
		d.pending = append(d.pending, o.Split(rng)...)
	}

	if len(d.hits) == 0 {
		return HitResult{Obstacles: obstacles}
	}

	kept := obstacles[:0]
	for i, o := range obstacles {
		if !d.destroyed[i] {
			kept = append(kept, o)
		}
	}
	kept = append(kept, d.pending...)

	return HitResult{
		Obstacles: kept,
		Hits:      d.hits,
		Points:    points,
	}
}

// Craft returns the index of the first obstacle, in list order, that
// overlaps the craft's collision circle. Dead or invincible craft never
// collide. Only one obstacle is reported even when several overlap.
func (d *Detector) Craft(c *object.Craft, obstacles []*object.Obstacle) (int, bool) {
	if c == nil || c.Dead || c.Invincible {
		return -1, false
	}

	d.index(obstacles)
	r := c.CollisionRadius()

	first := -1
	d.grid.QueryAround(c.X, c.Y, func(i int) bool {
		if first >= 0 && i > first {
			return false
		}
		o := obstacles[i]
		if physics.CirclesOverlap(c.X, c.Y, r, o.X, o.Y, o.Radius) {
			first = i
		}
		return false
	})
	return first, first >= 0
}
