package object

import (
	"math"

	"github.com/tomz197/astrds/internal/physics"
)

// maxPlacementDraws bounds the rejection loop for a single obstacle. With a
// real random source and the stock field the loop ends after a couple of
// draws; the bound only matters for degenerate sources.
const maxPlacementDraws = 1000

// PlaceObstacles creates count large obstacles at uniformly random
// positions, redrawing any position closer than clearance to safe.
func PlaceObstacles(count int, f Field, safe Vec, clearance float64, rng Rand) []*Obstacle {
	if count < 0 {
		count = 0
	}
	obstacles := make([]*Obstacle, 0, count)
	for i := 0; i < count; i++ {
		p := placementPoint(f, safe, clearance, rng)
		obstacles = append(obstacles, NewObstacle(p.X, p.Y, TierLarge, rng))
	}
	return obstacles
}

// placementPoint draws a point at least clearance away from safe. If every
// draw is rejected it falls back to the point half a field away from safe
// on both axes, which is the farthest point on the torus.
func placementPoint(f Field, safe Vec, clearance float64, rng Rand) Vec {
	for i := 0; i < maxPlacementDraws; i++ {
		x := rng.Float64() * f.Width
		y := rng.Float64() * f.Height
		if physics.Distance(x, y, safe.X, safe.Y) >= clearance {
			return Vec{X: x, Y: y}
		}
	}
	return Vec{
		X: math.Mod(safe.X+f.Width/2, f.Width),
		Y: math.Mod(safe.Y+f.Height/2, f.Height),
	}
}
