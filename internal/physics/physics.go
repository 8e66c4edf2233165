// Package physics provides distance tests and a broad-phase grid for
// circle-based collision detection.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// PointInCircle reports whether a point lies strictly inside the circle
// centered at (cx, cy). A point exactly on the rim does not count.
func PointInCircle(px, py, cx, cy, radius float64) bool {
	return DistanceSquared(px, py, cx, cy) < radius*radius
}

// CirclesOverlap reports whether two circles overlap. Touching circles
// do not overlap.
func CirclesOverlap(x1, y1, r1, x2, y2, r2 float64) bool {
	minDist := r1 + r2
	return DistanceSquared(x1, y1, x2, y2) < minDist*minDist
}

// Magnitude returns the length of the vector (x, y).
func Magnitude(x, y float64) float64 {
	return math.Hypot(x, y)
}
