package physics

import "math"

// SpatialGrid is a uniform bucket grid used as a broad phase for circle
// tests on a bounded field. Items are inserted by position and index; a
// query visits the 3x3 block of cells around a point.
//
// Cell size must be >= the largest distance at which two items can still
// interact, so every true contact is found in the neighbourhood. Positions
// outside the field (bodies drifting through a wrap margin) are clamped
// into the border cells, which keeps that guarantee: clamping never moves
// two points further apart in cell space.
//
// The grid only narrows candidates. Callers still run the exact distance
// test and decide ordering themselves.
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64
	cols        int
	rows        int
	cells       [][]int
}

// NewSpatialGrid creates a grid covering a width x height field.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	return &SpatialGrid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       make([][]int, cols*rows),
	}
}

// CellSize returns the edge length of one cell.
func (g *SpatialGrid) CellSize() float64 {
	return g.cellSize
}

// Clear empties every cell but keeps the backing arrays for the next frame.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert files index under the cell containing (x, y).
func (g *SpatialGrid) Insert(x, y float64, index int) {
	col, row := g.cellOf(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], index)
}

// QueryAround calls fn for every index stored in the cells adjacent to
// (x, y), including its own cell. Visiting order is unspecified. If fn
// returns true the query stops.
func (g *SpatialGrid) QueryAround(x, y float64, fn func(index int) bool) {
	col, row := g.cellOf(x, y)

	for r := row - 1; r <= row+1; r++ {
		if r < 0 || r >= g.rows {
			continue
		}
		for c := col - 1; c <= col+1; c++ {
			if c < 0 || c >= g.cols {
				continue
			}
			for _, item := range g.cells[r*g.cols+c] {
				if fn(item) {
					return
				}
			}
		}
	}
}

// cellOf converts a position to clamped cell coordinates.
func (g *SpatialGrid) cellOf(x, y float64) (col, row int) {
	col = clampCell(int(math.Floor(x*g.invCellSize)), g.cols)
	row = clampCell(int(math.Floor(y*g.invCellSize)), g.rows)
	return col, row
}

func clampCell(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
