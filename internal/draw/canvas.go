// Package draw renders vector shapes onto a terminal using half-block
// characters, giving each cell two vertically stacked pixels.
package draw

import (
	"io"
	"math"
	"strconv"
)

// Point is a position in logical (field) coordinates.
type Point struct {
	X, Y float64
}

// Block characters used for the two pixels of a cell.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
	BlockEmpty     = ' '
)

// Canvas is a pixel buffer that maps a fixed logical coordinate space onto
// whatever terminal area is available. Render only emits cells that changed
// since the previous frame.
type Canvas struct {
	cols    int    // Terminal columns in use
	rows    int    // Terminal rows in use
	subRows int    // rows * 2
	pixels  []bool // [y*cols + x]
	shown   []rune // Last rune written per cell; 0 forces a rewrite

	logicalWidth  float64
	logicalHeight float64
	scaleX        float64
	scaleY        float64

	// 0-based terminal offset of the canvas when it is centered in a
	// larger terminal.
	offsetCol int
	offsetRow int

	numBuf [20]byte
	outBuf []byte
}

// NewCanvas creates a canvas of cols x rows terminal cells showing the
// logical area logicalWidth x logicalHeight.
func NewCanvas(cols, rows int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.Resize(cols, rows)
	return c
}

// Resize changes the terminal area. Buffers are reallocated and the next
// Render redraws everything when the size actually changes.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	if cols != c.cols || rows != c.rows || c.pixels == nil {
		c.cols = cols
		c.rows = rows
		c.subRows = rows * 2
		c.pixels = make([]bool, c.subRows*cols)
		c.shown = make([]rune, rows*cols)
	}
	if c.logicalWidth > 0 {
		c.scaleX = float64(cols) / c.logicalWidth
	}
	if c.logicalHeight > 0 {
		c.scaleY = float64(c.subRows) / c.logicalHeight
	}
}

// SetOffset sets the 0-based column and row where the canvas starts.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.ForceRedraw()
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int { return c.offsetCol }

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int { return c.offsetRow }

// Cols returns the number of terminal columns in use.
func (c *Canvas) Cols() int { return c.cols }

// Rows returns the number of terminal rows in use.
func (c *Canvas) Rows() int { return c.rows }

// Clear resets all pixels. What is on screen is untouched until Render.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// ForceRedraw makes the next Render write every cell, e.g. after the
// terminal was cleared.
func (c *Canvas) ForceRedraw() {
	clear(c.shown)
}

// MarkTextDirty marks cells covered by overlay text so the next Render
// repaints them. col and row are 1-based canvas coordinates.
func (c *Canvas) MarkTextDirty(col, row, width int) {
	r := row - 1
	if r < 0 || r >= c.rows {
		return
	}
	for x := col - 1; x < col-1+width; x++ {
		if x >= 0 && x < c.cols {
			c.shown[r*c.cols+x] = 0
		}
	}
}

func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.cols && y >= 0 && y < c.subRows {
		c.pixels[y*c.cols+x] = true
	}
}

func (c *Canvas) toPixel(p Point) (int, int) {
	return int(math.Floor(p.X * c.scaleX)), int(math.Floor(p.Y * c.scaleY))
}

// Plot sets the pixel under a logical point.
func (c *Canvas) Plot(p Point) {
	c.setPixel(c.toPixel(p))
}

// Line draws a line between two logical points (Bresenham in pixel space).
// Pixels outside the canvas are clipped.
func (c *Canvas) Line(a, b Point) {
	x1, y1 := c.toPixel(a)
	x2, y2 := c.toPixel(b)

	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx + dy
	for {
		c.setPixel(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

// Polygon draws a closed outline through points.
func (c *Canvas) Polygon(points []Point) {
	n := len(points)
	if n < 2 {
		if n == 1 {
			c.Plot(points[0])
		}
		return
	}
	for i := 0; i < n; i++ {
		c.Line(points[i], points[(i+1)%n])
	}
}

// cell returns the rune for the cell at (col, row).
func (c *Canvas) cell(col, row int) rune {
	top := c.pixels[(row*2)*c.cols+col]
	bottom := c.pixels[(row*2+1)*c.cols+col]
	switch {
	case top && bottom:
		return BlockFull
	case top:
		return BlockUpperHalf
	case bottom:
		return BlockLowerHalf
	default:
		return BlockEmpty
	}
}

// Render writes every cell that differs from the previous frame.
// Consecutive changed cells share one cursor move.
func (c *Canvas) Render(w io.Writer) error {
	out := c.outBuf[:0]
	for row := 0; row < c.rows; row++ {
		cursorAt := -1
		for col := 0; col < c.cols; col++ {
			ch := c.cell(col, row)
			idx := row*c.cols + col
			if c.shown[idx] == ch {
				continue
			}
			c.shown[idx] = ch
			if cursorAt != col {
				out = c.appendMove(out, col+1, row+1)
			}
			out = appendRune(out, ch)
			cursorAt = col + 1
		}
	}
	c.outBuf = out
	if len(out) == 0 {
		return nil
	}
	_, err := w.Write(out)
	return err
}

// RenderBorder draws a frame around the canvas when the terminal is larger
// than the render area. Sides are only drawn where there is room.
func (c *Canvas) RenderBorder(w *ChunkWriter) {
	hasSides := c.offsetCol >= 1
	hasTop := c.offsetRow >= 1
	if !hasSides && !hasTop {
		return
	}

	// Border positions relative to the canvas origin (1-based).
	left, right := 0, c.cols+1
	top, bottom := 0, c.rows+1

	horizontal := make([]rune, c.cols)
	for i := range horizontal {
		horizontal[i] = '─'
	}
	if hasTop {
		if hasSides {
			w.WriteAt(left, top, "┌"+string(horizontal)+"┐")
			w.WriteAt(left, bottom, "└"+string(horizontal)+"┘")
		} else {
			w.WriteAt(1, top, string(horizontal))
			w.WriteAt(1, bottom, string(horizontal))
		}
	}
	if hasSides {
		for row := 1; row <= c.rows; row++ {
			w.WriteAt(left, row, "│")
			w.WriteAt(right, row, "│")
		}
	}
}

// LogicalToTerminal converts a logical point to a 1-based canvas cell.
func (c *Canvas) LogicalToTerminal(p Point) (col, row int) {
	x, y := c.toPixel(p)
	return x + 1, y/2 + 1
}

func (c *Canvas) appendMove(out []byte, col, row int) []byte {
	out = append(out, "\033["...)
	out = append(out, strconv.AppendInt(c.numBuf[:0], int64(row+c.offsetRow), 10)...)
	out = append(out, ';')
	out = append(out, strconv.AppendInt(c.numBuf[:0], int64(col+c.offsetCol), 10)...)
	return append(out, 'H')
}

func appendRune(out []byte, r rune) []byte {
	if r < 0x80 {
		return append(out, byte(r))
	}
	return append(out, string(r)...)
}

// FitTerminal clamps a terminal size to the maximum render area and returns
// the centering offset for the clamped area.
func FitTerminal(termWidth, termHeight, maxWidth, maxHeight int) (cols, rows, offsetCol, offsetRow int) {
	cols, rows = termWidth, termHeight
	if cols > maxWidth {
		cols = maxWidth
	}
	if rows > maxHeight {
		rows = maxHeight
	}
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	return cols, rows, (termWidth - cols) / 2, (termHeight - rows) / 2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
