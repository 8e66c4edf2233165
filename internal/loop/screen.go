package loop

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/astrds/internal/draw"
	"github.com/tomz197/astrds/internal/game"
	"github.com/tomz197/astrds/internal/object"
)

var titleArt = []string{
	`   _   ___ _____ ___ ___  ___ `,
	`  /_\ / __|_   _| _ \   \/ __|`,
	` / _ \\__ \ | | |   / |) \__ \`,
	`/_/ \_\___/ |_| |_|_\___/|___/`,
}

var controlLines = []string{
	"W / Up . . . . . Thrust",
	"A D / < > . . .  Rotate",
	"SPACE / X . . . . Shoot",
	"H / S / Down . Hyperspace",
	"Q . . . . . . . .  Quit",
}

// styles are the text styles used for overlays.
type styles struct {
	title  lipgloss.Style
	hud    lipgloss.Style
	accent lipgloss.Style
	dim    lipgloss.Style
	panel  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7DF9FF")),
		hud:    r.NewStyle().Bold(true),
		accent: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD166")),
		dim:    r.NewStyle().Foreground(lipgloss.Color("#8A8A8A")),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7DF9FF")).
			Padding(1, 4).
			Align(lipgloss.Center),
	}
}

// drawFrame renders the current snapshot and the overlay for its state.
func (c *Client) drawFrame(now time.Time) error {
	c.updateScreen()

	snap := c.session.Snapshot()

	// Full clear on screen transitions so old overlay text does not linger.
	if snap.State != c.prevState || c.inactive != c.wasInactive {
		c.cw.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.prevState = snap.State
		c.wasInactive = c.inactive
	}

	c.canvas.Clear()
	c.drawWorld(snap, now)
	if err := c.canvas.Render(c.cw); err != nil {
		return err
	}
	c.canvas.RenderBorder(c.cw)

	c.drawUI(snap, now)
	return c.cw.Flush()
}

// drawWorld plots obstacles, projectiles and the craft onto the canvas.
func (c *Client) drawWorld(snap game.Snapshot, now time.Time) {
	for _, o := range snap.Obstacles {
		if cap(c.points) < len(o.Vertices) {
			c.points = make([]draw.Point, len(o.Vertices))
		}
		pts := c.points[:len(o.Vertices)]
		for i, v := range o.Vertices {
			pts[i] = draw.Point{X: o.X + v.X, Y: o.Y + v.Y}
		}
		c.canvas.Polygon(pts)
	}

	for _, p := range snap.Projectiles {
		c.canvas.Plot(draw.Point{X: p.X, Y: p.Y})
	}

	craft := snap.Craft
	if !craft.Present || !craft.Visible {
		return
	}
	var outline [4]draw.Point
	for i, v := range craft.Outline {
		outline[i] = draw.Point{X: v.X, Y: v.Y}
	}
	c.canvas.Polygon(outline[:])

	// Flicker the exhaust so it reads as a flame.
	if craft.Thrusting && now.UnixMilli()/50%2 == 0 {
		tail := outline[2]
		sin, cos := math.Sincos(craft.Angle)
		flame := draw.Point{
			X: tail.X - cos*object.CraftSize*0.7,
			Y: tail.Y - sin*object.CraftSize*0.7,
		}
		c.canvas.Line(tail, flame)
	}
}

// drawUI draws the overlay for the current state.
func (c *Client) drawUI(snap game.Snapshot, now time.Time) {
	if c.inactive {
		c.drawInactivityScreen(now)
		return
	}

	switch snap.State {
	case game.StateStart:
		c.drawStartScreen(snap, now)
	case game.StatePlaying:
		c.drawHUD(snap)
		if c.bannerTimer > 0 {
			c.centered(c.canvas.Rows()/2-4, c.banner, c.styles.accent)
		}
	case game.StateDead:
		c.drawHUD(snap)
		c.centered(c.canvas.Rows()/2, fmt.Sprintf("SHIP LOST  respawn in %.1f", snap.RespawnIn), c.styles.accent)
	case game.StateGameOver:
		c.drawHUD(snap)
		c.drawGameOverScreen(snap, now)
	}
}

// drawHUD draws score, level, high score and lives along the top row.
// Numbers are padded so shrinking values leave no residue.
func (c *Client) drawHUD(snap game.Snapshot) {
	cols := c.canvas.Cols()

	c.text(2, 1, fmt.Sprintf("SCORE %-7d", snap.Score), c.styles.hud)

	level := fmt.Sprintf("LEVEL %-3d", snap.Level)
	c.text(cols/2-len(level)/2, 1, level, c.styles.hud)

	right := fmt.Sprintf("HI %-7d LIVES %s", snap.HighScore, livesGlyphs(snap.Lives))
	c.text(cols-lipgloss.Width(right)-1, 1, right, c.styles.hud)
}

func (c *Client) drawStartScreen(snap game.Snapshot, now time.Time) {
	mid := c.canvas.Rows() / 2
	top := mid - 8
	for i, line := range titleArt {
		c.centered(top+i, line, c.styles.title)
	}
	c.centered(top+len(titleArt)+1, "~ vector rocks in your terminal ~", c.styles.dim)

	row := top + len(titleArt) + 3
	for i, line := range controlLines {
		c.centered(row+i, line, c.styles.hud)
	}
	row += len(controlLines) + 1

	if snap.HighScore > 0 {
		c.centered(row, "HIGH SCORE "+strconv.Itoa(snap.HighScore), c.styles.accent)
	}
	if blinkOn(now) {
		c.centered(row+2, ">>  Press SPACE to Start  <<", c.styles.accent)
	}
}

func (c *Client) drawGameOverScreen(snap game.Snapshot, now time.Time) {
	lines := []string{
		c.styles.title.Render("G A M E   O V E R"),
		"",
		fmt.Sprintf("Score %d   Level %d", snap.Score, snap.Level),
	}
	if c.newHigh {
		lines = append(lines, c.styles.accent.Render("NEW HIGH SCORE"))
	} else {
		lines = append(lines, fmt.Sprintf("High score %d", snap.HighScore))
	}
	c.block(c.canvas.Rows()/2-4, c.styles.panel.Render(strings.Join(lines, "\n")))

	if blinkOn(now) {
		c.centered(c.canvas.Rows()/2+6, ">>  Press SPACE to Restart  <<", c.styles.accent)
	}
}

func (c *Client) drawInactivityScreen(now time.Time) {
	left := c.idleTimeout - now.Sub(c.lastInput)
	if left < 0 {
		left = 0
	}
	lines := []string{
		c.styles.accent.Render("INACTIVITY WARNING"),
		"",
		fmt.Sprintf("Disconnecting in %d seconds", int(left.Seconds())),
		c.styles.dim.Render("Press any key to continue"),
	}
	c.block(c.canvas.Rows()/2-4, c.styles.panel.Render(strings.Join(lines, "\n")))
}

// text writes styled text at a 1-based canvas cell and marks the cells for
// repaint on the next frame.
func (c *Client) text(col, row int, s string, st lipgloss.Style) {
	if row < 1 || row > c.canvas.Rows() {
		return
	}
	if col < 1 {
		col = 1
	}
	rendered := st.Render(s)
	c.cw.WriteAt(col, row, rendered)
	c.canvas.MarkTextDirty(col, row, lipgloss.Width(rendered))
}

// centered writes styled text horizontally centered on row.
func (c *Client) centered(row int, s string, st lipgloss.Style) {
	c.text(c.canvas.Cols()/2-lipgloss.Width(s)/2+1, row, s, st)
}

// block writes a pre-rendered multi-line block centered horizontally,
// starting at row.
func (c *Client) block(row int, rendered string) {
	lines := strings.Split(rendered, "\n")
	width := lipgloss.Width(rendered)
	col := c.canvas.Cols()/2 - width/2 + 1
	if col < 1 {
		col = 1
	}
	for i, line := range lines {
		r := row + i
		if r < 1 || r > c.canvas.Rows() {
			continue
		}
		c.cw.WriteAt(col, r, line)
		c.canvas.MarkTextDirty(col, r, width)
	}
}

func levelBanner(level int) string {
	return "LEVEL " + strconv.Itoa(level)
}

func livesGlyphs(lives int) string {
	if lives <= 0 {
		return "-  "
	}
	return strings.Repeat("▲", lives) + strings.Repeat(" ", max(0, 3-lives))
}

func blinkOn(now time.Time) bool {
	return now.UnixMilli()/600%2 == 0
}
