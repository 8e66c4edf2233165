// Package loop drives a game session on a terminal: it samples input,
// advances the session by wall-clock time and renders each frame.
package loop

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/tomz197/astrds/internal/config"
	"github.com/tomz197/astrds/internal/draw"
	"github.com/tomz197/astrds/internal/game"
	"github.com/tomz197/astrds/internal/input"
	"github.com/tomz197/astrds/internal/object"
)

// bannerSeconds is how long level announcements stay on screen.
const bannerSeconds = 2.0

// gameOverHold is how long the game over screen ignores launch presses,
// so a key still held from play cannot restart the game.
const gameOverHold = 1.0

// Client handles rendering and input for a single terminal.
type Client struct {
	session  *game.Session
	canvas   *draw.Canvas
	cw       *draw.ChunkWriter // Accumulates one frame of output
	writer   io.Writer
	stream   *input.Stream
	termSize draw.TermSizeFunc
	styles   styles
	logger   *log.Logger
	username string

	frameTime   time.Duration
	idleTimeout time.Duration
	lastInput   time.Time
	inactive    bool

	prevState   game.State
	wasInactive bool
	banner      string
	bannerTimer float64
	launchHold  float64 // Seconds until a launch press is accepted again
	newHigh     bool    // The high score was raised during the current game
	points      []draw.Point // Scratch buffer for obstacle outlines
}

// ClientOptions configures the client. Zero values get defaults.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Store        game.HighScoreStore
	Rand         object.Rand
	Logger       *log.Logger
	FPS          int
	IdleTimeout  time.Duration // 0 uses config.InactivityDisconnect, negative never disconnects
	ForceColor   bool          // Style text even when w is not a detectable terminal (SSH)
}

// NewClient creates a client reading keys from r and drawing to w. It owns
// a fresh game session.
func NewClient(r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSize := opts.TermSizeFunc
	if termSize == nil {
		termSize = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	idle := opts.IdleTimeout
	if idle == 0 {
		idle = config.InactivityDisconnect
	}
	renderer := lipgloss.NewRenderer(w)
	if opts.ForceColor {
		renderer.SetColorProfile(termenv.ANSI256)
	}

	session := game.New(game.Options{
		Store:  opts.Store,
		Rand:   opts.Rand,
		Logger: logger,
	})

	termWidth, termHeight, _ := termSize()
	cols, rows, offCol, offRow := draw.FitTerminal(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight)
	field := session.Field()
	canvas := draw.NewCanvas(cols, rows, field.Width, field.Height)
	canvas.SetOffset(offCol, offRow)

	return &Client{
		session:     session,
		canvas:      canvas,
		cw:          draw.NewChunkWriter(w, offCol, offRow),
		writer:      w,
		stream:      input.StartStream(r),
		termSize:    termSize,
		styles:      newStyles(renderer),
		logger:      logger,
		username:    opts.Username,
		frameTime:   time.Second / time.Duration(fps),
		idleTimeout: idle,
		lastInput:   time.Now(),
		prevState:   session.State(),
	}
}

// Session returns the game session driven by this client.
func (c *Client) Session() *game.Session {
	return c.session
}

// Run starts the frame loop. It blocks until the player quits, the input
// stream closes, the player idles out or ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	draw.EnterScreen(c.writer)
	defer draw.LeaveScreen(c.writer)

	ticker := time.NewTicker(c.frameTime)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now

		running, err := c.step(now, dt)
		if err != nil {
			return err
		}
		if !running {
			return nil
		}
		if err := c.drawFrame(now); err != nil {
			return err
		}
	}
}

// step samples input and advances the session by dt. It reports false when
// the client should stop.
func (c *Client) step(now time.Time, dt float64) (bool, error) {
	return c.advance(input.ReadInput(c.stream), now, dt)
}

// advance applies one frame of input and moves the session forward.
func (c *Client) advance(in input.Input, now time.Time, dt float64) (bool, error) {
	if in.Closed || in.Quit {
		return false, nil
	}

	if len(in.Pressed) > 0 {
		c.lastInput = now
		c.inactive = false
	} else if c.idleTimeout > 0 {
		idle := now.Sub(c.lastInput)
		if idle > c.idleTimeout {
			c.logger.Info("disconnecting idle player", "user", c.username, "idle", idle.Round(time.Second))
			return false, nil
		}
		c.inactive = idle > c.idleTimeout*4/5
	}

	intents := Intents(in)
	if c.launchHold > 0 {
		c.launchHold -= dt
		intents.Launch = false
	}
	if err := c.session.Update(dt, intents); err != nil {
		return false, err
	}
	c.handleEvents(dt)
	return true, nil
}

// handleEvents reacts to what the session reported this frame.
func (c *Client) handleEvents(dt float64) {
	if c.bannerTimer > 0 {
		c.bannerTimer -= dt
	}
	for _, e := range c.session.Events() {
		switch e.Kind {
		case game.EventLaunched:
			input.ResetKeyInput(c.stream)
			c.newHigh = false
			c.showBanner("LEVEL 1")
		case game.EventLevelCleared:
			c.showBanner(levelBanner(e.Level))
		case game.EventGameOver:
			input.ResetKeyInput(c.stream)
			c.launchHold = gameOverHold
			c.logger.Info("game over", "user", c.username, "score", e.Score, "level", c.session.Level())
		case game.EventHighScore:
			c.newHigh = true
			c.logger.Debug("new high score", "user", c.username, "score", e.Score)
		}
	}
}

func (c *Client) showBanner(text string) {
	c.banner = text
	c.bannerTimer = bannerSeconds
}

// updateScreen follows terminal resizes, clamping to the max render area.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSize()
	if err != nil {
		return
	}
	cols, rows, offCol, offRow := draw.FitTerminal(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight)

	if cols != c.canvas.Cols() || rows != c.canvas.Rows() ||
		offCol != c.canvas.OffsetCol() || offRow != c.canvas.OffsetRow() {
		// Wipe residue outside the new canvas area.
		c.cw.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
	}
	c.canvas.Resize(cols, rows)
	c.canvas.SetOffset(offCol, offRow)
	c.cw.SetOffset(offCol, offRow)
}

// Intents maps held keys onto the session's logical inputs. Launch is an
// edge: it needs a space or enter byte that arrived this frame.
func Intents(in input.Input) game.Intents {
	return game.Intents{
		RotateLeft:  in.Left,
		RotateRight: in.Right,
		Thrust:      in.Up,
		Fire:        in.Space || in.Fire,
		Launch:      launchPressed(in.Pressed),
		Hyperspace:  in.Hyperspace || in.Down,
	}
}

func launchPressed(pressed []byte) bool {
	return bytes.ContainsAny(pressed, " \r\n")
}
