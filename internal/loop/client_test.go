package loop

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/tomz197/astrds/internal/game"
	"github.com/tomz197/astrds/internal/input"
	"github.com/tomz197/astrds/internal/object"
)

func fixedSize(w, h int) func() (int, int, error) {
	return func() (int, int, error) { return w, h, nil }
}

func newTestClient(t *testing.T, r io.Reader, out io.Writer, opts ClientOptions) *Client {
	t.Helper()
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = fixedSize(120, 40)
	}
	if opts.Rand == nil {
		opts.Rand = object.NewRand(1)
	}
	return NewClient(bufio.NewReader(r), out, opts)
}

// blockingReader returns a reader that never yields data until the test ends.
func blockingReader(t *testing.T) io.Reader {
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	return pr
}

func TestIntents(t *testing.T) {
	tests := []struct {
		name string
		in   input.Input
		want game.Intents
	}{
		{"nothing", input.Input{}, game.Intents{}},
		{"rotate", input.Input{Left: true, Right: true}, game.Intents{RotateLeft: true, RotateRight: true}},
		{"thrust", input.Input{Up: true}, game.Intents{Thrust: true}},
		{"space press fires and launches", input.Input{Space: true, Pressed: []byte(" ")}, game.Intents{Fire: true, Launch: true}},
		{"held space only fires", input.Input{Space: true}, game.Intents{Fire: true}},
		{"x only fires", input.Input{Fire: true}, game.Intents{Fire: true}},
		{"enter only launches", input.Input{Enter: true, Pressed: []byte("\r")}, game.Intents{Launch: true}},
		{"held enter does nothing", input.Input{Enter: true}, game.Intents{}},
		{"down jumps", input.Input{Down: true}, game.Intents{Hyperspace: true}},
		{"h jumps", input.Input{Hyperspace: true}, game.Intents{Hyperspace: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Intents(tt.in); got != tt.want {
				t.Errorf("Intents() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDrawStartScreen(t *testing.T) {
	var out bytes.Buffer
	c := newTestClient(t, blockingReader(t), &out, ClientOptions{})

	if err := c.drawFrame(time.Now()); err != nil {
		t.Fatalf("drawFrame() failed: %v", err)
	}
	for _, want := range []string{"Thrust", "Hyperspace", "vector rocks"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("start screen missing %q", want)
		}
	}
}

func TestDrawPlayingHUD(t *testing.T) {
	var out bytes.Buffer
	c := newTestClient(t, blockingReader(t), &out, ClientOptions{Store: &memoryStore{score: 4200}})
	c.Session().Launch()

	if err := c.drawFrame(time.Now()); err != nil {
		t.Fatalf("drawFrame() failed: %v", err)
	}
	frame := out.String()
	for _, want := range []string{"SCORE 0", "LEVEL 1", "HI 4200", "▲▲▲"} {
		if !strings.Contains(frame, want) {
			t.Errorf("HUD missing %q", want)
		}
	}
	if !strings.ContainsAny(frame, "▀▄█") {
		t.Error("expected obstacles or craft on the canvas")
	}

	// The next frame only repaints what changed.
	out.Reset()
	if err := c.drawFrame(time.Now()); err != nil {
		t.Fatalf("drawFrame() failed: %v", err)
	}
	if out.Len() >= len(frame) {
		t.Errorf("second frame wrote %d bytes, first wrote %d", out.Len(), len(frame))
	}
}

func TestStepLaunchesOnSpace(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	c := newTestClient(t, pr, &out, ClientOptions{})

	go pw.Write([]byte(" "))

	deadline := time.Now().Add(2 * time.Second)
	for c.Session().State() != game.StatePlaying && time.Now().Before(deadline) {
		running, err := c.step(time.Now(), 1.0/60)
		if err != nil {
			t.Fatalf("step() failed: %v", err)
		}
		if !running {
			t.Fatal("client stopped unexpectedly")
		}
		time.Sleep(time.Millisecond)
	}
	if c.Session().State() != game.StatePlaying {
		t.Fatal("space did not launch the game")
	}
	if c.bannerTimer <= 0 || c.banner != "LEVEL 1" {
		t.Errorf("expected level banner, got %q (%f)", c.banner, c.bannerTimer)
	}
}

func TestStepIdleTimeout(t *testing.T) {
	var out bytes.Buffer
	c := newTestClient(t, blockingReader(t), &out, ClientOptions{IdleTimeout: 10 * time.Second})
	now := time.Now()

	c.lastInput = now.Add(-9 * time.Second)
	running, err := c.step(now, 1.0/60)
	if err != nil || !running {
		t.Fatalf("step() = %v, %v; want running", running, err)
	}
	if !c.inactive {
		t.Error("expected inactivity warning near the timeout")
	}

	c.lastInput = now.Add(-11 * time.Second)
	if running, _ := c.step(now, 1.0/60); running {
		t.Error("expected idle client to stop")
	}
}

func TestRunStopsWhenInputCloses(t *testing.T) {
	var out bytes.Buffer
	c := newTestClient(t, strings.NewReader(""), &out, ClientOptions{FPS: 120})

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after input closed")
	}
	if !strings.HasSuffix(out.String(), "\033[?25h\033[?1049l") {
		t.Error("expected the terminal to be restored on exit")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	var out bytes.Buffer
	c := newTestClient(t, blockingReader(t), &out, ClientOptions{FPS: 120})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

// playUntilGameOver holds space (with key repeat) while dropping the biggest
// rock onto the craft every frame, and returns the time of the last frame.
func playUntilGameOver(t *testing.T, c *Client, now time.Time) time.Time {
	t.Helper()
	const dt = 1.0 / 60
	held := input.Input{Space: true, Pressed: []byte(" ")}

	c.Session().Launch()
	for i := 0; i < 5000 && c.Session().State() != game.StateGameOver; i++ {
		s := c.Session()
		if s.State() == game.StatePlaying {
			craft := s.Craft()
			craft.Invincible = false
			craft.InvincibleTimer = 0
			var target *object.Obstacle
			for _, o := range s.Obstacles() {
				if target == nil || o.Radius > target.Radius {
					target = o
				}
			}
			if target != nil {
				target.X, target.Y = craft.X, craft.Y
			}
		}
		now = now.Add(time.Second / 60)
		if _, err := c.advance(held, now, dt); err != nil {
			t.Fatalf("advance() failed: %v", err)
		}
	}
	if c.Session().State() != game.StateGameOver {
		t.Fatal("game never ended")
	}
	return now
}

func TestHeldFireDoesNotSkipGameOver(t *testing.T) {
	var out bytes.Buffer
	c := newTestClient(t, blockingReader(t), &out, ClientOptions{IdleTimeout: -1})
	now := playUntilGameOver(t, c, time.Now())
	score := c.Session().Score()

	held := input.Input{Space: true, Pressed: []byte(" ")}
	for i := 0; i < 30; i++ {
		now = now.Add(time.Second / 60)
		if _, err := c.advance(held, now, 1.0/60); err != nil {
			t.Fatalf("advance() failed: %v", err)
		}
		if c.Session().State() != game.StateGameOver {
			t.Fatalf("frame %d: state = %v, want %v", i, c.Session().State(), game.StateGameOver)
		}
	}
	if c.Session().Score() != score {
		t.Errorf("final score changed from %d to %d", score, c.Session().Score())
	}

	for i := 0; i < 40; i++ {
		now = now.Add(time.Second / 60)
		c.advance(input.Input{}, now, 1.0/60)
	}
	if c.Session().State() != game.StateGameOver {
		t.Fatal("game over screen must wait for a launch press")
	}

	now = now.Add(time.Second / 60)
	c.advance(input.Input{Space: true, Pressed: []byte(" ")}, now, 1.0/60)
	if c.Session().State() != game.StatePlaying {
		t.Errorf("state = %v after a fresh press, want %v", c.Session().State(), game.StatePlaying)
	}
}

func TestGameOverKeepsLoadedHighScore(t *testing.T) {
	var out bytes.Buffer
	c := newTestClient(t, blockingReader(t), &out, ClientOptions{
		Store:       &memoryStore{score: 1_000_000},
		IdleTimeout: -1,
	})
	now := playUntilGameOver(t, c, time.Now())

	if err := c.drawFrame(now); err != nil {
		t.Fatalf("drawFrame() failed: %v", err)
	}
	frame := out.String()
	if strings.Contains(frame, "NEW HIGH SCORE") {
		t.Error("unbeaten high score announced as new")
	}
	if !strings.Contains(frame, "High score 1000000") {
		t.Error("game over screen missing the stored high score")
	}
}

func TestGameOverAnnouncesRaisedHighScore(t *testing.T) {
	var out bytes.Buffer
	c := newTestClient(t, blockingReader(t), &out, ClientOptions{IdleTimeout: -1})
	now := playUntilGameOver(t, c, time.Now())
	if c.Session().Score() == 0 {
		t.Skip("no rock destroyed before the game ended")
	}

	if err := c.drawFrame(now); err != nil {
		t.Fatalf("drawFrame() failed: %v", err)
	}
	if !strings.Contains(out.String(), "NEW HIGH SCORE") {
		t.Error("expected a new high score on the game over screen")
	}
}

type memoryStore struct{ score int }

func (m *memoryStore) Load() (int, error) { return m.score, nil }

func (m *memoryStore) Save(score int) error {
	m.score = score
	return nil
}
