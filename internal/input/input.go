// Package input turns raw terminal bytes into per-frame key state.
//
// Terminals only report key presses (and auto-repeats), never releases, so a
// key counts as held for a short window after each byte that names it.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
const keyHoldDuration = 30 * time.Millisecond

// Input represents the current frame's input state.
type Input struct {
	Quit       bool
	Left       bool
	Right      bool
	Up         bool
	Down       bool
	Fire       bool
	Space      bool
	Enter      bool
	Hyperspace bool
	Closed     bool   // The underlying reader hit EOF or an error
	Pressed    []byte // Raw bytes read this frame
}

// key indexes the per-key timestamps.
type key int

const (
	keyQuit key = iota
	keyLeft
	keyRight
	keyUp
	keyDown
	keyFire
	keySpace
	keyEnter
	keyHyperspace
	keyCount
)

// Stream delivers input bytes via a channel and tracks when each key was
// last seen so simultaneous keys can be held together.
type Stream struct {
	ch     chan byte
	seen   [keyCount]time.Time
	closed bool
}

func newStream() *Stream {
	return &Stream{ch: make(chan byte, 128)}
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := newStream()
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream without blocking
// and returns the keys held at this moment.
func ReadInput(s *Stream) Input {
	return s.read(time.Now())
}

// ResetKeyInput forgets every held key. Used on screen transitions so the
// key that launched a game is not also read as the first shot.
func ResetKeyInput(s *Stream) {
	s.seen = [keyCount]time.Time{}
}

func (s *Stream) read(now time.Time) Input {
	buf := s.drain()
	s.apply(buf, now)

	held := func(k key) bool {
		return !s.seen[k].IsZero() && now.Sub(s.seen[k]) < keyHoldDuration
	}
	return Input{
		Quit:       held(keyQuit),
		Left:       held(keyLeft),
		Right:      held(keyRight),
		Up:         held(keyUp),
		Down:       held(keyDown),
		Fire:       held(keyFire),
		Space:      held(keySpace),
		Enter:      held(keyEnter),
		Hyperspace: held(keyHyperspace),
		Closed:     s.closed,
		Pressed:    buf,
	}
}

// drain collects whatever bytes are queued right now.
func (s *Stream) drain() []byte {
	var buf []byte
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				return buf
			}
			buf = append(buf, b)
		default:
			return buf
		}
	}
	return buf
}

// apply records the keys named by buf. Arrow keys arrive as CSI sequences
// (ESC [ A..D); everything else is a single byte.
func (s *Stream) apply(buf []byte, now time.Time) {
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			if k, ok := arrowKey(buf[i+2]); ok {
				s.seen[k] = now
				i += 2
				continue
			}
		}
		if k, ok := byteKey(b); ok {
			s.seen[k] = now
		}
	}
}

func arrowKey(b byte) (key, bool) {
	switch b {
	case 'A':
		return keyUp, true
	case 'B':
		return keyDown, true
	case 'C':
		return keyRight, true
	case 'D':
		return keyLeft, true
	}
	return 0, false
}

func byteKey(b byte) (key, bool) {
	switch b {
	case 'q', 'Q', '\x03': // Ctrl+C arrives as a byte in raw mode
		return keyQuit, true
	case 'a', 'A', 'j', 'J':
		return keyLeft, true
	case 'd', 'D', 'l', 'L':
		return keyRight, true
	case 'w', 'W', 'i', 'I':
		return keyUp, true
	case 's', 'S', 'k', 'K':
		return keyDown, true
	case 'x', 'X':
		return keyFire, true
	case ' ':
		return keySpace, true
	case '\n', '\r':
		return keyEnter, true
	case 'h', 'H':
		return keyHyperspace, true
	}
	return 0, false
}
