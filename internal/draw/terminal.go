package draw

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// maxChunkSize is the largest single write. It stays under a typical MTU so
// frames flow smoothly over SSH.
const maxChunkSize = 1400

// Terminal control sequences.
const (
	seqClear      = "\033[H\033[2J"
	seqHideCursor = "\033[?25l"
	seqShowCursor = "\033[?25h"
	seqAltScreen  = "\033[?1049h"
	seqMainScreen = "\033[?1049l"
)

// ChunkWriter accumulates one frame of terminal output (canvas cells plus
// overlay text) and writes it out in chunks on Flush.
type ChunkWriter struct {
	buf    strings.Builder
	out    *bufio.Writer
	numBuf [20]byte
	offCol int
	offRow int
}

// NewChunkWriter creates a ChunkWriter that writes to w. The offsets are
// added to all WriteAt coordinates.
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		out:    bufio.NewWriterSize(w, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset updates the cursor offset after a resize.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol = offsetCol
	cw.offRow = offsetRow
}

// Write implements io.Writer so Canvas.Render can target the frame buffer.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	return cw.buf.Write(p)
}

// WriteString appends raw text at the current cursor position.
func (cw *ChunkWriter) WriteString(s string) {
	cw.buf.WriteString(s)
}

// WriteAt writes s starting at a 1-based canvas cell.
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.buf.WriteString("\033[")
	cw.buf.Write(strconv.AppendInt(cw.numBuf[:0], int64(row+cw.offRow), 10))
	cw.buf.WriteByte(';')
	cw.buf.Write(strconv.AppendInt(cw.numBuf[:0], int64(col+cw.offCol), 10))
	cw.buf.WriteByte('H')
	cw.buf.WriteString(s)
}

// Pending returns the number of bytes not yet flushed.
func (cw *ChunkWriter) Pending() int {
	return cw.buf.Len()
}

// Flush writes the accumulated frame to the underlying writer in chunks and
// resets the buffer.
func (cw *ChunkWriter) Flush() error {
	data := cw.buf.String()
	cw.buf.Reset()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		if _, err := cw.out.WriteString(chunk); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return cw.out.Flush()
}

var _ io.Writer = (*ChunkWriter)(nil)

// TermSizeFunc returns the terminal dimensions in cells.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc returns the size of the terminal on os.Stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// ClearScreen clears the terminal and moves the cursor home.
func ClearScreen(w io.Writer) {
	io.WriteString(w, seqClear)
}

// EnterScreen switches to the alternate screen and hides the cursor.
func EnterScreen(w io.Writer) {
	io.WriteString(w, seqAltScreen+seqHideCursor+seqClear)
}

// LeaveScreen restores the cursor and the main screen.
func LeaveScreen(w io.Writer) {
	io.WriteString(w, seqClear+seqShowCursor+seqMainScreen)
}
