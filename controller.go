package lcdplayer

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// OpenRawTerminal puts stdin into raw mode so Controller can read single key
// presses without waiting for a newline, and returns a restore function that
// must be called (typically deferred) before the process exits.
func OpenRawTerminal() (restore func() error, err error) {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() error { return term.Restore(fd, old) }, nil
}

// Controller reads key presses from an io.Reader (stdin in production, an
// io.Pipe or bytes.Reader in tests) and turns them into ControlState
// mutations: space toggles pause, '[' and ']' nudge playback speed,
// left/right arrows seek, and 'q' or Ctrl-C stop playback.
type Controller struct {
	State    *ControlState
	Duration time.Duration
	Log      Logger

	// SeekStep is how far each arrow key press moves the playback position.
	SeekStep time.Duration

	onSeek func(delta time.Duration)
}

// NewController builds a Controller. onSeek is invoked with a signed delta
// whenever the user requests a seek; the Player wires this to its own
// requestSeek(), which also clamps the result to [0, duration] and raises the
// Demuxer's seek request.
func NewController(state *ControlState, duration time.Duration, log Logger, onSeek func(delta time.Duration)) *Controller {
	return &Controller{
		State:    state,
		Duration: duration,
		Log:      log,
		SeekStep: 5 * time.Second,
		onSeek:   onSeek,
	}
}

// Run reads and dispatches key presses until Running clears, ctx is
// canceled, or r reaches EOF. A blocking read already in flight on a real
// terminal cannot itself be interrupted by ctx (there is no non-blocking
// stdin primitive here); ctx is re-checked between reads so a cancellation
// that arrives while idle still ends the loop promptly instead of only
// reacting to Running.
func (c *Controller) Run(ctx context.Context, r io.Reader) error {
	reader := bufio.NewReader(r)
	for c.State.Running() && ctx.Err() == nil {
		b, err := reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch b {
		case ' ':
			paused := c.State.TogglePaused()
			c.State.SetResetTimeRequest(true)
			if paused {
				c.Log.Printf("controller: paused")
			} else {
				c.Log.Printf("controller: resumed")
			}
		case '[':
			speed := c.State.SetSpeed(-0.1)
			c.Log.Printf("controller: speed %.1fx", speed)
		case ']':
			speed := c.State.SetSpeed(0.1)
			c.Log.Printf("controller: speed %.1fx", speed)
		case 'q', 0x03:
			c.State.SetRunning(false)
			return nil
		case 0x1b:
			if !c.readArrow(reader) {
				continue
			}
		}
	}
	return nil
}

// readArrow consumes the remainder of a CSI arrow-key escape sequence
// (ESC already consumed) and, for left/right, invokes onSeek.
func (c *Controller) readArrow(r *bufio.Reader) bool {
	b1, err := r.ReadByte()
	if err != nil || b1 != '[' {
		return false
	}
	b2, err := r.ReadByte()
	if err != nil {
		return false
	}
	switch b2 {
	case 'C':
		if c.onSeek != nil {
			c.onSeek(c.SeekStep)
		}
	case 'D':
		if c.onSeek != nil {
			c.onSeek(-c.SeekStep)
		}
	}
	return true
}
