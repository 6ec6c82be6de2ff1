package lcdplayer

import "time"

// DecodedFrame is a single decoded, rescaled video frame already packed as
// RGB565 big-endian, ready to be streamed to a display.Blitter. Stride may
// exceed Width*2 when a frame came from a source that pads rows; the
// Presenter's row-copy must always walk by Stride on read and Width*2 on
// write, never assume the two are equal.
type DecodedFrame struct {
	Width, Height int
	Stride        int
	Pix           []byte

	PTS    time.Duration
	HasPTS bool
}
