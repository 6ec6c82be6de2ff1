package lcdplayer

import (
	"context"
	"fmt"
	"time"

	"github.com/7artix/lcdplayer/display"
	"github.com/7artix/lcdplayer/metrics"
)

// Presenter pops decoded frames off the FrameQueue, paces them against wall
// clock time through a TimeSync, and blits them to a display.Blitter. It
// also owns the pause spin: while paused it neither pops nor blits, but it
// keeps checking Running so Stop() still unblocks it promptly.
type Presenter struct {
	Frames  *Queue[*DecodedFrame]
	Blitter display.Blitter
	State   *ControlState
	Clock   *TimeSync
	Log     Logger
	Metrics *metrics.Recorder
}

func (p *Presenter) Run(ctx context.Context) error {
	for {
		if !p.State.Running() || ctx.Err() != nil {
			return nil
		}
		for p.State.Paused() {
			if !p.State.Running() || ctx.Err() != nil {
				return nil
			}
			time.Sleep(10 * time.Millisecond)
		}

		stop := func() bool { return !p.State.Running() || ctx.Err() != nil }
		proceed := func() bool { return !p.State.Flushing() }
		frame, ok := p.Frames.Pop(stop, proceed)
		if !ok {
			return nil
		}
		p.Metrics.SetFrameQueueDepth(p.Frames.Len())

		if !frame.HasPTS {
			p.Metrics.IncDroppedNoPTS()
			continue
		}

		p.State.SetCurrentPtsUs(frame.PTS.Microseconds())

		if p.State.CompareAndSwapResetTimeRequest(true, false) {
			p.Clock.ResetPtsBaseUs(frame.PTS)
		}

		p.Metrics.SetSpeed(p.State.Speed())
		target := p.Clock.GetFrameTime(frame.PTS, p.State.Speed())
		if wait := time.Until(target); wait > 0 {
			time.Sleep(wait)
		}

		buf := packRows(frame)
		if err := p.Blitter.StartWrite(); err != nil {
			return fmt.Errorf("presenter: start write: %w", err)
		}
		if err := p.Blitter.WriteData(buf); err != nil {
			return fmt.Errorf("presenter: write data: %w", err)
		}
		p.Metrics.IncPresented()
	}
}

// packRows copies a DecodedFrame's pixels into a tightly packed buffer,
// walking the source by Stride and the destination by Width*2. Advancing the
// destination by Height*2 (or by Stride) instead corrupts any frame that is
// not square or whose stride isn't Width*2; it is kept as an explicit helper (rather than inlined) so its row-by-row behavior can be
// exercised directly by a regression test.
func packRows(f *DecodedFrame) []byte {
	rowBytes := f.Width * 2
	if f.Stride == rowBytes {
		return f.Pix[:f.Height*rowBytes]
	}
	out := make([]byte, f.Height*rowBytes)
	for y := 0; y < f.Height; y++ {
		srcStart := y * f.Stride
		dstStart := y * rowBytes
		copy(out[dstStart:dstStart+rowBytes], f.Pix[srcStart:srcStart+rowBytes])
	}
	return out
}
