package lcdplayer

import (
	"context"

	"github.com/7artix/lcdplayer/metrics"
	"github.com/7artix/lcdplayer/rescale"
)

// Decoder pops admitted packets off the PacketQueue, asks the VideoDecoder
// to decode whatever frame that admission makes available, rescales it to
// the display's target area and packs it as RGB565BE, then pushes the
// result onto the FrameQueue.
//
// reisen's ReadVideoFrame already performs the full send-packet/receive-frame
// cycle internally (it may itself read further container packets before a
// frame comes out), so unlike a textbook decoder this stage does not need an
// inner "drain all frames produced by this packet" loop: one packet pop maps
// to at most one DecodeNext call. See SPEC_FULL.md Sec 4.8.
type Decoder struct {
	Packets *Queue[EncodedPacket]
	Frames  *Queue[*DecodedFrame]
	Source  VideoDecoder
	State   *ControlState
	AreaW   int
	AreaH   int
	Log     Logger
	Metrics *metrics.Recorder
}

func (dec *Decoder) Run(ctx context.Context) error {
	for {
		if !dec.State.Running() || ctx.Err() != nil {
			return nil
		}

		stop := func() bool { return !dec.State.Running() || ctx.Err() != nil }
		proceed := func() bool { return !dec.State.Flushing() }
		_, ok := dec.Packets.Pop(stop, proceed)
		if !ok {
			return nil
		}
		dec.Metrics.SetPacketQueueDepth(dec.Packets.Len())

		raw, got, err := dec.Source.DecodeNext()
		if err != nil {
			dec.Log.Printf("decoder: decode error: %v", err)
			dec.Metrics.IncDecodeError()
			continue
		}
		if !got {
			continue
		}

		pix := make([]byte, dec.AreaW*dec.AreaH*2)
		rescale.Into(pix, raw.Pix, raw.Width, raw.Height, dec.AreaW, dec.AreaH)

		frame := &DecodedFrame{
			Width:  dec.AreaW,
			Height: dec.AreaH,
			Stride: dec.AreaW * 2,
			Pix:    pix,
			PTS:    raw.PTS,
			HasPTS: raw.HasPTS,
		}

		stop2 := func() bool { return !dec.State.Running() || ctx.Err() != nil }
		proceed2 := func() bool { return !dec.State.Flushing() }
		if !dec.Frames.Push(frame, stop2, proceed2) {
			return nil
		}
		dec.Metrics.SetFrameQueueDepth(dec.Frames.Len())
	}
}
