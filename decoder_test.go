package lcdplayer

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeVideoDecoder struct {
	frames []RawFrame
	i      int
	errAt  int // returns an error on the i-th call instead of a frame, -1 disables
}

func (f *fakeVideoDecoder) DecodeNext() (RawFrame, bool, error) {
	if f.errAt == f.i {
		f.i++
		return RawFrame{}, false, errors.New("fake decode failure")
	}
	if f.i >= len(f.frames) {
		f.i++
		return RawFrame{}, false, nil
	}
	fr := f.frames[f.i]
	f.i++
	return fr, true, nil
}

func solidRGBA(w, h int, r, g, b byte) []byte {
	pix := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = r, g, b, 255
	}
	return pix
}

func TestDecoderRescalesAndForwardsFrames(t *testing.T) {
	state := NewControlState()
	state.SetRunning(true)
	packets := NewQueue[EncodedPacket](10)
	frames := NewQueue[*DecodedFrame](10)

	src := &fakeVideoDecoder{
		frames: []RawFrame{
			{PTS: 0, HasPTS: true, Width: 4, Height: 4, Pix: solidRGBA(4, 4, 0xF8, 0, 0)},
		},
		errAt: -1,
	}
	dec := &Decoder{Packets: packets, Frames: frames, Source: src, State: state, AreaW: 2, AreaH: 2, Log: pkgLogger}

	packets.Push(EncodedPacket{Seq: 1}, neverStop, alwaysReady)

	done := make(chan error, 1)
	go func() { done <- dec.Run(context.Background()) }()

	deadline := time.After(time.Second)
	for frames.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("decoder never produced a frame")
		case <-time.After(5 * time.Millisecond):
		}
	}

	f, ok := frames.Pop(neverStop, alwaysReady)
	if !ok {
		t.Fatal("expected a frame")
	}
	if f.Width != 2 || f.Height != 2 {
		t.Fatalf("frame size = %dx%d, want 2x2", f.Width, f.Height)
	}
	if len(f.Pix) != 2*2*2 {
		t.Fatalf("pixel buffer length = %d, want 8", len(f.Pix))
	}
	// Pure red at full intensity should pack to 0xF800 big-endian.
	if f.Pix[0] != 0xF8 || f.Pix[1] != 0x00 {
		t.Fatalf("packed pixel = %02x%02x, want f800", f.Pix[0], f.Pix[1])
	}

	state.SetRunning(false)
	packets.BroadcastAll()
	frames.BroadcastAll()
	<-done
}

func TestDecoderSkipsPacketsWithNoFrameYet(t *testing.T) {
	state := NewControlState()
	state.SetRunning(true)
	packets := NewQueue[EncodedPacket](10)
	frames := NewQueue[*DecodedFrame](10)

	src := &fakeVideoDecoder{frames: nil, errAt: -1} // every DecodeNext reports "no frame yet"
	dec := &Decoder{Packets: packets, Frames: frames, Source: src, State: state, AreaW: 2, AreaH: 2, Log: pkgLogger}

	packets.Push(EncodedPacket{Seq: 1}, neverStop, alwaysReady)
	packets.Push(EncodedPacket{Seq: 2}, neverStop, alwaysReady)

	done := make(chan error, 1)
	go func() { done <- dec.Run(context.Background()) }()

	deadline := time.After(300 * time.Millisecond)
	for packets.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("decoder never drained the admitted packets")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if got := frames.Len(); got != 0 {
		t.Fatalf("frames.Len() = %d, want 0 (no frame was ever ready)", got)
	}

	state.SetRunning(false)
	packets.BroadcastAll()
	frames.BroadcastAll()
	<-done
}
