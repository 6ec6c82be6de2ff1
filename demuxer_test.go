package lcdplayer

import (
	"context"
	"io"
	"testing"
	"time"
)

type fakeContainer struct {
	packets     []bool // isVideo per ReadPacket call
	i           int
	seekTargets []time.Duration
	seekErr     error
}

func (f *fakeContainer) ReadPacket() (bool, error) {
	if f.i >= len(f.packets) {
		return false, io.EOF
	}
	v := f.packets[f.i]
	f.i++
	return v, nil
}

func (f *fakeContainer) SeekBackward(target time.Duration) error {
	f.seekTargets = append(f.seekTargets, target)
	return f.seekErr
}

func TestDemuxerOnlyAdmitsVideoPackets(t *testing.T) {
	state := NewControlState()
	state.SetRunning(true)
	packets := NewQueue[EncodedPacket](10)
	frames := NewQueue[*DecodedFrame](10)
	src := &fakeContainer{packets: []bool{true, false, true, false, false, true}}

	d := &Demuxer{Packets: packets, Frames: frames, Source: src, State: state, Log: pkgLogger}
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	if got := packets.Len(); got != 3 {
		t.Fatalf("admitted %d packets, want 3", got)
	}
}

func TestDemuxerStopsAtEOF(t *testing.T) {
	state := NewControlState()
	state.SetRunning(true)
	packets := NewQueue[EncodedPacket](10)
	frames := NewQueue[*DecodedFrame](10)
	src := &fakeContainer{packets: nil}

	d := &Demuxer{Packets: packets, Frames: frames, Source: src, State: state, Log: pkgLogger}
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if got := packets.Len(); got != 0 {
		t.Fatalf("admitted %d packets from an empty source, want 0", got)
	}
}

func TestDemuxerFlushClearsQueuesAndSeeks(t *testing.T) {
	state := NewControlState()
	state.SetRunning(true)
	state.SetSeekRequest(true)
	state.SetSeekTargetUs((30 * time.Second).Microseconds())

	packets := NewQueue[EncodedPacket](10)
	frames := NewQueue[*DecodedFrame](10)
	packets.Push(EncodedPacket{Seq: 1}, neverStop, alwaysReady)
	frames.Push(&DecodedFrame{}, neverStop, alwaysReady)

	src := &fakeContainer{packets: []bool{true}}
	d := &Demuxer{Packets: packets, Frames: frames, Source: src, State: state, Log: pkgLogger}

	// Run long enough to process the flush, then stop.
	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	deadline := time.After(time.Second)
	for len(src.seekTargets) == 0 {
		select {
		case <-deadline:
			t.Fatal("flush never invoked SeekBackward")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if got := src.seekTargets[0]; got != 30*time.Second {
		t.Fatalf("seek target = %v, want 30s", got)
	}
	// The packet queue is refilled by the post-seek read, but nothing pushes
	// frames here, so the pre-seek frame must be gone for good.
	if got := frames.Len(); got != 0 {
		t.Fatalf("frames.Len() after flush = %d, want 0", got)
	}
	if state.SeekRequested() {
		t.Fatal("seek request should be cleared after flush")
	}
	if state.Flushing() {
		t.Fatal("flushing flag should be cleared after flush")
	}

	state.SetRunning(false)
	packets.BroadcastAll()
	frames.BroadcastAll()
	<-done
}
