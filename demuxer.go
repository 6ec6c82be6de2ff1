package lcdplayer

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/7artix/lcdplayer/metrics"
)

// Demuxer reads packets from a Container, drops everything that isn't the
// selected video stream, and pushes the rest onto the PacketQueue. It also
// owns the seek flush sequence: a seek is driven from the Demuxer because it
// is the only stage that talks to Container.SeekBackward.
type Demuxer struct {
	Packets *Queue[EncodedPacket]
	Frames  *Queue[*DecodedFrame]
	Source  Container
	State   *ControlState
	Log     Logger
	Metrics *metrics.Recorder

	seq int64
}

// Run drives the demux loop until the pipeline is stopped, the underlying
// stream is exhausted, or a read error occurs. In every case it clears
// running and broadcasts both queues before returning, so the Decoder and
// Presenter (parked in Pop waiting for more input) unblock and exit instead
// of hanging forever once the Demuxer has nothing left to feed them.
func (d *Demuxer) Run(ctx context.Context) error {
	defer d.shutdown()
	for {
		if !d.State.Running() || ctx.Err() != nil {
			return nil
		}
		if d.State.SeekRequested() {
			d.flush()
			continue
		}

		isVideo, err := d.Source.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				d.Log.Printf("demuxer: reached end of stream")
			} else {
				d.Log.Printf("demuxer: read error: %v", err)
			}
			return nil
		}
		if !isVideo {
			continue
		}

		d.seq++
		pkt := EncodedPacket{Seq: d.seq}
		stop := func() bool { return !d.State.Running() || ctx.Err() != nil }
		proceed := func() bool { return !d.State.Flushing() }
		if !d.Packets.Push(pkt, stop, proceed) {
			return nil
		}
		d.Metrics.SetPacketQueueDepth(d.Packets.Len())
	}
}

// shutdown clears running and wakes every goroutine parked on either queue
// so they re-check their shouldStop predicate and exit on their own.
func (d *Demuxer) shutdown() {
	d.State.SetRunning(false)
	d.Packets.BroadcastAll()
	d.Frames.BroadcastAll()
}

// flush implements the pause-drain-seek-resume sequence: flushing is raised
// so the Decoder and Presenter stop touching the queues, both queues are
// cleared, the container seeks to the requested offset, and flushing drops
// again with a broadcast so every parked goroutine re-checks its predicate.
func (d *Demuxer) flush() {
	d.State.SetFlushing(true)
	time.Sleep(10 * time.Millisecond)

	d.Packets.Clear()
	d.Frames.Clear()

	targetUs := d.State.SeekTargetUs()
	if err := d.Source.SeekBackward(time.Duration(targetUs) * time.Microsecond); err != nil {
		d.Log.Printf("demuxer: seek failed: %v", err)
	}

	d.seq = 0
	d.State.SetResetTimeRequest(true)
	d.State.SetSeekRequest(false)
	d.State.SetFlushing(false)
	d.Packets.BroadcastAll()
	d.Frames.BroadcastAll()
}
