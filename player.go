package lcdplayer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/erparts/reisen"
	"golang.org/x/sync/errgroup"

	"github.com/7artix/lcdplayer/display"
	"github.com/7artix/lcdplayer/metrics"
)

// Player is a video player driving a display.Blitter instead of a window: it
// owns the bounded queues, the shared ControlState, the TimeSync clock, and
// the four pipeline goroutines (Demuxer, Decoder, Presenter, Controller),
// and exposes the same small, Ebitengine-audio-player-shaped surface the
// original player's public API used.
//
// Usage:
//   - Create with NewPlayer.
//   - Load() a video file.
//   - Play() to start the pipeline; Wait() blocks until it stops on its own
//     (end of stream, an unrecoverable error, or Stop()).
//   - Pause() and Play() (which resumes from Paused), SeekForward()/
//     SeekBackward(), SetSpeed() control playback while it's running.
type Player struct {
	mu    sync.Mutex
	state PlaybackState

	control *ControlState
	clock   *TimeSync
	packets *Queue[EncodedPacket]
	frames  *Queue[*DecodedFrame]

	media  *reisen.Media
	stream *reisen.VideoStream
	ioMu   sync.Mutex
	source *reisenSource

	area       display.Area
	durationUs int64

	blitter         display.Blitter
	cfg             Config
	metrics         *metrics.Recorder
	log             Logger
	controllerInput io.Reader

	eg     *errgroup.Group
	cancel context.CancelFunc
}

// NewPlayer constructs a Player bound to the given display, configuration
// and metrics recorder. rec may be nil to disable metrics; controllerInput
// may be nil, in which case os.Stdin is used.
func NewPlayer(blitter display.Blitter, cfg Config, rec *metrics.Recorder, controllerInput io.Reader) *Player {
	if controllerInput == nil {
		controllerInput = os.Stdin
	}
	return &Player{
		state:           Idle,
		control:         NewControlState(),
		clock:           &TimeSync{},
		blitter:         blitter,
		cfg:             cfg,
		metrics:         rec,
		log:             pkgLogger,
		controllerInput: controllerInput,
	}
}

// State returns the player's current lifecycle state.
func (p *Player) State() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Duration returns the loaded video's total duration. Zero before Load().
func (p *Player) Duration() time.Duration {
	return time.Duration(p.control.DurationUs()) * time.Microsecond
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	return time.Duration(p.control.CurrentPtsUs()) * time.Microsecond
}

// Load opens path, selects its best video stream, sizes the display area,
// and moves the player to Loaded. It must be called from Idle or Stopped.
func (p *Player) Load(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Idle && p.state != Stopped {
		return ErrAlreadyLoaded
	}

	media, err := reisen.NewMedia(path)
	if err != nil {
		return fmt.Errorf("lcdplayer: open %s: %w", path, err)
	}
	if p.cfg.HardwareDecode {
		p.log.Printf("lcdplayer: hardware decode requested for '%s' (reisen selects the decoder internally; this is advisory only)", filepath.Base(path))
	}

	videoStreams := media.VideoStreams()
	if len(videoStreams) == 0 {
		media.Close()
		return ErrNoVideo
	}
	if len(videoStreams) > 1 {
		p.log.Printf("WARNING: '%s' has multiple video streams; using the highest resolution one (reisen does not expose stream disposition flags, so default-stream scoring falls back to resolution)", filepath.Base(path))
	}
	stream := videoStreams[0]
	for _, s := range videoStreams[1:] {
		if s.Width()*s.Height() > stream.Width()*stream.Height() {
			stream = s
		}
	}

	if err := media.OpenDecode(); err != nil {
		media.Close()
		return fmt.Errorf("lcdplayer: open decode: %w", err)
	}
	if err := stream.Open(); err != nil {
		media.CloseDecode()
		media.Close()
		return fmt.Errorf("lcdplayer: open video stream: %w", err)
	}

	duration, err := stream.Duration()
	if err != nil {
		stream.Close()
		media.CloseDecode()
		media.Close()
		return fmt.Errorf("lcdplayer: read duration: %w", err)
	}

	if err := p.blitter.RangeAdapt(stream.Width(), stream.Height(), p.cfg.Orientation); err != nil {
		stream.Close()
		media.CloseDecode()
		media.Close()
		return fmt.Errorf("lcdplayer: adapt display area: %w", err)
	}

	p.media = media
	p.stream = stream
	p.source = &reisenSource{ioMu: &p.ioMu, media: media, stream: stream}
	p.area = p.blitter.Area()
	p.durationUs = duration.Microseconds()
	p.control.SetDurationUs(p.durationUs)
	p.control.SetCurrentPtsUs(0)
	p.control.SetSpeed(1.0 - p.control.Speed()) // reset to 1.0x on (re)load
	p.packets = NewQueue[EncodedPacket](p.cfg.PacketQueueCapacity)
	p.frames = NewQueue[*DecodedFrame](p.cfg.FrameQueueCapacity)
	p.state = Loaded
	p.metrics.SetPlaybackState(int(p.state))
	return nil
}

// Play starts (or resumes) the pipeline. Calling it while already Playing
// is a no-op; calling it while Paused resumes playback.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case Playing:
		p.mu.Unlock()
		return nil
	case Paused:
		p.control.SetPaused(false)
		p.control.SetResetTimeRequest(true)
		p.state = Playing
		p.metrics.SetPlaybackState(int(p.state))
		p.mu.Unlock()
		return nil
	case Loaded:
		// falls through to pipeline startup below
	default:
		p.mu.Unlock()
		return ErrNotLoaded
	}

	p.control.SetRunning(true)
	p.control.SetPaused(false)
	p.control.SetResetTimeRequest(true)
	p.state = Playing
	p.metrics.SetPlaybackState(int(p.state))
	p.mu.Unlock()

	egCtx, cancel := context.WithCancel(ctx)
	eg, egCtx := errgroup.WithContext(egCtx)
	p.cancel = cancel
	p.eg = eg

	demuxer := &Demuxer{Packets: p.packets, Frames: p.frames, Source: p.source, State: p.control, Log: p.log, Metrics: p.metrics}
	decoder := &Decoder{Packets: p.packets, Frames: p.frames, Source: p.source, State: p.control, AreaW: p.area.Width, AreaH: p.area.Height, Log: p.log, Metrics: p.metrics}
	presenter := &Presenter{Frames: p.frames, Blitter: p.blitter, State: p.control, Clock: p.clock, Log: p.log, Metrics: p.metrics}
	controller := NewController(p.control, time.Duration(p.durationUs)*time.Microsecond, p.log, p.requestSeek)

	eg.Go(func() error { return demuxer.Run(egCtx) })
	eg.Go(func() error { return decoder.Run(egCtx) })
	eg.Go(func() error { return presenter.Run(egCtx) })
	eg.Go(func() error {
		err := controller.Run(egCtx, p.controllerInput)
		// A quit key clears running; wake every stage parked on a queue so
		// it re-checks its stop predicate and exits.
		p.packets.BroadcastAll()
		p.frames.BroadcastAll()
		return err
	})

	// The Presenter is the only stage whose error is fatal (a display I/O
	// failure); errgroup cancels egCtx as soon as it returns one, and so
	// does Stop()/Wait() via p.cancel. This watcher is what turns that
	// cancellation into actual shutdown: it clears running and broadcasts
	// both queues so the Demuxer/Decoder/Presenter, parked in Pop/Push
	// waiting on their condition variables, wake up and return instead of
	// hanging. It runs outside the errgroup - on a graceful end-of-stream
	// shutdown egCtx is never canceled until Stop()/Wait() does so
	// explicitly, and an errgroup member that never returns would itself
	// make eg.Wait() hang.
	go func() {
		<-egCtx.Done()
		p.control.SetRunning(false)
		p.packets.BroadcastAll()
		p.frames.BroadcastAll()
	}()
	return nil
}

// Wait blocks until the pipeline started by Play stops, returning the first
// error (if any) encountered by any stage.
func (p *Player) Wait() error {
	if p.eg == nil {
		return nil
	}
	err := p.eg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Lock()
	if p.state == Playing || p.state == Paused {
		p.state = Stopped
		p.metrics.SetPlaybackState(int(p.state))
	}
	p.mu.Unlock()
	return err
}

// Pause suspends playback; the Presenter stops blitting but the Demuxer and
// Decoder keep filling queues up to capacity so resuming is instant. It
// returns ErrNotPlaying if the player isn't currently Playing.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Playing {
		return ErrNotPlaying
	}
	p.control.SetPaused(true)
	p.state = Paused
	p.metrics.SetPlaybackState(int(p.state))
	return nil
}

// Stop halts the pipeline and returns the player to Stopped. Load() must be
// called again before Play() will work.
func (p *Player) Stop() error {
	p.mu.Lock()
	if p.state != Playing && p.state != Paused {
		p.mu.Unlock()
		return nil
	}
	p.state = Stopped
	p.metrics.SetPlaybackState(int(p.state))
	p.mu.Unlock()

	p.control.SetRunning(false)
	p.control.SetPaused(false)
	if p.packets != nil {
		p.packets.BroadcastAll()
	}
	if p.frames != nil {
		p.frames.BroadcastAll()
	}
	if p.cancel != nil {
		p.cancel()
	}

	var err error
	if p.eg != nil {
		err = p.eg.Wait()
	}
	if p.packets != nil {
		p.packets.Clear()
	}
	if p.frames != nil {
		p.frames.Clear()
	}
	return err
}

// SeekForward moves playback position forward by d.
func (p *Player) SeekForward(d time.Duration) { p.requestSeek(d) }

// SeekBackward moves playback position backward by d.
func (p *Player) SeekBackward(d time.Duration) { p.requestSeek(-d) }

func (p *Player) requestSeek(delta time.Duration) {
	current := time.Duration(p.control.CurrentPtsUs()) * time.Microsecond
	next := current + delta
	if next < 0 {
		next = 0
	}
	if max := time.Duration(p.durationUs) * time.Microsecond; next > max {
		next = max
	}
	p.control.SetSeekTargetUs(next.Microseconds())
	p.control.SetSeekRequest(true)
	if p.packets != nil {
		p.packets.BroadcastAll()
	}
}

// SetSpeed adjusts playback speed by delta, floored at 0.1x, and returns
// the resulting multiplier.
func (p *Player) SetSpeed(delta float64) float64 {
	return p.control.SetSpeed(delta)
}

// Close releases the underlying codec resources. The player is unusable
// afterwards. Do not confuse with Stop.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.stream != nil {
		err = p.stream.Close()
		p.stream = nil
	}
	if p.media != nil {
		if cerr := p.media.CloseDecode(); cerr != nil && err == nil {
			err = cerr
		}
		if cerr := p.media.Close(); cerr != nil && err == nil {
			err = cerr
		}
		p.media = nil
	}
	return err
}
