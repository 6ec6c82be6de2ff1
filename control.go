package lcdplayer

import (
	"math"
	"sync/atomic"
)

// ControlState is the set of cross-goroutine scalar flags shared by the
// Demuxer, Decoder, Presenter and Controller. Every field is either an
// atomic or (for the speed factor, which needs float semantics atomic.Value
// can't give lock-free) a bit-packed atomic.Uint64, so none of the pipeline
// stages ever block on each other just to read or flip a flag; only the
// Queue condition variables impose real waits.
type ControlState struct {
	running  atomic.Bool
	paused   atomic.Bool
	flushing atomic.Bool

	seekRequest      atomic.Bool
	resetTimeRequest atomic.Bool
	seekTargetUs     atomic.Int64
	currentPtsUs     atomic.Int64
	durationUs       atomic.Int64

	speedBits atomic.Uint64
}

// NewControlState returns a ControlState with speed 1.0x and every other
// flag cleared.
func NewControlState() *ControlState {
	s := &ControlState{}
	s.speedBits.Store(math.Float64bits(1.0))
	return s
}

func (s *ControlState) Running() bool  { return s.running.Load() }
func (s *ControlState) SetRunning(v bool) { s.running.Store(v) }

func (s *ControlState) Paused() bool    { return s.paused.Load() }
func (s *ControlState) SetPaused(v bool) { s.paused.Store(v) }

// TogglePaused flips the paused flag and returns the new value.
func (s *ControlState) TogglePaused() bool {
	for {
		old := s.paused.Load()
		if s.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (s *ControlState) Flushing() bool    { return s.flushing.Load() }
func (s *ControlState) SetFlushing(v bool) { s.flushing.Store(v) }

func (s *ControlState) SeekRequested() bool   { return s.seekRequest.Load() }
func (s *ControlState) SetSeekRequest(v bool) { s.seekRequest.Store(v) }

func (s *ControlState) SeekTargetUs() int64     { return s.seekTargetUs.Load() }
func (s *ControlState) SetSeekTargetUs(us int64) { s.seekTargetUs.Store(us) }

// CompareAndSwapResetTimeRequest atomically clears the request if it was
// set, reporting whether this call was the one that consumed it.
func (s *ControlState) CompareAndSwapResetTimeRequest(old, new bool) bool {
	return s.resetTimeRequest.CompareAndSwap(old, new)
}
func (s *ControlState) SetResetTimeRequest(v bool) { s.resetTimeRequest.Store(v) }

func (s *ControlState) CurrentPtsUs() int64      { return s.currentPtsUs.Load() }
func (s *ControlState) SetCurrentPtsUs(us int64) { s.currentPtsUs.Store(us) }

func (s *ControlState) DurationUs() int64      { return s.durationUs.Load() }
func (s *ControlState) SetDurationUs(us int64) { s.durationUs.Store(us) }

// Speed returns the current playback speed multiplier.
func (s *ControlState) Speed() float64 {
	return math.Float64frombits(s.speedBits.Load())
}

// SetSpeed adjusts the speed multiplier by delta, floored at 0.1x, raises
// the reset-time request so the clock re-anchors at the new speed, and
// returns the resulting value. There is no upper clamp.
func (s *ControlState) SetSpeed(delta float64) float64 {
	for {
		oldBits := s.speedBits.Load()
		old := math.Float64frombits(oldBits)
		next := old + delta
		if next < 0.1 {
			next = 0.1
		}
		newBits := math.Float64bits(next)
		if s.speedBits.CompareAndSwap(oldBits, newBits) {
			s.resetTimeRequest.Store(true)
			return next
		}
	}
}
