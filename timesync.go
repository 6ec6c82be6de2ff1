package lcdplayer

import (
	"sync"
	"time"
)

// TimeSync anchors a stream of presentation timestamps to the wall clock so
// the Presenter can pace frames instead of blitting as fast as they decode.
// It mirrors the original player's time_sync: a frame's PTS is always
// compared against the PTS recorded at the last ResetPtsBaseUs call, never
// against an absolute zero, because playback can start, pause, or seek to
// any offset into the stream.
type TimeSync struct {
	mu        sync.Mutex
	wallStart time.Time
	ptsBase   time.Duration
	hasBase   bool
}

// ResetPtsBaseUs anchors pts to the current wall-clock instant. Called once
// when playback starts, and again after every pause/resume or seek, so that
// GetFrameTime's pacing math restarts from a consistent reference point.
func (t *TimeSync) ResetPtsBaseUs(pts time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wallStart = time.Now()
	t.ptsBase = pts
	t.hasBase = true
}

// GetFrameTime returns the wall-clock instant at which a frame with the
// given presentation timestamp should be shown, given the current playback
// speed. If no anchor has been set yet, pts itself becomes the anchor so the
// first frame is never artificially delayed.
func (t *TimeSync) GetFrameTime(pts time.Duration, speed float64) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasBase {
		t.wallStart = time.Now()
		t.ptsBase = pts
		t.hasBase = true
	}
	if speed <= 0 {
		speed = 1
	}
	elapsed := time.Duration(float64(pts-t.ptsBase) / speed)
	return t.wallStart.Add(elapsed)
}
