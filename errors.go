package lcdplayer

import "errors"

// A collection of errors defined by this package. Other format- or
// hardware-specific errors returned by reisen or the display driver are
// also possible and are wrapped, not replaced, by the Player methods.
var (
	ErrNoVideo      = errors.New("file doesn't include any video stream")
	ErrNotLoaded    = errors.New("player has no video loaded; call Load() first")
	ErrAlreadyLoaded = errors.New("player already has a video loaded; Stop() it first")
	ErrNotPlaying   = errors.New("player is not playing")
)
