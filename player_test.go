package lcdplayer

import (
	"context"
	"errors"
	"testing"

	"github.com/7artix/lcdplayer/display"
)

func TestPlayerStartsIdle(t *testing.T) {
	p := NewPlayer(display.NewRecorder(128, 160), Config{PacketQueueCapacity: 4, FrameQueueCapacity: 4}, nil, nil)
	if got := p.State(); got != Idle {
		t.Fatalf("State() = %v, want Idle", got)
	}
}

func TestPlayerPlayWithoutLoadFails(t *testing.T) {
	p := NewPlayer(display.NewRecorder(128, 160), Config{PacketQueueCapacity: 4, FrameQueueCapacity: 4}, nil, nil)
	if err := p.Play(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("Play() before Load() = %v, want ErrNotLoaded", err)
	}
}

func TestPlayerPauseFailsWhenNotPlaying(t *testing.T) {
	p := NewPlayer(display.NewRecorder(128, 160), Config{PacketQueueCapacity: 4, FrameQueueCapacity: 4}, nil, nil)
	if err := p.Pause(); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("Pause() on Idle player = %v, want ErrNotPlaying", err)
	}
	if got := p.State(); got != Idle {
		t.Fatalf("State() after Pause() on Idle player = %v, want Idle", got)
	}
}

func TestPlayerStopIsNoOpWhenIdle(t *testing.T) {
	p := NewPlayer(display.NewRecorder(128, 160), Config{PacketQueueCapacity: 4, FrameQueueCapacity: 4}, nil, nil)
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() on Idle player = %v, want nil", err)
	}
}

func TestPlayerSetSpeedFloors(t *testing.T) {
	p := NewPlayer(display.NewRecorder(128, 160), Config{PacketQueueCapacity: 4, FrameQueueCapacity: 4}, nil, nil)
	if got := p.SetSpeed(10); got != 11.0 {
		t.Fatalf("SetSpeed(10) = %v, want 11.0 (no upper clamp)", got)
	}
	if got := p.SetSpeed(-100); got != 0.1 {
		t.Fatalf("SetSpeed(-100) = %v, want floored to 0.1", got)
	}
}
