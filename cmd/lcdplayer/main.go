package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/7artix/lcdplayer"
	"github.com/7artix/lcdplayer/display"
	"github.com/7artix/lcdplayer/metrics"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: lcdplayer path/to/video.mp4\n")
		os.Exit(1)
	}

	path, err := filepath.Abs(os.Args[1])
	if err != nil {
		panic(err)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Printf("'%s' not found.\n", path)
			os.Exit(1)
		}
		panic(err)
	}

	// Failures below return through the deferred cleanup (terminal restore,
	// panel and player close) before exiting with this code.
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	cfg := lcdplayer.LoadConfig()

	rec := metrics.New()
	if cfg.MetricsAddr != "" {
		srv := metrics.StartServer(cfg.MetricsAddr)
		defer srv.Close()
	}

	panel, err := display.NewST7735(cfg.SPIDevice, cfg.GPIOChip, cfg.GPIOResetOffset, cfg.GPIODCOffset)
	if err != nil {
		fmt.Printf("display init failed: %v\n", err)
		exitCode = 1
		return
	}
	defer panel.Close()

	restoreTerminal, err := lcdplayer.OpenRawTerminal()
	if err != nil {
		fmt.Printf("terminal raw mode failed: %v\n", err)
		exitCode = 1
		return
	}
	defer restoreTerminal()

	player := lcdplayer.NewPlayer(panel, cfg, rec, nil)
	defer player.Close()

	if err := player.Load(path); err != nil {
		fmt.Printf("failed to load video: %v\n", err)
		exitCode = 1
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := player.Play(ctx); err != nil {
		fmt.Printf("failed to start playback: %v\n", err)
		exitCode = 1
		return
	}

	if err := player.Wait(); err != nil {
		fmt.Printf("playback error: %v\n", err)
		exitCode = 1
		return
	}
}
