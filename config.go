package lcdplayer

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/7artix/lcdplayer/display"
)

// Config holds every knob the player needs that isn't intrinsic to the
// loaded video: which SPI/GPIO lines drive the panel, queue sizing, and
// whether to expose Prometheus metrics.
type Config struct {
	SPIDevice       string
	GPIOChip        string
	GPIOResetOffset int
	GPIODCOffset    int
	Orientation     display.Orientation

	PacketQueueCapacity int
	FrameQueueCapacity  int

	// HardwareDecode is a hint logged at Load() time; reisen's public
	// surface gives this port no way to actually force a specific AVCodec,
	// so this does not change decoding behavior.
	HardwareDecode bool

	// MetricsAddr, if non-empty, is the address the /metrics endpoint is
	// served on (e.g. ":9090"). Empty disables metrics serving.
	MetricsAddr string
}

// LoadConfig loads a .env file (if present) and then reads LCDPLAYER_* env
// vars over a set of sane defaults, the same best-effort, no-op-on-missing
// pattern the teacher's own examples used for local configuration.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		pkgLogger.Printf("config: no .env file loaded: %v", err)
	}

	cfg := Config{
		SPIDevice:           "/dev/spidev3.0",
		GPIOChip:            "gpiochip3",
		GPIOResetOffset:     8,
		GPIODCOffset:        17,
		Orientation:         display.Landscape,
		PacketQueueCapacity: 10,
		FrameQueueCapacity:  10,
		HardwareDecode:      true,
		MetricsAddr:         "",
	}

	if v := os.Getenv("LCDPLAYER_SPI_DEV"); v != "" {
		cfg.SPIDevice = v
	}
	if v := os.Getenv("LCDPLAYER_GPIO_CHIP"); v != "" {
		cfg.GPIOChip = v
	}
	if v, ok := getenvInt("LCDPLAYER_GPIO_RESET_OFFSET"); ok {
		cfg.GPIOResetOffset = v
	}
	if v, ok := getenvInt("LCDPLAYER_GPIO_DC_OFFSET"); ok {
		cfg.GPIODCOffset = v
	}
	if v := os.Getenv("LCDPLAYER_ORIENTATION"); v != "" {
		cfg.Orientation = parseOrientation(v)
	}
	if v, ok := getenvInt("LCDPLAYER_PACKET_QUEUE_CAPACITY"); ok {
		cfg.PacketQueueCapacity = v
	}
	if v, ok := getenvInt("LCDPLAYER_FRAME_QUEUE_CAPACITY"); ok {
		cfg.FrameQueueCapacity = v
	}
	if v := os.Getenv("LCDPLAYER_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("LCDPLAYER_HARDWARE_DECODE"); v != "" {
		cfg.HardwareDecode = v != "0" && v != "false"
	}

	return cfg
}

func getenvInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		pkgLogger.Printf("config: ignoring invalid %s=%q: %v", key, v, err)
		return 0, false
	}
	return n, true
}

func parseOrientation(v string) display.Orientation {
	switch v {
	case "portrait":
		return display.Portrait
	case "landscape-inverted":
		return display.LandscapeInverted
	case "portrait-inverted":
		return display.PortraitInverted
	default:
		return display.Landscape
	}
}
