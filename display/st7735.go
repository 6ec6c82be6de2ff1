package display

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// ST7735S command bytes this driver issues. Names follow the controller's
// datasheet, not the video player's vocabulary.
const (
	cmdSWRESET = 0x01
	cmdSLPOUT  = 0x11
	cmdCOLMOD  = 0x3A
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
)

// maxChunkBytes caps a single SPI transaction so a full-panel write doesn't
// require one enormous DMA buffer.
const maxChunkBytes = 4096

// ST7735 drives a Sitronix ST7735S panel over SPI with a dedicated D/C
// GPIO line, the same wiring shape as the retrieved Lepton reference driver
// (SPI data connection, plus GPIO for out-of-band control).
type ST7735 struct {
	mu     sync.Mutex
	conn   spi.Conn
	closer spi.PortCloser
	rst    gpio.PinIO
	dc     gpio.PinIO

	panelWidth, panelHeight int
	area                    Area
}

// NewST7735 opens spiDev and the reset/D-C GPIO lines named by chip and
// offset, resets the panel, and leaves it configured for 16-bit RGB565
// writes.
func NewST7735(spiDev, gpioChip string, resetOffset, dcOffset int) (*ST7735, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("display: host init: %w", err)
	}

	port, err := spireg.Open(spiDev)
	if err != nil {
		return nil, fmt.Errorf("display: open %s: %w", spiDev, err)
	}
	conn, err := port.Connect(32*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("display: connect %s: %w", spiDev, err)
	}

	rst := gpioreg.ByName(fmt.Sprintf("%s_%d", gpioChip, resetOffset))
	if rst == nil {
		port.Close()
		return nil, fmt.Errorf("display: gpio line %s:%d (reset) not found", gpioChip, resetOffset)
	}
	dc := gpioreg.ByName(fmt.Sprintf("%s_%d", gpioChip, dcOffset))
	if dc == nil {
		port.Close()
		return nil, fmt.Errorf("display: gpio line %s:%d (d/c) not found", gpioChip, dcOffset)
	}
	if err := rst.Out(gpio.High); err != nil {
		port.Close()
		return nil, fmt.Errorf("display: init reset line: %w", err)
	}
	if err := dc.Out(gpio.Low); err != nil {
		port.Close()
		return nil, fmt.Errorf("display: init d/c line: %w", err)
	}

	// ComputeCenteredArea takes panelWidth/panelHeight already expressed in
	// Landscape terms (it swaps them itself for the Portrait variants), the
	// same convention display.Recorder's callers use. This panel's silicon
	// is natively 128(cols)x160(rows), but its default wiring targets
	// landscape mounting, so the Landscape-shaped footprint is 160x128.
	d := &ST7735{conn: conn, closer: port, rst: rst, dc: dc, panelWidth: 160, panelHeight: 128}
	if err := d.reset(); err != nil {
		port.Close()
		return nil, err
	}
	return d, nil
}

func (d *ST7735) reset() error {
	d.rst.Out(gpio.Low)
	time.Sleep(20 * time.Millisecond)
	d.rst.Out(gpio.High)
	time.Sleep(150 * time.Millisecond)

	if err := d.writeCmd(cmdSWRESET); err != nil {
		return err
	}
	time.Sleep(150 * time.Millisecond)
	if err := d.writeCmd(cmdSLPOUT); err != nil {
		return err
	}
	time.Sleep(255 * time.Millisecond)
	if err := d.writeCmd(cmdCOLMOD); err != nil {
		return err
	}
	if err := d.writeRaw([]byte{0x05}); err != nil { // 16 bits/pixel
		return err
	}
	return d.writeCmd(cmdDISPON)
}

func (d *ST7735) writeCmd(cmd byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	return d.conn.Tx([]byte{cmd}, nil)
}

func (d *ST7735) writeRaw(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(data) > 0 {
		n := len(data)
		if n > maxChunkBytes {
			n = maxChunkBytes
		}
		if err := d.conn.Tx(data[:n], nil); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func (d *ST7735) RangeAdapt(srcW, srcH int, orientation Orientation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.area = ComputeCenteredArea(d.panelWidth, d.panelHeight, srcW, srcH, orientation)
	return d.setAddressWindow(d.area)
}

func (d *ST7735) setAddressWindow(a Area) error {
	if err := d.writeCmd(cmdCASET); err != nil {
		return err
	}
	if err := d.writeRaw([]byte{0, byte(a.XStart), 0, byte(a.XEnd - 1)}); err != nil {
		return err
	}
	if err := d.writeCmd(cmdRASET); err != nil {
		return err
	}
	return d.writeRaw([]byte{0, byte(a.YStart), 0, byte(a.YEnd - 1)})
}

func (d *ST7735) Area() Area {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.area
}

func (d *ST7735) StartWrite() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeCmd(cmdRAMWR)
}

func (d *ST7735) WriteData(buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeRaw(buf)
}

// Close releases the SPI port. GPIO lines registered through gpioreg do not
// need an explicit close.
func (d *ST7735) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closer.Close()
}
