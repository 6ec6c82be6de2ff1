// Package display abstracts the physical LCD panel behind a small
// interface so the playback pipeline can be tested without real SPI/GPIO
// hardware.
package display

// Orientation describes how a rescaled frame should be rotated relative to
// the panel's native pixel order.
type Orientation int

const (
	Landscape Orientation = iota
	Portrait
	LandscapeInverted
	PortraitInverted
)

// Area is the rectangle of panel pixels a video occupies after being
// letterboxed and centered to fit the panel while preserving aspect ratio.
// XEnd/YEnd are exclusive, so Width == XEnd-XStart and Height == YEnd-YStart.
type Area struct {
	XStart, XEnd int
	YStart, YEnd int
	Width, Height int
}

// Blitter is the display-side boundary the Player and Presenter depend on.
// RangeAdapt is called once after a video is loaded to compute the centered
// drawing Area for the panel; StartWrite/WriteData are called once per
// frame thereafter.
type Blitter interface {
	// RangeAdapt computes and applies the address window for a source of
	// the given resolution under the given orientation.
	RangeAdapt(srcWidth, srcHeight int, orientation Orientation) error

	// Area returns the Area computed by the last RangeAdapt call.
	Area() Area

	// StartWrite begins a new frame write (e.g. issuing RAMWR on a
	// ST7735-style controller).
	StartWrite() error

	// WriteData streams RGB565 big-endian pixel data for the current
	// frame, tightly packed, Width*Height*2 bytes.
	WriteData(buf []byte) error
}

// ComputeCenteredArea returns the letterboxed, centered Area for a source of
// srcW x srcH fit into a panel of panelW x panelH pixels under the given
// orientation, preserving aspect ratio.
func ComputeCenteredArea(panelW, panelH, srcW, srcH int, orientation Orientation) Area {
	w, h := panelW, panelH
	if orientation == Portrait || orientation == PortraitInverted {
		w, h = panelH, panelW
	}

	scale := float64(w) / float64(srcW)
	if s := float64(h) / float64(srcH); s < scale {
		scale = s
	}
	dstW := int(float64(srcW) * scale)
	dstH := int(float64(srcH) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	xStart := (w - dstW) / 2
	yStart := (h - dstH) / 2
	return Area{
		XStart: xStart, XEnd: xStart + dstW,
		YStart: yStart, YEnd: yStart + dstH,
		Width: dstW, Height: dstH,
	}
}
