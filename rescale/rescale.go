// Package rescale resizes decoded RGBA video frames to a target resolution
// and packs them into the RGB565 big-endian wire format ST7735-style panels
// expect.
package rescale

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Into rescales an RGBA source image (srcPix, srcW x srcH, stride srcW*4) to
// dstW x dstH using a high-quality (Catmull-Rom) filter and packs the result
// as tightly stridden RGB565 big-endian into dst, which must have length
// dstW*dstH*2.
func Into(dst []byte, srcPix []byte, srcW, srcH, dstW, dstH int) {
	if len(dst) != dstW*dstH*2 {
		panic("rescale: destination buffer has the wrong length")
	}

	src := &image.RGBA{Pix: srcPix, Stride: srcW * 4, Rect: image.Rect(0, 0, srcW, srcH)}
	if srcW == dstW && srcH == dstH {
		PackRGB565BE(dst, src.Pix, src.Stride, dstW, dstH)
		return
	}

	scaled := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Over, nil)
	PackRGB565BE(dst, scaled.Pix, scaled.Stride, dstW, dstH)
}

// PackRGB565BE converts an RGBA buffer (possibly padded, stride srcStride)
// into a tightly packed RGB565 big-endian buffer. No library in the
// retrieved corpus, or in the wider Go ecosystem, packs this exact wire
// format: it is a display-controller convention rather than a
// general-purpose image encoding, so it is hand-rolled here.
func PackRGB565BE(dst []byte, srcPix []byte, srcStride, w, h int) {
	o := 0
	for y := 0; y < h; y++ {
		row := y * srcStride
		for x := 0; x < w; x++ {
			i := row + x*4
			r, g, b := srcPix[i], srcPix[i+1], srcPix[i+2]
			v := uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3
			dst[o] = byte(v >> 8)
			dst[o+1] = byte(v)
			o += 2
		}
	}
}
