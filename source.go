package lcdplayer

import "time"

// RawFrame is a single decoded video frame exactly as a codec binding hands
// it back: RGBA pixels sized to the stream's native resolution, stride
// Width*4, plus whatever presentation timestamp the binding could resolve.
type RawFrame struct {
	PTS    time.Duration
	HasPTS bool
	Width  int
	Height int
	Pix    []byte
}

// Container is the demux-side codec boundary the Demuxer drives: read the
// next packet and report whether it belongs to the selected video stream,
// and support seeking back to an earlier point in the stream. err is
// io.EOF once the container is exhausted.
type Container interface {
	ReadPacket() (isVideo bool, err error)
	SeekBackward(target time.Duration) error
}

// VideoDecoder is the decode-side codec boundary the Decoder drives: having
// admitted a packet from the Container, try to drain one decoded frame. A
// false ok with a nil error means "no frame ready yet", not end of stream.
type VideoDecoder interface {
	DecodeNext() (frame RawFrame, ok bool, err error)
}
