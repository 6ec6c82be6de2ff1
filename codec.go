package lcdplayer

import (
	"io"
	"sync"
	"time"

	"github.com/erparts/reisen"
)

// reisenSource adapts a *reisen.Media + *reisen.VideoStream pair to the
// Container and VideoDecoder interfaces. reisen fuses demuxing and decoding
// behind Media.ReadPacket/VideoStream.ReadVideoFrame, both of which read and
// mutate the same underlying AVFormatContext; every call into either one is
// serialized through ioMu, which the Demuxer and Decoder goroutines share.
// See SPEC_FULL.md for why this narrow shared lock is necessary even though
// the Demuxer and Decoder otherwise communicate only through the queues.
type reisenSource struct {
	ioMu   *sync.Mutex
	media  *reisen.Media
	stream *reisen.VideoStream
}

func (s *reisenSource) ReadPacket() (bool, error) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	packet, found, err := s.media.ReadPacket()
	if err != nil {
		return false, err
	}
	if !found {
		return false, io.EOF
	}
	isVideo := packet.Type() == reisen.StreamVideo && packet.StreamIndex() == s.stream.Index()
	return isVideo, nil
}

func (s *reisenSource) SeekBackward(target time.Duration) error {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()
	return s.stream.Rewind(target)
}

func (s *reisenSource) DecodeNext() (RawFrame, bool, error) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	frame, got, err := s.stream.ReadVideoFrame()
	if err != nil {
		return RawFrame{}, false, err
	}
	if !got || frame == nil {
		return RawFrame{}, false, nil
	}

	pts, ptsErr := frame.PresentationOffset()
	hasPts := ptsErr == nil

	return RawFrame{
		PTS:    pts,
		HasPTS: hasPts,
		Width:  s.stream.Width(),
		Height: s.stream.Height(),
		Pix:    frame.Data(),
	}, true, nil
}
