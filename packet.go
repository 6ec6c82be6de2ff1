package lcdplayer

// EncodedPacket is the unit of work the Demuxer hands the Decoder through
// the PacketQueue. reisen fuses demuxing and decoding behind a single call
// (see codec.go), so by the time a packet reaches Go code its payload
// bytes are no longer reachable on their own; EncodedPacket is therefore an
// admission token rather than a payload carrier. It still gives the
// PacketQueue real depth, ordering and backpressure, which is what the
// Decoder and the flush sequence actually depend on.
type EncodedPacket struct {
	Seq int64
}
