package ogg

import (
	"bytes"
	"fmt"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
	"github.com/simonhull/audiotag/internal/vorbis"
)

// Vorbis header packet types.
const (
	packetIdentification = 0x01
	packetComment        = 0x03
	packetSetup          = 0x05
)

const (
	vorbisMagic   = "vorbis"
	opusHeadMagic = "OpusHead"
	opusTagsMagic = "OpusTags"
)

// opusRate is the decoding rate of every Opus stream.
const opusRate = 48000

// Codec identifies the codec of a logical stream from its first packet.
type Codec int

const (
	CodecUnknown Codec = iota
	CodecVorbis
	CodecOpus
)

func (c Codec) String() string {
	switch c {
	case CodecVorbis:
		return "Vorbis"
	case CodecOpus:
		return "Opus"
	default:
		return "unknown"
	}
}

// detectCodec examines the magic at the start of the first packet.
func detectCodec(first []byte) Codec {
	switch {
	case bytes.HasPrefix(first, []byte(opusHeadMagic)):
		return CodecOpus
	case len(first) >= 7 && first[0] == packetIdentification && string(first[1:7]) == vorbisMagic:
		return CodecVorbis
	default:
		return CodecUnknown
	}
}

// Identification is the Vorbis identification header.
type Identification struct {
	Version    uint32
	Channels   uint8
	SampleRate uint32

	// Bitrates in bits per second; 0 when unset.
	BitrateMaximum int32
	BitrateNominal int32
	BitrateMinimum int32

	// Block sizes as powers of two.
	BlockSize0 uint8
	BlockSize1 uint8
}

// decodeIdentification parses the 30-byte identification packet:
//
//	0x01 "vorbis" version(4) channels(1) rate(4)
//	bitrate_max(4) bitrate_nominal(4) bitrate_min(4)
//	blocksize_0(4 bits) blocksize_1(4 bits) framing(1)
func decodeIdentification(b []byte) (*Identification, error) {
	c := binary.NewCursor(b, "Vorbis identification header")
	c.Skip(1+len(vorbisMagic), "packet type")

	id := &Identification{
		Version:        binary.ReadLE[uint32](c, "version"),
		Channels:       c.Byte("channels"),
		SampleRate:     binary.ReadLE[uint32](c, "sample rate"),
		BitrateMaximum: int32(binary.ReadLE[uint32](c, "maximum bitrate")),
		BitrateNominal: int32(binary.ReadLE[uint32](c, "nominal bitrate")),
		BitrateMinimum: int32(binary.ReadLE[uint32](c, "minimum bitrate")),
	}
	sizes := c.Byte("block sizes")
	framing := c.Byte("framing flag")
	if err := c.Err(); err != nil {
		return nil, err
	}
	id.BlockSize0 = sizes & 0x0F
	id.BlockSize1 = sizes >> 4

	switch {
	case id.Version != 0:
		return nil, fmt.Errorf("unsupported Vorbis version %d", id.Version)
	case id.Channels == 0:
		return nil, fmt.Errorf("identification header declares no channels")
	case id.SampleRate == 0:
		return nil, fmt.Errorf("identification header declares no sample rate")
	case framing&0x01 == 0:
		return nil, fmt.Errorf("identification header framing bit not set")
	}
	return id, nil
}

// OpusHead is the Opus identification header.
type OpusHead struct {
	Version  uint8
	Channels uint8
	PreSkip  uint16

	// InputSampleRate is the rate of the original recording, informational
	// only. Opus always decodes at 48kHz.
	InputSampleRate uint32

	// OutputGain is in Q7.8 dB.
	OutputGain    int16
	MappingFamily uint8
}

// GainDB returns the output gain in decibels.
func (h *OpusHead) GainDB() float64 {
	return float64(h.OutputGain) / 256
}

// decodeOpusHead parses:
//
//	"OpusHead" version(1) channels(1) pre_skip(2) input_rate(4)
//	output_gain(2) mapping_family(1) [mapping table]
func decodeOpusHead(b []byte) (*OpusHead, error) {
	c := binary.NewCursor(b, "OpusHead")
	c.Skip(len(opusHeadMagic), "magic")
	h := &OpusHead{
		Version:         c.Byte("version"),
		Channels:        c.Byte("channels"),
		PreSkip:         binary.ReadLE[uint16](c, "pre-skip"),
		InputSampleRate: binary.ReadLE[uint32](c, "input sample rate"),
		OutputGain:      int16(binary.ReadLE[uint16](c, "output gain")),
		MappingFamily:   c.Byte("mapping family"),
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	// The major version lives in the upper nibble; 0 is the only one defined.
	if h.Version>>4 != 0 {
		return nil, fmt.Errorf("unsupported Opus version %d", h.Version)
	}
	if h.Channels == 0 {
		return nil, fmt.Errorf("OpusHead declares no channels")
	}
	return h, nil
}

// decodeCommentPacket strips the codec prefix from a comment packet and
// decodes the comment body. Vorbis comment packets must end with a set
// framing bit; a missing one is reported, not fatal.
func decodeCommentPacket(codec Codec, pkt Packet, env *types.Env) (*vorbis.Comments, error) {
	var prefix string
	switch codec {
	case CodecVorbis:
		prefix = "\x03" + vorbisMagic
	case CodecOpus:
		prefix = opusTagsMagic
	}
	if !bytes.HasPrefix(pkt.Data, []byte(prefix)) {
		return nil, fmt.Errorf("second packet is not a %s comment header", codec)
	}

	body := pkt.Data[len(prefix):]
	comments, n, err := vorbis.Decode(body, env, stage, pkt.Offset+int64(len(prefix)))
	if err != nil {
		return nil, err
	}

	if codec == CodecVorbis && (n >= len(body) || body[n]&0x01 == 0) {
		env.Emit(types.Diagnostic{
			Stage:      stage,
			Kind:       types.DiagFramingBit,
			Identifier: "comment",
			Offset:     pkt.Offset + int64(len(prefix)+n),
			Message:    "comment header ends without its framing bit",
		})
	}
	return comments, nil
}
