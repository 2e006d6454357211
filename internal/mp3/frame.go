package mp3

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"
)

// Version is the MPEG audio version.
type Version int

const (
	MPEG25 Version = iota // unofficial MPEG 2.5
	versionReserved
	MPEG2
	MPEG1
)

func (v Version) String() string {
	switch v {
	case MPEG1:
		return "MPEG-1"
	case MPEG2:
		return "MPEG-2"
	case MPEG25:
		return "MPEG-2.5"
	default:
		return "reserved"
	}
}

// ChannelMode is the 2-bit channel mode field.
type ChannelMode int

const (
	Stereo ChannelMode = iota
	JointStereo
	DualChannel
	Mono
)

// Bitrate tables in kbps, indexed by the 4-bit bitrate field.
var (
	bitratesV1 = [3][15]int{
		{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448}, // Layer I
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384},    // Layer II
		{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320},     // Layer III
	}
	bitratesV2 = [3][15]int{
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256}, // Layer I
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},      // Layer II
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},      // Layer III
	}
)

// Sample rates in Hz, indexed by version then the 2-bit rate field.
var sampleRates = map[Version][3]int{
	MPEG1:  {44100, 48000, 32000},
	MPEG2:  {22050, 24000, 16000},
	MPEG25: {11025, 12000, 8000},
}

// FrameHeader is a decoded 4-byte MPEG audio frame header.
type FrameHeader struct {
	Version     Version
	Layer       int // 1, 2 or 3
	Protected   bool
	Bitrate     int // bits per second
	SampleRate  int
	Padding     bool
	ChannelMode ChannelMode
}

// Channels returns 1 for mono and 2 otherwise.
func (h FrameHeader) Channels() int {
	if h.ChannelMode == Mono {
		return 1
	}
	return 2
}

// SamplesPerFrame returns the number of samples per channel in one frame.
func (h FrameHeader) SamplesPerFrame() int {
	switch {
	case h.Layer == 1:
		return 384
	case h.Layer == 3 && h.Version != MPEG1:
		return 576
	default:
		return 1152
	}
}

// Length returns the frame length in bytes, header included.
func (h FrameHeader) Length() int {
	pad := 0
	if h.Padding {
		pad = 1
	}
	if h.Layer == 1 {
		return (12*h.Bitrate/h.SampleRate + pad) * 4
	}
	return h.SamplesPerFrame()/8*h.Bitrate/h.SampleRate + pad
}

// sideInfoSize is the length of the Layer III side information that
// precedes a Xing header.
func (h FrameHeader) sideInfoSize() int {
	switch {
	case h.Version == MPEG1 && h.ChannelMode == Mono:
		return 17
	case h.Version == MPEG1:
		return 32
	case h.ChannelMode == Mono:
		return 9
	default:
		return 17
	}
}

// ParseFrameHeader decodes the bit fields of a frame header:
//
//	sync(11) version(2) layer(2) protection(1) bitrate(4) rate(2)
//	padding(1) private(1) mode(2) mode_ext(2) copyright(1) original(1) emphasis(2)
//
// Free-format bitrates are rejected since their frame length cannot be
// derived from the header.
func ParseFrameHeader(b []byte) (FrameHeader, error) {
	if len(b) < 4 {
		return FrameHeader{}, fmt.Errorf("frame header needs 4 bytes, got %d", len(b))
	}

	br := bitio.NewReader(bytes.NewReader(b[:4]))
	var err error
	read := func(n uint8) int {
		if err != nil {
			return 0
		}
		var v uint64
		v, err = br.ReadBits(n)
		return int(v)
	}

	sync := read(11)
	version := Version(read(2))
	layerBits := read(2)
	protectionAbsent := read(1)
	bitrateIndex := read(4)
	rateIndex := read(2)
	padding := read(1)
	read(1) // private
	mode := ChannelMode(read(2))
	if err != nil {
		return FrameHeader{}, err
	}

	switch {
	case sync != 0x7FF:
		return FrameHeader{}, fmt.Errorf("no frame sync")
	case version == versionReserved:
		return FrameHeader{}, fmt.Errorf("reserved MPEG version")
	case layerBits == 0:
		return FrameHeader{}, fmt.Errorf("reserved layer")
	case bitrateIndex == 0:
		return FrameHeader{}, fmt.Errorf("free-format bitrate")
	case bitrateIndex == 15:
		return FrameHeader{}, fmt.Errorf("invalid bitrate index")
	case rateIndex == 3:
		return FrameHeader{}, fmt.Errorf("reserved sample rate")
	}

	h := FrameHeader{
		Version:     version,
		Layer:       4 - layerBits,
		Protected:   protectionAbsent == 0,
		SampleRate:  sampleRates[version][rateIndex],
		Padding:     padding == 1,
		ChannelMode: mode,
	}
	table := bitratesV2
	if version == MPEG1 {
		table = bitratesV1
	}
	h.Bitrate = table[h.Layer-1][bitrateIndex] * 1000
	return h, nil
}
