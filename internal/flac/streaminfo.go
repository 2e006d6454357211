package flac

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/icza/bitio"

	"github.com/simonhull/audiotag/internal/types"
)

// StreamInfoSize is the fixed length of a STREAMINFO body.
const StreamInfoSize = 34

// StreamInfo is the mandatory first metadata block.
type StreamInfo struct {
	MinBlockSize  uint16
	MaxBlockSize  uint16
	MinFrameSize  uint32 // 24 bits, 0 when unknown
	MaxFrameSize  uint32 // 24 bits, 0 when unknown
	SampleRate    uint32 // 20 bits
	Channels      uint8  // 1-8
	BitsPerSample uint8  // 4-32

	// TotalSamples is the 36-bit inter-channel sample count, 0 when unknown.
	TotalSamples uint64
	MD5          [16]byte
}

// Duration returns TotalSamples / SampleRate.
func (s *StreamInfo) Duration() time.Duration {
	return types.DurationFromSamples(s.TotalSamples, int(s.SampleRate))
}

// AudioInfo converts the stream properties.
func (s *StreamInfo) AudioInfo() types.AudioInfo {
	return types.AudioInfo{
		Codec:      "FLAC",
		Duration:   s.Duration(),
		SampleRate: int(s.SampleRate),
		BitDepth:   int(s.BitsPerSample),
		Channels:   int(s.Channels),
		Lossless:   true,
	}
}

// decodeStreamInfo unpacks the bit-packed STREAMINFO layout:
//
//	<16> min block size   <16> max block size
//	<24> min frame size   <24> max frame size
//	<20> sample rate      <3>  channels-1     <5> bits per sample-1
//	<36> total samples    <128> MD5 of the unencoded audio
func decodeStreamInfo(b []byte) (*StreamInfo, error) {
	if len(b) != StreamInfoSize {
		return nil, fmt.Errorf("STREAMINFO is %d bytes, expected %d", len(b), StreamInfoSize)
	}

	br := bitio.NewReader(bytes.NewReader(b))
	var err error
	read := func(n uint8) uint64 {
		if err != nil {
			return 0
		}
		var v uint64
		v, err = br.ReadBits(n)
		return v
	}

	s := &StreamInfo{
		MinBlockSize:  uint16(read(16)),
		MaxBlockSize:  uint16(read(16)),
		MinFrameSize:  uint32(read(24)),
		MaxFrameSize:  uint32(read(24)),
		SampleRate:    uint32(read(20)),
		Channels:      uint8(read(3)) + 1,
		BitsPerSample: uint8(read(5)) + 1,
		TotalSamples:  read(36),
	}
	if err != nil {
		return nil, fmt.Errorf("STREAMINFO: %w", err)
	}
	if _, err := io.ReadFull(br, s.MD5[:]); err != nil {
		return nil, fmt.Errorf("STREAMINFO MD5: %w", err)
	}
	return s, nil
}
