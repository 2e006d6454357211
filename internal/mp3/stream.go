package mp3

import (
	"encoding/binary"
	"time"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// scanWindow bounds the search for the first frame after the tag.
const scanWindow = 64 * 1024

// StreamInfo describes the MPEG audio stream from its first frame and any
// Xing, Info or VBRI header in it.
type StreamInfo struct {
	Header FrameHeader

	// Offset is the file offset of the first frame.
	Offset int64

	// Frames is the frame count from a VBR header, 0 when absent.
	Frames uint32
	// VBR is true for a Xing or VBRI header; an Info header marks CBR.
	VBR bool

	Duration time.Duration
	Bitrate  int
}

// AudioInfo converts the stream properties.
func (s *StreamInfo) AudioInfo() types.AudioInfo {
	return types.AudioInfo{
		Codec:      "MP3",
		Duration:   s.Duration,
		SampleRate: s.Header.SampleRate,
		Channels:   s.Header.Channels(),
		Bitrate:    s.Bitrate,
	}
}

// ReadStreamInfo finds the first frame in [start, end) and derives the
// duration. A candidate frame is accepted when the bytes right after it
// also carry a frame sync, or it runs to the end of the window. It returns
// nil when no frame is found.
func ReadStreamInfo(src *binutil.Source, start, end int64) (*StreamInfo, error) {
	if end-start < 4 {
		return nil, nil
	}
	buf := make([]byte, min(end-start, scanWindow))
	if err := src.ReadAt(buf, start, "MPEG audio frames"); err != nil {
		return nil, err
	}

	for i := 0; i+4 <= len(buf); i++ {
		if buf[i] != 0xFF || buf[i+1]&0xE0 != 0xE0 {
			continue
		}
		h, err := ParseFrameHeader(buf[i : i+4])
		if err != nil {
			continue
		}
		if next := i + h.Length(); next+2 <= len(buf) && (buf[next] != 0xFF || buf[next+1]&0xE0 != 0xE0) {
			continue
		}

		s := &StreamInfo{Header: h, Offset: start + int64(i), Bitrate: h.Bitrate}
		s.readVBRHeader(buf[i:])
		if s.Frames == 0 {
			audioBytes := end - s.Offset
			s.Duration = time.Duration(float64(audioBytes*8) / float64(h.Bitrate) * float64(time.Second))
		}
		return s, nil
	}
	return nil, nil
}

// readVBRHeader looks for a Xing/Info header after the side information,
// then a VBRI header 32 bytes after the frame header.
func (s *StreamInfo) readVBRHeader(frame []byte) {
	h := s.Header
	if off := 4 + h.sideInfoSize(); len(frame) >= off+16 {
		tag := string(frame[off : off+4])
		if tag == "Xing" || tag == "Info" {
			s.VBR = tag == "Xing"
			flags := binary.BigEndian.Uint32(frame[off+4:])
			pos := off + 8
			var streamBytes uint32
			if flags&0x1 != 0 {
				s.Frames = binary.BigEndian.Uint32(frame[pos:])
				pos += 4
			}
			if flags&0x2 != 0 {
				streamBytes = binary.BigEndian.Uint32(frame[pos:])
			}
			s.fromFrames(streamBytes)
			return
		}
	}

	if off := 4 + 32; len(frame) >= off+18 && string(frame[off:off+4]) == "VBRI" {
		s.VBR = true
		streamBytes := binary.BigEndian.Uint32(frame[off+10:])
		s.Frames = binary.BigEndian.Uint32(frame[off+14:])
		s.fromFrames(streamBytes)
	}
}

// fromFrames sets the duration from the frame count and, when the byte
// count is known, the average bitrate.
func (s *StreamInfo) fromFrames(streamBytes uint32) {
	if s.Frames == 0 {
		return
	}
	samples := uint64(s.Frames) * uint64(s.Header.SamplesPerFrame())
	s.Duration = types.DurationFromSamples(samples, s.Header.SampleRate)
	if streamBytes > 0 && s.Duration > 0 {
		s.Bitrate = int(float64(streamBytes) * 8 / s.Duration.Seconds())
	}
}
