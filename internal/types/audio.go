package types

import (
	"fmt"
	"strings"
	"time"
)

// AudioInfo holds the technical stream properties a container declares in
// its headers: FLAC STREAMINFO, the Vorbis identification header or
// OpusHead. Nothing here is measured from audio frames.
type AudioInfo struct {
	Codec      string
	Duration   time.Duration
	SampleRate int
	BitDepth   int
	Channels   int

	// Bitrate is the nominal bitrate in bits per second, 0 when undeclared.
	Bitrate  int
	Lossless bool
}

// String returns e.g. "FLAC 44.1kHz 16-bit stereo lossless".
func (a AudioInfo) String() string {
	parts := []string{a.Codec}
	if a.SampleRate > 0 {
		parts = append(parts, fmt.Sprintf("%.1fkHz", float64(a.SampleRate)/1000))
	}
	if a.BitDepth > 0 {
		parts = append(parts, fmt.Sprintf("%d-bit", a.BitDepth))
	}
	parts = append(parts, channelDescription(a.Channels))
	switch {
	case a.Lossless:
		parts = append(parts, "lossless")
	case a.Bitrate > 0:
		parts = append(parts, fmt.Sprintf("%dkbps", a.Bitrate/1000))
	}

	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// channelDescription returns a human-readable channel description.
func channelDescription(channels int) string {
	switch channels {
	case 0:
		return ""
	case 1:
		return "mono"
	case 2:
		return "stereo"
	case 4:
		return "quad"
	case 6:
		return "5.1"
	case 8:
		return "7.1"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}

// IsHighRes reports whether the stream exceeds CD quality
// (sample rate above 48kHz or bit depth above 16).
func (a AudioInfo) IsHighRes() bool {
	return a.SampleRate > 48000 || a.BitDepth > 16
}

// DurationFromSamples converts a sample count at the given rate.
// It returns 0 when the rate is unknown.
func DurationFromSamples(samples uint64, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(float64(samples) / float64(rate) * float64(time.Second))
}
