package flac

import (
	"fmt"
	"strings"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// LeadOutTrack is the track number of the CD lead-out.
const LeadOutTrack = 170

// CueSheet represents a FLAC CUESHEET metadata block
type CueSheet struct {
	MediaCatalogNumber string
	LeadIn             uint64
	IsCD               bool
	Tracks             []CueTrack
}

// CueTrack represents a track in a cue sheet
type CueTrack struct {
	Offset      uint64 // samples from start of audio
	Number      byte   // track number (1-99, 170=lead-out)
	ISRC        string
	IsAudio     bool
	PreEmphasis bool
	Indices     []CueIndex
}

// CueIndex represents an index point within a track
type CueIndex struct {
	Offset uint64 // samples from start of track
	Number byte   // index number
}

// decodeCueSheet parses a CUESHEET block:
//
//	<128 bytes> media catalog number
//	<64> lead-in samples
//	<1> is CD, <7+258*8> reserved
//	<8> track count, then the tracks
func decodeCueSheet(b []byte) (*CueSheet, error) {
	c := binary.NewCursor(b, "CUESHEET")

	cs := &CueSheet{
		MediaCatalogNumber: strings.TrimRight(c.String(128, "media catalog number"), "\x00"),
		LeadIn:             binary.ReadBE[uint64](c, "lead-in samples"),
	}
	cs.IsCD = c.Byte("cuesheet flags")&0x80 != 0
	c.Skip(258, "reserved")
	trackCount := c.Byte("track count")
	if err := c.Err(); err != nil {
		return nil, err
	}

	cs.Tracks = make([]CueTrack, 0, trackCount)
	for i := 0; i < int(trackCount); i++ {
		track, err := decodeCueTrack(c)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		cs.Tracks = append(cs.Tracks, track)
	}
	return cs, nil
}

// decodeCueTrack reads one 36-byte track record and its index points.
func decodeCueTrack(c *binary.Cursor) (CueTrack, error) {
	t := CueTrack{
		Offset: binary.ReadBE[uint64](c, "track offset"),
		Number: c.Byte("track number"),
		ISRC:   strings.TrimRight(c.String(12, "ISRC"), "\x00"),
	}
	flags := c.Byte("track flags")
	// Bit 7 is the non-audio flag: a clear bit means an audio track.
	t.IsAudio = flags&0x80 == 0
	t.PreEmphasis = flags&0x40 != 0
	c.Skip(13, "reserved")
	indexCount := c.Byte("index count")
	if err := c.Err(); err != nil {
		return CueTrack{}, err
	}

	t.Indices = make([]CueIndex, 0, indexCount)
	for j := 0; j < int(indexCount); j++ {
		idx := CueIndex{
			Offset: binary.ReadBE[uint64](c, "index offset"),
			Number: c.Byte("index number"),
		}
		c.Skip(3, "reserved")
		if err := c.Err(); err != nil {
			return CueTrack{}, fmt.Errorf("index %d: %w", j, err)
		}
		t.Indices = append(t.Indices, idx)
	}
	return t, nil
}

// Chapters converts the audio tracks to chapters. The lead-out track, when
// present, ends the last chapter.
func (cs *CueSheet) Chapters(sampleRate int) []types.Chapter {
	if sampleRate <= 0 {
		return nil
	}

	var audio []CueTrack
	var leadOut uint64
	for _, track := range cs.Tracks {
		switch {
		case track.Number == LeadOutTrack:
			leadOut = track.Offset
		case track.IsAudio:
			audio = append(audio, track)
		}
	}
	if len(audio) == 0 {
		return nil
	}

	chapters := make([]types.Chapter, len(audio))
	for i, track := range audio {
		var end uint64
		if i < len(audio)-1 {
			end = audio[i+1].Offset
		} else {
			end = leadOut
		}

		title := fmt.Sprintf("Track %02d", track.Number)
		if track.ISRC != "" {
			title = fmt.Sprintf("Track %02d (%s)", track.Number, track.ISRC)
		}

		chapters[i] = types.Chapter{
			Index:     i + 1,
			Title:     title,
			StartTime: types.DurationFromSamples(track.Offset, sampleRate),
			EndTime:   types.DurationFromSamples(end, sampleRate),
		}
	}
	return chapters
}
