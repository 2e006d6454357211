package audiotag

import (
	"github.com/simonhull/audiotag/internal/flac"
	"github.com/simonhull/audiotag/internal/id3"
	"github.com/simonhull/audiotag/internal/mp3"
	"github.com/simonhull/audiotag/internal/ogg"
)

// ID3Tag holds the ID3v2 tag of an MP3 file and, under WithID3v1, its
// ID3v1 block.
type ID3Tag = id3.Tag

// ID3Frame is one decoded ID3v2 frame.
type ID3Frame = id3.Frame

// MPEGStream describes the first MPEG audio frame of an MP3 file.
type MPEGStream = mp3.StreamInfo

// FLACMetadata holds every metadata block of a FLAC stream.
type FLACMetadata = flac.Metadata

// OggStream holds the headers of an Ogg Vorbis or Opus stream.
type OggStream = ogg.Stream

// DescribeFrame returns a short description of an ID3v2 frame ID, or ""
// when the ID is not in the catalog.
func DescribeFrame(id string) string {
	return id3.Describe(id)
}
