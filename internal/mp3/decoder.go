// Package mp3 reads MP3 files: the ID3 tags through package id3 and the
// stream properties from the first MPEG audio frame.
package mp3

import (
	"fmt"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/id3"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

const stage = "mpeg"

// Metadata is the decoded content of an MP3 file.
type Metadata struct {
	*id3.Tag

	// Stream is nil when no audio frame was found after the tag.
	Stream *StreamInfo
}

// Empty reports whether neither a tag nor an audio frame was found.
func (m *Metadata) Empty() bool {
	return m.Tag.Empty() && m.Stream == nil
}

// Chapters is always empty: chapter frames are not decoded.
func (m *Metadata) Chapters() []types.Chapter {
	return nil
}

// Audio returns the stream properties of the first frame.
func (m *Metadata) Audio() types.AudioInfo {
	if m.Stream == nil {
		return types.AudioInfo{Codec: "MP3"}
	}
	return m.Stream.AudioInfo()
}

// Decoder decodes MP3 files. It is registered for types.FormatMP3.
type Decoder struct{}

func init() {
	registry.Register(types.FormatMP3, Decoder{})
}

// Decode implements registry.Decoder.
func (Decoder) Decode(src *binutil.Source, env *types.Env) (registry.Result, error) {
	return Decode(src, env)
}

// Decode reads the tags, then scans for the first audio frame between the
// ID3v2 region and any trailing ID3v1 block.
func Decode(src *binutil.Source, env *types.Env) (*Metadata, error) {
	tag, err := id3.Decode(src, env)
	if err != nil {
		return nil, err
	}
	m := &Metadata{Tag: tag}

	end := src.Size()
	if hasV1(src) {
		end -= id3.V1Size
	}
	m.Stream, err = ReadStreamInfo(src, tag.End(), end)
	if err != nil {
		return nil, err
	}
	if m.Stream == nil {
		env.Emit(types.Diagnostic{
			Stage:   stage,
			Kind:    types.DiagSkipped,
			Offset:  tag.End(),
			Message: fmt.Sprintf("no MPEG audio frame within %d bytes after the tags", scanWindow),
		})
	}
	return m, nil
}

func hasV1(src *binutil.Source) bool {
	if src.Size() < id3.V1Size {
		return false
	}
	marker := make([]byte, 3)
	if err := src.ReadAt(marker, src.Size()-id3.V1Size, "ID3v1 marker"); err != nil {
		return false
	}
	return string(marker) == "TAG"
}
