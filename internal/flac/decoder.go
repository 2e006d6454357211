// Package flac decodes the metadata blocks at the head of a FLAC stream.
package flac

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/icza/bitio"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
	"github.com/simonhull/audiotag/internal/vorbis"
)

const stage = "flac"

// Marker is the stream signature.
const Marker = "fLaC"

// pictureKey is the identifier PICTURE blocks are exposed under.
const pictureKey = "PICTURE"

// Metadata is the decoded metadata of a FLAC stream.
type Metadata struct {
	// Found is false when the file does not start with the marker.
	Found bool

	// Blocks lists every block header in file order.
	Blocks []BlockHeader

	StreamInfo   *StreamInfo
	Applications []Application
	SeekTable    []SeekPoint
	Comments     *vorbis.Comments
	CueSheet     *CueSheet
	Pictures     []*vorbis.Picture

	// Padding is the total length of all PADDING blocks.
	Padding int64
}

// Empty reports whether the file was not a FLAC stream.
func (m *Metadata) Empty() bool {
	return !m.Found
}

// Get returns the comment values under id, case-insensitively. "PICTURE"
// returns the picture descriptions.
func (m *Metadata) Get(id string) []string {
	if strings.EqualFold(id, pictureKey) && len(m.Pictures) > 0 {
		out := make([]string, len(m.Pictures))
		for i, p := range m.Pictures {
			out[i] = p.Message()
		}
		return out
	}
	if m.Comments == nil {
		return nil
	}
	return m.Comments.Get(id)
}

// GetRaw returns raw payloads. Only "PICTURE" carries binary data: the
// image bytes of each PICTURE block.
func (m *Metadata) GetRaw(id string) [][]byte {
	if strings.EqualFold(id, pictureKey) && len(m.Pictures) > 0 {
		out := make([][]byte, len(m.Pictures))
		for i, p := range m.Pictures {
			out[i] = p.Raw()
		}
		return out
	}
	if m.Comments == nil {
		return nil
	}
	return m.Comments.Fields.GetRaw(id)
}

// Keys returns the comment keys in file order, followed by "PICTURE" when
// the stream has PICTURE blocks.
func (m *Metadata) Keys() []string {
	var keys []string
	if m.Comments != nil {
		keys = m.Comments.Keys()
	}
	if len(m.Pictures) > 0 {
		keys = append(keys, pictureKey)
	}
	return keys
}

// Artwork returns the PICTURE blocks followed by any pictures embedded in
// METADATA_BLOCK_PICTURE comments.
func (m *Metadata) Artwork() []types.Artwork {
	var out []types.Artwork
	for _, p := range m.Pictures {
		out = append(out, p.Artwork())
	}
	if m.Comments != nil {
		out = append(out, m.Comments.Artwork()...)
	}
	return out
}

// Audio returns the STREAMINFO properties.
func (m *Metadata) Audio() types.AudioInfo {
	if m.StreamInfo == nil {
		return types.AudioInfo{Codec: "FLAC", Lossless: true}
	}
	return m.StreamInfo.AudioInfo()
}

// Chapters returns the CUESHEET tracks as chapters, falling back to
// CHAPTERxxx comments.
func (m *Metadata) Chapters() []types.Chapter {
	audio := m.Audio()
	if m.CueSheet != nil {
		if ch := m.CueSheet.Chapters(audio.SampleRate); ch != nil {
			return ch
		}
	}
	if m.Comments != nil {
		return m.Comments.Chapters(audio.Duration)
	}
	return nil
}

// Decoder decodes FLAC streams. It is registered for types.FormatFLAC.
type Decoder struct{}

func init() {
	registry.Register(types.FormatFLAC, Decoder{})
}

// Decode implements registry.Decoder.
func (Decoder) Decode(src *binutil.Source, env *types.Env) (registry.Result, error) {
	return Decode(src, env)
}

// Decode checks the marker and walks the metadata blocks until the one
// flagged last.
func Decode(src *binutil.Source, env *types.Env) (*Metadata, error) {
	m := &Metadata{}
	if src.Size() < int64(len(Marker)) {
		return m, nil
	}
	if err := src.Seek(0); err != nil {
		return nil, err
	}
	marker, err := src.ReadFull(len(Marker), "FLAC marker")
	if err != nil {
		return nil, err
	}
	if string(marker) != Marker {
		return m, nil
	}
	m.Found = true

	for {
		off := src.Offset()
		hb, err := src.ReadFull(4, "metadata block header")
		if err != nil {
			return nil, err
		}
		hdr, err := parseBlockHeader(hb, off)
		if err != nil {
			return nil, err
		}
		m.Blocks = append(m.Blocks, hdr)

		if err := env.CheckPayload(src.Path(), hdr.Type.String()+" block", off, int64(hdr.Length)); err != nil {
			return nil, err
		}

		if hdr.Type == BlockPadding {
			if err := src.Skip(int64(hdr.Length), "PADDING block"); err != nil {
				return nil, err
			}
			m.Padding += int64(hdr.Length)
			env.Emit(types.Diagnostic{
				Stage:      stage,
				Kind:       types.DiagPadding,
				Identifier: hdr.Type.String(),
				Offset:     off,
				Message:    fmt.Sprintf("%d bytes of padding", hdr.Length),
			})
		} else {
			body, err := src.ReadFull(int(hdr.Length), hdr.Type.String()+" block")
			if err != nil {
				return nil, err
			}
			if err := m.decodeBlock(hdr, body, env); err != nil {
				if env == nil || !env.LenientFrames {
					return nil, &types.CorruptedFileError{
						Path:   src.Path(),
						Offset: off,
						Reason: fmt.Sprintf("%s block: %v", hdr.Type, err),
					}
				}
				env.Emit(types.Diagnostic{
					Stage:      stage,
					Kind:       types.DiagBadFrame,
					Identifier: hdr.Type.String(),
					Offset:     off,
					Message:    err.Error(),
				})
			}
		}

		if hdr.IsLast {
			return m, nil
		}
	}
}

// parseBlockHeader unpacks <1> last-block flag, <7> block type, <24> length.
func parseBlockHeader(b []byte, off int64) (BlockHeader, error) {
	br := bitio.NewReader(bytes.NewReader(b))
	last, err := br.ReadBool()
	if err != nil {
		return BlockHeader{}, err
	}
	typ, err := br.ReadBits(7)
	if err != nil {
		return BlockHeader{}, err
	}
	length, err := br.ReadBits(24)
	if err != nil {
		return BlockHeader{}, err
	}
	return BlockHeader{IsLast: last, Type: BlockType(typ), Length: uint32(length), Offset: off}, nil
}

// decodeBlock dispatches a block body by type.
func (m *Metadata) decodeBlock(hdr BlockHeader, body []byte, env *types.Env) error {
	bodyOffset := hdr.Offset + 4

	switch hdr.Type {
	case BlockStreamInfo:
		si, err := decodeStreamInfo(body)
		if err != nil {
			return err
		}
		m.StreamInfo = si

	case BlockApplication:
		app, err := decodeApplication(body)
		if err != nil {
			return err
		}
		m.Applications = append(m.Applications, app)

	case BlockSeekTable:
		points, placeholders, err := decodeSeekTable(body)
		if err != nil {
			return err
		}
		m.SeekTable = append(m.SeekTable, points...)
		if placeholders > 0 {
			env.Emit(types.Diagnostic{
				Stage:      stage,
				Kind:       types.DiagPlaceholder,
				Identifier: hdr.Type.String(),
				Offset:     bodyOffset,
				Message:    fmt.Sprintf("%d placeholder seek points", placeholders),
			})
		}

	case BlockVorbisComment:
		comments, _, err := vorbis.Decode(body, env, stage, bodyOffset)
		if err != nil {
			return err
		}
		if m.Comments == nil {
			m.Comments = comments
			return nil
		}
		for _, values := range comments.Fields.All() {
			for _, v := range values {
				m.Comments.Fields.Insert(v)
			}
		}

	case BlockCueSheet:
		cs, err := decodeCueSheet(body)
		if err != nil {
			return err
		}
		m.CueSheet = cs

	case BlockPicture:
		pic, err := vorbis.DecodePicture(body)
		if err != nil {
			return err
		}
		m.Pictures = append(m.Pictures, pic)

	default:
		env.Emit(types.Diagnostic{
			Stage:      stage,
			Kind:       types.DiagSkipped,
			Identifier: hdr.Type.String(),
			Offset:     hdr.Offset,
			Message:    fmt.Sprintf("skipped %d bytes", hdr.Length),
		})
	}
	return nil
}
