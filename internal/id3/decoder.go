// Package id3 decodes ID3v2.3/2.4 tags and the trailing ID3v1 block of
// MP3 files.
package id3

import (
	"bytes"
	"encoding/binary"
	"fmt"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/tags"
	"github.com/simonhull/audiotag/internal/types"
)

const stage = "id3v2"

// Frame format flags.
const (
	v3FlagCompression = 0x0080
	v3FlagEncryption  = 0x0040
	v3FlagGrouping    = 0x0020

	v4FlagGrouping            = 0x0040
	v4FlagCompression         = 0x0008
	v4FlagEncryption          = 0x0004
	v4FlagUnsynchronised      = 0x0002
	v4FlagDataLengthIndicator = 0x0001
)

// Tag is the decoded content of an MP3 file's tags.
type Tag struct {
	// Header is nil when the file has no ID3v2 tag.
	Header   *ProtocolHeader
	Extended *ExtendedHeader
	Footer   *ProtocolHeader

	Frames *tags.Registry[Frame]

	// PaddingSize is the number of bytes between the last frame and the
	// declared end of the tag.
	PaddingSize int64

	// V1 is set when ID3v1 reading is enabled and a block was found.
	V1 *V1Tag
}

func newTag() *Tag {
	return &Tag{Frames: tags.New[Frame]()}
}

// Empty reports whether no tag of either version was found.
func (t *Tag) Empty() bool {
	return t.Header == nil && t.V1 == nil
}

// Get returns the messages of every frame with the given ID.
func (t *Tag) Get(id string) []string {
	return t.Frames.Get(id)
}

// GetRaw returns the raw payloads of every frame with the given ID.
func (t *Tag) GetRaw(id string) [][]byte {
	return t.Frames.GetRaw(id)
}

// Keys returns the frame IDs in file order.
func (t *Tag) Keys() []string {
	return t.Frames.Keys()
}

// Artwork returns every APIC frame as artwork, in file order.
func (t *Tag) Artwork() []types.Artwork {
	var out []types.Artwork
	for _, f := range t.Frames.Values("APIC") {
		if art, ok := f.Artwork(); ok {
			out = append(out, art)
		}
	}
	return out
}

// End returns the offset of the first byte after the ID3v2 region,
// footer included. It is 0 when the file has no ID3v2 tag.
func (t *Tag) End() int64 {
	if t.Header == nil {
		return 0
	}
	end := int64(HeaderSize) + int64(t.Header.Size)
	if t.Footer != nil {
		end += HeaderSize
	}
	return end
}

// Decode reads the ID3v2 tag at the start of src and, when env asks for
// it, the ID3v1 block at its end.
func Decode(src *binutil.Source, env *types.Env) (*Tag, error) {
	tag := newTag()

	if err := decodeV2(src, env, tag); err != nil {
		return nil, err
	}

	if env != nil && env.ReadID3v1 {
		v1, err := ReadV1(src)
		if err != nil {
			return nil, err
		}
		if v1 != nil {
			tag.V1 = v1
			v1.register(tag.Frames)
		}
	}

	return tag, nil
}

// decodeV2 runs ReadProtocolHeader, ReadExtendedHeader, FrameLoop and
// ReadFooter in turn.
func decodeV2(src *binutil.Source, env *types.Env, tag *Tag) error {
	if src.Size() < HeaderSize {
		return nil
	}
	if err := src.Seek(0); err != nil {
		return err
	}
	buf, err := src.ReadFull(HeaderSize, "ID3v2 header")
	if err != nil {
		return err
	}

	hdr, ok := parseProtocolHeader(buf, "ID3")
	if !ok {
		if string(buf[0:3]) == "ID3" {
			env.Emit(types.Diagnostic{
				Stage:   stage,
				Kind:    types.DiagSkipped,
				Message: fmt.Sprintf("unsupported ID3v2 version 2.%d", buf[3]),
			})
		}
		return nil
	}

	end := int64(HeaderSize) + int64(hdr.Size)
	if end > src.Size() {
		return &types.CorruptedFileError{
			Path:   src.Path(),
			Offset: 6,
			Reason: fmt.Sprintf("tag size %d exceeds file size %d", hdr.Size, src.Size()),
		}
	}

	if hdr.Flags.ExtendedHeader() {
		ext, err := readExtendedHeader(src, hdr.Version)
		if err != nil {
			return err
		}
		tag.Extended = ext
	}

	tag.PaddingSize, err = frameLoop(src, env, hdr, end, tag.Frames)
	if err != nil {
		return err
	}

	if hdr.Flags.Footer() {
		footer, err := readFooter(src, env, end)
		if err != nil {
			return err
		}
		tag.Footer = footer
	}

	tag.Header = hdr
	return nil
}

func readExtendedHeader(src *binutil.Source, version byte) (*ExtendedHeader, error) {
	off := src.Offset()
	sizeBytes, err := src.ReadFull(4, "extended header size")
	if err != nil {
		return nil, err
	}

	ext := &ExtendedHeader{Version: version}
	copy(ext.SizeBytes[:], sizeBytes)
	ext.Size = frameSize(sizeBytes, version)

	n, err := ext.payloadLength()
	if err != nil {
		return nil, &types.CorruptedFileError{Path: src.Path(), Offset: off, Reason: err.Error()}
	}
	if ext.Payload, err = src.ReadFull(int(n), "extended header"); err != nil {
		return nil, err
	}
	return ext, nil
}

// frameLoop reads frames until the declared end, a padding sentinel or a
// malformed identifier. It returns the padding length.
func frameLoop(src *binutil.Source, env *types.Env, hdr *ProtocolHeader, end int64, frames *tags.Registry[Frame]) (int64, error) {
	for src.Offset()+HeaderSize <= end {
		off := src.Offset()
		fh, err := src.ReadFull(HeaderSize, "frame header")
		if err != nil {
			return 0, err
		}

		id := fh[0:4]
		kind := Classify(id)
		if kind == KindPadding {
			padding := end - off
			env.Emit(types.Diagnostic{
				Stage:   stage,
				Kind:    types.DiagPadding,
				Offset:  off,
				Message: fmt.Sprintf("%d bytes of padding", padding),
			})
			return padding, nil
		}
		if !validIdentifier(id) {
			env.Emit(types.Diagnostic{
				Stage:   stage,
				Kind:    types.DiagBadFrame,
				Offset:  off,
				Message: fmt.Sprintf("invalid frame identifier %q, treating the rest of the tag as padding", id),
			})
			return end - off, nil
		}

		frameID := string(id)
		size := int64(frameSize(fh[4:8], hdr.Version))
		flags := binary.BigEndian.Uint16(fh[8:10])

		if off+HeaderSize+size > end {
			return 0, &types.CorruptedFileError{
				Path:   src.Path(),
				Offset: off,
				Reason: fmt.Sprintf("frame %s size %d overruns tag end %d", frameID, size, end),
			}
		}
		if err := env.CheckPayload(src.Path(), "frame "+frameID, off, size); err != nil {
			return 0, err
		}

		if size == 0 {
			env.Emit(types.Diagnostic{
				Stage:      stage,
				Kind:       types.DiagBadFrame,
				Identifier: frameID,
				Offset:     off,
				Message:    "empty frame",
			})
			continue
		}

		if kind == KindUnknown {
			env.Emit(types.Diagnostic{
				Stage:      stage,
				Kind:       types.DiagUnknownFrame,
				Identifier: frameID,
				Offset:     off,
				Message:    fmt.Sprintf("skipped %d bytes", size),
			})
			if err := src.Skip(size, "frame "+frameID); err != nil {
				return 0, err
			}
			continue
		}

		payload, err := src.ReadFull(int(size), "frame "+frameID)
		if err != nil {
			return 0, err
		}

		frame, err := decodeFrame(kind, frameID, flags, hdr, payload)
		if err != nil {
			if env != nil && env.LenientFrames {
				env.Emit(types.Diagnostic{
					Stage:      stage,
					Kind:       types.DiagBadFrame,
					Identifier: frameID,
					Offset:     off,
					Message:    err.Error(),
				})
				continue
			}
			return 0, fmt.Errorf("frame %s at offset %d: %w", frameID, off, err)
		}
		frames.Insert(frame)
	}

	off := src.Offset()
	rest := end - off
	if rest <= 0 {
		return 0, nil
	}
	tail, err := src.ReadFull(int(rest), "padding")
	if err != nil {
		return 0, err
	}
	if bytes.Count(tail, []byte{0}) == len(tail) {
		env.Emit(types.Diagnostic{
			Stage:   stage,
			Kind:    types.DiagPadding,
			Offset:  off,
			Message: fmt.Sprintf("%d bytes of padding", rest),
		})
	} else {
		env.Emit(types.Diagnostic{
			Stage:   stage,
			Kind:    types.DiagBadFrame,
			Offset:  off,
			Message: fmt.Sprintf("%d trailing bytes too short for a frame header, treating them as padding", rest),
		})
	}
	return rest, nil
}

// decodeFrame undoes the frame-level transformations announced by flags,
// then decodes the payload.
func decodeFrame(kind FrameKind, id string, flags uint16, hdr *ProtocolHeader, payload []byte) (Frame, error) {
	var compressed, encrypted bool
	switch hdr.Version {
	case 3:
		compressed = flags&v3FlagCompression != 0
		encrypted = flags&v3FlagEncryption != 0
		if hdr.Flags.Unsynchronisation() {
			payload = resynchronise(payload)
		}
		if flags&v3FlagGrouping != 0 && len(payload) > 0 {
			payload = payload[1:]
		}
	case 4:
		compressed = flags&v4FlagCompression != 0
		encrypted = flags&v4FlagEncryption != 0
		if flags&v4FlagGrouping != 0 && len(payload) > 0 {
			payload = payload[1:]
		}
		if flags&v4FlagDataLengthIndicator != 0 && len(payload) >= 4 {
			payload = payload[4:]
		}
		if flags&v4FlagUnsynchronised != 0 || hdr.Flags.Unsynchronisation() {
			payload = resynchronise(payload)
		}
	}

	// Compressed or encrypted bodies are kept verbatim.
	if compressed || encrypted {
		kind = KindRarelyUsed
	}

	frame, err := decodePayload(kind, id, payload)
	if err != nil {
		return Frame{}, err
	}
	frame.Flags = flags
	return frame, nil
}

func readFooter(src *binutil.Source, env *types.Env, end int64) (*ProtocolHeader, error) {
	if err := src.Seek(end); err != nil {
		return nil, err
	}
	buf, err := src.ReadFull(HeaderSize, "ID3v2 footer")
	if err != nil {
		return nil, err
	}
	footer, ok := parseProtocolHeader(buf, "3DI")
	if !ok {
		env.Emit(types.Diagnostic{
			Stage:   stage,
			Kind:    types.DiagBadFrame,
			Offset:  end,
			Message: "footer flag set but no footer found",
		})
		return nil, nil
	}
	env.Emit(types.Diagnostic{
		Stage:   stage,
		Kind:    types.DiagFooter,
		Offset:  end,
		Message: footer.String(),
	})
	return footer, nil
}
