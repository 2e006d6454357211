package ogg

import (
	"fmt"
	"strings"
	"time"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
	"github.com/simonhull/audiotag/internal/vorbis"
)

const stage = "ogg"

// Stream is the decoded header of the first logical stream in an Ogg file.
type Stream struct {
	// Found is false when the file does not start with an Ogg page.
	Found bool

	Codec  Codec
	Serial uint32

	Identification *Identification // Vorbis only
	OpusHead       *OpusHead       // Opus only
	Comments       *vorbis.Comments

	// HeaderPages counts the pages read to reach the end of the headers.
	HeaderPages int

	// LastGranule is the granule position of the final page, -1 when it
	// could not be found.
	LastGranule int64

	// Size is the file size, used for bitrate estimation.
	Size int64
}

// Empty reports whether the file was not an Ogg stream.
func (s *Stream) Empty() bool {
	return !s.Found
}

// Get returns the comment values under key, case-insensitively.
func (s *Stream) Get(key string) []string {
	if s.Comments == nil {
		return nil
	}
	return s.Comments.Get(key)
}

// GetRaw returns the decoded image of each METADATA_BLOCK_PICTURE value.
// Other keys carry text only and return nil.
func (s *Stream) GetRaw(key string) [][]byte {
	if s.Comments == nil {
		return nil
	}
	if !strings.EqualFold(key, vorbis.PictureKey) {
		return s.Comments.Fields.GetRaw(key)
	}
	var out [][]byte
	for _, a := range s.Comments.Artwork() {
		out = append(out, a.Data)
	}
	return out
}

// Keys returns the comment keys in first-occurrence order.
func (s *Stream) Keys() []string {
	if s.Comments == nil {
		return nil
	}
	return s.Comments.Keys()
}

// Artwork decodes the METADATA_BLOCK_PICTURE comments.
func (s *Stream) Artwork() []types.Artwork {
	if s.Comments == nil {
		return nil
	}
	return s.Comments.Artwork()
}

// Duration is derived from the last granule position. Opus granules count
// 48kHz samples including the pre-skip.
func (s *Stream) Duration() time.Duration {
	if s.LastGranule < 0 {
		return 0
	}
	switch {
	case s.Identification != nil:
		return types.DurationFromSamples(uint64(s.LastGranule), int(s.Identification.SampleRate))
	case s.OpusHead != nil:
		samples := s.LastGranule - int64(s.OpusHead.PreSkip)
		if samples < 0 {
			return 0
		}
		return types.DurationFromSamples(uint64(samples), opusRate)
	}
	return 0
}

// Audio returns the stream properties from the identification header.
func (s *Stream) Audio() types.AudioInfo {
	info := types.AudioInfo{Codec: s.Codec.String(), Duration: s.Duration()}
	switch {
	case s.Identification != nil:
		info.SampleRate = int(s.Identification.SampleRate)
		info.Channels = int(s.Identification.Channels)
		if s.Identification.BitrateNominal > 0 {
			info.Bitrate = int(s.Identification.BitrateNominal)
		}
	case s.OpusHead != nil:
		info.SampleRate = opusRate
		info.Channels = int(s.OpusHead.Channels)
		info.Bitrate = estimateBitrate(s.Size, info.Duration)
	}
	return info
}

// Chapters returns the CHAPTERxxx comments as chapters.
func (s *Stream) Chapters() []types.Chapter {
	if s.Comments == nil {
		return nil
	}
	return s.Comments.Chapters(s.Duration())
}

// estimateBitrate estimates the bitrate for streams without a nominal
// bitrate field (Opus) from the file size and duration, less about 5KB
// for headers and tags.
func estimateBitrate(fileSize int64, duration time.Duration) int {
	seconds := duration.Seconds()
	if seconds <= 0 {
		return 0
	}
	audioSize := fileSize - 5000
	if audioSize < 0 {
		audioSize = fileSize
	}
	return int(float64(audioSize) * 8 / seconds)
}

// Decoder decodes Ogg Vorbis and Ogg Opus streams. It is registered for
// types.FormatOgg and types.FormatOpus.
type Decoder struct{}

func init() {
	registry.Register(types.FormatOgg, Decoder{})
	registry.Register(types.FormatOpus, Decoder{})
}

// Decode implements registry.Decoder.
func (Decoder) Decode(src *binutil.Source, env *types.Env) (registry.Result, error) {
	return Decode(src, env)
}

// Decode reads pages until the header packets of the first logical stream
// are complete: identification, comment and (Vorbis) setup. Pages of other
// multiplexed streams are skipped.
func Decode(src *binutil.Source, env *types.Env) (*Stream, error) {
	s := &Stream{LastGranule: -1, Size: src.Size()}
	if src.Size() < int64(len(CapturePattern)) {
		return s, nil
	}
	magic := make([]byte, len(CapturePattern))
	if err := src.ReadAt(magic, 0, "Ogg capture pattern"); err != nil {
		return nil, err
	}
	if string(magic) != CapturePattern {
		return s, nil
	}
	s.Found = true
	if err := src.Seek(0); err != nil {
		return nil, err
	}

	r := &Reassembler{}
	if env != nil && env.MaxPayload > 0 {
		r.MaxPacket = int(env.MaxPayload)
	}

	var packets int
	want := 3
	for packets < want {
		if src.Remaining() == 0 {
			return nil, &types.CorruptedFileError{
				Path:   src.Path(),
				Offset: src.Offset(),
				Reason: fmt.Sprintf("stream ends after %d of %d header packets", packets, want),
			}
		}

		page, err := readPage(src)
		if err != nil {
			return nil, err
		}
		if !r.Follows(page) {
			env.Emit(types.Diagnostic{
				Stage:      stage,
				Kind:       types.DiagSkipped,
				Identifier: fmt.Sprintf("serial %08x", page.SerialNumber),
				Offset:     page.Offset,
				Message:    "page of another logical stream",
			})
			continue
		}
		s.HeaderPages++

		done, err := r.Push(page)
		if err != nil {
			return nil, &types.CorruptedFileError{Path: src.Path(), Offset: page.Offset, Reason: err.Error()}
		}
		for _, pkt := range done {
			if packets == want {
				break
			}
			if err := s.headerPacket(packets, pkt, src.Path(), env); err != nil {
				return nil, err
			}
			packets++
			if s.Codec == CodecOpus {
				want = 2
			}
		}

		if page.EOS() && packets < want {
			return nil, &types.CorruptedFileError{
				Path:   src.Path(),
				Offset: page.Offset,
				Reason: fmt.Sprintf("end of stream after %d of %d header packets", packets, want),
			}
		}
	}
	s.Serial, _ = r.Serial()

	granule, ok, err := findLastGranule(src, s.Serial)
	if err != nil {
		return nil, err
	}
	if ok {
		s.LastGranule = granule
	}
	return s, nil
}

// headerPacket decodes the n-th header packet.
func (s *Stream) headerPacket(n int, pkt Packet, path string, env *types.Env) error {
	switch n {
	case 0:
		s.Codec = detectCodec(pkt.Data)
		var err error
		switch s.Codec {
		case CodecVorbis:
			s.Identification, err = decodeIdentification(pkt.Data)
		case CodecOpus:
			s.OpusHead, err = decodeOpusHead(pkt.Data)
		default:
			return &types.UnsupportedFormatError{Path: path, Reason: "Ogg stream carries neither Vorbis nor Opus"}
		}
		if err != nil {
			return &types.CorruptedFileError{Path: path, Offset: pkt.Offset, Reason: err.Error()}
		}

	case 1:
		comments, err := decodeCommentPacket(s.Codec, pkt, env)
		if err != nil {
			if env == nil || !env.LenientFrames {
				return &types.CorruptedFileError{Path: path, Offset: pkt.Offset, Reason: "comment header: " + err.Error()}
			}
			env.Emit(types.Diagnostic{
				Stage:      stage,
				Kind:       types.DiagBadFrame,
				Identifier: "comment",
				Offset:     pkt.Offset,
				Message:    err.Error(),
			})
			comments = vorbis.New()
		}
		s.Comments = comments

	case 2:
		if len(pkt.Data) < 7 || pkt.Data[0] != packetSetup || string(pkt.Data[1:7]) != vorbisMagic {
			return &types.CorruptedFileError{Path: path, Offset: pkt.Offset, Reason: "third packet is not a Vorbis setup header"}
		}
		env.Emit(types.Diagnostic{
			Stage:      stage,
			Kind:       types.DiagSkipped,
			Identifier: "setup",
			Offset:     pkt.Offset,
			Message:    fmt.Sprintf("skipped %d-byte setup header", len(pkt.Data)),
		})
	}
	return nil
}
