package flac

import (
	"fmt"

	"github.com/simonhull/audiotag/internal/binary"
)

// BlockType is the 7-bit metadata block type.
type BlockType uint8

const (
	BlockStreamInfo    BlockType = 0
	BlockPadding       BlockType = 1
	BlockApplication   BlockType = 2
	BlockSeekTable     BlockType = 3
	BlockVorbisComment BlockType = 4
	BlockCueSheet      BlockType = 5
	BlockPicture       BlockType = 6

	// BlockInvalid is forbidden by the format; 7-126 are reserved.
	BlockInvalid BlockType = 127
)

var blockTypeNames = [...]string{
	BlockStreamInfo:    "STREAMINFO",
	BlockPadding:       "PADDING",
	BlockApplication:   "APPLICATION",
	BlockSeekTable:     "SEEKTABLE",
	BlockVorbisComment: "VORBIS_COMMENT",
	BlockCueSheet:      "CUESHEET",
	BlockPicture:       "PICTURE",
}

func (t BlockType) String() string {
	if int(t) < len(blockTypeNames) {
		return blockTypeNames[t]
	}
	if t == BlockInvalid {
		return "INVALID"
	}
	return fmt.Sprintf("RESERVED(%d)", uint8(t))
}

// BlockHeader is the 4-byte header preceding every metadata block.
type BlockHeader struct {
	IsLast bool
	Type   BlockType
	Length uint32 // 24 bits

	// Offset is the file offset of the header.
	Offset int64
}

// Application is an APPLICATION block.
type Application struct {
	ID   uint32
	Data []byte
}

// IDString returns the registered 4-character application ID.
func (a Application) IDString() string {
	return string([]byte{byte(a.ID >> 24), byte(a.ID >> 16), byte(a.ID >> 8), byte(a.ID)})
}

func decodeApplication(b []byte) (Application, error) {
	c := binary.NewCursor(b, "APPLICATION")
	app := Application{ID: binary.ReadBE[uint32](c, "application id")}
	app.Data = append([]byte(nil), c.Rest()...)
	return app, c.Err()
}

// PlaceholderSample marks a placeholder seek point.
const PlaceholderSample = 0xFFFFFFFFFFFFFFFF

// seekPointSize is the length of one SEEKTABLE record.
const seekPointSize = 18

// SeekPoint is one SEEKTABLE record. A placeholder carries only
// SampleNumber; its Offset and Samples are left zero.
type SeekPoint struct {
	SampleNumber uint64
	Offset       uint64
	Samples      uint16
}

// Placeholder reports whether the point is an unused placeholder.
func (p SeekPoint) Placeholder() bool {
	return p.SampleNumber == PlaceholderSample
}

// decodeSeekTable returns the seek points and the number of placeholders.
func decodeSeekTable(b []byte) ([]SeekPoint, int, error) {
	if len(b)%seekPointSize != 0 {
		return nil, 0, fmt.Errorf("SEEKTABLE length %d is not a multiple of %d", len(b), seekPointSize)
	}

	c := binary.NewCursor(b, "SEEKTABLE")
	points := make([]SeekPoint, 0, len(b)/seekPointSize)
	placeholders := 0
	for c.Len() > 0 {
		p := SeekPoint{SampleNumber: binary.ReadBE[uint64](c, "sample number")}
		if p.Placeholder() {
			c.Skip(10, "placeholder")
			placeholders++
		} else {
			p.Offset = binary.ReadBE[uint64](c, "stream offset")
			p.Samples = binary.ReadBE[uint16](c, "frame samples")
		}
		if err := c.Err(); err != nil {
			return nil, 0, err
		}
		points = append(points, p)
	}
	return points, placeholders, nil
}
