package vorbis

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// Picture is a FLAC PICTURE block. Ogg streams embed the same structure,
// base64-encoded, in a METADATA_BLOCK_PICTURE comment.
//
// Layout (all integers big-endian uint32):
//   - picture type
//   - MIME type length, MIME type (ASCII)
//   - description length, description (UTF-8)
//   - width, height, color depth, indexed color count
//   - data length, image data
type Picture struct {
	Type        types.PictureType
	MIMEType    string
	Description string
	Width       uint32
	Height      uint32
	Depth       uint32
	Colors      uint32

	// DataLength is the declared image length.
	DataLength uint32

	// Data is the image followed by the picture-type byte.
	Data []byte
}

// Identifier returns "PICTURE".
func (p *Picture) Identifier() string {
	return "PICTURE"
}

// Message returns the description.
func (p *Picture) Message() string {
	return p.Description
}

// Raw returns the image bytes.
func (p *Picture) Raw() []byte {
	return p.Image()
}

// Image returns the image without the trailing picture-type byte.
func (p *Picture) Image() []byte {
	if len(p.Data) == 0 {
		return nil
	}
	return p.Data[:len(p.Data)-1]
}

// Artwork converts the picture.
func (p *Picture) Artwork() types.Artwork {
	return types.Artwork{
		Type:        p.Type,
		MIMEType:    p.MIMEType,
		Description: p.Description,
		Data:        p.Image(),
		Width:       int(p.Width),
		Height:      int(p.Height),
	}
}

// DecodePicture parses a picture block body.
func DecodePicture(b []byte) (*Picture, error) {
	c := binary.NewCursor(b, "picture")
	p := &Picture{}

	picType := binary.ReadBE[uint32](c, "picture type")
	if picType > 0xFF {
		return nil, fmt.Errorf("picture type %d out of range", picType)
	}
	p.Type = types.PictureType(picType)

	mimeLen := binary.ReadBE[uint32](c, "MIME length")
	mime := c.Bytes(int(mimeLen), "MIME type")
	descLen := binary.ReadBE[uint32](c, "description length")
	desc := c.Bytes(int(descLen), "description")
	p.Width = binary.ReadBE[uint32](c, "width")
	p.Height = binary.ReadBE[uint32](c, "height")
	p.Depth = binary.ReadBE[uint32](c, "color depth")
	p.Colors = binary.ReadBE[uint32](c, "indexed colors")
	p.DataLength = binary.ReadBE[uint32](c, "data length")
	if err := c.Err(); err != nil {
		return nil, err
	}

	if int64(p.DataLength) > int64(c.Len()) {
		return nil, fmt.Errorf("picture declares %d data bytes, %d present", p.DataLength, c.Len())
	}
	img := c.Bytes(int(p.DataLength), "image data")

	p.MIMEType = string(mime)
	if !utf8.Valid(mime) {
		p.MIMEType = decodeUTF8(mime)
	}
	p.Description = decodeUTF8(desc)

	p.Data = make([]byte, 0, len(img)+1)
	p.Data = append(p.Data, img...)
	p.Data = append(p.Data, byte(picType))
	return p, nil
}

// DecodePictureBase64 decodes a METADATA_BLOCK_PICTURE comment value.
func DecodePictureBase64(s string) (*Picture, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	return DecodePicture(b)
}
