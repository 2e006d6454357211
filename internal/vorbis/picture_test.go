package vorbis

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"image"
	"image/png"
	"testing"

	"github.com/go-flac/flacpicture"

	"github.com/simonhull/audiotag/internal/types"
)

func pictureBody(picType uint32, mime, desc string, w, h uint32, data []byte) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, picType)
	binary.Write(buf, binary.BigEndian, uint32(len(mime)))
	buf.WriteString(mime)
	binary.Write(buf, binary.BigEndian, uint32(len(desc)))
	buf.WriteString(desc)
	binary.Write(buf, binary.BigEndian, w)
	binary.Write(buf, binary.BigEndian, h)
	binary.Write(buf, binary.BigEndian, uint32(24))
	binary.Write(buf, binary.BigEndian, uint32(0))
	binary.Write(buf, binary.BigEndian, uint32(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func TestDecodePicture(t *testing.T) {
	img := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	p, err := DecodePicture(pictureBody(3, "image/jpeg", "Cover", 600, 400, img))
	if err != nil {
		t.Fatalf("DecodePicture() error = %v", err)
	}

	if p.Type != types.PictureFrontCover {
		t.Errorf("Type = %v, want front cover", p.Type)
	}
	if p.MIMEType != "image/jpeg" || p.Description != "Cover" {
		t.Errorf("MIMEType = %q, Description = %q", p.MIMEType, p.Description)
	}
	if p.Width != 600 || p.Height != 400 || p.Depth != 24 || p.Colors != 0 {
		t.Errorf("dimensions = %dx%d depth %d colors %d", p.Width, p.Height, p.Depth, p.Colors)
	}
	if !bytes.Equal(p.Raw(), img) {
		t.Errorf("Raw() = %x, want %x", p.Raw(), img)
	}
	if p.Data[len(p.Data)-1] != 3 {
		t.Errorf("stored picture-type byte = %d, want 3", p.Data[len(p.Data)-1])
	}
	if p.Message() != "Cover" || p.Identifier() != "PICTURE" {
		t.Errorf("Message() = %q, Identifier() = %q", p.Message(), p.Identifier())
	}

	art := p.Artwork()
	if art.Width != 600 || art.Height != 400 || !bytes.Equal(art.Data, img) {
		t.Errorf("Artwork() = %+v", art)
	}
}

func TestDecodePicture_Errors(t *testing.T) {
	good := pictureBody(3, "image/png", "", 1, 1, []byte{1, 2, 3})

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated header", good[:20]},
		{"data shorter than declared", good[:len(good)-1]},
		{"type out of range", pictureBody(0x100, "image/png", "", 1, 1, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePicture(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDecodePicture_ForeignWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, image.NewRGBA(image.Rect(0, 0, 2, 3))); err != nil {
		t.Fatal(err)
	}

	pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front cover", buf.Bytes(), "image/png")
	if err != nil {
		t.Fatalf("NewFromImageData() error = %v", err)
	}
	block := pic.Marshal()

	p, err := DecodePicture(block.Data)
	if err != nil {
		t.Fatalf("DecodePicture() error = %v", err)
	}
	if p.Type != types.PictureFrontCover || p.MIMEType != "image/png" || p.Description != "Front cover" {
		t.Errorf("picture = %+v", p)
	}
	if p.Width != 2 || p.Height != 3 {
		t.Errorf("dimensions = %dx%d, want 2x3", p.Width, p.Height)
	}
	if !bytes.Equal(p.Image(), buf.Bytes()) {
		t.Error("image bytes differ")
	}
}

func TestComments_Artwork(t *testing.T) {
	img := []byte{0x89, 'P', 'N', 'G'}
	encoded := base64.StdEncoding.EncodeToString(pictureBody(4, "image/png", "Back", 10, 10, img))

	c := New()
	c.Add("TITLE", "x")
	c.Add("metadata_block_picture", encoded)
	c.Add(PictureKey, "not base64!")

	art := c.Artwork()
	if len(art) != 1 {
		t.Fatalf("Artwork() len = %d, want 1", len(art))
	}
	if art[0].Type != types.PictureBackCover || !bytes.Equal(art[0].Data, img) {
		t.Errorf("Artwork()[0] = %+v", art[0])
	}
}
