package audiotag_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
)

// writeFile stores data under name in a per-test directory.
func writeFile(tb testing.TB, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatal(err)
	}
	return path
}

// mpegFrames returns n MPEG-1 Layer III frames at 128 kbps, 44100 Hz.
func mpegFrames(n int) []byte {
	const length = 417
	buf := &bytes.Buffer{}
	for range n {
		frame := make([]byte, length)
		copy(frame, []byte{0xFF, 0xFB, 0x90, 0x00})
		buf.Write(frame)
	}
	return buf.Bytes()
}

// createMP3 writes an ID3v2.4 tag with title, artist and a front cover,
// followed by eight audio frames.
func createMP3(tb testing.TB) []byte {
	tb.Helper()
	tag := id3v2.NewEmptyTag()
	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle("Song")
	tag.SetArtist("Band")
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     []byte{0xFF, 0xD8, 0xFF, 0xD9},
	})

	buf := &bytes.Buffer{}
	if _, err := tag.WriteTo(buf); err != nil {
		tb.Fatal(err)
	}
	buf.Write(mpegFrames(8))
	return buf.Bytes()
}

// v1Block builds an ID3v1 block with the given title.
func v1Block(title string) []byte {
	b := make([]byte, 128)
	copy(b, "TAG")
	copy(b[3:], title)
	b[127] = 255
	return b
}

// streamInfoBody packs a STREAMINFO block body.
func streamInfoBody(sampleRate, channels, bitsPerSample, totalSamples uint64) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, uint16(4096))
	binary.Write(buf, binary.BigEndian, uint16(4096))
	buf.Write(make([]byte, 6))
	packed := sampleRate<<44 | (channels-1)<<41 | (bitsPerSample-1)<<36 | totalSamples
	binary.Write(buf, binary.BigEndian, packed)
	buf.Write(make([]byte, 16))
	return buf.Bytes()
}

// createFLAC writes ten seconds of 44.1 kHz stereo with a comment block and
// one PICTURE block per image.
func createFLAC(tb testing.TB, images ...*flacpicture.MetadataBlockPicture) []byte {
	tb.Helper()
	vc := flacvorbis.New()
	for _, kv := range [][2]string{
		{flacvorbis.FIELD_TITLE, "Lossless"},
		{flacvorbis.FIELD_ARTIST, "Band"},
		{"CHAPTER001", "00:00:00.000"},
		{"CHAPTER001NAME", "Opening"},
	} {
		if err := vc.Add(kv[0], kv[1]); err != nil {
			tb.Fatal(err)
		}
	}
	vcBlock := vc.Marshal()

	file := &goflac.File{
		Meta: []*goflac.MetaDataBlock{
			{Type: goflac.StreamInfo, Data: streamInfoBody(44100, 2, 16, 441000)},
			&vcBlock,
		},
		Frames: []byte{0xFF, 0xF8},
	}
	for _, img := range images {
		block := img.Marshal()
		file.Meta = append(file.Meta, &block)
	}
	return file.Marshal()
}

func picture(mime string, data []byte) *flacpicture.MetadataBlockPicture {
	return &flacpicture.MetadataBlockPicture{
		PictureType: flacpicture.PictureTypeFrontCover,
		MIME:        mime,
		Description: "cover",
		Width:       1,
		Height:      1,
		ColorDepth:  24,
		ImageData:   data,
	}
}

// oggPage renders one page holding whole packets.
func oggPage(headerType byte, granule int64, sequence uint32, packets ...[]byte) []byte {
	var segs, data []byte
	for _, p := range packets {
		n := len(p)
		for n >= 255 {
			segs = append(segs, 255)
			n -= 255
		}
		segs = append(segs, byte(n))
		data = append(data, p...)
	}

	buf := &bytes.Buffer{}
	buf.WriteString("OggS")
	buf.WriteByte(0)
	buf.WriteByte(headerType)
	binary.Write(buf, binary.LittleEndian, granule)
	binary.Write(buf, binary.LittleEndian, uint32(777))
	binary.Write(buf, binary.LittleEndian, sequence)
	binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.WriteByte(byte(len(segs)))
	buf.Write(segs)
	buf.Write(data)
	return buf.Bytes()
}

// createVorbis writes a Vorbis stream of two seconds at 44.1 kHz. Without
// framing the comment packet lacks its trailing framing bit.
func createVorbis(framing bool, comments ...string) []byte {
	ident := &bytes.Buffer{}
	ident.WriteString("\x01vorbis")
	binary.Write(ident, binary.LittleEndian, uint32(0))
	ident.WriteByte(2)
	binary.Write(ident, binary.LittleEndian, uint32(44100))
	binary.Write(ident, binary.LittleEndian, int32(0))
	binary.Write(ident, binary.LittleEndian, int32(160000))
	binary.Write(ident, binary.LittleEndian, int32(0))
	ident.WriteByte(0xB8)
	ident.WriteByte(0x01)

	comment := &bytes.Buffer{}
	comment.WriteString("\x03vorbis")
	binary.Write(comment, binary.LittleEndian, uint32(len("test")))
	comment.WriteString("test")
	binary.Write(comment, binary.LittleEndian, uint32(len(comments)))
	for _, c := range comments {
		binary.Write(comment, binary.LittleEndian, uint32(len(c)))
		comment.WriteString(c)
	}
	if framing {
		comment.WriteByte(0x01)
	}

	setup := []byte("\x05vorbis\x42\x43\x56")

	var file []byte
	file = append(file, oggPage(0x02, 0, 0, ident.Bytes())...)
	file = append(file, oggPage(0x00, 0, 1, comment.Bytes(), setup)...)
	file = append(file, oggPage(0x04, 88200, 2, make([]byte, 64))...)
	return file
}
