package id3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/text"
	"github.com/simonhull/audiotag/internal/types"
)

// frameBytes builds a frame header plus payload for the given version.
func frameBytes(version byte, id string, flags uint16, payload []byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString(id)
	if version == 4 {
		size := EncodeSynchsafe(uint32(len(payload)))
		buf.Write(size[:])
	} else {
		binary.Write(buf, binary.BigEndian, uint32(len(payload)))
	}
	binary.Write(buf, binary.BigEndian, flags)
	buf.Write(payload)
	return buf.Bytes()
}

// tagBytes wraps body in a protocol header and appends padding zero bytes.
func tagBytes(version byte, flags Flags, body []byte, padding int) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("ID3")
	buf.WriteByte(version)
	buf.WriteByte(0)
	buf.WriteByte(byte(flags))
	size := EncodeSynchsafe(uint32(len(body) + padding))
	buf.Write(size[:])
	buf.Write(body)
	buf.Write(make([]byte, padding))
	return buf.Bytes()
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// collector gathers diagnostics.
type collector struct {
	diags []types.Diagnostic
}

func (c *collector) env() *types.Env {
	return &types.Env{Report: func(d types.Diagnostic) { c.diags = append(c.diags, d) }}
}

func (c *collector) find(kind types.DiagnosticKind) (types.Diagnostic, bool) {
	for _, d := range c.diags {
		if d.Kind == kind {
			return d, true
		}
	}
	return types.Diagnostic{}, false
}

func newSource(data []byte) *binutil.Source {
	return binutil.NewSource(bytes.NewReader(data), int64(len(data)), "test.mp3")
}

func decodeBytes(t *testing.T, data []byte, env *types.Env) *Tag {
	t.Helper()
	tag, err := Decode(newSource(data), env)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return tag
}

func latin1Text(s string) []byte {
	return append([]byte{0x00}, s...)
}

func TestDecode_PaddingStopsLoop(t *testing.T) {
	body := frameBytes(4, "TIT2", 0, latin1Text("Song"))
	data := tagBytes(4, 0, body, 4)

	c := &collector{}
	tag := decodeBytes(t, data, c.env())

	if got := tag.Get("TIT2"); len(got) != 1 || got[0] != "Song" {
		t.Errorf("TIT2 = %v, want [Song]", got)
	}

	declared := int64(tag.Header.Size)
	consumed := int64(len(body))
	if tag.PaddingSize != declared-consumed {
		t.Errorf("PaddingSize = %d, want %d", tag.PaddingSize, declared-consumed)
	}
	if tag.PaddingSize != 4 {
		t.Errorf("PaddingSize = %d, want 4", tag.PaddingSize)
	}

	d, ok := c.find(types.DiagPadding)
	if !ok {
		t.Fatal("expected padding diagnostic")
	}
	if d.Offset != int64(HeaderSize+len(body)) {
		t.Errorf("padding offset = %d, want %d", d.Offset, HeaderSize+len(body))
	}
}

func TestDecode_PaddingLengths(t *testing.T) {
	body := frameBytes(4, "TIT2", 0, latin1Text("Song"))

	for _, padding := range []int{1, 4, 9, 10, 64} {
		data := tagBytes(4, 0, body, padding)

		c := &collector{}
		tag := decodeBytes(t, data, c.env())

		if tag.PaddingSize != int64(padding) {
			t.Errorf("padding %d: PaddingSize = %d", padding, tag.PaddingSize)
		}
		d, ok := c.find(types.DiagPadding)
		if !ok {
			t.Errorf("padding %d: no padding diagnostic in %v", padding, c.diags)
			continue
		}
		if d.Offset != int64(HeaderSize+len(body)) {
			t.Errorf("padding %d: offset = %d, want %d", padding, d.Offset, HeaderSize+len(body))
		}
	}
}

func TestDecode_ShortGarbageTail(t *testing.T) {
	body := concat(frameBytes(4, "TIT2", 0, latin1Text("Song")), []byte{'x', 'y', 'z'})
	data := tagBytes(4, 0, body, 0)

	c := &collector{}
	tag := decodeBytes(t, data, c.env())

	if got := tag.Get("TIT2"); len(got) != 1 || got[0] != "Song" {
		t.Errorf("TIT2 = %v, want [Song]", got)
	}
	if tag.PaddingSize != 3 {
		t.Errorf("PaddingSize = %d, want 3", tag.PaddingSize)
	}
	if _, ok := c.find(types.DiagPadding); ok {
		t.Error("non-zero tail reported as padding")
	}
	if _, ok := c.find(types.DiagBadFrame); !ok {
		t.Errorf("diagnostics = %v, want a bad frame entry", c.diags)
	}
}

func TestDecode_UnknownFrameSkipped(t *testing.T) {
	unknown := frameBytes(4, "ZZZZ", 0, bytes.Repeat([]byte{0xAB}, 12))
	title := frameBytes(4, "TIT2", 0, latin1Text("After"))
	data := tagBytes(4, 0, concat(unknown, title), 0)

	c := &collector{}
	tag := decodeBytes(t, data, c.env())

	if got := tag.Get("TIT2"); len(got) != 1 || got[0] != "After" {
		t.Errorf("TIT2 = %v, want [After]", got)
	}
	if tag.Frames.Has("ZZZZ") {
		t.Error("unknown frame should not be registered")
	}

	d, ok := c.find(types.DiagUnknownFrame)
	if !ok {
		t.Fatal("expected unknown frame diagnostic")
	}
	if d.Identifier != "ZZZZ" || d.Offset != HeaderSize {
		t.Errorf("diagnostic = %+v", d)
	}
}

func TestFrameLoop_UnknownFrameAdvancesByHeaderPlusSize(t *testing.T) {
	unknown := frameBytes(4, "ZZZZ", 0, make([]byte, 12))
	data := tagBytes(4, 0, unknown, 0)

	src := newSource(data)
	if err := src.Seek(HeaderSize); err != nil {
		t.Fatal(err)
	}
	hdr := &ProtocolHeader{Version: 4, Size: uint32(len(unknown))}
	end := int64(HeaderSize + len(unknown))

	padding, err := frameLoop(src, nil, hdr, end, newTag().Frames)
	if err != nil {
		t.Fatalf("frameLoop() error = %v", err)
	}
	if got := src.Offset() - HeaderSize; got != 22 {
		t.Errorf("cursor advanced %d bytes, want 22", got)
	}
	if padding != 0 {
		t.Errorf("padding = %d, want 0", padding)
	}
}

func TestDecode_NoTag(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"mpeg frame sync", append([]byte{0xFF, 0xFB, 0x90, 0x00}, make([]byte, 20)...)},
		{"too short", []byte("ID3")},
		{"id3v2.2", tagBytes(2, 0, frameBytes(3, "TT2\x00", 0, latin1Text("x")), 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := decodeBytes(t, tt.data, nil)
			if !tag.Empty() {
				t.Errorf("expected empty tag, got header %v", tag.Header)
			}
			if tag.Frames.Len() != 0 {
				t.Errorf("expected no frames, got %v", tag.Keys())
			}
		})
	}
}

func TestDecode_BadEncodingIsFatalByDefault(t *testing.T) {
	good := frameBytes(4, "TIT2", 0, latin1Text("Kept"))
	bad := frameBytes(4, "TALB", 0, []byte{0x07, 'x'})
	data := tagBytes(4, 0, concat(good, bad), 0)

	tag, err := Decode(newSource(data), nil)
	if err == nil {
		t.Fatal("expected error for encoding selector 7")
	}
	if tag != nil {
		t.Error("partial tag must not be returned with an error")
	}
	var unknown *text.UnknownEncodingError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want *text.UnknownEncodingError", err)
	}
	if unknown.Selector != 7 {
		t.Errorf("Selector = %d, want 7", unknown.Selector)
	}
}

func TestDecode_BadEncodingLenient(t *testing.T) {
	good := frameBytes(4, "TIT2", 0, latin1Text("Kept"))
	bad := frameBytes(4, "TALB", 0, []byte{0x07, 'x'})
	after := frameBytes(4, "TPE1", 0, latin1Text("Artist"))
	data := tagBytes(4, 0, concat(good, bad, after), 0)

	c := &collector{}
	env := c.env()
	env.LenientFrames = true
	tag := decodeBytes(t, data, env)

	if got := tag.Get("TIT2"); len(got) != 1 || got[0] != "Kept" {
		t.Errorf("TIT2 = %v, want [Kept]", got)
	}
	if got := tag.Get("TPE1"); len(got) != 1 || got[0] != "Artist" {
		t.Errorf("TPE1 = %v, want [Artist]", got)
	}
	if tag.Frames.Has("TALB") {
		t.Error("undecodable frame should be dropped")
	}
	if d, ok := c.find(types.DiagBadFrame); !ok || d.Identifier != "TALB" {
		t.Errorf("expected bad frame diagnostic for TALB, got %+v", c.diags)
	}
}

func TestDecode_V3PlainFrameSize(t *testing.T) {
	// 200 = 0xC8: the top bit of the low byte is set, so a synchsafe
	// reading would yield 72.
	payload := append([]byte{0x00}, bytes.Repeat([]byte{'a'}, 199)...)
	data := tagBytes(3, 0, frameBytes(3, "TIT2", 0, payload), 0)

	tag := decodeBytes(t, data, nil)

	got := tag.Get("TIT2")
	if len(got) != 1 || len(got[0]) != 199 {
		t.Fatalf("TIT2 length = %v, want one value of 199 bytes", len(got))
	}
	if tag.Header.Version != 3 {
		t.Errorf("Version = %d, want 3", tag.Header.Version)
	}
}

func TestDecode_V4SynchsafeFrameSize(t *testing.T) {
	payload := append([]byte{0x03}, bytes.Repeat([]byte{'b'}, 299)...)
	data := tagBytes(4, 0, frameBytes(4, "TALB", 0, payload), 10)

	tag := decodeBytes(t, data, nil)

	if got := tag.Get("TALB"); len(got) != 1 || len(got[0]) != 299 {
		t.Fatalf("TALB = %v", got)
	}
	if tag.PaddingSize != 10 {
		t.Errorf("PaddingSize = %d, want 10", tag.PaddingSize)
	}
}

func TestDecode_ExtendedHeader(t *testing.T) {
	tests := []struct {
		name        string
		version     byte
		ext         []byte
		wantSize    uint32
		wantPayload int
	}{
		{
			name:        "v4 size includes itself",
			version:     4,
			ext:         []byte{0x00, 0x00, 0x00, 0x06, 0x01, 0x00},
			wantSize:    6,
			wantPayload: 2,
		},
		{
			name:        "v3 size excludes itself",
			version:     3,
			ext:         []byte{0x00, 0x00, 0x00, 0x06, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			wantSize:    6,
			wantPayload: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := concat(tt.ext, frameBytes(tt.version, "TIT2", 0, latin1Text("Ext")))
			data := tagBytes(tt.version, FlagExtendedHeader, body, 0)

			tag := decodeBytes(t, data, nil)

			if tag.Extended == nil {
				t.Fatal("Extended header not decoded")
			}
			if tag.Extended.Size != tt.wantSize {
				t.Errorf("Extended.Size = %d, want %d", tag.Extended.Size, tt.wantSize)
			}
			if len(tag.Extended.Payload) != tt.wantPayload {
				t.Errorf("len(Extended.Payload) = %d, want %d", len(tag.Extended.Payload), tt.wantPayload)
			}
			if got := tag.Get("TIT2"); len(got) != 1 || got[0] != "Ext" {
				t.Errorf("TIT2 = %v, want [Ext]", got)
			}
		})
	}
}

func TestDecode_Footer(t *testing.T) {
	body := frameBytes(4, "TIT2", 0, latin1Text("Foot"))
	data := tagBytes(4, FlagFooter, body, 0)
	footer := append([]byte("3DI"), data[3:10]...)
	data = append(data, footer...)

	c := &collector{}
	tag := decodeBytes(t, data, c.env())

	if tag.Footer == nil {
		t.Fatal("Footer not decoded")
	}
	if tag.Footer.Marker != "3DI" || tag.Footer.Size != tag.Header.Size {
		t.Errorf("Footer = %+v, header size %d", tag.Footer, tag.Header.Size)
	}
	if _, ok := c.find(types.DiagFooter); !ok {
		t.Error("expected footer diagnostic")
	}
	if tag.End() != int64(len(data)) {
		t.Errorf("End() = %d, want %d", tag.End(), len(data))
	}
}

func TestTag_End(t *testing.T) {
	data := tagBytes(3, 0, frameBytes(3, "TIT2", 0, latin1Text("x")), 16)
	tag := decodeBytes(t, append(data, 0xFF, 0xFB), nil)
	if tag.End() != int64(len(data)) {
		t.Errorf("End() = %d, want %d", tag.End(), len(data))
	}

	if (&Tag{}).End() != 0 {
		t.Error("End() without a header should be 0")
	}
}

func TestDecode_TagOverrunsFile(t *testing.T) {
	data := tagBytes(4, 0, frameBytes(4, "TIT2", 0, latin1Text("x")), 0)
	data = data[:len(data)-2]

	_, err := Decode(newSource(data), nil)
	var corrupted *types.CorruptedFileError
	if !errors.As(err, &corrupted) {
		t.Fatalf("error = %v, want *types.CorruptedFileError", err)
	}
}

func TestDecode_FrameFlags(t *testing.T) {
	t.Run("unsynchronised with data length indicator", func(t *testing.T) {
		dli := EncodeSynchsafe(4)
		payload := concat(dli[:], []byte{0x00, 'a', 0xFF, 0x00, 'b'})
		data := tagBytes(4, 0, frameBytes(4, "TIT2", v4FlagUnsynchronised|v4FlagDataLengthIndicator, payload), 0)

		tag := decodeBytes(t, data, nil)
		if got := tag.Get("TIT2"); len(got) != 1 || got[0] != "aÿb" {
			t.Errorf("TIT2 = %q, want [aÿb]", got)
		}
	})

	t.Run("compressed kept raw", func(t *testing.T) {
		payload := []byte{0x78, 0x9C, 0x01, 0x02}
		data := tagBytes(4, 0, frameBytes(4, "TIT2", v4FlagCompression, payload), 0)

		tag := decodeBytes(t, data, nil)
		frames := tag.Frames.Values("TIT2")
		if len(frames) != 1 || frames[0].Kind != KindRarelyUsed {
			t.Fatalf("frames = %+v", frames)
		}
		if !bytes.Equal(frames[0].Raw(), payload) {
			t.Errorf("Raw = %x, want %x", frames[0].Raw(), payload)
		}
	})

	t.Run("empty frame skipped", func(t *testing.T) {
		data := tagBytes(4, 0, concat(frameBytes(4, "TIT2", 0, nil), frameBytes(4, "TPE1", 0, latin1Text("A"))), 0)

		c := &collector{}
		tag := decodeBytes(t, data, c.env())
		if tag.Frames.Has("TIT2") {
			t.Error("empty frame should not be registered")
		}
		if got := tag.Get("TPE1"); len(got) != 1 {
			t.Errorf("TPE1 = %v", got)
		}
	})
}

func TestDecode_RepeatedFramesAppend(t *testing.T) {
	body := concat(
		frameBytes(4, "TPE1", 0, latin1Text("A")),
		frameBytes(4, "TIT2", 0, latin1Text("Title")),
		frameBytes(4, "TPE1", 0, latin1Text("B")),
	)
	tag := decodeBytes(t, tagBytes(4, 0, body, 0), nil)

	if got := tag.Get("tpe1"); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("TPE1 = %v, want [A B]", got)
	}
	keys := tag.Keys()
	if len(keys) != 2 || keys[0] != "TPE1" || keys[1] != "TIT2" {
		t.Errorf("Keys() = %v, want [TPE1 TIT2]", keys)
	}
}
