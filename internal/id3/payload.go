package id3

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/text"
	"github.com/simonhull/audiotag/internal/types"
)

// decodePayload decodes a frame body according to kind.
func decodePayload(kind FrameKind, id string, payload []byte) (Frame, error) {
	f := Frame{Kind: kind, ID: id}
	c := binary.NewCursor(payload, id+" frame")

	var err error
	switch kind {
	case KindText:
		err = f.decodeText(c)
	case KindUserText:
		err = f.decodeUserText(c)
	case KindURL:
		f.Text, err = text.Decode(c.Rest(), text.Latin1)
	case KindUserURL:
		err = f.decodeUserURL(c)
	case KindComment, KindUnsyncedLyrics:
		err = f.decodeComment(c)
	case KindSyncedLyrics:
		err = f.decodeSyncedLyrics(c)
	case KindPicture:
		err = f.decodePicture(c)
	default:
		f.Data = bytes.Clone(payload)
	}
	if err != nil {
		return Frame{}, err
	}
	return f, c.Err()
}

// readEncoding consumes the selector byte.
func (f *Frame) readEncoding(c *binary.Cursor) (text.Encoding, error) {
	sel := c.Byte("encoding")
	if err := c.Err(); err != nil {
		return 0, err
	}
	enc, err := text.ParseEncoding(sel)
	if err != nil {
		return 0, err
	}
	f.Encoding = enc
	return enc, nil
}

// refine resolves UTF16BOM against the next two bytes, consuming the BOM
// when present. Other encodings pass through.
func refine(c *binary.Cursor, enc text.Encoding) text.Encoding {
	if enc != text.UTF16BOM {
		return enc
	}
	head := c.Peek(2)
	if text.HasBOM(head) {
		c.Skip(2, "byte order mark")
	}
	return text.Refine(head)
}

// refineAgain handles writers that prefix each sub-field with its own BOM.
func refineAgain(c *binary.Cursor, declared, current text.Encoding) text.Encoding {
	if declared != text.UTF16BOM || !text.HasBOM(c.Peek(2)) {
		return current
	}
	return refine(c, declared)
}

// terminated decodes a terminated field and advances past it.
func terminated(c *binary.Cursor, enc text.Encoding) (string, error) {
	if c.Err() != nil {
		return "", c.Err()
	}
	s, n, err := text.DecodeTerminated(c.Peek(c.Len()), enc)
	if err != nil {
		return "", err
	}
	c.Skip(n, "terminated string")
	return s, nil
}

// toEnd decodes every remaining byte.
func toEnd(c *binary.Cursor, enc text.Encoding) (string, error) {
	if c.Err() != nil {
		return "", c.Err()
	}
	return text.Decode(c.Rest(), enc)
}

// cleanMulti turns the null separators of v2.4 multi-value text into "/"
// and drops the BOMs that prefix each value.
func cleanMulti(s string) string {
	if !strings.ContainsAny(s, "\x00\ufeff") {
		return s
	}
	s = strings.ReplaceAll(s, "\ufeff", "")
	parts := strings.Split(s, "\x00")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

func (f *Frame) decodeText(c *binary.Cursor) error {
	enc, err := f.readEncoding(c)
	if err != nil {
		return err
	}
	s, err := toEnd(c, refine(c, enc))
	if err != nil {
		return err
	}
	f.Text = cleanMulti(s)
	return nil
}

func (f *Frame) decodeUserText(c *binary.Cursor) error {
	enc, err := f.readEncoding(c)
	if err != nil {
		return err
	}
	cur := refine(c, enc)
	if f.Description, err = terminated(c, cur); err != nil {
		return err
	}
	s, err := toEnd(c, refineAgain(c, enc, cur))
	if err != nil {
		return err
	}
	f.Text = cleanMulti(s)
	return nil
}

func (f *Frame) decodeUserURL(c *binary.Cursor) error {
	enc, err := f.readEncoding(c)
	if err != nil {
		return err
	}
	if f.Description, err = terminated(c, refine(c, enc)); err != nil {
		return err
	}
	f.Text, err = toEnd(c, text.Latin1)
	return err
}

func (f *Frame) decodeComment(c *binary.Cursor) error {
	enc, err := f.readEncoding(c)
	if err != nil {
		return err
	}
	f.Language = c.String(3, "language")
	cur := refine(c, enc)
	if f.Description, err = terminated(c, cur); err != nil {
		return err
	}
	f.Text, err = toEnd(c, refineAgain(c, enc, cur))
	return err
}

func (f *Frame) decodeSyncedLyrics(c *binary.Cursor) error {
	enc, err := f.readEncoding(c)
	if err != nil {
		return err
	}
	f.Language = c.String(3, "language")
	f.TimestampFormat = c.Byte("timestamp format")
	f.ContentType = c.Byte("content type")
	if f.Description, err = terminated(c, refine(c, enc)); err != nil {
		return err
	}
	f.Data = bytes.Clone(c.Rest())
	return nil
}

func (f *Frame) decodePicture(c *binary.Cursor) error {
	enc, err := f.readEncoding(c)
	if err != nil {
		return err
	}

	// The MIME type is always single-byte terminated, whatever the selector.
	raw := c.Peek(c.Len())
	if end := bytes.IndexByte(raw, 0); end >= 0 {
		f.MIMEType = mimeString(raw[:end])
		c.Skip(end+1, "MIME type")
	} else {
		c.Rest()
	}

	picType := c.Byte("picture type")
	f.PictureType = types.PictureType(picType)
	if f.Description, err = terminated(c, refine(c, enc)); err != nil {
		return err
	}

	img := c.Rest()
	f.Data = make([]byte, 0, len(img)+1)
	f.Data = append(f.Data, img...)
	f.Data = append(f.Data, picType)
	return nil
}

func mimeString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, _ := text.Decode(b, text.Latin1)
	return s
}
