// Package text decodes the string encodings found in tag payloads.
package text

import (
	"bytes"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is a text encoding. The first four values match the ID3v2
// encoding selector byte.
type Encoding byte

const (
	Latin1   Encoding = 0 // ISO-8859-1
	UTF16BOM Encoding = 1 // UTF-16, byte order given by a BOM
	UTF16BE  Encoding = 2
	UTF8     Encoding = 3

	// UTF16LE has no selector byte; it is only produced by Refine.
	UTF16LE Encoding = 0x80
)

func (e Encoding) String() string {
	switch e {
	case Latin1:
		return "ISO-8859-1"
	case UTF16BOM:
		return "UTF-16"
	case UTF16BE:
		return "UTF-16BE"
	case UTF16LE:
		return "UTF-16LE"
	case UTF8:
		return "UTF-8"
	default:
		return fmt.Sprintf("Encoding(%d)", byte(e))
	}
}

// Wide reports whether the encoding uses 16-bit code units.
func (e Encoding) Wide() bool {
	return e == UTF16BOM || e == UTF16BE || e == UTF16LE
}

// TerminatorSize returns the length of the string terminator.
func (e Encoding) TerminatorSize() int {
	if e.Wide() {
		return 2
	}
	return 1
}

// UnknownEncodingError is returned for a selector byte outside 0..3.
type UnknownEncodingError struct {
	Selector byte
}

func (e *UnknownEncodingError) Error() string {
	return fmt.Sprintf("unknown text encoding selector 0x%02x", e.Selector)
}

// MalformedTextError is returned when bytes are invalid under the claimed encoding.
type MalformedTextError struct {
	Encoding Encoding
	Reason   string
}

func (e *MalformedTextError) Error() string {
	return fmt.Sprintf("malformed %s text: %s", e.Encoding, e.Reason)
}

// ParseEncoding maps an ID3v2 selector byte to an Encoding.
func ParseEncoding(b byte) (Encoding, error) {
	if b > byte(UTF8) {
		return 0, &UnknownEncodingError{Selector: b}
	}
	return Encoding(b), nil
}

// Refine picks the byte order of a UTF-16 field from its first two bytes.
// FF FE selects little-endian; anything else is big-endian.
func Refine(b []byte) Encoding {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE {
		return UTF16LE
	}
	return UTF16BE
}

// HasBOM reports whether b starts with a UTF-16 byte-order mark.
func HasBOM(b []byte) bool {
	return len(b) >= 2 && ((b[0] == 0xFF && b[1] == 0xFE) || (b[0] == 0xFE && b[1] == 0xFF))
}

var (
	latin1Decoder  = charmap.ISO8859_1
	utf16BEDecoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	utf16LEDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

// Decode converts b to a string.
//
// Latin-1 and UTF-8 input has leading and trailing 0x00 bytes stripped.
// UTF-16 input has trailing zero code units dropped. UTF16BOM must be
// resolved with Refine before calling Decode.
func Decode(b []byte, enc Encoding) (string, error) {
	switch enc {
	case Latin1:
		return decodeWith(latin1Decoder, bytes.Trim(b, "\x00"))
	case UTF8:
		b = bytes.Trim(b, "\x00")
		if !utf8.Valid(b) {
			return "", &MalformedTextError{Encoding: enc, Reason: "invalid UTF-8 sequence"}
		}
		return string(b), nil
	case UTF16BE, UTF16LE:
		b, err := trimUTF16(b, enc)
		if err != nil {
			return "", err
		}
		if enc == UTF16LE {
			return decodeWith(utf16LEDecoder, b)
		}
		return decodeWith(utf16BEDecoder, b)
	case UTF16BOM:
		return "", &MalformedTextError{Encoding: enc, Reason: "byte order not resolved"}
	default:
		return "", &UnknownEncodingError{Selector: byte(enc)}
	}
}

func decodeWith(e encoding.Encoding, b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	out, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}

// trimUTF16 drops a stray final byte and trailing zero code units, and
// rejects unpaired surrogates.
func trimUTF16(b []byte, enc Encoding) ([]byte, error) {
	b = b[:len(b)&^1]
	for len(b) >= 2 && b[len(b)-2] == 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-2]
	}

	units := make([]uint16, len(b)/2)
	for i := range units {
		if enc == UTF16LE {
			units[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
		} else {
			units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
		}
	}
	for i := 0; i < len(units); i++ {
		u := units[i]
		if !utf16.IsSurrogate(rune(u)) {
			continue
		}
		if u < 0xDC00 && i+1 < len(units) && units[i+1] >= 0xDC00 && units[i+1] <= 0xDFFF {
			i++
			continue
		}
		return nil, &MalformedTextError{Encoding: enc, Reason: fmt.Sprintf("unpaired surrogate at unit %d", i)}
	}
	return b, nil
}

// DecodeTerminated decodes a string ending at the encoding's terminator.
//
// It returns the text and the number of bytes consumed, terminator
// included. When no terminator is found the text is empty and the whole
// input counts as consumed.
func DecodeTerminated(b []byte, enc Encoding) (string, int, error) {
	end := FindTerminator(b, enc)
	if end < 0 {
		return "", len(b), nil
	}
	s, err := Decode(b[:end], enc)
	if err != nil {
		return "", 0, err
	}
	return s, end + enc.TerminatorSize(), nil
}

// FindTerminator returns the index of the terminator, or -1.
// Wide encodings are scanned on code-unit boundaries.
func FindTerminator(b []byte, enc Encoding) int {
	if !enc.Wide() {
		return bytes.IndexByte(b, 0)
	}
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return i
		}
	}
	return -1
}
