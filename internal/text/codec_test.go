package text

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		enc  Encoding
		want string
	}{
		{"latin1 ascii", []byte("Hello"), Latin1, "Hello"},
		{"latin1 high bytes", []byte{'C', 'a', 'f', 0xE9}, Latin1, "Café"},
		{"latin1 null padding", []byte{0, 0, 'a', 'b', 0, 0}, Latin1, "ab"},
		{"utf8", []byte("Björk"), UTF8, "Björk"},
		{"utf8 null padding", append([]byte("x\x00"), 0), UTF8, "x"},
		{"utf16be", []byte{0x00, 'H', 0x00, 'i'}, UTF16BE, "Hi"},
		{"utf16le", []byte{'H', 0x00, 'i', 0x00}, UTF16LE, "Hi"},
		{"utf16le trailing zero unit", []byte{'H', 0x00, 0x00, 0x00}, UTF16LE, "H"},
		{"utf16be surrogate pair", []byte{0xD8, 0x3C, 0xDF, 0xB5}, UTF16BE, "\U0001F3B5"},
		{"utf16be stray final byte", []byte{0x00, 'a', 0x00}, UTF16BE, "a"},
		{"utf16le stray zero after terminator", []byte{'A', 0x00, 'b', 0x00, 0x00}, UTF16LE, "Ab"},
		{"empty", nil, UTF16BE, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data, tt.enc)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Decode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		enc  Encoding
	}{
		{"invalid utf8", []byte{0xC3, 0x28}, UTF8},
		{"lone high surrogate", []byte{0xD8, 0x00, 0x00, 'a'}, UTF16BE},
		{"lone low surrogate", []byte{0x00, 0xDC}, UTF16LE},
		{"unrefined bom", []byte{0xFF, 0xFE, 'a', 0x00}, UTF16BOM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, tt.enc)
			var malformed *MalformedTextError
			if !errors.As(err, &malformed) {
				t.Fatalf("Decode() error = %v, want *MalformedTextError", err)
			}
		})
	}
}

func TestRefine(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Encoding
	}{
		{"little-endian bom", []byte{0xFF, 0xFE}, UTF16LE},
		{"big-endian bom", []byte{0xFE, 0xFF}, UTF16BE},
		{"no bom defaults big-endian", []byte{0x00, 'a'}, UTF16BE},
		{"short input", []byte{0xFF}, UTF16BE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Refine(tt.data); got != tt.want {
				t.Errorf("Refine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEncoding(t *testing.T) {
	for b := byte(0); b <= 3; b++ {
		if enc, err := ParseEncoding(b); err != nil || byte(enc) != b {
			t.Errorf("ParseEncoding(%d) = %v, %v", b, enc, err)
		}
	}

	_, err := ParseEncoding(4)
	var unknown *UnknownEncodingError
	if !errors.As(err, &unknown) {
		t.Fatalf("ParseEncoding(4) error = %v, want *UnknownEncodingError", err)
	}
	if unknown.Selector != 4 {
		t.Errorf("Selector = %d, want 4", unknown.Selector)
	}
}

func TestDecodeTerminated(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		enc      Encoding
		want     string
		consumed int
	}{
		{"latin1", []byte("image/jpeg\x00rest"), Latin1, "image/jpeg", 11},
		{"utf8 empty field", []byte{0x00, 'x'}, UTF8, "", 1},
		{"utf16be", []byte{0x00, 'a', 0x00, 'b', 0x00, 0x00, 0x00, 'c'}, UTF16BE, "ab", 6},
		// 0x61 0x00 0x00 0x62: the zero pair straddles two code units and is not a terminator.
		{"utf16le unaligned zeros", []byte{'a', 0x00, 0x00, 'b', 0x00, 0x00}, UTF16LE, "a戀", 6},
		{"no terminator", []byte("abc"), Latin1, "", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := DecodeTerminated(tt.data, tt.enc)
			if err != nil {
				t.Fatalf("DecodeTerminated() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			if n != tt.consumed {
				t.Errorf("consumed = %d, want %d", n, tt.consumed)
			}
		})
	}
}
