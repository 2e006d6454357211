package binary

import (
	"encoding/binary"
	"fmt"
)

// Endianness represents byte order for multi-byte values.
type Endianness int

const (
	// BigEndian uses big-endian byte order.
	// Used by: ID3v2 headers, FLAC block bodies, FLAC pictures.
	BigEndian Endianness = iota

	// LittleEndian uses little-endian byte order.
	// Used by: Vorbis comment lengths, Ogg page headers.
	LittleEndian
)

// Cursor walks an in-memory payload front to back.
//
// Reads past the end record an error and return zero values; subsequent
// reads become no-ops. Check Err once after a group of reads instead of
// after every field.
type Cursor struct {
	buf  []byte
	pos  int
	what string
	err  error
}

// NewCursor creates a Cursor over buf. what names the structure in errors.
func NewCursor(buf []byte, what string) *Cursor {
	return &Cursor{buf: buf, what: what}
}

// Err returns the first error encountered, if any.
func (c *Cursor) Err() error {
	return c.err
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the number of unread bytes.
func (c *Cursor) Len() int {
	return len(c.buf) - c.pos
}

// Bytes returns the next n bytes and advances past them.
// The returned slice aliases the payload.
func (c *Cursor) Bytes(n int, field string) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || n > c.Len() {
		c.err = fmt.Errorf("%s: %s needs %d bytes at position %d, %d left",
			c.what, field, n, c.pos, c.Len())
		return nil
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b
}

// Peek returns up to n upcoming bytes without consuming them.
func (c *Cursor) Peek(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n > c.Len() {
		n = c.Len()
	}
	return c.buf[c.pos : c.pos+n]
}

// Rest consumes and returns every remaining byte.
func (c *Cursor) Rest() []byte {
	if c.err != nil {
		return nil
	}
	b := c.buf[c.pos:]
	c.pos = len(c.buf)
	return b
}

// Skip discards n bytes.
func (c *Cursor) Skip(n int, field string) {
	c.Bytes(n, field)
}

// Byte reads one byte.
func (c *Cursor) Byte(field string) byte {
	b := c.Bytes(1, field)
	if b == nil {
		return 0
	}
	return b[0]
}

// String reads n bytes as a raw string.
func (c *Cursor) String(n int, field string) string {
	return string(c.Bytes(n, field))
}

// ReadBE reads a big-endian value of type T.
//
// Example:
//
//	width := binary.ReadBE[uint32](c, "picture width")
func ReadBE[T uint8 | uint16 | uint32 | uint64](c *Cursor, field string) T {
	return ReadEndian[T](c, field, BigEndian)
}

// ReadLE reads a little-endian value of type T.
//
// Example:
//
//	length := binary.ReadLE[uint32](c, "vendor length")
func ReadLE[T uint8 | uint16 | uint32 | uint64](c *Cursor, field string) T {
	return ReadEndian[T](c, field, LittleEndian)
}

// ReadEndian reads a value of type T in the given byte order.
func ReadEndian[T uint8 | uint16 | uint32 | uint64](c *Cursor, field string, endian Endianness) T {
	var zero T
	var order binary.ByteOrder = binary.BigEndian
	if endian == LittleEndian {
		order = binary.LittleEndian
	}

	switch any(zero).(type) {
	case uint8:
		return T(c.Byte(field))
	case uint16:
		if b := c.Bytes(2, field); b != nil {
			return T(order.Uint16(b))
		}
	case uint32:
		if b := c.Bytes(4, field); b != nil {
			return T(order.Uint32(b))
		}
	case uint64:
		if b := c.Bytes(8, field); b != nil {
			return T(order.Uint64(b))
		}
	}
	return zero
}
