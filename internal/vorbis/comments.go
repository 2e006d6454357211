// Package vorbis provides shared Vorbis comment parsing utilities.
//
// Vorbis comments are used by FLAC, Ogg Vorbis and Opus. The body is
// identical in all three: a little-endian length-prefixed vendor string,
// then a little-endian count of length-prefixed UTF-8 "KEY=VALUE" entries.
package vorbis

import (
	"fmt"
	"strings"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/tags"
	"github.com/simonhull/audiotag/internal/text"
	"github.com/simonhull/audiotag/internal/types"
)

// PictureKey is the comment carrying a base64-encoded FLAC picture block.
const PictureKey = "METADATA_BLOCK_PICTURE"

// Comment is a single KEY=VALUE entry. Key is uppercased.
type Comment struct {
	Key   string
	Value string
}

// Identifier returns the uppercased key.
func (c Comment) Identifier() string {
	return c.Key
}

// Message returns the value.
func (c Comment) Message() string {
	return c.Value
}

// Raw returns nil; comment values are text.
func (c Comment) Raw() []byte {
	return nil
}

// Comments is a decoded comment body.
type Comments struct {
	Vendor string
	Fields *tags.Registry[Comment]
}

// New returns an empty comment set.
func New() *Comments {
	return &Comments{Fields: tags.New[Comment]()}
}

// Get returns every value stored under key, case-insensitively.
func (c *Comments) Get(key string) []string {
	return c.Fields.Get(key)
}

// Keys returns the keys in first-occurrence order.
func (c *Comments) Keys() []string {
	return c.Fields.Keys()
}

// Add inserts an entry, appending to any earlier values of the same key.
func (c *Comments) Add(key, value string) {
	c.Fields.Insert(Comment{Key: strings.ToUpper(key), Value: value})
}

// ParseEntry splits a comment on its first '='.
// ok is false when there is no '=' or the key is empty.
func ParseEntry(s string) (Comment, bool) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return Comment{}, false
	}
	return Comment{Key: strings.ToUpper(key), Value: value}, true
}

// Decode parses a comment body from the start of b and returns it with the
// number of bytes consumed. stage and base label diagnostics: base is the
// file offset of b[0].
//
// Entries without '=' are reported and skipped. A length that runs past
// the end of b is an error.
func Decode(b []byte, env *types.Env, stage string, base int64) (*Comments, int, error) {
	c := binary.NewCursor(b, "vorbis comment")
	out := New()

	vendorLen := binary.ReadLE[uint32](c, "vendor length")
	vendor := c.Bytes(int(vendorLen), "vendor string")
	if err := c.Err(); err != nil {
		return nil, 0, err
	}
	out.Vendor = decodeUTF8(vendor)

	count := binary.ReadLE[uint32](c, "comment count")
	if err := c.Err(); err != nil {
		return nil, 0, err
	}
	// Every entry needs at least its 4-byte length.
	if int64(count)*4 > int64(c.Len()) {
		return nil, 0, fmt.Errorf("comment count %d exceeds remaining %d bytes", count, c.Len())
	}

	for i := uint32(0); i < count; i++ {
		off := base + int64(c.Pos())
		n := binary.ReadLE[uint32](c, "comment length")
		raw := c.Bytes(int(n), fmt.Sprintf("comment %d", i))
		if err := c.Err(); err != nil {
			return nil, 0, err
		}

		entry, ok := ParseEntry(decodeUTF8(raw))
		if !ok {
			env.Emit(types.Diagnostic{
				Stage:   stage,
				Kind:    types.DiagMalformedComment,
				Offset:  off,
				Message: fmt.Sprintf("comment %d has no '=' separator", i),
			})
			continue
		}
		out.Fields.Insert(entry)
	}

	return out, c.Pos(), nil
}

// decodeUTF8 decodes b as UTF-8, falling back to Latin-1 for writers that
// ignore the encoding rule.
func decodeUTF8(b []byte) string {
	if s, err := text.Decode(b, text.UTF8); err == nil {
		return s
	}
	s, _ := text.Decode(b, text.Latin1)
	return s
}

// Artwork decodes every METADATA_BLOCK_PICTURE value. Undecodable values
// are skipped.
func (c *Comments) Artwork() []types.Artwork {
	var out []types.Artwork
	for _, value := range c.Fields.Get(PictureKey) {
		pic, err := DecodePictureBase64(value)
		if err != nil {
			continue
		}
		out = append(out, pic.Artwork())
	}
	return out
}
