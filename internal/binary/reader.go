// Package binary provides bounds-checked byte access for the container decoders.
package binary

import (
	"fmt"
	"io"

	"github.com/simonhull/audiotag/internal/types"
)

// Source is a sequential reader with absolute seeking over a finite io.ReaderAt.
//
// Every read is bounds-checked against the declared size, so a truncated
// file surfaces as an *types.OutOfBoundsError rather than a silent short read.
type Source struct {
	r      io.ReaderAt
	path   string
	size   int64
	offset int64
}

// NewSource creates a Source positioned at offset 0.
func NewSource(r io.ReaderAt, size int64, path string) *Source {
	return &Source{
		r:    r,
		size: size,
		path: path,
	}
}

// Path returns the file path associated with this source.
func (s *Source) Path() string {
	return s.path
}

// Size returns the total number of bytes available.
func (s *Source) Size() int64 {
	return s.size
}

// Offset returns the current absolute position.
func (s *Source) Offset() int64 {
	return s.offset
}

// Remaining returns the number of bytes between the cursor and the end.
func (s *Source) Remaining() int64 {
	return s.size - s.offset
}

// ReadAt fills b from the absolute offset off without moving the cursor.
func (s *Source) ReadAt(b []byte, off int64, what string) error {
	if off < 0 || off+int64(len(b)) > s.size {
		return &types.OutOfBoundsError{
			Path:   s.path,
			What:   what,
			Offset: off,
			Length: len(b),
			Size:   s.size,
		}
	}

	n, err := s.r.ReadAt(b, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%s: read %s at offset %d: %w", s.path, what, off, err)
	}
	if n < len(b) {
		return fmt.Errorf("%s: short read for %s at offset %d: got %d bytes, expected %d",
			s.path, what, off, n, len(b))
	}

	return nil
}

// ReadFull reads exactly n bytes at the cursor and advances past them.
func (s *Source) ReadFull(n int, what string) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%s: negative length %d while reading %s", s.path, n, what)
	}
	buf := make([]byte, n)
	if err := s.ReadAt(buf, s.offset, what); err != nil {
		return nil, err
	}
	s.offset += int64(n)
	return buf, nil
}

// Seek moves the cursor to an absolute offset. Seeking to Size is allowed.
func (s *Source) Seek(off int64) error {
	if off < 0 || off > s.size {
		return &types.OutOfBoundsError{
			Path:   s.path,
			What:   "seek",
			Offset: off,
			Size:   s.size,
		}
	}
	s.offset = off
	return nil
}

// Skip advances the cursor by n bytes.
func (s *Source) Skip(n int64, what string) error {
	if n < 0 || s.offset+n > s.size {
		return &types.OutOfBoundsError{
			Path:   s.path,
			What:   what,
			Offset: s.offset,
			Length: int(n),
			Size:   s.size,
		}
	}
	s.offset += n
	return nil
}
