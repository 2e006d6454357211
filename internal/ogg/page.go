// Package ogg reads the header packets of Ogg Vorbis and Ogg Opus streams.
package ogg

import (
	"bytes"
	"fmt"

	"github.com/simonhull/audiotag/internal/binary"
)

// CapturePattern starts every page.
const CapturePattern = "OggS"

// pageHeaderSize is the fixed part of a page header, before the segment table.
const pageHeaderSize = 27

// Header type flags.
const (
	FlagContinued = 0x01 // first packet continues one from the previous page
	FlagBOS       = 0x02 // beginning of stream
	FlagEOS       = 0x04 // end of stream
)

// Page represents an Ogg page.
//
// An Ogg page is the fundamental unit of the Ogg container format.
// Each page contains a header, a lacing table and the packet bytes.
type Page struct {
	Version         byte
	HeaderType      byte
	GranulePosition int64 // codec-defined position, -1 when no packet ends on the page
	SerialNumber    uint32
	SequenceNumber  uint32
	Checksum        uint32

	// Segments is the lacing table. Each value below 255 ends a packet.
	Segments []byte
	Data     []byte

	// Offset is the file offset of the capture pattern.
	Offset int64
}

// Continued reports whether the page opens with the tail of a packet.
func (p *Page) Continued() bool { return p.HeaderType&FlagContinued != 0 }

// BOS reports whether the page is the first of its logical stream.
func (p *Page) BOS() bool { return p.HeaderType&FlagBOS != 0 }

// EOS reports whether the page is the last of its logical stream.
func (p *Page) EOS() bool { return p.HeaderType&FlagEOS != 0 }

// DataOffset returns the file offset of the first packet byte.
func (p *Page) DataOffset() int64 {
	return p.Offset + pageHeaderSize + int64(len(p.Segments))
}

// readPage reads the page at the source cursor and leaves the cursor on
// the next page.
//
//	"OggS"(4) version(1) header_type(1) granule(8) serial(4)
//	sequence(4) checksum(4) segment_count(1) segment_table(n)
func readPage(src *binary.Source) (*Page, error) {
	off := src.Offset()
	hb, err := src.ReadFull(pageHeaderSize, "Ogg page header")
	if err != nil {
		return nil, err
	}

	c := binary.NewCursor(hb, "Ogg page header")
	if magic := c.String(4, "capture pattern"); magic != CapturePattern {
		return nil, fmt.Errorf("invalid Ogg page at offset %d: capture pattern %q", off, magic)
	}
	p := &Page{
		Offset:          off,
		Version:         c.Byte("version"),
		HeaderType:      c.Byte("header type"),
		GranulePosition: int64(binary.ReadLE[uint64](c, "granule position")),
		SerialNumber:    binary.ReadLE[uint32](c, "serial number"),
		SequenceNumber:  binary.ReadLE[uint32](c, "sequence number"),
		Checksum:        binary.ReadLE[uint32](c, "checksum"),
	}
	segmentCount := c.Byte("segment count")
	if err := c.Err(); err != nil {
		return nil, err
	}
	if p.Version != 0 {
		return nil, fmt.Errorf("unsupported Ogg version %d at offset %d", p.Version, off)
	}

	if p.Segments, err = src.ReadFull(int(segmentCount), "segment table"); err != nil {
		return nil, err
	}
	size := 0
	for _, seg := range p.Segments {
		size += int(seg)
	}
	if p.Data, err = src.ReadFull(size, "page data"); err != nil {
		return nil, err
	}
	return p, nil
}

// packetLengths folds a lacing table into packet lengths. Runs of 255
// continue a packet; the first value below 255 ends it. open is true when
// the table ends on 255, so the last length is a packet that carries on in
// the next page.
//
//	[255 255 10] -> [520]
//	[200 255 50] -> [200 305]
func packetLengths(segments []byte) (lengths []int, open bool) {
	n := 0
	for _, seg := range segments {
		n += int(seg)
		if seg < 255 {
			lengths = append(lengths, n)
			n = 0
		}
	}
	if len(segments) > 0 && segments[len(segments)-1] == 255 {
		lengths = append(lengths, n)
		open = true
	}
	return lengths, open
}

// lastGranuleWindow bounds the tail scan for the final page. The largest
// possible page is 65307 bytes.
const lastGranuleWindow = 65536

// findLastGranule searches backwards from the end of the file for the last
// page of the stream with the given serial and returns its granule
// position. ok is false when no such page is found.
func findLastGranule(src *binary.Source, serial uint32) (granule int64, ok bool, err error) {
	start := max(src.Size()-lastGranuleWindow, 0)
	buf := make([]byte, src.Size()-start)
	if err := src.ReadAt(buf, start, "trailing pages"); err != nil {
		return 0, false, err
	}

	for end := len(buf); ; {
		i := bytes.LastIndex(buf[:end], []byte(CapturePattern))
		if i < 0 {
			return 0, false, nil
		}
		end = i
		if i+pageHeaderSize > len(buf) {
			continue
		}
		c := binary.NewCursor(buf[i+6:i+18], "trailing page")
		g := int64(binary.ReadLE[uint64](c, "granule position"))
		s := binary.ReadLE[uint32](c, "serial number")
		if s == serial && g >= 0 {
			return g, true, nil
		}
	}
}
