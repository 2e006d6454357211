package ogg

import "fmt"

// Packet is one reassembled codec packet.
type Packet struct {
	Data []byte

	// Offset is the file offset of the first packet byte.
	Offset int64
	// Pages counts the pages the packet spans.
	Pages int
}

// Reassembler rebuilds packets of one logical stream from its pages.
// Pages of other streams are ignored.
type Reassembler struct {
	serial  uint32
	locked  bool
	partial *Packet

	// MaxPacket caps the size of a reassembled packet. Zero means no limit.
	MaxPacket int
}

// Serial returns the serial number of the stream being followed. It is
// fixed by the first page pushed.
func (r *Reassembler) Serial() (uint32, bool) {
	return r.serial, r.locked
}

// Follows reports whether p belongs to the followed stream.
func (r *Reassembler) Follows(p *Page) bool {
	return !r.locked || p.SerialNumber == r.serial
}

// Pending reports whether a packet is waiting for its continuation.
func (r *Reassembler) Pending() bool {
	return r.partial != nil
}

// Push adds a page and returns the packets it completes. A packet
// interrupted by a page without the continuation flag, or a continuation
// with nothing to continue, is an error.
func (r *Reassembler) Push(p *Page) ([]Packet, error) {
	if !r.locked {
		r.serial, r.locked = p.SerialNumber, true
	}
	if p.SerialNumber != r.serial {
		return nil, nil
	}

	lengths, open := packetLengths(p.Segments)
	if p.Continued() && r.partial == nil {
		return nil, fmt.Errorf("page %d continues a packet that never started", p.SequenceNumber)
	}
	if !p.Continued() && r.partial != nil {
		return nil, fmt.Errorf("page %d interrupts a packet of %d bytes", p.SequenceNumber, len(r.partial.Data))
	}
	if p.Continued() && len(lengths) == 0 {
		return nil, fmt.Errorf("page %d continues a packet but carries no segments", p.SequenceNumber)
	}

	var done []Packet
	pos := 0
	for i, n := range lengths {
		chunk := p.Data[pos : pos+n]
		at := p.DataOffset() + int64(pos)
		pos += n

		if i == 0 && p.Continued() {
			r.partial.Data = append(r.partial.Data, chunk...)
			r.partial.Pages++
		} else {
			r.partial = &Packet{Data: append([]byte(nil), chunk...), Offset: at, Pages: 1}
		}
		if r.MaxPacket > 0 && len(r.partial.Data) > r.MaxPacket {
			return nil, fmt.Errorf("packet at offset %d exceeds %d bytes", r.partial.Offset, r.MaxPacket)
		}

		if i == len(lengths)-1 && open {
			break
		}
		done = append(done, *r.partial)
		r.partial = nil
	}
	return done, nil
}

// Reset drops any partial packet and unlocks the serial number.
func (r *Reassembler) Reset() {
	*r = Reassembler{MaxPacket: r.MaxPacket}
}
