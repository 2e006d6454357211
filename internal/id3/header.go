package id3

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the length of the protocol header, the footer and a frame header.
const HeaderSize = 10

// MaxSynchsafe is the largest value a 4-byte synchsafe integer can hold.
const MaxSynchsafe = 0x0FFFFFFF

// Flags is the protocol header flag byte.
type Flags byte

const (
	FlagUnsynchronisation Flags = 0x80
	FlagExtendedHeader    Flags = 0x40
	FlagExperimental      Flags = 0x20
	FlagFooter            Flags = 0x10
)

func (f Flags) Unsynchronisation() bool { return f&FlagUnsynchronisation != 0 }
func (f Flags) ExtendedHeader() bool    { return f&FlagExtendedHeader != 0 }
func (f Flags) Experimental() bool      { return f&FlagExperimental != 0 }
func (f Flags) Footer() bool            { return f&FlagFooter != 0 }

// ProtocolHeader is the 10-byte ID3v2 tag header (or footer).
type ProtocolHeader struct {
	Marker   string // "ID3", or "3DI" for a footer
	Version  byte   // major version, 3 or 4
	Revision byte
	Flags    Flags

	// Size is the tag length excluding this header and any footer.
	Size uint32
}

// String returns e.g. "ID3v2.4.0 (4096 bytes)".
func (h *ProtocolHeader) String() string {
	return fmt.Sprintf("ID3v2.%d.%d (%d bytes)", h.Version, h.Revision, h.Size)
}

// parseProtocolHeader decodes b as a header carrying marker.
// ok is false when the marker or version is not recognised.
func parseProtocolHeader(b []byte, marker string) (h *ProtocolHeader, ok bool) {
	if len(b) < HeaderSize || string(b[0:3]) != marker {
		return nil, false
	}
	if b[3] != 3 && b[3] != 4 {
		return nil, false
	}
	return &ProtocolHeader{
		Marker:   marker,
		Version:  b[3],
		Revision: b[4],
		Flags:    Flags(b[5]),
		Size:     headerSize(b[6:10], b[3]),
	}, true
}

// headerSize decodes the tag size field.
//
// ID3v2.4 is always synchsafe. ID3v2.3 also mandates a synchsafe tag size,
// but some writers store a plain integer; a set top bit can only come from
// such a writer, so that case falls back to the plain reading.
func headerSize(b []byte, version byte) uint32 {
	if version == 3 && !isSynchsafe(b) {
		return binary.BigEndian.Uint32(b)
	}
	return DecodeSynchsafe(b)
}

// frameSize decodes a frame or extended header size: synchsafe on v4,
// plain big-endian on v3.
func frameSize(b []byte, version byte) uint32 {
	if version == 4 {
		return DecodeSynchsafe(b)
	}
	return binary.BigEndian.Uint32(b)
}

func isSynchsafe(b []byte) bool {
	return b[0]&0x80 == 0 && b[1]&0x80 == 0 && b[2]&0x80 == 0 && b[3]&0x80 == 0
}

// DecodeSynchsafe decodes a 4-byte synchsafe integer (7 bits per byte).
func DecodeSynchsafe(b []byte) uint32 {
	return uint32(b[0]&0x7F)<<21 |
		uint32(b[1]&0x7F)<<14 |
		uint32(b[2]&0x7F)<<7 |
		uint32(b[3]&0x7F)
}

// EncodeSynchsafe encodes v (at most MaxSynchsafe) as 4 synchsafe bytes.
func EncodeSynchsafe(v uint32) [4]byte {
	return [4]byte{
		byte(v>>21) & 0x7F,
		byte(v>>14) & 0x7F,
		byte(v>>7) & 0x7F,
		byte(v) & 0x7F,
	}
}

// ExtendedHeader is the optional header between the protocol header and
// the first frame. Its content is kept opaque.
type ExtendedHeader struct {
	Version byte

	// Size is the declared length as decoded from SizeBytes.
	Size      uint32
	SizeBytes [4]byte

	// Payload is everything after the size field.
	Payload []byte
}

// payloadLength returns how many bytes follow the 4-byte size field.
//
// v3 declares the length excluding the size field; v4 declares the whole
// extended header including it.
func (e *ExtendedHeader) payloadLength() (int64, error) {
	if e.Size < 6 {
		return 0, fmt.Errorf("extended header size %d below minimum 6", e.Size)
	}
	if e.Version == 4 {
		return int64(e.Size) - 4, nil
	}
	return int64(e.Size), nil
}

// Total returns the number of bytes the extended header occupies.
func (e *ExtendedHeader) Total() int64 {
	return 4 + int64(len(e.Payload))
}

// resynchronise undoes unsynchronisation by dropping every 0x00 that
// follows 0xFF.
func resynchronise(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}
