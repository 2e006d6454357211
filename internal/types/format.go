package types

import (
	"io"
)

// Format represents the detected container format.
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota
	// FormatMP3 represents MP3 files carrying ID3 tags.
	FormatMP3
	// FormatFLAC represents native FLAC files.
	FormatFLAC
	// FormatOgg represents Ogg Vorbis files.
	FormatOgg
	// FormatOpus represents Ogg Opus files.
	FormatOpus
)

func (f Format) String() string {
	switch f {
	case FormatMP3:
		return "MP3"
	case FormatFLAC:
		return "FLAC"
	case FormatOgg:
		return "Ogg Vorbis"
	case FormatOpus:
		return "Opus"
	default:
		return "Unknown"
	}
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatFLAC:
		return []string{".flac"}
	case FormatMP3:
		return []string{".mp3"}
	case FormatOgg:
		return []string{".ogg", ".oga"}
	case FormatOpus:
		return []string{".opus"}
	default:
		return nil
	}
}

// DetectFormat determines the container format by examining magic bytes.
//
// Detection looks only at the file signature. It does not validate the
// rest of the structure; that is the decoder's job.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	if size < 4 {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "file too small",
		}
	}

	magic := make([]byte, 4)
	if _, err := r.ReadAt(magic, 0); err != nil && err != io.EOF {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "failed to read file header",
		}
	}

	switch {
	case string(magic) == "fLaC":
		return FormatFLAC, nil
	case string(magic[:3]) == "ID3":
		return FormatMP3, nil
	case magic[0] == 0xFF && magic[1]&0xE0 == 0xE0:
		// MPEG frame sync, an MP3 without an ID3v2 tag
		return FormatMP3, nil
	case string(magic) == "OggS":
		if isOpus(r, size) {
			return FormatOpus, nil
		}
		return FormatOgg, nil
	}

	return FormatUnknown, &UnsupportedFormatError{
		Path:   path,
		Reason: "unrecognised file signature",
	}
}

// isOpus peeks at the first packet of the first Ogg page.
// Page header: 27 bytes fixed, then segment_count lacing bytes.
func isOpus(r io.ReaderAt, size int64) bool {
	if size < 36 {
		return false
	}
	segCount := make([]byte, 1)
	if _, err := r.ReadAt(segCount, 26); err != nil {
		return false
	}
	packetOffset := int64(27 + int(segCount[0]))
	if packetOffset+8 > size {
		return false
	}
	codec := make([]byte, 8)
	if _, err := r.ReadAt(codec, packetOffset); err != nil && err != io.EOF {
		return false
	}
	return string(codec) == "OpusHead"
}
