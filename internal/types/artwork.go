package types

import (
	"fmt"
	"strings"
)

// Artwork represents an embedded picture (APIC frame, FLAC PICTURE block or
// METADATA_BLOCK_PICTURE comment).
type Artwork struct {
	Type PictureType

	// MIME type of the image data
	MIMEType string // "image/jpeg", "image/png", "-->" for linked images

	Description string

	Data []byte

	// Dimensions as declared by the container, 0 when unknown
	Width  int
	Height int
}

// PictureType categorizes the content of a picture.
//
// The codes are shared by the ID3v2 APIC frame and the FLAC PICTURE block.
// See: https://id3.org/id3v2.4.0-frames (APIC frame)
type PictureType byte

const (
	PictureOther PictureType = iota
	PictureFileIcon
	PictureOtherIcon
	PictureFrontCover
	PictureBackCover
	PictureLeaflet
	PictureMedia
	PictureLeadArtist
	PictureArtist
	PictureConductor
	PictureBand
	PictureComposer
	PictureLyricist
	PictureRecordingLocation
	PictureDuringRecording
	PictureDuringPerformance
	PictureScreenCapture
	PictureBrightFish
	PictureIllustration
	PictureBandLogotype
	PicturePublisherLogotype
)

var pictureTypeNames = [...]string{
	"Other",
	"File icon",
	"Other file icon",
	"Front cover",
	"Back cover",
	"Leaflet page",
	"Media",
	"Lead artist",
	"Artist",
	"Conductor",
	"Band",
	"Composer",
	"Lyricist",
	"Recording location",
	"During recording",
	"During performance",
	"Screen capture",
	"Bright coloured fish",
	"Illustration",
	"Band logotype",
	"Publisher logotype",
}

func (p PictureType) String() string {
	if int(p) < len(pictureTypeNames) {
		return pictureTypeNames[p]
	}
	return fmt.Sprintf("PictureType(%d)", byte(p))
}

// String returns a human-readable description of the artwork.
//
// Example output: "Front cover (1200x1200 JPEG, 245KB)"
func (a Artwork) String() string {
	dims := ""
	if a.Width > 0 && a.Height > 0 {
		dims = fmt.Sprintf("%dx%d ", a.Width, a.Height)
	}
	return fmt.Sprintf("%s (%s%s, %s)", a.Type, dims, mimeToFormat(a.MIMEType), formatSize(len(a.Data)))
}

// Extension returns a file extension for the image, including the dot.
func (a Artwork) Extension() string {
	switch strings.ToLower(a.MIMEType) {
	case "image/jpeg", "image/jpg", "jpg", "jpeg":
		return ".jpg"
	case "image/png", "png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	case "image/webp":
		return ".webp"
	case "image/tiff":
		return ".tiff"
	}
	if rest, ok := strings.CutPrefix(strings.ToLower(a.MIMEType), "image/"); ok && rest != "" {
		return "." + rest
	}
	return ".bin"
}

// formatSize formats byte size in human-readable form.
func formatSize(bytes int) string {
	const (
		KB = 1024
		MB = 1024 * KB
	)

	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1fMB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%dKB", bytes/KB)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

// mimeToFormat converts MIME type to short format name.
func mimeToFormat(mime string) string {
	switch mime {
	case "image/jpeg":
		return "JPEG"
	case "image/png":
		return "PNG"
	case "image/gif":
		return "GIF"
	case "image/bmp":
		return "BMP"
	case "image/tiff":
		return "TIFF"
	case "image/webp":
		return "WebP"
	default:
		return "Image"
	}
}
