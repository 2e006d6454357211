package audiotag

import (
	"io"

	"github.com/simonhull/audiotag/internal/types"
)

// Format is an alias to types.Format.
type Format = types.Format

const (
	FormatUnknown = types.FormatUnknown
	FormatMP3     = types.FormatMP3
	FormatFLAC    = types.FormatFLAC
	FormatOgg     = types.FormatOgg
	FormatOpus    = types.FormatOpus
)

// DetectFormat identifies the container from its signature.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	return types.DetectFormat(r, size, path)
}
