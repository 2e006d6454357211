// Package registry maps container formats to their decoders.
package registry

import (
	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// Decoder reads the metadata of one container format.
type Decoder interface {
	// Decode drives the format's state machine over src to completion.
	// A file that does not carry the format's marker yields an empty
	// Result and a nil error.
	Decode(src *binary.Source, env *types.Env) (Result, error)
}

// Result is the decoded metadata of one file.
type Result interface {
	// Empty reports whether nothing was found (format mismatch).
	Empty() bool
	// Get returns the messages stored under id, case-insensitively.
	Get(id string) []string
	// GetRaw returns the raw payloads stored under id, case-insensitively.
	GetRaw(id string) [][]byte
	// Keys returns every identifier in first-insertion order.
	Keys() []string
	// Artwork returns the embedded pictures.
	Artwork() []types.Artwork
	// Audio returns the stream properties.
	Audio() types.AudioInfo
	// Chapters returns chapter marks, nil when the file has none.
	Chapters() []types.Chapter
}

// decoders maps formats to their decoders.
var decoders = make(map[types.Format]Decoder)

// Register registers a decoder for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, d Decoder) {
	decoders[format] = d
}

// Get returns the decoder for a given format.
// Returns nil if no decoder is registered for the format.
func Get(format types.Format) Decoder {
	return decoders[format]
}
