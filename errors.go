package audiotag

import (
	"github.com/simonhull/audiotag/internal/text"
	"github.com/simonhull/audiotag/internal/types"
)

// OutOfBoundsError is returned when a declared size points past the end
// of the file.
type OutOfBoundsError = types.OutOfBoundsError

// UnsupportedFormatError is returned when the file signature matches no
// supported container, or an Ogg stream carries an unknown codec.
type UnsupportedFormatError = types.UnsupportedFormatError

// CorruptedFileError is returned when a structure is present but invalid.
type CorruptedFileError = types.CorruptedFileError

// StrictParsingError is returned under WithStrictParsing.
type StrictParsingError = types.StrictParsingError

// UnknownEncodingError is an ID3 text encoding selector outside 0-3.
type UnknownEncodingError = text.UnknownEncodingError

// MalformedTextError is text that is invalid under its declared encoding.
type MalformedTextError = text.MalformedTextError
