package audiotag

import (
	"github.com/simonhull/audiotag/internal/types"
)

// Diagnostic is a non-fatal condition met while parsing.
type Diagnostic = types.Diagnostic

// DiagnosticKind classifies a Diagnostic.
type DiagnosticKind = types.DiagnosticKind

const (
	DiagUnknownFrame     = types.DiagUnknownFrame
	DiagPadding          = types.DiagPadding
	DiagFooter           = types.DiagFooter
	DiagPlaceholder      = types.DiagPlaceholder
	DiagBadFrame         = types.DiagBadFrame
	DiagFramingBit       = types.DiagFramingBit
	DiagSkipped          = types.DiagSkipped
	DiagMalformedComment = types.DiagMalformedComment
)
