package types

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// DiagnosticKind classifies a non-fatal condition met while decoding.
type DiagnosticKind int

const (
	// DiagUnknownFrame is an ID3 frame outside the catalog whose payload was skipped.
	DiagUnknownFrame DiagnosticKind = iota
	// DiagPadding marks the end of the frame stream at a padding sentinel.
	DiagPadding
	// DiagFooter reports a decoded ID3v2.4 footer.
	DiagFooter
	// DiagPlaceholder is a FLAC placeholder seek point.
	DiagPlaceholder
	// DiagBadFrame is a frame dropped because its payload could not be decoded.
	DiagBadFrame
	// DiagFramingBit is a Vorbis comment packet without its framing bit.
	DiagFramingBit
	// DiagSkipped is a block or packet skipped without decoding.
	DiagSkipped
	// DiagMalformedComment is a Vorbis comment entry without '='.
	DiagMalformedComment
)

var diagnosticKindNames = [...]string{
	DiagUnknownFrame:     "unknown frame",
	DiagPadding:          "padding",
	DiagFooter:           "footer",
	DiagPlaceholder:      "placeholder seek point",
	DiagBadFrame:         "bad frame",
	DiagFramingBit:       "missing framing bit",
	DiagSkipped:          "skipped",
	DiagMalformedComment: "malformed comment",
}

func (k DiagnosticKind) String() string {
	if k < 0 || int(k) >= len(diagnosticKindNames) {
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
	return diagnosticKindNames[k]
}

// Informational reports whether the kind describes normal file structure
// rather than a data-quality problem.
func (k DiagnosticKind) Informational() bool {
	switch k {
	case DiagPadding, DiagFooter, DiagPlaceholder, DiagSkipped:
		return true
	default:
		return false
	}
}

// Diagnostic is a non-fatal condition observed while decoding.
//
// Decoders never print. They hand Diagnostics to a Reporter, and the
// caller decides whether to collect, log or ignore them.
type Diagnostic struct {
	// Stage is the decoder that raised it: "id3v2", "id3v1", "flac", "ogg", "mpeg".
	Stage string

	Kind DiagnosticKind

	// Identifier is the frame ID, block type or packet name involved.
	Identifier string

	Message string

	// Offset is the absolute file offset, or 0 when not applicable.
	Offset int64
}

// String returns a human-readable message.
func (d Diagnostic) String() string {
	id := ""
	if d.Identifier != "" {
		id = " " + d.Identifier
	}
	if d.Offset > 0 {
		return fmt.Sprintf("%s%s (at offset %d): %s", d.Stage, id, d.Offset, d.Message)
	}
	return fmt.Sprintf("%s%s: %s", d.Stage, id, d.Message)
}

// Reporter receives diagnostics as they happen.
type Reporter func(Diagnostic)

// Env carries per-parse settings shared by every decoder.
type Env struct {
	// Log receives every diagnostic. Nil disables logging.
	Log logrus.FieldLogger

	// Report receives every diagnostic. Nil drops them.
	Report Reporter

	// LenientFrames turns an undecodable frame payload (bad encoding
	// selector, malformed text, truncated fields) into a dropped frame
	// instead of a fatal error.
	LenientFrames bool

	// ReadID3v1 also decodes a trailing ID3v1 block on MP3 files.
	ReadID3v1 bool

	// MaxPayload caps frame and block sizes. Zero means no limit.
	MaxPayload int64
}

// Emit logs d and forwards it to the reporter.
func (e *Env) Emit(d Diagnostic) {
	if e == nil {
		return
	}
	if e.Log != nil {
		entry := e.Log.WithFields(logrus.Fields{
			"stage":  d.Stage,
			"kind":   d.Kind.String(),
			"offset": d.Offset,
		})
		if d.Identifier != "" {
			entry = entry.WithField("id", d.Identifier)
		}
		if d.Kind.Informational() {
			entry.Debug(d.Message)
		} else {
			entry.Warn(d.Message)
		}
	}
	if e.Report != nil {
		e.Report(d)
	}
}

// CheckPayload rejects sizes above MaxPayload.
func (e *Env) CheckPayload(path, what string, off, size int64) error {
	if e == nil || e.MaxPayload <= 0 || size <= e.MaxPayload {
		return nil
	}
	return &CorruptedFileError{
		Path:   path,
		Offset: off,
		Reason: fmt.Sprintf("%s declares %d bytes, limit is %d", what, size, e.MaxPayload),
	}
}
