package audiotag

import (
	"github.com/sirupsen/logrus"

	"github.com/simonhull/audiotag/internal/types"
)

// Option configures how files are parsed.
//
// Example:
//
//	file, err := audiotag.Open("song.flac",
//	    audiotag.WithStrictParsing(),
//	    audiotag.WithLogger(logrus.StandardLogger()),
//	)
type Option func(*options)

type options struct {
	logger            logrus.FieldLogger
	report            func(Diagnostic)
	strictParsing     bool
	ignoreDiagnostics bool
	lenientFrames     bool
	readID3v1         bool
	maxPayload        int64
}

func defaultOptions() *options {
	return &options{}
}

func newOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// env builds the decoder environment. Every diagnostic goes to collect
// first, then to the subscriber installed with WithDiagnostics.
func (o *options) env(collect types.Reporter) *types.Env {
	return &types.Env{
		Log: o.logger,
		Report: func(d types.Diagnostic) {
			collect(d)
			if o.report != nil {
				o.report(d)
			}
		},
		LenientFrames: o.lenientFrames,
		ReadID3v1:     o.readID3v1,
		MaxPayload:    o.maxPayload,
	}
}

// WithLogger logs every diagnostic through l: informational ones at Debug
// level, recoverable problems at Warn level. Nothing is logged by default.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithDiagnostics calls fn for every diagnostic as it is raised, in
// addition to collecting it in File.Diagnostics.
func WithDiagnostics(fn func(Diagnostic)) Option {
	return func(o *options) {
		o.report = fn
	}
}

// WithStrictParsing fails the parse with a *StrictParsingError on the first
// diagnostic that is not purely informational (an unknown frame, a dropped
// frame, a missing framing bit). Padding, footers and placeholders never
// trigger it.
func WithStrictParsing() Option {
	return func(o *options) {
		o.strictParsing = true
	}
}

// WithIgnoreDiagnostics leaves File.Diagnostics empty. Subscribers and the
// logger still see every diagnostic.
func WithIgnoreDiagnostics() Option {
	return func(o *options) {
		o.ignoreDiagnostics = true
	}
}

// WithLenientFrames drops a single undecodable ID3 frame, FLAC block or
// Vorbis comment packet with a diagnostic instead of failing the whole
// parse. By default a bad encoding selector or malformed payload is fatal.
func WithLenientFrames() Option {
	return func(o *options) {
		o.lenientFrames = true
	}
}

// WithID3v1 also reads the 128-byte ID3v1 block at the end of MP3 files.
// Its fields fill in frames the ID3v2 tag does not have.
func WithID3v1() Option {
	return func(o *options) {
		o.readID3v1 = true
	}
}

// WithMaxPayloadSize rejects any frame or block larger than n bytes as a
// *CorruptedFileError. Zero means no limit.
//
// Example:
//
//	// Refuse frames over 16MB
//	file, err := audiotag.Open("song.mp3", audiotag.WithMaxPayloadSize(16<<20))
func WithMaxPayloadSize(n int64) Option {
	return func(o *options) {
		o.maxPayload = n
	}
}
