// Package audiotag reads metadata from MP3, FLAC, Ogg Vorbis and Ogg Opus
// files without decoding any audio.
//
// # Quick Start
//
//	file, err := audiotag.Open("song.flac")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(file.Get("ARTIST"), file.Get("TITLE"))
//	fmt.Println(file.Audio().Duration)
//
// # Supported Formats
//
//   - MP3: ID3v2.3 and ID3v2.4 tags, the optional ID3v1 block, and the
//     stream properties of the first MPEG frame (Xing, Info and VBRI aware)
//   - FLAC: every metadata block, from STREAMINFO to CUESHEET and PICTURE
//   - Ogg Vorbis and Ogg Opus: identification and comment headers, with
//     comment packets reassembled across pages
//
// # Tag Access
//
// Tags are multi-valued and looked up case-insensitively. For MP3 the keys
// are ID3v2 frame IDs ("TIT2", "APIC"); for FLAC and Ogg they are Vorbis
// comment field names ("TITLE", "ARTIST"). Get returns the decoded text of
// each value, GetRaw the binary payload (picture data, for instance):
//
//	for _, key := range file.Keys() {
//		fmt.Printf("%s: %v\n", key, file.Get(key))
//	}
//
// The format-specific structures stay reachable through File.ID3,
// File.MPEG, File.FLAC and File.Ogg.
//
// # Diagnostics
//
// Recoverable conditions, such as an unknown ID3 frame, a FLAC placeholder
// seek point or an Ogg comment packet without its framing bit, are not
// errors. They are collected in File.Diagnostics, passed to any
// WithDiagnostics callback, and logged through WithLogger:
//
//	file, err := audiotag.Open("song.mp3",
//		audiotag.WithLogger(logrus.StandardLogger()),
//		audiotag.WithDiagnostics(func(d audiotag.Diagnostic) {
//			fmt.Println(d)
//		}),
//	)
//
// WithStrictParsing turns the first non-informational diagnostic into a
// *StrictParsingError.
//
// # Error Handling
//
// Parsing is all or nothing: when Open returns an error no partial result
// is returned. Use errors.As to tell the cases apart:
//
//   - *UnsupportedFormatError: the signature matched no supported format
//   - *CorruptedFileError: a structure is present but invalid
//   - *OutOfBoundsError: a declared size points past the end of the file
//   - *UnknownEncodingError, *MalformedTextError: undecodable tag text
//
// By default a single undecodable frame fails the parse. WithLenientFrames
// drops that frame with a DiagBadFrame diagnostic and keeps the rest.
//
// # Concurrency
//
// A Parser is not safe for concurrent use, but separate parsers share no
// state. OpenMany parses a batch of files in parallel:
//
//	files, err := audiotag.OpenMany(ctx, paths...)
package audiotag
