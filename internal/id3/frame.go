package id3

import (
	"fmt"

	"github.com/simonhull/audiotag/internal/text"
	"github.com/simonhull/audiotag/internal/types"
)

// FrameKind is the variant of a decoded frame.
type FrameKind int

const (
	// KindUnknown is a well-formed identifier outside the catalog.
	KindUnknown FrameKind = iota
	// KindPadding is the all-zero identifier that starts padding.
	KindPadding
	KindText
	KindUserText
	KindURL
	KindUserURL
	KindPicture
	KindComment
	KindSyncedLyrics
	KindUnsyncedLyrics
	// KindRarelyUsed is a catalogued frame stored without decoding.
	KindRarelyUsed
)

var frameKindNames = [...]string{
	KindUnknown:        "unknown",
	KindPadding:        "padding",
	KindText:           "text information",
	KindUserText:       "user text",
	KindURL:            "URL link",
	KindUserURL:        "user URL",
	KindPicture:        "attached picture",
	KindComment:        "comment",
	KindSyncedLyrics:   "synchronised lyrics",
	KindUnsyncedLyrics: "unsynchronised lyrics",
	KindRarelyUsed:     "rarely used",
}

func (k FrameKind) String() string {
	if k < 0 || int(k) >= len(frameKindNames) {
		return fmt.Sprintf("FrameKind(%d)", int(k))
	}
	return frameKindNames[k]
}

// Classify maps a 4-byte frame identifier to its variant.
func Classify(id []byte) FrameKind {
	if len(id) != 4 {
		return KindUnknown
	}
	if id[0] == 0 && id[1] == 0 && id[2] == 0 && id[3] == 0 {
		return KindPadding
	}

	s := string(id)
	switch {
	case s == "TXXX":
		return KindUserText
	case id[0] == 'T':
		return KindText
	case s == "WXXX":
		return KindUserURL
	case id[0] == 'W':
		return KindURL
	}

	switch s {
	case "APIC":
		return KindPicture
	case "COMM":
		return KindComment
	case "SYLT":
		return KindSyncedLyrics
	case "USLT":
		return KindUnsyncedLyrics
	}

	if _, ok := catalog[s]; ok {
		return KindRarelyUsed
	}
	return KindUnknown
}

// validIdentifier reports whether id consists of A-Z and 0-9 only.
func validIdentifier(id []byte) bool {
	for _, c := range id {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// Frame is a decoded ID3v2 frame.
//
// Frame is a closed union over FrameKind: which fields are populated
// depends on Kind. Identifier, Message and Raw dispatch on Kind.
type Frame struct {
	Kind  FrameKind
	ID    string
	Flags uint16

	// Encoding is the selector as declared, before any BOM refinement.
	Encoding text.Encoding

	// Language is the raw 3-byte code of COMM, USLT and SYLT frames.
	Language string

	Description string

	// Text is the text value, URL, comment or lyric body.
	Text string

	// MIMEType and PictureType belong to APIC frames.
	MIMEType    string
	PictureType types.PictureType

	// TimestampFormat and ContentType belong to SYLT frames.
	TimestampFormat byte
	ContentType     byte

	// Data is the undecoded payload of APIC (image bytes followed by the
	// picture-type byte), SYLT (event stream) and rarely used frames.
	Data []byte
}

// Identifier returns the 4-character frame ID.
func (f Frame) Identifier() string {
	return f.ID
}

// Message returns the human-readable text of the frame.
func (f Frame) Message() string {
	switch f.Kind {
	case KindText, KindUserText, KindURL, KindUserURL, KindComment, KindUnsyncedLyrics:
		return f.Text
	case KindPicture, KindSyncedLyrics:
		return f.Description
	default:
		return ""
	}
}

// Raw returns the binary payload, empty for textual frames. For APIC it is
// the image without the trailing picture-type byte.
func (f Frame) Raw() []byte {
	switch f.Kind {
	case KindPicture:
		return f.Image()
	case KindSyncedLyrics, KindRarelyUsed:
		return f.Data
	default:
		return nil
	}
}

// Image returns an APIC frame's image bytes.
func (f Frame) Image() []byte {
	if f.Kind != KindPicture || len(f.Data) == 0 {
		return nil
	}
	return f.Data[:len(f.Data)-1]
}

// Artwork converts an APIC frame.
func (f Frame) Artwork() (types.Artwork, bool) {
	if f.Kind != KindPicture {
		return types.Artwork{}, false
	}
	return types.Artwork{
		Type:        f.PictureType,
		MIMEType:    f.MIMEType,
		Description: f.Description,
		Data:        f.Image(),
	}, true
}

// Describe returns the catalog description of a frame ID, or "".
func Describe(id string) string {
	return catalog[id]
}

// catalog lists the ID3v2.3 and ID3v2.4 frame identifiers.
var catalog = map[string]string{
	"AENC": "Audio encryption",
	"APIC": "Attached picture",
	"ASPI": "Audio seek point index",
	"CHAP": "Chapter",
	"COMM": "Comments",
	"COMR": "Commercial frame",
	"CTOC": "Table of contents",
	"ENCR": "Encryption method registration",
	"EQU2": "Equalisation (2)",
	"EQUA": "Equalisation",
	"ETCO": "Event timing codes",
	"GEOB": "General encapsulated object",
	"GRID": "Group identification registration",
	"GRP1": "Grouping",
	"IPLS": "Involved people list",
	"LINK": "Linked information",
	"MCDI": "Music CD identifier",
	"MLLT": "MPEG location lookup table",
	"MVIN": "Movement number",
	"MVNM": "Movement name",
	"OWNE": "Ownership frame",
	"PCNT": "Play counter",
	"POPM": "Popularimeter",
	"POSS": "Position synchronisation frame",
	"PRIV": "Private frame",
	"RBUF": "Recommended buffer size",
	"RVA2": "Relative volume adjustment (2)",
	"RVAD": "Relative volume adjustment",
	"RVRB": "Reverb",
	"SEEK": "Seek frame",
	"SIGN": "Signature frame",
	"SYLT": "Synchronised lyric/text",
	"SYTC": "Synchronised tempo codes",
	"TALB": "Album/Movie/Show title",
	"TBPM": "BPM (beats per minute)",
	"TCOM": "Composer",
	"TCON": "Content type",
	"TCOP": "Copyright message",
	"TDAT": "Date",
	"TDEN": "Encoding time",
	"TDLY": "Playlist delay",
	"TDOR": "Original release time",
	"TDRC": "Recording time",
	"TDRL": "Release time",
	"TDTG": "Tagging time",
	"TENC": "Encoded by",
	"TEXT": "Lyricist/Text writer",
	"TFLT": "File type",
	"TIME": "Time",
	"TIPL": "Involved people list",
	"TIT1": "Content group description",
	"TIT2": "Title/songname/content description",
	"TIT3": "Subtitle/Description refinement",
	"TKEY": "Initial key",
	"TLAN": "Language(s)",
	"TLEN": "Length",
	"TMCL": "Musician credits list",
	"TMED": "Media type",
	"TMOO": "Mood",
	"TOAL": "Original album/movie/show title",
	"TOFN": "Original filename",
	"TOLY": "Original lyricist(s)/text writer(s)",
	"TOPE": "Original artist(s)/performer(s)",
	"TORY": "Original release year",
	"TOWN": "File owner/licensee",
	"TPE1": "Lead performer(s)/Soloist(s)",
	"TPE2": "Band/orchestra/accompaniment",
	"TPE3": "Conductor/performer refinement",
	"TPE4": "Interpreted, remixed, or otherwise modified by",
	"TPOS": "Part of a set",
	"TPRO": "Produced notice",
	"TPUB": "Publisher",
	"TRCK": "Track number/Position in set",
	"TRDA": "Recording dates",
	"TRSN": "Internet radio station name",
	"TRSO": "Internet radio station owner",
	"TSIZ": "Size",
	"TSO2": "Album artist sort order",
	"TSOA": "Album sort order",
	"TSOC": "Composer sort order",
	"TSOP": "Performer sort order",
	"TSOT": "Title sort order",
	"TSRC": "ISRC (international standard recording code)",
	"TSSE": "Software/Hardware and settings used for encoding",
	"TSST": "Set subtitle",
	"TXXX": "User defined text information frame",
	"TYER": "Year",
	"UFID": "Unique file identifier",
	"USER": "Terms of use",
	"USLT": "Unsynchronised lyric/text transcription",
	"WCOM": "Commercial information",
	"WCOP": "Copyright/Legal information",
	"WOAF": "Official audio file webpage",
	"WOAR": "Official artist/performer webpage",
	"WOAS": "Official audio source webpage",
	"WORS": "Official Internet radio station homepage",
	"WPAY": "Payment",
	"WPUB": "Publishers official webpage",
	"WXXX": "User defined URL link frame",
}
