package id3

import (
	"bytes"
	"strconv"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/tags"
	"github.com/simonhull/audiotag/internal/text"
)

// V1Size is the length of an ID3v1 block.
const V1Size = 128

// V1Tag is the fixed 128-byte ID3v1 block at the end of an MP3 file.
type V1Tag struct {
	Title   string
	Artist  string
	Album   string
	Year    string
	Comment string

	// Track is set by ID3v1.1 writers, 0 otherwise.
	Track byte
	Genre byte
}

// GenreName returns the name of the genre byte, or "" when unassigned.
func (t *V1Tag) GenreName() string {
	if int(t.Genre) < len(v1Genres) {
		return v1Genres[t.Genre]
	}
	return ""
}

// ReadV1 reads the ID3v1 block from the last 128 bytes of src.
// It returns nil when the block is absent. The cursor is not moved.
func ReadV1(src *binutil.Source) (*V1Tag, error) {
	if src.Size() < V1Size {
		return nil, nil
	}
	b := make([]byte, V1Size)
	if err := src.ReadAt(b, src.Size()-V1Size, "ID3v1 block"); err != nil {
		return nil, err
	}
	if string(b[0:3]) != "TAG" {
		return nil, nil
	}

	t := &V1Tag{
		Title:  v1String(b[3:33]),
		Artist: v1String(b[33:63]),
		Album:  v1String(b[63:93]),
		Year:   v1String(b[93:97]),
		Genre:  b[127],
	}
	comment := b[97:127]
	if comment[28] == 0 && comment[29] != 0 {
		t.Track = comment[29]
		comment = comment[:28]
	}
	t.Comment = v1String(comment)
	return t, nil
}

func v1String(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	s, _ := text.Decode(bytes.TrimRight(b, " "), text.Latin1)
	return s
}

// register adds the v1 fields as frames, skipping IDs the v2 tag already has.
func (t *V1Tag) register(frames *tags.Registry[Frame]) {
	add := func(id, value string, kind FrameKind) {
		if value == "" || frames.Has(id) {
			return
		}
		frames.Insert(Frame{Kind: kind, ID: id, Encoding: text.Latin1, Text: value})
	}

	add("TIT2", t.Title, KindText)
	add("TPE1", t.Artist, KindText)
	add("TALB", t.Album, KindText)
	add("TYER", t.Year, KindText)
	add("COMM", t.Comment, KindComment)
	if t.Track != 0 {
		add("TRCK", strconv.Itoa(int(t.Track)), KindText)
	}
	add("TCON", t.GenreName(), KindText)
}

var v1Genres = []string{
	"Blues", "Classic Rock", "Country", "Dance", "Disco", "Funk", "Grunge",
	"Hip-Hop", "Jazz", "Metal", "New Age", "Oldies", "Other", "Pop", "R&B",
	"Rap", "Reggae", "Rock", "Techno", "Industrial", "Alternative", "Ska",
	"Death Metal", "Pranks", "Soundtrack", "Euro-Techno", "Ambient",
	"Trip-Hop", "Vocal", "Jazz+Funk", "Fusion", "Trance", "Classical",
	"Instrumental", "Acid", "House", "Game", "Sound Clip", "Gospel", "Noise",
	"AlternRock", "Bass", "Soul", "Punk", "Space", "Meditative",
	"Instrumental Pop", "Instrumental Rock", "Ethnic", "Gothic", "Darkwave",
	"Techno-Industrial", "Electronic", "Pop-Folk", "Eurodance", "Dream",
	"Southern Rock", "Comedy", "Cult", "Gangsta", "Top 40", "Christian Rap",
	"Pop/Funk", "Jungle", "Native American", "Cabaret", "New Wave",
	"Psychadelic", "Rave", "Showtunes", "Trailer", "Lo-Fi", "Tribal",
	"Acid Punk", "Acid Jazz", "Polka", "Retro", "Musical", "Rock & Roll",
	"Hard Rock",
}
