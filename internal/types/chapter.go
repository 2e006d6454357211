package types

import "time"

// Chapter is a chapter marker.
//
// FLAC files declare chapters as CUESHEET tracks; Ogg Vorbis, Opus and
// FLAC files may also carry CHAPTERxxx Vorbis comments.
//
//	for _, ch := range file.Chapters() {
//	    fmt.Printf("[%d] %s: %s - %s\n", ch.Index, ch.Title, ch.StartTime, ch.EndTime)
//	}
type Chapter struct {
	Index     int           `json:"index"`
	Title     string        `json:"title"`
	StartTime time.Duration `json:"start_time"`
	EndTime   time.Duration `json:"end_time"`
}
