package main

import (
	"fmt"

	"github.com/simonhull/audiotag"
)

// printStructure lists the container layout: ID3 frames, FLAC metadata
// blocks or Ogg header pages, with offsets where known.
func printStructure(file *audiotag.File) {
	switch {
	case file.ID3 != nil:
		printID3(file.ID3)
		if s := file.MPEG; s != nil {
			fmt.Printf("%s Layer %d (offset: %d, frames: %d, vbr: %t)\n",
				s.Header.Version, s.Header.Layer, s.Offset, s.Frames, s.VBR)
		}
	case file.FLAC != nil:
		fmt.Println("fLaC (offset: 0)")
		for _, b := range file.FLAC.Blocks {
			fmt.Printf("  %s (size: %d, offset: %d, last: %t)\n", b.Type, b.Length, b.Offset, b.IsLast)
		}
		if cs := file.FLAC.CueSheet; cs != nil {
			for _, tr := range cs.Tracks {
				fmt.Printf("    track %d (offset: %d samples, indices: %d)\n", tr.Number, tr.Offset, len(tr.Indices))
			}
		}
	case file.Ogg != nil:
		s := file.Ogg
		fmt.Printf("OggS %s (serial: %d, header pages: %d, last granule: %d)\n",
			s.Codec, s.Serial, s.HeaderPages, s.LastGranule)
		if s.Comments != nil {
			fmt.Printf("  vendor: %s\n", s.Comments.Vendor)
		}
	}
}

func printID3(tag *audiotag.ID3Tag) {
	if tag.Header == nil {
		fmt.Println("no ID3v2 tag")
	} else {
		fmt.Printf("%s (flags: %08b)\n", tag.Header, byte(tag.Header.Flags))
		if tag.Extended != nil {
			fmt.Printf("  extended header (%d bytes)\n", tag.Extended.Total())
		}
		for id, frames := range tag.Frames.All() {
			for _, f := range frames {
				fmt.Printf("  %s %-8s %d bytes\n", id, f.Kind, len(f.Message())+len(f.Raw()))
			}
		}
		if tag.PaddingSize > 0 {
			fmt.Printf("  padding (%d bytes)\n", tag.PaddingSize)
		}
		if tag.Footer != nil {
			fmt.Printf("  footer %s\n", tag.Footer)
		}
	}
	if tag.V1 != nil {
		fmt.Printf("ID3v1 (title: %q, genre: %s)\n", tag.V1.Title, tag.V1.GenreName())
	}
}
