package audiotag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/audiotag/internal/registry"
)

// File is the metadata read from one audio file.
//
// Exactly one of ID3, FLAC and Ogg is set, matching Format. The accessor
// methods work the same for every format:
//
//	file, err := audiotag.Open("song.flac")
//	if err != nil {
//		return err
//	}
//	fmt.Println(file.Get("ARTIST"), file.Audio().Duration)
type File struct {
	Path   string
	Format Format
	Size   int64

	// ID3 holds the tags of an MP3 file. MPEG is its first audio frame,
	// nil when none was found.
	ID3  *ID3Tag
	MPEG *MPEGStream

	FLAC *FLACMetadata
	Ogg  *OggStream

	// Diagnostics lists the recoverable conditions met while parsing, in
	// the order they were raised.
	Diagnostics []Diagnostic

	result registry.Result
}

// Get returns every value stored under id, case-insensitively: ID3 frame
// IDs for MP3, Vorbis comment field names for FLAC and Ogg.
func (f *File) Get(id string) []string {
	if f.result == nil {
		return nil
	}
	return f.result.Get(id)
}

// GetRaw returns the binary payloads stored under id. Textual values have
// an empty payload.
func (f *File) GetRaw(id string) [][]byte {
	if f.result == nil {
		return nil
	}
	return f.result.GetRaw(id)
}

// Keys returns every identifier present, in file order.
func (f *File) Keys() []string {
	if f.result == nil {
		return nil
	}
	return f.result.Keys()
}

// Artwork returns the embedded pictures in file order.
func (f *File) Artwork() []Artwork {
	if f.result == nil {
		return nil
	}
	return f.result.Artwork()
}

// Chapters returns the chapter marks, nil when the file has none.
func (f *File) Chapters() []Chapter {
	if f.result == nil {
		return nil
	}
	return f.result.Chapters()
}

// Audio returns the technical properties of the audio stream.
func (f *File) Audio() AudioInfo {
	if f.result == nil {
		return AudioInfo{}
	}
	return f.result.Audio()
}

// WriteArtwork writes every embedded picture into dir. The first is named
// base plus the image extension, the rest base_1, base_2 and so on. It
// returns the paths written.
//
// Example:
//
//	paths, err := file.WriteArtwork(".", "cover")
//	// cover.jpg, cover_1.png, ...
func (f *File) WriteArtwork(dir, base string) ([]string, error) {
	var paths []string
	for i, art := range f.Artwork() {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		path := filepath.Join(dir, name+art.Extension())
		if err := os.WriteFile(path, art.Data, 0o644); err != nil {
			return paths, fmt.Errorf("write artwork: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Open reads the metadata of the file at path.
//
// The format is detected from the file's signature. A *StrictParsingError,
// *CorruptedFileError or any other error means nothing decoded so far is
// returned.
func Open(path string, opts ...Option) (*File, error) {
	return NewParser(path, opts...).Parse()
}

// OpenContext is Open with cancellation: every read checks ctx, so a long
// parse stops with ctx.Err() once the context is done.
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//
//	file, err := audiotag.OpenContext(ctx, "song.flac")
func OpenContext(ctx context.Context, path string, opts ...Option) (*File, error) {
	return NewParser(path, opts...).ParseContext(ctx)
}

// OpenMany opens multiple audio files concurrently.
//
// Files are parsed in parallel using up to runtime.NumCPU() goroutines.
// Results are returned in the same order as the input paths. If any file
// fails, the first error is returned and no files are.
//
// Example:
//
//	files, err := audiotag.OpenMany(ctx, paths...)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, f := range files {
//		fmt.Printf("%s: %v - %v\n", f.Format, f.Get("TPE1"), f.Get("TIT2"))
//	}
func OpenMany(ctx context.Context, paths ...string) ([]*File, error) {
	return OpenManyWith(ctx, paths)
}

// OpenManyWith is OpenMany with options applied to every file.
func OpenManyWith(ctx context.Context, paths []string, opts ...Option) ([]*File, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*File, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			file, err := OpenContext(ctx, path, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = file
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
