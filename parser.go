package audiotag

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/flac"
	"github.com/simonhull/audiotag/internal/mp3"
	"github.com/simonhull/audiotag/internal/ogg"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

// Parser reads one target file at a time. It keeps the result of the last
// successful parse, and can be pointed at another file with ChangeTarget.
// A Parser is not safe for concurrent use.
type Parser struct {
	path string
	opts *options
	file *File
}

// NewParser returns a parser for path. Nothing is read until Parse.
func NewParser(path string, opts ...Option) *Parser {
	return &Parser{path: path, opts: newOptions(opts)}
}

// Path returns the current target.
func (p *Parser) Path() string { return p.path }

// File returns the result of the last successful parse, or nil.
func (p *Parser) File() *File { return p.file }

// ChangeTarget points the parser at another file. The previous result is
// cleared; options are kept. Files already returned are unaffected.
func (p *Parser) ChangeTarget(path string) {
	p.path = path
	p.file = nil
}

// Get returns the values stored under id by the last successful parse.
func (p *Parser) Get(id string) []string {
	if p.file == nil {
		return nil
	}
	return p.file.Get(id)
}

// GetRaw returns the raw payloads stored under id by the last successful
// parse.
func (p *Parser) GetRaw(id string) [][]byte {
	if p.file == nil {
		return nil
	}
	return p.file.GetRaw(id)
}

// Parse reads the target file.
func (p *Parser) Parse() (*File, error) {
	return p.ParseContext(context.Background())
}

// ParseContext reads the target file, checking ctx before every read. On
// error the previous result is kept and nothing partial is returned.
func (p *Parser) ParseContext(ctx context.Context) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	file, err := parseReader(&contextReader{ctx: ctx, r: f}, stat.Size(), p.path, p.opts)
	if err != nil {
		return nil, err
	}
	p.file = file
	return file, nil
}

// parseReader detects the format and runs its decoder over r.
func parseReader(r io.ReaderAt, size int64, path string, o *options) (*File, error) {
	format, err := DetectFormat(r, size, path)
	if err != nil {
		return nil, err
	}

	dec := registry.Get(format)
	if dec == nil {
		return nil, &UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("no decoder available for format %s", format),
		}
	}

	var diags []Diagnostic
	env := o.env(func(d types.Diagnostic) { diags = append(diags, d) })

	result, err := dec.Decode(binary.NewSource(r, size, path), env)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}

	if o.strictParsing {
		for _, d := range diags {
			if !d.Kind.Informational() {
				return nil, &StrictParsingError{Path: path, Diagnostic: d}
			}
		}
	}

	file := &File{Path: path, Format: format, Size: size, result: result}
	switch m := result.(type) {
	case *mp3.Metadata:
		file.ID3 = m.Tag
		file.MPEG = m.Stream
	case *flac.Metadata:
		file.FLAC = m
	case *ogg.Stream:
		file.Ogg = m
	}
	if !o.ignoreDiagnostics {
		file.Diagnostics = diags
	}
	return file, nil
}

// contextReader fails every read once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.ReaderAt
}

func (c *contextReader) ReadAt(b []byte, off int64) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.ReadAt(b, off)
}
