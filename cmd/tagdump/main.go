// Command tagdump prints the metadata of MP3, FLAC and Ogg files.
//
// Usage:
//
//	tagdump [flags] <audio_file...>
//
// With several files they are parsed concurrently and summarised one line
// each. LOG_LEVEL (trace, debug, info, warn, error) sets the log level;
// at debug every diagnostic is logged.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"

	"github.com/simonhull/audiotag"
)

var (
	readV1     = flag.Bool("v1", false, "also read the ID3v1 block of MP3 files")
	lenient    = flag.Bool("lenient", false, "drop undecodable frames instead of failing")
	strict     = flag.Bool("strict", false, "fail on any recoverable problem")
	dump       = flag.Bool("dump", false, "dump the decoded structures")
	structure  = flag.Bool("structure", false, "list frames, blocks or pages with their offsets")
	artworkDir = flag.String("artwork", "", "write embedded pictures into `dir`")
	timeout    = flag.Duration("timeout", 30*time.Second, "give up after this long")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: tagdump [flags] <audio_file...>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	level, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []audiotag.Option{audiotag.WithLogger(log.StandardLogger())}
	if *readV1 {
		opts = append(opts, audiotag.WithID3v1())
	}
	if *lenient {
		opts = append(opts, audiotag.WithLenientFrames())
	}
	if *strict {
		opts = append(opts, audiotag.WithStrictParsing())
	}

	if flag.NArg() > 1 {
		if err := summarise(ctx, flag.Args(), opts); err != nil {
			log.Fatal(err)
		}
		return
	}

	file, err := audiotag.OpenContext(ctx, flag.Arg(0), opts...)
	if err != nil {
		log.WithField("path", flag.Arg(0)).Fatal(err)
	}

	switch {
	case *dump:
		spew.Config.DisableMethods = true
		spew.Config.MaxDepth = 4
		spew.Dump(file.ID3, file.MPEG, file.FLAC, file.Ogg)
	case *structure:
		printStructure(file)
	default:
		printFile(file)
	}

	if *artworkDir != "" {
		if err := writeArtwork(file, *artworkDir); err != nil {
			log.Fatal(err)
		}
	}
}

func printFile(file *audiotag.File) {
	fmt.Printf("File:    %s\n", file.Path)
	fmt.Printf("Format:  %s\n", file.Format)
	fmt.Printf("Size:    %d bytes\n", file.Size)
	fmt.Printf("Audio:   %s\n\n", file.Audio())

	fmt.Println("Tags:")
	for _, key := range file.Keys() {
		label := key
		if desc := audiotag.DescribeFrame(key); desc != "" {
			label = fmt.Sprintf("%s (%s)", key, desc)
		}
		for _, v := range file.Get(key) {
			fmt.Printf("  %-40s %s\n", label, v)
		}
	}

	if art := file.Artwork(); len(art) > 0 {
		fmt.Println("\nArtwork:")
		for i, a := range art {
			fmt.Printf("  [%d] %s\n", i+1, a)
		}
	}

	if chapters := file.Chapters(); len(chapters) > 0 {
		fmt.Println("\nChapters:")
		for _, ch := range chapters {
			fmt.Printf("  %2d. %s  %s - %s\n", ch.Index, ch.Title, ch.StartTime, ch.EndTime)
		}
	}

	if len(file.Diagnostics) > 0 {
		fmt.Println("\nDiagnostics:")
		for _, d := range file.Diagnostics {
			fmt.Printf("  %s\n", d)
		}
	}
}

func writeArtwork(file *audiotag.File, dir string) error {
	dir, err := homedir.Expand(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	paths, err := file.WriteArtwork(dir, "cover")
	for _, p := range paths {
		log.WithField("path", p).Info("wrote artwork")
	}
	return err
}

// summarise parses files concurrently and prints one line per file.
func summarise(ctx context.Context, paths []string, opts []audiotag.Option) error {
	start := time.Now()
	files, err := audiotag.OpenManyWith(ctx, paths, opts...)
	if err != nil {
		return err
	}

	var total time.Duration
	for _, f := range files {
		audio := f.Audio()
		total += audio.Duration
		fmt.Printf("%-12s %10s  %s\n", f.Format, audio.Duration.Round(time.Second), f.Path)
	}
	log.WithFields(log.Fields{
		"files":    len(files),
		"duration": total.Round(time.Second),
		"elapsed":  time.Since(start),
	}).Info("done")
	return nil
}
