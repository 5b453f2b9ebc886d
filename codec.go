package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/avif"
	_ "golang.org/x/image/webp"
)

var (
	// ErrDecodeFailed marks a file the codec could not turn into pixels.
	ErrDecodeFailed = errors.New("unable to decode image")
	// ErrUnsupportedFormat is returned for output extensions without an encoder.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// PixelDepth is the bit width of a single sample.
type PixelDepth int

const (
	Depth8  PixelDepth = 8
	Depth16 PixelDepth = 16
)

// ImageRecord is one decoded file. It lives for a single loop iteration.
type ImageRecord struct {
	SourcePath string
	Image      image.Image
	Width      int
	Height     int
	Channels   int
	Depth      PixelDepth
}

// Type packs depth and channel count into a single code: the low three bits
// hold the depth (0 for 8-bit, 2 for 16-bit samples) and the remaining bits
// hold channels-1, so an 8-bit RGB image is 0x10.
func (r *ImageRecord) Type() int {
	depth := 0
	if r.Depth == Depth16 {
		depth = 2
	}
	return depth | (r.Channels-1)<<3
}

type Codec struct {
	Quality int
	AVIF    avif.Options
}

type encodeFunc func(w io.Writer, img image.Image) error

func NewCodec(cfg *Config) *Codec {
	return &Codec{
		Quality: cfg.Quality,
		AVIF:    cfg.GetEncodingOptions(),
	}
}

// SupportsOutput reports whether ext (with its leading dot) can be encoded.
func SupportsOutput(ext string) bool {
	_, err := (&Codec{}).encoderFor(ext)
	return err == nil
}

func (c *Codec) encoderFor(ext string) (encodeFunc, error) {
	ext = strings.ToLower(ext)
	if ext == ".avif" {
		return func(w io.Writer, img image.Image) error {
			return avif.Encode(w, img, c.AVIF)
		}, nil
	}

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return func(w io.Writer, img image.Image) error {
		return imaging.Encode(w, img, format, imaging.JPEGQuality(c.Quality))
	}, nil
}

// Decode reads path into memory. Every failure, including a file that cannot
// be opened, is reported as ErrDecodeFailed.
func (c *Codec) Decode(path string) (*ImageRecord, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, path, err)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %s: empty image", ErrDecodeFailed, path)
	}

	channels, depth := pixelLayout(img)
	return &ImageRecord{
		SourcePath: path,
		Image:      img,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Channels:   channels,
		Depth:      depth,
	}, nil
}

// Encode writes rec to dst in the format named by dst's extension. The data
// goes to a temporary file next to dst first and is renamed into place, so a
// failed encode never leaves a partial file and an existing dst is replaced.
func (c *Codec) Encode(rec *ImageRecord, dst string) (err error) {
	encode, err := c.encoderFor(filepath.Ext(dst))
	if err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(filepath.Dir(dst), ".convert-*"+filepath.Ext(dst))
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if err != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if err = encode(tempFile, rec.Image); err != nil {
		return fmt.Errorf("error encoding %s: %w", filepath.Ext(dst), err)
	}
	// CreateTemp uses 0600; give the result the mode a plain create would.
	if err = tempFile.Chmod(outputMode(dst)); err != nil {
		return fmt.Errorf("error setting file mode: %w", err)
	}
	if err = tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}
	if err = os.Rename(tempPath, dst); err != nil {
		return fmt.Errorf("error renaming file: %w", err)
	}
	return nil
}

// outputMode keeps the permissions of a file being replaced and otherwise
// uses 0644.
func outputMode(dst string) os.FileMode {
	if info, err := os.Stat(dst); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	return 0o644
}

func pixelLayout(img image.Image) (int, PixelDepth) {
	switch m := img.(type) {
	case *image.Gray, *image.Alpha:
		return 1, Depth8
	case *image.Gray16, *image.Alpha16:
		return 1, Depth16
	case *image.YCbCr:
		return 3, Depth8
	case *image.NYCbCrA, *image.CMYK:
		return 4, Depth8
	case *image.RGBA64:
		return colorChannels(m.Opaque()), Depth16
	case *image.NRGBA64:
		return colorChannels(m.Opaque()), Depth16
	case interface{ Opaque() bool }:
		return colorChannels(m.Opaque()), Depth8
	default:
		return 3, Depth8
	}
}

func colorChannels(opaque bool) int {
	if opaque {
		return 3
	}
	return 4
}
