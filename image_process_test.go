package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"convert-images/logger"

	"github.com/disintegration/imaging"
)

func newTestConsole(buf *bytes.Buffer) *logger.Console {
	return logger.NewConsole(&logger.RichLoggerOptions{
		Output:     buf,
		TimeFormat: "15:04:05",
		Level:      slog.LevelInfo,
	})
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		name, format, want string
	}{
		{"photo.jpg", ".png", "photo.png"},
		{"a.b.c.jpg", ".png", "a.png"},
		{"photo.v2.jpg", ".bmp", "photo.bmp"},
		{"README", ".png", "README.png"},
		{".hidden.png", ".jpg", ".jpg"},
	}
	for _, tt := range tests {
		if got := OutputName(tt.name, tt.format); got != tt.want {
			t.Errorf("OutputName(%q, %q) = %q, want %q", tt.name, tt.format, got, tt.want)
		}
	}
}

func TestOutputPathIsFlat(t *testing.T) {
	got := OutputPath("/out", filepath.Join("input", "sub", "dir", "x.jpg"), ".png")
	if want := filepath.Join("/out", "x.png"); got != want {
		t.Fatalf("OutputPath = %q, want %q", got, want)
	}
}

func TestProcessorSkipsUndecodableFiles(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	writeFile(t, filepath.Join(in, "broken.jpg"), "garbage")
	writeJPEG(t, filepath.Join(in, "nested", "deep", "good.jpg"), solidRGBA(100, 50))
	writeBMP(t, filepath.Join(in, "scans", "scan.BMP"), solidRGBA(40, 30))
	writeFile(t, filepath.Join(in, "readme.txt"), "not an image")

	cfg := &Config{
		InputDirectory:  in,
		OutputDirectory: out,
		OutputFormat:    ".png",
		Suffixes:        DefaultSuffixes,
		Quality:         95,
		QualityAlpha:    80,
		Speed:           6,
		LogFormat:       "text",
	}

	var buf bytes.Buffer
	stats, err := NewProcessor(cfg, newTestConsole(&buf)).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.TotalFiles != 3 || stats.ConvertedFiles != 2 || stats.SkippedFiles != 1 || stats.FailedWrites != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	if got := listDir(t, out); len(got) != 2 || got[0] != "good.png" || got[1] != "scan.png" {
		t.Fatalf("output dir = %q, want [good.png scan.png]", got)
	}

	img, err := imaging.Open(filepath.Join(out, "good.png"))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("output size = %dx%d, want 100x50", b.Dx(), b.Dy())
	}

	log := buf.String()
	for _, want := range []string{
		"Searching for images in " + in + " ...",
		"Found 3 files, now converting ...",
		"Processing " + filepath.Join(in, "broken.jpg") + " - unable to read, skipping...",
		"Processing " + filepath.Join(in, "nested", "deep", "good.jpg") + ", width = 100, height = 50, channels = 3, type = 0x10",
		"Processing " + filepath.Join(in, "scans", "scan.BMP") + ", width = 40, height = 30, channels = 3, type = 0x10",
		"Processing Summary:",
	} {
		if !strings.Contains(log, want) {
			t.Errorf("console output missing %q\n%s", want, log)
		}
	}
	if strings.Contains(log, "readme.txt") {
		t.Errorf("console output mentions a non-image file:\n%s", log)
	}
}

func TestProcessorFirstDotCollision(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	// Both names truncate to "a"; the later file in walk order wins.
	writePNG(t, filepath.Join(in, "a.b.png"), solidRGBA(10, 10))
	writePNG(t, filepath.Join(in, "a.c.png"), solidRGBA(20, 10))

	cfg := &Config{
		InputDirectory:  in,
		OutputDirectory: out,
		OutputFormat:    ".bmp",
		Suffixes:        DefaultSuffixes,
		Quality:         95,
		LogFormat:       "text",
	}

	var buf bytes.Buffer
	stats, err := NewProcessor(cfg, newTestConsole(&buf)).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.ConvertedFiles != 2 {
		t.Fatalf("converted = %d, want 2", stats.ConvertedFiles)
	}

	if got := listDir(t, out); len(got) != 1 || got[0] != "a.bmp" {
		t.Fatalf("output dir = %q, want [a.bmp]", got)
	}
	img, err := imaging.Open(filepath.Join(out, "a.bmp"))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	if img.Bounds().Dx() != 20 {
		t.Fatalf("a.bmp width = %d, want 20 (from a.c.png)", img.Bounds().Dx())
	}
}

func TestProcessorReportsWriteFailures(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "gone")

	writePNG(t, filepath.Join(in, "x.png"), solidRGBA(3, 3))

	cfg := &Config{
		InputDirectory:  in,
		OutputDirectory: out,
		OutputFormat:    ".png",
		Suffixes:        DefaultSuffixes,
		Quiet:           true,
		LogFormat:       "text",
	}

	var buf bytes.Buffer
	stats, err := NewProcessor(cfg, newTestConsole(&buf)).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FailedWrites != 1 || stats.ConvertedFiles != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if !strings.Contains(buf.String(), "unable to write") {
		t.Fatalf("write failure not reported:\n%s", buf.String())
	}
}

func TestProcessorMissingInput(t *testing.T) {
	cfg := &Config{
		InputDirectory:  filepath.Join(t.TempDir(), "nope"),
		OutputDirectory: t.TempDir(),
		OutputFormat:    ".png",
		Suffixes:        DefaultSuffixes,
		LogFormat:       "text",
	}

	var buf bytes.Buffer
	if _, err := NewProcessor(cfg, newTestConsole(&buf)).Run(); err == nil {
		t.Fatalf("expected an error for a missing input directory")
	}
}

func TestProcessorQuietProgressKeepsWarningsOnOwnLine(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	writePNG(t, filepath.Join(in, "a.png"), solidRGBA(4, 4))
	writeFile(t, filepath.Join(in, "b.jpg"), "garbage")
	writePNG(t, filepath.Join(in, "c.png"), solidRGBA(4, 4))

	cfg := &Config{
		InputDirectory:  in,
		OutputDirectory: out,
		OutputFormat:    ".png",
		Suffixes:        DefaultSuffixes,
		Quiet:           true,
		LogFormat:       "text",
	}

	var buf bytes.Buffer
	console := logger.NewConsole(&logger.RichLoggerOptions{
		Output:      &buf,
		Level:       slog.LevelInfo,
		Interactive: true,
	})

	stats, err := NewProcessor(cfg, console).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.ConvertedFiles != 2 || stats.SkippedFiles != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	log := buf.String()
	warn := strings.Index(log, "WARN")
	if warn < 0 {
		t.Fatalf("skip not reported:\n%q", log)
	}
	if !strings.HasSuffix(log[:warn], "\r\033[K") {
		t.Fatalf("warning written into the progress bar line:\n%q", log)
	}
	if !strings.Contains(log[warn:], "3/3") {
		t.Fatalf("progress bar not redrawn after the warning:\n%q", log)
	}
	if strings.Contains(log, "type = 0x") {
		t.Fatalf("quiet run printed per-file lines:\n%q", log)
	}
}
