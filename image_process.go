package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"convert-images/logger"
)

type Processor struct {
	Config  *Config
	Codec   *Codec
	Console *logger.Console

	bar *logger.ProgressBar
}

// ProcessStats is collected by a single sequential pass, so it needs no lock.
type ProcessStats struct {
	TotalFiles      int
	ConvertedFiles  int
	SkippedFiles    int
	FailedWrites    int
	TotalInputSize  int64
	TotalOutputSize int64
	Elapsed         time.Duration
}

func NewProcessor(cfg *Config, console *logger.Console) *Processor {
	return &Processor{
		Config:  cfg,
		Codec:   NewCodec(cfg),
		Console: console,
	}
}

// OutputName keeps the part of name before its first dot and appends format.
// A name without a dot is used whole: "photo.v2.jpg" gives "photo.png", and
// "README" gives "README.png".
func OutputName(name, format string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return name + format
}

// OutputPath places the converted file for src directly in dir. The input
// tree's subdirectories are not recreated.
func OutputPath(dir, src, format string) string {
	return filepath.Join(dir, OutputName(filepath.Base(src), format))
}

// Run walks the input directory and converts every matching file in turn.
// Per-file failures are reported and counted but never returned; an error
// means the run could not start.
func (p *Processor) Run() (*ProcessStats, error) {
	cfg := p.Config

	if !cfg.Quiet {
		p.Console.Box("convert-images "+Version, fmt.Sprintf(
			"input:  %s\noutput: %s\nformat: %s\nmatch:  %s",
			cfg.InputDirectory, cfg.OutputDirectory, cfg.OutputFormat,
			strings.Join(cfg.Suffixes, " ")))
	}

	timer := p.Console.StartTimer("Conversion")

	spinner := p.Console.StartSpinner(fmt.Sprintf("Searching for images in %s ...", cfg.InputDirectory))
	files, err := FindImages(cfg.InputDirectory, cfg.Suffixes)
	if err != nil {
		spinner.Stop(false, "Search failed")
		return nil, err
	}
	spinner.Stop(true, fmt.Sprintf("Found %d files, now converting ...", len(files)))

	stats := &ProcessStats{TotalFiles: len(files)}

	if cfg.Quiet && p.Console.Interactive && len(files) > 0 {
		p.bar = p.Console.NewProgressBar(int64(len(files)), "Converting images")
		defer func() { p.bar = nil }()
	}

	for _, file := range files {
		p.processFile(file, stats)
		if p.bar != nil {
			p.bar.Increment(1)
		}
	}
	if p.bar != nil {
		p.bar.Complete()
	}

	stats.Elapsed = timer.End()
	p.displayResults(stats)

	return stats, nil
}

func (p *Processor) processFile(file string, stats *ProcessStats) {
	var line strings.Builder
	line.WriteString("Processing " + file)

	rec, err := p.Codec.Decode(file)
	if err != nil {
		stats.SkippedFiles++
		line.WriteString(" - unable to read, skipping...")
		p.clearProgress()
		p.Console.Warn("%s", line.String())
		return
	}

	fmt.Fprintf(&line, ", width = %d, height = %d, channels = %d, type = 0x%x",
		rec.Width, rec.Height, rec.Channels, rec.Type())

	dst := OutputPath(p.Config.OutputDirectory, rec.SourcePath, p.Config.OutputFormat)
	if err := p.Codec.Encode(rec, dst); err != nil {
		stats.FailedWrites++
		p.clearProgress()
		p.Console.Error("%s - unable to write %s: %v", line.String(), dst, err)
		return
	}

	stats.ConvertedFiles++
	stats.TotalInputSize += fileSize(rec.SourcePath)
	stats.TotalOutputSize += fileSize(dst)

	if !p.Config.Quiet {
		p.Console.Log("%s", line.String())
	}
}

// clearProgress makes room for a message while the progress bar is shown.
func (p *Processor) clearProgress() {
	if p.bar != nil {
		p.bar.Clear()
	}
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func (p *Processor) displayResults(stats *ProcessStats) {
	table := p.Console.NewTable([]string{"Metric", "Value"})
	table.AddRow("Found files", fmt.Sprintf("%d", stats.TotalFiles))
	table.AddRow("Converted files", fmt.Sprintf("%d/%d", stats.ConvertedFiles, stats.TotalFiles))
	table.AddRow("Skipped files", fmt.Sprintf("%d", stats.SkippedFiles))
	table.AddRow("Write failures", fmt.Sprintf("%d", stats.FailedWrites))
	table.AddRow("Input size", fmt.Sprintf("%.2f MB", float64(stats.TotalInputSize)/1024/1024))
	table.AddRow("Output size", fmt.Sprintf("%.2f MB", float64(stats.TotalOutputSize)/1024/1024))
	table.AddRow("Elapsed", logger.FormatDuration(stats.Elapsed))

	p.Console.Info("Processing Summary:")
	table.Print()
}
