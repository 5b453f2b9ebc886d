package main

import (
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"convert-images/logger"

	"github.com/gen2brain/avif"
	"github.com/spf13/cobra"
)

// Config is the conversion request assembled from the command line. It is
// not modified after validation.
type Config struct {
	InputDirectory  string
	OutputDirectory string
	OutputFormat    string
	Suffixes        []string
	Quality         int
	QualityAlpha    int
	Speed           int
	Quiet           bool
	NoColor         bool
	LogFormat       string
}

var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const usageHint = "> convert-images -i=/path/to/input -o=/path/to/output -f=.png"

// NewRootCommand builds the convert-images command. Flags are bound to cfg;
// convert runs once cfg has passed validation.
func NewRootCommand(cfg *Config, convert func(*Config) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert-images",
		Short: "Batch-convert images",
		Long: `Batch-convert images.

Recursively searches the input directory for files ending in one of the
--match suffixes, decodes each one and writes it to the output directory
as <name before the first dot><output format>. Files that cannot be
decoded are reported and skipped.`,
		Example: "  convert-images -i=/path/to/input -o=/path/to/output -f=.png",
		Version: Version,
		Args:    cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return convert(cfg)
		},
	}

	cmd.SetVersionTemplate(fmt.Sprintf(
		"convert-images %s\nBuild date: %s\nGit commit: %s\n", Version, BuildDate, GitCommit))

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.StringVarP(&cfg.InputDirectory, "input-directory", "i", "", "The directory where to search for input files")
	flags.StringVarP(&cfg.OutputDirectory, "output-directory", "o", "", "The directory where to write the output files")
	flags.StringVarP(&cfg.OutputFormat, "output-format", "f", "", "The output image format (for example, .png)")
	flags.StringSliceVar(&cfg.Suffixes, "match", DefaultSuffixes, "Case-sensitive file name endings to convert")
	flags.IntVar(&cfg.Quality, "quality", 95, "JPEG and AVIF quality (0-100, higher is better)")
	flags.IntVar(&cfg.QualityAlpha, "quality-alpha", 80, "AVIF alpha channel quality (0-100)")
	flags.IntVar(&cfg.Speed, "speed", 6, "AVIF encoding speed (0-10, lower is better quality but slower)")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Only report skipped files and the summary")
	flags.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output")
	flags.StringVar(&cfg.LogFormat, "log-format", "text", "Console format: text or json")

	for _, name := range []string{"input-directory", "output-directory", "output-format"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	return cmd
}

func (cfg *Config) validate() error {
	if cfg.InputDirectory == "" {
		return fmt.Errorf("input-directory must not be empty")
	}
	if cfg.OutputDirectory == "" {
		return fmt.Errorf("output-directory must not be empty")
	}
	if !strings.HasPrefix(cfg.OutputFormat, ".") || len(cfg.OutputFormat) < 2 {
		return fmt.Errorf("output-format must be an extension with a leading dot, got %q", cfg.OutputFormat)
	}
	if !SupportsOutput(cfg.OutputFormat) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, cfg.OutputFormat)
	}
	if len(cfg.Suffixes) == 0 {
		return fmt.Errorf("match must name at least one suffix")
	}
	if cfg.Quality < 0 || cfg.Quality > 100 {
		return fmt.Errorf("quality must be in range 0-100")
	}
	if cfg.QualityAlpha < 0 || cfg.QualityAlpha > 100 {
		return fmt.Errorf("alpha quality must be in range 0-100")
	}
	if cfg.Speed < 0 || cfg.Speed > 10 {
		return fmt.Errorf("encoding speed must be in range 0-10")
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("log-format must be text or json, got %q", cfg.LogFormat)
	}

	info, err := os.Stat(cfg.OutputDirectory)
	if err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory %s is not a directory", cfg.OutputDirectory)
	}
	return nil
}

func (cfg *Config) GetEncodingOptions() avif.Options {
	return avif.Options{
		Quality:           cfg.Quality,
		QualityAlpha:      cfg.QualityAlpha,
		Speed:             cfg.Speed,
		ChromaSubsampling: image.YCbCrSubsampleRatio420,
	}
}

// NewConsole builds the console for a run writing to out. Colours and
// interactive widgets need out to be a terminal.
func (cfg *Config) NewConsole(out io.Writer) *logger.Console {
	opts := logger.DefaultOptions()
	opts.Output = out

	f, ok := out.(*os.File)
	tty := ok && logger.IsTerminal(f)
	opts.EnableColors = tty && !cfg.NoColor
	opts.Interactive = tty
	opts.EnableJSON = cfg.LogFormat == "json"

	return logger.NewConsole(opts)
}
