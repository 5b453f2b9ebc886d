package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Console is the human-facing side of the logger: prefixed, optionally
// coloured messages plus a few terminal widgets. Every record still goes
// through Logger so JSON output stays machine readable.
type Console struct {
	Logger      *slog.Logger
	Output      io.Writer
	Colorized   bool
	Interactive bool
	JSON        bool
}

func NewConsole(opts *RichLoggerOptions) *Console {
	if opts == nil {
		opts = DefaultOptions()
	}
	logger := NewRichLogger(opts)

	return &Console{
		Logger:      logger,
		Output:      opts.Output,
		Colorized:   opts.EnableColors && !opts.EnableJSON,
		Interactive: opts.Interactive && !opts.EnableJSON,
		JSON:        opts.EnableJSON,
	}
}

func (c *Console) StartTimer(name string) *Timer {
	return &Timer{
		Name:      name,
		StartTime: time.Now(),
		Console:   c,
	}
}

func (c *Console) decorate(prefix, color, format string, args []any) string {
	msg := fmt.Sprintf(format, args...)
	if prefix != "" && !c.JSON {
		msg = prefix + " " + msg
	}
	if c.Colorized && color != "" {
		msg = color + msg + Reset
	}
	return msg
}

func (c *Console) Success(format string, args ...any) {
	c.Logger.Info(c.decorate("✓", Green+Bold, format, args))
}

func (c *Console) Info(format string, args ...any) {
	c.Logger.Info(c.decorate("ℹ", Blue+Bold, format, args))
}

// Log emits a plain informational line.
func (c *Console) Log(format string, args ...any) {
	c.Logger.Info(c.decorate("", "", format, args))
}

func (c *Console) Warn(format string, args ...any) {
	c.Logger.Warn(c.decorate("⚠", Yellow+Bold, format, args))
}

func (c *Console) Error(format string, args ...any) {
	c.Logger.Error(c.decorate("✖", Red+Bold, format, args))
}

func (c *Console) StartSpinner(message string) *Spinner {
	s := &Spinner{
		Message: message,
		Frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		Console: c,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	s.Start()
	return s
}

func (c *Console) NewProgressBar(total int64, label string) *ProgressBar {
	return NewProgressBar(total, label, c.Output)
}

func (c *Console) NewTable(headers []string) *Table {
	return NewTable(headers, c)
}

// Box draws content inside a titled frame. In JSON mode each line becomes a
// record instead.
func (c *Console) Box(title string, content string) {
	lines := strings.Split(content, "\n")

	if c.JSON {
		for _, line := range lines {
			c.Logger.Info(line, "box", title)
		}
		return
	}

	width := len([]rune(title))
	for _, line := range lines {
		if n := len([]rune(line)); n > width {
			width = n
		}
	}
	width += 4

	var b strings.Builder
	b.WriteString("┌─" + title + "─" + strings.Repeat("─", width-len([]rune(title))-2) + "┐\n")
	for _, line := range lines {
		b.WriteString("│ " + line + strings.Repeat(" ", width-len([]rune(line))) + " │\n")
	}
	b.WriteString("└" + strings.Repeat("─", width+2) + "┘\n")
	fmt.Fprint(c.Output, b.String())
}
