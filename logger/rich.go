package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
)

const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

var levelColors = map[slog.Level]string{
	slog.LevelDebug: Cyan,
	slog.LevelInfo:  Green,
	slog.LevelWarn:  Yellow,
	slog.LevelError: Red,
}

type RichLoggerOptions struct {
	Output           io.Writer
	TimeFormat       string
	Level            slog.Level
	AddSource        bool
	EnableJSON       bool
	EnableColors     bool
	ShowTime         bool
	CompactJSON      bool
	EnableSeparators bool
	// Interactive enables carriage-return widgets (spinner, progress bar).
	Interactive bool
}

// DefaultOptions returns options for a terminal on stdout. Colours and
// interactive widgets are switched off when stdout is redirected.
func DefaultOptions() *RichLoggerOptions {
	tty := IsTerminal(os.Stdout)
	return &RichLoggerOptions{
		Output:       os.Stdout,
		TimeFormat:   "15:04:05.000",
		Level:        slog.LevelInfo,
		EnableColors: tty,
		ShowTime:     true,
		CompactJSON:  true,
		Interactive:  tty,
	}
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

type RichHandler struct {
	opts  *RichLoggerOptions
	mu    *sync.Mutex
	attrs []slog.Attr
	group string
}

func NewRichHandler(opts *RichLoggerOptions) *RichHandler {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &RichHandler{opts: opts, mu: &sync.Mutex{}}
}

func (h *RichHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

func (h *RichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append(append([]slog.Attr(nil), h.attrs...), h.qualify(attrs)...)
	return &h2
}

func (h *RichHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	if h2.group != "" {
		h2.group += "." + name
	} else {
		h2.group = name
	}
	return &h2
}

func (h *RichHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
	}
	return out
}

func (h *RichHandler) Handle(_ context.Context, record slog.Record) error {
	attrs := append([]slog.Attr(nil), h.attrs...)
	var own []slog.Attr
	record.Attrs(func(a slog.Attr) bool {
		own = append(own, a)
		return true
	})
	attrs = append(attrs, h.qualify(own)...)

	var line string
	if h.opts.EnableJSON {
		b, err := h.renderJSON(record, attrs)
		if err != nil {
			return err
		}
		line = string(b)
	} else {
		line = h.renderText(record, attrs)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.opts.Output, line)
	return err
}

func (h *RichHandler) renderJSON(record slog.Record, attrs []slog.Attr) ([]byte, error) {
	m := make(map[string]any, len(attrs)+4)
	if h.opts.ShowTime {
		m["time"] = record.Time.Format(h.opts.TimeFormat)
	}
	m["level"] = record.Level.String()
	if src := h.source(record); src != "" {
		m["source"] = src
	}
	m["msg"] = record.Message
	for _, a := range attrs {
		m[a.Key] = a.Value.Resolve().Any()
	}
	if h.opts.CompactJSON {
		return json.Marshal(m)
	}
	return json.MarshalIndent(m, "", "  ")
}

func (h *RichHandler) renderText(record slog.Record, attrs []slog.Attr) string {
	var b strings.Builder

	if h.opts.ShowTime {
		b.WriteString(h.paint(Blue, record.Time.Format(h.opts.TimeFormat)))
		b.WriteByte(' ')
	}

	level := fmt.Sprintf("%-5s", strings.ToUpper(record.Level.String()))
	b.WriteString(h.paint(levelColors[record.Level]+Bold, level))
	b.WriteByte(' ')

	if src := h.source(record); src != "" {
		if i := strings.LastIndex(src, "/"); i >= 0 {
			src = src[i+1:]
		}
		b.WriteString(h.paint(Magenta, src))
		b.WriteByte(' ')
	}

	b.WriteString(record.Message)

	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(h.paint(Cyan, a.Key+"="))
		b.WriteString(a.Value.Resolve().String())
	}

	if h.opts.EnableSeparators {
		b.WriteByte('\n')
		b.WriteString(h.paint(Blue, strings.Repeat("─", 80)))
	}
	return b.String()
}

func (h *RichHandler) source(record slog.Record) string {
	if !h.opts.AddSource || record.PC == 0 {
		return ""
	}
	fs := runtime.CallersFrames([]uintptr{record.PC})
	f, _ := fs.Next()
	return fmt.Sprintf("%s:%d", f.File, f.Line)
}

func (h *RichHandler) paint(color, s string) string {
	if !h.opts.EnableColors || color == "" {
		return s
	}
	return color + s + Reset
}

func NewRichLogger(opts *RichLoggerOptions) *slog.Logger {
	return slog.New(NewRichHandler(opts))
}
