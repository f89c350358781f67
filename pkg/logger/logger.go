// Package logger provides a colored slog handler for terminal output.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

var stderr io.Writer = os.Stderr

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// persistenceKeywords trigger green highlighting on info lines about
// durable writes, so store activity stands out during long runs.
var persistenceKeywords = []string{
	"persist",
	"archiv",
	"snapshot",
}

// ColorHandler is a slog.Handler that writes human-readable lines with
// ANSI colors keyed by level. Warnings are yellow, errors red, and info
// lines about persistence green.
type ColorHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	opts  slog.HandlerOptions
	attrs []slog.Attr
	group string
}

// NewColorHandler creates a ColorHandler writing to w. A nil opts uses
// the default level.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	h := &ColorHandler{
		mu: &sync.Mutex{},
		w:  w,
	}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

// NewDefaultLogger returns a slog.Logger backed by a ColorHandler on
// standard error at the given level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(stderr, &slog.HandlerOptions{Level: level}))
}

// Enabled implements slog.Handler.
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func levelColor(level slog.Level, message string) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		lower := strings.ToLower(message)
		for _, kw := range persistenceKeywords {
			if strings.Contains(lower, kw) {
				return colorGreen
			}
		}
	}
	return ""
}

// Handle implements slog.Handler.
func (h *ColorHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder

	sb.WriteString(record.Time.Format(time.RFC3339))
	sb.WriteString(" ")
	sb.WriteString(record.Level.String())
	sb.WriteString(" ")

	color := levelColor(record.Level, record.Message)
	if color != "" {
		sb.WriteString(color)
	}
	sb.WriteString(record.Message)

	writeAttr := func(a slog.Attr) {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		sb.WriteString(fmt.Sprintf(" %s=%v", key, a.Value))
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	record.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})

	if color != "" {
		sb.WriteString(colorReset)
	}
	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

// WithAttrs implements slog.Handler.
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}
