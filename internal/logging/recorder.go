package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Recorder is a slog.Handler that keeps formatted records in memory until
// they are flushed.
type Recorder struct {
	mu    *sync.Mutex
	buf   *bytes.Buffer
	inner slog.Handler
}

// NewRecorder creates a Recorder that keeps records at or above level.
func NewRecorder(level slog.Level) *Recorder {
	buf := &bytes.Buffer{}
	return &Recorder{
		mu:    &sync.Mutex{},
		buf:   buf,
		inner: slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level}),
	}
}

func (r *Recorder) Enabled(ctx context.Context, level slog.Level) bool {
	return r.inner.Enabled(ctx, level)
}

func (r *Recorder) Handle(ctx context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inner.Handle(ctx, rec)
}

func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Recorder{mu: r.mu, buf: r.buf, inner: r.inner.WithAttrs(attrs)}
}

func (r *Recorder) WithGroup(name string) slog.Handler {
	return &Recorder{mu: r.mu, buf: r.buf, inner: r.inner.WithGroup(name)}
}

// Len returns the number of buffered bytes.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Len()
}

// FlushTo writes the buffered session to w and resets the buffer.
func (r *Recorder) FlushTo(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := w.Write(r.buf.Bytes()); err != nil {
		return fmt.Errorf("flush session log: %w", err)
	}
	r.buf.Reset()
	return nil
}

// FlushFile appends the buffered session to path, creating its directory.
func (r *Recorder) FlushFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create session log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	if err := r.FlushTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Tee fans records out to several handlers.
type Tee struct {
	handlers []slog.Handler
}

// NewTee creates a handler that forwards to each of hs.
func NewTee(hs ...slog.Handler) *Tee {
	return &Tee{handlers: hs}
}

func (t *Tee) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *Tee) Handle(ctx context.Context, rec slog.Record) error {
	var firstErr error
	for _, h := range t.handlers {
		if !h.Enabled(ctx, rec.Level) {
			continue
		}
		if err := h.Handle(ctx, rec.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *Tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &Tee{handlers: hs}
}

func (t *Tee) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &Tee{handlers: hs}
}
