// Package summarizer shortens paper abstracts for the feed.
package summarizer

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// NoContent is the summary of an empty abstract.
	NoContent = "No content available"

	truncateRunes = 200
)

// Summarizer produces a short summary of an abstract.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Truncate is the summary used when no model is available: the first 200
// characters of the trimmed text followed by "...".
func Truncate(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return NoContent
	}
	runes := []rune(text)
	if len(runes) > truncateRunes {
		runes = runes[:truncateRunes]
	}
	return string(runes) + "..."
}

// Truncator summarizes by truncation only.
type Truncator struct{}

// Summarize implements Summarizer.
func (Truncator) Summarize(_ context.Context, text string) (string, error) {
	return Truncate(text), nil
}

// Fallback wraps a model summarizer and degrades to Truncate when it fails.
type Fallback struct {
	primary Summarizer
	logger  *slog.Logger
}

// NewFallback creates a Fallback around primary.
func NewFallback(primary Summarizer, logger *slog.Logger) *Fallback {
	return &Fallback{primary: primary, logger: logger}
}

// Summarize implements Summarizer. It never returns an error.
func (f *Fallback) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return NoContent, nil
	}

	summary, err := f.primary.Summarize(ctx, text)
	if err != nil {
		f.logger.WarnContext(ctx, "summarizer failed, truncating", "error", err)
		return Truncate(text), nil
	}
	return summary, nil
}
