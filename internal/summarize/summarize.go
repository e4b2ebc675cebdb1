package summarize

import (
	"context"

	"docvault/internal/model"
)

// Summarizer produces a short summary and a derived title from input text.
// The contract guarantees nothing about determinism or latency beyond
// "eventually resolves or fails"; callers bound it with a context deadline.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (*model.SummaryResult, error)
}
