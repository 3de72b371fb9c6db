package moderation

import (
	"context"
	"log/slog"
)

// Result is the verdict for a single query.
type Result struct {
	Flagged bool   `json:"is_flagged"`
	Reason  string `json:"reason,omitempty"`
}

// Moderator screens a query before any retrieval happens. Implementations are
// interchangeable: a keyword matcher and an LLM-backed classifier both satisfy
// this interface.
type Moderator interface {
	Classify(ctx context.Context, query string) (*Result, error)
	Name() string
}

// FailOpen wraps a Moderator so that classifier failures never block a chat
// turn: on error the query is treated as not flagged and the failure is logged
// for operators to catch degradation.
type FailOpen struct {
	inner Moderator
}

func NewFailOpen(inner Moderator) *FailOpen {
	return &FailOpen{inner: inner}
}

func (f *FailOpen) Name() string { return f.inner.Name() }

func (f *FailOpen) Classify(ctx context.Context, query string) (*Result, error) {
	result, err := f.inner.Classify(ctx, query)
	if err != nil {
		slog.Warn("moderation failed open", "moderator", f.inner.Name(), "error", err)
		return &Result{Flagged: false}, nil
	}
	return result, nil
}
