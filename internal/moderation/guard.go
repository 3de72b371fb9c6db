package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/arkive-ai/arkive-backend/internal/llm"
)

// Guard delegates classification to a hosted safety model (Llama Guard).
// The model answers "safe" or "unsafe" followed by a category code such as S6.
type Guard struct {
	gateway llm.Gateway
	model   string
}

func NewGuard(gw llm.Gateway, model string) *Guard {
	if model == "" {
		model = "llama-guard-3-8b"
	}
	return &Guard{gateway: gw, model: model}
}

func (g *Guard) Name() string { return "guard" }

func (g *Guard) Classify(ctx context.Context, query string) (*Result, error) {
	resp, err := g.gateway.Chat(ctx, llm.ChatRequest{
		Model: g.model,
		Messages: []llm.Message{
			{Role: "user", Content: query},
		},
		MaxTokens: 10,
	})
	if err != nil {
		return nil, fmt.Errorf("guard classify: %w", err)
	}

	verdict := strings.ToLower(strings.TrimSpace(resp.Content))
	if !strings.HasPrefix(verdict, "unsafe") {
		return &Result{Flagged: false}, nil
	}

	category := "unsafe content"
	if _, rest, ok := strings.Cut(verdict, "\n"); ok {
		if c := strings.TrimSpace(rest); c != "" {
			category = strings.ToUpper(c)
		}
	}

	return &Result{
		Flagged: true,
		Reason:  fmt.Sprintf("Content policy violation detected (%s)", category),
	}, nil
}
