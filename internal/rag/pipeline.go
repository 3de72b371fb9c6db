package rag

import (
	"context"
	"fmt"

	"github.com/arkive-ai/arkive-backend/internal/models"
	"github.com/arkive-ai/arkive-backend/internal/moderation"
	"github.com/arkive-ai/arkive-backend/internal/vectorstore"
)

// Result is the outcome of one retrieval-and-answer run.
type Result struct {
	Answer     string
	Sources    []models.Source
	Flagged    bool
	Reason     string
	Confidence float64
	Tokens     int
	CostUSD    float64
}

// Pipeline runs the moderate, retrieve, generate sequence for a single query.
// Moderation is expected to be wrapped fail-open by the caller's wiring, so a
// classifier outage degrades to pass-through instead of failing the turn.
type Pipeline struct {
	moderator moderation.Moderator
	retriever *Retriever
	generator *Generator
	topK      int
}

func NewPipeline(m moderation.Moderator, r *Retriever, g *Generator, topK int) *Pipeline {
	if topK <= 0 {
		topK = 3
	}
	return &Pipeline{moderator: m, retriever: r, generator: g, topK: topK}
}

func (p *Pipeline) Answer(ctx context.Context, query string) (*Result, error) {
	verdict, err := p.moderator.Classify(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("moderate query: %w", err)
	}
	if verdict.Flagged {
		return &Result{
			Answer:  fmt.Sprintf("Your query was flagged: %s. Please rephrase.", verdict.Reason),
			Sources: []models.Source{},
			Flagged: true,
			Reason:  verdict.Reason,
		}, nil
	}

	chunks, err := p.retriever.Retrieve(ctx, query, p.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	generated, err := p.generator.Generate(ctx, query, chunks)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	return &Result{
		Answer:     generated.Answer,
		Sources:    sourcesOf(chunks),
		Confidence: generated.Confidence,
		Tokens:     generated.Tokens,
		CostUSD:    generated.CostUSD,
	}, nil
}

func sourcesOf(chunks []vectorstore.SearchResult) []models.Source {
	sources := make([]models.Source, len(chunks))
	for i, c := range chunks {
		sources[i] = models.Source{
			Source:     c.Source,
			Page:       c.Page,
			ChunkIndex: c.ChunkIndex,
		}
	}
	return sources
}
