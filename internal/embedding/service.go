package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/arkive-ai/arkive-backend/internal/cache"
	"github.com/arkive-ai/arkive-backend/internal/llm"
)

// Embedder turns text into vectors. Query embedding and document embedding
// must go through the same implementation so both live in one vector space.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

type Service struct {
	gateway  llm.Gateway
	model    string
	cache    *cache.Cache
	cacheTTL time.Duration
}

func NewService(gw llm.Gateway, model string, c *cache.Cache) *Service {
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &Service{
		gateway:  gw,
		model:    model,
		cache:    c,
		cacheTTL: time.Hour,
	}
}

func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	// Batch in groups of 100 for API limits
	const batchSize = 100
	var allEmbeddings [][]float32

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]

		resp, err := s.gateway.Embed(ctx, llm.EmbeddingRequest{
			Model: s.model,
			Input: batch,
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", i/batchSize, err)
		}

		allEmbeddings = append(allEmbeddings, resp.Embeddings...)
	}

	return allEmbeddings, nil
}

// EmbedSingle embeds one text, consulting the redis cache first. Chat queries
// repeat often enough that skipping the embedding call is worth a lookup.
func (s *Service) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	key := s.cacheKey(text)

	if s.cache != nil {
		var cached []float32
		if err := s.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	embeddings, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, embeddings[0], s.cacheTTL); err != nil {
			slog.Warn("embedding cache write failed", "error", err)
		}
	}

	return embeddings[0], nil
}

func (s *Service) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + s.model + ":" + hex.EncodeToString(sum[:16])
}
