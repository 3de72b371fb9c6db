package rag

import (
	"context"
	"fmt"

	"github.com/arkive-ai/arkive-backend/internal/embedding"
	"github.com/arkive-ai/arkive-backend/internal/vectorstore"
)

// Retriever embeds a query and fetches the nearest chunks. It never mutates
// the index; ranking is the vector store's job.
type Retriever struct {
	store    vectorstore.VectorStore
	embedder embedding.Embedder
}

func NewRetriever(store vectorstore.VectorStore, embedder embedding.Embedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]vectorstore.SearchResult, error) {
	queryVec, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.store.Search(ctx, queryVec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return results, nil
}
