package vectorstore

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Chunk is an embedded segment of a document. (DocID, ChunkIndex) is the
// upsert key: re-ingesting the same position overwrites rather than duplicates.
type Chunk struct {
	DocID       uuid.UUID
	ChunkIndex  int
	Content     string
	Source      string
	Page        int
	IsPermanent bool
	Embedding   []float32
	UploadedAt  time.Time
}

// SearchResult is one retrieved chunk with its similarity score.
type SearchResult struct {
	Content    string  `json:"text"`
	Source     string  `json:"source"`
	Page       int     `json:"page"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// VectorStore owns chunk embeddings. Search returns up to topK results ranked
// by similarity descending with a deterministic tie-break; an empty index
// returns an empty slice, never an error.
type VectorStore interface {
	Upsert(ctx context.Context, chunks []Chunk) error
	Search(ctx context.Context, query []float32, topK int) ([]SearchResult, error)
	DeleteByDocument(ctx context.Context, docID uuid.UUID) error
	CountBySource(ctx context.Context, source string) (int, error)
	// DeleteExpired removes non-permanent chunks uploaded before cutoff and
	// reports how many were dropped. Permanent chunks are never touched.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
