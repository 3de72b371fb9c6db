package vectorstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreUpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	docID := uuid.New()

	first := []Chunk{
		{DocID: docID, ChunkIndex: 0, Content: "v1", Source: "a.pdf", Embedding: []float32{1, 0}},
		{DocID: docID, ChunkIndex: 1, Content: "v1", Source: "a.pdf", Embedding: []float32{0, 1}},
	}
	require.NoError(t, store.Upsert(ctx, first))

	second := []Chunk{
		{DocID: docID, ChunkIndex: 0, Content: "v2", Source: "a.pdf", Embedding: []float32{1, 0}},
		{DocID: docID, ChunkIndex: 1, Content: "v2", Source: "a.pdf", Embedding: []float32{0, 1}},
	}
	require.NoError(t, store.Upsert(ctx, second))

	assert.Equal(t, 2, store.Len())

	results, err := store.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "v2", results[0].Content)
}

func TestMemoryStoreSearchOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	docID := uuid.New()

	chunks := []Chunk{
		{DocID: docID, ChunkIndex: 0, Content: "exact", Embedding: []float32{1, 0, 0}},
		{DocID: docID, ChunkIndex: 1, Content: "close", Embedding: []float32{0.9, 0.1, 0}},
		{DocID: docID, ChunkIndex: 2, Content: "far", Embedding: []float32{0, 0, 1}},
	}
	require.NoError(t, store.Upsert(ctx, chunks))

	results, err := store.Search(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "exact", results[0].Content)
	assert.Equal(t, "close", results[1].Content)
	assert.Equal(t, "far", results[2].Content)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestMemoryStoreSearchTieBreakInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Same embedding, so identical scores; insertion order decides.
	require.NoError(t, store.Upsert(ctx, []Chunk{
		{DocID: uuid.New(), ChunkIndex: 0, Content: "first", Embedding: []float32{1, 1}},
	}))
	require.NoError(t, store.Upsert(ctx, []Chunk{
		{DocID: uuid.New(), ChunkIndex: 0, Content: "second", Embedding: []float32{1, 1}},
	}))

	results, err := store.Search(ctx, []float32{1, 1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Content)
	assert.Equal(t, "second", results[1].Content)
}

func TestMemoryStoreSearchLimits(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	empty, err := store.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, store.Upsert(ctx, []Chunk{
		{DocID: uuid.New(), ChunkIndex: 0, Content: "only", Embedding: []float32{1, 0}},
	}))

	zero, err := store.Search(ctx, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, zero)

	all, err := store.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryStoreDeleteExpiredKeepsPermanent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	old := time.Now().UTC().Add(-8 * 24 * time.Hour)

	require.NoError(t, store.Upsert(ctx, []Chunk{
		{DocID: uuid.New(), ChunkIndex: 0, Content: "ephemeral", Embedding: []float32{1, 0}, UploadedAt: old},
		{DocID: uuid.New(), ChunkIndex: 0, Content: "permanent", IsPermanent: true, Embedding: []float32{0, 1}, UploadedAt: old},
		{DocID: uuid.New(), ChunkIndex: 0, Content: "fresh", Embedding: []float32{1, 1}},
	}))

	cutoff := time.Now().UTC().Add(-7 * 24 * time.Hour)
	dropped, err := store.DeleteExpired(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dropped)
	assert.Equal(t, 2, store.Len())

	n, err := store.CountBySource(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryStoreDeleteByDocument(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	keep := uuid.New()
	drop := uuid.New()

	require.NoError(t, store.Upsert(ctx, []Chunk{
		{DocID: keep, ChunkIndex: 0, Content: "keep", Embedding: []float32{1, 0}},
		{DocID: drop, ChunkIndex: 0, Content: "drop", Embedding: []float32{0, 1}},
		{DocID: drop, ChunkIndex: 1, Content: "drop too", Embedding: []float32{0, 1}},
	}))

	require.NoError(t, store.DeleteByDocument(ctx, drop))
	assert.Equal(t, 1, store.Len())
}
