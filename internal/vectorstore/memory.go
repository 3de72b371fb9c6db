package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type chunkKey struct {
	docID uuid.UUID
	index int
}

type memEntry struct {
	chunk Chunk
	seq   int // insertion order, stable across upserts of the same key
}

// MemoryStore is an in-process VectorStore using exact cosine similarity.
// It backs tests and key-less local runs; production uses PgVectorStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[chunkKey]*memEntry
	nextSeq int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[chunkKey]*memEntry)}
}

func (s *MemoryStore) Upsert(_ context.Context, chunks []Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if c.UploadedAt.IsZero() {
			c.UploadedAt = time.Now().UTC()
		}
		key := chunkKey{docID: c.DocID, index: c.ChunkIndex}
		if existing, ok := s.entries[key]; ok {
			existing.chunk = c // last write wins, insertion order kept
			continue
		}
		s.entries[key] = &memEntry{chunk: c, seq: s.nextSeq}
		s.nextSeq++
	}
	return nil
}

func (s *MemoryStore) Search(_ context.Context, query []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		return []SearchResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		result SearchResult
		seq    int
	}

	var candidates []scored
	for _, e := range s.entries {
		score, err := cosineSimilarity(query, e.chunk.Embedding)
		if err != nil {
			continue
		}
		candidates = append(candidates, scored{
			result: SearchResult{
				Content:    e.chunk.Content,
				Source:     e.chunk.Source,
				Page:       e.chunk.Page,
				ChunkIndex: e.chunk.ChunkIndex,
				Score:      score,
			},
			seq: e.seq,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].result.Score != candidates[j].result.Score {
			return candidates[i].result.Score > candidates[j].result.Score
		}
		return candidates[i].seq < candidates[j].seq
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	results := make([]SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = c.result
	}
	return results, nil
}

func (s *MemoryStore) DeleteByDocument(_ context.Context, docID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if key.docID == docID {
			delete(s.entries, key)
		}
	}
	return nil
}

func (s *MemoryStore) CountBySource(_ context.Context, source string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.entries {
		if e.chunk.Source == source {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped int64
	for key, e := range s.entries {
		if !e.chunk.IsPermanent && e.chunk.UploadedAt.Before(cutoff) {
			delete(s.entries, key)
			dropped++
		}
	}
	return dropped, nil
}

// Len reports how many chunks the store holds.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
