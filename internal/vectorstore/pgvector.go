package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type PgVectorStore struct {
	db *pgxpool.Pool
}

func NewPgVectorStore(db *pgxpool.Pool) *PgVectorStore {
	return &PgVectorStore{db: db}
}

func (s *PgVectorStore) Upsert(ctx context.Context, chunks []Chunk) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range chunks {
		uploadedAt := c.UploadedAt
		if uploadedAt.IsZero() {
			uploadedAt = time.Now().UTC()
		}

		embedding := pgvector.NewVector(c.Embedding)

		_, err := tx.Exec(ctx,
			`INSERT INTO document_chunks (doc_id, chunk_index, content, source, page, is_permanent, embedding, uploaded_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (doc_id, chunk_index) DO UPDATE
			 SET content = $3, source = $4, page = $5, is_permanent = $6, embedding = $7, uploaded_at = $8`,
			c.DocID, c.ChunkIndex, c.Content, c.Source, c.Page, c.IsPermanent, embedding, uploadedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %d: %w", c.ChunkIndex, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PgVectorStore) Search(ctx context.Context, query []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		return []SearchResult{}, nil
	}

	embedding := pgvector.NewVector(query)

	// Cosine similarity; uploaded_at then (doc_id, chunk_index) keeps ordering
	// deterministic when distances tie.
	rows, err := s.db.Query(ctx,
		`SELECT content, source, page, chunk_index,
		        1 - (embedding <=> $1) AS score
		 FROM document_chunks
		 ORDER BY embedding <=> $1, uploaded_at, doc_id, chunk_index
		 LIMIT $2`,
		embedding, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	results := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Content, &r.Source, &r.Page, &r.ChunkIndex, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PgVectorStore) DeleteByDocument(ctx context.Context, docID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM document_chunks WHERE doc_id = $1", docID)
	if err != nil {
		return fmt.Errorf("delete chunks for %s: %w", docID, err)
	}
	return nil
}

func (s *PgVectorStore) CountBySource(ctx context.Context, source string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM document_chunks WHERE source = $1", source).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count chunks for %s: %w", source, err)
	}
	return n, nil
}

func (s *PgVectorStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		"DELETE FROM document_chunks WHERE NOT is_permanent AND uploaded_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired chunks: %w", err)
	}
	return tag.RowsAffected(), nil
}
