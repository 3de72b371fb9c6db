package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkive-ai/arkive-backend/internal/models"
)

// PgDocumentStore keeps document records in Postgres.
type PgDocumentStore struct {
	db *pgxpool.Pool
}

func NewPgDocumentStore(db *pgxpool.Pool) *PgDocumentStore {
	return &PgDocumentStore{db: db}
}

func (s *PgDocumentStore) Insert(ctx context.Context, doc *models.Document) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO documents (id, filename, uploaded_by, uploaded_at, total_pages, total_chunks, is_permanent, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		doc.ID, doc.Filename, doc.UploadedBy, doc.UploadedAt,
		doc.TotalPages, doc.TotalChunks, doc.IsPermanent, doc.Status,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PgDocumentStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *PgDocumentStore) List(ctx context.Context) ([]models.Document, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, filename, uploaded_by, uploaded_at, total_pages, total_chunks, is_permanent, status
		 FROM documents ORDER BY uploaded_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.UploadedBy, &d.UploadedAt,
			&d.TotalPages, &d.TotalChunks, &d.IsPermanent, &d.Status); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DeleteExpired removes non-permanent document records older than the cutoff.
func (s *PgDocumentStore) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		"DELETE FROM documents WHERE is_permanent = false AND uploaded_at < $1",
		olderThan,
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired documents: %w", err)
	}
	return tag.RowsAffected(), nil
}
