package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/arkive-ai/arkive-backend/internal/ingest"
	"github.com/arkive-ai/arkive-backend/internal/queue"
	"github.com/arkive-ai/arkive-backend/internal/vectorstore"
)

// RetentionWorker expires non-permanent knowledge. Permanent documents and
// the audit trail are never touched.
type RetentionWorker struct {
	vectors vectorstore.VectorStore
	docs    ingest.DocumentStore
	window  time.Duration
}

func NewRetentionWorker(vectors vectorstore.VectorStore, docs ingest.DocumentStore, window time.Duration) *RetentionWorker {
	return &RetentionWorker{vectors: vectors, docs: docs, window: window}
}

func (w *RetentionWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.RetentionSweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
	}

	cutoff := time.Now().UTC().Add(-w.window)
	slog.Info("retention sweep starting", "cutoff", cutoff, "requested_by", payload.RequestedBy)

	chunks, err := w.vectors.DeleteExpired(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("expire chunks: %w", err)
	}

	docs, err := w.docs.DeleteExpired(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("expire documents: %w", err)
	}

	slog.Info("retention sweep done", "chunks_removed", chunks, "documents_removed", docs)
	return nil
}
