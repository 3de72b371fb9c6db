package handlers

import (
	"net/http"

	"github.com/arkive-ai/arkive-backend/internal/queue"
)

type AdminHandler struct {
	queueClient *queue.Client
}

func NewAdminHandler(qc *queue.Client) *AdminHandler {
	return &AdminHandler{queueClient: qc}
}

// TriggerRetentionSweep enqueues an immediate sweep instead of waiting for
// the scheduler.
func (h *AdminHandler) TriggerRetentionSweep(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "operator"
	}

	if err := h.queueClient.EnqueueRetentionSweep(queue.RetentionSweepPayload{RequestedBy: userID}); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sweep enqueued"})
}
