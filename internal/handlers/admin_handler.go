package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gatherly-app/gatherly/internal/jobs"
	"github.com/gatherly-app/gatherly/pkg/logger"
)

// AdminHandler exposes operational endpoints. Its routes sit behind the
// admin role middleware.
type AdminHandler struct {
	CompletionJob *jobs.EventCompletionJob
}

func NewAdminHandler(completionJob *jobs.EventCompletionJob) *AdminHandler {
	return &AdminHandler{CompletionJob: completionJob}
}

// RunCompletionHandler triggers an immediate event completion pass outside
// the cron cadence.
// POST /admin/completion/run
func (h *AdminHandler) RunCompletionHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.CompletionJob.Run(r.Context()); err != nil {
		logger.Log.Errorf("Manual completion pass failed: %v", err)
		http.Error(w, "Completion pass failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Completion pass finished"})
}
