package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dealerdash/internal/core"
	"dealerdash/internal/validation"
)

type recapEmailRequest struct {
	CampaignID string `json:"campaign_id"`
	RecapDate  string `json:"recap_date"` // MM/DD/YYYY
	Recipient  string `json:"recipient"`
}

// POST /api/tasks/recap-email
// Fire-and-forget: enqueue the job, answer 202 with a poll location.
func (s *Server) handleSubmitRecapEmail(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())

	var req recapEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	campaignID, err := validation.PositiveInt("campaign_id", req.CampaignID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	day, err := validation.RecapDate("recap_date", req.RecapDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	v := validation.New().Required("recipient", req.Recipient).Email("recipient", req.Recipient)
	if !v.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": v.Errors()[0].Error()})
		return
	}

	id := s.Dispatcher.SubmitRecapEmail(s.Reports, s.Mailer, campaignID, user.StoreID, day, req.Recipient)

	w.Header().Set("Location", "/api/tasks/"+id)
	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": id, "status": "accepted"})
}

// GET /api/tasks/{taskID}
func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "taskID")

	status, err := s.Dispatcher.Status(id)
	if err != nil {
		if errors.Is(err, core.ErrTaskNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "task lookup failed"})
		return
	}
	writeJSON(w, http.StatusOK, status)
}
