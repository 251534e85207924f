package api

import (
	"net/http"
)

// GET /api/dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())

	snap, err := s.Dashboards.GetDashboard(user.StoreID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "dashboard unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
