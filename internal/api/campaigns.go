package api

import (
	"net/http"
)

// GET /api/campaigns
func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())

	campaigns, err := s.Store.ListCampaigns(user.StoreID)
	if err != nil {
		s.Store.LogError(err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db error"})
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// GET /api/campaigns/active
func (s *Server) handleListActiveCampaigns(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())

	campaigns, err := s.Store.ListActiveCampaigns(user.StoreID)
	if err != nil {
		s.Store.LogError(err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db error"})
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}
