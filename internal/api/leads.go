package api

import (
	"net/http"
)

// GET /api/leads?limit=&offset=
func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())
	limit, offset := listParams(r)

	leads, err := s.Store.ListLeads(user.StoreID, limit, offset)
	if err != nil {
		s.Store.LogError(err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db error"})
		return
	}
	writeJSON(w, http.StatusOK, leads)
}
