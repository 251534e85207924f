package api

import (
	"net/http"
	"strconv"
)

// listParams pulls limit/offset with sane defaults.
func listParams(r *http.Request) (int, int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 100
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// GET /api/visitors?campaign_id=&limit=&offset=
func (s *Server) handleListVisitors(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())
	limit, offset := listParams(r)

	var campaignID uint
	if raw := r.URL.Query().Get("campaign_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid campaign id"})
			return
		}
		campaignID = uint(id)
	}

	visitors, err := s.Store.ListVisitors(user.StoreID, campaignID, limit, offset)
	if err != nil {
		s.Store.LogError(err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db error"})
		return
	}
	writeJSON(w, http.StatusOK, visitors)
}
