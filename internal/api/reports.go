package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"dealerdash/internal/core"
	"dealerdash/internal/metrics"
	"dealerdash/internal/validation"
)

type recapRequest struct {
	RecapDate  string `json:"recap_date"`  // MM/DD/YYYY
	CampaignID string `json:"campaign_id"` // positive integer
}

// GET /api/reports/daily-recap-report
// Returns what the report form needs: the store's active campaigns.
func (s *Server) handleRecapForm(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())

	campaigns, err := s.Reports.ListActiveCampaigns(user.StoreID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "report temporarily unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"campaigns": campaigns})
}

// POST /api/reports/daily-recap-report
// Assembles the recap for a single calendar day.
func (s *Server) handleRecapReport(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())

	var req recapRequest
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

	rows, count, err := s.Reports.AssembleDailyRecap(r.Context(), campaignID, user.StoreID, day)
	if err != nil {
		s.writeReportError(w, err)
		return
	}
	metrics.ReportRows.Add(float64(count))

	if count == 0 {
		// Valid no-match outcome, distinct from any failure
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"count":   0,
			"rows":    []struct{}{},
			"message": "no visitor records for that day",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": count,
		"rows":  rows,
	})
}

// GET /api/reports/daily-recap-report/export?campaign_id=&start_date=&end_date=
// Streams the recap for an arbitrary window as a CSV attachment.
func (s *Server) handleRecapExport(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())
	q := r.URL.Query()

	campaignID, err := validation.PositiveInt("campaign_id", q.Get("campaign_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	start, err := validation.WindowTimestamp("start_date", q.Get("start_date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	end, err := validation.WindowTimestamp("end_date", q.Get("end_date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, count, err := s.Reports.AssembleRecap(r.Context(), campaignID, user.StoreID, start, end)
	if err != nil {
		s.writeReportError(w, err)
		return
	}

	if count == 0 {
		// Never emit an empty file
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no data to export"})
		return
	}

	data, filename, err := core.ExportCSV(rows, start)
	if err != nil {
		s.Store.LogError(err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
		return
	}
	metrics.ExportsTotal.Inc()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// writeReportError maps the assembler taxonomy onto status codes.
// Unauthorized stays a generic denial and is never reported as NoData
// (or the other way round).
func (s *Server) writeReportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidCampaign):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid campaign id"})
	case errors.Is(err, core.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
	case errors.Is(err, core.ErrStoreUnavailable):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "report temporarily unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "report failed"})
	}
}
