package api

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"dealerdash/internal/core"
	"dealerdash/internal/models"
	"dealerdash/internal/store"
	"dealerdash/internal/validation"
)

// POST /api/campaigns/{campaignID}/visitors/import
// Bulk-loads raw visitor events from an uploaded CSV. Expected header:
// ip,user_agent,created_date (created_date optional, YYYY-MM-DD HH:MM:SS).
func (s *Server) handleVisitorImport(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())

	campaignID, err := validation.PositiveInt("campaign_id", chi.URLParam(r, "campaignID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// The campaign must belong to the caller's store
	if _, err := s.Store.GetCampaignForStore(r.Context(), campaignID, user.StoreID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
			return
		}
		s.Store.LogError(err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db error"})
		return
	}

	// Max 10MB CSV
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file too big"})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file"})
		return
	}
	defer file.Close()

	count, err := s.importVisitors(campaignID, user.StoreID, file)
	if err != nil {
		s.Store.LogError(err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid CSV"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "imported",
		"count":  count,
	})
}

func (s *Server) importVisitors(campaignID, storeID uint, f io.Reader) (int, error) {
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, err
	}
	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	ipIdx, hasIP := colMap["ip"]
	uaIdx, hasUA := colMap["user_agent"]
	dateIdx, hasDate := colMap["created_date"]

	var batch []models.Visitor
	batchSize := 500
	total := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		v := models.Visitor{
			CampaignID:  campaignID,
			StoreID:     storeID,
			CreatedDate: time.Now(),
		}
		if hasIP && ipIdx < len(record) {
			v.RawIP = strings.TrimSpace(record[ipIdx])
		}
		if hasUA && uaIdx < len(record) {
			v.UserAgent = strings.TrimSpace(record[uaIdx])
		}
		if hasDate && dateIdx < len(record) {
			if t, err := time.Parse("2006-01-02 15:04:05", strings.TrimSpace(record[dateIdx])); err == nil {
				v.CreatedDate = t
			}
		}

		batch = append(batch, v)
		if len(batch) >= batchSize {
			if err := s.Store.CreateVisitors(batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = nil
		}
	}

	if err := s.Store.CreateVisitors(batch); err != nil {
		return total, err
	}
	total += len(batch)
	return total, nil
}

// POST /api/import/appended-feed
// Accepts an enrichment drop (NDJSON, plain or zstd) and upserts the
// appended detail for this store's visitors.
func (s *Server) handleAppendedFeed(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file too big"})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file"})
		return
	}
	defer file.Close()

	res, err := core.LoadAppendedFeed(s.Store, user.StoreID, file)
	if err != nil {
		s.Store.LogError(err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid feed file"})
		return
	}

	writeJSON(w, http.StatusOK, res)
}
