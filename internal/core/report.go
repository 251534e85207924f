package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealerdash/internal/models"
	"dealerdash/internal/store"
)

// Report assembly failure taxonomy. NoData is not an error: a zero-row
// result comes back as (nil, 0, nil) and the caller decides what to show.
var (
	ErrInvalidCampaign  = errors.New("invalid campaign id")
	ErrUnauthorized     = errors.New("campaign not available for this store")
	ErrStoreUnavailable = errors.New("store query failed")
)

// ReportService assembles the daily recap rows for a campaign.
type ReportService struct {
	Store *store.Store
}

func NewReportService(st *store.Store) *ReportService {
	return &ReportService{Store: st}
}

// DayWindow expands a calendar day into its inclusive
// [00:00:00, 23:59:59] window.
func DayWindow(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())
	return start, end
}

// AssembleRecap builds the recap rows for one campaign and window.
//
// The campaign lookup is scoped to the caller's store: a campaign that
// belongs to another store fails with ErrUnauthorized, exactly like a
// campaign that does not exist. Rows come back ordered by last name
// then first name.
func (rs *ReportService) AssembleRecap(ctx context.Context, campaignID, storeID uint, start, end time.Time) ([]models.RecapRow, int, error) {
	if campaignID == 0 {
		return nil, 0, ErrInvalidCampaign
	}
	if end.Before(start) {
		start, end = end, start
	}

	if _, err := rs.Store.GetCampaignForStore(ctx, campaignID, storeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, 0, ErrUnauthorized
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	rows, err := rs.Store.RecapRows(ctx, campaignID, start, end)
	if err != nil {
		rs.Store.LogError(err)
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return rows, len(rows), nil
}

// AssembleDailyRecap is the single-day variant used by the report form.
func (rs *ReportService) AssembleDailyRecap(ctx context.Context, campaignID, storeID uint, day time.Time) ([]models.RecapRow, int, error) {
	start, end := DayWindow(day)
	return rs.AssembleRecap(ctx, campaignID, storeID, start, end)
}

// ListActiveCampaigns returns the selectable campaigns for the report
// form, newest first. An empty list is a valid result.
func (rs *ReportService) ListActiveCampaigns(storeID uint) ([]models.Campaign, error) {
	campaigns, err := rs.Store.ListActiveCampaigns(storeID)
	if err != nil {
		rs.Store.LogError(err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return campaigns, nil
}
