package core

import (
	"errors"
	"fmt"
	"log"
	"time"

	"dealerdash/internal/models"
	"dealerdash/internal/store"
)

// DashboardSnapshot is the typed dashboard payload for one store.
type DashboardSnapshot struct {
	StoreID         uint      `json:"store_id"`
	ActiveCampaigns int       `json:"active_campaigns"`
	TotalCampaigns  int       `json:"total_campaigns"`
	TotalVisitors   int       `json:"total_visitors"`
	TotalAppended   int       `json:"total_appended"`
	TotalLeads      int       `json:"total_leads"`
	EmailsSent      int       `json:"emails_sent"`
	RVMsSent        int       `json:"rvms_sent"`
	LastUpdate      time.Time `json:"last_update"`
	Live            bool      `json:"live"` // true when counted on the fly, no snapshot yet
}

// DashboardService reads precomputed snapshots and refreshes them.
type DashboardService struct {
	Store *store.Store
}

func NewDashboardService(st *store.Store) *DashboardService {
	return &DashboardService{Store: st}
}

// GetDashboard returns the newest precomputed snapshot for a store, or
// falls back to live counts when no snapshot exists yet. A failing store
// query surfaces as an error; no partial dashboard is returned.
func (ds *DashboardService) GetDashboard(storeID uint) (*DashboardSnapshot, error) {
	d, err := ds.Store.LatestStoreDashboard(storeID)
	if err == nil {
		return &DashboardSnapshot{
			StoreID:         d.StoreID,
			ActiveCampaigns: d.ActiveCampaigns,
			TotalCampaigns:  d.TotalCampaigns,
			TotalVisitors:   d.TotalVisitors,
			TotalAppended:   d.TotalAppended,
			TotalLeads:      d.TotalLeads,
			EmailsSent:      d.EmailsSent,
			RVMsSent:        d.RVMsSent,
			LastUpdate:      d.LastUpdateDate,
		}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		ds.Store.LogError(err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return ds.liveSnapshot(storeID)
}

// liveSnapshot counts directly from the base tables.
func (ds *DashboardService) liveSnapshot(storeID uint) (*DashboardSnapshot, error) {
	snap := &DashboardSnapshot{StoreID: storeID, Live: true, LastUpdate: time.Now()}

	counts := []struct {
		dst   *int
		query func(uint) (int64, error)
	}{
		{&snap.ActiveCampaigns, ds.Store.ActiveCampaignCount},
		{&snap.TotalCampaigns, ds.Store.CampaignCount},
		{&snap.TotalVisitors, ds.Store.VisitorCount},
		{&snap.TotalAppended, ds.Store.AppendedCount},
		{&snap.TotalLeads, ds.Store.LeadCount},
		{&snap.EmailsSent, ds.Store.EmailsSentCount},
		{&snap.RVMsSent, ds.Store.RVMsSentCount},
	}
	for _, c := range counts {
		n, err := c.query(storeID)
		if err != nil {
			ds.Store.LogError(err)
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		*c.dst = int(n)
	}

	return snap, nil
}

// RefreshStoreDashboard writes a fresh snapshot row for one store.
func (ds *DashboardService) RefreshStoreDashboard(storeID uint) error {
	snap, err := ds.liveSnapshot(storeID)
	if err != nil {
		return err
	}

	row := &models.StoreDashboard{
		StoreID:         storeID,
		ActiveCampaigns: snap.ActiveCampaigns,
		TotalCampaigns:  snap.TotalCampaigns,
		TotalVisitors:   snap.TotalVisitors,
		TotalAppended:   snap.TotalAppended,
		TotalLeads:      snap.TotalLeads,
		EmailsSent:      snap.EmailsSent,
		RVMsSent:        snap.RVMsSent,
		LastUpdateDate:  time.Now(),
	}
	if err := ds.Store.CreateStoreDashboard(row); err != nil {
		ds.Store.LogError(err)
		return err
	}

	return ds.refreshCampaignDashboards(storeID)
}

func (ds *DashboardService) refreshCampaignDashboards(storeID uint) error {
	campaigns, err := ds.Store.ListCampaigns(storeID)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, c := range campaigns {
		var visitors, appended, leads int64
		db := ds.Store.DB

		if err := db.Model(&models.Visitor{}).
			Where("campaign_id = ?", c.ID).Count(&visitors).Error; err != nil {
			return err
		}
		if err := db.Model(&models.Visitor{}).
			Where("campaign_id = ? AND appended = ?", c.ID, true).Count(&appended).Error; err != nil {
			return err
		}
		if err := db.Model(&models.Lead{}).
			Joins("JOIN visitors ON visitors.id = leads.visitor_id").
			Where("visitors.campaign_id = ?", c.ID).Count(&leads).Error; err != nil {
			return err
		}

		row := &models.CampaignDashboard{
			CampaignID:     c.ID,
			StoreID:        storeID,
			TotalVisitors:  int(visitors),
			TotalAppended:  int(appended),
			TotalLeads:     int(leads),
			LastUpdateDate: now,
		}
		if err := ds.Store.CreateCampaignDashboard(row); err != nil {
			return err
		}
	}
	return nil
}

// RefreshAll snapshots every store. Used by the background scheduler.
func (ds *DashboardService) RefreshAll() error {
	ids, err := ds.Store.ListStoreIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := ds.RefreshStoreDashboard(id); err != nil {
			log.Printf("dashboard refresh failed for store %d: %v", id, err)
		}
	}
	return nil
}
