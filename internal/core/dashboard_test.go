package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealerdash/internal/models"
)

func TestGetDashboardLiveFallback(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)
	ds := NewDashboardService(st)

	// No snapshot rows exist yet: counts come straight from the tables
	snap, err := ds.GetDashboard(7)
	require.NoError(t, err)
	assert.True(t, snap.Live)
	assert.Equal(t, 1, snap.ActiveCampaigns)
	assert.Equal(t, 1, snap.TotalCampaigns)
	assert.Equal(t, 1, snap.TotalVisitors)
	assert.Equal(t, 1, snap.TotalAppended)
	assert.Zero(t, snap.TotalLeads)
}

func TestGetDashboardPrefersNewestSnapshot(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)
	ds := NewDashboardService(st)

	require.NoError(t, st.CreateStoreDashboard(&models.StoreDashboard{
		StoreID: 7, TotalVisitors: 10, LastUpdateDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, st.CreateStoreDashboard(&models.StoreDashboard{
		StoreID: 7, TotalVisitors: 25, LastUpdateDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
	}))

	snap, err := ds.GetDashboard(7)
	require.NoError(t, err)
	assert.False(t, snap.Live)
	assert.Equal(t, 25, snap.TotalVisitors)
	assert.True(t, snap.LastUpdate.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)),
		"unexpected last update: %v", snap.LastUpdate)
}

func TestRefreshStoreDashboard(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)
	ds := NewDashboardService(st)

	require.NoError(t, ds.RefreshStoreDashboard(7))

	// The aggregator now reads the snapshot path
	snap, err := ds.GetDashboard(7)
	require.NoError(t, err)
	assert.False(t, snap.Live)
	assert.Equal(t, 1, snap.TotalVisitors)
	assert.Equal(t, 1, snap.ActiveCampaigns)

	// Campaign snapshot written too
	var cd models.CampaignDashboard
	require.NoError(t, st.DB.Where("campaign_id = ?", 42).First(&cd).Error)
	assert.Equal(t, 1, cd.TotalVisitors)
	assert.Equal(t, 1, cd.TotalAppended)
}

func TestRefreshAllSnapshotsEveryStore(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)
	ds := NewDashboardService(st)

	require.NoError(t, ds.RefreshAll())

	var n int64
	require.NoError(t, st.DB.Model(&models.StoreDashboard{}).Count(&n).Error)
	assert.Equal(t, int64(2), n) // stores 7 and 8
}
