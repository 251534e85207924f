package core

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealerdash/internal/models"
	"dealerdash/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return st
}

// seedRecapData creates store 7 with campaign 42 and one appended
// visitor (Jane Doe, 2024-03-05 10:00).
func seedRecapData(t *testing.T, st *store.Store) {
	t.Helper()

	require.NoError(t, st.CreateStore(&models.Store{ID: 7, Name: "Main Street Motors", Status: "ACTIVE", CreatedDate: time.Now()}))
	require.NoError(t, st.CreateStore(&models.Store{ID: 8, Name: "Riverside Auto", Status: "ACTIVE", CreatedDate: time.Now()}))

	require.NoError(t, st.DB.Create(&models.Campaign{
		ID: 42, StoreID: 7, Name: "Spring Clearance", Status: models.CampaignActive,
		CreatedDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}).Error)

	require.NoError(t, st.DB.Create(&models.Visitor{
		ID: 100, CampaignID: 42, StoreID: 7, Appended: true,
		CreatedDate: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	}).Error)

	require.NoError(t, st.DB.Create(&models.AppendedVisitor{
		VisitorID: 100,
		FirstName: "Jane", LastName: "Doe",
		Address1: "12 Oak St", Address2: "Apt 4",
		City: "Springfield", State: "IL", Zip: "62701", Zip4: "1234",
		Email: "jane.doe@example.com", Cellphone: "2175550100",
		CreditRange: "650-700", CarYear: "2020", CarMake: "Honda", CarModel: "Civic",
		CreatedDate: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	}).Error)
}

func TestAssembleDailyRecapScenario(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)
	rs := NewReportService(st)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rows, count, err := rs.AssembleDailyRecap(context.Background(), 42, 7, day)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	row := rows[0]
	assert.Equal(t, "Jane", row.FirstName)
	assert.Equal(t, "Doe", row.LastName)
	assert.Equal(t, "Honda", row.CarMake)
	assert.Equal(t, "2020", row.CarYear)
	assert.Equal(t, "Apt 4", row.Address2)
	assert.Equal(t, "1234", row.Zip4)
}

func TestAssembleRecapWrongStoreIsUnauthorized(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)
	rs := NewReportService(st)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	_, _, err := rs.AssembleDailyRecap(context.Background(), 42, 8, day)
	// Must be Unauthorized, never a NoData-looking success
	require.ErrorIs(t, err, ErrUnauthorized)

	// Same result for a campaign that does not exist at all
	_, _, err = rs.AssembleDailyRecap(context.Background(), 9999, 8, day)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAssembleRecapInvalidCampaign(t *testing.T) {
	st := newTestStore(t)
	rs := NewReportService(st)

	_, _, err := rs.AssembleRecap(context.Background(), 0, 7, time.Now(), time.Now())
	require.ErrorIs(t, err, ErrInvalidCampaign)
}

func TestAssembleRecapEmptyDayIsNotAnError(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)
	rs := NewReportService(st)

	day := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	rows, count, err := rs.AssembleDailyRecap(context.Background(), 42, 7, day)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, rows)
}

func TestAssembleRecapWindowBounds(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)

	// Edge visitors: first second, last second, and just past midnight
	for i, created := range []time.Time{
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 5, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
	} {
		id := uint(200 + i)
		require.NoError(t, st.DB.Create(&models.Visitor{
			ID: id, CampaignID: 42, StoreID: 7, Appended: true, CreatedDate: created,
		}).Error)
		require.NoError(t, st.DB.Create(&models.AppendedVisitor{
			VisitorID: id, FirstName: "Edge", LastName: "Case", CreatedDate: created,
		}).Error)
	}

	rs := NewReportService(st)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rows, count, err := rs.AssembleDailyRecap(context.Background(), 42, 7, day)
	require.NoError(t, err)

	// Jane plus the two in-window edges; the 03-06 visitor stays out
	assert.Equal(t, 3, count)
	start, end := DayWindow(day)
	for _, row := range rows {
		assert.False(t, row.CreatedDate.Before(start), "row before window: %v", row.CreatedDate)
		assert.False(t, row.CreatedDate.After(end), "row after window: %v", row.CreatedDate)
	}
}

func TestAssembleRecapOrdering(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)

	names := []struct{ first, last string }{
		{"Zoe", "Adams"},
		{"Amy", "Doe"}, // sorts before Jane Doe on first name
		{"Bob", "Baker"},
	}
	for i, n := range names {
		id := uint(300 + i)
		created := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
		require.NoError(t, st.DB.Create(&models.Visitor{
			ID: id, CampaignID: 42, StoreID: 7, Appended: true, CreatedDate: created,
		}).Error)
		require.NoError(t, st.DB.Create(&models.AppendedVisitor{
			VisitorID: id, FirstName: n.first, LastName: n.last, CreatedDate: created,
		}).Error)
	}

	rs := NewReportService(st)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rows, count, err := rs.AssembleDailyRecap(context.Background(), 42, 7, day)
	require.NoError(t, err)
	require.Equal(t, 4, count)

	got := make([][2]string, 0, count)
	for _, r := range rows {
		got = append(got, [2]string{r.LastName, r.FirstName})
	}
	want := [][2]string{
		{"Adams", "Zoe"},
		{"Baker", "Bob"},
		{"Doe", "Amy"},
		{"Doe", "Jane"},
	}
	assert.Equal(t, want, got)
}

func TestAssembleRecapIdempotent(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)
	rs := NewReportService(st)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	first, n1, err := rs.AssembleDailyRecap(context.Background(), 42, 7, day)
	require.NoError(t, err)
	second, n2, err := rs.AssembleDailyRecap(context.Background(), 42, 7, day)
	require.NoError(t, err)

	assert.Equal(t, n1, n2)
	assert.Equal(t, first, second)
}

func TestListActiveCampaigns(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateStore(&models.Store{ID: 7, Name: "Main Street Motors", Status: "ACTIVE", CreatedDate: time.Now()}))

	require.NoError(t, st.DB.Create(&models.Campaign{
		ID: 1, StoreID: 7, Name: "Old Push", Status: models.CampaignActive,
		CreatedDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}).Error)
	require.NoError(t, st.DB.Create(&models.Campaign{
		ID: 2, StoreID: 7, Name: "New Push", Status: models.CampaignActive,
		CreatedDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}).Error)
	require.NoError(t, st.DB.Create(&models.Campaign{
		ID: 3, StoreID: 7, Name: "Paused", Status: models.CampaignInactive,
		CreatedDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}).Error)

	rs := NewReportService(st)
	campaigns, err := rs.ListActiveCampaigns(7)
	require.NoError(t, err)
	require.Len(t, campaigns, 2)

	// Newest created first
	assert.Equal(t, "New Push", campaigns[0].Name)
	assert.Equal(t, "Old Push", campaigns[1].Name)

	// A store with nothing gets an empty, valid list
	empty, err := rs.ListActiveCampaigns(99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
