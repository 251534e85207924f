package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealerdash/internal/models"
)

const feedLine = `{"visitor_id":100,"first_name":"Jane","last_name":"Doe","address1":"12 Oak St","city":"Springfield","state":"IL","zip":"62701","email":"jane.doe@example.com","cellphone":"2175550100","credit_range":"650-700","car_year":"2020","car_make":"Honda","car_model":"Civic"}`

func TestLoadAppendedFeedPlain(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)

	// Fresh visitor without enrichment yet
	require.NoError(t, st.DB.Create(&models.Visitor{ID: 101, CampaignID: 42, StoreID: 7}).Error)

	feed := strings.Replace(feedLine, `"visitor_id":100`, `"visitor_id":101`, 1) + "\n"
	res, err := LoadAppendedFeed(st, 7, strings.NewReader(feed))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Loaded)
	assert.Zero(t, res.Skipped)
	assert.Empty(t, res.Errors)

	var av models.AppendedVisitor
	require.NoError(t, st.DB.Where("visitor_id = ?", 101).First(&av).Error)
	assert.Equal(t, "Jane", av.FirstName)

	var v models.Visitor
	require.NoError(t, st.DB.First(&v, 101).Error)
	assert.True(t, v.Appended)
}

func TestLoadAppendedFeedZstd(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = enc.Write([]byte(feedLine + "\n"))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	res, err := LoadAppendedFeed(st, 7, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Loaded)
}

func TestLoadAppendedFeedUpsertsExisting(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)

	// Visitor 100 already has appended detail; a re-delivery replaces it
	feed := strings.Replace(feedLine, `"first_name":"Jane"`, `"first_name":"Janet"`, 1)
	res, err := LoadAppendedFeed(st, 7, strings.NewReader(feed))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Loaded)

	var n int64
	require.NoError(t, st.DB.Model(&models.AppendedVisitor{}).Where("visitor_id = ?", 100).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	var av models.AppendedVisitor
	require.NoError(t, st.DB.Where("visitor_id = ?", 100).First(&av).Error)
	assert.Equal(t, "Janet", av.FirstName)
}

func TestLoadAppendedFeedSkipsAndErrors(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)

	// Visitor that belongs to the other store
	require.NoError(t, st.DB.Create(&models.Visitor{ID: 500, CampaignID: 1, StoreID: 8}).Error)

	feed := strings.Join([]string{
		`{"visitor_id":9999,"first_name":"Ghost"}`, // unknown visitor
		`{"visitor_id":500,"first_name":"Other"}`,  // wrong store
		`not json at all`,
		feedLine, // fine
	}, "\n")

	res, err := LoadAppendedFeed(st, 7, strings.NewReader(feed))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Loaded)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "line 3")
}
