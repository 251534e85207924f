package core

import (
	"bufio"
	"encoding/json"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"

	"dealerdash/internal/models"
	"dealerdash/internal/store"
)

// The enrichment vendor drops NDJSON files, one appended record per
// line, sometimes zstd-compressed depending on which of their exporters
// produced the file.

// FeedRecord is one line of an enrichment drop.
type FeedRecord struct {
	VisitorID   uint   `json:"visitor_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	Zip4        string `json:"zip4"`
	Email       string `json:"email"`
	Cellphone   string `json:"cellphone"`
	CreditRange string `json:"credit_range"`
	CarYear     string `json:"car_year"`
	CarMake     string `json:"car_make"`
	CarModel    string `json:"car_model"`
}

// FeedResult summarizes one feed load.
type FeedResult struct {
	Loaded  int      `json:"loaded"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// openFeed handles both zstd-compressed and plain NDJSON drops by
// peeking at the zstd magic number (0x28 0xB5 0x2F 0xFD).
func openFeed(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(4)

	if len(magic) >= 4 && magic[0] == 0x28 && magic[1] == 0xB5 && magic[2] == 0x2F && magic[3] == 0xFD {
		decoder, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		return decoder.IOReadCloser(), nil
	}

	return io.NopCloser(br), nil
}

// LoadAppendedFeed parses an enrichment drop and upserts the appended
// detail for each visitor it names. Records for unknown visitors or for
// visitors of other stores are skipped, not fatal.
func LoadAppendedFeed(st *store.Store, storeID uint, r io.Reader) (*FeedResult, error) {
	feed, err := openFeed(r)
	if err != nil {
		return nil, err
	}
	defer feed.Close()

	res := &FeedResult{}
	scanner := bufio.NewScanner(feed)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec FeedRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			res.Errors = append(res.Errors, "bad record on line "+strconv.Itoa(lineNum))
			continue
		}
		if rec.VisitorID == 0 {
			res.Skipped++
			continue
		}

		visitor, err := st.GetVisitorByID(rec.VisitorID)
		if err != nil || visitor.StoreID != storeID {
			res.Skipped++
			continue
		}

		av := &models.AppendedVisitor{
			VisitorID:   rec.VisitorID,
			FirstName:   rec.FirstName,
			LastName:    rec.LastName,
			Address1:    rec.Address1,
			Address2:    rec.Address2,
			City:        rec.City,
			State:       rec.State,
			Zip:         rec.Zip,
			Zip4:        rec.Zip4,
			Email:       rec.Email,
			Cellphone:   rec.Cellphone,
			CreditRange: rec.CreditRange,
			CarYear:     rec.CarYear,
			CarMake:     rec.CarMake,
			CarModel:    rec.CarModel,
			CreatedDate: time.Now(),
		}
		if err := st.UpsertAppendedVisitor(av); err != nil {
			log.Printf("feed upsert failed for visitor %d: %v", rec.VisitorID, err)
			res.Errors = append(res.Errors, "upsert failed on line "+strconv.Itoa(lineNum))
			continue
		}
		res.Loaded++
	}
	if err := scanner.Err(); err != nil {
		return res, err
	}

	return res, nil
}

