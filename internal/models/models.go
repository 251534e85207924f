package models

import "time"

// Campaign status values
const (
	CampaignActive   = "ACTIVE"
	CampaignInactive = "INACTIVE"
)

// User is a dealership store login. A user only ever sees the data of
// the store they belong to.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex"`
	Email        string
	PasswordHash string    // bcrypt hash
	APIToken     string    `gorm:"index"` // random token for API auth
	TokenExpiry  time.Time // Token expiration time
	StoreID      uint      `gorm:"index"`
	Active       bool
}

// Store is a dealership location that owns campaigns.
type Store struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex"`
	City        string
	State       string
	Status      string
	CreatedDate time.Time
}

// A marketing campaign belonging to exactly one store.
type Campaign struct {
	ID          uint `gorm:"primaryKey"`
	StoreID     uint `gorm:"index"`
	Name        string
	Status      string // ACTIVE | INACTIVE
	Archived    bool
	CreatedDate time.Time
}

// Visitor is a raw ad/site visit event tied to one campaign.
type Visitor struct {
	ID          uint `gorm:"primaryKey"`
	CampaignID  uint `gorm:"index"`
	StoreID     uint `gorm:"index"`
	RawIP       string
	UserAgent   string
	Appended    bool      // set once enrichment data has arrived
	CreatedDate time.Time `gorm:"index"`
}

// AppendedVisitor carries the contact/demographic data an external
// enrichment process attaches to a visitor (1:1).
type AppendedVisitor struct {
	ID          uint `gorm:"primaryKey"`
	VisitorID   uint `gorm:"uniqueIndex"`
	FirstName   string
	LastName    string
	Address1    string
	Address2    string
	City        string
	State       string
	Zip         string
	Zip4        string
	Email       string
	Cellphone   string
	CreditRange string
	CarYear     string
	CarMake     string
	CarModel    string
	CreatedDate time.Time
}

// Lead is the downstream outreach state for a visitor (1:1, optional).
type Lead struct {
	ID             uint `gorm:"primaryKey"`
	VisitorID      uint `gorm:"uniqueIndex"`
	EmailStatus    string
	EmailSentAt    time.Time
	EmailReceiptID string
	RVMStatus      string
	RVMSentAt      time.Time
	RVMMessage     string
	RVMSent        bool
	CreatedDate    time.Time
}

// StoreDashboard is a precomputed activity snapshot for a store.
// The newest row per store is the current dashboard.
type StoreDashboard struct {
	ID              uint `gorm:"primaryKey"`
	StoreID         uint `gorm:"index"`
	ActiveCampaigns int
	TotalCampaigns  int
	TotalVisitors   int
	TotalAppended   int
	TotalLeads      int
	EmailsSent      int
	RVMsSent        int
	LastUpdateDate  time.Time `gorm:"index"`
}

// CampaignDashboard is the per-campaign equivalent of StoreDashboard.
type CampaignDashboard struct {
	ID             uint `gorm:"primaryKey"`
	CampaignID     uint `gorm:"index"`
	StoreID        uint `gorm:"index"`
	TotalVisitors  int
	TotalAppended  int
	TotalLeads     int
	LastUpdateDate time.Time `gorm:"index"`
}

// RecapRow is one line of the daily recap report: the visitor join
// projection, ordered by last name then first name.
type RecapRow struct {
	CreatedDate time.Time `json:"created_date"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Address1    string    `json:"address1"`
	Address2    string    `json:"address2"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Zip         string    `json:"zip"`
	Zip4        string    `json:"zip4"`
	Email       string    `json:"email"`
	Cellphone   string    `json:"cellphone"`
	CreditRange string    `json:"credit_range"`
	CarYear     string    `json:"car_year"`
	CarMake     string    `json:"car_make"`
	CarModel    string    `json:"car_model"`
}
