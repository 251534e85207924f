package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"dealerdash/internal/models"
)

// ----------------------
// Campaigns
// ----------------------

// GetCampaignForStore looks up a campaign scoped to a store. A campaign
// that exists under a different store is indistinguishable from one that
// does not exist at all.
func (s *Store) GetCampaignForStore(ctx context.Context, campaignID, storeID uint) (*models.Campaign, error) {
	var c models.Campaign
	err := s.DB.WithContext(ctx).
		Where("id = ? AND store_id = ?", campaignID, storeID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListActiveCampaigns returns the store's ACTIVE campaigns, newest first.
func (s *Store) ListActiveCampaigns(storeID uint) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := s.DB.
		Where("store_id = ? AND status = ? AND archived = ?", storeID, models.CampaignActive, false).
		Order("created_date desc").
		Find(&campaigns).Error
	return campaigns, err
}

// ListCampaigns returns all campaigns for a store, newest first.
func (s *Store) ListCampaigns(storeID uint) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := s.DB.
		Where("store_id = ?", storeID).
		Order("created_date desc").
		Find(&campaigns).Error
	return campaigns, err
}

// ----------------------
// Recap report
// ----------------------

// RecapRows joins visitors to their appended detail for one campaign
// inside an inclusive created-date window. Everything is bound; nothing
// is interpolated into the statement text.
func (s *Store) RecapRows(ctx context.Context, campaignID uint, start, end time.Time) ([]models.RecapRow, error) {
	var rows []models.RecapRow
	err := s.DB.WithContext(ctx).
		Table("visitors").
		Select(`visitors.created_date,
			appended_visitors.first_name, appended_visitors.last_name,
			appended_visitors.address1, appended_visitors.address2,
			appended_visitors.city, appended_visitors.state,
			appended_visitors.zip, appended_visitors.zip4,
			appended_visitors.email, appended_visitors.cellphone,
			appended_visitors.credit_range,
			appended_visitors.car_year, appended_visitors.car_make, appended_visitors.car_model`).
		Joins("JOIN appended_visitors ON appended_visitors.visitor_id = visitors.id").
		Where("visitors.campaign_id = ? AND visitors.created_date BETWEEN ? AND ?", campaignID, start, end).
		Order("appended_visitors.last_name asc, appended_visitors.first_name asc").
		Scan(&rows).Error
	return rows, err
}

// ----------------------
// Visitors & leads
// ----------------------

func (s *Store) ListVisitors(storeID uint, campaignID uint, limit, offset int) ([]models.Visitor, error) {
	q := s.DB.Where("store_id = ?", storeID)
	if campaignID != 0 {
		q = q.Where("campaign_id = ?", campaignID)
	}
	var visitors []models.Visitor
	err := q.Order("created_date desc").Limit(limit).Offset(offset).Find(&visitors).Error
	return visitors, err
}

func (s *Store) ListLeads(storeID uint, limit, offset int) ([]models.Lead, error) {
	var leads []models.Lead
	err := s.DB.
		Joins("JOIN visitors ON visitors.id = leads.visitor_id").
		Where("visitors.store_id = ?", storeID).
		Order("leads.created_date desc").
		Limit(limit).Offset(offset).
		Find(&leads).Error
	return leads, err
}

func (s *Store) CreateVisitors(visitors []models.Visitor) error {
	if len(visitors) == 0 {
		return nil
	}
	return s.DB.Create(&visitors).Error
}

func (s *Store) GetVisitorByID(id uint) (*models.Visitor, error) {
	var v models.Visitor
	err := s.DB.First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UpsertAppendedVisitor creates or replaces the enrichment record for a
// visitor and flips the visitor's appended flag.
func (s *Store) UpsertAppendedVisitor(av *models.AppendedVisitor) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.AppendedVisitor
		err := tx.Where("visitor_id = ?", av.VisitorID).First(&existing).Error
		if err == nil {
			av.ID = existing.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Save(av).Error; err != nil {
			return err
		}
		return tx.Model(&models.Visitor{}).
			Where("id = ?", av.VisitorID).
			Update("appended", true).Error
	})
}

// ----------------------
// Counts (live dashboard fallback + snapshot refresh)
// ----------------------

func (s *Store) ActiveCampaignCount(storeID uint) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Campaign{}).
		Where("store_id = ? AND status = ?", storeID, models.CampaignActive).
		Count(&n).Error
	return n, err
}

func (s *Store) CampaignCount(storeID uint) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Campaign{}).Where("store_id = ?", storeID).Count(&n).Error
	return n, err
}

func (s *Store) VisitorCount(storeID uint) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Visitor{}).Where("store_id = ?", storeID).Count(&n).Error
	return n, err
}

func (s *Store) AppendedCount(storeID uint) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Visitor{}).
		Where("store_id = ? AND appended = ?", storeID, true).
		Count(&n).Error
	return n, err
}

func (s *Store) LeadCount(storeID uint) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Lead{}).
		Joins("JOIN visitors ON visitors.id = leads.visitor_id").
		Where("visitors.store_id = ?", storeID).
		Count(&n).Error
	return n, err
}

func (s *Store) EmailsSentCount(storeID uint) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Lead{}).
		Joins("JOIN visitors ON visitors.id = leads.visitor_id").
		Where("visitors.store_id = ? AND leads.email_status = ?", storeID, "sent").
		Count(&n).Error
	return n, err
}

func (s *Store) RVMsSentCount(storeID uint) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Lead{}).
		Joins("JOIN visitors ON visitors.id = leads.visitor_id").
		Where("visitors.store_id = ? AND leads.r_vm_sent = ?", storeID, true).
		Count(&n).Error
	return n, err
}

// ----------------------
// Dashboard snapshots
// ----------------------

// LatestStoreDashboard returns the newest snapshot row for a store.
func (s *Store) LatestStoreDashboard(storeID uint) (*models.StoreDashboard, error) {
	var d models.StoreDashboard
	err := s.DB.
		Where("store_id = ?", storeID).
		Order("last_update_date desc").
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) CreateStoreDashboard(d *models.StoreDashboard) error {
	return s.DB.Create(d).Error
}

func (s *Store) CreateCampaignDashboard(d *models.CampaignDashboard) error {
	return s.DB.Create(d).Error
}
