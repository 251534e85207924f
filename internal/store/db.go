package store

import (
	"errors"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dealerdash/internal/models"
)

type Store struct {
	DB *gorm.DB
}

// NewStore opens/creates the SQLite DB and runs migrations.
func NewStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate all models (add new ones here when needed)
	if err := db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Campaign{},
		&models.Visitor{},
		&models.AppendedVisitor{},
		&models.Lead{},
		&models.StoreDashboard{},
		&models.CampaignDashboard{},
	); err != nil {
		return nil, err
	}

	return &Store{DB: db}, nil
}

func (s *Store) LogError(err error) {
	if err != nil {
		log.Println("[STORE ERROR]", err)
	}
}

var ErrNotFound = gorm.ErrRecordNotFound

// ----------------------
// Users
// ----------------------

func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	var u models.User
	err := s.DB.Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByToken(token string) (*models.User, error) {
	var u models.User
	err := s.DB.Where("api_token = ?", token).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(u *models.User) error {
	return s.DB.Create(u).Error
}

func (s *Store) UpdateUser(u *models.User) error {
	return s.DB.Save(u).Error
}

// ----------------------
// Stores
// ----------------------

func (s *Store) GetStoreByID(id uint) (*models.Store, error) {
	var st models.Store
	err := s.DB.First(&st, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) CreateStore(st *models.Store) error {
	return s.DB.Create(st).Error
}

func (s *Store) ListStoreIDs() ([]uint, error) {
	var ids []uint
	err := s.DB.Model(&models.Store{}).Pluck("id", &ids).Error
	return ids, err
}
