package db

import (
	"errors"
	"fmt"

	"wkchat/internal/config"
	"wkchat/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Service is a string key-value store, the server-side stand-in for browser local storage.
type Service interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// SQLService is the gorm-backed Service.
type SQLService struct {
	db *gorm.DB
}

// NewService initializes the database connection based on the provided configuration.
func NewService(cfg config.DatabaseConfig) (*SQLService, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&model.Item{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &SQLService{db: db}, nil
}

// GetDB returns the underlying gorm handle.
func (s *SQLService) GetDB() *gorm.DB {
	return s.db
}

// GetItem returns the stored value and whether the key exists.
func (s *SQLService) GetItem(key string) (string, bool, error) {
	var item model.Item
	err := s.db.Where("item_key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read item %s: %w", key, err)
	}
	return item.Value, true, nil
}

// SetItem creates or overwrites the value for key.
func (s *SQLService) SetItem(key, value string) error {
	item := model.Item{Key: key, Value: value}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&item)
	if result.Error != nil {
		return fmt.Errorf("failed to write item %s: %w", key, result.Error)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (s *SQLService) RemoveItem(key string) error {
	result := s.db.Where("item_key = ?", key).Delete(&model.Item{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove item %s: %w", key, result.Error)
	}
	return nil
}

