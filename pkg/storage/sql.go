package storage

import (
	"fmt"
	"time"

	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// SQLStorage implements the core.AlertStorage interface using a SQL
// database via GORM
type SQLStorage struct {
	db *gorm.DB
}

// FromSQL creates a new SQL alert log. The dialector is supplied by the
// caller so the driver choice stays out of this package.
func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (core.AlertStorage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&core.Alert{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStorage{
		db: db,
	}, nil
}

// CreateAlert stores a dispatched alert
func (s *SQLStorage) CreateAlert(alert *core.Alert) error {
	result := s.db.Create(alert)
	if result.Error != nil {
		return fmt.Errorf("failed to create alert: %w", result.Error)
	}

	return nil
}

// Alerts retrieves alerts from the SQL database based on provided filters
func (s *SQLStorage) Alerts(filters ...core.AlertFilter) ([]*core.Alert, error) {
	var alerts []*core.Alert

	result := s.db.Order("created_at").Find(&alerts)
	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to fetch alerts: %w", result.Error)
	}

	// Filters are predicates over the domain type, applied in memory
	filtered := lo.Filter(alerts, func(alert *core.Alert, _ int) bool {
		for _, filter := range filters {
			if !filter(*alert) {
				return false
			}
		}
		return true
	})

	return filtered, nil
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
