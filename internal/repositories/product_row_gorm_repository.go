package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenDB opens a GORM connection for the given driver name ("sqlite" or "postgres").
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}

// GORMRowRepository is a GORM implementation of ProductRowRepository.
// It reads the product_rows table.
type GORMRowRepository struct {
	db *gorm.DB
}

// NewGORMRowRepository creates a new instance of GORMRowRepository.
func NewGORMRowRepository(db *gorm.DB) *GORMRowRepository {
	return &GORMRowRepository{
		db: db,
	}
}

// Migrate creates or updates the product_rows table.
func (r *GORMRowRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.ProductRow{}); err != nil {
		return fmt.Errorf("failed to migrate product rows: %w", err)
	}
	return nil
}

// GetAll retrieves all rows in primary key order.
func (r *GORMRowRepository) GetAll(ctx context.Context) ([]models.ProductRow, error) {
	var rows []models.ProductRow
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get product rows: %w", err)
	}
	return rows, nil
}
