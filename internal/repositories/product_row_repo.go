package repositories

import (
	"context"
	"errors"

	"storefront/internal/models"
)

var (
	// ErrEmptyFile is returned when a CSV source has no content at all.
	ErrEmptyFile = errors.New("product file is empty")

	// ErrMissingColumn is returned when a source lacks one of the product columns.
	ErrMissingColumn = errors.New("product source is missing a required column")
)

// ProductRowRepository defines the interface for reading raw product rows.
type ProductRowRepository interface {
	GetAll(ctx context.Context) ([]models.ProductRow, error)
}
