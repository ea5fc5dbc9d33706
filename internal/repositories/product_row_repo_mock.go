package repositories

import (
	"context"
	"sync"

	"storefront/internal/models"
)

// MemoryRowRepository is an in-memory implementation of ProductRowRepository.
type MemoryRowRepository struct {
	rows []models.ProductRow
	mu   sync.RWMutex
}

// NewMemoryRowRepository creates a repository seeded with the given rows.
func NewMemoryRowRepository(rows ...models.ProductRow) *MemoryRowRepository {
	r := &MemoryRowRepository{}
	r.Add(rows...)
	return r
}

// Add appends rows in order.
func (r *MemoryRowRepository) Add(rows ...models.ProductRow) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows = append(r.rows, rows...)
}

// GetAll returns a copy of all rows in insertion order.
func (r *MemoryRowRepository) GetAll(ctx context.Context) ([]models.ProductRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rowList := make([]models.ProductRow, len(r.rows))
	copy(rowList, r.rows)
	return rowList, nil
}
