package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"go.uber.org/zap"
)

var errUnparsable = errors.New("unparsable after cleanup")

type fieldError struct {
	field string
	raw   string
	err   error
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.field, e.raw, e.err)
}

func (e *fieldError) Unwrap() error {
	return e.err
}

// Load reads every row from repo into the inventory and returns the resulting
// product count. Rows that fail validation or numeric cleanup are logged and
// skipped; a row whose name is already present is dropped silently.
func (inv *Inventory) Load(ctx context.Context, repo repositories.ProductRowRepository) (int, error) {
	rows, err := repo.GetAll(ctx)
	if err != nil {
		return inv.Len(), fmt.Errorf("failed to load inventory %q: %w", inv.name, err)
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	var added, skipped int
	for _, row := range rows {
		product, err := inv.productFromRow(row)
		if err != nil {
			skipped++
			inv.log.Error("skipping product row",
				zap.String("product", row.Name),
				zap.Error(err),
			)
			continue
		}
		if inv.insert(product, inv.defaultStock) {
			added++
		}
	}

	inv.log.Info("inventory loaded",
		zap.String("inventory", inv.name),
		zap.Int("rows", len(rows)),
		zap.Int("added", added),
		zap.Int("skipped", skipped),
		zap.Int("products", len(inv.entries)),
	)
	return len(inv.entries), nil
}

func (inv *Inventory) productFromRow(row models.ProductRow) (*models.Product, error) {
	if err := inv.validate.Struct(row); err != nil {
		return nil, fmt.Errorf("invalid row: %w", err)
	}

	discountPrice, err := cleanFloat(models.ColumnDiscountPrice, row.DiscountPrice)
	if err != nil {
		return nil, err
	}
	actualPrice, err := cleanFloat(models.ColumnActualPrice, row.ActualPrice)
	if err != nil {
		return nil, err
	}
	numRatings, err := cleanInt(models.ColumnNoOfRatings, row.NoOfRatings)
	if err != nil {
		return nil, err
	}
	rating, err := cleanFloat(models.ColumnRatings, row.Ratings)
	if err != nil {
		return nil, err
	}

	return models.NewProduct(models.ProductInput{
		Name:          row.Name,
		Category:      row.MainCategory,
		Subcategory:   row.SubCategory,
		ImageURL:      row.Image,
		ProductURL:    row.Link,
		Rating:        rating,
		NumRatings:    numRatings,
		DiscountPrice: discountPrice,
		BasePrice:     actualPrice,
	}, inv.log), nil
}

// parseNumber accepts cells that are already plain non-negative numbers.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// cleanFloat turns a price or rating cell into a number. Text such as
// "₹1,299" keeps only its digits and decimal points; an empty result is 0.
func cleanFloat(field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if f, ok := parseNumber(s); ok {
		return f, nil
	}

	kept := retain(s, func(r rune) bool { return isDigit(r) || r == '.' })
	if kept == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(kept, 64)
	if err != nil {
		return 0, &fieldError{field: field, raw: raw, err: errUnparsable}
	}
	return f, nil
}

// cleanInt turns a rating count cell into an integer. Text such as "1,024"
// keeps only its digits; an empty result is 0.
func cleanInt(field, raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if f, ok := parseNumber(s); ok && f <= math.MaxInt32 {
		return int(f), nil
	}

	kept := retain(s, isDigit)
	if kept == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(kept)
	if err != nil {
		return 0, &fieldError{field: field, raw: raw, err: err}
	}
	return n, nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func retain(s string, want func(rune) bool) string {
	return strings.Map(func(r rune) rune {
		if want(r) {
			return r
		}
		return -1
	}, s)
}
