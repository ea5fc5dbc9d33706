package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

var errNonFinite = errors.New("value is not a finite number")

// ProductInput carries the raw attribute values a Product is built from.
// Numeric fields accept anything that can be coerced (strings, ints, floats).
type ProductInput struct {
	Name          string
	Category      string
	Subcategory   string
	ImageURL      string
	ProductURL    string
	Rating        any
	NumRatings    any
	DiscountPrice any
	BasePrice     any
}

// Product represents a single catalog item with its pricing and rating data.
// Name is the identity key; the base price is fixed once the product is built.
type Product struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	ImageURL    string `json:"image_url"`
	ProductURL  string `json:"product_url"`

	rating        float64
	numRatings    int
	discountPrice float64
	basePrice     float64

	log *zap.Logger
}

// NewProduct builds a Product from raw values. Numeric fields that cannot be
// coerced fall back to zero and an error-level diagnostic is logged; construction
// itself never fails.
func NewProduct(in ProductInput, log *zap.Logger) *Product {
	if log == nil {
		log = zap.NewNop()
	}

	p := &Product{
		Name:        in.Name,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		ImageURL:    in.ImageURL,
		ProductURL:  in.ProductURL,
		log:         log,
	}

	p.rating = p.coerceFloat("rating", in.Rating)
	p.numRatings = p.coerceInt("num_ratings", in.NumRatings)
	p.discountPrice = p.coerceFloat("discount_price", in.DiscountPrice)
	p.basePrice = p.coerceFloat("base_price", in.BasePrice)

	return p
}

func (p *Product) coerceFloat(field string, raw any) float64 {
	f, err := toFloat(raw)
	if err != nil {
		p.log.Error("invalid numeric value, defaulted to 0",
			zap.String("product", p.Name),
			zap.String("field", field),
			zap.Any("value", raw),
			zap.Error(err),
		)
		return 0
	}
	return f
}

func (p *Product) coerceInt(field string, raw any) int {
	n, err := toInt(raw)
	if err != nil {
		p.log.Error("invalid integer value, defaulted to 0",
			zap.String("product", p.Name),
			zap.String("field", field),
			zap.Any("value", raw),
			zap.Error(err),
		)
		return 0
	}
	return n
}

// Rating returns the current average rating.
func (p *Product) Rating() float64 {
	return p.rating
}

// NumRatings returns how many ratings the average is based on.
func (p *Product) NumRatings() int {
	return p.numRatings
}

// AddSingleRating folds one rating into the average.
func (p *Product) AddSingleRating(rating float64) float64 {
	return p.AddRating(rating, 1)
}

// AddRating folds count ratings with the given mean into the weighted average
// and returns the new rating. A non-finite rating, or a batch that would leave
// zero ratings in total, leaves the product unchanged.
func (p *Product) AddRating(rating float64, count int) float64 {
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		p.log.Error("invalid rating value",
			zap.String("product", p.Name),
			zap.String("field", "rating"),
			zap.Float64("value", rating),
			zap.Int("count", count),
		)
		return p.rating
	}

	total := p.numRatings + count
	if total == 0 {
		p.log.Warn("rating update ignored, no ratings would remain",
			zap.String("product", p.Name),
			zap.Int("count", count),
		)
		return p.rating
	}

	p.rating = (p.rating*float64(p.numRatings) + rating*float64(count)) / float64(total)
	p.numRatings = total
	return p.rating
}

// PurchasePrice is the price actually paid: the discount price when one is set,
// otherwise the base price.
func (p *Product) PurchasePrice() float64 {
	if p.discountPrice > 0 {
		return p.discountPrice
	}
	return p.basePrice
}

// BasePrice returns the undiscounted listed price.
func (p *Product) BasePrice() float64 {
	return p.basePrice
}

// DiscountPrice returns the stored discount price; 0 means no discount.
func (p *Product) DiscountPrice() float64 {
	return p.discountPrice
}

// SetDiscountPercent sets the discount price to the base price reduced by the
// given percentage, truncated (not rounded) to the cent. Out-of-range
// percentages are applied as-is.
func (p *Product) SetDiscountPercent(percent float64) float64 {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		p.log.Error("invalid discount percentage",
			zap.String("product", p.Name),
			zap.String("field", "discount_percent"),
			zap.Float64("value", percent),
		)
		return p.discountPrice
	}

	hundred := decimal.NewFromInt(100)
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(percent).Div(hundred))
	price := decimal.NewFromFloat(p.basePrice).Mul(factor).Truncate(2)

	p.discountPrice = price.InexactFloat64()
	return p.discountPrice
}

// SetDiscountPrice overwrites the discount price. Negative or non-finite
// values are rejected and the previous price is returned unchanged.
func (p *Product) SetDiscountPrice(price float64) float64 {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		p.log.Error("invalid discount price, keeping previous value",
			zap.String("product", p.Name),
			zap.String("field", "discount_price"),
			zap.Float64("value", price),
			zap.Float64("previous", p.discountPrice),
		)
		return p.discountPrice
	}
	p.discountPrice = price
	return p.discountPrice
}

// Less orders products by base price only.
func (p *Product) Less(other *Product) bool {
	return p.basePrice < other.basePrice
}

// Equal reports whether two products share a name. Prices and ratings are ignored.
func (p *Product) Equal(other *Product) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Name == other.Name
}

// Clone returns an independent copy of the product.
func (p *Product) Clone() *Product {
	cp := *p
	return &cp
}

func (p *Product) String() string {
	return fmt.Sprintf("Product Name: %s\n"+
		"Category: %s | Subcategory: %s\n"+
		"Rating: %g (%d ratings)\n"+
		"Discount Price: $%.2f | Regular Price: $%.2f\n"+
		"Product URL: %s\n"+
		"Image URL: %s",
		p.Name, p.Category, p.Subcategory,
		p.rating, p.numRatings,
		p.discountPrice, p.basePrice,
		p.ProductURL, p.ImageURL)
}

func toFloat(raw any) (float64, error) {
	if raw == nil {
		return 0, errors.New("value is missing")
	}
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNonFinite
	}
	return f, nil
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case nil:
		return 0, errors.New("value is missing")
	case string:
		// base 10 only; cast would read a leading zero as octal
		return strconv.Atoi(strings.TrimSpace(v))
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return 0, errNonFinite
		}
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, errNonFinite
		}
	}
	return cast.ToIntE(raw)
}
