package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultStock is the stock every ingested product starts with.
const DefaultStock = 10

type stockEntry struct {
	product *models.Product
	stock   int
}

// Inventory holds products keyed by name together with their available stock.
type Inventory struct {
	name         string
	entries      map[string]*stockEntry
	defaultStock int
	log          *zap.Logger
	validate     *validator.Validate
	mu           sync.RWMutex
}

// Option configures an Inventory.
type Option func(*Inventory)

// WithLogger sets the diagnostics sink.
func WithLogger(log *zap.Logger) Option {
	return func(inv *Inventory) {
		if log != nil {
			inv.log = log
		}
	}
}

// WithDefaultStock overrides the stock given to newly ingested products.
func WithDefaultStock(stock int) Option {
	return func(inv *Inventory) {
		inv.defaultStock = stock
	}
}

// NewInventory creates an empty inventory.
func NewInventory(name string, opts ...Option) *Inventory {
	inv := &Inventory{
		name:         name,
		entries:      make(map[string]*stockEntry),
		defaultStock: DefaultStock,
		log:          zap.NewNop(),
		validate:     validator.New(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// LoadInventory creates an inventory and fills it from repo.
func LoadInventory(ctx context.Context, name string, repo repositories.ProductRowRepository, opts ...Option) (*Inventory, error) {
	inv := NewInventory(name, opts...)
	if _, err := inv.Load(ctx, repo); err != nil {
		return nil, err
	}
	return inv, nil
}

// Name returns the display name.
func (inv *Inventory) Name() string {
	return inv.name
}

// Len returns the number of distinct products.
func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	return len(inv.entries)
}

func (inv *Inventory) String() string {
	return fmt.Sprintf("Inventory: %s, Number of Products: %d", inv.name, inv.Len())
}

// Add inserts a product with the given stock. It returns false, leaving the
// inventory untouched, when a product with the same name is already present.
func (inv *Inventory) Add(product *models.Product, stock int) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	return inv.insert(product, stock)
}

func (inv *Inventory) insert(product *models.Product, stock int) bool {
	if _, exists := inv.entries[product.Name]; exists {
		return false
	}
	inv.entries[product.Name] = &stockEntry{product: product, stock: stock}
	return true
}

// Product looks a product up by name.
func (inv *Inventory) Product(name string) (*models.Product, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	e, ok := inv.entries[name]
	if !ok {
		return nil, false
	}
	return e.product, true
}

// Stock returns the units available for a product.
func (inv *Inventory) Stock(name string) (int, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	e, ok := inv.entries[name]
	if !ok {
		return 0, false
	}
	return e.stock, true
}

// AdjustStock sets the stock of a product directly. Unknown names are ignored.
func (inv *Inventory) AdjustStock(name string, stock int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if e, ok := inv.entries[name]; ok {
		e.stock = stock
	}
}

// All returns every product, sorted by name.
func (inv *Inventory) All() []*models.Product {
	return inv.filter(func(*models.Product) bool { return true })
}

// Category returns the products whose category matches exactly. An empty
// category returns every product.
func (inv *Inventory) Category(category string) []*models.Product {
	if category == "" {
		return inv.All()
	}
	return inv.filter(func(p *models.Product) bool { return p.Category == category })
}

// PriceRange returns the products whose base price lies in [low, high].
// Discounts are not taken into account.
func (inv *Inventory) PriceRange(low, high float64) []*models.Product {
	return inv.filter(func(p *models.Product) bool {
		return low <= p.BasePrice() && p.BasePrice() <= high
	})
}

func (inv *Inventory) filter(keep func(*models.Product) bool) []*models.Product {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	products := make([]*models.Product, 0, len(inv.entries))
	for _, e := range inv.entries {
		if keep(e.product) {
			products = append(products, e.product)
		}
	}
	slices.SortFunc(products, func(a, b *models.Product) int {
		return strings.Compare(a.Name, b.Name)
	})
	return products
}

// ItemRating returns the rating of the named product.
func (inv *Inventory) ItemRating(name string) (float64, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	e, ok := inv.entries[name]
	if !ok {
		return 0, false
	}
	return e.product.Rating(), true
}

// AddReviews folds count ratings with the given mean into the named product
// and returns its new rating.
func (inv *Inventory) AddReviews(name string, rating float64, count int) (float64, bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	e, ok := inv.entries[name]
	if !ok {
		return 0, false
	}
	return e.product.AddRating(rating, count), true
}

// Purchase buys each requested product in order. Unknown products are skipped;
// a request larger than the stock buys whatever is left. Each line is charged
// at the product's purchase price.
func (inv *Inventory) Purchase(requests []models.PurchaseRequest) models.Receipt {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	total := decimal.Zero
	lines := make([]models.PurchaseLine, 0, len(requests))

	for _, req := range requests {
		e, ok := inv.entries[req.Name]
		if !ok {
			continue
		}

		quantity := max(min(req.Quantity, e.stock), 0)
		cost := decimal.NewFromInt(int64(quantity)).Mul(decimal.NewFromFloat(e.product.PurchasePrice()))

		e.stock -= quantity
		total = total.Add(cost)
		lines = append(lines, models.PurchaseLine{
			Name:     req.Name,
			Quantity: quantity,
			Cost:     cost.InexactFloat64(),
		})
	}

	return models.Receipt{
		ID:        uuid.New().String(),
		Total:     total.InexactFloat64(),
		Lines:     lines,
		CreatedAt: time.Now(),
	}
}

// Equal reports whether both inventories hold the same set of product names.
// Stock, prices and ratings are not compared.
func (inv *Inventory) Equal(other *Inventory) bool {
	if inv == other {
		return true
	}
	if inv == nil || other == nil {
		return false
	}

	left, right := inv.names(), other.names()
	if len(left) != len(right) {
		return false
	}
	for name := range left {
		if _, ok := right[name]; !ok {
			return false
		}
	}
	return true
}

func (inv *Inventory) names() map[string]struct{} {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	set := make(map[string]struct{}, len(inv.entries))
	for name := range inv.entries {
		set[name] = struct{}{}
	}
	return set
}

// Merge returns a new inventory holding every entry of inv plus the entries of
// other whose names inv does not have. Entries are copied, so stock and
// product changes on the result never reach either source.
func (inv *Inventory) Merge(other *Inventory) *Inventory {
	merged := NewInventory(inv.name+" + "+other.name,
		WithLogger(inv.log),
		WithDefaultStock(inv.defaultStock),
	)

	for _, e := range inv.snapshot() {
		merged.insert(e.product, e.stock)
	}
	for _, e := range other.snapshot() {
		merged.insert(e.product, e.stock)
	}
	return merged
}

// snapshot copies all entries in name order.
func (inv *Inventory) snapshot() []stockEntry {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	entries := make([]stockEntry, 0, len(inv.entries))
	for _, e := range inv.entries {
		entries = append(entries, stockEntry{product: e.product.Clone(), stock: e.stock})
	}
	slices.SortFunc(entries, func(a, b stockEntry) int {
		return strings.Compare(a.product.Name, b.product.Name)
	})
	return entries
}
