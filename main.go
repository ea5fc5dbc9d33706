package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("storefront: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// --- Flags ---
	fs := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("name", "", "inventory display name")
	fs.String("source", "", "CSV file to load products from")
	fs.String("driver", "", "product source: csv, sqlite or postgres")
	fs.String("dsn", "", "database DSN for the sqlite and postgres sources")
	fs.Int("stock", 0, "stock given to every loaded product")
	fs.String("log-level", "", "diagnostics level: debug, info, warn or error")
	fs.String("log-format", "", "diagnostics format: console or json")
	category := fs.String("category", "", "list products in this category")
	minPrice := fs.Float64("min-price", 0, "lower base price bound for --max-price")
	maxPrice := fs.Float64("max-price", 0, "list products with a base price in [min-price, max-price]")
	buys := fs.StringArray("buy", nil, `purchase request "name=quantity"; repeatable`)
	imageOf := fs.String("image", "", "fetch the image of the named product")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// --- Configuration ---
	v := viper.New()
	for key, flag := range map[string]string{
		config.KeyInventoryName: "name",
		config.KeySourcePath:    "source",
		config.KeySourceDriver:  "driver",
		config.KeyDatabaseDSN:   "dsn",
		config.KeyDefaultStock:  "stock",
		config.KeyLogLevel:      "log-level",
		config.KeyLogFormat:     "log-format",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	zl, err := logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	// --- Load inventory ---
	inv := services.NewInventory(cfg.InventoryName,
		services.WithLogger(zl),
		services.WithDefaultStock(cfg.DefaultStock),
	)

	repo, closeSource, err := openSource(cfg, zl)
	if err != nil {
		return err
	}
	defer closeSource()

	if repo != nil {
		if _, err := inv.Load(ctx, repo); err != nil {
			return err
		}
	}
	fmt.Fprintln(stdout, inv)

	// --- Queries ---
	if fs.Changed("category") {
		printProducts(stdout, fmt.Sprintf("Category %q", *category), inv.Category(*category))
	}
	if fs.Changed("max-price") {
		printProducts(stdout, fmt.Sprintf("Base price %.2f-%.2f", *minPrice, *maxPrice), inv.PriceRange(*minPrice, *maxPrice))
	}

	// --- Purchase ---
	if len(*buys) > 0 {
		requests := make([]models.PurchaseRequest, 0, len(*buys))
		for _, b := range *buys {
			req, err := parsePurchase(b)
			if err != nil {
				return err
			}
			requests = append(requests, req)
		}
		printReceipt(stdout, inv.Purchase(requests))
	}

	// --- Image ---
	if *imageOf != "" {
		fetchImage(ctx, stdout, inv, *imageOf, cfg, zl)
	}

	return nil
}

// openSource picks the product row source described by cfg. A nil repository
// means there is nothing to load.
func openSource(cfg *config.Config, zl *zap.Logger) (repositories.ProductRowRepository, func(), error) {
	noop := func() {}

	switch cfg.SourceDriver {
	case "csv":
		if cfg.SourcePath == "" {
			return nil, noop, nil
		}
		return repositories.NewCSVRowRepository(cfg.SourcePath, zl), noop, nil
	default:
		db, err := repositories.OpenDB(cfg.SourceDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, noop, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repositories.NewGORMRowRepository(db), closeDB, nil
	}
}

// parsePurchase reads a "name=quantity" request. The name may itself contain "=".
func parsePurchase(s string) (models.PurchaseRequest, error) {
	i := strings.LastIndex(s, "=")
	if i <= 0 {
		return models.PurchaseRequest{}, fmt.Errorf("invalid purchase %q: expected name=quantity", s)
	}
	qty, err := strconv.Atoi(strings.TrimSpace(s[i+1:]))
	if err != nil {
		return models.PurchaseRequest{}, fmt.Errorf("invalid purchase quantity in %q: %w", s, err)
	}
	return models.PurchaseRequest{Name: strings.TrimSpace(s[:i]), Quantity: qty}, nil
}

func printProducts(w io.Writer, title string, products []*models.Product) {
	fmt.Fprintf(w, "%s: %d products\n", title, len(products))
	for _, p := range products {
		fmt.Fprintf(w, "  - %s ($%.2f, rating %.1f)\n", p.Name, p.PurchasePrice(), p.Rating())
	}
}

func printReceipt(w io.Writer, receipt models.Receipt) {
	fmt.Fprintf(w, "Receipt %s\n", receipt.ID)
	for _, line := range receipt.Lines {
		fmt.Fprintf(w, "  %s x%d = $%.2f\n", line.Name, line.Quantity, line.Cost)
	}
	fmt.Fprintf(w, "Total: $%.2f\n", receipt.Total)
}

func fetchImage(ctx context.Context, w io.Writer, inv *services.Inventory, name string, cfg *config.Config, zl *zap.Logger) {
	product, ok := inv.Product(name)
	if !ok {
		fmt.Fprintf(w, "Image %q: product not found\n", name)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ImageTimeout)
	defer cancel()

	img := services.NewImageService(&http.Client{Timeout: cfg.ImageTimeout}, zl).Fetch(ctx, product)
	if img == nil {
		fmt.Fprintf(w, "Image %q: unavailable\n", name)
		return
	}
	b := img.Bounds()
	fmt.Fprintf(w, "Image %q: %dx%d\n", name, b.Dx(), b.Dy())
}
