package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsCSV = `name,main_category,sub_category,image,link,ratings,no_of_ratings,discount_price,actual_price
Yoga Mat,sports & fitness,Yoga,%IMAGE%,https://shop.example/mat,4.1,"1,020",₹399,₹499
Hex Dumbbell 5kg,sports & fitness,Strength Training,,https://shop.example/dumbbell,4.5,310,"₹1,249","₹2,000"
Dash Cam,car & motorbike,Car Electronics,,https://shop.example/dashcam,3.9,88,,"₹5,499"
`

func writeProducts(t *testing.T, imageURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	content := bytes.ReplaceAll([]byte(productsCSV), []byte("%IMAGE%"), []byte(imageURL))
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun_EmptyInventory(t *testing.T) {
	out, _, err := runCLI(t, "--name", "Empty")

	require.NoError(t, err)
	assert.Equal(t, "Inventory: Empty, Number of Products: 0\n", out)
}

func TestRun_LoadAndQuery(t *testing.T) {
	path := writeProducts(t, "")

	out, _, err := runCLI(t,
		"--name", "Shop",
		"--source", path,
		"--category", "sports & fitness",
		"--min-price", "1000",
		"--max-price", "6000",
	)

	require.NoError(t, err)
	assert.Contains(t, out, "Inventory: Shop, Number of Products: 3\n")
	assert.Contains(t, out, "Category \"sports & fitness\": 2 products\n"+
		"  - Hex Dumbbell 5kg ($1249.00, rating 4.5)\n"+
		"  - Yoga Mat ($399.00, rating 4.1)\n")
	assert.Contains(t, out, "Base price 1000.00-6000.00: 2 products\n"+
		"  - Dash Cam ($5499.00, rating 3.9)\n"+
		"  - Hex Dumbbell 5kg ($1249.00, rating 4.5)\n")
}

func TestRun_Purchase(t *testing.T) {
	path := writeProducts(t, "")

	out, _, err := runCLI(t,
		"--source", path,
		"--stock", "2",
		"--buy", "Yoga Mat=5",
		"--buy", "Treadmill=1",
		"--buy", "Dash Cam=1",
	)

	require.NoError(t, err)
	assert.Contains(t, out, "Receipt ")
	assert.Contains(t, out, "  Yoga Mat x2 = $798.00\n")
	assert.Contains(t, out, "  Dash Cam x1 = $5499.00\n")
	assert.NotContains(t, out, "Treadmill")
	assert.Contains(t, out, "Total: $6297.00\n")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"--nope"}},
		{name: "missing file", args: []string{"--source", filepath.Join(t.TempDir(), "missing.csv")}},
		{name: "bad purchase", args: []string{"--buy", "Yoga Mat"}},
		{name: "bad driver", args: []string{"--driver", "mysql", "--dsn", "x"}},
		{name: "postgres without dsn", args: []string{"--driver", "postgres"}},
		{name: "bad log level", args: []string{"--log-level", "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestRun_SQLiteSource(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "products.db")
	db, err := repositories.OpenDB("sqlite", dsn)
	require.NoError(t, err)
	repo := repositories.NewGORMRowRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	require.NoError(t, db.Create(&[]models.ProductRow{
		{Name: "Bench", MainCategory: "sports & fitness", ActualPrice: "₹4,999"},
		{Name: "Rope", MainCategory: "sports & fitness", DiscountPrice: "₹199", ActualPrice: "₹299"},
	}).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	out, _, err := runCLI(t, "--name", "DB", "--driver", "sqlite", "--dsn", dsn, "--buy", "Rope=1")

	require.NoError(t, err)
	assert.Contains(t, out, "Inventory: DB, Number of Products: 2\n")
	assert.Contains(t, out, "Total: $199.00\n")
}

func TestRun_SkippedRowsAreLogged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"name,main_category,sub_category,image,link,ratings,no_of_ratings,discount_price,actual_price\n"+
			"Broken,sports,,,,4,1,1.2.3,10\n"+
			"Fine,sports,,,,4,1,,10\n"), 0o600))

	out, logs, err := runCLI(t, "--source", path, "--log-format", "json")

	require.NoError(t, err)
	assert.Contains(t, out, "Number of Products: 1\n")
	assert.Contains(t, logs, `"msg":"skipping product row"`)
	assert.Contains(t, logs, `"product":"Broken"`)
}

func TestRun_Image(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		img := image.NewRGBA(image.Rect(0, 0, 3, 2))
		img.Set(0, 0, color.White)
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	defer server.Close()

	path := writeProducts(t, server.URL+"/mat.png")

	out, _, err := runCLI(t, "--source", path, "--image", "Yoga Mat")
	require.NoError(t, err)
	assert.Contains(t, out, "Image \"Yoga Mat\": 3x2\n")

	out, _, err = runCLI(t, "--source", path, "--image", "Dash Cam")
	require.NoError(t, err)
	assert.Contains(t, out, "Image \"Dash Cam\": unavailable\n")

	out, _, err = runCLI(t, "--source", path, "--image", "Treadmill")
	require.NoError(t, err)
	assert.Contains(t, out, "Image \"Treadmill\": product not found\n")
}

func TestParsePurchase(t *testing.T) {
	tests := []struct {
		in      string
		want    models.PurchaseRequest
		wantErr bool
	}{
		{in: "Yoga Mat=3", want: models.PurchaseRequest{Name: "Yoga Mat", Quantity: 3}},
		{in: " Rope = 1 ", want: models.PurchaseRequest{Name: "Rope", Quantity: 1}},
		{in: "A=B=2", want: models.PurchaseRequest{Name: "A=B", Quantity: 2}},
		{in: "Ball=-1", want: models.PurchaseRequest{Name: "Ball", Quantity: -1}},
		{in: "Ball", wantErr: true},
		{in: "=4", wantErr: true},
		{in: "Ball=lots", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePurchase(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
