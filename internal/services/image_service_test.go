package services_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	mux := http.NewServeMux()
	mux.HandleFunc("/tube.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	})
	mux.HandleFunc("/garbage.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not an image"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestImageService_Fetch(t *testing.T) {
	srv := imageServer(t)
	svc := services.NewImageService(srv.Client(), nil)

	p := models.NewProduct(models.ProductInput{Name: "Tube", ImageURL: srv.URL + "/tube.png", Rating: 0, NumRatings: 0, DiscountPrice: 0, BasePrice: 1}, nil)
	img := svc.Fetch(context.Background(), p)

	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
}

func TestImageService_FetchFailuresYieldNoImage(t *testing.T) {
	srv := imageServer(t)
	log, logs := observedLogger()
	svc := services.NewImageService(srv.Client(), log)

	for _, url := range []string{
		srv.URL + "/missing.png",
		srv.URL + "/garbage.jpg",
		"",
		"::not a url",
	} {
		p := models.NewProduct(models.ProductInput{Name: "Broken", ImageURL: url, Rating: 0, NumRatings: 0, DiscountPrice: 0, BasePrice: 1}, nil)
		assert.Nil(t, svc.Fetch(context.Background(), p), url)
	}

	assert.Nil(t, svc.Fetch(context.Background(), nil))
	assert.Equal(t, 4, logs.FilterMessage("failed to fetch product image").Len())
}

func TestImageService_FetchCanceled(t *testing.T) {
	srv := imageServer(t)
	svc := services.NewImageService(srv.Client(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := models.NewProduct(models.ProductInput{Name: "Tube", ImageURL: srv.URL + "/tube.png", Rating: 0, NumRatings: 0, DiscountPrice: 0, BasePrice: 1}, nil)
	assert.Nil(t, svc.Fetch(ctx, p))
}
