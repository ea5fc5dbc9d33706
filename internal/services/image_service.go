package services

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"storefront/internal/models"

	"go.uber.org/zap"
)

// ImageService fetches and decodes product images.
type ImageService struct {
	client *http.Client
	log    *zap.Logger
}

// NewImageService creates a new ImageService. A nil client uses http.DefaultClient.
func NewImageService(client *http.Client, log *zap.Logger) *ImageService {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageService{
		client: client,
		log:    log,
	}
}

// Fetch downloads and decodes the product's image. Any failure is logged and
// reported as a nil image.
func (s *ImageService) Fetch(ctx context.Context, product *models.Product) image.Image {
	if product == nil {
		return nil
	}

	img, err := s.fetch(ctx, product.ImageURL)
	if err != nil {
		s.log.Error("failed to fetch product image",
			zap.String("product", product.Name),
			zap.String("url", product.ImageURL),
			zap.Error(err),
		)
		return nil
	}
	return img
}

func (s *ImageService) fetch(ctx context.Context, url string) (image.Image, error) {
	if url == "" {
		return nil, fmt.Errorf("product has no image url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
