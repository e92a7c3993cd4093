package imaging

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"waxwing/src/catalog"
	"waxwing/src/features/config"

	"github.com/nfnt/resize"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// maxImageBytes caps how much of a remote image we are willing to pull in.
const maxImageBytes = 10 << 20

// Service validates resolved cover images and builds small preview
// thumbnails for the dashboard. Thumbnails are cached in memory keyed
// by URL hash.
type Service struct {
	config     *config.Manager
	httpClient *http.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	data    []byte
	fetched time.Time
}

// NewService creates a new imaging service.
func NewService(cfg *config.Manager) *Service {
	return &Service{
		config:     cfg,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		cache:      make(map[string]cacheEntry),
	}
}

// fetch downloads an image, bounded by maxImageBytes.
func (s *Service) fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty image URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

// Validate downloads the image and checks it decodes to something at
// least min_dimension pixels on its shorter side. Failures map onto
// catalog.ErrInvalidImage so runs can report the per-album cause.
func (s *Service) Validate(ctx context.Context, url string) error {
	data, err := s.fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrInvalidImage, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: undecodable image: %v", catalog.ErrInvalidImage, err)
	}

	min := s.config.Get().Artwork.MinDimension
	if cfg.Width < min || cfg.Height < min {
		return fmt.Errorf("%w: %dx%d below minimum %dpx", catalog.ErrInvalidImage, cfg.Width, cfg.Height, min)
	}
	return nil
}

// Thumbnail returns a JPEG preview of the image at url, resized to the
// configured thumbnail size.
func (s *Service) Thumbnail(ctx context.Context, url string) ([]byte, error) {
	key := fmt.Sprintf("%x", md5.Sum([]byte(url)))

	s.mu.Lock()
	if entry, ok := s.cache[key]; ok && time.Since(entry.fetched) < 24*time.Hour {
		s.mu.Unlock()
		return entry.data, nil
	}
	s.mu.Unlock()

	data, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	size := uint(s.config.Get().Artwork.ThumbnailSize)
	thumb := resize.Thumbnail(size, size, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{data: buf.Bytes(), fetched: time.Now()}
	s.mu.Unlock()

	slog.Debug("Thumbnail generated", "url", url, "bytes", buf.Len())
	return buf.Bytes(), nil
}
