package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"waxwing/src/catalog"
	"waxwing/src/features/config"
)

func testManager(minDimension, thumbnailSize int) *config.Manager {
	return config.NewManager(&config.Config{
		Artwork: config.Artwork{
			MinDimension:  minDimension,
			ThumbnailSize: thumbnailSize,
		},
	})
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func imageServer(data []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
}

func TestValidate_AcceptsLargeEnoughImage(t *testing.T) {
	server := imageServer(pngBytes(t, 500, 500))
	defer server.Close()

	s := NewService(testManager(300, 128))
	if err := s.Validate(context.Background(), server.URL); err != nil {
		t.Errorf("expected valid image, got %v", err)
	}
}

func TestValidate_RejectsSmallImage(t *testing.T) {
	server := imageServer(pngBytes(t, 100, 500))
	defer server.Close()

	s := NewService(testManager(300, 128))
	err := s.Validate(context.Background(), server.URL)
	if !errors.Is(err, catalog.ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", err)
	}
}

func TestValidate_RejectsNonImage(t *testing.T) {
	server := imageServer([]byte("<html>not an image</html>"))
	defer server.Close()

	s := NewService(testManager(300, 128))
	err := s.Validate(context.Background(), server.URL)
	if !errors.Is(err, catalog.ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", err)
	}
}

func TestValidate_RejectsUnreachableURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := NewService(testManager(300, 128))
	err := s.Validate(context.Background(), server.URL)
	if !errors.Is(err, catalog.ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", err)
	}
}

func TestThumbnail_ResizesAndCaches(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(pngBytes(t, 600, 400))
	}))
	defer server.Close()

	s := NewService(testManager(0, 128))

	thumb, err := s.Thumbnail(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("thumbnail is not a JPEG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > 128 || bounds.Dy() > 128 {
		t.Errorf("expected thumbnail within 128px, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	if _, err := s.Thumbnail(context.Background(), server.URL); err != nil {
		t.Fatalf("expected cached fetch, got %v", err)
	}
	if requests != 1 {
		t.Errorf("expected 1 upstream request, got %d", requests)
	}
}
