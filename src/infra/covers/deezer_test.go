package covers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"waxwing/src/catalog"
)

func TestDeezerSearch_ReturnsXLCoverAndSmallIcon(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/album" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{
					"title":       "Horses",
					"cover_small": "https://img/56.jpg",
					"cover_xl":    "https://img/1000.jpg",
					"artist":      map[string]string{"name": "Patti Smith"},
				},
			},
		})
	}))
	defer server.Close()

	p := NewDeezerProvider(true)
	p.baseURL = server.URL

	art, err := p.Search(context.Background(), "Horses", "Patti Smith")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if art.CoverURL != "https://img/1000.jpg" || art.IconURL != "https://img/56.jpg" {
		t.Errorf("unexpected artwork urls %+v", art)
	}
	if art.MatchedArtist != "Patti Smith" {
		t.Errorf("unexpected matched artist %q", art.MatchedArtist)
	}
}

func TestDeezerSearch_QuotaErrorInsideOKBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "Exception", "message": "Quota limit exceeded", "code": 4},
		})
	}))
	defer server.Close()

	p := NewDeezerProvider(true)
	p.baseURL = server.URL

	_, err := p.Search(context.Background(), "x", "y")
	if !errors.Is(err, catalog.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestDeezerSearch_SkipsAlbumsWithoutXLCover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"title": "No Art"},
				{"title": "With Art", "cover_xl": "https://img/xl.jpg"},
			},
		})
	}))
	defer server.Close()

	p := NewDeezerProvider(true)
	p.baseURL = server.URL

	art, err := p.Search(context.Background(), "x", "y")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if art.MatchedTitle != "With Art" {
		t.Errorf("expected coverless album skipped, got %+v", art)
	}
	if art.IconURL != "https://img/xl.jpg" {
		t.Errorf("expected icon to fall back to the XL cover, got %q", art.IconURL)
	}
}

func TestDeezerSearch_NoMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer server.Close()

	p := NewDeezerProvider(true)
	p.baseURL = server.URL

	_, err := p.Search(context.Background(), "x", "y")
	if !errors.Is(err, catalog.ErrNoArtwork) {
		t.Errorf("expected ErrNoArtwork, got %v", err)
	}
}
