package covers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"waxwing/src/catalog"
)

// testSpotifyProvider bypasses the oauth2 transport so requests hit the
// fake server directly.
func testSpotifyProvider(baseURL string) *SpotifyProvider {
	return &SpotifyProvider{
		enabled:    true,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
	}
}

func TestSpotifySearch_PicksLargestAndSmallestImage(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("q")
		json.NewEncoder(w).Encode(map[string]any{
			"albums": map[string]any{
				"items": []map[string]any{
					{
						"name":    "Blue",
						"artists": []map[string]string{{"name": "Joni Mitchell"}},
						"images": []map[string]any{
							{"url": "https://img/640.jpg", "width": 640, "height": 640},
							{"url": "https://img/300.jpg", "width": 300, "height": 300},
							{"url": "https://img/64.jpg", "width": 64, "height": 64},
						},
					},
				},
			},
		})
	}))
	defer server.Close()

	p := testSpotifyProvider(server.URL)
	art, err := p.Search(context.Background(), "Blue", "Joni Mitchell")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if art.CoverURL != "https://img/640.jpg" {
		t.Errorf("expected largest image as cover, got %s", art.CoverURL)
	}
	if art.IconURL != "https://img/64.jpg" {
		t.Errorf("expected smallest image as icon, got %s", art.IconURL)
	}
	if art.Provider != "spotify" || art.MatchedTitle != "Blue" || art.MatchedArtist != "Joni Mitchell" {
		t.Errorf("unexpected artwork metadata %+v", art)
	}

	decoded, _ := url.QueryUnescape(query)
	if decoded != "album:Blue artist:Joni Mitchell" {
		t.Errorf("unexpected search query %q", decoded)
	}
}

func TestSpotifySearch_SkipsAlbumsWithoutImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"albums": map[string]any{
				"items": []map[string]any{
					{"name": "No Images", "images": []any{}},
					{"name": "Has One", "images": []map[string]any{{"url": "https://img/a.jpg"}}},
				},
			},
		})
	}))
	defer server.Close()

	p := testSpotifyProvider(server.URL)
	art, err := p.Search(context.Background(), "x", "y")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if art.MatchedTitle != "Has One" {
		t.Errorf("expected imageless album skipped, got %+v", art)
	}
}

func TestSpotifySearch_NoMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"albums": map[string]any{"items": []any{}}})
	}))
	defer server.Close()

	p := testSpotifyProvider(server.URL)
	_, err := p.Search(context.Background(), "x", "y")
	if !errors.Is(err, catalog.ErrNoArtwork) {
		t.Errorf("expected ErrNoArtwork, got %v", err)
	}
}

func TestSpotifySearch_MapsStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, catalog.ErrRateLimited},
		{http.StatusUnauthorized, catalog.ErrUnauthorized},
	}
	for _, c := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(c.status)
		}))
		p := testSpotifyProvider(server.URL)
		_, err := p.Search(context.Background(), "x", "y")
		if !errors.Is(err, c.want) {
			t.Errorf("status %d: expected %v, got %v", c.status, c.want, err)
		}
		server.Close()
	}
}

func TestNewSpotifyProvider_DisabledWithoutCredentials(t *testing.T) {
	p := NewSpotifyProvider(true, "", "")
	if p.IsEnabled() {
		t.Error("expected provider without credentials to be disabled")
	}
}
