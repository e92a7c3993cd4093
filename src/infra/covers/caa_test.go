package covers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"waxwing/src/catalog"

	"github.com/pborman/uuid"
	cca "gopkg.in/mineo/gocaa.v1"
)

// stubCAAClient answers front image probes from a fixed map.
type stubCAAClient struct {
	hasFront map[string]bool
}

func (s *stubCAAClient) GetReleaseFront(mbid uuid.UUID, size int) (cca.CoverArtImage, error) {
	if s.hasFront[mbid.String()] {
		return cca.CoverArtImage{}, nil
	}
	return cca.CoverArtImage{}, cca.HTTPError{StatusCode: http.StatusNotFound}
}

func testCAAProvider(baseURL string, client CAAClient) *CoverArtArchiveProvider {
	return &CoverArtArchiveProvider{
		enabled:    true,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		caaClient:  client,
		baseURL:    baseURL,
	}
}

func mbSearchServer(t *testing.T, releases []map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/2/release/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("fmt") != "json" {
			t.Error("expected fmt=json query parameter")
		}
		json.NewEncoder(w).Encode(map[string]any{"releases": releases})
	}))
}

func TestCAASearch_SkipsReleasesWithoutFrontImage(t *testing.T) {
	server := mbSearchServer(t, []map[string]any{
		{"id": "11111111-1111-1111-1111-111111111111", "score": 100},
		{"id": "22222222-2222-2222-2222-222222222222", "score": 95},
	})
	defer server.Close()

	p := testCAAProvider(server.URL, &stubCAAClient{hasFront: map[string]bool{
		"22222222-2222-2222-2222-222222222222": true,
	}})

	art, err := p.Search(context.Background(), "Blue", "Joni Mitchell")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	wantCover := "https://coverartarchive.org/release/22222222-2222-2222-2222-222222222222/front-500"
	if art.CoverURL != wantCover {
		t.Errorf("expected %s, got %s", wantCover, art.CoverURL)
	}
	wantIcon := "https://coverartarchive.org/release/22222222-2222-2222-2222-222222222222/front-250"
	if art.IconURL != wantIcon {
		t.Errorf("expected %s, got %s", wantIcon, art.IconURL)
	}
}

func TestCAASearch_IgnoresLowScoreMatches(t *testing.T) {
	server := mbSearchServer(t, []map[string]any{
		{"id": "11111111-1111-1111-1111-111111111111", "score": 60},
	})
	defer server.Close()

	p := testCAAProvider(server.URL, &stubCAAClient{hasFront: map[string]bool{
		"11111111-1111-1111-1111-111111111111": true,
	}})

	_, err := p.Search(context.Background(), "x", "y")
	if !errors.Is(err, catalog.ErrNoArtwork) {
		t.Errorf("expected ErrNoArtwork for fuzzy matches, got %v", err)
	}
}

func TestCAASearch_NoFrontImageAnywhere(t *testing.T) {
	server := mbSearchServer(t, []map[string]any{
		{"id": "11111111-1111-1111-1111-111111111111", "score": 100},
	})
	defer server.Close()

	p := testCAAProvider(server.URL, &stubCAAClient{})

	_, err := p.Search(context.Background(), "x", "y")
	if !errors.Is(err, catalog.ErrNoArtwork) {
		t.Errorf("expected ErrNoArtwork, got %v", err)
	}
}

func TestCAASearch_MusicBrainzOverloaded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := testCAAProvider(server.URL, &stubCAAClient{})
	_, err := p.Search(context.Background(), "x", "y")
	if !errors.Is(err, catalog.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}
