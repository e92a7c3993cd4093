package covers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"waxwing/src/catalog"
	"waxwing/src/features/artwork"
)

const deezerAPIURL = "https://api.deezer.com"

type deezerSearchResponse struct {
	Data  []deezerAlbum `json:"data"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type deezerAlbum struct {
	Title      string `json:"title"`
	CoverSmall string `json:"cover_small"`
	CoverXL    string `json:"cover_xl"`
	Artist     struct {
		Name string `json:"name"`
	} `json:"artist"`
}

// DeezerProvider resolves artwork through the public Deezer search API.
// Needs no credentials, which makes it a good default fallback.
type DeezerProvider struct {
	enabled    bool
	httpClient *http.Client
	baseURL    string
}

// NewDeezerProvider creates a new Deezer provider.
func NewDeezerProvider(enabled bool) *DeezerProvider {
	return &DeezerProvider{
		enabled:    enabled,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    deezerAPIURL,
	}
}

func (p *DeezerProvider) Search(ctx context.Context, title, artist string) (*artwork.Artwork, error) {
	query := fmt.Sprintf(`album:"%s" artist:"%s"`, title, artist)
	searchURL := fmt.Sprintf("%s/search/album?q=%s&limit=5", p.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deezer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deezer API request failed with status %d", resp.StatusCode)
	}

	var searchResp deezerSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode deezer response: %w", err)
	}

	// Deezer reports quota errors inside a 200 body.
	if searchResp.Error != nil {
		if searchResp.Error.Code == 4 {
			return nil, fmt.Errorf("%w: deezer", catalog.ErrRateLimited)
		}
		return nil, fmt.Errorf("deezer API error: %s", searchResp.Error.Message)
	}

	for _, album := range searchResp.Data {
		if album.CoverXL == "" {
			continue
		}
		icon := album.CoverSmall
		if icon == "" {
			icon = album.CoverXL
		}
		return &artwork.Artwork{
			Provider:      p.Name(),
			CoverURL:      album.CoverXL,
			IconURL:       icon,
			MatchedTitle:  album.Title,
			MatchedArtist: album.Artist.Name,
		}, nil
	}

	return nil, catalog.ErrNoArtwork
}

func (p *DeezerProvider) Name() string    { return "deezer" }
func (p *DeezerProvider) IsEnabled() bool { return p.enabled }
