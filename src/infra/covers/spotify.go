package covers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"waxwing/src/catalog"
	"waxwing/src/features/artwork"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyAPIURL   = "https://api.spotify.com/v1"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// Spotify search response, reduced to what we use.
type spotifySearchResponse struct {
	Albums struct {
		Items []spotifyAlbum `json:"items"`
	} `json:"albums"`
}

type spotifyAlbum struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Images []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"images"`
}

// SpotifyProvider resolves artwork through the Spotify search API using
// the client-credentials flow. The oauth2 transport refreshes the token
// on its own.
type SpotifyProvider struct {
	enabled    bool
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyProvider creates a new Spotify provider. Without credentials
// the provider reports itself disabled.
func NewSpotifyProvider(enabled bool, clientID, clientSecret string) *SpotifyProvider {
	if clientID == "" || clientSecret == "" {
		enabled = false
	}
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}
	return &SpotifyProvider{
		enabled:    enabled,
		httpClient: cc.Client(context.Background()),
		baseURL:    spotifyAPIURL,
	}
}

func (p *SpotifyProvider) Search(ctx context.Context, title, artist string) (*artwork.Artwork, error) {
	query := fmt.Sprintf("album:%s artist:%s", title, artist)
	searchURL := fmt.Sprintf("%s/search?q=%s&type=album&limit=5", p.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: spotify", catalog.ErrRateLimited)
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: spotify credentials rejected", catalog.ErrUnauthorized)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("spotify API request failed with status %d", resp.StatusCode)
	}

	var searchResp spotifySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode spotify response: %w", err)
	}

	for _, album := range searchResp.Albums.Items {
		if len(album.Images) == 0 {
			continue
		}
		// Spotify orders images largest first.
		art := &artwork.Artwork{
			Provider:     p.Name(),
			CoverURL:     album.Images[0].URL,
			IconURL:      album.Images[len(album.Images)-1].URL,
			MatchedTitle: album.Name,
		}
		if len(album.Artists) > 0 {
			art.MatchedArtist = album.Artists[0].Name
		}
		return art, nil
	}

	return nil, catalog.ErrNoArtwork
}

func (p *SpotifyProvider) Name() string    { return "spotify" }
func (p *SpotifyProvider) IsEnabled() bool { return p.enabled }
