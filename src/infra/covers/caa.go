package covers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"waxwing/src/catalog"
	"waxwing/src/features/artwork"

	"github.com/pborman/uuid"
	cca "gopkg.in/mineo/gocaa.v1"
)

const (
	musicBrainzAPIURL = "https://musicbrainz.org"
	caaBaseURL        = "https://coverartarchive.org/release"
	userAgent         = "Waxwing/1.0 (album catalog manager)"

	// MusicBrainz search results carry a 0-100 match score; anything
	// below this is too fuzzy to trust for artwork.
	minScore = 90
)

// CAAClient fetches a release front image from the Cover Art Archive.
// Wrapped in an interface so tests can stub the archive away.
type CAAClient interface {
	GetReleaseFront(mbid uuid.UUID, size int) (image cca.CoverArtImage, err error)
}

type mbReleaseSearchResponse struct {
	Releases []struct {
		ID    string `json:"id"`
		Score int    `json:"score"`
	} `json:"releases"`
}

// CoverArtArchiveProvider resolves artwork in two steps: a MusicBrainz
// release search for candidate MBIDs, then a Cover Art Archive front
// image probe for the first release that actually has one.
type CoverArtArchiveProvider struct {
	enabled    bool
	httpClient *http.Client
	caaClient  CAAClient
	baseURL    string
}

// NewCoverArtArchiveProvider creates a new Cover Art Archive provider.
func NewCoverArtArchiveProvider(enabled bool) *CoverArtArchiveProvider {
	return &CoverArtArchiveProvider{
		enabled:    enabled,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		caaClient:  cca.NewCAAClient(userAgent),
		baseURL:    musicBrainzAPIURL,
	}
}

func (p *CoverArtArchiveProvider) Search(ctx context.Context, title, artist string) (*artwork.Artwork, error) {
	mbIDs, err := p.searchReleaseIDs(ctx, title, artist)
	if err != nil {
		return nil, err
	}

	for _, mbidStr := range mbIDs {
		mbid := cca.StringToUUID(mbidStr)
		// Probe the archive; releases without a front image 404.
		_, err := p.caaClient.GetReleaseFront(mbid, cca.ImageSize500)
		if err != nil {
			var httpErr cca.HTTPError
			if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
				continue
			}
			return nil, fmt.Errorf("cover art archive lookup failed: %w", err)
		}
		return &artwork.Artwork{
			Provider: p.Name(),
			CoverURL: fmt.Sprintf("%s/%s/front-500", caaBaseURL, mbidStr),
			IconURL:  fmt.Sprintf("%s/%s/front-250", caaBaseURL, mbidStr),
		}, nil
	}

	return nil, catalog.ErrNoArtwork
}

// searchReleaseIDs queries MusicBrainz for releases matching the album.
// A release may exist once per country or year; any of them will do for
// artwork, so all candidates above the score cutoff are returned.
func (p *CoverArtArchiveProvider) searchReleaseIDs(ctx context.Context, title, artist string) ([]string, error) {
	query := fmt.Sprintf(`release:"%s" AND artist:"%s"`, title, artist)
	searchURL := fmt.Sprintf("%s/ws/2/release/?query=%s&fmt=json&limit=5", p.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, fmt.Errorf("%w: musicbrainz", catalog.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("musicbrainz API request failed with status %d", resp.StatusCode)
	}

	var searchResp mbReleaseSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode musicbrainz response: %w", err)
	}

	var ids []string
	for _, release := range searchResp.Releases {
		if release.Score >= minScore {
			ids = append(ids, release.ID)
		}
	}
	if len(ids) == 0 {
		return nil, catalog.ErrNoArtwork
	}
	return ids, nil
}

func (p *CoverArtArchiveProvider) Name() string    { return "coverartarchive" }
func (p *CoverArtArchiveProvider) IsEnabled() bool { return p.enabled }
