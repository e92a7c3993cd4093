package artwork

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"waxwing/src/catalog"
	"waxwing/src/features/config"
)

// MockWorkspace records artwork writes.
type MockWorkspace struct {
	albums   []*catalog.Album
	writes   map[string][2]string
	writeErr error
	listErr  error
}

func NewMockWorkspace(albums []*catalog.Album) *MockWorkspace {
	return &MockWorkspace{albums: albums, writes: make(map[string][2]string)}
}

func (m *MockWorkspace) ListAlbums(ctx context.Context) ([]*catalog.Album, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.albums, nil
}

func (m *MockWorkspace) UpdatePosition(ctx context.Context, pageID, position string) error {
	return nil
}

func (m *MockWorkspace) UpdateArtwork(ctx context.Context, pageID, coverURL, iconURL string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes[pageID] = [2]string{coverURL, iconURL}
	return nil
}

func (m *MockWorkspace) ListPositionOptions(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *MockWorkspace) ReplacePositionOptions(ctx context.Context, options []string) error {
	return nil
}

// MockProvider returns a fixed artwork or error.
type MockProvider struct {
	name    string
	enabled bool
	art     *Artwork
	err     error
	calls   int
}

func (p *MockProvider) Search(ctx context.Context, title, artist string) (*Artwork, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.art, nil
}

func (p *MockProvider) Name() string    { return p.name }
func (p *MockProvider) IsEnabled() bool { return p.enabled }

type mockValidator struct {
	err error
}

func (v *mockValidator) Validate(ctx context.Context, url string) error {
	return v.err
}

func listenedAlbum(id, title string, hasArt bool) *catalog.Album {
	return &catalog.Album{
		ID:       id,
		Title:    title,
		Artist:   "Artist",
		Status:   catalog.StatusListened,
		HasCover: hasArt,
		HasIcon:  hasArt,
	}
}

func artworkFor(provider string) *Artwork {
	return &Artwork{
		Provider: provider,
		CoverURL: "https://img/cover.jpg",
		IconURL:  "https://img/icon.jpg",
	}
}

func testManager(validate bool) *config.Manager {
	return config.NewManager(&config.Config{
		Artwork: config.Artwork{ValidateImages: validate},
	})
}

func collectResults() (func(Result), *[]Result) {
	var results []Result
	return func(r Result) { results = append(results, r) }, &results
}

func TestRun_DecoratesAlbumsWithoutArtwork(t *testing.T) {
	ws := NewMockWorkspace([]*catalog.Album{
		listenedAlbum("1", "Blue", false),
		{ID: "2", Title: "Unheard", Status: catalog.StatusToListen},
	})
	provider := &MockProvider{name: "spotify", enabled: true, art: artworkFor("spotify")}
	service := NewService(ws, []Provider{provider}, nil, testManager(false))

	onResult, results := collectResults()
	summary, err := service.Run(context.Background(), false, nil, onResult)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if summary.Total != 1 || summary.Updated != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if got := ws.writes["1"]; got[0] != "https://img/cover.jpg" || got[1] != "https://img/icon.jpg" {
		t.Errorf("unexpected artwork write %v", got)
	}
	if len(*results) != 1 || (*results)[0].Outcome != OutcomeUpdated {
		t.Errorf("unexpected results %+v", *results)
	}
}

func TestRun_SkipsDecoratedAlbums(t *testing.T) {
	ws := NewMockWorkspace([]*catalog.Album{listenedAlbum("1", "Blue", true)})
	provider := &MockProvider{name: "spotify", enabled: true, art: artworkFor("spotify")}
	service := NewService(ws, []Provider{provider}, nil, testManager(false))

	summary, err := service.Run(context.Background(), false, nil, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.Skipped != 1 || provider.calls != 0 {
		t.Errorf("expected skip without provider call, summary %+v calls %d", summary, provider.calls)
	}
}

func TestRun_UpdateExistingRefreshesEverything(t *testing.T) {
	ws := NewMockWorkspace([]*catalog.Album{listenedAlbum("1", "Blue", true)})
	provider := &MockProvider{name: "spotify", enabled: true, art: artworkFor("spotify")}
	service := NewService(ws, []Provider{provider}, nil, testManager(false))

	summary, err := service.Run(context.Background(), true, nil, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.Updated != 1 || provider.calls != 1 {
		t.Errorf("expected refresh, summary %+v calls %d", summary, provider.calls)
	}
}

func TestRun_FallsThroughProviderChain(t *testing.T) {
	ws := NewMockWorkspace([]*catalog.Album{listenedAlbum("1", "Blue", false)})
	first := &MockProvider{name: "spotify", enabled: true, err: catalog.ErrNoArtwork}
	second := &MockProvider{name: "deezer", enabled: true, art: artworkFor("deezer")}
	service := NewService(ws, []Provider{first, second}, nil, testManager(false))

	onResult, results := collectResults()
	_, err := service.Run(context.Background(), false, nil, onResult)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("expected chain walk, calls %d/%d", first.calls, second.calls)
	}
	if (*results)[0].Provider != "deezer" {
		t.Errorf("expected deezer credit, got %q", (*results)[0].Provider)
	}
}

func TestRun_SkipsDisabledProviders(t *testing.T) {
	ws := NewMockWorkspace([]*catalog.Album{listenedAlbum("1", "Blue", false)})
	disabled := &MockProvider{name: "spotify", enabled: false, art: artworkFor("spotify")}
	enabled := &MockProvider{name: "deezer", enabled: true, art: artworkFor("deezer")}
	service := NewService(ws, []Provider{disabled, enabled}, nil, testManager(false))

	_, err := service.Run(context.Background(), false, nil, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if disabled.calls != 0 {
		t.Error("expected disabled provider to be skipped")
	}
}

func TestRun_NoArtworkAnywhere(t *testing.T) {
	ws := NewMockWorkspace([]*catalog.Album{listenedAlbum("1", "Obscure", false)})
	provider := &MockProvider{name: "spotify", enabled: true, err: catalog.ErrNoArtwork}
	service := NewService(ws, []Provider{provider}, nil, testManager(false))

	onResult, results := collectResults()
	summary, err := service.Run(context.Background(), false, nil, onResult)
	if err != nil {
		t.Fatalf("expected missing artwork to not fail the run, got %v", err)
	}
	if summary.Missing != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if (*results)[0].Outcome != OutcomeNotFound {
		t.Errorf("expected not_found outcome, got %q", (*results)[0].Outcome)
	}
}

func TestRun_RateLimitedProviderFailsAlbum(t *testing.T) {
	ws := NewMockWorkspace([]*catalog.Album{listenedAlbum("1", "Blue", false)})
	limited := &MockProvider{name: "spotify", enabled: true, err: catalog.ErrRateLimited}
	fallback := &MockProvider{name: "deezer", enabled: true, art: artworkFor("deezer")}
	service := NewService(ws, []Provider{limited, fallback}, nil, testManager(false))

	onResult, results := collectResults()
	_, err := service.Run(context.Background(), false, nil, onResult)
	if err == nil {
		t.Fatal("expected a partial failure error")
	}
	if (*results)[0].Outcome != OutcomeRateLimited {
		t.Errorf("expected rate_limited outcome, got %q", (*results)[0].Outcome)
	}
	if fallback.calls != 0 {
		t.Error("expected the chain to stop at the rate limited provider")
	}
}

func TestRun_RejectsInvalidImages(t *testing.T) {
	ws := NewMockWorkspace([]*catalog.Album{listenedAlbum("1", "Blue", false)})
	provider := &MockProvider{name: "spotify", enabled: true, art: artworkFor("spotify")}
	validator := &mockValidator{err: catalog.ErrInvalidImage}
	service := NewService(ws, []Provider{provider}, validator, testManager(true))

	onResult, results := collectResults()
	_, err := service.Run(context.Background(), false, nil, onResult)
	if err == nil {
		t.Fatal("expected a partial failure error")
	}
	if (*results)[0].Outcome != OutcomeInvalidImage {
		t.Errorf("expected invalid_image outcome, got %q", (*results)[0].Outcome)
	}
	if len(ws.writes) != 0 {
		t.Error("expected no artwork write for a rejected image")
	}
}

func TestRun_StopsOnCancelledContext(t *testing.T) {
	ws := NewMockWorkspace([]*catalog.Album{
		listenedAlbum("1", "A", false),
		listenedAlbum("2", "B", false),
	})
	provider := &MockProvider{name: "spotify", enabled: true, art: artworkFor("spotify")}
	service := NewService(ws, []Provider{provider}, nil, testManager(false))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := service.Run(ctx, false, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(ws.writes) != 0 {
		t.Errorf("expected no writes after cancellation, got %d", len(ws.writes))
	}
}

func TestRun_FailsWhenCatalogUnreadable(t *testing.T) {
	ws := NewMockWorkspace(nil)
	ws.listErr = fmt.Errorf("query: %w", catalog.ErrUnavailable)
	provider := &MockProvider{name: "spotify", enabled: true, art: artworkFor("spotify")}
	service := NewService(ws, []Provider{provider}, nil, testManager(false))

	summary, err := service.Run(context.Background(), false, nil, nil)
	if summary != nil {
		t.Fatalf("expected no summary when the catalog cannot be read, got %+v", summary)
	}
	if !errors.Is(err, catalog.ErrUnavailable) {
		t.Errorf("expected wrapped unavailable error, got %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("expected no provider lookups, got %d", provider.calls)
	}
	if len(ws.writes) != 0 {
		t.Errorf("expected zero writes, got %d", len(ws.writes))
	}
}
