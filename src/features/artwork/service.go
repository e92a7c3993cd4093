package artwork

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"waxwing/src/catalog"
	"waxwing/src/features/config"
	"waxwing/src/features/metrics"
)

// Artwork is a resolved cover/icon pair returned by a provider.
type Artwork struct {
	Provider      string
	CoverURL      string
	IconURL       string
	MatchedTitle  string
	MatchedArtist string
}

// Provider searches an external catalog for an album's artwork.
type Provider interface {
	// Search returns the best artwork match for the album, or
	// catalog.ErrNoArtwork when the provider has nothing usable.
	Search(ctx context.Context, title, artist string) (*Artwork, error)
	Name() string
	IsEnabled() bool
}

// Validator checks that an image URL points at a usable image.
type Validator interface {
	Validate(ctx context.Context, url string) error
}

// Per-album outcomes of a decoration run.
const (
	OutcomeUpdated      = "updated"
	OutcomeSkipped      = "skipped"
	OutcomeNotFound     = "not_found"
	OutcomeRateLimited  = "rate_limited"
	OutcomeInvalidImage = "invalid_image"
	OutcomeFailed       = "failed"
)

// Result is one album's outcome within a decoration run.
type Result struct {
	Album    *catalog.Album
	Outcome  string
	Provider string
	Detail   string
}

// Summary aggregates a whole decoration run.
type Summary struct {
	Total   int
	Updated int
	Skipped int
	Missing int
	Failed  int
}

// Service walks the catalog and decorates album pages with cover and
// icon images resolved from the configured providers.
type Service struct {
	workspace catalog.Workspace
	providers []Provider
	validator Validator
	config    *config.Manager
}

func NewService(workspace catalog.Workspace, providers []Provider, validator Validator, cfg *config.Manager) *Service {
	return &Service{
		workspace: workspace,
		providers: providers,
		validator: validator,
		config:    cfg,
	}
}

// Providers returns the configured provider chain in lookup order.
func (s *Service) Providers() []Provider {
	return s.providers
}

// Run decorates every listened album that needs artwork. updateExisting
// forces a refresh of albums that already carry a cover. Each album's
// outcome is reported through onResult before the next album is tried.
func (s *Service) Run(ctx context.Context, updateExisting bool, progress func(done, total int, status string), onResult func(Result)) (*Summary, error) {
	albums, err := s.workspace.ListAlbums(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}

	var candidates []*catalog.Album
	for _, a := range albums {
		if !a.IsListened() {
			continue
		}
		candidates = append(candidates, a)
	}

	summary := &Summary{Total: len(candidates)}
	report := func(r Result) {
		if onResult != nil {
			onResult(r)
		}
	}

	for i, album := range candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if progress != nil {
			progress(i, len(candidates), fmt.Sprintf("Decorating %s", album.Title))
		}

		if album.HasCover && album.HasIcon && !updateExisting {
			summary.Skipped++
			report(Result{Album: album, Outcome: OutcomeSkipped})
			continue
		}

		res := s.decorate(ctx, album)
		switch res.Outcome {
		case OutcomeUpdated:
			summary.Updated++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeNotFound:
			summary.Missing++
		default:
			summary.Failed++
		}
		report(res)

		// Pace the run so provider and workspace APIs aren't hammered.
		if i < len(candidates)-1 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}
	}

	if progress != nil {
		progress(len(candidates), len(candidates), "Done")
	}
	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d of %d albums failed", summary.Failed, summary.Total)
	}
	return summary, nil
}

func (s *Service) decorate(ctx context.Context, album *catalog.Album) Result {
	art, res := s.lookup(ctx, album)
	if art == nil {
		return res
	}

	if s.config.Get().Artwork.ValidateImages && s.validator != nil {
		if err := s.validator.Validate(ctx, art.CoverURL); err != nil {
			slog.Warn("Cover image rejected", "album", album.Title, "provider", art.Provider, "error", err)
			if errors.Is(err, catalog.ErrInvalidImage) {
				return Result{Album: album, Outcome: OutcomeInvalidImage, Provider: art.Provider, Detail: err.Error()}
			}
			return Result{Album: album, Outcome: OutcomeFailed, Provider: art.Provider, Detail: err.Error()}
		}
	}

	if err := s.workspace.UpdateArtwork(ctx, album.ID, art.CoverURL, art.IconURL); err != nil {
		slog.Error("Failed to write artwork", "album", album.Title, "error", err)
		return Result{Album: album, Outcome: outcomeForError(err), Provider: art.Provider, Detail: err.Error()}
	}

	album.CoverURL = art.CoverURL
	album.IconURL = art.IconURL
	album.HasCover = true
	album.HasIcon = art.IconURL != ""
	slog.Info("Decorated album", "album", album.Title, "artist", album.Artist, "provider", art.Provider)
	return Result{Album: album, Outcome: OutcomeUpdated, Provider: art.Provider}
}

// lookup walks the provider chain in configured order and returns the
// first match. A rate-limited provider fails the album rather than
// silently falling through, so the run report shows the real cause.
func (s *Service) lookup(ctx context.Context, album *catalog.Album) (*Artwork, Result) {
	var lastErr error
	var lastProvider string
	for _, p := range s.providers {
		if !p.IsEnabled() {
			continue
		}
		art, err := p.Search(ctx, album.Title, album.Artist)
		if err == nil && art != nil {
			metrics.CoverLookups.WithLabelValues(p.Name(), "hit").Inc()
			return art, Result{}
		}
		lastErr, lastProvider = err, p.Name()
		switch {
		case errors.Is(err, catalog.ErrNoArtwork):
			metrics.CoverLookups.WithLabelValues(p.Name(), "miss").Inc()
			slog.Debug("No artwork from provider", "provider", p.Name(), "album", album.Title)
		case errors.Is(err, catalog.ErrRateLimited):
			metrics.CoverLookups.WithLabelValues(p.Name(), "rate_limited").Inc()
			slog.Warn("Provider rate limited", "provider", p.Name(), "album", album.Title)
			return nil, Result{Album: album, Outcome: OutcomeRateLimited, Provider: p.Name(), Detail: err.Error()}
		default:
			metrics.CoverLookups.WithLabelValues(p.Name(), "error").Inc()
			slog.Warn("Provider lookup failed", "provider", p.Name(), "album", album.Title, "error", err)
		}
	}

	if lastErr == nil || errors.Is(lastErr, catalog.ErrNoArtwork) {
		return nil, Result{Album: album, Outcome: OutcomeNotFound, Provider: lastProvider}
	}
	return nil, Result{Album: album, Outcome: OutcomeFailed, Provider: lastProvider, Detail: lastErr.Error()}
}

func outcomeForError(err error) string {
	switch {
	case errors.Is(err, catalog.ErrRateLimited):
		return OutcomeRateLimited
	case errors.Is(err, catalog.ErrInvalidImage):
		return OutcomeInvalidImage
	default:
		return OutcomeFailed
	}
}
