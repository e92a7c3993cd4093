package catalog

import (
	"context"
	"errors"
)

// Workspace is the interface to the remote database holding the albums.
// It's our primary repository interface for the catalog domain.
type Workspace interface {
	// ListAlbums reads every album entry, following pagination cursors.
	ListAlbums(ctx context.Context) ([]*Album, error)

	// UpdatePosition writes the position select value of one page.
	UpdatePosition(ctx context.Context, pageID, position string) error

	// UpdateArtwork patches the page cover and/or icon with external
	// image URLs. Empty arguments leave the corresponding field alone.
	UpdateArtwork(ctx context.Context, pageID, coverURL, iconURL string) error

	// ListPositionOptions returns every option currently defined on the
	// position select property, used and stale alike.
	ListPositionOptions(ctx context.Context) ([]string, error)

	// ReplacePositionOptions rewrites the position select options.
	ReplacePositionOptions(ctx context.Context, options []string) error
}

// Sentinel errors for the remote API failure taxonomy. Infra clients wrap
// these so features and handlers can report the specific cause.
var (
	ErrUnauthorized = errors.New("workspace: unauthorized")
	ErrRateLimited  = errors.New("workspace: rate limited")
	ErrNotFound     = errors.New("workspace: not found")
	ErrUnavailable  = errors.New("workspace: service unavailable")
)

// Artwork resolution failures.
var (
	ErrNoArtwork    = errors.New("artwork: no matching artwork found")
	ErrInvalidImage = errors.New("artwork: resolved image is invalid")
)
