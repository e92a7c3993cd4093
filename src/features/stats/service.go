package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"waxwing/src/catalog"
)

// Service computes catalog statistics. Snapshots are cached briefly so
// the dashboard can poll without hammering the workspace API.
type Service struct {
	workspace catalog.Workspace

	mu       sync.Mutex
	cached   catalog.Stats
	cachedAt time.Time
}

const cacheTTL = 30 * time.Second

// NewService creates a new stats service.
func NewService(workspace catalog.Workspace) *Service {
	return &Service{workspace: workspace}
}

// Get returns current catalog statistics.
func (s *Service) Get(ctx context.Context) (catalog.Stats, error) {
	s.mu.Lock()
	if time.Since(s.cachedAt) < cacheTTL {
		stats := s.cached
		s.mu.Unlock()
		return stats, nil
	}
	s.mu.Unlock()

	albums, err := s.workspace.ListAlbums(ctx)
	if err != nil {
		return catalog.Stats{}, fmt.Errorf("failed to read albums: %w", err)
	}
	stats := catalog.Collect(albums)

	s.mu.Lock()
	s.cached = stats
	s.cachedAt = time.Now()
	s.mu.Unlock()
	return stats, nil
}
