package sorting

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"waxwing/src/catalog"
	"waxwing/src/features/config"
	"waxwing/src/features/metrics"

	"github.com/gosimple/unidecode"
)

// Key selects the field the catalog is ordered by.
type Key string

const (
	// KeyPosition keeps the existing manual ranking, repairing
	// duplicates and appending unranked albums at the end.
	KeyPosition Key = "position"
	KeyTitle    Key = "title"
	KeyArtist   Key = "artist"
)

// ParseKey validates a user-supplied sort key.
func ParseKey(s string) (Key, error) {
	switch Key(strings.ToLower(strings.TrimSpace(s))) {
	case KeyPosition, "":
		return KeyPosition, nil
	case KeyTitle:
		return KeyTitle, nil
	case KeyArtist:
		return KeyArtist, nil
	default:
		return "", fmt.Errorf("unrecognized sort key %q (want position, title or artist)", s)
	}
}

// Request carries the parameters of one sort run.
type Request struct {
	Key        Key
	Descending bool
	Compact    bool // renumber 1..N instead of keeping rank gaps
}

// Change is one planned position write.
type Change struct {
	Album    *catalog.Album
	Position string
}

// Plan is the computed target order for a catalog snapshot. Only albums
// whose position value actually changes appear in Changes, which makes
// re-running an unchanged sort a no-op.
type Plan struct {
	Changes []Change
	Total   int // listened albums considered
	Width   int
}

// WriteError records one failed position write.
type WriteError struct {
	AlbumID string
	Title   string
	Err     error
}

// Result summarizes an applied sort run.
type Result struct {
	Total   int
	Changed int
	Written int
	Failed  []WriteError
}

// Service reads the catalog, computes the target order and writes it back.
type Service struct {
	workspace catalog.Workspace
	config    *config.Manager
}

// NewService creates a new sorting service.
func NewService(workspace catalog.Workspace, cfg *config.Manager) *Service {
	return &Service{workspace: workspace, config: cfg}
}

// ranked pairs an album with its stable ordering info.
type ranked struct {
	album    *catalog.Album
	rank     int // current rank, 0 when unranked
	isRanked bool
	fetchIdx int // position in the fetched snapshot, final tie-break
}

// collate builds a comparison key that survives accents and case.
func collate(s string) string {
	return unidecode.Unidecode(strings.ToLower(strings.TrimSpace(s)))
}

// BuildPlan computes the target order for the listened albums of a
// snapshot. Ordering is stable: albums that compare equal keep their
// original relative order.
func BuildPlan(albums []*catalog.Album, req Request) *Plan {
	var entries []ranked
	for i, a := range albums {
		if !a.IsListened() {
			continue
		}
		r, ok := a.Rank()
		entries = append(entries, ranked{album: a, rank: r, isRanked: ok, fetchIdx: i})
	}

	switch req.Key {
	case KeyTitle, KeyArtist:
		sort.SliceStable(entries, func(i, j int) bool {
			var a, b string
			if req.Key == KeyTitle {
				a, b = collate(entries[i].album.Title), collate(entries[j].album.Title)
			} else {
				a, b = collate(entries[i].album.Artist), collate(entries[j].album.Artist)
			}
			if a == b {
				return lessByOriginalOrder(entries[i], entries[j])
			}
			if req.Descending {
				return a > b
			}
			return a < b
		})
	default: // KeyPosition
		sort.SliceStable(entries, func(i, j int) bool {
			// Ranked albums first, in rank order; unranked keep
			// their fetch order at the tail.
			if entries[i].isRanked != entries[j].isRanked {
				return entries[i].isRanked
			}
			if entries[i].isRanked && entries[i].rank != entries[j].rank {
				if req.Descending {
					return entries[i].rank > entries[j].rank
				}
				return entries[i].rank < entries[j].rank
			}
			return entries[i].fetchIdx < entries[j].fetchIdx
		})
	}

	targets := assignRanks(entries, req)

	highest := 0
	if len(targets) > 0 {
		highest = targets[len(targets)-1]
		for _, t := range targets {
			if t > highest {
				highest = t
			}
		}
	}
	width := catalog.PositionWidth(highest, len(entries))

	plan := &Plan{Total: len(entries), Width: width}
	for i, e := range entries {
		position := catalog.FormatPosition(targets[i], width)
		if e.album.Position != position {
			plan.Changes = append(plan.Changes, Change{Album: e.album, Position: position})
		}
	}
	return plan
}

func lessByOriginalOrder(a, b ranked) bool {
	if a.isRanked != b.isRanked {
		return a.isRanked
	}
	if a.isRanked && a.rank != b.rank {
		return a.rank < b.rank
	}
	return a.fetchIdx < b.fetchIdx
}

// assignRanks maps the ordered entries onto numeric ranks. Compact mode
// and the derived keys renumber 1..N; position mode keeps existing rank
// gaps and only bumps duplicates upward.
func assignRanks(entries []ranked, req Request) []int {
	targets := make([]int, len(entries))
	if req.Compact || req.Key != KeyPosition || req.Descending {
		for i := range entries {
			targets[i] = i + 1
		}
		return targets
	}

	last := 0
	for i, e := range entries {
		switch {
		case !e.isRanked:
			last++
		case e.rank <= last:
			last++
		default:
			last = e.rank
		}
		targets[i] = last
	}
	return targets
}

// Run fetches the catalog, plans the new order and applies it. Each
// write is independent; failures are collected per album and the run
// keeps going, so a flaky write never aborts the whole reorder.
func (s *Service) Run(ctx context.Context, req Request, progress func(done, total int, title string)) (*Result, error) {
	albums, err := s.workspace.ListAlbums(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read albums: %w", err)
	}

	plan := BuildPlan(albums, req)
	slog.Info("Sort plan computed", "key", req.Key, "listened", plan.Total, "changes", len(plan.Changes))

	result := &Result{Total: plan.Total, Changed: len(plan.Changes)}
	for i, change := range plan.Changes {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.workspace.UpdatePosition(ctx, change.Album.ID, change.Position); err != nil {
			result.Failed = append(result.Failed, WriteError{
				AlbumID: change.Album.ID,
				Title:   change.Album.Title,
				Err:     err,
			})
			slog.Warn("Position write failed", "album", change.Album.Title, "error", err)
		} else {
			result.Written++
			metrics.PositionWrites.Inc()
		}
		if progress != nil {
			progress(i+1, len(plan.Changes), change.Album.Title)
		}
	}
	return result, nil
}

// CleanupOptions drops stale values from the position select property.
// Every sort leaves behind options no album uses anymore; the workspace
// keeps them forever unless the schema is rewritten.
func (s *Service) CleanupOptions(ctx context.Context, progress func(done, total int, title string)) (removed int, err error) {
	albums, err := s.workspace.ListAlbums(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read albums: %w", err)
	}

	used := make(map[string]bool)
	for _, a := range albums {
		if a.Position != "" {
			used[a.Position] = true
		}
	}

	options, err := s.workspace.ListPositionOptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read position options: %w", err)
	}

	keep := make([]string, 0, len(used))
	for _, o := range options {
		if used[o] {
			keep = append(keep, o)
		}
	}
	sort.Strings(keep)

	stale := len(options) - len(keep)
	if stale == 0 {
		return 0, nil
	}

	// The schema endpoint caps option payloads, so the rebuilt list goes
	// up in cumulative chunks.
	const chunkSize = 100
	if err := s.workspace.ReplacePositionOptions(ctx, nil); err != nil {
		return 0, fmt.Errorf("failed to clear position options: %w", err)
	}
	for i := 0; i < len(keep); i += chunkSize {
		end := i + chunkSize
		if end > len(keep) {
			end = len(keep)
		}
		if err := ctx.Err(); err != nil {
			return stale, err
		}
		if err := s.workspace.ReplacePositionOptions(ctx, keep[:end]); err != nil {
			return stale, fmt.Errorf("failed to restore position options: %w", err)
		}
		if progress != nil {
			progress(end, len(keep), "")
		}
	}

	slog.Info("Position options cleaned up", "kept", len(keep), "removed", stale)
	return stale, nil
}
