package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the listening status of an album in the workspace.
type Status string

const (
	StatusListened  Status = "Listened"
	StatusListening Status = "Listening"
	StatusToListen  Status = "To Listen"
)

// Album is a flat view of one album entry in the remote workspace.
// The workspace owns the record; we only read it, reorder it and patch
// its artwork. Albums are never created or deleted here.
type Album struct {
	ID       string // opaque page id, owned by the workspace
	Title    string
	Artist   string
	Position string // zero-padded select value, "" when unranked
	Status   Status
	CoverURL string
	IconURL  string
	HasCover bool
	HasIcon  bool
}

// IsListened reports whether the album participates in ranking.
func (a *Album) IsListened() bool {
	return a.Status == StatusListened
}

// IsRanked reports whether the album carries a usable position value.
func (a *Album) IsRanked() bool {
	_, ok := a.Rank()
	return ok
}

// Rank parses the position select value into its numeric rank.
func (a *Album) Rank() (int, bool) {
	s := strings.TrimSpace(a.Position)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate validates the album fields read from the workspace.
func (a *Album) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("album page id cannot be empty")
	}
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("album title cannot be empty")
	}
	return nil
}

// FormatPosition renders a rank as the zero-padded select value the
// workspace sorts lexicographically. Width is 2 until any rank needs 3.
func FormatPosition(rank, width int) string {
	return fmt.Sprintf("%0*d", width, rank)
}

// PositionWidth picks the padding width for a set of ranks.
func PositionWidth(highest, count int) int {
	if highest > 99 || count > 99 {
		return 3
	}
	return 2
}

// Stats summarizes the catalog for the dashboard and the bot.
type Stats struct {
	Total      int `json:"total"`
	Listened   int `json:"listened"`
	Ranked     int `json:"ranked"`
	Unranked   int `json:"unranked"`
	WithCover  int `json:"with_cover"`
	WithIcon   int `json:"with_icon"`
	NoCover    int `json:"without_cover"`
	NoIcon     int `json:"without_icon"`
}

// Collect computes Stats over a snapshot of the catalog.
func Collect(albums []*Album) Stats {
	var s Stats
	s.Total = len(albums)
	for _, a := range albums {
		if a.IsListened() {
			s.Listened++
			if a.IsRanked() {
				s.Ranked++
			} else {
				s.Unranked++
			}
		}
		if a.HasCover {
			s.WithCover++
		}
		if a.HasIcon {
			s.WithIcon++
		}
	}
	s.NoCover = s.Total - s.WithCover
	s.NoIcon = s.Total - s.WithIcon
	return s
}
