package workspace

import (
	"waxwing/src/catalog"
	"waxwing/src/features/config"
)

// Wire structures for the pieces of a workspace page we care about.
// Properties are keyed by user-chosen names, so the property struct
// carries every shape a column may take and only one is populated.

type page struct {
	ID         string              `json:"id"`
	Cover      *fileRef            `json:"cover"`
	Icon       *fileRef            `json:"icon"`
	Properties map[string]property `json:"properties"`
}

type fileRef struct {
	Type     string       `json:"type"`
	External *externalRef `json:"external"`
	File     *hostedRef   `json:"file"`
}

type externalRef struct {
	URL string `json:"url"`
}

type hostedRef struct {
	URL string `json:"url"`
}

type property struct {
	Title    []richText    `json:"title"`
	RichText []richText    `json:"rich_text"`
	Select   *selectOption `json:"select"`
	Status   *selectOption `json:"status"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

type selectOption struct {
	Name string `json:"name"`
}

func (f *fileRef) url() string {
	if f == nil {
		return ""
	}
	if f.External != nil {
		return f.External.URL
	}
	if f.File != nil {
		return f.File.URL
	}
	return ""
}

func (p property) text() string {
	if len(p.Title) > 0 {
		return p.Title[0].PlainText
	}
	if len(p.RichText) > 0 {
		return p.RichText[0].PlainText
	}
	if p.Select != nil {
		return p.Select.Name
	}
	if p.Status != nil {
		return p.Status.Name
	}
	return ""
}

// mapPage converts one workspace page into the domain Album.
func mapPage(pg *page, cfg *config.Workspace) *catalog.Album {
	album := &catalog.Album{
		ID:       pg.ID,
		Title:    pg.Properties[cfg.TitleProperty].text(),
		Artist:   pg.Properties[cfg.ArtistProperty].text(),
		Position: pg.Properties[cfg.PositionProperty].text(),
		Status:   catalog.Status(pg.Properties[cfg.StatusProperty].text()),
		CoverURL: pg.Cover.url(),
		IconURL:  pg.Icon.url(),
		HasCover: pg.Cover != nil,
		HasIcon:  pg.Icon != nil,
	}
	if album.Artist == "" {
		album.Artist = "Unknown"
	}
	return album
}
