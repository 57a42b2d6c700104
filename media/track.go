package media

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type Track struct {
	Title       string   `json:"title"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	DiscNumber  int      `json:"disc_number"`
	TrackNumber uint     `json:"track_number"`
	ArtURL      string   `json:"art_url,omitempty"`
}

func JoinArtists(artists []string) string {
	return strings.Join(lo.Compact(artists), ", ")
}

func (t Track) JoinedArtists() string {
	return JoinArtists(t.Artists)
}

// SearchQuery is the free text query used to locate the track's audio.
func (t Track) SearchQuery() string {
	artists := t.JoinedArtists()
	if artists == "" {
		return t.Title
	}

	return t.Title + " - " + artists
}

func (t Track) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("title", t.Title).
		Strs("artists", t.Artists).
		Str("album", t.Album).
		Int("disc_number", t.DiscNumber).
		Uint("track_number", t.TrackNumber)
}

type Collection struct {
	Kind    LinkKind `json:"kind"`
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Tracks  []Track  `json:"tracks"`
	Count   int      `json:"count"`
	ArtURLs []string `json:"art_urls,omitempty"`
}

func NewCollection(kind LinkKind, id, name string, tracks []Track, artURLs []string) *Collection {
	return &Collection{
		Kind:    kind,
		ID:      id,
		Name:    name,
		Tracks:  tracks,
		Count:   len(tracks),
		ArtURLs: lo.Compact(artURLs),
	}
}

func (c Collection) Validate() error {
	if c.Count != len(c.Tracks) {
		return fmt.Errorf("%w: collection declares %d tracks but holds %d", ErrInvalidConfig, c.Count, len(c.Tracks))
	}

	for i, t := range c.Tracks {
		if t.TrackNumber < 1 {
			return fmt.Errorf("%w: track %d (%s) has no track number", ErrInvalidConfig, i, t.Title)
		}
	}

	return nil
}

// ArtURL is the collection level cover, used for tracks that lack their own.
func (c Collection) ArtURL() string {
	if len(c.ArtURLs) == 0 {
		return ""
	}

	return c.ArtURLs[0]
}

// HasDir reports whether the collection's tracks are grouped in their own directory.
func (c Collection) HasDir() bool {
	return c.Kind != LinkKindTrack && c.Name != ""
}

func (c Collection) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("kind", c.Kind.String()).
		Str("id", c.ID).
		Str("name", c.Name).
		Int("count", c.Count)
}
