package model

import "strings"

// PlayEvent is a single play reported by the listening-history service.
//
// Events carry the display-cased artist name; use NormalizeArtistKey to get
// the catalog key. The URL fields are canonical reference links built by the
// fetcher, copied into new catalog records verbatim.
type PlayEvent struct {
	// Artist is the display name, original casing preserved.
	Artist string `json:"artist"`

	// Track is the track title.
	Track string `json:"track"`

	// Timestamp is when the play finished, minute precision.
	Timestamp Timestamp `json:"timestamp"`

	// ArtistURL links to the artist in the user's library.
	ArtistURL string `json:"artist_url"`

	// TrackURL links to the track's canonical page.
	TrackURL string `json:"track_url"`
}

// Key returns the normalized catalog key for this event's artist.
func (e PlayEvent) Key() string {
	return NormalizeArtistKey(e.Artist)
}

// NormalizeArtistKey converts an artist name to its catalog key:
// surrounding whitespace and quotation marks (straight and curly) are
// stripped, then the name is lowercased.
//
// Some services wrap artist names in quotes inconsistently between the
// recent-plays and top-artists endpoints; stripping them keeps one record
// per artist.
func NormalizeArtistKey(name string) string {
	return strings.ToLower(CleanArtistName(name))
}

// CleanArtistName strips surrounding whitespace and quotation marks while
// preserving casing. Use this for the display name stored in a record.
func CleanArtistName(name string) string {
	name = strings.TrimSpace(name)
	return strings.Trim(name, `'"`+"“”‘’")
}
