package model

import "time"

// ArtistRecord is one discovered artist in the catalog.
//
// Invariants maintained by the merger:
//   - FirstDiscovered <= LastListened
//   - Graduated is sticky: once true it never reverts, even if the artist
//     later falls out of the top set ("has ever reached top N").
type ArtistRecord struct {
	// Artist is the display name, original casing preserved.
	Artist string `json:"artist"`

	// FirstDiscovered is the earliest known play within scope.
	// Never modified once set.
	FirstDiscovered Timestamp `json:"first_discovered"`

	// LastListened is the most recent known play.
	LastListened Timestamp `json:"last_listened"`

	// Track is the title of the most recent track played.
	Track string `json:"track"`

	// ArtistURL links to the artist in the user's library.
	ArtistURL string `json:"artist_url"`

	// TrackURL links to the most recent track's page.
	TrackURL string `json:"track_url"`

	// Graduated reports whether the artist has ever entered the
	// all-time top set.
	Graduated bool `json:"graduated"`
}

// IsNew reports whether the record should carry the renderer's "new"
// indicator: discovered and last heard in the same play, within the past
// seven days of now.
func (r *ArtistRecord) IsNew(now time.Time) bool {
	if !r.FirstDiscovered.Equal(r.LastListened.Time) {
		return false
	}
	age := now.Sub(r.FirstDiscovered.Time)
	return age >= 0 && age <= 7*24*time.Hour
}

// Metadata summarizes the catalog for consumers.
type Metadata struct {
	// LastUpdated is the timestamp of the run that last wrote the catalog.
	LastUpdated Timestamp `json:"last_updated"`

	// Username is the listening-history account the catalog belongs to.
	Username string `json:"username"`

	// TotalDiscoveries is the number of records in the catalog.
	TotalDiscoveries int `json:"total_discoveries"`

	// TotalGraduated is the number of records with Graduated set.
	TotalGraduated int `json:"total_graduated"`
}

// Catalog is the persisted discovery catalog: summary metadata plus one
// record per normalized artist key.
//
// The pipeline process exclusively owns writes; the renderer reads only.
type Catalog struct {
	Metadata Metadata                 `json:"metadata"`
	Records  map[string]*ArtistRecord `json:"catalog"`
}

// NewCatalog returns an empty catalog ready for merging.
func NewCatalog() *Catalog {
	return &Catalog{
		Records: make(map[string]*ArtistRecord),
	}
}

// TopArtistSet is the set of a user's top-N artists, keyed by normalized
// artist name.
type TopArtistSet map[string]struct{}

// NewTopArtistSet builds a set from display names, normalizing each.
func NewTopArtistSet(names ...string) TopArtistSet {
	s := make(TopArtistSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add normalizes name and inserts it into the set.
func (s TopArtistSet) Add(name string) {
	s[NormalizeArtistKey(name)] = struct{}{}
}

// Contains reports whether the normalized key is in the set.
func (s TopArtistSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// Len returns the number of artists in the set.
func (s TopArtistSet) Len() int {
	return len(s)
}

// Keys returns the normalized names in the set, in map order.
func (s TopArtistSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}
