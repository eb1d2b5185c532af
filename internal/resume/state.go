// Package resume caches partial fetch results so an interrupted run can
// continue without re-querying the API from scratch.
//
// This is purely an optimization, never a correctness mechanism:
// re-fetching always produces an equivalent result, cached entries expire
// after a freshness window, and a corrupt state file is treated as absent.
// The file's shape is private to this package and not part of any public
// contract.
//
//	store := resume.NewStore("data/state.json")
//	state, _ := store.Load()
//	if events, ok := state.FreshRecentTracks(6*time.Hour, time.Now()); ok {
//	    // skip the recent-tracks fetch
//	}
//	...
//	store.Clear() // on successful completion
package resume

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/sugarsmax/lastfm-discoveries/internal/model"
)

// State is the cached progress of an in-flight run.
type State struct {
	RecentTracks *CachedRecentTracks `json:"recent_tracks,omitempty"`
	TopArtists   *CachedTopArtists   `json:"top_artists,omitempty"`
}

// CachedRecentTracks is a completed recent-tracks fetch.
type CachedRecentTracks struct {
	FetchedAt time.Time         `json:"fetched_at"`
	Events    []model.PlayEvent `json:"events"`
}

// CachedTopArtists is a completed top-artists fetch.
type CachedTopArtists struct {
	FetchedAt time.Time `json:"fetched_at"`
	Artists   []string  `json:"artists"`
}

// FreshRecentTracks returns the cached events when they were fetched
// within maxAge of now.
func (s *State) FreshRecentTracks(maxAge time.Duration, now time.Time) ([]model.PlayEvent, bool) {
	if s == nil || s.RecentTracks == nil {
		return nil, false
	}
	if now.Sub(s.RecentTracks.FetchedAt) > maxAge {
		return nil, false
	}
	return s.RecentTracks.Events, true
}

// FreshTopArtists returns the cached top set when it was fetched within
// maxAge of now.
func (s *State) FreshTopArtists(maxAge time.Duration, now time.Time) (model.TopArtistSet, bool) {
	if s == nil || s.TopArtists == nil {
		return nil, false
	}
	if now.Sub(s.TopArtists.FetchedAt) > maxAge {
		return nil, false
	}
	return model.NewTopArtistSet(s.TopArtists.Artists...), true
}

// Store persists resume state as an ephemeral JSON file.
type Store struct {
	path string
}

// NewStore creates a Store at the given path.
func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

// Load reads the state from disk. Missing and corrupt files both yield an
// empty state: stale resume data is never worth failing a run over.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &State{}, nil
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return &State{}, nil
	}
	return &state, nil
}

// Save writes the state atomically.
func (s *Store) Save(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Clear removes the state file after a successful run. A missing file is
// not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
