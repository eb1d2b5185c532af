package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sugarsmax/lastfm-discoveries/internal/model"
)

// Store persists the catalog as a single JSON document.
//
// The pipeline is the sole writer: the catalog is loaded once at run start
// and saved once at run end. Readers (the card renderer) only ever see a
// fully written document because Save replaces the file atomically.
type Store struct {
	path string
}

// NewStore creates a Store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

// Path returns the catalog file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the catalog from disk. A missing file yields a fresh, empty
// catalog; a present but unreadable or malformed file is an error, since
// silently discarding an existing catalog would lose history.
func (s *Store) Load() (*model.Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewCatalog(), nil
		}
		return nil, fmt.Errorf("reading catalog %s: %w", s.path, err)
	}

	cat := model.NewCatalog()
	if err := json.Unmarshal(data, cat); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", s.path, err)
	}
	if cat.Records == nil {
		cat.Records = make(map[string]*model.ArtistRecord)
	}
	return cat, nil
}

// Save writes the catalog atomically: the document goes to a temp file in
// the same directory, then renames over the destination. An interrupted
// run leaves the previous committed state untouched.
func (s *Store) Save(cat *model.Catalog) error {
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing catalog temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing catalog %s: %w", s.path, err)
	}
	return nil
}
