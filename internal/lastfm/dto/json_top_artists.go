package dto

// JSONTopArtists is the top-level user.getTopArtists response.
type JSONTopArtists struct {
	TopArtists struct {
		Artist []JSONTopArtist `json:"artist"`
		Attr   JSONPageAttr    `json:"@attr"`
	} `json:"topartists"`
}

// JSONTopArtist is one entry in the all-time top list.
type JSONTopArtist struct {
	Name      string `json:"name"`
	PlayCount string `json:"playcount"`
}

// Names returns the artist names on this page, skipping empty rows with a
// warning.
func (ta *JSONTopArtists) Names(warn Warn) []string {
	if warn == nil {
		warn = func(string, ...any) {}
	}

	names := make([]string, 0, len(ta.TopArtists.Artist))
	for _, row := range ta.TopArtists.Artist {
		if row.Name == "" {
			warn("skipping top artist row with no name")
			continue
		}
		names = append(names, row.Name)
	}
	return names
}
