package pipeline

import (
	"github.com/sugarsmax/lastfm-discoveries/internal/lastfm"
	"github.com/sugarsmax/lastfm-discoveries/internal/model"
)

// DryRunUsername is the account name stamped on dry-run catalogs.
const DryRunUsername = "demo"

// sampleEvent builds a fixture play event with real-looking URLs. The
// timestamp literal is a compile-time constant; a parse failure here is a
// programming error and yields a zero timestamp the merger will reject.
func sampleEvent(artist, track, stamp string) model.PlayEvent {
	ts, _ := model.ParseTimestamp(stamp)
	return model.PlayEvent{
		Artist:    artist,
		Track:     track,
		Timestamp: ts,
		ArtistURL: lastfm.LibraryURL(DryRunUsername, artist),
		TrackURL:  lastfm.TrackURL(artist, track),
	}
}

// SampleRecentTracks returns the dry-run scrobble fixture: a mix of
// single-play discoveries, repeat plays of top-set artists, and one new
// artist played twice.
func SampleRecentTracks() []model.PlayEvent {
	return []model.PlayEvent{
		// Single-scrobble artists, some in the top set, some new.
		sampleEvent("Khruangbin", "Maria También", "2026-02-16 20:15"),
		sampleEvent("Mdou Moctar", "Afrique Victime", "2026-02-16 18:30"),
		sampleEvent("Arooj Aftab", "Mohabbat", "2026-02-15 22:00"),
		sampleEvent("Nala Sinephro", "Space 1.8", "2026-02-15 14:45"),
		sampleEvent("BADBADNOTGOOD", "Time Moves Slow", "2026-02-14 11:20"),
		sampleEvent("Floating Points", "Silhouettes (I, II & III)", "2026-02-14 09:00"),
		sampleEvent("Little Simz", "Introvert", "2026-02-13 16:30"),
		sampleEvent("Beth Gibbons", "Floating on a Moment", "2026-02-13 10:15"),
		sampleEvent("Yussef Dayes", "Black Classical Music", "2026-02-12 21:45"),
		sampleEvent("Shabaka", "As the Planets and the Stars Collapse", "2026-02-12 19:00"),
		sampleEvent("Sault", "Free", "2026-02-11 15:30"),
		sampleEvent("Ezra Collective", "Victory Dance", "2026-02-11 08:00"),
		// Multi-scrobble top-set artists.
		sampleEvent("Radiohead", "Everything In Its Right Place", "2026-02-16 10:00"),
		sampleEvent("Radiohead", "Idioteque", "2026-02-15 09:30"),
		sampleEvent("Radiohead", "The National Anthem", "2026-02-14 08:00"),
		sampleEvent("Tame Impala", "Let It Happen", "2026-02-16 12:00"),
		sampleEvent("Tame Impala", "Elephant", "2026-02-13 14:00"),
		// A new artist listened to multiple times.
		sampleEvent("Osees", "The Dream", "2026-02-16 16:00"),
		sampleEvent("Osees", "C", "2026-02-16 15:45"),
	}
}

// SampleTopArtists returns the dry-run all-time top set (abbreviated).
func SampleTopArtists() model.TopArtistSet {
	return model.NewTopArtistSet(
		"Radiohead", "Tame Impala", "Khruangbin", "BADBADNOTGOOD",
		"Floating Points", "Little Simz", "Sault",
		"Boards of Canada", "Aphex Twin", "Four Tet",
	)
}
