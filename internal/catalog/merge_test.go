package catalog

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/sugarsmax/lastfm-discoveries/internal/model"
)

var mergeNow = time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)

func ts(t *testing.T, s string) model.Timestamp {
	t.Helper()
	parsed, err := model.ParseTimestamp(s)
	if err != nil {
		t.Fatalf("ParseTimestamp(%q): %v", s, err)
	}
	return parsed
}

func event(t *testing.T, artist, track, stamp string) model.PlayEvent {
	t.Helper()
	return model.PlayEvent{
		Artist:    artist,
		Track:     track,
		Timestamp: ts(t, stamp),
		ArtistURL: "https://www.last.fm/user/test/library/music/" + artist,
		TrackURL:  "https://www.last.fm/music/" + artist + "/_/" + track,
	}
}

func TestMerge_NewDiscovery(t *testing.T) {
	cat := model.NewCatalog()
	events := []model.PlayEvent{
		event(t, "Boards of Canada", "Roygbiv", "2026-01-10 09:00"),
	}

	stats, err := Merge(cat, model.NewTopArtistSet(), events, mergeNow, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	rec, ok := cat.Records["boards of canada"]
	if !ok {
		t.Fatal("expected record for boards of canada")
	}
	if !rec.FirstDiscovered.Equal(ts(t, "2026-01-10 09:00").Time) {
		t.Errorf("FirstDiscovered = %s, want 2026-01-10 09:00", rec.FirstDiscovered)
	}
	if !rec.LastListened.Equal(rec.FirstDiscovered.Time) {
		t.Errorf("LastListened = %s, want first_discovered", rec.LastListened)
	}
	if rec.Graduated {
		t.Error("expected graduated=false for empty top set")
	}
	if cat.Metadata.TotalDiscoveries != 1 || cat.Metadata.TotalGraduated != 0 {
		t.Errorf("metadata = %+v, want 1 discovery, 0 graduated", cat.Metadata)
	}
	if stats.NewToCatalog != 1 || stats.UniqueArtists != 1 {
		t.Errorf("stats = %+v, want 1 new, 1 unique", stats)
	}
}

func TestMerge_OlderEventNeverRegresses(t *testing.T) {
	cat := model.NewCatalog()
	cat.Records["aphex twin"] = &model.ArtistRecord{
		Artist:          "Aphex Twin",
		FirstDiscovered: ts(t, "2026-01-01 12:00"),
		LastListened:    ts(t, "2026-01-05 10:00"),
		Track:           "Xtal",
	}

	events := []model.PlayEvent{
		event(t, "Aphex Twin", "Tha", "2026-01-04 08:00"),
	}
	stats, err := Merge(cat, model.NewTopArtistSet(), events, mergeNow, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	rec := cat.Records["aphex twin"]
	if rec.LastListened.String() != "2026-01-05 10:00" {
		t.Errorf("LastListened = %s, want unchanged 2026-01-05 10:00", rec.LastListened)
	}
	if rec.Track != "Xtal" {
		t.Errorf("Track = %q, want unchanged %q", rec.Track, "Xtal")
	}
	if stats.UpdatedInCatalog != 0 {
		t.Errorf("UpdatedInCatalog = %d, want 0", stats.UpdatedInCatalog)
	}
}

func TestMerge_GraduationWithoutNewEvent(t *testing.T) {
	cat := model.NewCatalog()
	cat.Records["four tet"] = &model.ArtistRecord{
		Artist:          "Four Tet",
		FirstDiscovered: ts(t, "2026-01-02 20:00"),
		LastListened:    ts(t, "2026-01-03 21:30"),
		Track:           "Angel Echoes",
	}

	stats, err := Merge(cat, model.NewTopArtistSet("Four Tet"), nil, mergeNow, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	rec := cat.Records["four tet"]
	if !rec.Graduated {
		t.Error("expected four tet to graduate")
	}
	if rec.FirstDiscovered.String() != "2026-01-02 20:00" || rec.LastListened.String() != "2026-01-03 21:30" {
		t.Errorf("timestamps changed on graduation-only merge: %+v", rec)
	}
	if stats.GraduatedToTop != 1 {
		t.Errorf("GraduatedToTop = %d, want 1", stats.GraduatedToTop)
	}
	if cat.Metadata.TotalGraduated != 1 {
		t.Errorf("TotalGraduated = %d, want 1", cat.Metadata.TotalGraduated)
	}
}

func TestMerge_TopMembershipAloneCreatesNothing(t *testing.T) {
	cat := model.NewCatalog()
	top := model.NewTopArtistSet("Radiohead")

	if _, err := Merge(cat, top, nil, mergeNow, nil); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(cat.Records) != 0 {
		t.Errorf("expected no records, got %d", len(cat.Records))
	}
}

func TestMerge_PlayedTopArtistIsCatalogedGraduated(t *testing.T) {
	cat := model.NewCatalog()
	top := model.NewTopArtistSet("Radiohead")
	events := []model.PlayEvent{
		event(t, "Radiohead", "Idioteque", "2026-01-11 09:30"),
	}

	stats, err := Merge(cat, top, events, mergeNow, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	rec, ok := cat.Records["radiohead"]
	if !ok {
		t.Fatal("expected record: plays always catalog the artist")
	}
	if !rec.Graduated {
		t.Error("expected graduated=true for a top-set artist")
	}
	if stats.GraduatedToTop != 1 {
		t.Errorf("GraduatedToTop = %d, want 1", stats.GraduatedToTop)
	}
}

func TestMerge_GraduatedStaysActive(t *testing.T) {
	cat := model.NewCatalog()
	cat.Records["sault"] = &model.ArtistRecord{
		Artist:          "Sault",
		FirstDiscovered: ts(t, "2026-01-01 10:00"),
		LastListened:    ts(t, "2026-01-02 10:00"),
		Track:           "Free",
		Graduated:       true,
	}

	events := []model.PlayEvent{
		event(t, "Sault", "Wildfires", "2026-01-11 15:30"),
	}
	stats, err := Merge(cat, model.NewTopArtistSet(), events, mergeNow, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	rec := cat.Records["sault"]
	if rec.Track != "Wildfires" || rec.LastListened.String() != "2026-01-11 15:30" {
		t.Errorf("graduation froze activity tracking: %+v", rec)
	}
	if !rec.Graduated {
		t.Error("graduated must never revert, even out of the top set")
	}
	if stats.AlreadyGraduated != 1 {
		t.Errorf("AlreadyGraduated = %d, want 1", stats.AlreadyGraduated)
	}
}

func TestMerge_OrderIndependent(t *testing.T) {
	events := []model.PlayEvent{
		event(t, "Osees", "The Dream", "2026-01-10 16:00"),
		event(t, "Osees", "C", "2026-01-10 15:45"),
		event(t, "Osees", "Funeral Solution", "2026-01-09 11:00"),
		event(t, "Mdou Moctar", "Afrique Victime", "2026-01-08 18:30"),
	}

	reference := model.NewCatalog()
	if _, err := Merge(reference, model.NewTopArtistSet(), events, mergeNow, nil); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		shuffled := make([]model.PlayEvent, len(events))
		copy(shuffled, events)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		cat := model.NewCatalog()
		if _, err := Merge(cat, model.NewTopArtistSet(), shuffled, mergeNow, nil); err != nil {
			t.Fatalf("Merge (trial %d): %v", trial, err)
		}
		if !reflect.DeepEqual(cat, reference) {
			t.Fatalf("trial %d: merge result depends on event order:\n got %+v\nwant %+v",
				trial, cat.Records["osees"], reference.Records["osees"])
		}
	}

	if reference.Records["osees"].Track != "The Dream" {
		t.Errorf("latest track = %q, want the max-timestamp event's track", reference.Records["osees"].Track)
	}
}

func TestMerge_EqualTimestampsResolveDeterministically(t *testing.T) {
	// Minute-precision timestamps make same-minute scrobbles collide, so
	// ties must resolve to the same record whichever event comes first.
	events := []model.PlayEvent{
		event(t, "Osees", "The Dream", "2026-01-10 16:00"),
		event(t, "Osees", "C", "2026-01-10 16:00"),
	}
	reversed := []model.PlayEvent{events[1], events[0]}

	forward := model.NewCatalog()
	if _, err := Merge(forward, model.NewTopArtistSet(), events, mergeNow, nil); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	backward := model.NewCatalog()
	if _, err := Merge(backward, model.NewTopArtistSet(), reversed, mergeNow, nil); err != nil {
		t.Fatalf("Merge reversed: %v", err)
	}

	if !reflect.DeepEqual(forward, backward) {
		t.Fatalf("tie resolution depends on event order:\n got %+v\nwant %+v",
			backward.Records["osees"], forward.Records["osees"])
	}
	if forward.Records["osees"].Track != "C" {
		t.Errorf("Track = %q, want the lexically smaller title to win the tie",
			forward.Records["osees"].Track)
	}

	// The same rule applies across merges against a stored record.
	cat := model.NewCatalog()
	if _, err := Merge(cat, model.NewTopArtistSet(), events[:1], mergeNow, nil); err != nil {
		t.Fatalf("Merge first event: %v", err)
	}
	stats, err := Merge(cat, model.NewTopArtistSet(), events[1:], mergeNow, nil)
	if err != nil {
		t.Fatalf("Merge second event: %v", err)
	}
	if cat.Records["osees"].Track != "C" || stats.UpdatedInCatalog != 1 {
		t.Errorf("split batches diverged from single batch: track %q, updated %d",
			cat.Records["osees"].Track, stats.UpdatedInCatalog)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	events := []model.PlayEvent{
		event(t, "Nala Sinephro", "Space 1.8", "2026-01-09 14:45"),
		event(t, "Ezra Collective", "Victory Dance", "2026-01-10 08:00"),
	}
	top := model.NewTopArtistSet("Ezra Collective")

	once := model.NewCatalog()
	if _, err := Merge(once, top, events, mergeNow, nil); err != nil {
		t.Fatalf("first Merge: %v", err)
	}

	twice := model.NewCatalog()
	for i := 0; i < 2; i++ {
		if _, err := Merge(twice, top, events, mergeNow, nil); err != nil {
			t.Fatalf("Merge %d: %v", i, err)
		}
	}

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merging the same batch twice diverged:\n once: %+v\n twice: %+v", once, twice)
	}
}

func TestMerge_SelfHealsInvertedTimestamps(t *testing.T) {
	cat := model.NewCatalog()
	cat.Records["beth gibbons"] = &model.ArtistRecord{
		Artist:          "Beth Gibbons",
		FirstDiscovered: ts(t, "2026-01-09 10:15"),
		LastListened:    ts(t, "2026-01-07 10:15"),
		Track:           "Floating on a Moment",
	}

	var warned bool
	stats, err := Merge(cat, model.NewTopArtistSet(), nil, mergeNow, func(string, ...any) {
		warned = true
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	rec := cat.Records["beth gibbons"]
	if rec.FirstDiscovered.After(rec.LastListened.Time) {
		t.Errorf("invariant still violated after merge: %+v", rec)
	}
	if rec.FirstDiscovered.String() != "2026-01-07 10:15" {
		t.Errorf("FirstDiscovered = %s, want the minimum of the two", rec.FirstDiscovered)
	}
	if !warned {
		t.Error("expected a warning for the corrected record")
	}
	if stats.Healed != 1 {
		t.Errorf("Healed = %d, want 1", stats.Healed)
	}
}

func TestMerge_CountsAlwaysConsistent(t *testing.T) {
	cat := model.NewCatalog()
	top := model.NewTopArtistSet("Little Simz", "Floating Points")

	batches := [][]model.PlayEvent{
		{
			event(t, "Little Simz", "Introvert", "2026-01-06 16:30"),
			event(t, "Yussef Dayes", "Black Classical Music", "2026-01-05 21:45"),
		},
		{
			event(t, "Floating Points", "Silhouettes", "2026-01-07 09:00"),
			event(t, "Yussef Dayes", "Rust", "2026-01-08 20:00"),
		},
		nil,
	}

	for i, events := range batches {
		if _, err := Merge(cat, top, events, mergeNow, nil); err != nil {
			t.Fatalf("Merge batch %d: %v", i, err)
		}

		if cat.Metadata.TotalDiscoveries != len(cat.Records) {
			t.Errorf("batch %d: TotalDiscoveries = %d, records = %d",
				i, cat.Metadata.TotalDiscoveries, len(cat.Records))
		}
		graduated := 0
		for _, rec := range cat.Records {
			if rec.Graduated {
				graduated++
			}
			if rec.FirstDiscovered.After(rec.LastListened.Time) {
				t.Errorf("batch %d: record %q violates first<=last", i, rec.Artist)
			}
		}
		if cat.Metadata.TotalGraduated != graduated {
			t.Errorf("batch %d: TotalGraduated = %d, want %d", i, cat.Metadata.TotalGraduated, graduated)
		}
	}
}

func TestMerge_NormalizesQuotedArtists(t *testing.T) {
	cat := model.NewCatalog()
	events := []model.PlayEvent{
		event(t, `"Shabaka"`, "End of Innocence", "2026-01-09 19:00"),
		event(t, "Shabaka", "Managing My Breath", "2026-01-10 19:00"),
	}

	stats, err := Merge(cat, model.NewTopArtistSet(), events, mergeNow, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(cat.Records) != 1 {
		t.Fatalf("expected one record for quoted/unquoted variants, got %d", len(cat.Records))
	}
	if stats.UniqueArtists != 1 {
		t.Errorf("UniqueArtists = %d, want 1", stats.UniqueArtists)
	}
	if cat.Records["shabaka"].Artist != "Shabaka" {
		t.Errorf("display name = %q, want quotes stripped", cat.Records["shabaka"].Artist)
	}
}

func TestMerge_RejectsMalformedEvent(t *testing.T) {
	tests := []struct {
		name  string
		event model.PlayEvent
	}{
		{"missing artist", model.PlayEvent{Track: "Song", Timestamp: ts(t, "2026-01-10 09:00")}},
		{"missing track", model.PlayEvent{Artist: "Someone", Timestamp: ts(t, "2026-01-10 09:00")}},
		{"missing timestamp", model.PlayEvent{Artist: "Someone", Track: "Song"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := model.NewCatalog()
			_, err := Merge(cat, model.NewTopArtistSet(), []model.PlayEvent{tt.event}, mergeNow, nil)
			if err == nil {
				t.Error("expected error for malformed event")
			}
		})
	}
}
