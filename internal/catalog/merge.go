package catalog

import (
	"fmt"
	"time"

	"github.com/sugarsmax/lastfm-discoveries/internal/model"
)

// Stats summarizes what a single Merge call changed.
type Stats struct {
	// UniqueArtists is the number of distinct artists in the event batch.
	UniqueArtists int

	// NewToCatalog is the number of records created this merge.
	NewToCatalog int

	// UpdatedInCatalog is the number of existing records whose
	// last_listened/track advanced this merge.
	UpdatedInCatalog int

	// GraduatedToTop is the number of records newly marked graduated,
	// whether created that way or flipped on an existing record.
	GraduatedToTop int

	// AlreadyGraduated is the number of played artists that were already
	// graduated before this merge.
	AlreadyGraduated int

	// Healed is the number of loaded records whose first_discovered was
	// corrected because it sat after last_listened.
	Healed int
}

// Touched reports whether the merge changed any record.
func (s Stats) Touched() bool {
	return s.NewToCatalog > 0 || s.UpdatedInCatalog > 0 || s.GraduatedToTop > 0 || s.Healed > 0
}

// Warning is emitted by Merge for recoverable oddities in the input, such
// as invariant violations found in the loaded catalog. Pass nil to discard.
type Warning func(format string, args ...any)

// Merge combines the existing catalog, the top-artist set and a batch of
// recent play events into an updated catalog state.
//
// Behavior:
//   - an event for an unknown artist creates a record with
//     first_discovered = last_listened = the event timestamp, graduated
//     set from top-set membership;
//   - an event for a known artist advances last_listened and the latest
//     track only when it is newer than what is stored (timestamp ties
//     broken on track title, see supersedes), so the result does not
//     depend on event order and merging the same batch twice is a no-op;
//   - first_discovered is never modified once set;
//   - every cataloged artist in the top set is marked graduated; the flag
//     is never cleared. Membership alone never creates a record;
//   - metadata counters and last_updated are recomputed at the end.
//
// A record with first_discovered after last_listened (hand-edited or
// written by an older, buggy run) is self-healed by pulling
// first_discovered back to the minimum of the two, reported via warn.
//
// An event missing a required field is a hard error: events are validated
// at the fetch boundary, so a gap here means the caller is broken.
func Merge(cat *model.Catalog, top model.TopArtistSet, events []model.PlayEvent, now time.Time, warn Warning) (Stats, error) {
	var stats Stats
	if warn == nil {
		warn = func(string, ...any) {}
	}

	// Heal invariant violations in what we loaded before touching anything
	// else, so the per-artist update logic sees sane records.
	for key, rec := range cat.Records {
		if rec.FirstDiscovered.After(rec.LastListened.Time) {
			warn("record %q has first_discovered %s after last_listened %s; correcting",
				key, rec.FirstDiscovered, rec.LastListened)
			rec.FirstDiscovered = rec.LastListened
			stats.Healed++
		}
	}

	latest, err := latestPerArtist(events)
	if err != nil {
		return stats, err
	}
	stats.UniqueArtists = len(latest)

	for key, event := range latest {
		rec, exists := cat.Records[key]
		if !exists {
			graduated := top.Contains(key)
			cat.Records[key] = &model.ArtistRecord{
				Artist:          model.CleanArtistName(event.Artist),
				FirstDiscovered: event.Timestamp,
				LastListened:    event.Timestamp,
				Track:           event.Track,
				ArtistURL:       event.ArtistURL,
				TrackURL:        event.TrackURL,
				Graduated:       graduated,
			}
			stats.NewToCatalog++
			if graduated {
				stats.GraduatedToTop++
			}
			continue
		}

		if rec.Graduated {
			stats.AlreadyGraduated++
		}

		// Graduation does not freeze activity tracking; a newer play, or a
		// tie-winning play at the stored timestamp, advances the record.
		if supersedes(event, rec.LastListened, rec.Track) {
			rec.LastListened = event.Timestamp
			rec.Track = event.Track
			rec.TrackURL = event.TrackURL
			stats.UpdatedInCatalog++
		}
	}

	for key, rec := range cat.Records {
		if !rec.Graduated && top.Contains(key) {
			rec.Graduated = true
			stats.GraduatedToTop++
		}
	}

	cat.Metadata.TotalDiscoveries = len(cat.Records)
	graduated := 0
	for _, rec := range cat.Records {
		if rec.Graduated {
			graduated++
		}
	}
	cat.Metadata.TotalGraduated = graduated
	cat.Metadata.LastUpdated = model.NewTimestamp(now)

	return stats, nil
}

// supersedes reports whether event should replace a stored play at
// timestamp last with track title track.
//
// A strictly newer timestamp always wins. Timestamps carry minute
// precision, so two scrobbles in the same minute collapse to equal
// timestamps; the lexically smaller track title wins such ties, keeping
// the result independent of event order.
func supersedes(event model.PlayEvent, last model.Timestamp, track string) bool {
	if event.Timestamp.After(last.Time) {
		return true
	}
	return event.Timestamp.Equal(last.Time) && event.Track < track
}

// latestPerArtist validates every event and keeps, per artist key, the one
// with the maximum timestamp, breaking timestamp ties on track title.
// Events are not guaranteed pre-sorted.
func latestPerArtist(events []model.PlayEvent) (map[string]model.PlayEvent, error) {
	latest := make(map[string]model.PlayEvent, len(events))
	for i, event := range events {
		if err := validateEvent(i, event); err != nil {
			return nil, err
		}
		key := event.Key()
		if prev, ok := latest[key]; !ok || supersedes(event, prev.Timestamp, prev.Track) {
			latest[key] = event
		}
	}
	return latest, nil
}

func validateEvent(i int, event model.PlayEvent) error {
	switch {
	case model.CleanArtistName(event.Artist) == "":
		return fmt.Errorf("event %d: missing artist name", i)
	case event.Track == "":
		return fmt.Errorf("event %d (%s): missing track title", i, event.Artist)
	case event.Timestamp.IsZero():
		return fmt.Errorf("event %d (%s - %s): missing timestamp", i, event.Artist, event.Track)
	}
	return nil
}
