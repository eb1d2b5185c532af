// Package dto mirrors the JSON shapes of the Last.fm web service and
// converts them into model types.
//
// Last.fm's responses predate modern JSON conventions: attribute blocks
// live under "@attr", text nodes under "#text", and every number is a
// string. The types here absorb those quirks so the rest of the code only
// sees clean model values.
package dto

import (
	"strconv"
	"time"

	"github.com/sugarsmax/lastfm-discoveries/internal/model"
)

// Warn receives a message for each skipped malformed row. Pass nil to
// discard.
type Warn func(format string, args ...any)

// JSONRecentTracks is the top-level user.getRecentTracks response.
type JSONRecentTracks struct {
	RecentTracks struct {
		Track []JSONRecentTrack `json:"track"`
		Attr  JSONPageAttr      `json:"@attr"`
	} `json:"recenttracks"`
}

// JSONRecentTrack is one scrobble row.
type JSONRecentTrack struct {
	Artist JSONTextNode `json:"artist"`
	Name   string       `json:"name"`
	Date   *JSONDate    `json:"date"`
	Attr   struct {
		NowPlaying string `json:"nowplaying"`
	} `json:"@attr"`
}

// JSONTextNode handles artist fields that appear as {"#text": "..."} in
// the default response and {"name": "..."} in the extended one.
type JSONTextNode struct {
	Text string `json:"#text"`
	Name string `json:"name"`
}

// Display returns whichever representation the response carried.
func (n JSONTextNode) Display() string {
	if n.Name != "" {
		return n.Name
	}
	return n.Text
}

// JSONDate is a scrobble timestamp: a Unix epoch string plus a display
// rendering we don't rely on.
type JSONDate struct {
	UTS  string `json:"uts"`
	Text string `json:"#text"`
}

// Time parses the epoch field. Returns the zero time when absent or
// malformed.
func (d *JSONDate) Time() time.Time {
	if d == nil || d.UTS == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(d.UTS, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// JSONPageAttr carries pagination attributes (string-encoded numbers).
type JSONPageAttr struct {
	Page       string `json:"page"`
	TotalPages string `json:"totalPages"`
	Total      string `json:"total"`
}

// Pages returns the total page count, defaulting to 1 when unparseable.
func (a JSONPageAttr) Pages() int {
	n, err := strconv.Atoi(a.TotalPages)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ToEvents converts the page to play events for the given user, building
// the canonical library and track links.
//
// Rows are skipped, with a warning, when they are unusable:
//   - the "now playing" row has no date yet;
//   - a row missing artist, track name, or a parseable date is a feed
//     defect, not a catalog error.
func (rt *JSONRecentTracks) ToEvents(buildArtistURL func(artist string) string, buildTrackURL func(artist, track string) string, warn Warn) []model.PlayEvent {
	if warn == nil {
		warn = func(string, ...any) {}
	}

	events := make([]model.PlayEvent, 0, len(rt.RecentTracks.Track))
	for _, row := range rt.RecentTracks.Track {
		if row.Attr.NowPlaying == "true" {
			continue
		}

		artist := row.Artist.Display()
		played := row.Date.Time()
		switch {
		case artist == "":
			warn("skipping scrobble with no artist (track %q)", row.Name)
			continue
		case row.Name == "":
			warn("skipping scrobble with no track name (artist %q)", artist)
			continue
		case played.IsZero():
			warn("skipping scrobble with no usable date: %s - %s", artist, row.Name)
			continue
		}

		events = append(events, model.PlayEvent{
			Artist:    artist,
			Track:     row.Name,
			Timestamp: model.NewTimestamp(played),
			ArtistURL: buildArtistURL(artist),
			TrackURL:  buildTrackURL(artist, row.Name),
		})
	}
	return events
}
