package lastfm

import (
	"fmt"
	"net/url"
)

// LibraryURL builds the Last.fm library link for an artist in a user's
// listening history.
func LibraryURL(username, artist string) string {
	return fmt.Sprintf("https://www.last.fm/user/%s/library/music/%s",
		url.PathEscape(username), url.PathEscape(artist))
}

// TrackURL builds the canonical Last.fm page link for a track.
func TrackURL(artist, track string) string {
	return fmt.Sprintf("https://www.last.fm/music/%s/_/%s",
		url.PathEscape(artist), url.PathEscape(track))
}
