// Package lastfm provides a client for the two Last.fm endpoints the
// cataloger needs: a user's recent scrobbles and their all-time top
// artists.
//
// # Recent tracks
//
//	client := lastfm.NewClient(apiKey)
//	events, err := client.RecentTracks(ctx, "someone", from, to)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, e := range events {
//	    fmt.Printf("%s — %s at %s\n", e.Artist, e.Track, e.Timestamp)
//	}
//
// # Top artists
//
//	top, err := client.TopArtists(ctx, "someone", 1000)
//	if top.Contains("radiohead") { ... }
//
// # Response format
//
// Last.fm's JSON has some legacy quirks: attribute objects under "@attr",
// text nodes under "#text", and numbers encoded as strings. The dto
// subpackage mirrors those shapes and converts them to model types,
// skipping individual malformed rows rather than failing the whole fetch —
// a bad record in a third-party feed shouldn't kill the run.
//
// # Errors
//
// API-level failures carry Last.fm's error code as *APIError. Use
// IsPermanent to tell configuration mistakes (bad key, unknown user) apart
// from transient conditions worth retrying.
package lastfm
