// Package model defines the core data structures used throughout
// the discovery cataloger.
//
// # PlayEvent
//
// PlayEvent represents one scrobble returned by the listening-history
// service:
//
//	event := model.PlayEvent{
//	    Artist:    "Khruangbin",
//	    Track:     "Maria También",
//	    Timestamp: model.NewTimestamp(playedAt),
//	}
//
// # ArtistRecord and Catalog
//
// ArtistRecord is one discovered artist; Catalog maps normalized artist
// keys to records plus summary metadata:
//
//	cat := model.NewCatalog()
//	cat.Records[model.NormalizeArtistKey(event.Artist)] = record
//
// # Artist keys
//
// Records are keyed by NormalizeArtistKey(name): lowercased, trimmed, with
// stray straight/curly quotes stripped. The record itself preserves the
// display casing in its Artist field.
//
// # Timestamps
//
// Timestamp marshals as "YYYY-MM-DD HH:MM" in UTC, the format shared by the
// persisted catalog file and the card renderer.
package model
