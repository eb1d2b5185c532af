package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sugarsmax/lastfm-discoveries/internal/lastfm/dto"
	"github.com/sugarsmax/lastfm-discoveries/internal/model"
)

const (
	baseURL = "https://ws.audioscrobbler.com/2.0/"

	// recentPageSize is capped below the API maximum; Last.fm silently
	// clamps anything above 200 for user.getRecentTracks anyway.
	recentPageSize = 200

	// topPageSize keeps top-artist pagination to a couple of requests for
	// the default limit of 1000.
	topPageSize = 500
)

// APIError is a Last.fm web-service error response.
type APIError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("last.fm error %d: %s", e.Code, e.Message)
}

// IsPermanent reports whether err is an API error that retrying cannot
// fix: bad credentials, suspended key, unknown user, invalid parameters.
// Rate limiting (code 29) and the generic backend-failure codes are
// transient.
func IsPermanent(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case 2, 3, 4, 5, 6, 7, 10, 13, 26, 27:
		return true
	}
	return false
}

// Client calls the Last.fm web service.
type Client struct {
	http   *resty.Client
	apiKey string
	warn   dto.Warn
}

// NewClient creates a Client authenticated with the given API key.
// The warn callback receives a message per skipped malformed feed row;
// pass nil to discard them.
func NewClient(apiKey string, warn dto.Warn) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "lastfm-discoveries"),
		apiKey: apiKey,
		warn:   warn,
	}
}

// RecentTracks fetches all scrobbles for username in [from, to], newest
// first as the API returns them, following pagination to the end.
func (c *Client) RecentTracks(ctx context.Context, username string, from, to time.Time) ([]model.PlayEvent, error) {
	artistURL := func(artist string) string { return LibraryURL(username, artist) }

	var events []model.PlayEvent
	for page, totalPages := 1, 1; page <= totalPages; page++ {
		body, err := c.call(ctx, "user.getrecenttracks", map[string]string{
			"user":  username,
			"from":  strconv.FormatInt(from.Unix(), 10),
			"to":    strconv.FormatInt(to.Unix(), 10),
			"limit": strconv.Itoa(recentPageSize),
			"page":  strconv.Itoa(page),
		})
		if err != nil {
			return nil, fmt.Errorf("fetching recent tracks page %d: %w", page, err)
		}

		var parsed dto.JSONRecentTracks
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("parsing recent tracks page %d: %w", page, err)
		}

		events = append(events, parsed.ToEvents(artistURL, TrackURL, c.warn)...)
		totalPages = parsed.RecentTracks.Attr.Pages()
	}

	return events, nil
}

// TopArtists fetches the user's all-time top artists, up to limit, as a
// normalized set.
func (c *Client) TopArtists(ctx context.Context, username string, limit int) (model.TopArtistSet, error) {
	set := model.NewTopArtistSet()

	for page, totalPages := 1, 1; page <= totalPages && set.Len() < limit; page++ {
		perPage := topPageSize
		if remaining := limit - set.Len(); remaining < perPage {
			perPage = remaining
		}

		body, err := c.call(ctx, "user.gettopartists", map[string]string{
			"user":   username,
			"period": "overall",
			"limit":  strconv.Itoa(perPage),
			"page":   strconv.Itoa(page),
		})
		if err != nil {
			return nil, fmt.Errorf("fetching top artists page %d: %w", page, err)
		}

		var parsed dto.JSONTopArtists
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("parsing top artists page %d: %w", page, err)
		}

		for _, name := range parsed.Names(c.warn) {
			set.Add(name)
		}
		totalPages = parsed.TopArtists.Attr.Pages()
	}

	return set, nil
}

// call performs one API request and returns the raw body, decoding
// Last.fm's in-band error envelope when present.
func (c *Client) call(ctx context.Context, method string, params map[string]string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"method":  method,
			"api_key": c.apiKey,
			"format":  "json",
		}).
		SetQueryParams(params).
		Get("")
	if err != nil {
		return nil, err
	}

	// Errors arrive both as HTTP status codes and as an in-band envelope;
	// the envelope carries the code that matters.
	var apiErr APIError
	if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Code != 0 {
		return nil, &apiErr
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s: HTTP %d", method, resp.StatusCode())
	}

	return resp.Body(), nil
}
