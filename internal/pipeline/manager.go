package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sugarsmax/lastfm-discoveries/internal/catalog"
	"github.com/sugarsmax/lastfm-discoveries/internal/config"
	"github.com/sugarsmax/lastfm-discoveries/internal/lastfm"
	"github.com/sugarsmax/lastfm-discoveries/internal/model"
	"github.com/sugarsmax/lastfm-discoveries/internal/resume"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a pipeline progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Options control a single run.
type Options struct {
	// Username is the listening-history account. Required unless DryRun.
	Username string

	// Days is the lookback window for recent plays.
	Days int

	// TopLimit is how many all-time top artists to compare against.
	TopLimit int

	// DryRun replaces both fetches with fixture data and suppresses all
	// writes.
	DryRun bool

	// NoCache bypasses the resume cache entirely: nothing is loaded from
	// it and nothing is saved to it.
	NoCache bool
}

// RunResult is what a completed run produced.
type RunResult struct {
	// Stats summarizes the merge.
	Stats catalog.Stats

	// Catalog is the post-merge state.
	Catalog *model.Catalog

	// Touched lists the records created or advanced this run, most
	// recent first, for the console summary.
	Touched []*model.ArtistRecord

	// Saved reports whether the catalog file was written.
	Saved bool
}

// ErrUsernameRequired reports a live run started without a username.
var ErrUsernameRequired = errors.New("a username is required for a live run")

// Manager coordinates one catalog update run.
type Manager struct {
	settings     *config.Settings
	client       *lastfm.Client
	catalogStore *catalog.Store
	resumeStore  *resume.Store

	onProgress func(ProgressEvent)

	// now is injectable for tests.
	now func() time.Time

	mu sync.Mutex // guards resume state writes from the fetch goroutines
}

// NewManager creates a Manager. The API key may be empty for dry runs;
// onProgress may be nil to discard progress output.
func NewManager(settings *config.Settings, apiKey string, onProgress func(ProgressEvent)) *Manager {
	m := &Manager{
		settings:     settings,
		catalogStore: catalog.NewStore(settings.CatalogPath),
		resumeStore:  resume.NewStore(settings.StatePath),
		onProgress:   onProgress,
		now:          time.Now,
	}
	if apiKey != "" {
		m.client = lastfm.NewClient(apiKey, func(format string, args ...any) {
			m.progress(ProgressEvent{Message: fmt.Sprintf(format, args...), Level: LevelWarning})
		})
	}
	return m
}

// Run executes one update: load catalog, fetch, merge, commit.
//
// On any error the catalog file is left exactly as it was; resume state
// survives for the next run. On success the resume state is cleared.
func (m *Manager) Run(ctx context.Context, opts Options) (*RunResult, error) {
	if !opts.DryRun && opts.Username == "" {
		return nil, ErrUsernameRequired
	}
	if !opts.DryRun && m.client == nil {
		return nil, config.ErrMissingCredentials
	}
	if opts.Days <= 0 {
		opts.Days = m.settings.DefaultLookbackDays
	}
	if opts.TopLimit <= 0 {
		opts.TopLimit = m.settings.DefaultTopLimit
	}

	cat, err := m.catalogStore.Load()
	if err != nil {
		return nil, err
	}
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Loaded catalog with %d artists", cat.Metadata.TotalDiscoveries),
		Level:   LevelInfo,
	})

	var (
		events []model.PlayEvent
		top    model.TopArtistSet
	)
	if opts.DryRun {
		events = SampleRecentTracks()
		top = SampleTopArtists()
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("[dry-run] Using %d sample tracks and %d sample top artists",
				len(events), top.Len()),
			Level: LevelInfo,
		})
	} else {
		events, top, err = m.fetch(ctx, opts)
		if err != nil {
			return nil, err
		}
	}

	if len(events) == 0 {
		m.progress(ProgressEvent{Message: "No recent tracks found, nothing to merge", Level: LevelInfo})
		return &RunResult{Catalog: cat}, nil
	}
	if top.Len() == 0 {
		m.progress(ProgressEvent{
			Message: "Top artist list is empty; nothing will graduate this run",
			Level:   LevelWarning,
		})
	}

	events = m.filterEvents(events)

	now := m.now()
	stats, err := catalog.Merge(cat, top, events, now, func(format string, args ...any) {
		m.progress(ProgressEvent{Message: fmt.Sprintf(format, args...), Level: LevelWarning})
	})
	if err != nil {
		return nil, fmt.Errorf("merging catalog: %w", err)
	}

	if opts.DryRun {
		cat.Metadata.Username = DryRunUsername
	} else {
		cat.Metadata.Username = opts.Username
	}

	result := &RunResult{
		Stats:   stats,
		Catalog: cat,
		Touched: touchedRecords(cat, stats),
	}

	if opts.DryRun {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("[dry-run] Would save catalog to %s", m.catalogStore.Path()),
			Level:   LevelInfo,
		})
		return result, nil
	}

	if err := m.catalogStore.Save(cat); err != nil {
		return nil, err
	}
	result.Saved = true
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Saved catalog to %s", m.catalogStore.Path()),
		Level:   LevelSuccess,
	})

	if !opts.NoCache {
		if err := m.resumeStore.Clear(); err != nil {
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("Could not clear resume state: %v", err),
				Level:   LevelWarning,
			})
		}
	}

	return result, nil
}

// fetch retrieves recent plays and the top set, using fresh resume-cache
// entries when allowed and saving results as each fetch completes. The
// two leaf calls are independent, so they run under one errgroup; the
// pipeline stays synchronous at the merge boundary.
func (m *Manager) fetch(ctx context.Context, opts Options) ([]model.PlayEvent, model.TopArtistSet, error) {
	state := &resume.State{}
	if !opts.NoCache {
		loaded, err := m.resumeStore.Load()
		if err != nil {
			return nil, nil, fmt.Errorf("loading resume state: %w", err)
		}
		state = loaded
	}

	now := m.now()
	var (
		events []model.PlayEvent
		top    model.TopArtistSet
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if cached, ok := state.FreshRecentTracks(m.settings.RecentCacheMaxAge(), now); ok && !opts.NoCache {
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("Using %d cached recent tracks", len(cached)),
				Level:   LevelInfo,
			})
			events = cached
			return nil
		}

		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Fetching recent tracks for %s (last %d days)", opts.Username, opts.Days),
			Level:   LevelInfo,
		})
		err := m.withRetry(gctx, "recent tracks", func() error {
			var ferr error
			events, ferr = m.client.RecentTracks(gctx, opts.Username,
				now.Add(-time.Duration(opts.Days)*24*time.Hour), now)
			return ferr
		})
		if err != nil {
			return err
		}
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Fetched %d scrobbles", len(events)),
			Level:   LevelInfo,
		})

		if !opts.NoCache {
			m.saveResume(func(s *resume.State) {
				s.RecentTracks = &resume.CachedRecentTracks{FetchedAt: now, Events: events}
			})
		}
		return nil
	})

	g.Go(func() error {
		if cached, ok := state.FreshTopArtists(m.settings.TopCacheMaxAge(), now); ok && !opts.NoCache {
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("Using %d cached top artists", cached.Len()),
				Level:   LevelInfo,
			})
			top = cached
			return nil
		}

		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Fetching all-time top %d artists for %s", opts.TopLimit, opts.Username),
			Level:   LevelInfo,
		})
		var names []string
		err := m.withRetry(gctx, "top artists", func() error {
			fetched, ferr := m.client.TopArtists(gctx, opts.Username, opts.TopLimit)
			if ferr != nil {
				return ferr
			}
			top = fetched
			names = fetched.Keys()
			return nil
		})
		if err != nil {
			return err
		}
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Fetched %d top artists", top.Len()),
			Level:   LevelInfo,
		})

		if !opts.NoCache {
			m.saveResume(func(s *resume.State) {
				s.TopArtists = &resume.CachedTopArtists{FetchedAt: now, Artists: names}
			})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return events, top, nil
}

// saveResume applies mutate to the on-disk resume state under the lock,
// so the two fetch goroutines don't clobber each other's progress.
func (m *Manager) saveResume(mutate func(*resume.State)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.resumeStore.Load()
	if err != nil {
		state = &resume.State{}
	}
	mutate(state)
	if err := m.resumeStore.Save(state); err != nil {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Could not save resume state: %v", err),
			Level:   LevelWarning,
		})
	}
}

// withRetry runs fn up to MaxFetchRetries times with exponential cooldown
// between attempts. Permanent API errors and context cancellation are
// returned immediately.
func (m *Manager) withRetry(ctx context.Context, what string, fn func() error) error {
	var err error
	for tries := 0; tries < m.settings.MaxFetchRetries; tries++ {
		err = fn()
		if err == nil {
			return nil
		}
		if lastfm.IsPermanent(err) || ctx.Err() != nil {
			return err
		}
		if tries < m.settings.MaxFetchRetries-1 {
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("Retry %d/%d for %s: %v",
					tries+1, m.settings.MaxFetchRetries-1, what, err),
				Level: LevelWarning,
			})
			m.waitForRetry(ctx, tries)
		}
	}
	return fmt.Errorf("fetching %s: %w", what, err)
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) {
	cooldown := m.settings.FetchRetryCooldown * math.Pow(m.settings.FetchRetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

// filterEvents drops tracks matching the configured name filters.
func (m *Manager) filterEvents(events []model.PlayEvent) []model.PlayEvent {
	if len(m.settings.TrackNameFilters) == 0 {
		return events
	}

	kept := events[:0]
	dropped := 0
	for _, event := range events {
		if m.shouldSkipTrack(event.Track) {
			dropped++
			continue
		}
		kept = append(kept, event)
	}
	if dropped > 0 {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Filtered %d scrobbles by track name", dropped),
			Level:   LevelVerbose,
		})
	}
	return kept
}

func (m *Manager) shouldSkipTrack(track string) bool {
	lower := strings.ToLower(track)
	for _, filter := range m.settings.TrackNameFilters {
		if strings.Contains(lower, strings.ToLower(filter)) {
			return true
		}
	}
	return false
}

// touchedRecords returns the records this merge created or advanced,
// newest plays first.
func touchedRecords(cat *model.Catalog, stats catalog.Stats) []*model.ArtistRecord {
	count := stats.NewToCatalog + stats.UpdatedInCatalog
	if count == 0 {
		return nil
	}

	all := make([]*model.ArtistRecord, 0, len(cat.Records))
	for _, rec := range cat.Records {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].LastListened.Equal(all[j].LastListened.Time) {
			return all[i].LastListened.After(all[j].LastListened.Time)
		}
		return all[i].Artist < all[j].Artist
	})

	if count > len(all) {
		count = len(all)
	}
	return all[:count]
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
