// Package tui provides a Bubble Tea terminal browser for the discovery
// catalog: one card per artist, with filtering, sorting and a graduated
// toggle.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sugarsmax/lastfm-discoveries/internal/catalog"
	"github.com/sugarsmax/lastfm-discoveries/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 2).
			Width(64)

	artistStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))

	trackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	newBadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(lipgloss.Color("#95E1A3")).
			Padding(0, 1)

	graduatedBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFE66D"))
)

// SortMode selects the card ordering.
type SortMode int

const (
	// SortRecent orders by most recent listen.
	SortRecent SortMode = iota
	// SortDiscovered orders by most recent discovery.
	SortDiscovered
	// SortArtist orders alphabetically by artist name, locale-aware.
	SortArtist

	sortModeCount
)

func (s SortMode) String() string {
	switch s {
	case SortRecent:
		return "last listened"
	case SortDiscovered:
		return "first discovered"
	case SortArtist:
		return "artist"
	}
	return "unknown"
}

// Model is the Bubble Tea model for the catalog browser.
type Model struct {
	store   *catalog.Store
	catalog *model.Catalog
	records []*model.ArtistRecord
	err     error

	filter        textinput.Model
	sortMode      SortMode
	hideGraduated bool
	cursor        int

	width  int
	height int
}

// NewModel creates a catalog browser reading from catalogPath.
func NewModel(catalogPath string) Model {
	ti := textinput.New()
	ti.Placeholder = "filter by artist or track"
	ti.CharLimit = 100
	ti.Width = 40

	return Model{
		store:  catalog.NewStore(catalogPath),
		filter: ti,
	}
}

// catalogLoadedMsg is sent once the catalog file has been read.
type catalogLoadedMsg struct {
	catalog *model.Catalog
	err     error
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadCatalog())
}

func (m Model) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		cat, err := m.store.Load()
		return catalogLoadedMsg{catalog: cat, err: err}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case catalogLoadedMsg:
		m.err = msg.err
		m.catalog = msg.catalog
		if msg.catalog != nil {
			m.records = recordList(msg.catalog)
		}
		// A reload can shrink the list out from under the cursor.
		if max := len(m.visible()) - 1; m.cursor > max {
			m.cursor = max
			if m.cursor < 0 {
				m.cursor = 0
			}
		}
		return m, nil

	case tea.KeyMsg:
		if m.filter.Focused() {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.cursor = 0
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case "/":
			m.filter.Focus()
			return m, textinput.Blink

		case "s":
			m.sortMode = (m.sortMode + 1) % sortModeCount
			m.cursor = 0

		case "g":
			m.hideGraduated = !m.hideGraduated
			m.cursor = 0

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}

		case "r":
			return m, m.loadCatalog()
		}
	}

	return m, nil
}

// visible returns the records after filtering, hiding and sorting.
func (m Model) visible() []*model.ArtistRecord {
	records := filterRecords(m.records, m.filter.Value())
	if m.hideGraduated {
		records = excludeGraduated(records)
	}
	sortRecords(records, m.sortMode)
	return records
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎵 Last.fm Discoveries"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Could not load catalog: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("q: quit"))
		return b.String()
	}
	if m.catalog == nil {
		b.WriteString(dimStyle.Render("Loading catalog..."))
		return b.String()
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"%d discoveries • %d graduated • updated %s",
		m.catalog.Metadata.TotalDiscoveries,
		m.catalog.Metadata.TotalGraduated,
		m.catalog.Metadata.LastUpdated,
	)))
	b.WriteString("\n\n")

	if m.filter.Focused() || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(dimStyle.Render("No matching artists."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.viewCards(visible))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) viewCards(visible []*model.ArtistRecord) string {
	// Fit as many cards as the terminal height allows, keeping the
	// cursor in view.
	perCard := 5
	max := len(visible)
	if m.height > 0 {
		if fit := (m.height - 8) / perCard; fit >= 1 && fit < max {
			max = fit
		}
	}
	start := 0
	if m.cursor >= max {
		start = m.cursor - max + 1
	}

	var b strings.Builder
	for i := start; i < len(visible) && i < start+max; i++ {
		b.WriteString(m.viewCard(visible[i], i == m.cursor))
		b.WriteString("\n")
	}
	if rest := len(visible) - (start + max); rest > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("… %d more", rest)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewCard(rec *model.ArtistRecord, selected bool) string {
	header := artistStyle.Render(rec.Artist)
	if rec.Graduated {
		header += "  " + graduatedBadgeStyle.Render("★ graduated")
	}
	if rec.IsNew(time.Now()) {
		header += "  " + newBadgeStyle.Render("NEW")
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(trackStyle.Render("♪ " + rec.Track))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"discovered %s • last listened %s", rec.FirstDiscovered, rec.LastListened)))

	style := cardStyle
	if selected {
		style = style.BorderForeground(lipgloss.Color("#F8B500"))
	}
	return style.Render(b.String())
}

func (m Model) helpText() string {
	graduated := "hide graduated"
	if m.hideGraduated {
		graduated = "show graduated"
	}
	return fmt.Sprintf("sorted by %s • /: filter • s: sort • g: %s • r: reload • q: quit",
		m.sortMode, graduated)
}

// recordList flattens the catalog map into a slice for display.
func recordList(cat *model.Catalog) []*model.ArtistRecord {
	records := make([]*model.ArtistRecord, 0, len(cat.Records))
	for _, rec := range cat.Records {
		records = append(records, rec)
	}
	return records
}

// filterRecords returns the records whose artist or track contains query,
// case-insensitively. An empty query matches everything. The input slice
// is never mutated.
func filterRecords(records []*model.ArtistRecord, query string) []*model.ArtistRecord {
	query = strings.ToLower(strings.TrimSpace(query))
	matched := make([]*model.ArtistRecord, 0, len(records))
	if query == "" {
		return append(matched, records...)
	}
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Artist), query) ||
			strings.Contains(strings.ToLower(rec.Track), query) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// excludeGraduated drops records already in the all-time top set.
func excludeGraduated(records []*model.ArtistRecord) []*model.ArtistRecord {
	kept := make([]*model.ArtistRecord, 0, len(records))
	for _, rec := range records {
		if !rec.Graduated {
			kept = append(kept, rec)
		}
	}
	return kept
}

// sortRecords orders records in place according to mode. Time orderings
// break ties by artist name so the display is stable across runs.
func sortRecords(records []*model.ArtistRecord, mode SortMode) {
	coll := collate.New(language.Und, collate.IgnoreCase)
	byName := func(a, b *model.ArtistRecord) int {
		return coll.CompareString(a.Artist, b.Artist)
	}

	var less func(a, b *model.ArtistRecord) bool
	switch mode {
	case SortDiscovered:
		less = func(a, b *model.ArtistRecord) bool {
			if !a.FirstDiscovered.Equal(b.FirstDiscovered.Time) {
				return a.FirstDiscovered.After(b.FirstDiscovered.Time)
			}
			return byName(a, b) < 0
		}
	case SortArtist:
		less = func(a, b *model.ArtistRecord) bool {
			return byName(a, b) < 0
		}
	default: // SortRecent
		less = func(a, b *model.ArtistRecord) bool {
			if !a.LastListened.Equal(b.LastListened.Time) {
				return a.LastListened.After(b.LastListened.Time)
			}
			return byName(a, b) < 0
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return less(records[i], records[j])
	})
}

// Run starts the catalog browser.
func Run(catalogPath string) error {
	p := tea.NewProgram(NewModel(catalogPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
