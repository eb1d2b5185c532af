package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/sugarsmax/lastfm-discoveries/internal/config"
	"github.com/sugarsmax/lastfm-discoveries/internal/model"
	"github.com/sugarsmax/lastfm-discoveries/internal/pipeline"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
	newStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	gradStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
)

func main() {
	// Command line flags
	var (
		usernameFlag = flag.String("username", "", "Last.fm username to catalog")
		daysFlag     = flag.Int("days", 0, "Lookback window in days (default from config)")
		topLimitFlag = flag.Int("top-limit", 0, "All-time top artists to compare against (default from config)")
		catalogFlag  = flag.String("catalog", "", "Catalog file path (overrides config)")
		configFlag   = flag.String("config", "", "Path to config file")
		dryRunFlag   = flag.Bool("dry-run", false, "Use sample data, write nothing")
		noCacheFlag  = flag.Bool("no-cache", false, "Bypass the resume cache")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	if *usernameFlag == "" && !*dryRunFlag {
		fmt.Println("Last.fm Discoveries - catalog new artists from your listening history")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  discoveries -username <name> [options]")
		fmt.Println("  discoveries -dry-run")
		fmt.Println()
		fmt.Println("To browse the catalog, use: discoveries-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Credentials come from the environment; .env is a convenience for
	// local runs and its absence is not an error.
	_ = godotenv.Load()

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *catalogFlag != "" {
		settings.CatalogPath = *catalogFlag
	}

	apiKey := ""
	if !*dryRunFlag {
		creds, err := config.CredentialsFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		apiKey = creds.APIKey
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	manager := pipeline.NewManager(settings, apiKey, func(event pipeline.ProgressEvent) {
		if event.Level == pipeline.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case pipeline.LevelError:
			prefix = "❌ "
		case pipeline.LevelWarning:
			prefix = "⚠️  "
		case pipeline.LevelSuccess:
			prefix = "✅ "
		case pipeline.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	})

	fmt.Println("🎵 Last.fm Discoveries")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	result, err := manager.Run(ctx, pipeline.Options{
		Username: *usernameFlag,
		Days:     *daysFlag,
		TopLimit: *topLimitFlag,
		DryRun:   *dryRunFlag,
		NoCache:  *noCacheFlag,
	})
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nRun cancelled; catalog untouched.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printSummary(result, *dryRunFlag)
}

// printSummary renders the per-run report: merge counters plus one line
// per artist the run created or advanced.
func printSummary(result *pipeline.RunResult, dryRun bool) {
	stats := result.Stats

	fmt.Println()
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	title := "✨ Run complete"
	if dryRun {
		title += " (dry run)"
	}
	fmt.Println(headerStyle.Render(title))
	fmt.Printf("   Scrobbled artists:   %d\n", stats.UniqueArtists)
	fmt.Printf("   New discoveries:     %d\n", stats.NewToCatalog)
	fmt.Printf("   Updated in catalog:  %d\n", stats.UpdatedInCatalog)
	fmt.Printf("   Newly graduated:     %d\n", stats.GraduatedToTop)
	fmt.Printf("   Catalog size:        %d (%d graduated)\n",
		result.Catalog.Metadata.TotalDiscoveries, result.Catalog.Metadata.TotalGraduated)

	if len(result.Touched) == 0 {
		return
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("   This run:"))
	now := time.Now()
	for _, rec := range result.Touched {
		fmt.Printf("   %s\n", formatRecord(rec, now))
	}
}

func formatRecord(rec *model.ArtistRecord, now time.Time) string {
	line := fmt.Sprintf("%-30s %s  %s", rec.Artist, rec.LastListened, dimStyle.Render(rec.Track))
	if rec.Graduated {
		line += "  " + gradStyle.Render("★")
	}
	if rec.IsNew(now) {
		line += "  " + newStyle.Render("NEW")
	}
	return line
}
