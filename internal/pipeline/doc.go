// Package pipeline orchestrates one catalog update run: fetch recent
// plays and the all-time top set, merge them into the persisted catalog,
// and commit the result atomically.
//
// # Running
//
//	manager := pipeline.NewManager(settings, apiKey, func(event pipeline.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	result, err := manager.Run(ctx, pipeline.Options{
//	    Username: "someone",
//	    Days:     7,
//	    TopLimit: 1000,
//	})
//
// # Failure model
//
// Configuration problems (no username, no credentials) fail before any
// network I/O. Transient fetch failures are retried a bounded number of
// times with exponential cooldown; permanent API errors (bad key, unknown
// user) are not retried. Any fatal condition aborts before the catalog is
// written, so the previous committed state survives crashes, failures and
// cancellation. Resume state is kept on failure for the next run and
// cleared only after a successful commit.
//
// # Dry runs
//
// Options.DryRun swaps the two fetches for fixture data and suppresses
// every write: no network, no catalog save, no resume I/O.
package pipeline
