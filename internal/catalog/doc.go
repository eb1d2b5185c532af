// Package catalog implements the discovery merger and the persisted
// catalog store.
//
// # Merging
//
// Merge folds a batch of recent play events and the user's all-time top
// artist set into an existing catalog:
//
//	stats, err := catalog.Merge(cat, topSet, events, time.Now(), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d new, %d updated, %d graduated\n",
//	    stats.NewToCatalog, stats.UpdatedInCatalog, stats.GraduatedToTop)
//
// Merge is pure with respect to I/O and order-independent with respect to
// the event slice: for any permutation of the same events the resulting
// catalog is identical (timestamp ties between same-artist events are
// broken deterministically on track title). Graduation is sticky and
// top-set membership alone never creates a record; only actual plays do.
//
// # Storing
//
// Store loads the catalog at run start and saves it at run end. Saves are
// all-or-nothing: the document is written to a temp file and atomically
// renamed over the old one, so an aborted run never corrupts the previous
// committed state.
//
//	store := catalog.NewStore("data/discovery_catalog.json")
//	cat, err := store.Load()   // empty catalog if the file is absent
//	...
//	err = store.Save(cat)
package catalog
