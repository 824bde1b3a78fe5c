// Package browser is the paginated browsing session over a catalog.
//
// A Browser owns the active filter and page (Navigator), loads the visible page
// through a generation-tagged Controller, and warms the following page in the
// background (Prefetcher). All three share one cache.Store keyed by page and
// filter. The store has no expiry; it is cleared after every mutation.
//
//	b := browser.New(source,
//		browser.WithStore(store),
//		browser.WithObserver(render),
//	)
//	defer b.Close()
//
//	view, err := b.Start(ctx)
//	view, err = b.SelectCategory(ctx, "ai")
//	view, err = b.Next(ctx)
//
// Every intent issues a new generation. A load that settles after a newer
// generation was issued still writes its own store key but never changes the
// View. Pages past the end resolve as empty pages, and the page is clamped
// with one follow-up load when the resolved total no longer covers it.
package browser
