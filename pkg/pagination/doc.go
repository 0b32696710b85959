// Package pagination fetches multiple coin-listing pages in parallel
// through the data-access facade.
//
// Listing pages are independent request keys, so the coordinator
// dedups and throttles each page on its own; the batch fetcher only
// adds a bounded worker pool on top. Throttled pages are skipped
// rather than retried, partial results are normal during heavy UI
// traffic.
//
// Example usage:
//
//	fetcher := pagination.NewBatchFetcher(svc, pagination.DefaultConfig())
//	pages, err := fetcher.FetchPages(ctx, "usd", 5)
//
// The zero page map and a nil error means every page was throttled.
package pagination
