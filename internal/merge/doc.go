// Package merge folds paginated search batches for one tile into a single
// deduplicated batch.
//
// Deduplication is keyed by listing identity (see model.Listing.Identity)
// and applies to each result array independently. The same listing may
// legitimately appear in both the list and map arrays and is kept in both.
// Within an array the first occurrence wins. Listings without an
// identifier are always kept since their duplicates cannot be detected.
package merge
