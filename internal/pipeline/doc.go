// Package pipeline runs crawl phases in sequence.
//
// A Pipeline holds an ordered list of Steps. Each Step receives the shared
// Run, which collects the summary of every phase that ran, so a single
// invocation can partition the search, crawl tiles, build the manifest
// and crawl details, and report on all of them at the end.
package pipeline
