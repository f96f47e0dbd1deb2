// Package state persists crawl progress so an interrupted crawl can resume.
//
// A Store holds a set of visited primary identifiers (tile keys or listing
// ids), a secondary set of visited URLs and a set of units confirmed empty.
// The state file is a cache of what the artifact directory already proves:
// on open, keys derived from artifact file names are unioned into the
// loaded sets and the result is written back. Every mutation is flushed to
// disk before it returns, so a unit is never reported visited unless the
// state file says so.
package state
