// Package artifact writes and reads the files a crawl produces.
//
// Tile artifacts hold the merged search results of one tile and are named
// after the tile key. Listing artifacts hold one parsed detail record and
// are named after the listing identifier, or a numbered placeholder when
// the identifier is unknown. All writes go through a temporary file and a
// rename so a reader never observes a partially written artifact.
//
// The package also builds the detail manifest, the deduplicated list of
// listing URLs gathered from every tile artifact, and reads and writes the
// tile links file produced by partitioning.
package artifact
