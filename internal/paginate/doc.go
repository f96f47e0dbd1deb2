// Package paginate drives repeated search fetches for a single tile until
// the accumulated results are provably complete.
//
// The controller records the tile's claimed size from the first page's map
// results and accumulates list results page by page. It stops when the
// claim is met, when the tile is confirmed empty, when a later page comes
// back empty, or when a fetch fails. A safety bound on the number of pages
// aborts runaway pagination; aborted tiles must not be treated as complete.
//
// The merged result is checked for integrity: after deduplication the list
// results must cover the map results. A shortfall is fatal for the tile.
package paginate
