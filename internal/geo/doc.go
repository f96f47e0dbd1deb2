// Package geo partitions a geographic search region into tiles.
//
// A search over the listing service's map view is capped at a fixed number
// of results per query. To stay under the cap, the search region is cut
// into a uniform grid whose cells are no larger, in kilometers, than a
// reference tile already known to return fewer results than the cap.
//
// The grid is equal-sized in degrees, not equal in listing density, so a
// dense neighborhood can still produce tiles near the cap while open water
// produces empty ones. Empty tiles are tracked by the crawl state so they
// are only fetched once.
//
// # Usage
//
//	tiles, err := geo.ComputeSubtiles(search, reference, 1.0)
//	for _, b := range tiles {
//	    tile := geo.NewTile(b)
//	    fmt.Println(tile.FileName())
//	}
package geo
