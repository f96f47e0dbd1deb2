// Package crawler runs resumable crawls over tiles and listings.
//
// # Architecture
//
// The Orchestrator is generic over the unit of work. It drops units the
// Tracker already knows, shuffles the rest, acquires the shared fetch
// session once and hands each unit to a WorkFunc. A unit is marked visited
// only after its work reports a durable save or a confirmed empty result,
// so an interrupted run never skips unfinished work.
//
// TileCrawler and DetailCrawler are the two WorkFuncs: the first paginates
// a tile's search and stores the merged results, the second fetches and
// parses a listing detail page.
//
// # Failure handling
//
// A failing unit is counted, logged and left for a later run. The loop
// only stops early on cancellation, or when a configured number of
// consecutive failures suggests the service is blocking the crawler. The
// session is released on every exit path.
//
// # Pacing
//
// Requests are spaced by a Pacer that sleeps a clamped Gaussian delay and
// never exceeds its rate floor.
package crawler
