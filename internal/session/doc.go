// Package session provides the fetch capability the crawler runs on.
//
// A Session is an explicitly owned browser session with an Acquire and
// Release lifecycle. It is not safe for concurrent use; callers serialize
// every request through one session. Search returns one page of map
// search results for a bounding box. Detail returns the rendered HTML of
// a listing page.
//
// Responses that carry a bot challenge instead of data are reported with
// model.StatusChallenge rather than as errors. ChromeSession gives an
// operator a bounded window to clear a challenge in a visible browser
// before giving up.
//
// The package also encodes and decodes the searchQueryState parameter of
// listing service search URLs.
package session
