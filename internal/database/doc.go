// Package database provides the SQLite crawl journal.
//
// The journal records every run (phase, profile, counters, how it ended)
// and every unit attempt inside a run (outcome, failure category, listing
// count, artifact checksum). It is history for operators; crawl progress
// itself lives in the state files, so a lost journal never affects what
// the next run does.
//
// SQLite is used through modernc.org/sqlite, a CGO-free driver, with WAL
// mode and a single connection.
package database
