package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/joshuawang25532/MLLM-Housing/internal/artifact"
)

// State file names.
const (
	TileStateFile    = "visited_tiles.json"
	ListingStateFile = "visited_houses.json"

	// CorruptSuffix is appended to an unreadable state file when it is
	// moved aside.
	CorruptSuffix = ".corrupt"
)

// file is the on-disk layout. TotalVisited is informational and always
// recomputed from VisitedIDs.
type file struct {
	VisitedIDs   []string `json:"visited_ids"`
	VisitedURLs  []string `json:"visited_urls"`
	Empty        []string `json:"empty,omitempty"`
	TotalVisited int      `json:"total_visited"`

	// Legacy key names written by earlier crawls; merged on load.
	LegacyZPIDs []string `json:"visited_zpids,omitempty"`
	LegacyTiles []string `json:"visited_tiles,omitempty"`
}

// Counts is a snapshot of the set sizes.
type Counts struct {
	Visited int
	URLs    int
	Empty   int
}

// Store is a persisted crawl state. It is safe for concurrent use.
type Store struct {
	path        string
	artifactDir string
	keyFunc     KeyFunc
	logger      *slog.Logger

	mu    sync.Mutex
	ids   map[string]struct{}
	urls  map[string]struct{}
	empty map[string]struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithArtifacts enables reconciliation against the artifact files in dir,
// deriving keys with fn.
func WithArtifacts(dir string, fn KeyFunc) Option {
	return func(s *Store) {
		s.artifactDir = dir
		s.keyFunc = fn
	}
}

// Open loads the state at path, reconciles it against the artifact
// directory and writes the reconciled state back.
//
// A missing state file starts from empty sets. An unreadable one is logged
// and discarded, since reconciliation rebuilds everything it can prove.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:  path,
		ids:   make(map[string]struct{}),
		urls:  make(map[string]struct{}),
		empty: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := s.load(); err != nil {
		aside, merr := moveAside(path)
		if merr != nil {
			return nil, fmt.Errorf("%w: unreadable state %s cannot be moved aside: %w", ErrPersist, path, merr)
		}
		s.logger.Warn("unreadable crawl state moved aside",
			"path", path,
			"moved_to", aside,
			"error", err,
		)
	}

	reconciled, err := s.reconcile()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persistLocked(); err != nil {
		return nil, err
	}

	s.logger.Debug("crawl state loaded",
		"path", path,
		"visited", len(s.ids),
		"urls", len(s.urls),
		"empty", len(s.empty),
		"reconciled", reconciled,
	)
	return s, nil
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}
	for _, group := range [][]string{f.VisitedIDs, f.LegacyZPIDs, f.LegacyTiles} {
		for _, id := range group {
			if id != "" {
				s.ids[id] = struct{}{}
			}
		}
	}
	for _, u := range f.VisitedURLs {
		if u != "" {
			s.urls[u] = struct{}{}
		}
	}
	for _, k := range f.Empty {
		if k != "" {
			s.empty[k] = struct{}{}
			s.ids[k] = struct{}{}
		}
	}
	return nil
}

// moveAside renames path to the first free <path>.corrupt[.N] name.
func moveAside(path string) (string, error) {
	aside := path + CorruptSuffix
	for n := 1; ; n++ {
		if _, err := os.Lstat(aside); errors.Is(err, os.ErrNotExist) {
			break
		}
		aside = fmt.Sprintf("%s%s.%d", path, CorruptSuffix, n)
	}
	if err := os.Rename(path, aside); err != nil {
		return "", err
	}
	return aside, nil
}

// reconcile unions keys derived from artifact file names into the visited
// set and returns how many were new.
func (s *Store) reconcile() (int, error) {
	if s.artifactDir == "" || s.keyFunc == nil {
		return 0, nil
	}

	entries, err := os.ReadDir(s.artifactDir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to scan artifacts in %s: %w", s.artifactDir, err)
	}

	stateName := filepath.Base(s.path)
	added := 0

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if e.IsDir() || e.Name() == stateName {
			continue
		}
		key, ok := s.keyFunc(e.Name())
		if !ok {
			continue
		}
		if _, seen := s.ids[key]; !seen {
			s.ids[key] = struct{}{}
			added++
		}
	}
	return added, nil
}

// IsVisited reports whether id or url has been marked visited. Empty
// arguments never match.
func (s *Store) IsVisited(id, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if _, ok := s.ids[id]; ok {
			return true
		}
	}
	if url != "" {
		if _, ok := s.urls[url]; ok {
			return true
		}
	}
	return false
}

// IsEmpty reports whether key was recorded as a confirmed empty unit.
func (s *Store) IsEmpty(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.empty[key]
	return ok
}

// MarkVisited records id and url (either may be empty) and persists the
// state. Marking is idempotent. If persisting fails, the in-memory sets
// are left as they were.
func (s *Store) MarkVisited(id, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var undo []func()
	if id != "" {
		if _, ok := s.ids[id]; !ok {
			s.ids[id] = struct{}{}
			undo = append(undo, func() { delete(s.ids, id) })
		}
	}
	if url != "" {
		if _, ok := s.urls[url]; !ok {
			s.urls[url] = struct{}{}
			undo = append(undo, func() { delete(s.urls, url) })
		}
	}
	if len(undo) == 0 {
		return nil
	}

	if err := s.persistLocked(); err != nil {
		for _, fn := range undo {
			fn()
		}
		return err
	}
	return nil
}

// MarkEmpty records key as visited and confirmed empty, then persists.
func (s *Store) MarkEmpty(key string) error {
	if key == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, hadID := s.ids[key]
	_, hadEmpty := s.empty[key]
	if hadID && hadEmpty {
		return nil
	}
	s.ids[key] = struct{}{}
	s.empty[key] = struct{}{}

	if err := s.persistLocked(); err != nil {
		if !hadID {
			delete(s.ids, key)
		}
		if !hadEmpty {
			delete(s.empty, key)
		}
		return err
	}
	return nil
}

// Count returns the number of unique visited identifiers.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Counts returns the size of every set.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{Visited: len(s.ids), URLs: len(s.urls), Empty: len(s.empty)}
}

// persistLocked writes the state file atomically. s.mu must be held.
func (s *Store) persistLocked() error {
	f := file{
		VisitedIDs:   slices.Sorted(maps.Keys(s.ids)),
		VisitedURLs:  slices.Sorted(maps.Keys(s.urls)),
		Empty:        slices.Sorted(maps.Keys(s.empty)),
		TotalVisited: len(s.ids),
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := artifact.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
