package content

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/nemo-olympiad/nemoweb/internal/apperr"
)

// Page is one content file in the store. Pages are immutable once built;
// edits rewrite the underlying file and force a reload.
type Page struct {
	// Path is the file's location relative to the store root, without
	// extension. It is the unique key of the page.
	Path string
	Meta Meta
	Body string
	// Raw is the full file content including front-matter, as written
	// on disk. The editor round-trips it verbatim.
	Raw string
}

// Snapshot is an immutable view of the store at one point in time.
// Concurrent readers hold their own reference; a reload never mutates
// a snapshot that has been handed out.
type Snapshot struct {
	byPath map[string]*Page
	pages  []*Page
}

// Get returns the page at path, or apperr.ErrNotFound.
func (s *Snapshot) Get(path string) (*Page, error) {
	if p, ok := s.byPath[path]; ok {
		return p, nil
	}
	return nil, apperr.ErrNotFound
}

// Pages returns all pages in the snapshot. Callers must not mutate
// the returned slice's pages.
func (s *Snapshot) Pages() []*Page {
	out := make([]*Page, len(s.pages))
	copy(out, s.pages)
	return out
}

// Len returns the number of pages in the snapshot.
func (s *Snapshot) Len() int { return len(s.pages) }

// Store loads a directory tree of front-matter Markdown files and serves
// the collection as an atomically swappable snapshot.
type Store struct {
	fs     *FS
	logger *slog.Logger

	mu   sync.RWMutex
	snap *Snapshot
}

// NewStore creates a store over fs and performs the initial load.
func NewStore(fs *FS, logger *slog.Logger) (*Store, error) {
	s := &Store{fs: fs, logger: logger, snap: &Snapshot{byPath: map[string]*Page{}}}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// FS returns the underlying content file system.
func (s *Store) FS() *FS { return s.fs }

// Reload re-scans the content tree and replaces the snapshot. The new
// index is built completely before the swap; on a scan failure the
// previous snapshot stays in place. A single malformed file is skipped
// with a warning and does not fail the reload.
func (s *Store) Reload() error {
	files, err := s.fs.List()
	if err != nil {
		return err
	}

	next := &Snapshot{byPath: make(map[string]*Page, len(files))}
	for _, rel := range files {
		data, err := s.fs.Read(rel)
		if err != nil {
			s.logger.Warn("store: read failed", slog.String("path", rel), slog.String("error", err.Error()))
			continue
		}
		doc, err := Parse(data)
		if err != nil {
			s.logger.Warn("store: skipping malformed page", slog.String("path", rel), slog.String("error", err.Error()))
			continue
		}
		page := &Page{
			Path: strings.TrimSuffix(rel, s.fs.Ext()),
			Meta: doc.Meta,
			Body: doc.Body,
			Raw:  string(data),
		}
		next.byPath[page.Path] = page
		next.pages = append(next.pages, page)
	}

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()
	return nil
}

// Snapshot returns the current immutable snapshot.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Get returns the page at path from the current snapshot.
func (s *Store) Get(path string) (*Page, error) {
	return s.Snapshot().Get(path)
}
