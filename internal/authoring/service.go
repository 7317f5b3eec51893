// Package authoring implements the post creation and editing workflow:
// raw front-matter documents submitted by the editor are validated,
// slugged into a category directory, written verbatim, and the page
// store is reloaded.
package authoring

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/nemo-olympiad/nemoweb/internal/apperr"
	"github.com/nemo-olympiad/nemoweb/internal/content"
)

// Service writes content files through the store's file system.
//
// Creates and updates are serialized by a mutex: filename-collision
// resolution is check-then-create, acceptable under the single-admin
// authoring model this site assumes.
type Service struct {
	store *content.Store

	mu sync.Mutex
}

// NewService creates an authoring service over the page store.
func NewService(store *content.Store) *Service {
	return &Service{store: store}
}

// CreateFromRaw validates and stores a full raw document. The filename
// stem comes from filenameOverride when given, else from the slugged
// title; collisions get an incrementing numeric suffix. It returns the
// logical path of the new page.
func (s *Service) CreateFromRaw(raw, filenameOverride string) (string, error) {
	doc, err := content.Parse([]byte(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}
	if doc.Meta.Title == "" {
		return "", fmt.Errorf("%w: front-matter must contain a title", apperr.ErrValidation)
	}

	stem := Slugify(filenameOverride)
	if stem == "" {
		stem = Slugify(doc.Meta.Title)
	}
	if stem == "" {
		return "", fmt.Errorf("%w: title produces an empty slug", apperr.ErrValidation)
	}

	dir := targetDir(doc.Meta)

	s.mu.Lock()
	defer s.mu.Unlock()

	fs := s.store.FS()
	logical := dir + "/" + stem
	for counter := 1; fs.Exists(logical + fs.Ext()); counter++ {
		logical = fmt.Sprintf("%s/%s-%d", dir, stem, counter)
	}

	if err := fs.Write(logical+fs.Ext(), []byte(raw)); err != nil {
		return "", err
	}
	if err := s.store.Reload(); err != nil {
		return "", err
	}
	return logical, nil
}

// UpdateFromRaw overwrites an existing page's file verbatim and reloads
// the store. It refuses to create new files: creation goes through
// CreateFromRaw only.
func (s *Service) UpdateFromRaw(path, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs := s.store.FS()
	file := path + fs.Ext()
	if !fs.Exists(file) {
		return fmt.Errorf("page %q: %w", path, apperr.ErrNotFound)
	}
	if err := fs.Write(file, []byte(raw)); err != nil {
		return err
	}
	return s.store.Reload()
}

// Delete removes a page's file and reloads the store.
func (s *Service) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs := s.store.FS()
	file := path + fs.Ext()
	if !fs.Exists(file) {
		return fmt.Errorf("page %q: %w", path, apperr.ErrNotFound)
	}
	if err := fs.Delete(file); err != nil {
		return err
	}
	return s.store.Reload()
}

// targetDir maps front-matter type and category onto a content directory.
func targetDir(m content.Meta) string {
	switch m.PostType {
	case content.TypeNews:
		if strings.EqualFold(strings.TrimSpace(m.Category), "award") {
			return content.DirNewsAwards
		}
		return content.DirNewsOthers
	case content.TypeMonthProblem:
		return content.DirMonthsProblems
	default:
		return content.DirMisc
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases, folds accented letters to ASCII, and joins word
// runs with hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = foldASCII(s)
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// foldASCII maps common accented Latin letters to their ASCII base and
// drops anything else outside ASCII.
func foldASCII(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII:
			b.WriteRune(r)
		default:
			if base, ok := asciiFold[r]; ok {
				b.WriteRune(base)
			}
		}
	}
	return b.String()
}

var asciiFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n',
}
