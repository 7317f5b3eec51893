// Package assets manages the upload directory tree: post assets and
// material PDFs. Every operation that takes a path-like value from a
// request goes through the same safe-join primitive; a path that resolves
// outside the upload root is rejected before any filesystem access.
package assets

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/nemo-olympiad/nemoweb/internal/apperr"
)

// PDFDir is the subfolder used by the materials workflow.
const PDFDir = "pdfs"

// allowedExtensions is the upload allow-list, checked independently of
// the path validation.
var allowedExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "webp": true, "gif": true,
	"webm": true, "mp4": true, "mp3": true, "wav": true, "ogg": true,
	"svg": true, "pdf": true, "mov": true,
}

// imageExtensions selects Markdown image syntax over a plain link.
var imageExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true, "svg": true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// File describes one stored asset as returned by List.
type File struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	// Path is relative to the upload root; it is the handle a later
	// delete call must present.
	Path string `json:"path"`
}

// Manager resolves request-supplied paths under a fixed upload root and
// derives public URLs from the safe result.
type Manager struct {
	root      string // absolute upload root
	publicURL string // URL prefix for serving uploads, e.g. "/static/uploads"
}

// NewManager creates a Manager rooted at dir, creating it if needed.
func NewManager(dir, publicURL string) (*Manager, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("assets: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("assets: create root: %w", err)
	}
	return &Manager{root: abs, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Root returns the absolute upload root.
func (m *Manager) Root() string { return m.root }

// SanitizeName strips characters unsafe for a filesystem name from a
// single path segment.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	return unsafeChars.ReplaceAllString(name, "")
}

// SafeSubpath splits a user-supplied relative path on separators, discards
// empty, "." and ".." segments, sanitizes each remaining segment, and
// returns the rejoined slash path. The result is relative to the root.
func SafeSubpath(p string) string {
	var parts []string
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		if clean := SanitizeName(seg); clean != "" {
			parts = append(parts, clean)
		}
	}
	return path.Join(parts...)
}

// resolve joins rel under the root and verifies the absolute result is
// still prefixed by the root. Every request-facing operation funnels
// through here; a violation is a permission error, not a fallback.
func (m *Manager) resolve(rel string) (string, error) {
	joined := filepath.Join(m.root, filepath.FromSlash(rel))
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("assets: resolve path: %w", err)
	}
	if abs != m.root && !strings.HasPrefix(abs, m.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("assets: path %q escapes upload root: %w", rel, apperr.ErrForbidden)
	}
	return abs, nil
}

// URL returns the public URL for a root-relative path.
func (m *Manager) URL(rel string) string {
	return m.publicURL + "/" + path.Clean(filepath.ToSlash(rel))
}

// AllowedFile reports whether the filename's extension is on the upload
// allow-list.
func AllowedFile(name string) bool {
	return allowedExtensions[extOf(name)]
}

func extOf(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return ext
}

// MarkdownLink builds the Markdown snippet for an uploaded file: image
// syntax for image extensions, a plain link otherwise.
func MarkdownLink(name, url string) string {
	if imageExtensions[extOf(name)] {
		return fmt.Sprintf("![%s](%s)", name, url)
	}
	return fmt.Sprintf("[%s](%s)", name, url)
}

// Save stores src under the sanitized subfolder with a sanitized filename.
// It returns the stored File. The extension allow-list is enforced here,
// independent of the path check.
func (m *Manager) Save(subfolder, filename string, src io.Reader) (*File, error) {
	name := SanitizeName(filename)
	if name == "" {
		return nil, fmt.Errorf("assets: empty filename: %w", apperr.ErrValidation)
	}
	if !AllowedFile(name) {
		return nil, fmt.Errorf("assets: file type not allowed: %s: %w", name, apperr.ErrValidation)
	}

	sub := SafeSubpath(subfolder)
	dir, err := m.resolve(sub)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("assets: mkdir: %w", err)
	}

	abs := filepath.Join(dir, name)
	dst, err := os.Create(abs)
	if err != nil {
		return nil, fmt.Errorf("assets: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(abs)
		return nil, fmt.Errorf("assets: write file: %w", err)
	}

	rel := path.Join(sub, name)
	return &File{Name: name, URL: m.URL(rel), Path: rel}, nil
}

// List enumerates the regular files directly under the sanitized
// subfolder, sorted by name. Directories are not listed.
func (m *Manager) List(subfolder string) ([]File, error) {
	sub := SafeSubpath(subfolder)
	dir, err := m.resolve(sub)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("assets: folder %q: %w", sub, apperr.ErrNotFound)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("assets: read dir: %w", err)
	}

	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		rel := path.Join(sub, e.Name())
		files = append(files, File{Name: e.Name(), URL: m.URL(rel), Path: rel})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Delete removes the single regular file at the given root-relative path,
// re-validating it against the root first. It never removes directories.
func (m *Manager) Delete(rel string) error {
	abs, err := m.resolve(rel)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("assets: file %q: %w", rel, apperr.ErrNotFound)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("assets: %q is not a regular file: %w", rel, apperr.ErrValidation)
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("assets: delete %s: %w", rel, err)
	}
	return nil
}
