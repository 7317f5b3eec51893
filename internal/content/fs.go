package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FS provides traversal-safe access to the content tree on the local
// file system. All paths are relative to the root and use forward slashes.
type FS struct {
	root string // absolute path to the content directory
	ext  string // content file extension, e.g. ".md"
}

// NewFS creates a new FS rooted at the given directory.
// The directory must already exist.
func NewFS(root, ext string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("content: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("content: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content: root is not a directory: %s", abs)
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &FS{root: abs, ext: ext}, nil
}

// Root returns the absolute content root.
func (f *FS) Root() string { return f.root }

// Ext returns the content file extension, including the leading dot.
func (f *FS) Ext() string { return f.ext }

// safePath resolves a relative path against the content root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("content: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("content: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("content: path escapes content root: %s", rel)
	}
	return abs, nil
}

// List walks the tree and returns the slash-separated relative path of
// every content file under root.
func (f *FS) List() ([]string, error) {
	var out []string
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), f.ext) {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("content: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a content file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", path, err)
	}
	return data, nil
}

// Exists reports whether a regular file exists at path.
func (f *FS) Exists(path string) bool {
	abs, err := f.safePath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("content: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".nemoweb-tmp-*")
	if err != nil {
		return fmt.Errorf("content: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("content: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("content: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("content: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("content: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a file from the content tree.
func (f *FS) Delete(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("content: delete %s: %w", path, err)
	}
	return nil
}
