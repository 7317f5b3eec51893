// Package testutil provides shared test helpers for setting up content
// trees and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/nemo-olympiad/nemoweb/internal/content"
	"github.com/nemo-olympiad/nemoweb/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "nemoweb-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContent creates a temporary content directory with its FS.
func TestContent(t *testing.T) (string, *content.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := content.NewFS(dir, ".md")
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// TestStore creates a page store over a temporary content directory.
func TestStore(t *testing.T) (*content.Store, *content.FS) {
	t.Helper()
	_, fs := TestContent(t)
	s, err := content.NewStore(fs, DiscardLogger())
	if err != nil {
		t.Fatal(err)
	}
	return s, fs
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
