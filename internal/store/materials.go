package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nemo-olympiad/nemoweb/internal/apperr"
	"github.com/nemo-olympiad/nemoweb/internal/models"
)

// ListMaterials returns all materials ordered by position ascending.
func (db *DB) ListMaterials() ([]models.Material, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, description, pdf_path, position, date_created
		FROM materials ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list materials: %w", err)
	}
	defer rows.Close()

	var out []models.Material
	for rows.Next() {
		var m models.Material
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.PDFPath, &m.Position, &m.DateCreated); err != nil {
			return nil, fmt.Errorf("store: scan material: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMaterial returns the material with the given id.
func (db *DB) GetMaterial(id string) (*models.Material, error) {
	var m models.Material
	err := db.conn.QueryRow(`
		SELECT id, title, description, pdf_path, position, date_created
		FROM materials WHERE id = ?
	`, id).Scan(&m.ID, &m.Title, &m.Description, &m.PDFPath, &m.Position, &m.DateCreated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get material: %w", err)
	}
	return &m, nil
}

// CreateMaterial inserts a material at the end of the display order
// (current max position + 1).
func (db *DB) CreateMaterial(title, description, pdfPath string) (*models.Material, error) {
	m := models.Material{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		PDFPath:     pdfPath,
		DateCreated: time.Now().UTC(),
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var maxPos sql.NullInt64
	if err := tx.QueryRow(`SELECT MAX(position) FROM materials`).Scan(&maxPos); err != nil {
		return nil, fmt.Errorf("store: max position: %w", err)
	}
	m.Position = int(maxPos.Int64) + 1

	_, err = tx.Exec(`
		INSERT INTO materials (id, title, description, pdf_path, position, date_created)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.Title, m.Description, m.PDFPath, m.Position, m.DateCreated)
	if err != nil {
		return nil, fmt.Errorf("store: insert material: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return &m, nil
}

// UpdateMaterial rewrites title, description, and pdf path.
func (db *DB) UpdateMaterial(m *models.Material) error {
	res, err := db.conn.Exec(`
		UPDATE materials SET title = ?, description = ?, pdf_path = ? WHERE id = ?
	`, m.Title, m.Description, m.PDFPath, m.ID)
	if err != nil {
		return fmt.Errorf("store: update material: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("material %s: %w", m.ID, apperr.ErrNotFound)
	}
	return nil
}

// DeleteMaterial removes the material row.
func (db *DB) DeleteMaterial(id string) error {
	res, err := db.conn.Exec(`DELETE FROM materials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete material: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("material %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// SaveMaterialOrder reassigns positions so that each id's position equals
// its index in the given permutation. The update is one transaction:
// either every affected row changes or none does.
func (db *DB) SaveMaterialOrder(ids []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`UPDATE materials SET position = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("store: prepare order update: %w", err)
	}
	defer stmt.Close()

	for index, id := range ids {
		res, err := stmt.Exec(index, id)
		if err != nil {
			return fmt.Errorf("store: update position: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return fmt.Errorf("material %s: %w", id, apperr.ErrNotFound)
		}
	}
	return tx.Commit()
}
