package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/nemo-olympiad/nemoweb/internal/apperr"
	"github.com/nemo-olympiad/nemoweb/internal/models"
)

// CreateSession generates a secure random token and stores the
// token → user mapping. The token is what the session cookie carries.
func (db *DB) CreateSession(userID string) (string, error) {
	// 32 random bytes = 64 hex characters.
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("store: session token: %w", err)
	}
	token := hex.EncodeToString(b)

	if _, err := db.conn.Exec(`INSERT INTO sessions (token, user_id) VALUES (?, ?)`, token, userID); err != nil {
		return "", fmt.Errorf("store: create session: %w", err)
	}
	return token, nil
}

// GetSessionUser resolves the user behind a session token.
func (db *DB) GetSessionUser(token string) (*models.User, error) {
	row := db.conn.QueryRow(`
		SELECT u.id, u.email, u.name, u.password_hash, u.about_me, u.profile_image_path
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = ?
	`, token)
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.AboutMe, &u.ProfileImagePath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: session lookup: %w", err)
	}
	return &u, nil
}

// DeleteSession invalidates a session token.
func (db *DB) DeleteSession(token string) error {
	if _, err := db.conn.Exec(`DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("store: delete session: %w", err)
	}
	return nil
}
