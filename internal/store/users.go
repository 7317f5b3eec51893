package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nemo-olympiad/nemoweb/internal/apperr"
	"github.com/nemo-olympiad/nemoweb/internal/models"
)

// CreateUser inserts a new user and returns it with a generated id.
func (db *DB) CreateUser(u models.User) (*models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := db.conn.Exec(`
		INSERT INTO users (id, email, name, password_hash, about_me, profile_image_path)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.Name, u.PasswordHash, u.AboutMe, u.ProfileImagePath)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", u.Email, apperr.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("store: create user: %w", err)
	}
	return &u, nil
}

// GetUserByEmail returns the user with the given email.
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	return db.scanUser(db.conn.QueryRow(`
		SELECT id, email, name, password_hash, about_me, profile_image_path
		FROM users WHERE email = ?
	`, email))
}

// GetUserByID returns the user with the given id.
func (db *DB) GetUserByID(id string) (*models.User, error) {
	return db.scanUser(db.conn.QueryRow(`
		SELECT id, email, name, password_hash, about_me, profile_image_path
		FROM users WHERE id = ?
	`, id))
}

// UpdateUser rewrites all mutable fields of an existing user.
func (db *DB) UpdateUser(u *models.User) error {
	res, err := db.conn.Exec(`
		UPDATE users
		SET email = ?, name = ?, password_hash = ?, about_me = ?, profile_image_path = ?
		WHERE id = ?
	`, u.Email, u.Name, u.PasswordHash, u.AboutMe, u.ProfileImagePath, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", u.Email, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("store: update user: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("user %s: %w", u.ID, apperr.ErrNotFound)
	}
	return nil
}

func (db *DB) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.AboutMe, &u.ProfileImagePath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan user: %w", err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
