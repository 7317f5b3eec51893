package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	Uploads UploadsConfig     `yaml:"uploads"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Session SessionConfig     `yaml:"session"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Uploads.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Session.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig holds the flat-file post store settings.
type ContentConfig struct {
	Root       string `yaml:"root"`
	Extension  string `yaml:"extension"`
	AutoReload bool   `yaml:"auto_reload"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Extension, validation.Required),
	)
}

// UploadsConfig holds the upload root and its public URL prefix.
type UploadsConfig struct {
	Root      string `yaml:"root"`
	PublicURL string `yaml:"public_url"`
}

// Validate validates the uploads configuration.
func (c *UploadsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.PublicURL, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SessionConfig holds session cookie settings. SecureCookies should be
// true behind TLS.
type SessionConfig struct {
	SecureCookies bool `yaml:"secure_cookies"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Root:       "./posts",
			Extension:  ".md",
			AutoReload: true,
		},
		Uploads: UploadsConfig{
			Root:      "./static/uploads",
			PublicURL: "/static/uploads",
		},
		SQLite: SQLiteConfig{
			Path: "./nemoweb.db",
		},
	}
}
