// Command createuser bootstraps an administrator account in the nemoweb
// database. Login accounts are created only through this tool; there is
// no public registration.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/nemo-olympiad/nemoweb/internal"
	"github.com/nemo-olympiad/nemoweb/internal/apperr"
	"github.com/nemo-olympiad/nemoweb/internal/auth"
	"github.com/nemo-olympiad/nemoweb/internal/models"
	"github.com/nemo-olympiad/nemoweb/internal/store"
	pkgconfig "github.com/nemo-olympiad/nemoweb/pkg/config"
)

func run(_ context.Context, cmd *cli.Command) error {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	email := cmd.String("email")
	password := cmd.String("password")
	name := cmd.String("name")
	if email == "" || password == "" {
		return fmt.Errorf("email and password cannot be empty")
	}
	if name == "" {
		name = "user"
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	hash, err := auth.NewHasher().Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, err := db.CreateUser(models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return fmt.Errorf("the email %q is already in use", email)
		}
		return err
	}

	fmt.Printf("User %q with email %q was added successfully (id %s).\n", user.Name, user.Email, user.ID)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "createuser",
		Usage:  "Create a new nemoweb administrator account",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{Name: "email", Usage: "Account email (login name)", Required: true},
			&cli.StringFlag{Name: "password", Usage: "Account password", Required: true, Sources: cli.EnvVars("NEMOWEB_PASSWORD")},
			&cli.StringFlag{Name: "name", Usage: "Display name"},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("createuser error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
