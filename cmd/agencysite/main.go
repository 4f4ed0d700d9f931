// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the agency site content backend.
// "serve" (the default) opens and migrates the content database, runs the
// legacy bootstrap import and serves the JSON API with graceful shutdown.
// "migrate" and "import" stop after their respective step.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"agencysite/internal/config"
	"agencysite/internal/database"
	"agencysite/internal/legacy"
	"agencysite/internal/store"
)

// rootOptions holds flags shared by every command. Set flags override the
// environment.
type rootOptions struct {
	envFile  string
	dbPath   string
	distRoot string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "agencysite",
		Short:         "Content backend for the agency website",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional .env file to load")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "content database path (overrides CONTENT_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.distRoot, "dist-root", "", "build output root (overrides DIST_ROOT)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate, import legacy content and serve the API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or upgrade the content database schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cmd, opts)
				if err != nil {
					return err
				}
				db, err := openDatabase(cfg)
				if err != nil {
					return err
				}
				defer db.Close()
				return nil
			},
		},
		&cobra.Command{
			Use:   "import",
			Short: "Bootstrap empty tables from legacy Markdown and JSON files",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cmd, opts)
				if err != nil {
					return err
				}
				db, err := openDatabase(cfg)
				if err != nil {
					return err
				}
				defer db.Close()

				_, err = runImport(cmd.Context(), store.NewContentStore(db), cfg)
				return err
			},
		},
	)

	return cmd
}

// loadConfig reads the .env file and the environment, applies flag
// overrides and installs the default logger.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = opts.dbPath
	}
	if cmd.Flags().Changed("dist-root") {
		cfg.DistRoot = opts.distRoot
	}

	setupLogger(cfg)
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"db", cfg.DBPath,
		"dist_root", cfg.DistRoot,
		"repo_root", cfg.RepoRoot,
	)
	return cfg, nil
}

// setupLogger outputs JSON in production and text in development.
func setupLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

// openDatabase opens the content database and brings its schema up to date.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening content database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating content database: %w", err)
	}
	return db, nil
}

// runImport fills empty tables from the legacy files under the configured
// roots. Tables that already hold rows are left alone.
func runImport(ctx context.Context, contentStore *store.ContentStore, cfg *config.Config) (legacy.Result, error) {
	res, err := legacy.NewImporter(contentStore, cfg.Roots()).Run(ctx)
	if err != nil {
		return res, fmt.Errorf("legacy import: %w", err)
	}
	slog.Info("legacy import finished", "posts", res.Posts, "projects", res.Projects)
	return res, nil
}
