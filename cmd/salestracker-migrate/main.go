// Package main is the entry point for the Sales Tracker database
// migration tool. It applies the embedded schema migrations for both
// the PostgreSQL and SQLite backends.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/prn-tf/salestracker/internal/config"
	"github.com/prn-tf/salestracker/internal/repository/postgres"
	"github.com/prn-tf/salestracker/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// migrator is satisfied by both driver DB wrappers.
type migrator interface {
	MigrationVersion(ctx context.Context) (int, error)
	Migrate(ctx context.Context) error
	Close() error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Sales Tracker Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up", "status":
		if err := runMigrateCommand(command, os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runMigrateCommand(command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	fs.Parse(args)

	ctx := context.Background()

	cfg, err := config.LoadDatabase(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := openMigrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	switch command {
	case "up":
		before, err := db.MigrationVersion(ctx)
		if err != nil {
			return err
		}
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		after, err := db.MigrationVersion(ctx)
		if err != nil {
			return err
		}
		if after == before {
			fmt.Printf("Schema is up to date at version %d\n", after)
		} else {
			fmt.Printf("Migrated schema from version %d to %d\n", before, after)
		}
		return nil

	case "status":
		version, err := db.MigrationVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Driver:  %s\n", cfg.Database.Driver)
		fmt.Printf("Version: %d\n", version)
		return nil
	}
	return nil
}

func openMigrator(ctx context.Context, cfg *config.Config) (migrator, error) {
	logger := zerolog.Nop()

	switch cfg.Database.Driver {
	case "postgres":
		return postgres.NewDB(ctx, cfg.Database, logger)
	case "sqlite":
		return sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func printUsage() {
	fmt.Println(`Sales Tracker Migration Tool

Usage:
  salestracker-migrate <command> [arguments]

Commands:
  up          Apply all pending migrations
  status      Show the current schema version
  version     Print version information
  help        Show this help message

Configuration:
  The database connection is read from the same configuration sources
  as the server: a config file (--config) and SALESTRACKER_* environment
  variables.

Examples:
  salestracker-migrate up --config ./configs/config.yaml
  salestracker-migrate status`)
}
