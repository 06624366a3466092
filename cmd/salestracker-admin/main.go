// Package main is the entry point for the Sales Tracker admin CLI.
// It provides administrative commands for managing user accounts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/prn-tf/salestracker/internal/config"
	"github.com/prn-tf/salestracker/internal/repository"
	"github.com/prn-tf/salestracker/internal/repository/postgres"
	"github.com/prn-tf/salestracker/internal/repository/sqlite"
	"github.com/prn-tf/salestracker/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Sales Tracker Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		if err := runUserCommand(os.Args[2:]); err != nil {
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

func runUserCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("user command requires a subcommand (create, list, activate, deactivate)")
	}

	ctx := context.Background()

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		configPath := fs.String("config", "", "path to configuration file")
		email := fs.String("email", "", "email address (required)")
		username := fs.String("username", "", "username (required)")
		password := fs.String("password", "", "password (required)")
		company := fs.String("company", "", "company name")
		planType := fs.String("plan", "free", "plan type")
		fs.Parse(args[1:])

		if *email == "" || *username == "" || *password == "" {
			return fmt.Errorf("--email, --username, and --password are required")
		}

		users, closer, err := openUserService(ctx, *configPath)
		if err != nil {
			return err
		}
		defer closer()

		user, err := users.Register(ctx, service.RegisterInput{
			Email:    *email,
			Username: *username,
			Password: *password,
			Company:  *company,
			PlanType: *planType,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created user %d (%s)\n", user.ID, user.Email)
		return nil

	case "list":
		fs := flag.NewFlagSet("user list", flag.ExitOnError)
		configPath := fs.String("config", "", "path to configuration file")
		limit := fs.Int("limit", 20, "maximum number of users to show")
		offset := fs.Int("offset", 0, "number of users to skip")
		fs.Parse(args[1:])

		users, closer, err := openUserService(ctx, *configPath)
		if err != nil {
			return err
		}
		defer closer()

		out, err := users.List(ctx, service.ListUsersInput{Limit: *limit, Offset: *offset})
		if err != nil {
			return err
		}
		fmt.Printf("%-6s %-30s %-20s %-8s %-8s\n", "ID", "EMAIL", "USERNAME", "PLAN", "ACTIVE")
		for _, u := range out.Users {
			fmt.Printf("%-6d %-30s %-20s %-8s %-8t\n", u.ID, u.Email, u.Username, u.PlanType, u.IsActive)
		}
		fmt.Printf("\n%d of %d users\n", len(out.Users), out.TotalCount)
		return nil

	case "activate", "deactivate":
		fs := flag.NewFlagSet("user "+args[0], flag.ExitOnError)
		configPath := fs.String("config", "", "path to configuration file")
		userID := fs.Int64("id", 0, "user ID (required)")
		fs.Parse(args[1:])

		if *userID <= 0 {
			return fmt.Errorf("--id is required")
		}

		users, closer, err := openUserService(ctx, *configPath)
		if err != nil {
			return err
		}
		defer closer()

		active := args[0] == "activate"
		if err := users.SetActive(ctx, *userID, active); err != nil {
			return err
		}
		fmt.Printf("User %d is now active=%t\n", *userID, active)
		return nil

	default:
		return fmt.Errorf("unknown user subcommand: %s", args[0])
	}
}

// openUserService loads configuration, connects to the database, and
// builds a UserService. The returned closer releases the connection.
func openUserService(ctx context.Context, configPath string) (*service.UserService, func(), error) {
	cfg, err := config.LoadDatabase(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// The CLI writes human-readable output; keep structured logs quiet.
	logger := zerolog.Nop()

	var (
		userRepo repository.UserRepository
		db       repository.DatabaseHealth
	)
	switch cfg.Database.Driver {
	case "postgres":
		pg, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		userRepo = postgres.NewUserRepository(pg)
		db = pg
	case "sqlite":
		sq, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return nil, nil, err
		}
		if err := sq.Migrate(ctx); err != nil {
			sq.Close()
			return nil, nil, err
		}
		userRepo = sqlite.NewUserRepository(sq)
		db = sq
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	users := service.NewUserService(userRepo, service.PasswordPolicy{
		MinLength: cfg.Auth.MinPasswordLength,
	}, cfg.Auth.BcryptCost, logger)

	return users, func() { db.Close() }, nil
}

func printUsage() {
	fmt.Println(`Sales Tracker Admin CLI

Usage:
  salestracker-admin <command> [arguments]

Commands:
  user        Manage users (create, list, activate, deactivate)
  version     Print version information
  help        Show this help message

Examples:
  salestracker-admin user create --email admin@example.com --username admin --password <password>
  salestracker-admin user list --limit 50
  salestracker-admin user deactivate --id 42

Use "salestracker-admin user <subcommand> --help" for flag details.`)
}
