// Command migrate manages the marketplace database schema with goose.
package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/partbridge/marketplace-api/internal/config"
	"github.com/pressly/goose/v3"
)

const usage = `usage: migrate <command> [args]

commands:
  up            apply all pending migrations
  down          roll back the latest migration
  status        print applied and pending migrations
  version       print the current schema version
  create NAME   scaffold a new SQL migration
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given\n%s", usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "./migrations"
	}

	switch command := args[0]; command {
	case "up":
		if err := goose.Up(db, dir); err != nil {
			return fmt.Errorf("up failed: %w", err)
		}
		fmt.Println("schema is up to date")

	case "down":
		if err := goose.Down(db, dir); err != nil {
			return fmt.Errorf("down failed: %w", err)
		}
		fmt.Println("rolled back one migration")

	case "status":
		if err := goose.Status(db, dir); err != nil {
			return fmt.Errorf("status failed: %w", err)
		}

	case "version":
		if err := goose.Version(db, dir); err != nil {
			return fmt.Errorf("version failed: %w", err)
		}

	case "create":
		if len(args) < 2 {
			return fmt.Errorf("create requires a migration name")
		}
		if err := goose.Create(db, dir, args[1], "sql"); err != nil {
			return fmt.Errorf("create failed: %w", err)
		}
		fmt.Printf("created migration %s\n", args[1])

	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}

	return nil
}
