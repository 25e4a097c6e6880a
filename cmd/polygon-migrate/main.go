package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"polygon-service/internal/config"
	"polygon-service/internal/db"
	"polygon-service/internal/logger"
)

func main() {
	envFile := flag.String("env-file", ".env.local", "dotenv file loaded before reading configuration")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Environment, cfg.LogLevel)

	migrator, err := db.NewMigrator(cfg.DB.DSN, log)
	if err != nil {
		log.Fatal().Err(err).Msg("migration init failed")
	}

	err = run(migrator, args, log)
	if closeErr := migrator.Close(); closeErr != nil {
		log.Warn().Err(closeErr).Msg("failed to close migrator")
	}
	if err != nil {
		log.Error().Err(err).Str("command", args[0]).Msg("migration command failed")
		os.Exit(1)
	}
}

func run(m *db.Migrator, args []string, log zerolog.Logger) error {
	switch args[0] {
	case "up":
		if err := m.Up(); err != nil {
			return err
		}
		log.Info().Msg("migrations: up completed")

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("down: invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := m.Down(steps); err != nil {
			return err
		}
		log.Info().Int("steps", steps).Msg("migrations: down completed")

	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version: %d  dirty: %v\n", v, dirty)

	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force: version argument required")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("force: invalid version %q", args[1])
		}
		if err := m.Force(v); err != nil {
			return err
		}
		log.Info().Int("version", v).Msg("migrations: forced")

	case "status":
		status, err := m.Status()
		if err != nil {
			return err
		}
		fmt.Printf("version: %d  dirty: %v\n", status.Version, status.Dirty)
		for _, mg := range status.Migrations {
			state := "pending"
			if mg.Applied {
				state = "applied"
			}
			fmt.Printf("  %06d_%s  %s\n", mg.Version, mg.Identifier, state)
		}

	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: polygon-migrate [-env-file FILE] <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Roll back N migrations (default: 1)
  version      Print current migration version
  force <V>    Force set migration version (bypass dirty state)
  status       List embedded migrations and whether they are applied

Environment:
  DB_DSN or POSTGRES_USER/POSTGRES_PASSWORD/POSTGRES_HOST/POSTGRES_PORT/POSTGRES_DB`)
}
