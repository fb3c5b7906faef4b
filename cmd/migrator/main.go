// Command migrator applies the goose SQL migrations in db/migrations.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

func main() {
	command := flag.String("command", "up", "up, down or status")
	dir := flag.String("dir", "db/migrations", "migration file directory")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load("configs/.env")
	}

	if err := run(logger, *command, *dir); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
}

func run(logger zerolog.Logger, command, dir string) error {
	dsn, err := dsnFromEnv()
	if err != nil {
		return err
	}

	migrationDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve migration dir: %w", err)
	}
	if _, err := os.Stat(migrationDir); err != nil {
		return fmt.Errorf("migration dir %s: %w", migrationDir, err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info().Str("dir", migrationDir).Str("command", command).Msg("running migrations")

	switch command {
	case "up":
		if err := goose.Up(db, migrationDir); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
	case "down":
		if err := goose.Down(db, migrationDir); err != nil {
			return err
		}
		logger.Info().Msg("last migration rolled back")
	case "status":
		if err := goose.Status(db, migrationDir); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command %q (use up, down or status)", command)
	}
	return nil
}

// dsnFromEnv builds the connection string from the same PG_* variables the
// API server reads.
func dsnFromEnv() (string, error) {
	required := map[string]string{}
	for _, key := range []string{"PG_USER", "PG_PASSWORD", "PG_DATABASE"} {
		val := os.Getenv(key)
		if val == "" {
			return "", fmt.Errorf("%s environment variable is required", key)
		}
		required[key] = val
	}

	host := envOr("PG_HOST", "localhost")
	port := envOr("PG_PORT", "5432")
	sslMode := envOr("PG_SSL_MODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, required["PG_USER"], required["PG_PASSWORD"], required["PG_DATABASE"], sslMode), nil
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
