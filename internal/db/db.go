// Package db opens the bot's SQL database and applies migrations.
// PostgreSQL is used in production; SQLite serves small deployments and tests.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"Zodbot/internal/db/migrations"
)

// Dialect names a supported SQL backend
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps a configured driver name onto a Dialect
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Open connects to the database and checks it is reachable
func Open(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	if dialect == SQLite {
		// every connection to :memory: is a separate database
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}
	return conn, nil
}

// Migrate applies all pending migrations
func Migrate(conn *sql.DB, dialect Dialect) error {
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	gooseDialect := "postgres"
	if dialect == SQLite {
		gooseDialect = "sqlite3"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(conn, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Rebind rewrites $n placeholders for dialects that only understand "?".
// Each placeholder must appear once and in order.
func Rebind(dialect Dialect, query string) string {
	if dialect != SQLite {
		return query
	}

	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' {
			j := i + 1
			for j < len(query) && query[j] >= '0' && query[j] <= '9' {
				j++
			}
			if j > i+1 {
				if _, err := strconv.Atoi(query[i+1 : j]); err == nil {
					b.WriteByte('?')
					i = j - 1
					continue
				}
			}
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// IsUniqueViolation reports whether err is a unique constraint failure
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
