// Package repo holds the SQL repositories behind the bot's persistent state
package repo

import (
	"context"
	"database/sql"
	"fmt"

	"Zodbot/internal/core/oncall"
	"Zodbot/internal/db"
)

type sqlOncallRepo struct {
	conn    *sql.DB
	dialect db.Dialect
}

// NewOncallRepository creates an oncall repository
func NewOncallRepository(conn *sql.DB, dialect db.Dialect) oncall.Repository {
	return &sqlOncallRepo{conn: conn, dialect: dialect}
}

func (r *sqlOncallRepo) List(ctx context.Context) ([]oncall.Entry, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT username, mxid, timezone FROM oncall ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to query oncall: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []oncall.Entry
	for rows.Next() {
		var e oncall.Entry
		if err := rows.Scan(&e.Username, &e.MXID, &e.Timezone); err != nil {
			return nil, fmt.Errorf("failed to scan oncall entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate oncall: %w", err)
	}
	return entries, nil
}

func (r *sqlOncallRepo) Create(ctx context.Context, entry oncall.Entry) error {
	query := db.Rebind(r.dialect, `INSERT INTO oncall (username, mxid, timezone) VALUES ($1, $2, $3)`)

	if _, err := r.conn.ExecContext(ctx, query, entry.Username, entry.MXID, entry.Timezone); err != nil {
		if db.IsUniqueViolation(err) {
			return oncall.ErrAlreadyOnCall
		}
		return fmt.Errorf("failed to add oncall entry: %w", err)
	}
	return nil
}

func (r *sqlOncallRepo) Delete(ctx context.Context, username string) error {
	query := db.Rebind(r.dialect, `DELETE FROM oncall WHERE username = $1`)

	result, err := r.conn.ExecContext(ctx, query, username)
	if err != nil {
		return fmt.Errorf("failed to remove oncall entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check removed rows: %w", err)
	}
	if affected == 0 {
		return oncall.ErrNotOnCall
	}
	return nil
}
