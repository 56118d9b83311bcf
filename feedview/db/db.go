package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

// Execer is satisfied by both *DB and *sql.Tx, so the query helpers
// below run standalone or inside a caller-owned transaction.
type Execer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Prepare(query string) (*sql.Stmt, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Make opens the snapshot store. The schema is tiny on purpose: the
// backend owns the data, this db only remembers the last delivered
// snapshot so a restarted feedview serves something before the live
// stream catches up.
func Make(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=1")
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		pragma journal_mode = WAL;
		pragma synchronous = normal;
		pragma temp_store = memory;
		pragma busy_timeout = 5000;

		create table if not exists records (
			kind text not null,
			id text not null,
			payload text not null,
			instant integer not null default 0,
			fetched_at text not null default (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			primary key (kind, id)
		);
		create table if not exists profiles (
			id text primary key,
			display_name text not null,
			avatar_url text not null default '',
			unknown integer not null default 0,
			resolved_at text not null default (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		);
		create index if not exists idx_records_instant on records(kind, instant);
	`)
	if err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{db}, nil
}
