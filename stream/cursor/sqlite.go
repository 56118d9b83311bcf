package cursor

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"quadrangle.org/core/log"
)

type SqliteStore struct {
	db        *sql.DB
	tableName string
	logger    *slog.Logger
}

type SqliteStoreOpt func(*SqliteStore)

func WithTableName(name string) SqliteStoreOpt {
	return func(s *SqliteStore) {
		s.tableName = name
	}
}

func NewSQLiteStore(dbPath string, opts ...SqliteStoreOpt) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	store := &SqliteStore{
		db:        db,
		tableName: "cursors",
		logger:    log.New("cursor"),
	}

	for _, o := range opts {
		o(store)
	}

	if err := store.init(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SqliteStore) init() error {
	createTable := fmt.Sprintf(`
	create table if not exists %s (
		key text primary key,
		cursor integer
	);`, s.tableName)
	_, err := s.db.Exec(createTable)
	return err
}

func (s *SqliteStore) Set(key string, cursor int64) {
	query := fmt.Sprintf(`
		insert into %s (key, cursor)
		values (?, ?)
		on conflict(key) do update set cursor=excluded.cursor;
	`, s.tableName)

	if _, err := s.db.Exec(query, key, cursor); err != nil {
		s.logger.Error("failed to persist cursor", "key", key, "err", err)
	}
}

func (s *SqliteStore) Get(key string) (cursor int64) {
	query := fmt.Sprintf(`
		select cursor from %s where key = ?;
	`, s.tableName)

	err := s.db.QueryRow(query, key).Scan(&cursor)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Error("failed to read cursor", "key", key, "err", err)
		}
		return 0
	}

	return cursor
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}
