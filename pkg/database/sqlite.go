package database

import (
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (or creates) a SQLite database file. The pool is pinned to
// one connection, so every query inside a transaction must go through the tx.
func OpenSQLite(path string) (*Database, error) {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	dsn := "file:" + path + "?" + q.Encode()

	db, err := openDB("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := ping(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Database{Conn: db, Dialect: SQLite}, nil
}
