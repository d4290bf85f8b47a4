package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"circles/config"
)

// Dialect names the SQL engine behind a *sql.DB. Queries are written with
// PostgreSQL-style $N placeholders and rebound for SQLite.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

type Database struct {
	Conn    *sql.DB
	Dialect Dialect
}

// Connect opens the store selected by cfg.DBDriver.
func Connect(cfg *config.Config) (*Database, error) {
	switch Dialect(strings.ToLower(cfg.DBDriver)) {
	case SQLite:
		return OpenSQLite(cfg.SQLitePath)
	case Postgres, "":
		return OpenPostgres(PostgresDSN(cfg))
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func (d *Database) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.Conn.PingContext(ctx)
}

func (d *Database) Close() error {
	return d.Conn.Close()
}

// Rebind rewrites $N placeholders for the dialect. SQLite gets positional ?
// markers and the args are reordered (and repeated) to match.
func Rebind(dialect Dialect, query string, args []any) (string, []any) {
	if dialect != SQLite || !strings.Contains(query, "$") {
		return query, args
	}

	var b strings.Builder
	b.Grow(len(query))
	out := make([]any, 0, len(args))
	for i := 0; i < len(query); i++ {
		ch := query[i]
		if ch == '$' && i+1 < len(query) && isDigit(query[i+1]) {
			j := i + 1
			for j < len(query) && isDigit(query[j]) {
				j++
			}
			n, _ := strconv.Atoi(query[i+1 : j])
			if n >= 1 && n <= len(args) {
				out = append(out, args[n-1])
			}
			b.WriteByte('?')
			i = j - 1
			continue
		}
		b.WriteByte(ch)
	}
	return b.String(), out
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
