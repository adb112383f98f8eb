package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"

	_ "modernc.org/sqlite"
)

// DB is the SQLite file holding the imported graph.
type DB struct {
	conn *sql.DB
}

// pragmas are set on every pooled connection through the DSN. The cache and
// temp store settings keep bulk imports off the disk as long as possible.
var pragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
	"temp_store(MEMORY)",
	"cache_size(-65536)", // KiB
}

// OpenDB opens the graph at path, creating the file and schema if needed.
func OpenDB(path string) (*DB, error) {
	params := url.Values{"_pragma": pragmas}
	conn, err := sql.Open("sqlite", path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	d := &DB{conn: conn}
	if err := d.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return d, nil
}

// Create removes any graph left at path, with its WAL files, and opens an
// empty one.
func Create(path string) (*DB, error) {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("removing old graph: %w", err)
		}
	}
	return OpenDB(path)
}

func (d *DB) Close() error {
	return d.conn.Close()
}
