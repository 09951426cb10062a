// Package db wraps the sqlite database holding per-run stamp diagnostics.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the shared database handle.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the sqlite database at path and applies
// the connection pragmas. Schema setup is handled by MigrateUp.
func NewDB(path string) (*DB, error) {
	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// WAL keeps the report tool readable while a run is recording.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := sdb.Exec(p); err != nil {
			sdb.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	return &DB{sdb}, nil
}
