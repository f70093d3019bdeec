// Package db opens the SQLite metastore that backs the table catalog and
// applies its migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"
)

// SQLite DSN parameters.
const (
	defaultBusyTimeout = "5000" // 5 seconds
	defaultSynchronous = "NORMAL"
	defaultJournalMode = "WAL"
	defaultReadConns   = 4
)

// OpenMetastore opens the SQLite metastore at path.
//
// A writable store uses a single connection with immediate transactions so
// registrations never race. A read-only store sets query_only on a small pool
// of connections for concurrent lookups.
func OpenMetastore(ctx context.Context, path string, readOnly bool) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", buildDSN(path, readOnly))
	if err != nil {
		return nil, fmt.Errorf("open metastore %s: %w", path, err)
	}

	if readOnly {
		db.SetMaxOpenConns(defaultReadConns)
		db.SetMaxIdleConns(defaultReadConns)
	} else {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping metastore %s: %w", path, err)
	}
	return db, nil
}

func buildDSN(path string, readOnly bool) string {
	params := url.Values{}
	params.Set("_journal_mode", defaultJournalMode)
	params.Set("_busy_timeout", defaultBusyTimeout)
	params.Set("_synchronous", defaultSynchronous)
	params.Set("_foreign_keys", "on")
	if readOnly {
		params.Set("_query_only", "true")
	} else {
		params.Set("_txlock", "immediate")
	}
	return "file:" + path + "?" + params.Encode()
}
