// Package db provides SQLite connectivity helpers and migration support.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// poolMode selects write-safe vs read-optimized pool settings.
type poolMode int

const (
	modeWrite poolMode = iota
	modeRead
)

// openSQLite opens a *sql.DB for the tracker database at path.
//
// The write pool is pinned to a single connection with _txlock=immediate,
// which serializes writers and avoids SQLITE_BUSY under WAL. The read pool
// may hold several connections.
func openSQLite(path string, mode poolMode, maxOpen int) (*sql.DB, error) {
	pool, err := sql.Open("sqlite3", buildDSN(path, mode))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if mode == modeWrite {
		pool.SetMaxOpenConns(1)
		pool.SetMaxIdleConns(1)
	} else {
		if maxOpen <= 0 {
			maxOpen = 4
		}
		pool.SetMaxOpenConns(maxOpen)
		pool.SetMaxIdleConns(maxOpen)
	}
	pool.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return pool, nil
}

// OpenPair opens the write pool and the read pool for the same SQLite file.
// readMaxOpen of 0 means the default read pool size of 4.
func OpenPair(path string, readMaxOpen int) (writeDB, readDB *sql.DB, err error) {
	writeDB, err = openSQLite(path, modeWrite, 0)
	if err != nil {
		return nil, nil, err
	}

	readDB, err = openSQLite(path, modeRead, readMaxOpen)
	if err != nil {
		_ = writeDB.Close()
		return nil, nil, err
	}

	return writeDB, readDB, nil
}

func buildDSN(path string, mode poolMode) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", "5000")
	params.Set("_synchronous", "NORMAL")
	params.Set("_foreign_keys", "on")
	if mode == modeWrite {
		params.Set("_txlock", "immediate")
	}
	return path + "?" + params.Encode()
}
