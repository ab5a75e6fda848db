package config

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// NewSQLiteDB opens the sqlite file at path. sqlite allows a single writer, so the pool holds
// one connection.
func NewSQLiteDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
