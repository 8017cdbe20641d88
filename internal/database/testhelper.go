package database

import (
	"context"
	"database/sql"
	"fmt"
)

// NewInMemory creates a migrated in-memory database for tests.
func NewInMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	db := &DB{DB: sqlDB, path: ":memory:"}

	m, err := NewMigrator(db)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	if _, err := m.MigrateUp(context.Background()); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}
