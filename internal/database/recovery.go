package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// RecoveryResult is the outcome of OpenWithRecovery.
type RecoveryResult int

const (
	// RecoveryNotNeeded means the database opened and passed its checks.
	RecoveryNotNeeded RecoveryResult = iota
	// RecoveryWALReplayed means a checkpoint repaired the database.
	RecoveryWALReplayed
	// RecoveryReset means the damaged file was moved aside and a fresh
	// database created. Stored preferences are lost.
	RecoveryReset
)

func (r RecoveryResult) String() string {
	switch r {
	case RecoveryNotNeeded:
		return "not_needed"
	case RecoveryWALReplayed:
		return "wal_replayed"
	case RecoveryReset:
		return "reset"
	default:
		return "unknown"
	}
}

// OpenWithRecovery opens dbPath, checks its integrity and applies migrations.
// A database that fails the check is first checkpointed; if it is still
// damaged the files are renamed with a ".corrupt-<timestamp>" suffix and a
// new database is created in their place.
func OpenWithRecovery(ctx context.Context, dbPath string) (*DB, RecoveryResult, error) {
	db, err := Open(dbPath)
	if err == nil {
		err = db.CheckIntegrity(ctx)
		if err == nil {
			return migrated(ctx, db, RecoveryNotNeeded)
		}
		slog.Warn("database integrity check failed", "path", dbPath, "error", err)

		if _, cpErr := db.ExecContext(ctx, "PRAGMA wal_checkpoint(RESTART)"); cpErr == nil {
			if db.CheckIntegrity(ctx) == nil {
				slog.Info("database recovered via WAL checkpoint", "path", dbPath)
				return migrated(ctx, db, RecoveryWALReplayed)
			}
		}
		db.Close()
	}

	moved, mvErr := quarantine(dbPath)
	if mvErr != nil {
		return nil, RecoveryReset, errors.Join(err, mvErr)
	}
	slog.Warn("preferences database reset", "path", dbPath, "moved_to", moved, "cause", err)

	db, err = Open(dbPath)
	if err != nil {
		return nil, RecoveryReset, err
	}
	return migrated(ctx, db, RecoveryReset)
}

func migrated(ctx context.Context, db *DB, result RecoveryResult) (*DB, RecoveryResult, error) {
	m, err := NewMigrator(db)
	if err != nil {
		db.Close()
		return nil, result, err
	}
	if _, err := m.MigrateUp(ctx); err != nil {
		db.Close()
		return nil, result, err
	}
	return db, result, nil
}

// quarantine renames the database and its WAL side files.
func quarantine(dbPath string) (string, error) {
	suffix := ".corrupt-" + time.Now().Format("20060102-150405")
	target := dbPath + suffix

	for _, ext := range []string{"", "-wal", "-shm"} {
		src := dbPath + ext
		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.Rename(src, target+ext); err != nil {
			return "", fmt.Errorf("moving %s aside: %w", src, err)
		}
	}
	return target, nil
}
