package commands

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/dotcommander/timegate/internal/app"
	"github.com/dotcommander/timegate/internal/models"
	"github.com/dotcommander/timegate/internal/store"
)

// DB is an alias so command code doesn't need to import database/sql.
type DB = sql.DB

type printedError struct {
	err error
}

func (e printedError) Error() string {
	// Intentionally hide the original error: the JSON log line is the output.
	return "error already printed"
}

func (e printedError) Unwrap() error {
	return e.err
}

// openDB opens the resolved database and refuses schemas from newer binaries.
func openDB() (*DB, string, func(), error) {
	dbPath, err := app.GetDBPath()
	if err != nil {
		return nil, "", nil, err
	}

	db, err := store.InitDBWithPath(dbPath)
	if err != nil {
		return nil, "", nil, err
	}
	if err := store.CheckSchema(db, dbPath); err != nil {
		_ = db.Close()
		return nil, "", nil, err
	}

	return db, dbPath, func() { _ = db.Close() }, nil
}

func withDB(fn func(db *DB) error) error {
	db, _, closeDB, err := openDB()
	if err != nil {
		return cmdErr(err)
	}
	defer closeDB()

	if err := fn(db); err != nil {
		return cmdErr(err)
	}
	return nil
}

func cmdErr(err error) error {
	if err == nil {
		return nil
	}
	attrs := []any{"error", err.Error()}
	var re models.RecoverableError
	if errors.As(err, &re) {
		attrs = append(attrs,
			"error_code", re.ErrorCode(),
			"context", re.Context(),
			"suggested_action", re.SuggestedAction(),
		)
	}
	slog.Error("command error", attrs...)
	return printedError{err: err}
}
