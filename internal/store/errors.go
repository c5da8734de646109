package store

import (
	"database/sql"
	"strconv"

	"github.com/dotcommander/timegate/internal/models"
)

var _ models.RecoverableError = (*SchemaAheadError)(nil)

// SchemaAheadError means the database was migrated by a newer binary.
type SchemaAheadError struct {
	Path    string
	Current int64
	Latest  int64
}

func (e *SchemaAheadError) Error() string {
	return "database schema is newer than this binary supports"
}
func (e *SchemaAheadError) ErrorCode() string { return "SCHEMA_AHEAD" }
func (e *SchemaAheadError) Context() map[string]string {
	return map[string]string{
		"db_path": e.Path,
		"current": strconv.FormatInt(e.Current, 10),
		"latest":  strconv.FormatInt(e.Latest, 10),
	}
}
func (e *SchemaAheadError) SuggestedAction() string {
	return "upgrade timegate, or point --db-path at a different database"
}

// CheckSchema returns a *SchemaAheadError when the database is ahead of the
// embedded migrations.
func CheckSchema(db *sql.DB, path string) error {
	current, latest, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current > latest {
		return &SchemaAheadError{Path: path, Current: current, Latest: latest}
	}
	return nil
}
