package commands

import "github.com/dotcommander/timegate/internal/models"

var _ models.RecoverableError = (*EphemeralStoreError)(nil)

// EphemeralStoreError is returned by commands that read persisted history
// while --ephemeral selects the in-memory store.
type EphemeralStoreError struct {
	Command string
}

func (e *EphemeralStoreError) Error() string {
	return e.Command + " requires the SQLite store"
}
func (e *EphemeralStoreError) ErrorCode() string { return "EPHEMERAL_STORE" }
func (e *EphemeralStoreError) Context() map[string]string {
	return map[string]string{"command": e.Command}
}
func (e *EphemeralStoreError) SuggestedAction() string {
	return "timegate " + e.Command + " (without --ephemeral)"
}
