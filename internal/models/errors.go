// Package models holds types shared by the store, plan and command layers.
package models

// RecoverableError is implemented by enriched errors that carry structured
// context and remediation hints. The command layer logs the context and the
// suggested action alongside the error message.
type RecoverableError interface {
	error
	ErrorCode() string
	Context() map[string]string
	SuggestedAction() string
}
