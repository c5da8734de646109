package plan

import (
	"strconv"
	"strings"

	"github.com/dotcommander/timegate/internal/models"
)

var _ models.RecoverableError = (*ValidationError)(nil)

// ValidationError lists every problem found in a plan.
type ValidationError struct {
	Path     string
	Plan     string
	Problems []string
}

func (e *ValidationError) Error() string {
	prefix := "invalid plan"
	if e.Path != "" {
		prefix += " " + e.Path
	}
	return prefix + ": " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) ErrorCode() string { return "INVALID_PLAN" }

func (e *ValidationError) Context() map[string]string {
	return map[string]string{
		"path":     e.Path,
		"plan":     e.Plan,
		"problems": strconv.Itoa(len(e.Problems)),
	}
}

func (e *ValidationError) SuggestedAction() string {
	path := e.Path
	if path == "" {
		path = "<path>"
	}
	return "timegate plan validate --file " + path
}
