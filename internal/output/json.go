// Package output writes the JSON envelope every command prints on stdout.
package output

import (
	"encoding/json"
	"errors"
	"io"
	"os"
)

// SchemaVersion is the envelope version.
const SchemaVersion = "v1"

// PrettyEnv switches stdout JSON to indented output when "1" or "true".
const PrettyEnv = "TIMEGATE_PRETTY_JSON"

// Response is the standard JSON envelope.
type Response struct {
	SchemaVersion   string            `json:"schema_version"`
	Success         bool              `json:"success"`
	Data            any               `json:"data,omitempty"`
	Error           string            `json:"error,omitempty"`
	ErrorCode       string            `json:"error_code,omitempty"`
	ErrorContext    map[string]string `json:"error_context,omitempty"`
	SuggestedAction string            `json:"suggested_action,omitempty"`
}

// recoverableError mirrors models.RecoverableError without importing it.
type recoverableError interface {
	error
	ErrorCode() string
	Context() map[string]string
	SuggestedAction() string
}

// Config controls where and how JSON is written.
type Config struct {
	Writer io.Writer
	Pretty bool
}

// DefaultConfig writes to stdout, compact unless PrettyEnv is set.
func DefaultConfig() Config {
	v := os.Getenv(PrettyEnv)
	return Config{Writer: os.Stdout, Pretty: v == "1" || v == "true"}
}

// Success wraps a successful response with data.
func Success(data any) Response {
	return Response{SchemaVersion: SchemaVersion, Success: true, Data: data}
}

// Error wraps err, adding code, context and a suggested action when err
// carries them.
func Error(err error) Response {
	resp := Response{SchemaVersion: SchemaVersion, Success: false, Error: err.Error()}
	var re recoverableError
	if errors.As(err, &re) {
		resp.ErrorCode = re.ErrorCode()
		resp.ErrorContext = re.Context()
		resp.SuggestedAction = re.SuggestedAction()
	}
	return resp
}

// PrintWith encodes v using cfg.
func PrintWith(cfg Config, v any) error {
	enc := json.NewEncoder(cfg.Writer)
	if cfg.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// Print encodes v to stdout.
func Print(v any) error {
	return PrintWith(DefaultConfig(), v)
}

// PrintSuccess prints a success envelope.
func PrintSuccess(data any) error {
	return Print(Success(data))
}

// PrintError prints an error envelope.
func PrintError(err error) error {
	return Print(Error(err))
}
