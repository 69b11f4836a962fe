package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for craterreport.
const (
	ExitSuccess      = 0 // Report or ingestion finished
	ExitFailure      = 1 // Runtime failure: download, registry, file write
	ExitCommandError = 2 // Bad input: malformed archive or config, unknown policy, bad settings
)

// ExitError carries the process exit code for a failed command. The
// command has already reported it through its OutputFormatter; main only
// exits with Code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code for err: the Code of an *ExitError in
// its chain, ExitFailure otherwise.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Result is a command's success payload. In JSON mode it is encoded into
// the envelope's data field; in text mode it writes itself.
type Result interface {
	WriteText(w io.Writer) error
}

// Envelope is the JSON document every command prints in JSON mode.
type Envelope struct {
	Status  string     `json:"status"` // "ok" or "error"
	Data    Result     `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
	TraceID string     `json:"trace_id,omitempty"` // ingestion run id, once known
}

// ErrorBody describes a failure in an Envelope.
type ErrorBody struct {
	Code    string `json:"code"` // one of the ErrCode constants
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter prints command results. Text mode keeps stdout for the
// payload alone (the report is piped into issue comments) and sends
// errors and verbose lines to ErrWriter. JSON mode prints exactly one
// Envelope on Writer.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // defaults to Writer
	Verbose   bool

	// TraceID is attached to envelopes once a run id is known.
	TraceID string
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Success prints result.
func (f *OutputFormatter) Success(result Result) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Envelope{
			Status:  "ok",
			Data:    result,
			TraceID: f.TraceID,
		})
	}
	return result.WriteText(f.Writer)
}

// Error prints a failure. details are shown in text mode only when verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Envelope{
			Status:  "error",
			Error:   &ErrorBody{Code: code, Message: message, Details: details},
			TraceID: f.TraceID,
		})
	}

	w := f.errWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog prints a progress line on ErrWriter when verbose.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.errWriter(), format+"\n", args...)
}
