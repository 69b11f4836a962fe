package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/craterreport/internal/aggregate"
	"github.com/roach88/craterreport/internal/archive"
	"github.com/roach88/craterreport/internal/crater"
	"github.com/roach88/craterreport/internal/runconfig"
	"github.com/roach88/craterreport/internal/store"
)

// Error codes for structured error output.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeSettings      = "E002" // Invalid settings file, env or flag
	ErrCodeFetch         = "E003" // Artifact download failed
	ErrCodeRunConfig     = "E004" // config.json failed validation
	ErrCodeArchivePath   = "E005" // Archive entry path not a crate log
	ErrCodeToolchain     = "E006" // Archive names a toolchain outside the run
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeDuplicateLog  = "E008" // Same crate and toolchain logged twice
	ErrCodeIncomplete    = "E009" // Regression missing a log
	ErrCodeStore         = "E010" // Database open/run metadata error
	ErrCodeInvalidPolicy = "E011" // Unknown detail policy
)

// classifyError maps an error to its structured code and exit code.
// Malformed input exits with ExitCommandError; everything else with
// ExitFailure.
func classifyError(err error) (string, int) {
	var (
		cfgErr       *runconfig.ConfigError
		toolchainErr *runconfig.UnknownToolchainError
		pathErr      *archive.PathError
		incompErr    *aggregate.IncompleteError
		statusErr    *crater.StatusError
	)
	switch {
	case errors.As(err, &cfgErr):
		return ErrCodeRunConfig, ExitCommandError
	case errors.As(err, &toolchainErr):
		return ErrCodeToolchain, ExitCommandError
	case errors.As(err, &pathErr):
		return ErrCodeArchivePath, ExitCommandError
	case errors.Is(err, store.ErrDuplicateLog):
		return ErrCodeDuplicateLog, ExitCommandError
	case errors.As(err, &incompErr):
		return ErrCodeIncomplete, ExitCommandError
	case errors.Is(err, store.ErrRunExists), errors.Is(err, store.ErrNoRun):
		return ErrCodeStore, ExitCommandError
	case errors.As(err, &statusErr):
		return ErrCodeFetch, ExitFailure
	default:
		return ErrCodeGeneric, ExitFailure
	}
}

// fail reports err through formatter and returns the matching ExitError.
func fail(formatter *OutputFormatter, message string, err error) error {
	code, exit := classifyError(err)
	return failWithCode(formatter, code, exit, message, err)
}

// failWithCode is fail with an explicit classification.
func failWithCode(formatter *OutputFormatter, code string, exit int, message string, err error) error {
	_ = formatter.Error(code, fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(exit, message, err)
}
