package utils

import (
	"github.com/modsync-tools/modsync/internal/types"
)

// Exit codes
const (
	ExitSuccess = 0
	// Configuration errors (10-19)
	ExitConfigInvalid    = 10
	ExitConfigUnwritable = 11
	// Catalog errors (20-29)
	ExitRootNotFound = 20
	ExitPackNotFound = 21
	// Sync errors (30-39)
	ExitDiffFailed         = 30
	ExitTargetInaccessible = 31
	ExitPartialFailure     = 32
	// Validation errors (40-49)
	ExitInvalidArgument = 40
	ExitInvalidPath     = 41
	// Persistence errors (50-59)
	ExitHistoryUnavailable = 50
	// Unknown
	ExitUnknown = 99
)

// Error codes (tool-owned, stable)
const (
	ErrCodeConfigInvalid      = "CONFIG_INVALID"
	ErrCodeConfigUnwritable   = "CONFIG_UNWRITABLE"
	ErrCodeRootNotFound       = "ROOT_NOT_FOUND"
	ErrCodePackNotFound       = "PACK_NOT_FOUND"
	ErrCodeDiffFailed         = "DIFF_FAILED"
	ErrCodeTargetInaccessible = "TARGET_INACCESSIBLE"
	ErrCodePartialFailure     = "PARTIAL_FAILURE"
	ErrCodeInvalidArgument    = "INVALID_ARGUMENT"
	ErrCodeInvalidPath        = "INVALID_PATH"
	ErrCodeHistoryUnavailable = "HISTORY_UNAVAILABLE"
	ErrCodeCancelled          = "CANCELLED"
	ErrCodeUnknown            = "UNKNOWN"
)

// CLIErrorBuilder helps construct CLIError instances
type CLIErrorBuilder struct {
	err types.CLIError
}

// NewCLIError creates a new error builder
func NewCLIError(code, message string) *CLIErrorBuilder {
	return &CLIErrorBuilder{
		err: types.CLIError{
			Code:    code,
			Message: message,
		},
	}
}

func (b *CLIErrorBuilder) WithPath(path string) *CLIErrorBuilder {
	b.err.Path = path
	return b
}

func (b *CLIErrorBuilder) WithContext(key string, value interface{}) *CLIErrorBuilder {
	if b.err.Context == nil {
		b.err.Context = make(map[string]interface{})
	}
	b.err.Context[key] = value
	return b
}

func (b *CLIErrorBuilder) Build() types.CLIError {
	return b.err
}

// GetExitCode returns the exit code for an error code
func GetExitCode(errorCode string) int {
	mapping := map[string]int{
		ErrCodeConfigInvalid:      ExitConfigInvalid,
		ErrCodeConfigUnwritable:   ExitConfigUnwritable,
		ErrCodeRootNotFound:       ExitRootNotFound,
		ErrCodePackNotFound:       ExitPackNotFound,
		ErrCodeDiffFailed:         ExitDiffFailed,
		ErrCodeTargetInaccessible: ExitTargetInaccessible,
		ErrCodePartialFailure:     ExitPartialFailure,
		ErrCodeInvalidArgument:    ExitInvalidArgument,
		ErrCodeInvalidPath:        ExitInvalidPath,
		ErrCodeHistoryUnavailable: ExitHistoryUnavailable,
	}
	if code, ok := mapping[errorCode]; ok {
		return code
	}
	return ExitUnknown
}
