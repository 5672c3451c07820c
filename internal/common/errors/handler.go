// internal/common/errors/handler.go
package errors

import (
	"errors"
	"time"
)

// ErrorHandler normalizes arbitrary evaluation errors into
// StandardError values and decides how a per-program failure degrades:
// missing data softens to an incomplete result, everything else is a
// hard per-program failure. Sibling programs are never affected.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Normalize ensures we always have a StandardError.
func (h *ErrorHandler) Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// DegradesToIncomplete reports whether the error should demote the
// program's result to incomplete/maybe instead of failing it outright.
func (h *ErrorHandler) DegradesToIncomplete(err error) bool {
	stdErr := h.Normalize(err)
	switch stdErr.Code {
	case ErrCodeReferenceDataMissing, ErrCodeReferenceDataStale, ErrCodeProfileIncomplete:
		return true
	}
	return false
}

// LogProgramError records a per-program failure with its classification.
func (h *ErrorHandler) LogProgramError(programID string, err error) {
	stdErr := h.Normalize(err)
	fields := map[string]interface{}{
		"programId": programID,
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	}
	if h.DegradesToIncomplete(err) {
		h.logger.Warn("program evaluation degraded to incomplete", fields)
		return
	}
	h.logger.Error("program evaluation failed", fields)
}
