// Package errors provides standardized error handling for the
// eligibility engine and its storage collaborators.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeRuleMalformed     ErrorCode = "RULE_MALFORMED"
	ErrCodeRuleSetInvalid    ErrorCode = "RULESET_INVALID"
	ErrCodeRuleSetNotFound   ErrorCode = "RULESET_NOT_FOUND"
	ErrCodeProfileInvalid    ErrorCode = "PROFILE_INVALID"
	ErrCodeProfileIncomplete ErrorCode = "PROFILE_INCOMPLETE"

	ErrCodeReferenceDataMissing ErrorCode = "REFERENCE_DATA_MISSING"
	ErrCodeReferenceDataStale   ErrorCode = "REFERENCE_DATA_STALE"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeResultNotFound           ErrorCode = "RESULT_NOT_FOUND"
	ErrCodeResultStoreFailed        ErrorCode = "RESULT_STORE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewRuleMalformedError creates a non-retryable per-rule error. It
// never aborts sibling rule evaluation; callers record the diagnostic
// and continue.
func NewRuleMalformedError(ruleID, diagnostic string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRuleMalformed,
		Message:   "Rule expression could not be evaluated",
		Details:   diagnostic,
		Retryable: false,
		Metadata:  map[string]interface{}{"ruleId": ruleID},
		Timestamp: time.Now().UTC(),
	}
}

// NewRuleSetInvalidError creates a non-retryable rule-document error.
func NewRuleSetInvalidError(programID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRuleSetInvalid,
		Message:   "Rule set failed schema validation",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"programId": programID},
		Timestamp: time.Now().UTC(),
	}
}

// NewRuleSetNotFoundError creates a non-retryable lookup error.
func NewRuleSetNotFoundError(programID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRuleSetNotFound,
		Message:   "No active rule set for program",
		Details:   fmt.Sprintf("programId: %s", programID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReferenceDataMissingError names the geography whose data could
// not be loaded. Program evaluation degrades to an incomplete result
// rather than aborting the orchestration.
func NewReferenceDataMissingError(state, county string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReferenceDataMissing,
		Message:   fmt.Sprintf("Reference data not found for state %s", state),
		Details:   fmt.Sprintf("state: %s, county: %s", state, county),
		Retryable: false,
		Metadata:  map[string]interface{}{"state": state, "county": county},
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileInvalidError creates a non-retryable input error.
func NewProfileInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileInvalid,
		Message:   "Profile failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResultStoreFailedError creates a retryable persistence error for a
// completed evaluation run.
func NewResultStoreFailedError(runID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultStoreFailed,
		Message:   "Evaluation run could not be persisted",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"runId": runID},
		Timestamp: time.Now().UTC(),
	}
}

// NewResultNotFoundError creates a non-retryable lookup error.
func NewResultNotFoundError(profileID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultNotFound,
		Message:   "No stored results for profile",
		Details:   fmt.Sprintf("profileId: %s", profileID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
