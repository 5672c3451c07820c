// internal/common/errors/handler_test.go
package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type recordedEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

type recordingLogger struct {
	entries []recordedEntry
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, recordedEntry{"error", msg, fields})
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, recordedEntry{"warn", msg, fields})
}

// ==========================
// Normalize Tests
// ==========================

func TestNormalizePassesThroughStandardError(t *testing.T) {
	h := NewErrorHandler(&recordingLogger{})
	original := NewReferenceDataMissingError("ca", "fresno")

	normalized := h.Normalize(fmt.Errorf("lookup: %w", original))

	assert.Same(t, original, normalized)
}

func TestNormalizeWrapsPlainError(t *testing.T) {
	h := NewErrorHandler(&recordingLogger{})

	normalized := h.Normalize(errors.New("disk on fire"))

	assert.Equal(t, ErrCodeInternal, normalized.Code)
	assert.Equal(t, "disk on fire", normalized.Details)
	assert.False(t, normalized.Retryable)
}

// ==========================
// Degradation Tests
// ==========================

func TestDegradesToIncomplete(t *testing.T) {
	h := NewErrorHandler(&recordingLogger{})

	tests := []struct {
		name     string
		err      error
		degrades bool
	}{
		{"reference data missing", NewReferenceDataMissingError("ca", "fresno"), true},
		{"rule malformed", NewRuleMalformedError("snap-income", "unknown operator"), false},
		{"database connection", NewDatabaseConnectionFailedError(errors.New("refused")), false},
		{"plain error", errors.New("disk on fire"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.degrades, h.DegradesToIncomplete(tt.err))
		})
	}
}

// ==========================
// Logging Tests
// ==========================

func TestLogProgramErrorClassifiesSeverity(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	h.LogProgramError("section8", NewReferenceDataMissingError("ca", "fresno"))
	h.LogProgramError("snap", NewRuleMalformedError("snap-income", "unknown operator"))

	require.Len(t, log.entries, 2)

	degraded := log.entries[0]
	assert.Equal(t, "warn", degraded.level)
	assert.Equal(t, "section8", degraded.fields["programId"])
	assert.Equal(t, string(ErrCodeReferenceDataMissing), degraded.fields["errorCode"])

	failed := log.entries[1]
	assert.Equal(t, "error", failed.level)
	assert.Equal(t, "snap", failed.fields["programId"])
	assert.Equal(t, string(ErrCodeRuleMalformed), failed.fields["errorCode"])
}
