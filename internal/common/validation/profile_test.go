// internal/common/validation/profile_test.go
package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeProfile(t *testing.T, doc string) map[string]interface{} {
	t.Helper()
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(doc), &raw))
	return raw
}

func TestValidateProfile_AcceptsCompleteProfile(t *testing.T) {
	raw := decodeProfile(t, `{
		"id": "applicant-1",
		"householdSize": 3,
		"income": 2400,
		"incomePeriod": "monthly",
		"age": 29,
		"citizenship": "citizen",
		"employment": "employed_part_time",
		"hasChildren": true,
		"state": "ca",
		"county": "fresno"
	}`)

	result := ValidateProfile(raw)
	assert.True(t, result.Valid, "errors: %v", result.GetErrorMessages())
}

func TestValidateProfile_AcceptsMinimalProfile(t *testing.T) {
	raw := decodeProfile(t, `{"householdSize": 1, "income": 0}`)

	result := ValidateProfile(raw)
	assert.True(t, result.Valid)
}

func TestValidateProfile_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		document string
		field    string
	}{
		{
			name:     "missing household size",
			document: `{"income": 1200}`,
			field:    "householdSize",
		},
		{
			name:     "missing income",
			document: `{"householdSize": 2}`,
			field:    "income",
		},
		{
			name:     "household size out of range",
			document: `{"householdSize": 40, "income": 1200}`,
			field:    "householdSize",
		},
		{
			name:     "negative income",
			document: `{"householdSize": 2, "income": -5}`,
			field:    "income",
		},
		{
			name:     "unknown citizenship value",
			document: `{"householdSize": 2, "income": 1200, "citizenship": "martian"}`,
			field:    "citizenship",
		},
		{
			name:     "bad state code",
			document: `{"householdSize": 2, "income": 1200, "state": "California"}`,
			field:    "state",
		},
		{
			name:     "wrong income type",
			document: `{"householdSize": 2, "income": "lots"}`,
			field:    "income",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateProfile(decodeProfile(t, tt.document))

			assert.False(t, result.Valid)
			assert.True(t, result.HasErrors(tt.field),
				"expected an error on %s, got %v", tt.field, result.GetErrorMessages())
		})
	}
}

func TestValidateProfile_UnknownFieldsTolerated(t *testing.T) {
	raw := decodeProfile(t, `{"householdSize": 2, "income": 1200, "notes": "from intake form"}`)

	result := ValidateProfile(raw)
	assert.True(t, result.Valid)
}
