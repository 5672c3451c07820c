// internal/engine/categorize/categorizer_test.go
package categorize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jborgese/benefit-finder-sub003/internal/engine/catalog"
	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

// ==========================
// TEST HELPERS
// ==========================

func newTestCategorizer() *Categorizer {
	return NewCategorizer(DefaultConfidenceThreshold, catalog.New(), nil)
}

func rawResult(programID string, eligible bool, confidence int, incomplete bool) *models.RawProgramResult {
	return &models.RawProgramResult{
		ProfileID:   "profile-1",
		ProgramID:   programID,
		Eligible:    eligible,
		Confidence:  confidence,
		Incomplete:  incomplete,
		EvaluatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// ==========================
// STATUS DERIVATION TESTS
// ==========================

func TestStatusDerivation(t *testing.T) {
	c := newTestCategorizer()

	tests := []struct {
		name       string
		eligible   bool
		confidence int
		incomplete bool
		expected   models.EligibilityStatus
	}{
		{"eligible at threshold", true, 85, false, models.StatusQualified},
		{"eligible high confidence", true, 95, false, models.StatusQualified},
		{"eligible below threshold", true, 80, false, models.StatusLikely},
		{"ineligible low confidence", false, 60, false, models.StatusMaybe},
		{"ineligible incomplete high confidence", false, 90, true, models.StatusMaybe},
		{"ineligible at threshold", false, 85, false, models.StatusNotQualified},
		{"ineligible high confidence", false, 95, false, models.StatusNotQualified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawResult("snap", tt.eligible, tt.confidence, tt.incomplete)
			assert.Equal(t, tt.expected, c.StatusFor(raw))
		})
	}
}

func TestConfidenceBands(t *testing.T) {
	assert.Equal(t, models.ConfidenceHigh, BandFor(95))
	assert.Equal(t, models.ConfidenceHigh, BandFor(85))
	assert.Equal(t, models.ConfidenceMedium, BandFor(84))
	assert.Equal(t, models.ConfidenceMedium, BandFor(60))
	assert.Equal(t, models.ConfidenceLow, BandFor(59))
}

// ==========================
// BUCKETING TESTS
// ==========================

func TestCategorizeIneligibleMix(t *testing.T) {
	c := newTestCategorizer()

	raws := []*models.RawProgramResult{
		rawResult("snap", false, 60, false),
		rawResult("wic", false, 65, false),
		rawResult("medicaid", false, 50, true),
		rawResult("liheap", false, 95, false),
		rawResult("tanf", false, 90, false),
	}

	results := c.Categorize("run-1", raws, time.Now())

	assert.Len(t, results.Maybe, 3)
	assert.Len(t, results.NotQualified, 2)
	assert.Empty(t, results.Qualified)
	assert.Empty(t, results.Likely)
	assert.Equal(t, 5, results.TotalPrograms)
}

func TestCategorizeFlipToQualified(t *testing.T) {
	c := newTestCategorizer()

	raws := []*models.RawProgramResult{
		rawResult("snap", false, 60, false),
		rawResult("wic", false, 65, false),
		rawResult("medicaid", false, 50, true),
		rawResult("liheap", true, 95, false),
		rawResult("tanf", false, 90, false),
	}

	results := c.Categorize("run-2", raws, time.Now())

	require.Len(t, results.Qualified, 1)
	assert.Equal(t, "liheap", results.Qualified[0].Program.ID)
	assert.Len(t, results.Maybe, 3)
	assert.Len(t, results.NotQualified, 1)
	assert.Equal(t, 5, results.TotalPrograms)
}

func TestCategorizePreservesInsertionOrder(t *testing.T) {
	c := newTestCategorizer()

	raws := []*models.RawProgramResult{
		rawResult("tanf", false, 50, false),
		rawResult("snap", false, 70, false),
		rawResult("wic", false, 40, true),
	}

	results := c.Categorize("run-3", raws, time.Now())

	require.Len(t, results.Maybe, 3)
	assert.Equal(t, "tanf", results.Maybe[0].Program.ID)
	assert.Equal(t, "snap", results.Maybe[1].Program.ID)
	assert.Equal(t, "wic", results.Maybe[2].Program.ID)
}

func TestCategorizeTotalInvariant(t *testing.T) {
	c := newTestCategorizer()

	raws := []*models.RawProgramResult{
		rawResult("snap", true, 95, false),
		rawResult("wic", true, 70, false),
		rawResult("medicaid", false, 55, false),
		rawResult("liheap", false, 92, false),
		nil,
		rawResult("section8", false, 30, true),
	}

	results := c.Categorize("run-4", raws, time.Now())

	sum := len(results.Qualified) + len(results.Likely) + len(results.Maybe) + len(results.NotQualified)
	assert.Equal(t, results.TotalPrograms, sum)
	assert.Equal(t, 5, results.TotalPrograms)
}

func TestCategorizeEmptyRun(t *testing.T) {
	c := newTestCategorizer()

	results := c.Categorize("run-5", nil, time.Now())

	assert.Equal(t, 0, results.TotalPrograms)
	assert.NotNil(t, results.Qualified)
	assert.NotNil(t, results.NotQualified)
}

// ==========================
// METADATA TESTS
// ==========================

func TestCategorizeAttachesCatalogMetadata(t *testing.T) {
	c := newTestCategorizer()

	results := c.Categorize("run-6", []*models.RawProgramResult{
		rawResult("snap", true, 95, false),
		rawResult("liheap", false, 95, false),
	}, time.Now())

	require.Len(t, results.Qualified, 1)
	qualified := results.Qualified[0]
	assert.Equal(t, "Supplemental Nutrition Assistance Program", qualified.Program.Name)
	assert.NotEmpty(t, qualified.RequiredDocuments)
	assert.NotEmpty(t, qualified.NextSteps)
	require.NotNil(t, qualified.EstimatedBenefit)
	assert.Equal(t, "monthly", qualified.EstimatedBenefit.Frequency)

	// Disqualified results carry no paperwork.
	require.Len(t, results.NotQualified, 1)
	assert.Empty(t, results.NotQualified[0].RequiredDocuments)
	assert.Nil(t, results.NotQualified[0].EstimatedBenefit)
}

func TestCategorizeUnknownProgramGetsMinimalEntry(t *testing.T) {
	c := newTestCategorizer()

	results := c.Categorize("run-7", []*models.RawProgramResult{
		rawResult("mystery-program", true, 95, false),
	}, time.Now())

	require.Len(t, results.Qualified, 1)
	assert.Equal(t, "mystery-program", results.Qualified[0].Program.ID)
	assert.Equal(t, "mystery-program", results.Qualified[0].Program.Name)
}

type staticExplainer struct{ reason string }

func (s *staticExplainer) Explain(_ *models.RawProgramResult, _ models.EligibilityStatus) models.Explanation {
	return models.Explanation{Reason: s.reason}
}

func TestCategorizeUsesExplainer(t *testing.T) {
	c := NewCategorizer(DefaultConfidenceThreshold, catalog.New(), &staticExplainer{reason: "custom reason"})

	results := c.Categorize("run-8", []*models.RawProgramResult{
		rawResult("snap", false, 50, false),
	}, time.Now())

	require.Len(t, results.Maybe, 1)
	assert.Equal(t, "custom reason", results.Maybe[0].Explanation.Reason)
}
