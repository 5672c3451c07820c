// internal/engine/categorize/categorizer.go
package categorize

import (
	"time"

	"github.com/jborgese/benefit-finder-sub003/internal/engine/catalog"
	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

// DefaultConfidenceThreshold separates qualified from likely and maybe
// from not-qualified.
const DefaultConfidenceThreshold = 85

const mediumBandFloor = 60

// Explainer renders the human-readable rationale for one raw result
// once its status is known.
type Explainer interface {
	Explain(raw *models.RawProgramResult, status models.EligibilityStatus) models.Explanation
}

// Categorizer derives per-program statuses and assembles the four
// bucketed output sequences. It never drops a result: every evaluated
// program lands in exactly one bucket, in evaluation order.
type Categorizer struct {
	threshold int
	catalog   *catalog.Catalog
	explainer Explainer
}

func NewCategorizer(threshold int, cat *catalog.Catalog, explainer Explainer) *Categorizer {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultConfidenceThreshold
	}
	return &Categorizer{threshold: threshold, catalog: cat, explainer: explainer}
}

// StatusFor derives the eligibility status for one raw result.
func (c *Categorizer) StatusFor(raw *models.RawProgramResult) models.EligibilityStatus {
	if raw.Eligible {
		if raw.Confidence >= c.threshold {
			return models.StatusQualified
		}
		return models.StatusLikely
	}
	if raw.Incomplete || raw.Confidence < c.threshold {
		return models.StatusMaybe
	}
	return models.StatusNotQualified
}

// BandFor maps a raw confidence score to its display band.
func BandFor(confidence int) models.ConfidenceBand {
	switch {
	case confidence >= DefaultConfidenceThreshold:
		return models.ConfidenceHigh
	case confidence >= mediumBandFloor:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// Categorize buckets the raw results of one evaluation run. The
// "unlikely" status has no bucket of its own and folds into
// notQualified.
func (c *Categorizer) Categorize(runID string, raws []*models.RawProgramResult, evaluatedAt time.Time) *models.EligibilityResults {
	results := &models.EligibilityResults{
		RunID:        runID,
		Qualified:    []models.ProgramEligibilityResult{},
		Likely:       []models.ProgramEligibilityResult{},
		Maybe:        []models.ProgramEligibilityResult{},
		NotQualified: []models.ProgramEligibilityResult{},
		EvaluatedAt:  evaluatedAt,
	}

	for _, raw := range raws {
		if raw == nil {
			continue
		}
		status := c.StatusFor(raw)
		entry := c.categorizeOne(raw, status)

		switch status {
		case models.StatusQualified:
			results.Qualified = append(results.Qualified, entry)
		case models.StatusLikely:
			results.Likely = append(results.Likely, entry)
		case models.StatusMaybe:
			results.Maybe = append(results.Maybe, entry)
		case models.StatusUnlikely, models.StatusNotQualified:
			results.NotQualified = append(results.NotQualified, entry)
		}
		results.TotalPrograms++
	}
	return results
}

func (c *Categorizer) categorizeOne(raw *models.RawProgramResult, status models.EligibilityStatus) models.ProgramEligibilityResult {
	meta := c.catalog.Lookup(raw.ProgramID)

	entry := models.ProgramEligibilityResult{
		Program:        meta.Info,
		Status:         status,
		ConfidenceBand: BandFor(raw.Confidence),
		Confidence:     raw.Confidence,
		EvaluatedAt:    raw.EvaluatedAt,
		RuleSetVersion: raw.RuleSetVersion,
	}

	if c.explainer != nil {
		entry.Explanation = c.explainer.Explain(raw, status)
	} else {
		entry.Explanation = models.Explanation{
			Reason:       raw.Reason,
			RulesCited:   raw.RulesCited,
			Calculations: raw.Calculations,
		}
	}

	// Paperwork and benefit estimates only matter for results worth
	// pursuing.
	switch status {
	case models.StatusQualified, models.StatusLikely, models.StatusMaybe:
		entry.RequiredDocuments = meta.RequiredDocuments
		entry.NextSteps = meta.NextSteps
		entry.EstimatedBenefit = meta.EstimatedBenefit
	}
	return entry
}
