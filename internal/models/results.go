// internal/models/results.go
package models

import "time"

type EligibilityStatus string

const (
	StatusQualified    EligibilityStatus = "qualified"
	StatusLikely       EligibilityStatus = "likely"
	StatusMaybe        EligibilityStatus = "maybe"
	StatusUnlikely     EligibilityStatus = "unlikely"
	StatusNotQualified EligibilityStatus = "not-qualified"
)

type ConfidenceBand string

const (
	ConfidenceHigh   ConfidenceBand = "high"
	ConfidenceMedium ConfidenceBand = "medium"
	ConfidenceLow    ConfidenceBand = "low"
)

// CriterionResult records the outcome of a single eligibility criterion.
// Unknown is set when missing profile data prevented a determination;
// Met is meaningless in that case.
type CriterionResult struct {
	Name      string      `json:"name"`
	Met       bool        `json:"met"`
	Unknown   bool        `json:"unknown,omitempty"`
	Value     interface{} `json:"value,omitempty"`
	Threshold interface{} `json:"threshold,omitempty"`
	Operator  string      `json:"operator,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// Calculation records an intermediate numeric step, kept for display.
type Calculation struct {
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Comparison string  `json:"comparison,omitempty"`
}

// RawProgramResult is the unbucketed output of evaluating one program's
// rules against a profile. Created once per run, never mutated.
type RawProgramResult struct {
	ProfileID      string            `json:"profileId"`
	ProgramID      string            `json:"programId"`
	RuleID         string            `json:"ruleId,omitempty"`
	Eligible       bool              `json:"eligible"`
	Confidence     int               `json:"confidence"` // 0-100
	Incomplete     bool              `json:"incomplete"`
	Reason         string            `json:"reason,omitempty"`
	Criteria       []CriterionResult `json:"criteriaResults,omitempty"`
	Calculations   []Calculation     `json:"calculations,omitempty"`
	RulesCited     []string          `json:"rulesCited,omitempty"`
	EvaluatedAt    time.Time         `json:"evaluatedAt"`
	RuleSetVersion string            `json:"ruleSetVersion,omitempty"`
}

// Explanation is the canonical human-readable rationale attached to a
// categorized result. Legacy shapes are normalized into this form at
// the boundary (see internal/engine/explain).
type Explanation struct {
	Reason       string        `json:"reason"`
	Details      []string      `json:"details,omitempty"`
	RulesCited   []string      `json:"rulesCited,omitempty"`
	Calculations []Calculation `json:"calculations,omitempty"`
}

type EstimatedBenefit struct {
	Amount    float64 `json:"amount"`
	Frequency string  `json:"frequency"` // e.g. "monthly", "annual", "one-time"
}

// ProgramInfo is the display metadata for a benefit program.
type ProgramInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Agency   string `json:"agency,omitempty"`
}

// ProgramEligibilityResult is the externally visible, categorized form
// of one program's determination.
type ProgramEligibilityResult struct {
	Program           ProgramInfo       `json:"program"`
	Status            EligibilityStatus `json:"status"`
	ConfidenceBand    ConfidenceBand    `json:"confidenceBand"`
	Confidence        int               `json:"confidence"`
	Explanation       Explanation       `json:"explanation"`
	RequiredDocuments []string          `json:"requiredDocuments,omitempty"`
	NextSteps         []string          `json:"nextSteps,omitempty"`
	EstimatedBenefit  *EstimatedBenefit `json:"estimatedBenefit,omitempty"`
	EvaluatedAt       time.Time         `json:"evaluatedAt"`
	RuleSetVersion    string            `json:"ruleSetVersion,omitempty"`
}

// EligibilityResults is the terminal artifact of an evaluation run.
// TotalPrograms always equals the sum of the four bucket lengths.
type EligibilityResults struct {
	RunID         string                     `json:"runId,omitempty"`
	Qualified     []ProgramEligibilityResult `json:"qualified"`
	Likely        []ProgramEligibilityResult `json:"likely"`
	Maybe         []ProgramEligibilityResult `json:"maybe"`
	NotQualified  []ProgramEligibilityResult `json:"notQualified"`
	TotalPrograms int                        `json:"totalPrograms"`
	EvaluatedAt   time.Time                  `json:"evaluatedAt"`
}
