// internal/engine/program/evaluator_test.go
package program

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jborgese/benefit-finder-sub003/internal/common/logger"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/refdata"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/ruleeval"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/threshold"
	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

// ==========================
// TEST HELPERS
// ==========================

func lit(v interface{}) *models.Expression {
	return &models.Expression{Value: v}
}

func varRef(name string) *models.Expression {
	return &models.Expression{Var: name}
}

func op(name string, args ...*models.Expression) *models.Expression {
	return &models.Expression{Op: name, Args: args}
}

func newTestEvaluator(t *testing.T, opts ...Option) *Evaluator {
	t.Helper()
	log := logger.NewTestLogger(t)
	resolver := threshold.NewResolver(log)
	rules := ruleeval.New(ruleeval.WithMultiplyResolver(resolver))
	return NewEvaluator(rules, log, opts...)
}

func testProfile() *models.Profile {
	return &models.Profile{
		ID:            "profile-1",
		HouseholdSize: 2,
		Income:        2400,
		IncomePeriod:  models.IncomePeriodMonthly,
		Age:           34,
		Citizenship:   models.CitizenshipCitizen,
		Employment:    models.EmploymentFullTime,
		HasChildren:   true,
		State:         "ca",
		County:        "alameda",
	}
}

func incomeRuleSet(limit float64) *models.RuleSet {
	return &models.RuleSet{
		ProgramID: "snap",
		Version:   "2026.1",
		Rules: []models.Rule{
			{
				ID:         "snap-income-limit",
				ProgramID:  "snap",
				Type:       models.RuleTypeIncome,
				Name:       "monthly income limit",
				Active:     true,
				Expression: op("<=",
					varRef(VarMonthlyIncome),
					lit(limit),
				),
			},
			{
				ID:         "snap-citizenship",
				ProgramID:  "snap",
				Type:       models.RuleTypeCitizenship,
				Name:       "citizenship status",
				Active:     true,
				Expression: op("==", varRef(VarCitizenship), lit("citizen")),
			},
		},
	}
}

type stubRefData struct {
	entry *models.ReferenceDataEntry
	err   error
	calls int
}

func (s *stubRefData) Get(_ context.Context, state, county string, size int) (*models.ReferenceDataEntry, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.entry, nil
}

// ==========================
// EVALUATION TESTS
// ==========================

func TestEvaluateAllCriteriaMet(t *testing.T) {
	eval := newTestEvaluator(t)

	result := eval.Evaluate(context.Background(), testProfile(), incomeRuleSet(3000))

	require.NotNil(t, result)
	assert.True(t, result.Eligible)
	assert.False(t, result.Incomplete)
	assert.Equal(t, baseConfidence, result.Confidence)
	assert.Len(t, result.Criteria, 2)
	assert.Equal(t, []string{"snap-income-limit", "snap-citizenship"}, result.RulesCited)
	assert.Equal(t, "snap-income-limit", result.RuleID)
	assert.Equal(t, "meets all 2 eligibility criteria", result.Reason)
}

func TestEvaluateUnmetCriterionStaysConfident(t *testing.T) {
	eval := newTestEvaluator(t)

	result := eval.Evaluate(context.Background(), testProfile(), incomeRuleSet(2000))

	assert.False(t, result.Eligible)
	assert.False(t, result.Incomplete)
	assert.Equal(t, baseConfidence, result.Confidence)
	assert.Equal(t, "does not meet 1 of 2 eligibility criteria", result.Reason)

	income := result.Criteria[0]
	assert.False(t, income.Met)
	assert.Equal(t, "<=", income.Operator)
	assert.Equal(t, 2400.0, income.Value)
	assert.Equal(t, 2000.0, income.Threshold)
}

func TestEvaluateUnknownCriterionDegradesToIncomplete(t *testing.T) {
	eval := newTestEvaluator(t)
	profile := testProfile()
	profile.Citizenship = ""

	result := eval.Evaluate(context.Background(), profile, incomeRuleSet(3000))

	assert.False(t, result.Eligible)
	assert.True(t, result.Incomplete)
	assert.Equal(t, baseConfidence-unknownPenalty, result.Confidence)

	citizenship := result.Criteria[1]
	assert.True(t, citizenship.Unknown)
	assert.Contains(t, citizenship.Message, "insufficient information")
}

func TestEvaluateMalformedRuleReportedPerRule(t *testing.T) {
	eval := newTestEvaluator(t)
	rs := incomeRuleSet(3000)
	rs.Rules = append(rs.Rules, models.Rule{
		ID:         "snap-broken",
		ProgramID:  "snap",
		Name:       "broken rule",
		Active:     true,
		Expression: op("frobnicate", lit(1)),
	})

	result := eval.Evaluate(context.Background(), testProfile(), rs)

	assert.False(t, result.Eligible)
	assert.True(t, result.Incomplete)
	assert.Equal(t, baseConfidence-malformedPenalty, result.Confidence)
	require.Len(t, result.Criteria, 3)
	assert.True(t, result.Criteria[2].Unknown)
	assert.Contains(t, result.Criteria[2].Message, "rule malformed")
}

func TestEvaluateIncomeMarginLowersConfidence(t *testing.T) {
	eval := newTestEvaluator(t)

	// 2400 against a 2500 limit is within the 10% margin band.
	result := eval.Evaluate(context.Background(), testProfile(), incomeRuleSet(2500))

	assert.True(t, result.Eligible)
	assert.Equal(t, baseConfidence-marginPenalty, result.Confidence)
}

func TestEvaluateHouseholdScaledThreshold(t *testing.T) {
	eval := newTestEvaluator(t)
	rs := &models.RuleSet{
		ProgramID: "liheap",
		Version:   "2026.1",
		Rules: []models.Rule{
			{
				ID:          "liheap-income-limit",
				ProgramID:   "liheap",
				Type:        models.RuleTypeIncome,
				Name:        "monthly income limit",
				Explanation: "Monthly income must be at or below $2,258 for 1, $3,058 for 2, $3,798 for 3.",
				Active:      true,
				Expression: op("<=",
					varRef(VarMonthlyIncome),
					op("*", varRef(VarHouseholdSize), lit(2258.0)),
				),
			},
		},
	}

	result := eval.Evaluate(context.Background(), testProfile(), rs)

	// Household of 2 with the registered 800 increment: 2258 + 800 = 3058.
	assert.True(t, result.Eligible)
	require.Len(t, result.Criteria, 1)
	assert.Equal(t, 3058.0, result.Criteria[0].Threshold)
}

func TestEvaluateEmptyRuleSet(t *testing.T) {
	eval := newTestEvaluator(t)

	result := eval.Evaluate(context.Background(), testProfile(), &models.RuleSet{ProgramID: "ghost"})

	assert.False(t, result.Eligible)
	assert.True(t, result.Incomplete)
	assert.Equal(t, minConfidence, result.Confidence)
}

// ==========================
// REFERENCE DATA TESTS
// ==========================

func housingRuleSet() *models.RuleSet {
	return &models.RuleSet{
		ProgramID: "section8",
		Version:   "2026.1",
		Rules: []models.Rule{
			{
				ID:         "section8-income-ami50",
				ProgramID:  "section8",
				Type:       models.RuleTypeIncome,
				Name:       "income below 50% of area median income",
				Active:     true,
				Expression: op("<=", varRef(VarAnnualIncome), varRef(VarAMILimit50)),
			},
		},
	}
}

func TestEvaluateInjectsAMILimits(t *testing.T) {
	rd := &stubRefData{entry: &models.ReferenceDataEntry{
		State: "ca", County: "alameda", Year: 2026, HouseholdSize: 2,
		AMI: 91400, IncomeLimit50: 45700, IncomeLimit60: 54840, IncomeLimit80: 73120,
	}}
	eval := newTestEvaluator(t, WithReferenceData(rd))

	result := eval.Evaluate(context.Background(), testProfile(), housingRuleSet())

	// Annual income 28800 is under the 45700 limit.
	assert.True(t, result.Eligible)
	assert.Equal(t, 1, rd.calls)
	require.NotEmpty(t, result.Calculations)
	assert.Contains(t, result.Calculations[0].Label, "Area median income")
}

func TestEvaluateMissingReferenceDataDegrades(t *testing.T) {
	rd := &stubRefData{err: fmt.Errorf("%w: no data for state zz", refdata.ErrDataNotFound)}
	eval := newTestEvaluator(t, WithReferenceData(rd))
	profile := testProfile()
	profile.State = "zz"

	result := eval.Evaluate(context.Background(), profile, housingRuleSet())

	assert.False(t, result.Eligible)
	assert.True(t, result.Incomplete)
	assert.Less(t, result.Confidence, 85)
	require.Len(t, result.Criteria, 1)
	assert.True(t, result.Criteria[0].Unknown)
}

func TestEvaluateReferenceDataLookupFailureStaysIncomplete(t *testing.T) {
	rd := &stubRefData{err: errors.New("backend unavailable")}
	eval := newTestEvaluator(t, WithReferenceData(rd))

	result := eval.Evaluate(context.Background(), testProfile(), housingRuleSet())

	// An unclassified lookup failure is not softened directly, but the
	// unresolved AMI variables still leave the criterion unknown.
	assert.False(t, result.Eligible)
	assert.True(t, result.Incomplete)
	require.Len(t, result.Criteria, 1)
	assert.True(t, result.Criteria[0].Unknown)
}

func TestEvaluateSkipsReferenceDataWhenUnreferenced(t *testing.T) {
	rd := &stubRefData{}
	eval := newTestEvaluator(t, WithReferenceData(rd))

	eval.Evaluate(context.Background(), testProfile(), incomeRuleSet(3000))

	assert.Equal(t, 0, rd.calls)
}

func TestEvaluateTimestampUsesClock(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	eval := newTestEvaluator(t, WithClock(func() time.Time { return fixed }))

	result := eval.Evaluate(context.Background(), testProfile(), incomeRuleSet(3000))

	assert.Equal(t, fixed, result.EvaluatedAt)
}
