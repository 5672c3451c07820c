// internal/engine/program/evaluator.go
package program

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/jborgese/benefit-finder-sub003/internal/common/errors"
	"github.com/jborgese/benefit-finder-sub003/internal/common/logger"
	"github.com/jborgese/benefit-finder-sub003/internal/common/metrics"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/refdata"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/ruleeval"
	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

// Context variable names rules can reference. The AMI-derived variables
// are only populated when the rule set references them and the profile
// carries a state/county.
const (
	VarHouseholdSize = "householdSize"
	VarAnnualIncome  = "annualIncome"
	VarMonthlyIncome = "monthlyIncome"
	VarAge           = "age"
	VarCitizenship   = "citizenship"
	VarEmployment    = "employment"
	VarHasDisability = "hasDisability"
	VarIsPregnant    = "isPregnant"
	VarHasChildren   = "hasChildren"
	VarState         = "state"
	VarCounty        = "county"
	VarAMI           = "ami"
	VarAMILimit50    = "amiIncomeLimit50"
	VarAMILimit60    = "amiIncomeLimit60"
	VarAMILimit80    = "amiIncomeLimit80"
)

// Confidence model: a fully determinate evaluation scores 95; every
// unknown criterion and every malformed rule lowers certainty and marks
// the result incomplete; an income result inside a 10% margin of its
// threshold stays below the qualified band.
const (
	baseConfidence       = 95
	unknownPenalty       = 15
	malformedPenalty     = 10
	marginPenalty        = 10
	minConfidence        = 30
	incomeMarginFraction = 0.10
)

// ReferenceData is the slice of the AMI cache the evaluator needs.
type ReferenceData interface {
	Get(ctx context.Context, state, county string, householdSize int) (*models.ReferenceDataEntry, error)
}

// Evaluator runs every active rule of one program against a profile
// snapshot. It is stateless between calls and safe for concurrent use.
type Evaluator struct {
	rules   *ruleeval.Evaluator
	refdata ReferenceData
	errs    *apperrors.ErrorHandler
	now     func() time.Time
}

type Option func(*Evaluator)

// WithClock substitutes the evaluation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// WithReferenceData wires the AMI cache consulted for rule sets that
// reference AMI-derived variables.
func WithReferenceData(rd ReferenceData) Option {
	return func(e *Evaluator) { e.refdata = rd }
}

func NewEvaluator(rules *ruleeval.Evaluator, log logger.Logger, opts ...Option) *Evaluator {
	e := &Evaluator{
		rules: rules,
		errs:  apperrors.NewErrorHandler(log),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate produces the raw result for one program. It always returns a
// result: malformed rules and missing reference data degrade confidence
// and completeness, they never abort the evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, profile *models.Profile, ruleSet *models.RuleSet) *models.RawProgramResult {
	result := &models.RawProgramResult{
		ProfileID:      profile.ID,
		ProgramID:      ruleSet.ProgramID,
		EvaluatedAt:    e.now().UTC(),
		RuleSetVersion: ruleSet.Version,
	}

	active := ruleSet.ActiveRules()
	if len(active) == 0 {
		result.Incomplete = true
		result.Confidence = minConfidence
		result.Reason = "no active eligibility rules for this program"
		return result
	}
	result.RuleID = active[0].ID

	evalCtx := e.buildContext(ctx, profile, active, result)

	var (
		unmet     int
		unknown   int
		malformed int
	)
	for i := range active {
		rule := &active[i]
		criterion := e.evaluateRule(rule, evalCtx, result)
		result.Criteria = append(result.Criteria, criterion)
		result.RulesCited = append(result.RulesCited, rule.ID)

		switch {
		case criterion.Unknown:
			if criterion.Message != "" && strings.Contains(criterion.Message, "malformed") {
				malformed++
			} else {
				unknown++
			}
		case !criterion.Met:
			unmet++
		}
	}

	result.Eligible = unmet == 0 && unknown == 0 && malformed == 0
	result.Incomplete = result.Incomplete || unknown > 0 || malformed > 0

	confidence := baseConfidence
	confidence -= unknown * unknownPenalty
	confidence -= malformed * malformedPenalty
	if result.Eligible && e.withinIncomeMargin(result) {
		confidence -= marginPenalty
	}
	if confidence < minConfidence {
		confidence = minConfidence
	}
	result.Confidence = confidence
	result.Reason = summarizeOutcome(result, unmet, unknown+malformed)

	metrics.ProgramEvaluations.WithLabelValues(ruleSet.ProgramID, outcomeLabel(result)).Inc()
	return result
}

// buildContext assembles the flat evaluation context from the profile
// plus derived fields. Missing inputs stay absent so rules referencing
// them resolve to unknown rather than false.
func (e *Evaluator) buildContext(ctx context.Context, profile *models.Profile, rules []models.Rule, result *models.RawProgramResult) ruleeval.Context {
	evalCtx := ruleeval.Context{
		VarHouseholdSize: float64(profile.HouseholdSize),
		VarAnnualIncome:  profile.AnnualIncome(),
		VarMonthlyIncome: profile.MonthlyIncome(),
		VarHasDisability: profile.HasDisability,
		VarIsPregnant:    profile.IsPregnant,
		VarHasChildren:   profile.HasChildren,
	}
	if profile.Citizenship != "" {
		evalCtx[VarCitizenship] = string(profile.Citizenship)
	}
	if profile.Employment != "" {
		evalCtx[VarEmployment] = string(profile.Employment)
	}
	if profile.State != "" {
		evalCtx[VarState] = strings.ToLower(profile.State)
	}
	if profile.County != "" {
		evalCtx[VarCounty] = strings.ToLower(profile.County)
	}
	if age, ok := profile.ResolveAge(e.now()); ok {
		evalCtx[VarAge] = float64(age)
	}

	if e.refdata != nil && referencesAMI(rules) {
		e.injectReferenceData(ctx, profile, evalCtx, result)
	}
	return evalCtx
}

// injectReferenceData resolves AMI figures for the profile's geography.
// A failed lookup leaves the AMI variables unset so comparisons against
// them propagate unknown; the error handler classifies the failure and
// decides whether it also marks the result incomplete outright.
func (e *Evaluator) injectReferenceData(ctx context.Context, profile *models.Profile, evalCtx ruleeval.Context, result *models.RawProgramResult) {
	if profile.State == "" || profile.County == "" || profile.HouseholdSize < 1 {
		result.Incomplete = true
		return
	}

	entry, err := e.refdata.Get(ctx, profile.State, profile.County, profile.HouseholdSize)
	if err != nil {
		if errors.Is(err, refdata.ErrDataNotFound) {
			err = apperrors.NewReferenceDataMissingError(profile.State, profile.County)
		}
		if e.errs.DegradesToIncomplete(err) {
			result.Incomplete = true
		}
		e.errs.LogProgramError(result.ProgramID, err)
		return
	}

	evalCtx[VarAMI] = entry.AMI
	evalCtx[VarAMILimit50] = entry.IncomeLimit50
	evalCtx[VarAMILimit60] = entry.IncomeLimit60
	evalCtx[VarAMILimit80] = entry.IncomeLimit80
	result.Calculations = append(result.Calculations, models.Calculation{
		Label:      fmt.Sprintf("Area median income (%s, household of %d)", entry.County, entry.HouseholdSize),
		Value:      entry.AMI,
		Comparison: fmt.Sprintf("limits: 50%%=%.0f 60%%=%.0f 80%%=%.0f", entry.IncomeLimit50, entry.IncomeLimit60, entry.IncomeLimit80),
	})
}

// evaluateRule runs one rule and folds its outcome into criterion form.
func (e *Evaluator) evaluateRule(rule *models.Rule, evalCtx ruleeval.Context, result *models.RawProgramResult) models.CriterionResult {
	criterion := models.CriterionResult{Name: criterionName(rule)}

	res := e.rules.Evaluate(rule.Expression, evalCtx, rule)
	if !res.Success {
		metrics.RuleEvaluationFailures.WithLabelValues(rule.ProgramID).Inc()
		e.errs.LogProgramError(rule.ProgramID, apperrors.NewRuleMalformedError(rule.ID, res.Diagnostic))
		criterion.Unknown = true
		criterion.Message = fmt.Sprintf("rule malformed: %s", res.Diagnostic)
		return criterion
	}

	e.attachComparisonDetail(rule, evalCtx, &criterion, result)

	switch v := res.Value.(type) {
	case nil:
		criterion.Unknown = true
		criterion.Message = "insufficient information to evaluate this criterion"
	case bool:
		criterion.Met = v
	default:
		metrics.RuleEvaluationFailures.WithLabelValues(rule.ProgramID).Inc()
		diagnostic := fmt.Sprintf("produced %T instead of a boolean", v)
		e.errs.LogProgramError(rule.ProgramID, apperrors.NewRuleMalformedError(rule.ID, diagnostic))
		criterion.Unknown = true
		criterion.Message = "rule malformed: " + diagnostic
	}
	return criterion
}

// attachComparisonDetail captures the compared value and threshold for
// explanation rendering when the rule's root node is a comparison.
func (e *Evaluator) attachComparisonDetail(rule *models.Rule, evalCtx ruleeval.Context, criterion *models.CriterionResult, result *models.RawProgramResult) {
	expr := rule.Expression
	if expr == nil || len(expr.Args) != 2 {
		return
	}
	switch expr.Op {
	case "==", "!=", ">", ">=", "<", "<=":
	default:
		return
	}

	left := e.rules.Evaluate(expr.Args[0], evalCtx, rule)
	right := e.rules.Evaluate(expr.Args[1], evalCtx, rule)
	if !left.Success || !right.Success {
		return
	}
	criterion.Operator = expr.Op
	criterion.Value = left.Value
	criterion.Threshold = right.Value

	lv, lok := left.Value.(float64)
	rv, rok := right.Value.(float64)
	if lok && rok && rule.Type == models.RuleTypeIncome {
		result.Calculations = append(result.Calculations, models.Calculation{
			Label:      fmt.Sprintf("%s threshold", criterion.Name),
			Value:      rv,
			Comparison: fmt.Sprintf("%.2f %s %.2f", lv, expr.Op, rv),
		})
	}
}

// withinIncomeMargin reports whether any met income criterion sits
// inside the margin band of its threshold.
func (e *Evaluator) withinIncomeMargin(result *models.RawProgramResult) bool {
	for _, c := range result.Criteria {
		if !c.Met || c.Unknown {
			continue
		}
		if !strings.Contains(strings.ToLower(c.Name), "income") {
			continue
		}
		value, vok := c.Value.(float64)
		limit, tok := c.Threshold.(float64)
		if !vok || !tok || limit <= 0 {
			continue
		}
		if value <= limit && value >= limit*(1-incomeMarginFraction) {
			return true
		}
	}
	return false
}

func criterionName(rule *models.Rule) string {
	if rule.Name != "" {
		return rule.Name
	}
	if rule.Type != "" {
		return string(rule.Type)
	}
	return rule.ID
}

func summarizeOutcome(result *models.RawProgramResult, unmet, undetermined int) string {
	switch {
	case result.Eligible:
		return fmt.Sprintf("meets all %d eligibility criteria", len(result.Criteria))
	case unmet > 0:
		return fmt.Sprintf("does not meet %d of %d eligibility criteria", unmet, len(result.Criteria))
	default:
		return fmt.Sprintf("%d of %d criteria could not be determined from the profile", undetermined, len(result.Criteria))
	}
}

func outcomeLabel(result *models.RawProgramResult) string {
	switch {
	case result.Eligible:
		return "eligible"
	case result.Incomplete:
		return "incomplete"
	default:
		return "ineligible"
	}
}

// referencesAMI reports whether any rule expression references an
// AMI-derived context variable.
func referencesAMI(rules []models.Rule) bool {
	for i := range rules {
		if exprReferencesAny(rules[i].Expression, VarAMI, VarAMILimit50, VarAMILimit60, VarAMILimit80) {
			return true
		}
	}
	return false
}

func exprReferencesAny(expr *models.Expression, vars ...string) bool {
	if expr == nil {
		return false
	}
	if expr.IsVar() {
		for _, v := range vars {
			if expr.Var == v {
				return true
			}
		}
		return false
	}
	for _, arg := range expr.Args {
		if exprReferencesAny(arg, vars...) {
			return true
		}
	}
	return false
}
