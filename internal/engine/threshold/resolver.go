// internal/engine/threshold/resolver.go
package threshold

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jborgese/benefit-finder-sub003/internal/common/logger"
	"github.com/jborgese/benefit-finder-sub003/internal/engine/ruleeval"
	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

// HouseholdSizeVar is the context variable the resolver recognizes in
// "household size times base amount" multiplication nodes.
const HouseholdSizeVar = "householdSize"

var (
	// "$2,258 for 1, $3,058 for 2" — amount tied to a household size.
	sizedFigurePattern = regexp.MustCompile(`\$([\d,]+(?:\.\d+)?)\s*(?:for|per)\s*(?:a\s+household\s+of\s+)?(\d+)`)
	// Bare dollar figures, the last-resort parse.
	figurePattern = regexp.MustCompile(`\$([\d,]+(?:\.\d+)?)`)
)

// Resolver computes household-size-scaled thresholds. Strategy order:
// a registered per-person increment for the base amount, an increment
// inferred from the rule's explanation text, then naive multiplication.
type Resolver struct {
	increments map[int]float64
	logger     logger.Logger
}

func NewResolver(log logger.Logger) *Resolver {
	return &Resolver{
		increments: defaultIncrements(),
		logger:     log,
	}
}

// RegisterIncrement records a known per-person increment for a base
// amount, overriding any default.
func (r *Resolver) RegisterIncrement(baseAmount, increment float64) {
	r.increments[incrementKey(baseAmount)] = increment
}

// ComputeThreshold resolves the income threshold for a household of the
// given size. A household size of zero or below never panics; it yields
// zero, which downstream comparison treats as eligibility-failing.
func (r *Resolver) ComputeThreshold(baseAmount float64, householdSize int, rule *models.Rule) float64 {
	if householdSize <= 0 {
		r.logger.Warn("non-positive household size in threshold computation", map[string]interface{}{
			"householdSize": householdSize,
			"baseAmount":    baseAmount,
		})
		return 0
	}

	if inc, ok := r.increments[incrementKey(baseAmount)]; ok {
		return baseAmount + inc*float64(householdSize-1)
	}

	if rule != nil && rule.Explanation != "" {
		if inc, ok := inferIncrement(rule.Explanation); ok {
			r.logger.Debug("threshold increment inferred from rule text", map[string]interface{}{
				"ruleId":    rule.ID,
				"increment": inc,
			})
			return baseAmount + inc*float64(householdSize-1)
		}
	}

	return baseAmount * float64(householdSize)
}

// ResolveHouseholdMultiplication implements ruleeval.MultiplyResolver.
// It recognizes a multiplication of the household-size variable with a
// numeric base amount and substitutes the resolved threshold for the
// naive product, uniformly for every program and rule path.
func (r *Resolver) ResolveHouseholdMultiplication(node *models.Expression, ctx ruleeval.Context, rule *models.Rule) (float64, bool) {
	if node == nil || node.Op != "*" || len(node.Args) != 2 {
		return 0, false
	}

	base, ok := householdMultiplicationBase(node, ctx)
	if !ok {
		return 0, false
	}

	size, ok := contextInt(ctx, HouseholdSizeVar)
	if !ok {
		return 0, false
	}

	return r.ComputeThreshold(base, size, rule), true
}

// householdMultiplicationBase returns the non-household-size operand's
// numeric value when the node has the household-multiplication shape.
func householdMultiplicationBase(node *models.Expression, ctx ruleeval.Context) (float64, bool) {
	var sizeArg, baseArg *models.Expression
	for i, arg := range node.Args {
		if arg.IsVar() && arg.Var == HouseholdSizeVar {
			sizeArg = arg
			baseArg = node.Args[1-i]
			break
		}
	}
	if sizeArg == nil || baseArg == nil {
		return 0, false
	}

	if baseArg.IsLiteral() {
		return asFloat(baseArg.Value)
	}
	if baseArg.IsVar() {
		return asFloat(ctx[baseArg.Var])
	}
	return 0, false
}

// inferIncrement parses an explanation text containing dollar figures
// for consecutive household sizes and returns the difference of the
// first two figures. "$2,258 for 1, $3,058 for 2, $3,798 for 3" infers
// 800 regardless of later figures.
func inferIncrement(text string) (float64, bool) {
	sized := sizedFigurePattern.FindAllStringSubmatch(text, -1)
	if len(sized) >= 2 {
		first, err1 := parseDollar(sized[0][1])
		second, err2 := parseDollar(sized[1][1])
		size1, _ := strconv.Atoi(sized[0][2])
		size2, _ := strconv.Atoi(sized[1][2])
		if err1 == nil && err2 == nil && size2 == size1+1 && second > first {
			return second - first, true
		}
	}

	figures := figurePattern.FindAllStringSubmatch(text, -1)
	if len(figures) >= 2 {
		first, err1 := parseDollar(figures[0][1])
		second, err2 := parseDollar(figures[1][1])
		if err1 == nil && err2 == nil && second > first {
			return second - first, true
		}
	}

	return 0, false
}

func parseDollar(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func incrementKey(baseAmount float64) int {
	return int(math.Round(baseAmount))
}

func contextInt(ctx ruleeval.Context, key string) (int, bool) {
	f, ok := asFloat(ctx[key])
	if !ok {
		return 0, false
	}
	return int(f), true
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// defaultIncrements seeds the table with the federal poverty guideline
// bases the shipped rule sets reference (2024 figures, annual and
// monthly, plus the 130% and 185% FPL bases used by food programs).
func defaultIncrements() map[int]float64 {
	return map[int]float64{
		15060: 5380,    // 100% FPL annual
		1255:  448.34,  // 100% FPL monthly
		19578: 6994,    // 130% FPL annual
		1632:  583,     // 130% FPL monthly
		27861: 9953,    // 185% FPL annual
		2322:  829.42,  // 185% FPL monthly
	}
}
