// internal/engine/explain/generator.go
package explain

import (
	"fmt"
	"strings"

	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

const (
	genericDisqualification = "You do not appear to meet one or more eligibility requirements for this program."
	genericClarification    = "Additional information is needed to determine your eligibility for this program."
)

// Generator renders the human-readable rationale for a categorized
// result. Detail sources are tried in priority order: per-criterion
// outcomes, the rule id's category, the program's static reason table,
// then a generic fallback. Non-qualifying and uncertain results always
// get at least one detail line.
type Generator struct {
	classifier RuleClassifier
}

type Option func(*Generator)

func WithClassifier(c RuleClassifier) Option {
	return func(g *Generator) { g.classifier = c }
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{classifier: TokenClassifier{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Explain builds the canonical explanation for one raw result.
func (g *Generator) Explain(raw *models.RawProgramResult, status models.EligibilityStatus) models.Explanation {
	explanation := models.Explanation{
		Reason:       g.reason(raw, status),
		RulesCited:   raw.RulesCited,
		Calculations: raw.Calculations,
	}

	switch status {
	case models.StatusQualified, models.StatusLikely:
		explanation.Details = g.qualifyingDetails(raw)
	case models.StatusMaybe:
		explanation.Details = g.clarificationDetails(raw)
	default:
		explanation.Details = g.disqualificationDetails(raw)
	}
	return explanation
}

func (g *Generator) reason(raw *models.RawProgramResult, status models.EligibilityStatus) string {
	switch status {
	case models.StatusQualified:
		return "You appear to meet all eligibility criteria for this program."
	case models.StatusLikely:
		return "You likely meet the eligibility criteria for this program, though some results are close to their limits."
	case models.StatusMaybe:
		return "Your eligibility could not be fully determined from the information provided."
	default:
		if raw.Reason != "" {
			return raw.Reason
		}
		return genericDisqualification
	}
}

func (g *Generator) qualifyingDetails(raw *models.RawProgramResult) []string {
	var details []string
	for _, c := range raw.Criteria {
		if c.Unknown || !c.Met {
			continue
		}
		if line, ok := comparisonDetail(c, true); ok {
			details = append(details, line)
		}
	}
	return details
}

// disqualificationDetails tries each detail source in priority order.
func (g *Generator) disqualificationDetails(raw *models.RawProgramResult) []string {
	var details []string
	for _, c := range raw.Criteria {
		if c.Unknown || c.Met {
			continue
		}
		if line, ok := comparisonDetail(c, false); ok {
			details = append(details, line)
		} else {
			details = append(details, fmt.Sprintf("You do not meet the %s requirement.", strings.ToLower(c.Name)))
		}
	}
	if len(details) > 0 {
		return details
	}

	if category := g.classifier.Classify(raw.RuleID); category != CategoryUnknown {
		if text, ok := categoryReasons[category]; ok {
			return []string{text}
		}
	}

	if static := staticDetails(disqualificationReasons, raw); len(static) > 0 {
		return static
	}

	return []string{genericDisqualification}
}

func (g *Generator) clarificationDetails(raw *models.RawProgramResult) []string {
	details := staticDetails(clarificationReasons, raw)

	for _, c := range raw.Criteria {
		if !c.Unknown {
			continue
		}
		if !coveredByStatic(details, c.Name) {
			details = append(details, fmt.Sprintf("Provide information about your %s to complete this determination.", strings.ToLower(c.Name)))
		}
	}

	if len(details) == 0 {
		details = []string{genericClarification}
	}
	return details
}

// coveredByStatic avoids doubling up a generic line when a static
// clarification for the same criterion already matched. Words are
// stemmed to five characters so "pregnancy" matches "pregnant".
func coveredByStatic(details []string, criterionName string) bool {
	name := strings.ToLower(criterionName)
	for _, d := range details {
		lower := strings.ToLower(d)
		for _, word := range strings.Fields(name) {
			if len(word) < 5 {
				continue
			}
			if strings.Contains(lower, word[:5]) {
				return true
			}
		}
	}
	return false
}

// comparisonDetail renders a criterion's value/threshold pair into a
// sentence. Only numeric comparisons produce a line.
func comparisonDetail(c models.CriterionResult, met bool) (string, bool) {
	value, vok := c.Value.(float64)
	threshold, tok := c.Threshold.(float64)
	if !vok || !tok {
		return "", false
	}

	name := strings.ToLower(c.Name)
	isMoney := strings.Contains(name, "income") || strings.Contains(name, "asset")

	format := func(f float64) string {
		if isMoney {
			return fmt.Sprintf("$%s", withCommas(f))
		}
		return strings.TrimSuffix(strings.TrimSuffix(fmt.Sprintf("%.2f", f), "0"), ".0")
	}

	switch c.Operator {
	case "<=", "<":
		if met {
			return fmt.Sprintf("Your %s of %s is within the limit of %s.", name, format(value), format(threshold)), true
		}
		return fmt.Sprintf("Your %s of %s exceeds the limit of %s.", name, format(value), format(threshold)), true
	case ">=", ">":
		if met {
			return fmt.Sprintf("Your %s of %s meets the minimum of %s.", name, format(value), format(threshold)), true
		}
		return fmt.Sprintf("Your %s of %s is below the minimum of %s.", name, format(value), format(threshold)), true
	}
	return "", false
}

func withCommas(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]

	var b strings.Builder
	if strings.HasPrefix(intPart, "-") {
		b.WriteByte('-')
		intPart = intPart[1:]
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if parts[1] != "00" {
		return b.String() + "." + parts[1]
	}
	return b.String()
}
