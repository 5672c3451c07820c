// internal/engine/explain/rulecodes.go
package explain

import "strings"

// RuleCategory is the coarse subject of an eligibility rule, recovered
// from its identifier when per-criterion detail is unavailable.
type RuleCategory string

const (
	CategoryIncome      RuleCategory = "income"
	CategoryAge         RuleCategory = "age"
	CategoryCitizenship RuleCategory = "citizenship"
	CategoryDisability  RuleCategory = "disability"
	CategoryAssets      RuleCategory = "assets"
	CategoryHousehold   RuleCategory = "household"
	CategoryUnknown     RuleCategory = "unknown"
)

// RuleClassifier recovers a rule's subject from its identifier. Kept
// behind an interface so rule corpora with different naming schemes can
// plug in their own parsing.
type RuleClassifier interface {
	Classify(ruleID string) RuleCategory
}

// TokenClassifier classifies rule ids of the conventional form
// "<program>-<subject>-<qualifier>" by scanning hyphen-separated
// tokens.
type TokenClassifier struct{}

func (TokenClassifier) Classify(ruleID string) RuleCategory {
	for _, token := range strings.Split(strings.ToLower(ruleID), "-") {
		switch {
		case token == "income" || token == "earnings" || token == "wages":
			return CategoryIncome
		case token == "age" || token == "elderly" || token == "senior":
			return CategoryAge
		case strings.HasPrefix(token, "citizen") || token == "immigration" || token == "residency":
			return CategoryCitizenship
		case strings.HasPrefix(token, "disab"):
			return CategoryDisability
		case token == "asset" || token == "assets" || token == "resources":
			return CategoryAssets
		case token == "household" || token == "children" || token == "child" || strings.HasPrefix(token, "pregnan"):
			return CategoryHousehold
		}
	}
	return CategoryUnknown
}

// categoryReasons are the disqualification texts used when only the
// rule id's category is known.
var categoryReasons = map[RuleCategory]string{
	CategoryIncome:      "Your household income is above the limit for this program.",
	CategoryAge:         "You do not meet the age requirement for this program.",
	CategoryCitizenship: "Your citizenship or immigration status does not meet this program's requirement.",
	CategoryDisability:  "This program requires a qualifying disability.",
	CategoryAssets:      "Your household assets are above the limit for this program.",
	CategoryHousehold:   "Your household composition does not meet this program's requirement.",
}
