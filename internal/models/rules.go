// internal/models/rules.go
package models

type RuleType string

const (
	RuleTypeIncome      RuleType = "income"
	RuleTypeAsset       RuleType = "asset"
	RuleTypeAge         RuleType = "age"
	RuleTypeDisability  RuleType = "disability"
	RuleTypeCitizenship RuleType = "citizenship"
	RuleTypeCategorical RuleType = "categorical"
	RuleTypeComposite   RuleType = "composite"
)

// Expression is one node of a declarative rule tree. Exactly one of the
// three forms is populated: an operator with arguments, a variable
// reference into the evaluation context, or a literal value.
type Expression struct {
	Op    string        `json:"op,omitempty"`
	Var   string        `json:"var,omitempty"`
	Value interface{}   `json:"value,omitempty"`
	Args  []*Expression `json:"args,omitempty"`
}

// IsVar reports whether the node is a variable reference.
func (e *Expression) IsVar() bool {
	return e != nil && e.Var != "" && e.Op == ""
}

// IsLiteral reports whether the node is a literal value node.
func (e *Expression) IsLiteral() bool {
	return e != nil && e.Op == "" && e.Var == ""
}

// Rule is a single authored eligibility rule. The Explanation text is
// display copy, but the threshold resolver also mines it for dollar
// figures when no increment table entry exists.
type Rule struct {
	ID          string      `json:"id"`
	ProgramID   string      `json:"programId"`
	Type        RuleType    `json:"type"`
	Name        string      `json:"name,omitempty"`
	Explanation string      `json:"explanation,omitempty"`
	Expression  *Expression `json:"expression"`
	Active      bool        `json:"active"`
}

// RuleSet groups the active rules of one program at a given version.
type RuleSet struct {
	ProgramID string `json:"programId"`
	Version   string `json:"version"`
	Rules     []Rule `json:"rules"`
}

// ActiveRules returns the rules flagged active, preserving order.
func (rs *RuleSet) ActiveRules() []Rule {
	out := make([]Rule, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		if r.Active {
			out = append(out, r)
		}
	}
	return out
}
