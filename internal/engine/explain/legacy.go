// internal/engine/explain/legacy.go
package explain

import (
	"encoding/json"
	"fmt"

	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

// LegacyExplanation is the older persisted explanation shape, with
// reasoning/criteria field names instead of the canonical
// reason/details pair. It survives only at the decode boundary.
type LegacyExplanation struct {
	Reasoning  string   `json:"reasoning"`
	Confidence int      `json:"confidence,omitempty"`
	Criteria   []string `json:"criteria,omitempty"`
	Rules      []string `json:"rules,omitempty"`
}

// Document is the tagged union of the two explanation shapes. Exactly
// one side is set after a successful decode.
type Document struct {
	Canonical *models.Explanation
	Legacy    *LegacyExplanation
}

// Normalize collapses the union into the canonical shape. A pure
// function of the document; legacy fields map positionally.
func (d Document) Normalize() models.Explanation {
	if d.Canonical != nil {
		return *d.Canonical
	}
	if d.Legacy != nil {
		return models.Explanation{
			Reason:     d.Legacy.Reasoning,
			Details:    d.Legacy.Criteria,
			RulesCited: d.Legacy.Rules,
		}
	}
	return models.Explanation{}
}

// DecodeDocument distinguishes the two shapes by their discriminating
// fields: "reason" marks canonical, "reasoning" marks legacy. Canonical
// wins when both appear.
func DecodeDocument(data []byte) (Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Document{}, fmt.Errorf("invalid explanation document: %w", err)
	}

	if _, ok := probe["reason"]; ok {
		var canonical models.Explanation
		if err := json.Unmarshal(data, &canonical); err != nil {
			return Document{}, fmt.Errorf("invalid canonical explanation: %w", err)
		}
		return Document{Canonical: &canonical}, nil
	}

	if _, ok := probe["reasoning"]; ok {
		var legacy LegacyExplanation
		if err := json.Unmarshal(data, &legacy); err != nil {
			return Document{}, fmt.Errorf("invalid legacy explanation: %w", err)
		}
		return Document{Legacy: &legacy}, nil
	}

	return Document{}, fmt.Errorf("explanation document has neither reason nor reasoning field")
}
