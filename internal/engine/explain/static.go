// internal/engine/explain/static.go
package explain

import (
	"strings"

	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

// staticReason is a program-specific explanation line emitted when its
// predicate matches the raw result. Predicates inspect criteria by
// name, never the profile, so the tables stay decoupled from input
// shapes.
type staticReason struct {
	when func(*models.RawProgramResult) bool
	text string
}

func criterionUnmet(substr string) func(*models.RawProgramResult) bool {
	return func(raw *models.RawProgramResult) bool {
		for _, c := range raw.Criteria {
			if c.Unknown || c.Met {
				continue
			}
			if strings.Contains(strings.ToLower(c.Name), substr) {
				return true
			}
		}
		return false
	}
}

func criterionUnknown(substr string) func(*models.RawProgramResult) bool {
	return func(raw *models.RawProgramResult) bool {
		for _, c := range raw.Criteria {
			if !c.Unknown {
				continue
			}
			if strings.Contains(strings.ToLower(c.Name), substr) {
				return true
			}
		}
		return false
	}
}

// disqualificationReasons holds per-program texts for not-qualified
// results, gated on which criterion failed.
var disqualificationReasons = map[string][]staticReason{
	"wic": {
		{criterionUnmet("pregnan"), "WIC serves pregnant or postpartum women and children under 5; your household does not currently include either."},
		{criterionUnmet("income"), "Your household income is above the WIC limit of 185% of the federal poverty level."},
	},
	"snap": {
		{criterionUnmet("income"), "Your gross monthly income is above the SNAP limit of 130% of the federal poverty level."},
		{criterionUnmet("employment"), "SNAP work requirements apply to able-bodied adults without dependents."},
	},
	"medicaid": {
		{criterionUnmet("income"), "Your household income is above your state's Medicaid limit; you may still qualify for subsidized marketplace coverage."},
		{criterionUnmet("citizen"), "Medicaid generally requires U.S. citizenship or a qualified immigration status."},
	},
	"section8": {
		{criterionUnmet("income"), "Your household income is above 50% of the area median income for your county."},
	},
	"liheap": {
		{criterionUnmet("income"), "Your household income is above your state's LIHEAP limit."},
	},
	"tanf": {
		{criterionUnmet("child"), "TANF assists families with dependent children; your household does not currently include any."},
		{criterionUnmet("income"), "Your household income is above your state's TANF limit."},
	},
}

// clarificationReasons holds per-program "what to provide" texts for
// maybe results, gated on which criterion could not be determined.
var clarificationReasons = map[string][]staticReason{
	"wic": {
		{criterionUnknown("pregnan"), "Confirm whether anyone in the household is pregnant or postpartum."},
		{criterionUnknown("income"), "Provide household income documentation to confirm WIC eligibility."},
	},
	"snap": {
		{criterionUnknown("income"), "Provide income documentation for the last 30 days to confirm SNAP eligibility."},
		{criterionUnknown("citizen"), "Confirm the citizenship or immigration status of household members."},
	},
	"medicaid": {
		{criterionUnknown("income"), "Provide current income documentation to confirm Medicaid eligibility."},
	},
	"section8": {
		{criterionUnknown("income"), "Area income limits for your county could not be determined; confirm your county with the local housing agency."},
	},
	"liheap": {
		{criterionUnknown("income"), "Provide income documentation for all household members."},
	},
	"tanf": {
		{criterionUnknown("child"), "Confirm whether dependent children live in the household."},
	},
}

func staticDetails(table map[string][]staticReason, raw *models.RawProgramResult) []string {
	var details []string
	for _, entry := range table[raw.ProgramID] {
		if entry.when(raw) {
			details = append(details, entry.text)
		}
	}
	return details
}
