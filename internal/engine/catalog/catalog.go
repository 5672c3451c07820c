// internal/engine/catalog/catalog.go
package catalog

import "github.com/jborgese/benefit-finder-sub003/internal/models"

// Entry bundles the display metadata attached to a categorized result:
// program identity, paperwork, next steps, and the typical benefit.
type Entry struct {
	Info              models.ProgramInfo
	RequiredDocuments []string
	NextSteps         []string
	EstimatedBenefit  *models.EstimatedBenefit
}

// Catalog resolves program metadata by program id. Unknown programs get
// a minimal entry so categorization never fails on missing metadata.
type Catalog struct {
	entries map[string]Entry
}

func New() *Catalog {
	return &Catalog{entries: defaultEntries()}
}

// Register adds or replaces a program entry. Config-driven overrides
// land here at startup.
func (c *Catalog) Register(entry Entry) {
	c.entries[entry.Info.ID] = entry
}

func (c *Catalog) Lookup(programID string) Entry {
	if entry, ok := c.entries[programID]; ok {
		return entry
	}
	return Entry{Info: models.ProgramInfo{ID: programID, Name: programID}}
}

func defaultEntries() map[string]Entry {
	entries := []Entry{
		{
			Info: models.ProgramInfo{ID: "snap", Name: "Supplemental Nutrition Assistance Program", Category: "food", Agency: "USDA"},
			RequiredDocuments: []string{
				"Proof of identity",
				"Proof of income for the last 30 days",
				"Proof of residency",
			},
			NextSteps: []string{
				"Apply through your state SNAP office",
				"Schedule an eligibility interview",
			},
			EstimatedBenefit: &models.EstimatedBenefit{Amount: 291, Frequency: "monthly"},
		},
		{
			Info: models.ProgramInfo{ID: "wic", Name: "Women, Infants, and Children", Category: "food", Agency: "USDA"},
			RequiredDocuments: []string{
				"Proof of identity",
				"Proof of income",
				"Proof of pregnancy or children under 5",
			},
			NextSteps: []string{
				"Contact your local WIC clinic",
				"Bring the child or proof of pregnancy to the appointment",
			},
			EstimatedBenefit: &models.EstimatedBenefit{Amount: 62, Frequency: "monthly"},
		},
		{
			Info: models.ProgramInfo{ID: "medicaid", Name: "Medicaid", Category: "health", Agency: "CMS"},
			RequiredDocuments: []string{
				"Proof of identity",
				"Proof of income",
				"Proof of citizenship or immigration status",
			},
			NextSteps: []string{
				"Apply through your state Medicaid agency or the federal marketplace",
			},
		},
		{
			Info: models.ProgramInfo{ID: "liheap", Name: "Low Income Home Energy Assistance Program", Category: "utilities", Agency: "HHS"},
			RequiredDocuments: []string{
				"Recent utility bills",
				"Proof of income for all household members",
			},
			NextSteps: []string{
				"Apply through your state LIHEAP office before the seasonal deadline",
			},
			EstimatedBenefit: &models.EstimatedBenefit{Amount: 500, Frequency: "one-time"},
		},
		{
			Info: models.ProgramInfo{ID: "section8", Name: "Housing Choice Voucher Program", Category: "housing", Agency: "HUD"},
			RequiredDocuments: []string{
				"Proof of income for all household members",
				"Birth certificates for all household members",
				"Social Security cards",
			},
			NextSteps: []string{
				"Contact your local public housing agency",
				"Join the waiting list; openings are limited",
			},
		},
		{
			Info: models.ProgramInfo{ID: "tanf", Name: "Temporary Assistance for Needy Families", Category: "cash", Agency: "HHS"},
			RequiredDocuments: []string{
				"Proof of identity",
				"Proof of income",
				"Proof of children in the household",
			},
			NextSteps: []string{
				"Apply through your state TANF office",
			},
			EstimatedBenefit: &models.EstimatedBenefit{Amount: 498, Frequency: "monthly"},
		},
	}

	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.Info.ID] = e
	}
	return m
}
