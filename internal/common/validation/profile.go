// internal/common/validation/profile.go
package validation

// ProfileSchema constrains the raw applicant profile document before it
// is decoded into the typed model. Income and household size carry hard
// bounds; enum fields reject unknown values early instead of letting
// them surface as unknown criteria downstream.
func ProfileSchema() JSONSchema {
	minSize := 1.0
	maxSize := 20.0
	minIncome := 0.0
	statePattern := "^[a-z]{2}$"

	return JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"id":            {Type: "string"},
			"householdSize": {Type: "number", Minimum: &minSize, Maximum: &maxSize},
			"income":        {Type: "number", Minimum: &minIncome},
			"incomePeriod":  {Type: "string", Enum: []string{"monthly", "annual"}},
			"dateOfBirth":   {Type: "string"},
			"age":           {Type: "number", Minimum: &minIncome},
			"citizenship": {Type: "string", Enum: []string{
				"citizen", "permanent_resident", "refugee", "asylee",
				"visa_holder", "undocumented", "other",
			}},
			"employment": {Type: "string", Enum: []string{
				"employed_full_time", "employed_part_time", "self_employed",
				"unemployed", "retired", "student", "unable_to_work",
			}},
			"hasDisability": {Type: "boolean"},
			"isPregnant":    {Type: "boolean"},
			"hasChildren":   {Type: "boolean"},
			"state":         {Type: "string", Pattern: &statePattern},
			"county":        {Type: "string"},
		},
		Required:             []string{"householdSize", "income"},
		AdditionalProperties: true,
	}
}

// ValidateProfile checks a raw profile document against ProfileSchema.
func ValidateProfile(input map[string]interface{}) *ValidationResult {
	return ValidateInput(input, ProfileSchema())
}
