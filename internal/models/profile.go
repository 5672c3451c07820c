// internal/models/profile.go
package models

import "time"

type IncomePeriod string

const (
	IncomePeriodMonthly IncomePeriod = "monthly"
	IncomePeriodAnnual  IncomePeriod = "annual"
)

type CitizenshipStatus string

const (
	CitizenshipCitizen           CitizenshipStatus = "citizen"
	CitizenshipPermanentResident CitizenshipStatus = "permanent_resident"
	CitizenshipRefugee           CitizenshipStatus = "refugee"
	CitizenshipAsylee            CitizenshipStatus = "asylee"
	CitizenshipVisaHolder        CitizenshipStatus = "visa_holder"
	CitizenshipUndocumented      CitizenshipStatus = "undocumented"
	CitizenshipOther             CitizenshipStatus = "other"
)

type EmploymentStatus string

const (
	EmploymentFullTime     EmploymentStatus = "employed_full_time"
	EmploymentPartTime     EmploymentStatus = "employed_part_time"
	EmploymentSelfEmployed EmploymentStatus = "self_employed"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
	EmploymentRetired      EmploymentStatus = "retired"
	EmploymentStudent      EmploymentStatus = "student"
	EmploymentUnableToWork EmploymentStatus = "unable_to_work"
)

// Profile holds the household attributes evaluation runs against.
// Treated as read-only once an evaluation starts.
type Profile struct {
	ID            string            `json:"id"`
	HouseholdSize int               `json:"householdSize"`
	Income        float64           `json:"income"`
	IncomePeriod  IncomePeriod      `json:"incomePeriod"`
	DateOfBirth   string            `json:"dateOfBirth,omitempty"` // YYYY-MM-DD
	Age           int               `json:"age,omitempty"`
	Citizenship   CitizenshipStatus `json:"citizenship"`
	Employment    EmploymentStatus  `json:"employment"`
	HasDisability bool              `json:"hasDisability"`
	IsPregnant    bool              `json:"isPregnant"`
	HasChildren   bool              `json:"hasChildren"`
	State         string            `json:"state,omitempty"`
	County        string            `json:"county,omitempty"`
}

// AnnualIncome normalizes the reported income to an annual figure.
func (p *Profile) AnnualIncome() float64 {
	if p.IncomePeriod == IncomePeriodMonthly {
		return p.Income * 12
	}
	return p.Income
}

// MonthlyIncome normalizes the reported income to a monthly figure.
func (p *Profile) MonthlyIncome() float64 {
	if p.IncomePeriod == IncomePeriodMonthly {
		return p.Income
	}
	return p.Income / 12
}

// ResolveAge returns the profile's age, deriving it from the date of
// birth when an explicit age is not set. The second return value is
// false when neither field yields a usable age.
func (p *Profile) ResolveAge(now time.Time) (int, bool) {
	if p.Age > 0 {
		return p.Age, true
	}
	if p.DateOfBirth == "" {
		return 0, false
	}
	dob, err := time.Parse("2006-01-02", p.DateOfBirth)
	if err != nil {
		return 0, false
	}
	age := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}
