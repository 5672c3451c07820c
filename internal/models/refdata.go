// internal/models/refdata.go
package models

import "time"

// ReferenceDataEntry is one cached area-median-income figure with its
// derived program income limits.
type ReferenceDataEntry struct {
	State         string    `json:"state"`
	County        string    `json:"county"`
	Year          int       `json:"year"`
	HouseholdSize int       `json:"householdSize"`
	AMI           float64   `json:"ami"`
	IncomeLimit50 float64   `json:"incomeLimit50"`
	IncomeLimit60 float64   `json:"incomeLimit60"`
	IncomeLimit80 float64   `json:"incomeLimit80"`
	FetchedAt     time.Time `json:"fetchedAt"`
}

// CountyAMI is the tabulated AMI-by-household-size data for one county.
// Household sizes above the largest tabulated bracket (typically 8)
// fall back to that bracket's figure.
type CountyAMI struct {
	County          string          `json:"county"`
	ByHouseholdSize map[int]float64 `json:"amiByHouseholdSize"`
}

// StateAMIData is the on-disk shape of one per-state reference file,
// identified by a lowercase two-letter state code.
type StateAMIData struct {
	State    string      `json:"state"`
	Year     int         `json:"year"`
	Counties []CountyAMI `json:"counties"`
}

// County returns the tabulated data for the named county, nil if absent.
// Matching is case-insensitive on the caller's side; stored county names
// are lowercase.
func (s *StateAMIData) County(name string) *CountyAMI {
	for i := range s.Counties {
		if s.Counties[i].County == name {
			return &s.Counties[i]
		}
	}
	return nil
}
