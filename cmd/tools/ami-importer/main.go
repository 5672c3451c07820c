// cmd/tools/ami-importer/main.go
//
// Converts a HUD-style income limits CSV into the per-state JSON files
// the reference data loader reads. Expected columns:
//
//	state,county,year,household_size,ami
//
// Rows are grouped by state; one <state>.json file is written per
// state code found in the input.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

func main() {
	input := flag.String("input", "", "Path to the income limits CSV (required)")
	outDir := flag.String("out", "data/ami", "Output directory for per-state JSON files")
	flag.Parse()

	if *input == "" {
		fmt.Println("Error: -input is required.")
		flag.Usage()
		os.Exit(1)
	}

	states, err := parseCSV(*input)
	if err != nil {
		fmt.Printf("Error parsing %s: %v\n", *input, err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Printf("Error creating %s: %v\n", *outDir, err)
		os.Exit(1)
	}

	codes := make([]string, 0, len(states))
	for code := range states {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		path := filepath.Join(*outDir, code+".json")
		if err := writeState(path, states[code]); err != nil {
			fmt.Printf("Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s (%d counties)\n", path, len(states[code].Counties))
	}
}

func parseCSV(path string) (map[string]*models.StateAMIData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("missing header row: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"state", "county", "year", "household_size", "ami"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	states := map[string]*models.StateAMIData{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		state := strings.ToLower(strings.TrimSpace(record[cols["state"]]))
		county := strings.ToLower(strings.TrimSpace(record[cols["county"]]))
		if len(state) != 2 || county == "" {
			return nil, fmt.Errorf("line %d: bad state/county %q/%q", line, state, county)
		}

		year, err := strconv.Atoi(strings.TrimSpace(record[cols["year"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad year: %w", line, err)
		}
		size, err := strconv.Atoi(strings.TrimSpace(record[cols["household_size"]]))
		if err != nil || size < 1 {
			return nil, fmt.Errorf("line %d: bad household_size", line)
		}
		ami, err := strconv.ParseFloat(strings.TrimSpace(record[cols["ami"]]), 64)
		if err != nil || ami <= 0 {
			return nil, fmt.Errorf("line %d: bad ami", line)
		}

		data, ok := states[state]
		if !ok {
			data = &models.StateAMIData{State: state, Year: year}
			states[state] = data
		}
		if year > data.Year {
			data.Year = year
		}

		countyData := data.County(county)
		if countyData == nil {
			data.Counties = append(data.Counties, models.CountyAMI{
				County:          county,
				ByHouseholdSize: map[int]float64{},
			})
			countyData = &data.Counties[len(data.Counties)-1]
		}
		countyData.ByHouseholdSize[size] = ami
	}

	for _, data := range states {
		sort.Slice(data.Counties, func(i, j int) bool {
			return data.Counties[i].County < data.Counties[j].County
		})
	}

	return states, nil
}

func writeState(path string, data *models.StateAMIData) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(out, '\n'), 0o644)
}
