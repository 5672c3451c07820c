// cmd/tools/ruleset-validator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jborgese/benefit-finder-sub003/pkg/rulespec"
)

func main() {
	dir := flag.String("dir", "data/rulesets", "Directory of rule set JSON files")
	verbose := flag.Bool("v", false, "Print per-rule details for valid files")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		entries, err := os.ReadDir(*dir)
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", *dir, err)
			os.Exit(1)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			paths = append(paths, filepath.Join(*dir, entry.Name()))
		}
		sort.Strings(paths)
	}

	if len(paths) == 0 {
		fmt.Println("No rule set files to validate.")
		os.Exit(1)
	}

	failures := 0
	for _, path := range paths {
		ruleSet, err := rulespec.LoadFile(path)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", path, err)
			failures++
			continue
		}

		active := len(ruleSet.ActiveRules())
		fmt.Printf("✅ %s: program %s v%s (%d rules, %d active)\n",
			path, ruleSet.ProgramID, ruleSet.Version, len(ruleSet.Rules), active)

		if *verbose {
			for _, rule := range ruleSet.Rules {
				state := "active"
				if !rule.Active {
					state = "inactive"
				}
				fmt.Printf("   - %s [%s] %s\n", rule.ID, state, rule.Name)
			}
		}
	}

	if failures > 0 {
		fmt.Printf("\n%d of %d files failed validation.\n", failures, len(paths))
		os.Exit(1)
	}
	fmt.Printf("\nAll %d files valid.\n", len(paths))
}
