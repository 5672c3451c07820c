// pkg/rulespec/rulespec.go
package rulespec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "github.com/jborgese/benefit-finder-sub003/internal/common/errors"
	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

// Validate checks a rule-set document against the envelope schema.
func Validate(document []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(ruleSetSchema)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("rule set validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Parse validates and decodes a rule-set document. Beyond the schema it
// checks that every expression node takes exactly one of its three
// forms and that rule program IDs agree with the envelope.
func Parse(document []byte) (*models.RuleSet, error) {
	if err := Validate(document); err != nil {
		return nil, apperrors.NewRuleSetInvalidError("", err.Error())
	}

	var ruleSet models.RuleSet
	if err := json.Unmarshal(document, &ruleSet); err != nil {
		return nil, apperrors.NewRuleSetInvalidError("", fmt.Sprintf("decode: %v", err))
	}

	for _, rule := range ruleSet.Rules {
		if rule.ProgramID != ruleSet.ProgramID {
			return nil, apperrors.NewRuleSetInvalidError(ruleSet.ProgramID,
				fmt.Sprintf("rule %q belongs to program %q", rule.ID, rule.ProgramID))
		}
		if err := checkExpression(rule.Expression); err != nil {
			return nil, apperrors.NewRuleSetInvalidError(ruleSet.ProgramID,
				fmt.Sprintf("rule %q: %v", rule.ID, err))
		}
	}

	return &ruleSet, nil
}

// LoadFile parses a single rule-set document from disk.
func LoadFile(path string) (*models.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule set file: %w", err)
	}
	return Parse(data)
}

// LoadDir loads every *.json rule-set document in dir, keyed by program
// ID. File names are read in sorted order; a later file for the same
// program replaces the earlier one.
func LoadDir(dir string) (map[string]*models.RuleSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule set directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	ruleSets := make(map[string]*models.RuleSet, len(names))
	for _, name := range names {
		ruleSet, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		ruleSets[ruleSet.ProgramID] = ruleSet
	}

	return ruleSets, nil
}

func checkExpression(expr *models.Expression) error {
	if expr == nil {
		return fmt.Errorf("missing expression")
	}

	switch {
	case expr.Op != "":
		if expr.Var != "" {
			return fmt.Errorf("node mixes op %q with var %q", expr.Op, expr.Var)
		}
		if len(expr.Args) == 0 {
			return fmt.Errorf("op %q has no arguments", expr.Op)
		}
		for _, arg := range expr.Args {
			if err := checkExpression(arg); err != nil {
				return err
			}
		}
	case expr.Var != "":
		if len(expr.Args) > 0 {
			return fmt.Errorf("var %q has arguments", expr.Var)
		}
	default:
		if len(expr.Args) > 0 {
			return fmt.Errorf("literal node has arguments")
		}
	}

	return nil
}
