package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/forceweaver/revenue-health/internal/models"
	"github.com/forceweaver/revenue-health/internal/salesforce"
)

// PicklistAnalyzer validates attribute picklist configuration: every active
// picklist should be referenced by an attribute definition and carry more
// than one value.
type PicklistAnalyzer struct {
	logger  *slog.Logger
	catalog *Catalog
}

// NewPicklistAnalyzer constructs a PicklistAnalyzer.
func NewPicklistAnalyzer(logger *slog.Logger, catalog *Catalog) *PicklistAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PicklistAnalyzer{logger: logger, catalog: catalog}
}

// Analyze walks every active picklist and classifies it under at most one
// category. Precedence per picklist: orphaned, then empty, then single-value.
func (a *PicklistAnalyzer) Analyze(picklists []salesforce.Picklist, definitions []salesforce.AttributeDefinition, values []salesforce.PicklistValue) models.CheckResult {
	defsByPicklist := make(map[string][]salesforce.AttributeDefinition, len(picklists))
	for _, def := range definitions {
		defsByPicklist[def.PicklistID] = append(defsByPicklist[def.PicklistID], def)
	}
	valuesByPicklist := make(map[string][]salesforce.PicklistValue, len(picklists))
	for _, v := range values {
		valuesByPicklist[v.PicklistID] = append(valuesByPicklist[v.PicklistID], v)
	}

	var orphaned, empty, singleValue []string
	for _, picklist := range picklists {
		defs := defsByPicklist[picklist.ID]
		if len(defs) == 0 {
			orphaned = append(orphaned,
				fmt.Sprintf("%s - Not referenced by any attribute definition", picklist.Name))
			continue
		}
		vals := valuesByPicklist[picklist.ID]
		if len(vals) == 0 {
			empty = append(empty,
				fmt.Sprintf("%s - No picklist values (used by: %s)", picklist.Name, definitionNames(defs)))
			continue
		}
		if len(vals) == 1 {
			display := vals[0].DisplayValue
			if display == "" {
				display = vals[0].Value
			}
			singleValue = append(singleValue,
				fmt.Sprintf("%s - Only one value: '%s' (used by: %s)", picklist.Name, display, definitionNames(defs)))
		}
	}

	details := []string{
		fmt.Sprintf("Analyzed %d active picklists and %d attribute definitions", len(picklists), len(definitions)),
	}
	if len(orphaned) > 0 {
		details = append(details, "Orphaned picklists:")
		details = append(details, indent(orphaned)...)
	}
	if len(empty) > 0 {
		details = append(details, "Empty picklists:")
		details = append(details, indent(empty)...)
	}
	if len(singleValue) > 0 {
		details = append(details, "Single-value picklists:")
		details = append(details, indent(singleValue)...)
	}

	switch {
	case len(orphaned)+len(empty) > 0:
		details = append(details, "Recommendations:")
		if len(orphaned) > 0 {
			details = append(details, indent(a.catalog.Lines(remedyOrphaned))...)
		}
		if len(empty) > 0 {
			details = append(details, indent(a.catalog.Lines(remedyEmpty))...)
		}
		if len(singleValue) > 0 {
			details = append(details, indent(a.catalog.Lines(remedySingleValue))...)
		}
		issues := make([]string, 0, 3)
		if n := len(orphaned); n > 0 {
			issues = append(issues, fmt.Sprintf("%d orphaned picklists", n))
		}
		if n := len(empty); n > 0 {
			issues = append(issues, fmt.Sprintf("%d empty picklists", n))
		}
		if n := len(singleValue); n > 0 {
			issues = append(issues, fmt.Sprintf("%d single-value picklists", n))
		}
		return models.NewCheckResult(models.CheckPicklistIntegrity, "Attribute Picklist Integrity",
			models.StatusFailed, "Found "+strings.Join(issues, ", "), details, models.SeverityError)
	case len(singleValue) > 0:
		details = append(details, "Recommendations:")
		details = append(details, indent(a.catalog.Lines(remedySingleValue))...)
		return models.NewCheckResult(models.CheckPicklistIntegrity, "Attribute Picklist Integrity",
			models.StatusWarning,
			fmt.Sprintf("Found %d single-value picklists that could be optimized", len(singleValue)),
			details, models.SeverityWarning)
	default:
		return models.NewCheckResult(models.CheckPicklistIntegrity, "Attribute Picklist Integrity",
			models.StatusPassed,
			"All attribute picklists are properly configured and referenced",
			details, models.SeverityInfo)
	}
}

func definitionNames(defs []salesforce.AttributeDefinition) string {
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	return strings.Join(names, ", ")
}
