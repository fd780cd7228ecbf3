package engine

import (
	"strings"
	"testing"

	"github.com/forceweaver/revenue-health/internal/models"
	"github.com/forceweaver/revenue-health/internal/salesforce"
)

func picklist(id, name string) salesforce.Picklist {
	return salesforce.Picklist{ID: id, Name: name, Status: "Active"}
}

func definition(id, name, picklistID string) salesforce.AttributeDefinition {
	return salesforce.AttributeDefinition{ID: id, Name: name, PicklistID: picklistID}
}

func value(id, picklistID, v string) salesforce.PicklistValue {
	return salesforce.PicklistValue{ID: id, PicklistID: picklistID, Value: v}
}

func TestPicklistAnalyzerAllHealthy(t *testing.T) {
	a := NewPicklistAnalyzer(nil, NewCatalog())
	result := a.Analyze(
		[]salesforce.Picklist{picklist("P1", "Colors")},
		[]salesforce.AttributeDefinition{definition("D1", "Color", "P1")},
		[]salesforce.PicklistValue{value("V1", "P1", "Red"), value("V2", "P1", "Blue")},
	)
	if result.Status != models.StatusPassed {
		t.Fatalf("status = %s, want passed", result.Status)
	}
}

func TestPicklistAnalyzerOrphanedPicklist(t *testing.T) {
	// An active picklist with values but no referencing attribute
	// definition is orphaned and fails the check.
	a := NewPicklistAnalyzer(nil, NewCatalog())
	result := a.Analyze(
		[]salesforce.Picklist{picklist("P1", "Colors")},
		nil,
		[]salesforce.PicklistValue{value("V1", "P1", "Red"), value("V2", "P1", "Blue")},
	)
	if result.Status != models.StatusFailed {
		t.Fatalf("status = %s, want failed for an orphaned picklist", result.Status)
	}
	if result.Severity != models.SeverityError {
		t.Errorf("severity = %s, want error", result.Severity)
	}
	if !strings.Contains(result.Message, "1 orphaned picklists") {
		t.Errorf("message = %q, want orphaned count", result.Message)
	}
}

func TestPicklistAnalyzerEmptyPicklist(t *testing.T) {
	a := NewPicklistAnalyzer(nil, NewCatalog())
	result := a.Analyze(
		[]salesforce.Picklist{picklist("P1", "Colors")},
		[]salesforce.AttributeDefinition{definition("D1", "Color", "P1")},
		nil,
	)
	if result.Status != models.StatusFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}
	var sawUsage bool
	for _, line := range result.Details {
		if strings.Contains(line, "used by: Color") {
			sawUsage = true
		}
	}
	if !sawUsage {
		t.Errorf("details should name the referencing definitions: %v", result.Details)
	}
}

func TestPicklistAnalyzerSingleValueIsWarning(t *testing.T) {
	a := NewPicklistAnalyzer(nil, NewCatalog())
	result := a.Analyze(
		[]salesforce.Picklist{picklist("P1", "Colors")},
		[]salesforce.AttributeDefinition{definition("D1", "Color", "P1")},
		[]salesforce.PicklistValue{value("V1", "P1", "Red")},
	)
	if result.Status != models.StatusWarning {
		t.Fatalf("status = %s, want warning", result.Status)
	}
	if !strings.Contains(result.Message, "single-value picklists that could be optimized") {
		t.Errorf("message = %q", result.Message)
	}
}

func TestPicklistAnalyzerPrecedence(t *testing.T) {
	// Each picklist lands in exactly one category: an orphaned picklist is
	// never also reported as empty, and empty wins over single-value.
	a := NewPicklistAnalyzer(nil, NewCatalog())
	result := a.Analyze(
		[]salesforce.Picklist{
			picklist("P1", "Orphan"),
			picklist("P2", "Hollow"),
			picklist("P3", "Lone"),
		},
		[]salesforce.AttributeDefinition{
			definition("D2", "Size", "P2"),
			definition("D3", "Shade", "P3"),
		},
		[]salesforce.PicklistValue{value("V1", "P3", "Small")},
	)
	if result.Status != models.StatusFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}
	if !strings.Contains(result.Message, "1 orphaned picklists") ||
		!strings.Contains(result.Message, "1 empty picklists") ||
		!strings.Contains(result.Message, "1 single-value picklists") {
		t.Errorf("message = %q, want all three categories counted once", result.Message)
	}
	var orphanLines, emptyLines int
	for _, line := range result.Details {
		if strings.Contains(line, "Orphan -") {
			orphanLines++
		}
		if strings.Contains(line, "Hollow -") {
			emptyLines++
		}
	}
	if orphanLines != 1 || emptyLines != 1 {
		t.Errorf("each picklist should appear in one category: %v", result.Details)
	}
}

func TestPicklistAnalyzerNoPicklists(t *testing.T) {
	a := NewPicklistAnalyzer(nil, NewCatalog())
	result := a.Analyze(nil, nil, nil)
	if result.Status != models.StatusPassed {
		t.Errorf("status = %s, want passed with nothing to analyze", result.Status)
	}
}
