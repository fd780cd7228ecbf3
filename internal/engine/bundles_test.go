package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/forceweaver/revenue-health/internal/models"
	"github.com/forceweaver/revenue-health/internal/salesforce"
)

func bundle(id, name string) salesforce.BundleProduct {
	return salesforce.BundleProduct{ID: id, Name: name, Type: "Bundle"}
}

func edge(parent, child, childType string) salesforce.ComponentEdge {
	return salesforce.ComponentEdge{ParentID: parent, ChildID: child, ChildName: "child-" + child, ChildType: childType}
}

func newTestAnalyzer() *BundleAnalyzer {
	return NewBundleAnalyzer(nil, DefaultBundleLimits(), NewCatalog())
}

func TestAnalyzeHierarchyDiamond(t *testing.T) {
	// A contains B and C, both of which contain D. D must be counted down
	// both branches.
	pcm := BuildParentChildMap([]salesforce.ComponentEdge{
		edge("A", "B", "Bundle"),
		edge("A", "C", "Bundle"),
		edge("B", "D", "Component"),
		edge("C", "D", "Component"),
	})

	a := newTestAnalyzer()
	depth, components := a.analyzeHierarchy("A", pcm, 1, map[string]struct{}{})
	if depth != 2 {
		t.Errorf("depth = %d, want 2", depth)
	}
	if components != 4 {
		t.Errorf("components = %d, want 4", components)
	}
}

func TestAnalyzeHierarchyTerminatesOnCycle(t *testing.T) {
	pcm := BuildParentChildMap([]salesforce.ComponentEdge{
		edge("A", "B", "Bundle"),
		edge("B", "A", "Bundle"),
	})

	a := newTestAnalyzer()
	depth, components := a.analyzeHierarchy("A", pcm, 1, map[string]struct{}{})
	if depth != 2 {
		t.Errorf("depth = %d, want 2", depth)
	}
	if components != 2 {
		t.Errorf("components = %d, want 2", components)
	}
}

func TestDetectCyclesFindsSingleCanonicalCycle(t *testing.T) {
	bundles := []salesforce.BundleProduct{bundle("A", "Alpha"), bundle("B", "Beta"), bundle("C", "Gamma")}
	pcm := BuildParentChildMap([]salesforce.ComponentEdge{
		edge("A", "B", "Bundle"),
		edge("B", "C", "Bundle"),
		edge("C", "A", "Bundle"),
	})

	a := newTestAnalyzer()
	cycles := a.DetectCycles(bundles, pcm)
	if len(cycles) != 1 {
		t.Fatalf("cycles = %d, want 1", len(cycles))
	}
	if cycles[0].Length != 3 {
		t.Errorf("cycle length = %d, want 3", cycles[0].Length)
	}
	path := strings.Join(cycles[0].Path, " -> ")
	if !strings.Contains(path, "Alpha") || !strings.Contains(path, "->") {
		t.Errorf("unexpected cycle path %q", path)
	}
	if cycles[0].Path[0] != cycles[0].Path[len(cycles[0].Path)-1] {
		t.Errorf("cycle path should close on its first node: %v", cycles[0].Path)
	}
}

func TestDetectCyclesDedupesRotations(t *testing.T) {
	// Same cycle is reachable from two entry points; rotations collapse
	// to a single record.
	bundles := []salesforce.BundleProduct{
		bundle("X", "EntryX"), bundle("Y", "EntryY"),
		bundle("A", "Alpha"), bundle("B", "Beta"),
	}
	pcm := BuildParentChildMap([]salesforce.ComponentEdge{
		edge("X", "A", "Bundle"),
		edge("Y", "B", "Bundle"),
		edge("A", "B", "Bundle"),
		edge("B", "A", "Bundle"),
	})

	a := newTestAnalyzer()
	cycles := a.DetectCycles(bundles, pcm)
	if len(cycles) != 1 {
		t.Fatalf("cycles = %d, want 1 after rotation dedup", len(cycles))
	}
	if cycles[0].Length != 2 {
		t.Errorf("cycle length = %d, want 2", cycles[0].Length)
	}
}

func TestDetectCyclesIgnoresDiamonds(t *testing.T) {
	bundles := []salesforce.BundleProduct{
		bundle("A", "Alpha"), bundle("B", "Beta"), bundle("C", "Gamma"), bundle("D", "Delta"),
	}
	pcm := BuildParentChildMap([]salesforce.ComponentEdge{
		edge("A", "B", "Bundle"),
		edge("A", "C", "Bundle"),
		edge("B", "D", "Bundle"),
		edge("C", "D", "Bundle"),
	})

	a := newTestAnalyzer()
	if cycles := a.DetectCycles(bundles, pcm); len(cycles) != 0 {
		t.Errorf("cycles = %d, want 0 for diamond graph", len(cycles))
	}
}

func TestAnalyzeComponentLimitOutcomes(t *testing.T) {
	makeFlat := func(children int) ([]salesforce.BundleProduct, map[string][]salesforce.ComponentEdge) {
		edges := make([]salesforce.ComponentEdge, 0, children)
		for i := 0; i < children; i++ {
			edges = append(edges, edge("ROOT", fmt.Sprintf("C%03d", i), "Component"))
		}
		return []salesforce.BundleProduct{bundle("ROOT", "Big Bundle")}, BuildParentChildMap(edges)
	}

	tests := []struct {
		children   int
		wantStatus models.Status
	}{
		{150, models.StatusPassed},
		{185, models.StatusWarning},
		{201, models.StatusFailed},
	}
	for _, tt := range tests {
		bundles, pcm := makeFlat(tt.children)
		result := newTestAnalyzer().Analyze(bundles, pcm)
		if result.Status != tt.wantStatus {
			t.Errorf("children=%d: status = %s, want %s", tt.children, result.Status, tt.wantStatus)
		}
	}
}

func TestAnalyzeDepthViolation(t *testing.T) {
	// A six-level chain of bundles exceeds the depth limit of five.
	var edges []salesforce.ComponentEdge
	var bundles []salesforce.BundleProduct
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("B%d", i)
		bundles = append(bundles, bundle(id, "Level "+id))
		if i > 0 {
			edges = append(edges, edge(fmt.Sprintf("B%d", i-1), id, "Bundle"))
		}
	}

	result := newTestAnalyzer().Analyze(bundles, BuildParentChildMap(edges))
	if result.Status != models.StatusFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}
	if result.Severity != models.SeverityError {
		t.Errorf("severity = %s, want error", result.Severity)
	}
	if !strings.Contains(result.Message, "depth violations") {
		t.Errorf("message %q should mention depth violations", result.Message)
	}
}

func TestAnalyzeNoBundles(t *testing.T) {
	result := newTestAnalyzer().Analyze(nil, map[string][]salesforce.ComponentEdge{})
	if result.Status != models.StatusInfo {
		t.Errorf("status = %s, want info for empty org", result.Status)
	}
}

func TestAnalyzeCycleProducesFailure(t *testing.T) {
	bundles := []salesforce.BundleProduct{bundle("A", "Alpha"), bundle("B", "Beta")}
	pcm := BuildParentChildMap([]salesforce.ComponentEdge{
		edge("A", "B", "Bundle"),
		edge("B", "A", "Bundle"),
	})

	result := newTestAnalyzer().Analyze(bundles, pcm)
	if result.Status != models.StatusFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}
	var sawCycleDetail bool
	for _, line := range result.Details {
		if strings.Contains(line, "circular dependencies detected") {
			sawCycleDetail = true
		}
	}
	if !sawCycleDetail {
		t.Errorf("details should report detected cycles: %v", result.Details)
	}
}
