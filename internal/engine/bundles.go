package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/forceweaver/revenue-health/internal/models"
	"github.com/forceweaver/revenue-health/internal/salesforce"
)

const bundleType = "Bundle"

// BundleLimits holds the platform constraints the analyzer validates against.
type BundleLimits struct {
	MaxDepth          int
	MaxComponents     int
	ComponentWarnOver int
}

// DefaultBundleLimits mirrors the documented Revenue Cloud platform limits.
func DefaultBundleLimits() BundleLimits {
	return BundleLimits{MaxDepth: 5, MaxComponents: 200, ComponentWarnOver: 180}
}

// BundleAnalyzer computes per-bundle depth and component totals and detects
// circular dependencies. It operates on plain in-memory data; no queries.
type BundleAnalyzer struct {
	logger  *slog.Logger
	limits  BundleLimits
	catalog *Catalog
}

// NewBundleAnalyzer constructs a BundleAnalyzer.
func NewBundleAnalyzer(logger *slog.Logger, limits BundleLimits, catalog *Catalog) *BundleAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if limits.MaxDepth <= 0 {
		limits = DefaultBundleLimits()
	}
	return &BundleAnalyzer{logger: logger, limits: limits, catalog: catalog}
}

// BuildParentChildMap groups component edges by parent ID. The map is built
// once per orchestration pass and shared read-only across analyses.
func BuildParentChildMap(edges []salesforce.ComponentEdge) map[string][]salesforce.ComponentEdge {
	pcm := make(map[string][]salesforce.ComponentEdge)
	for _, edge := range edges {
		pcm[edge.ParentID] = append(pcm[edge.ParentID], edge)
	}
	return pcm
}

type bundleStats struct {
	Name       string
	Depth      int
	Components int
}

// Analyze runs depth/component aggregation and cycle detection over all
// bundles and reduces the findings to a single check result.
func (a *BundleAnalyzer) Analyze(bundles []salesforce.BundleProduct, pcm map[string][]salesforce.ComponentEdge) models.CheckResult {
	if len(bundles) == 0 {
		return models.NewCheckResult(models.CheckBundleAnalysis, "Bundle Analysis",
			models.StatusInfo, "No active bundle products found in the org", nil, models.SeverityInfo)
	}

	stats := make([]bundleStats, 0, len(bundles))
	var depthViolations, componentViolations, componentWarnings []bundleStats
	for _, bundle := range bundles {
		depth, components := a.analyzeHierarchy(bundle.ID, pcm, 1, map[string]struct{}{})
		entry := bundleStats{Name: bundle.Name, Depth: depth, Components: components}
		stats = append(stats, entry)

		if depth > a.limits.MaxDepth {
			depthViolations = append(depthViolations, entry)
		}
		switch {
		case components > a.limits.MaxComponents:
			componentViolations = append(componentViolations, entry)
		case components > a.limits.ComponentWarnOver:
			componentWarnings = append(componentWarnings, entry)
		}
	}

	cycles := a.DetectCycles(bundles, pcm)

	details := a.describe(stats, cycles, depthViolations, componentViolations, componentWarnings)

	switch {
	case len(depthViolations)+len(componentViolations)+len(cycles) > 0:
		parts := make([]string, 0, 3)
		if n := len(depthViolations); n > 0 {
			parts = append(parts, fmt.Sprintf("%d depth violations", n))
		}
		if n := len(componentViolations); n > 0 {
			parts = append(parts, fmt.Sprintf("%d component violations", n))
		}
		if n := len(cycles); n > 0 {
			parts = append(parts, fmt.Sprintf("%d circular dependencies", n))
		}
		return models.NewCheckResult(models.CheckBundleAnalysis, "Bundle Analysis",
			models.StatusFailed, "Found "+strings.Join(parts, ", "), details, models.SeverityError)
	case len(componentWarnings) > 0:
		return models.NewCheckResult(models.CheckBundleAnalysis, "Bundle Analysis",
			models.StatusWarning,
			fmt.Sprintf("Found %d bundles approaching component limits", len(componentWarnings)),
			details, models.SeverityWarning)
	default:
		return models.NewCheckResult(models.CheckBundleAnalysis, "Bundle Analysis",
			models.StatusPassed,
			"All bundles are within recommended depth and component limits with no circular dependencies",
			details, models.SeverityInfo)
	}
}

// analyzeHierarchy walks one bundle's subtree. Every direct edge counts
// toward the component total; only bundle-typed children recurse. Each
// recursive call receives a copy of the visited-on-path set: a node reachable
// via two different paths is analyzed independently down each path, so
// diamond-shaped graphs aggregate correctly while a true cycle along a single
// path still terminates.
func (a *BundleAnalyzer) analyzeHierarchy(id string, pcm map[string][]salesforce.ComponentEdge, depth int, visited map[string]struct{}) (int, int) {
	if _, seen := visited[id]; seen {
		return depth, 0
	}
	visited[id] = struct{}{}

	edges := pcm[id]
	maxDepth := depth
	total := len(edges)
	for _, edge := range edges {
		if edge.ChildType != bundleType {
			continue
		}
		childDepth, childComponents := a.analyzeHierarchy(edge.ChildID, pcm, depth+1, copySet(visited))
		if childDepth > maxDepth {
			maxDepth = childDepth
		}
		total += childComponents
	}
	return maxDepth, total
}

func copySet(src map[string]struct{}) map[string]struct{} {
	dst := make(map[string]struct{}, len(src))
	for k := range src {
		dst[k] = struct{}{}
	}
	return dst
}

// dfs colors for cycle detection.
const (
	colorWhite = iota // unvisited
	colorGray         // on current recursion stack
	colorBlack        // finished
)

// DetectCycles runs three-color depth-first search over the bundle-only
// subgraph and returns the unique cycles found. Two cycles that are rotations
// of each other count once; the lexicographically minimum rotation of the
// node-ID sequence is the canonical key.
func (a *BundleAnalyzer) DetectCycles(bundles []salesforce.BundleProduct, pcm map[string][]salesforce.ComponentEdge) []models.CycleRecord {
	names := make(map[string]string, len(bundles))
	graph := make(map[string][]string, len(bundles))
	for _, bundle := range bundles {
		names[bundle.ID] = bundle.Name
		children := make([]string, 0)
		for _, edge := range pcm[bundle.ID] {
			if edge.ChildType == bundleType {
				children = append(children, edge.ChildID)
			}
		}
		graph[bundle.ID] = children
	}

	colors := make(map[string]int, len(graph))
	var cycles []models.CycleRecord

	var dfs func(node string, path []string)
	dfs = func(node string, path []string) {
		switch colors[node] {
		case colorGray:
			// Back edge: slice the path from the node's first occurrence.
			start := 0
			for i, id := range path {
				if id == node {
					start = i
					break
				}
			}
			nodeIDs := append([]string(nil), path[start:]...)
			display := make([]string, 0, len(nodeIDs)+1)
			for _, id := range nodeIDs {
				display = append(display, displayName(names, id))
			}
			display = append(display, displayName(names, node))
			cycles = append(cycles, models.CycleRecord{
				Path:    display,
				NodeIDs: nodeIDs,
				Length:  len(nodeIDs),
			})
			return
		case colorBlack:
			return
		}
		colors[node] = colorGray
		for _, child := range graph[node] {
			dfs(child, append(path, node))
		}
		colors[node] = colorBlack
	}

	for _, bundle := range bundles {
		if colors[bundle.ID] == colorWhite {
			dfs(bundle.ID, nil)
		}
	}

	return dedupeCycles(cycles)
}

func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}

func dedupeCycles(cycles []models.CycleRecord) []models.CycleRecord {
	seen := make(map[string]struct{}, len(cycles))
	unique := make([]models.CycleRecord, 0, len(cycles))
	for _, cycle := range cycles {
		key := canonicalRotation(cycle.NodeIDs)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, cycle)
	}
	return unique
}

// canonicalRotation returns the lexicographically minimum rotation of the
// node sequence, joined with a separator that cannot occur in record IDs.
func canonicalRotation(nodes []string) string {
	if len(nodes) == 0 {
		return ""
	}
	best := strings.Join(nodes, "\n")
	for i := 1; i < len(nodes); i++ {
		rotated := strings.Join(append(append([]string(nil), nodes[i:]...), nodes[:i]...), "\n")
		if rotated < best {
			best = rotated
		}
	}
	return best
}

func (a *BundleAnalyzer) describe(stats []bundleStats, cycles []models.CycleRecord, depthViolations, componentViolations, componentWarnings []bundleStats) []string {
	details := []string{fmt.Sprintf("Analyzed %d bundle products", len(stats))}

	maxDepth, maxComponents := 0, 0
	largest := stats[0]
	for _, s := range stats {
		if s.Depth > maxDepth {
			maxDepth = s.Depth
		}
		if s.Components > maxComponents {
			maxComponents = s.Components
		}
		if s.Components > largest.Components {
			largest = s
		}
	}

	details = append(details,
		"Summary statistics:",
		fmt.Sprintf("Maximum components found: %d", maxComponents),
		fmt.Sprintf("Bundle with most components: %s (%d components)", largest.Name, largest.Components),
		"Nested depth:",
		fmt.Sprintf("Maximum depth found: %d levels", maxDepth),
		"Circular bundle dependencies:")

	if len(cycles) > 0 {
		details = append(details, fmt.Sprintf("%d circular dependencies detected:", len(cycles)))
		for i, cycle := range cycles {
			details = append(details,
				fmt.Sprintf("  %d. %s", i+1, strings.Join(cycle.Path, " -> ")),
				fmt.Sprintf("     Cycle length: %d bundles", cycle.Length))
		}
	} else {
		details = append(details, "No circular dependencies found")
	}

	details = append(details, "Large bundle check:")
	sorted := append([]bundleStats(nil), stats...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Components > sorted[j].Components })
	for _, s := range sorted {
		details = append(details, fmt.Sprintf("  - %s: %d components", s.Name, s.Components))
	}

	if len(depthViolations) > 0 {
		details = append(details, fmt.Sprintf("Depth limit violations (> %d levels):", a.limits.MaxDepth))
		for _, v := range depthViolations {
			details = append(details, fmt.Sprintf("  %s: %d levels", v.Name, v.Depth))
		}
	}
	if len(componentViolations) > 0 {
		details = append(details, fmt.Sprintf("Component count violations (> %d components):", a.limits.MaxComponents))
		for _, v := range componentViolations {
			details = append(details, fmt.Sprintf("  %s: %d components", v.Name, v.Components))
		}
	}
	if len(componentWarnings) > 0 {
		details = append(details, fmt.Sprintf("Approaching component limit (> %d components):", a.limits.ComponentWarnOver))
		for _, w := range componentWarnings {
			details = append(details, fmt.Sprintf("  %s: %d/%d components", w.Name, w.Components, a.limits.MaxComponents))
		}
	}

	if len(cycles)+len(depthViolations)+len(componentViolations) > 0 {
		details = append(details, "Recommendations:")
		if len(cycles) > 0 {
			details = append(details, indent(a.catalog.Lines(remedyCycles))...)
		}
		if len(depthViolations) > 0 {
			details = append(details, indent(a.catalog.Lines(remedyDepth))...)
		}
		if len(componentViolations) > 0 {
			details = append(details, indent(a.catalog.Lines(remedyComponents))...)
		}
		details = append(details, indent(a.catalog.Lines(remedyBundleHealth))...)
	}

	return details
}

func indent(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, "  "+line)
	}
	return out
}
