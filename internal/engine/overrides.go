package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/forceweaver/revenue-health/internal/models"
	"github.com/forceweaver/revenue-health/internal/salesforce"
)

// OverrideCounter counts attribute override rows for a set of product IDs.
type OverrideCounter interface {
	CountAttributeOverrides(ctx context.Context, productIDs []string) (int, error)
}

// OverrideAnalyzer validates the per-bundle attribute override ceiling. The
// count for a bundle covers the whole subtree: the bundle itself plus every
// product reachable through its component hierarchy.
type OverrideAnalyzer struct {
	logger  *slog.Logger
	counter OverrideCounter
	limit   int
	workers int
	catalog *Catalog
}

// NewOverrideAnalyzer constructs an OverrideAnalyzer. limit and workers fall
// back to the platform default (600) and 3 when non-positive.
func NewOverrideAnalyzer(logger *slog.Logger, counter OverrideCounter, limit, workers int, catalog *Catalog) *OverrideAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = 600
	}
	if workers <= 0 {
		workers = 3
	}
	return &OverrideAnalyzer{logger: logger, counter: counter, limit: limit, workers: workers, catalog: catalog}
}

type overrideOutcome struct {
	Bundle salesforce.BundleProduct
	Count  int
	Err    error
}

// Analyze resolves each bundle's product closure, counts overrides with a
// bounded worker pool, and reduces the outcomes to a single check result.
// Worker results land in per-index slots; only the calling goroutine reads
// them after Wait returns.
func (a *OverrideAnalyzer) Analyze(ctx context.Context, bundles []salesforce.BundleProduct, pcm map[string][]salesforce.ComponentEdge) models.CheckResult {
	if len(bundles) == 0 {
		return models.NewCheckResult(models.CheckAttributeOverride, "Attribute Override Check",
			models.StatusPassed, "No bundle products found in the org.", nil, models.SeverityInfo)
	}

	outcomes := make([]overrideOutcome, len(bundles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, bundle := range bundles {
		g.Go(func() error {
			ids := collectProductClosure(bundle.ID, pcm)
			count, err := a.counter.CountAttributeOverrides(gctx, ids)
			outcomes[i] = overrideOutcome{Bundle: bundle, Count: count, Err: err}
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()

	var violations, queryErrors, details []string
	details = append(details, fmt.Sprintf("Checked %d bundle products for attribute overrides", len(bundles)))
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			a.logger.Warn("attribute override count failed",
				"bundle", outcome.Bundle.Name, "error", outcome.Err)
			queryErrors = append(queryErrors,
				fmt.Sprintf("Error processing bundle '%s': %v", outcome.Bundle.Name, outcome.Err))
			continue
		}
		details = append(details, fmt.Sprintf("  - %s: %d attribute overrides", outcome.Bundle.Name, outcome.Count))
		if outcome.Count > a.limit {
			violations = append(violations,
				fmt.Sprintf("Bundle '%s' has %d attributes, which exceeds the limit of %d.",
					outcome.Bundle.Name, outcome.Count, a.limit))
		}
	}

	// Any query error fails the check: the limit may already be breached
	// behind the failing count.
	if len(violations)+len(queryErrors) > 0 {
		if len(violations) > 0 {
			details = append(details, "Violations:")
			details = append(details, indent(violations)...)
			details = append(details, "Recommendations:")
			details = append(details, indent(a.catalog.Lines(remedyOverrides))...)
		}
		if len(queryErrors) > 0 {
			details = append(details, "Errors:")
			details = append(details, indent(queryErrors)...)
		}
		messages := make([]string, 0, 2)
		if n := len(violations); n > 0 {
			messages = append(messages, fmt.Sprintf("%d bundle(s) exceeded the attribute limit", n))
		}
		if n := len(queryErrors); n > 0 {
			messages = append(messages, fmt.Sprintf("encountered errors on %d bundle(s)", n))
		}
		return models.NewCheckResult(models.CheckAttributeOverride, "Attribute Override Check",
			models.StatusFailed, strings.Join(messages, ", and ")+".",
			details, models.SeverityError)
	}

	return models.NewCheckResult(models.CheckAttributeOverride, "Attribute Override Check",
		models.StatusPassed,
		"All bundles are within the recommended attribute override limits.",
		details, models.SeverityInfo)
}

// collectProductClosure gathers the bundle plus every product reachable
// through component edges. The visited set is shared across the whole
// traversal, so cycles terminate and shared subtrees are collected once.
func collectProductClosure(rootID string, pcm map[string][]salesforce.ComponentEdge) []string {
	visited := map[string]struct{}{rootID: {}}
	order := []string{rootID}
	stack := []string{rootID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, edge := range pcm[current] {
			if _, seen := visited[edge.ChildID]; seen {
				continue
			}
			visited[edge.ChildID] = struct{}{}
			order = append(order, edge.ChildID)
			stack = append(stack, edge.ChildID)
		}
	}
	return order
}
