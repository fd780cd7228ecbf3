package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forceweaver/revenue-health/internal/models"
	"github.com/forceweaver/revenue-health/internal/salesforce"
)

// QueryClient is the full data-access surface the checker needs. The
// Salesforce client satisfies it; tests substitute fakes.
type QueryClient interface {
	ObjectProber
	OrgInfoFetcher
	OverrideCounter
	FetchActiveBundles(ctx context.Context) ([]salesforce.BundleProduct, error)
	FetchComponentEdges(ctx context.Context) ([]salesforce.ComponentEdge, error)
	FetchActivePicklists(ctx context.Context) ([]salesforce.Picklist, error)
	FetchPicklistDefinitions(ctx context.Context) ([]salesforce.AttributeDefinition, error)
	FetchPicklistValues(ctx context.Context) ([]salesforce.PicklistValue, error)
}

// Phase tracks where a health check run currently is. Exposed for
// observability; transitions are strictly forward.
type Phase int32

const (
	PhaseNotStarted Phase = iota
	PhaseProbing
	PhaseRunning
	PhaseScoring
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseProbing:
		return "probing"
	case PhaseRunning:
		return "running"
	case PhaseScoring:
		return "scoring"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// requiredObjects gates each check on the objects it queries. A check whose
// objects are missing is skipped with an informational result rather than
// run into a guaranteed query failure.
var requiredObjects = map[models.CheckKind][]string{
	models.CheckBasicOrgInfo:      {"Organization"},
	models.CheckOWDSharing:        {"EntityDefinition"},
	models.CheckBundleAnalysis:    {"Product2", "ProductRelatedComponent"},
	models.CheckAttributeOverride: {"Product2", "ProductRelatedComponent", "ProductAttributeDefinition"},
	models.CheckPicklistIntegrity: {"AttributePicklist", "AttributePicklistValue", "AttributeDefinition"},
}

// checkTitles gives each kind its human-readable name for gating results.
var checkTitles = map[models.CheckKind]string{
	models.CheckBasicOrgInfo:      "Basic Org Information",
	models.CheckOWDSharing:        "OWD Sharing Settings",
	models.CheckBundleAnalysis:    "Bundle Analysis",
	models.CheckAttributeOverride: "Attribute Override Check",
	models.CheckPicklistIntegrity: "Attribute Picklist Integrity",
}

// HealthChecker orchestrates a full health check pass: probe object
// availability, run every enabled check, and score the results. Run never
// returns an error; individual failures become failed check results.
type HealthChecker struct {
	logger    *slog.Logger
	client    QueryClient
	probe     *AvailabilityProbe
	org       *OrgAnalyzer
	bundles   *BundleAnalyzer
	overrides *OverrideAnalyzer
	picklists *PicklistAnalyzer

	mu    sync.Mutex
	phase Phase
}

// CheckerOptions tune the orchestrated analyzers.
type CheckerOptions struct {
	BundleLimits    BundleLimits
	OverrideLimit   int
	OverrideWorkers int
	Catalog         *Catalog
}

// NewHealthChecker wires the analyzers to a shared query client.
func NewHealthChecker(logger *slog.Logger, client QueryClient, opts CheckerOptions) *HealthChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthChecker{
		logger:    logger,
		client:    client,
		probe:     NewAvailabilityProbe(logger, client),
		org:       NewOrgAnalyzer(logger, client, opts.Catalog),
		bundles:   NewBundleAnalyzer(logger, opts.BundleLimits, opts.Catalog),
		overrides: NewOverrideAnalyzer(logger, client, opts.OverrideLimit, opts.OverrideWorkers, opts.Catalog),
		picklists: NewPicklistAnalyzer(logger, opts.Catalog),
	}
}

// Phase reports the checker's current phase.
func (h *HealthChecker) Phase() Phase {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.phase
}

func (h *HealthChecker) setPhase(p Phase) {
	h.mu.Lock()
	h.phase = p
	h.mu.Unlock()
}

// Run executes the full pass and returns the scored report.
func (h *HealthChecker) Run(ctx context.Context) models.Report {
	started := time.Now()
	h.setPhase(PhaseProbing)
	availability, availResult := h.probe.Run(ctx)

	h.setPhase(PhaseRunning)
	results := []models.CheckResult{availResult}
	standardBroken := availResult.Status == models.StatusFailed

	for _, kind := range []models.CheckKind{models.CheckBasicOrgInfo, models.CheckOWDSharing} {
		results = append(results, h.runGated(ctx, kind, availability, standardBroken, func(ctx context.Context) models.CheckResult {
			if kind == models.CheckBasicOrgInfo {
				return h.org.BasicOrgInfo(ctx)
			}
			return h.org.SharingModels(ctx)
		}))
	}

	results = append(results, h.runBundleChecks(ctx, availability, standardBroken)...)
	results = append(results, h.runGated(ctx, models.CheckPicklistIntegrity, availability, standardBroken, h.runPicklistCheck))

	h.setPhase(PhaseScoring)
	report := BuildReport(results, time.Now())
	h.setPhase(PhaseDone)
	h.logger.Info("health check completed",
		"duration", time.Since(started),
		"score", report.OverallHealth.Score,
		"grade", report.OverallHealth.Grade,
		"checks", len(results))
	return report
}

// runGated applies availability gating and panic isolation around one check.
func (h *HealthChecker) runGated(ctx context.Context, kind models.CheckKind, availability *models.AvailabilityReport, standardBroken bool, fn func(context.Context) models.CheckResult) (result models.CheckResult) {
	title := checkTitles[kind]
	if standardBroken {
		return models.NewCheckResult(kind, title, models.StatusFailed,
			"Skipped: standard objects are not queryable, the connection appears broken",
			nil, models.SeverityError)
	}
	if missing := missingObjects(kind, availability); len(missing) > 0 {
		return models.NewCheckResult(kind, title, models.StatusInfo,
			fmt.Sprintf("Skipped: required objects not available in this org: %v", missing),
			nil, models.SeverityInfo)
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("check panicked", "check", kind, "panic", r, "stack", string(debug.Stack()))
			result = models.NewCheckResult(kind, title, models.StatusFailed,
				fmt.Sprintf("Check aborted by internal error: %v", r), nil, models.SeverityError)
		}
	}()
	return fn(ctx)
}

// runBundleChecks shares one bundle and component fetch between the
// hierarchy analysis and the attribute override check, then runs both
// concurrently. Results merge in a fixed order regardless of completion.
func (h *HealthChecker) runBundleChecks(ctx context.Context, availability *models.AvailabilityReport, standardBroken bool) []models.CheckResult {
	gateBundle := h.gateOnly(models.CheckBundleAnalysis, availability, standardBroken)
	gateOverride := h.gateOnly(models.CheckAttributeOverride, availability, standardBroken)
	if gateBundle != nil && gateOverride != nil {
		return []models.CheckResult{*gateBundle, *gateOverride}
	}

	bundles, err := h.client.FetchActiveBundles(ctx)
	if err != nil {
		return h.bundleFetchFailure(gateBundle, gateOverride, "Could not retrieve bundle products", err)
	}
	edges, err := h.client.FetchComponentEdges(ctx)
	if err != nil {
		return h.bundleFetchFailure(gateBundle, gateOverride, "Could not retrieve bundle components", err)
	}
	pcm := BuildParentChildMap(edges)

	var bundleResult, overrideResult models.CheckResult
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	g.Go(func() error {
		bundleResult = h.isolated(models.CheckBundleAnalysis, gateBundle, func() models.CheckResult {
			return h.bundles.Analyze(bundles, pcm)
		})
		return nil
	})
	g.Go(func() error {
		overrideResult = h.isolated(models.CheckAttributeOverride, gateOverride, func() models.CheckResult {
			return h.overrides.Analyze(gctx, bundles, pcm)
		})
		return nil
	})
	_ = g.Wait()

	return []models.CheckResult{bundleResult, overrideResult}
}

func (h *HealthChecker) bundleFetchFailure(gateBundle, gateOverride *models.CheckResult, message string, err error) []models.CheckResult {
	h.logger.Warn("bundle data fetch failed", "error", err)
	results := make([]models.CheckResult, 0, 2)
	for kind, gated := range map[models.CheckKind]*models.CheckResult{
		models.CheckBundleAnalysis:    gateBundle,
		models.CheckAttributeOverride: gateOverride,
	} {
		if gated != nil {
			results = append(results, *gated)
			continue
		}
		results = append(results, models.NewCheckResult(kind, checkTitles[kind],
			models.StatusFailed, message, salesforce.DebugInfo(err), models.SeverityError))
	}
	// Map iteration order is random; restore the fixed order.
	if results[0].Kind != models.CheckBundleAnalysis {
		results[0], results[1] = results[1], results[0]
	}
	return results
}

// gateOnly returns the skip result for a check, or nil when it should run.
func (h *HealthChecker) gateOnly(kind models.CheckKind, availability *models.AvailabilityReport, standardBroken bool) *models.CheckResult {
	title := checkTitles[kind]
	if standardBroken {
		r := models.NewCheckResult(kind, title, models.StatusFailed,
			"Skipped: standard objects are not queryable, the connection appears broken",
			nil, models.SeverityError)
		return &r
	}
	if missing := missingObjects(kind, availability); len(missing) > 0 {
		r := models.NewCheckResult(kind, title, models.StatusInfo,
			fmt.Sprintf("Skipped: required objects not available in this org: %v", missing),
			nil, models.SeverityInfo)
		return &r
	}
	return nil
}

// isolated runs fn with panic recovery; a pre-computed gate result wins.
func (h *HealthChecker) isolated(kind models.CheckKind, gated *models.CheckResult, fn func() models.CheckResult) (result models.CheckResult) {
	if gated != nil {
		return *gated
	}
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("check panicked", "check", kind, "panic", r, "stack", string(debug.Stack()))
			result = models.NewCheckResult(kind, checkTitles[kind], models.StatusFailed,
				fmt.Sprintf("Check aborted by internal error: %v", r), nil, models.SeverityError)
		}
	}()
	return fn()
}

func (h *HealthChecker) runPicklistCheck(ctx context.Context) models.CheckResult {
	picklists, err := h.client.FetchActivePicklists(ctx)
	if err != nil {
		return models.NewCheckResult(models.CheckPicklistIntegrity, "Attribute Picklist Integrity",
			models.StatusFailed, "Could not retrieve attribute picklists",
			salesforce.DebugInfo(err), models.SeverityError)
	}
	definitions, err := h.client.FetchPicklistDefinitions(ctx)
	if err != nil {
		return models.NewCheckResult(models.CheckPicklistIntegrity, "Attribute Picklist Integrity",
			models.StatusFailed, "Could not retrieve attribute definitions",
			salesforce.DebugInfo(err), models.SeverityError)
	}
	values, err := h.client.FetchPicklistValues(ctx)
	if err != nil {
		return models.NewCheckResult(models.CheckPicklistIntegrity, "Attribute Picklist Integrity",
			models.StatusFailed, "Could not retrieve picklist values",
			salesforce.DebugInfo(err), models.SeverityError)
	}
	return h.picklists.Analyze(picklists, definitions, values)
}

func missingObjects(kind models.CheckKind, availability *models.AvailabilityReport) []string {
	var missing []string
	for _, object := range requiredObjects[kind] {
		if !availability.Has(object) {
			missing = append(missing, object)
		}
	}
	return missing
}
