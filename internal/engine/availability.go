package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/forceweaver/revenue-health/internal/models"
)

// standardObjects exist in every Salesforce org. Their absence means the
// connection or credentials are broken, not that a feature is missing.
var standardObjects = []string{"Organization", "User"}

// revenueCloudObjects only exist when Revenue Cloud (or the underlying
// Product Catalog Management feature set) is enabled.
var revenueCloudObjects = []string{
	"Product2",
	"ProductRelatedComponent",
	"AttributeDefinition",
	"AttributePicklist",
	"AttributePicklistValue",
	"ProductAttributeDefinition",
	"EntityDefinition",
}

// ObjectProber answers whether a single object is queryable.
type ObjectProber interface {
	ProbeObject(ctx context.Context, object string) error
}

// AvailabilityProbe determines which objects the connected org exposes so
// checks can be gated instead of failing with opaque query errors.
type AvailabilityProbe struct {
	logger *slog.Logger
	prober ObjectProber
}

// NewAvailabilityProbe constructs an AvailabilityProbe.
func NewAvailabilityProbe(logger *slog.Logger, prober ObjectProber) *AvailabilityProbe {
	if logger == nil {
		logger = slog.Default()
	}
	return &AvailabilityProbe{logger: logger, prober: prober}
}

// Run probes every known object and returns the availability report along
// with its own check result: failed when a standard object is missing,
// warning when only Revenue Cloud objects are missing, passed otherwise.
func (p *AvailabilityProbe) Run(ctx context.Context) (*models.AvailabilityReport, models.CheckResult) {
	report := &models.AvailabilityReport{Available: make(map[string]struct{})}

	probe := func(objects []string) []string {
		var missing []string
		for _, object := range objects {
			if err := p.prober.ProbeObject(ctx, object); err != nil {
				p.logger.Debug("object unavailable", "object", object, "error", err)
				report.Unavailable = append(report.Unavailable, models.ObjectError{Object: object, Err: err.Error()})
				missing = append(missing, object)
				continue
			}
			report.Available[object] = struct{}{}
		}
		return missing
	}

	missingStandard := probe(standardObjects)
	missingRC := probe(revenueCloudObjects)

	details := []string{
		fmt.Sprintf("Probed %d objects, %d available", len(standardObjects)+len(revenueCloudObjects), len(report.Available)),
	}
	for _, oe := range report.Unavailable {
		details = append(details, fmt.Sprintf("  - %s: %s", oe.Object, oe.Err))
	}

	switch {
	case len(missingStandard) > 0:
		return report, models.NewCheckResult(models.CheckObjectAvailability, "Object Availability",
			models.StatusFailed,
			fmt.Sprintf("Standard objects are not queryable: %v", missingStandard),
			details, models.SeverityError)
	case len(missingRC) > 0:
		return report, models.NewCheckResult(models.CheckObjectAvailability, "Object Availability",
			models.StatusWarning,
			fmt.Sprintf("%d Revenue Cloud objects are not available in this org", len(missingRC)),
			details, models.SeverityWarning)
	default:
		return report, models.NewCheckResult(models.CheckObjectAvailability, "Object Availability",
			models.StatusPassed, "All required objects are available", details, models.SeverityInfo)
	}
}
