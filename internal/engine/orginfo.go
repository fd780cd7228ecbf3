package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/forceweaver/revenue-health/internal/models"
	"github.com/forceweaver/revenue-health/internal/salesforce"
)

// pcmObjects are the Product Catalog Management objects whose org-wide
// sharing defaults must permit read access for Revenue Cloud to function.
var pcmObjects = []string{
	"Product2",
	"Catalog",
	"Category",
	"AttributeDefinition",
	"AttributeCategory",
	"ProductClassification",
	"ProductSellingModel",
	"Pricebook2",
	"PricebookEntry",
	"ProductQualificationRule",
	"ProductDisqualificationRule",
	"DecisionMatrix",
	"ExpressionSet",
}

// OrgInfoFetcher supplies organization metadata and sharing settings.
type OrgInfoFetcher interface {
	FetchOrgInfo(ctx context.Context) (*salesforce.OrgInfo, error)
	FetchSharingModels(ctx context.Context, objects []string) ([]salesforce.SharingModel, error)
}

// OrgAnalyzer runs the basic org info and sharing model checks.
type OrgAnalyzer struct {
	logger  *slog.Logger
	fetcher OrgInfoFetcher
	catalog *Catalog
}

// NewOrgAnalyzer constructs an OrgAnalyzer.
func NewOrgAnalyzer(logger *slog.Logger, fetcher OrgInfoFetcher, catalog *Catalog) *OrgAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrgAnalyzer{logger: logger, fetcher: fetcher, catalog: catalog}
}

// BasicOrgInfo reports the org's identity and edition. A reachable org that
// returns data passes; anything else fails.
func (a *OrgAnalyzer) BasicOrgInfo(ctx context.Context) models.CheckResult {
	info, err := a.fetcher.FetchOrgInfo(ctx)
	if err != nil {
		a.logger.Warn("organization query failed", "error", err)
		return models.NewCheckResult(models.CheckBasicOrgInfo, "Basic Org Information",
			models.StatusFailed, "Could not retrieve organization information",
			salesforce.DebugInfo(err), models.SeverityError)
	}
	if info == nil {
		return models.NewCheckResult(models.CheckBasicOrgInfo, "Basic Org Information",
			models.StatusFailed, "Organization query returned no rows", nil, models.SeverityError)
	}

	details := []string{
		fmt.Sprintf("Organization name: %s", info.Name),
		fmt.Sprintf("Organization type: %s", info.OrganizationType),
		fmt.Sprintf("Instance: %s", info.InstanceName),
		fmt.Sprintf("Sandbox: %t", info.IsSandbox),
	}
	if info.TrialExpirationDate != "" {
		details = append(details, fmt.Sprintf("Trial expiration date: %s", info.TrialExpirationDate))
	}
	return models.NewCheckResult(models.CheckBasicOrgInfo, "Basic Org Information",
		models.StatusPassed,
		fmt.Sprintf("Connected to %s (%s)", info.Name, info.OrganizationType),
		details, models.SeverityInfo)
}

// SharingModels validates the internal org-wide default of each Product
// Catalog Management object. ReadWrite and Read pass; anything more
// restrictive fails the object.
func (a *OrgAnalyzer) SharingModels(ctx context.Context) models.CheckResult {
	modelsByObject, err := a.fetcher.FetchSharingModels(ctx, pcmObjects)
	if err != nil {
		a.logger.Warn("sharing model query failed", "error", err)
		return models.NewCheckResult(models.CheckOWDSharing, "OWD Sharing Settings",
			models.StatusFailed, "Could not retrieve org-wide sharing settings",
			salesforce.DebugInfo(err), models.SeverityError)
	}

	found := make(map[string]string, len(modelsByObject))
	for _, m := range modelsByObject {
		found[m.QualifiedAPIName] = m.InternalSharingModel
	}

	var restricted, missing, details []string
	for _, object := range pcmObjects {
		model, ok := found[object]
		if !ok {
			missing = append(missing, fmt.Sprintf("%s: no sharing settings found", object))
			continue
		}
		switch model {
		case "ReadWrite", "Read":
			details = append(details, fmt.Sprintf("  - %s: %s", object, model))
		default:
			restricted = append(restricted, fmt.Sprintf("%s: %s", object, model))
		}
	}

	details = append([]string{
		fmt.Sprintf("Checked org-wide defaults for %d Product Catalog objects", len(pcmObjects)),
	}, details...)
	if len(restricted) > 0 {
		details = append(details, "Restricted sharing models:")
		details = append(details, indent(restricted)...)
	}
	if len(missing) > 0 {
		details = append(details, "Objects without sharing settings:")
		details = append(details, indent(missing)...)
	}

	switch {
	case len(restricted) > 0:
		details = append(details, "Recommendations:")
		details = append(details, indent(a.catalog.Lines(remedySharing))...)
		return models.NewCheckResult(models.CheckOWDSharing, "OWD Sharing Settings",
			models.StatusFailed,
			fmt.Sprintf("Found %d objects with restrictive org-wide defaults", len(restricted)),
			details, models.SeverityError)
	case len(missing) > 0:
		return models.NewCheckResult(models.CheckOWDSharing, "OWD Sharing Settings",
			models.StatusWarning,
			fmt.Sprintf("Could not verify sharing settings for %d objects", len(missing)),
			details, models.SeverityWarning)
	default:
		return models.NewCheckResult(models.CheckOWDSharing, "OWD Sharing Settings",
			models.StatusPassed,
			"All Product Catalog objects have permissive org-wide defaults",
			details, models.SeverityInfo)
	}
}
