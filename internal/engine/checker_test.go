package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/forceweaver/revenue-health/internal/models"
	"github.com/forceweaver/revenue-health/internal/salesforce"
)

// fakeClient satisfies QueryClient with canned data. Objects not listed in
// available fail their probe.
type fakeClient struct {
	available      map[string]bool
	orgInfo        *salesforce.OrgInfo
	sharing        []salesforce.SharingModel
	bundles        []salesforce.BundleProduct
	edges          []salesforce.ComponentEdge
	picklists      []salesforce.Picklist
	definitions    []salesforce.AttributeDefinition
	values         []salesforce.PicklistValue
	overrideCounts map[string]int
	panicOn        string
}

func (f *fakeClient) ProbeObject(_ context.Context, object string) error {
	if f.available[object] {
		return nil
	}
	return &salesforce.APIError{StatusCode: 400, ErrorCode: "INVALID_TYPE", Message: "sObject type '" + object + "' is not supported"}
}

func (f *fakeClient) FetchOrgInfo(context.Context) (*salesforce.OrgInfo, error) {
	if f.panicOn == "orginfo" {
		panic("corrupt organization row")
	}
	return f.orgInfo, nil
}

func (f *fakeClient) FetchSharingModels(context.Context, []string) ([]salesforce.SharingModel, error) {
	return f.sharing, nil
}

func (f *fakeClient) FetchActiveBundles(context.Context) ([]salesforce.BundleProduct, error) {
	return f.bundles, nil
}

func (f *fakeClient) FetchComponentEdges(context.Context) ([]salesforce.ComponentEdge, error) {
	return f.edges, nil
}

func (f *fakeClient) FetchActivePicklists(context.Context) ([]salesforce.Picklist, error) {
	return f.picklists, nil
}

func (f *fakeClient) FetchPicklistDefinitions(context.Context) ([]salesforce.AttributeDefinition, error) {
	return f.definitions, nil
}

func (f *fakeClient) FetchPicklistValues(context.Context) ([]salesforce.PicklistValue, error) {
	return f.values, nil
}

func (f *fakeClient) CountAttributeOverrides(_ context.Context, productIDs []string) (int, error) {
	return f.overrideCounts[productIDs[0]], nil
}

func allAvailable() map[string]bool {
	objects := map[string]bool{}
	for _, o := range append(append([]string(nil), standardObjects...), revenueCloudObjects...) {
		objects[o] = true
	}
	return objects
}

func healthyOrg() *fakeClient {
	sharing := make([]salesforce.SharingModel, 0, len(pcmObjects))
	for _, object := range pcmObjects {
		sharing = append(sharing, salesforce.SharingModel{QualifiedAPIName: object, InternalSharingModel: "ReadWrite"})
	}
	return &fakeClient{
		available: allAvailable(),
		orgInfo: &salesforce.OrgInfo{
			ID: "00D000000000001", Name: "Acme", OrganizationType: "Enterprise Edition",
			InstanceName: "NA123",
		},
		sharing: sharing,
		bundles: []salesforce.BundleProduct{bundle("B1", "Starter Bundle")},
		edges: []salesforce.ComponentEdge{
			edge("B1", "C1", "Component"),
			edge("B1", "C2", "Component"),
		},
		picklists:      []salesforce.Picklist{picklist("P1", "Colors")},
		definitions:    []salesforce.AttributeDefinition{definition("D1", "Color", "P1")},
		values:         []salesforce.PicklistValue{value("V1", "P1", "Red"), value("V2", "P1", "Blue")},
		overrideCounts: map[string]int{"B1": 12},
	}
}

func newChecker(client QueryClient) *HealthChecker {
	return NewHealthChecker(nil, client, CheckerOptions{
		BundleLimits: DefaultBundleLimits(),
		Catalog:      NewCatalog(),
	})
}

func TestRunHealthyOrgScoresA(t *testing.T) {
	checker := newChecker(healthyOrg())
	report := checker.Run(context.Background())

	if report.OverallHealth.Score != 100.00 {
		t.Errorf("score = %v, want 100.00", report.OverallHealth.Score)
	}
	if report.OverallHealth.Grade != "A" {
		t.Errorf("grade = %s, want A", report.OverallHealth.Grade)
	}
	if got := len(report.Checks); got != len(models.AllCheckKinds()) {
		t.Errorf("checks = %d, want %d", got, len(models.AllCheckKinds()))
	}
	for kind, entry := range report.Checks {
		if entry.Status != "ok" {
			t.Errorf("check %s = %s, want ok", kind, entry.Status)
		}
	}
	if checker.Phase() != PhaseDone {
		t.Errorf("phase = %s, want done", checker.Phase())
	}
}

func TestRunOrgWithoutRevenueCloud(t *testing.T) {
	// Only Organization and User exist. Revenue Cloud checks skip with
	// info, the availability probe warns, and the overall report lands on
	// warning territory rather than failure.
	client := healthyOrg()
	client.available = map[string]bool{"Organization": true, "User": true}
	report := newChecker(client).Run(context.Background())

	avail := report.Checks[string(models.CheckObjectAvailability)]
	if avail.Status != "warning" {
		t.Fatalf("availability status = %s, want warning", avail.Status)
	}
	if report.Checks[string(models.CheckBundleAnalysis)].Status != "ok" {
		t.Errorf("bundle check should skip as ok, got %s", report.Checks[string(models.CheckBundleAnalysis)].Status)
	}
	if s := report.OverallHealth.Summary; s.Errors != 0 {
		t.Errorf("errors = %d, want 0 when only Revenue Cloud objects are missing", s.Errors)
	}
	if report.OverallHealth.Score >= 100 {
		t.Errorf("score = %v, want below 100 with a warning present", report.OverallHealth.Score)
	}
}

func TestRunBrokenConnectionFailsEverything(t *testing.T) {
	client := healthyOrg()
	client.available = map[string]bool{}
	report := newChecker(client).Run(context.Background())

	if report.Checks[string(models.CheckObjectAvailability)].Status != "error" {
		t.Fatalf("availability should be error, got %s", report.Checks[string(models.CheckObjectAvailability)].Status)
	}
	for kind, entry := range report.Checks {
		if entry.Status != "error" {
			t.Errorf("check %s = %s, want error when standard objects are missing", kind, entry.Status)
		}
	}
	if report.OverallHealth.Grade != "F" {
		t.Errorf("grade = %s, want F", report.OverallHealth.Grade)
	}
}

func TestRunIsolatesCheckPanic(t *testing.T) {
	client := healthyOrg()
	client.panicOn = "orginfo"
	report := newChecker(client).Run(context.Background())

	entry := report.Checks[string(models.CheckBasicOrgInfo)]
	if entry.Status != "error" {
		t.Fatalf("panicking check = %s, want error", entry.Status)
	}
	// The other checks still ran.
	if report.Checks[string(models.CheckBundleAnalysis)].Status != "ok" {
		t.Errorf("bundle check should survive a sibling panic")
	}
	if report.Checks[string(models.CheckPicklistIntegrity)].Status != "ok" {
		t.Errorf("picklist check should survive a sibling panic")
	}
}

func TestRunConcurrentBundleChecksShareFetch(t *testing.T) {
	client := healthyOrg()
	client.bundles = nil
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("B%d", i)
		client.bundles = append(client.bundles, bundle(id, "Bundle "+id))
	}
	client.overrideCounts = map[string]int{"B0": 1, "B1": 2, "B2": 3, "B3": 4, "B4": 5}
	client.edges = nil

	report := newChecker(client).Run(context.Background())
	if report.Checks[string(models.CheckBundleAnalysis)].Status != "ok" {
		t.Errorf("bundle analysis = %s, want ok", report.Checks[string(models.CheckBundleAnalysis)].Status)
	}
	if report.Checks[string(models.CheckAttributeOverride)].Status != "ok" {
		t.Errorf("override check = %s, want ok", report.Checks[string(models.CheckAttributeOverride)].Status)
	}
}
