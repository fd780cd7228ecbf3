package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/forceweaver/revenue-health/internal/models"
	"github.com/forceweaver/revenue-health/internal/salesforce"
)

type stubOrgFetcher struct {
	info       *salesforce.OrgInfo
	infoErr    error
	sharing    []salesforce.SharingModel
	sharingErr error
}

func (s *stubOrgFetcher) FetchOrgInfo(context.Context) (*salesforce.OrgInfo, error) {
	return s.info, s.infoErr
}

func (s *stubOrgFetcher) FetchSharingModels(context.Context, []string) ([]salesforce.SharingModel, error) {
	return s.sharing, s.sharingErr
}

func permissiveSharing() []salesforce.SharingModel {
	out := make([]salesforce.SharingModel, 0, len(pcmObjects))
	for _, object := range pcmObjects {
		out = append(out, salesforce.SharingModel{QualifiedAPIName: object, InternalSharingModel: "ReadWrite"})
	}
	return out
}

func TestBasicOrgInfoPassed(t *testing.T) {
	a := NewOrgAnalyzer(nil, &stubOrgFetcher{info: &salesforce.OrgInfo{
		Name: "Acme", OrganizationType: "Developer Edition", InstanceName: "NA1",
		IsSandbox: true, TrialExpirationDate: "2026-12-31T00:00:00.000+0000",
	}}, NewCatalog())

	result := a.BasicOrgInfo(context.Background())
	if result.Status != models.StatusPassed {
		t.Fatalf("status = %s, want passed", result.Status)
	}
	var sawTrial bool
	for _, line := range result.Details {
		if strings.Contains(line, "Trial expiration date") {
			sawTrial = true
		}
	}
	if !sawTrial {
		t.Errorf("details should include the trial expiration date: %v", result.Details)
	}
}

func TestBasicOrgInfoNoRows(t *testing.T) {
	a := NewOrgAnalyzer(nil, &stubOrgFetcher{}, NewCatalog())
	if result := a.BasicOrgInfo(context.Background()); result.Status != models.StatusFailed {
		t.Errorf("status = %s, want failed on empty result", result.Status)
	}
}

func TestBasicOrgInfoQueryError(t *testing.T) {
	a := NewOrgAnalyzer(nil, &stubOrgFetcher{infoErr: errors.New("boom")}, NewCatalog())
	if result := a.BasicOrgInfo(context.Background()); result.Status != models.StatusFailed {
		t.Errorf("status = %s, want failed on query error", result.Status)
	}
}

func TestSharingModelsAllPermissive(t *testing.T) {
	a := NewOrgAnalyzer(nil, &stubOrgFetcher{sharing: permissiveSharing()}, NewCatalog())
	if result := a.SharingModels(context.Background()); result.Status != models.StatusPassed {
		t.Errorf("status = %s, want passed", result.Status)
	}
}

func TestSharingModelsReadIsPermissive(t *testing.T) {
	sharing := permissiveSharing()
	sharing[0].InternalSharingModel = "Read"
	a := NewOrgAnalyzer(nil, &stubOrgFetcher{sharing: sharing}, NewCatalog())
	if result := a.SharingModels(context.Background()); result.Status != models.StatusPassed {
		t.Errorf("status = %s, want passed for Read model", result.Status)
	}
}

func TestSharingModelsPrivateFails(t *testing.T) {
	sharing := permissiveSharing()
	sharing[0].InternalSharingModel = "Private"
	a := NewOrgAnalyzer(nil, &stubOrgFetcher{sharing: sharing}, NewCatalog())

	result := a.SharingModels(context.Background())
	if result.Status != models.StatusFailed {
		t.Fatalf("status = %s, want failed for Private model", result.Status)
	}
	if !strings.Contains(result.Message, "1 objects with restrictive") {
		t.Errorf("message = %q, want restrictive object count", result.Message)
	}
}

func TestSharingModelsMissingObjectWarns(t *testing.T) {
	sharing := permissiveSharing()[:len(pcmObjects)-2]
	a := NewOrgAnalyzer(nil, &stubOrgFetcher{sharing: sharing}, NewCatalog())

	result := a.SharingModels(context.Background())
	if result.Status != models.StatusWarning {
		t.Fatalf("status = %s, want warning for missing sharing rows", result.Status)
	}
}
