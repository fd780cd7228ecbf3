package salesforce

import (
	"context"
	"fmt"
	"strings"
)

// OrgInfo holds the identity fields of the audited organization.
type OrgInfo struct {
	ID                  string
	Name                string
	OrganizationType    string
	InstanceName        string
	IsSandbox           bool
	TrialExpirationDate string
}

// SharingModel is one object's organization-wide default sharing setting.
type SharingModel struct {
	QualifiedAPIName     string
	InternalSharingModel string
	Label                string
}

// BundleProduct identifies one product record; only Type = "Bundle" products
// participate in hierarchy recursion.
type BundleProduct struct {
	ID   string
	Name string
	Type string
}

// ComponentEdge is one directed parent-to-child bundle component relationship.
type ComponentEdge struct {
	ParentID   string
	ChildID    string
	ChildName  string
	ChildType  string
	ParentName string
}

// Picklist is one active attribute picklist definition.
type Picklist struct {
	ID     string
	Name   string
	Status string
}

// AttributeDefinition is one active attribute definition referencing a picklist.
type AttributeDefinition struct {
	ID         string
	Name       string
	Label      string
	PicklistID string
}

// PicklistValue is one legal value attached to a picklist.
type PicklistValue struct {
	ID           string
	PicklistID   string
	Value        string
	DisplayValue string
}

// FetchOrgInfo retrieves the Organization record.
func (c *Client) FetchOrgInfo(ctx context.Context) (*OrgInfo, error) {
	result, err := c.Query(ctx, "SELECT Id, Name, OrganizationType, InstanceName, IsSandbox, TrialExpirationDate FROM Organization LIMIT 1")
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, fmt.Errorf("organization query returned no rows")
	}
	rec := result.Records[0]
	return &OrgInfo{
		ID:                  rec.String("Id"),
		Name:                rec.String("Name"),
		OrganizationType:    rec.String("OrganizationType"),
		InstanceName:        rec.String("InstanceName"),
		IsSandbox:           rec.Bool("IsSandbox"),
		TrialExpirationDate: rec.String("TrialExpirationDate"),
	}, nil
}

// FetchSharingModels returns the internal sharing model for each named object
// that has an EntityDefinition row. Objects without a row are simply absent
// from the result.
func (c *Client) FetchSharingModels(ctx context.Context, objects []string) ([]SharingModel, error) {
	quoted := make([]string, 0, len(objects))
	for _, obj := range objects {
		quoted = append(quoted, "'"+obj+"'")
	}
	soql := fmt.Sprintf(
		"SELECT QualifiedApiName, InternalSharingModel, Label FROM EntityDefinition WHERE QualifiedApiName IN (%s)",
		strings.Join(quoted, ","))
	result, err := c.QueryAll(ctx, soql)
	if err != nil {
		return nil, err
	}
	settings := make([]SharingModel, 0, len(result.Records))
	for _, rec := range result.Records {
		settings = append(settings, SharingModel{
			QualifiedAPIName:     rec.String("QualifiedApiName"),
			InternalSharingModel: rec.String("InternalSharingModel"),
			Label:                rec.String("Label"),
		})
	}
	return settings, nil
}

// FetchActiveBundles returns all active bundle-typed products.
func (c *Client) FetchActiveBundles(ctx context.Context) ([]BundleProduct, error) {
	result, err := c.QueryAll(ctx, "SELECT Id, Name, Type FROM Product2 WHERE Type = 'Bundle' AND IsActive = true")
	if err != nil {
		return nil, err
	}
	bundles := make([]BundleProduct, 0, len(result.Records))
	for _, rec := range result.Records {
		bundles = append(bundles, BundleProduct{
			ID:   rec.String("Id"),
			Name: rec.String("Name"),
			Type: rec.String("Type"),
		})
	}
	return bundles, nil
}

// FetchComponentEdges returns every parent-to-child bundle component
// relationship in the org.
func (c *Client) FetchComponentEdges(ctx context.Context) ([]ComponentEdge, error) {
	soql := "SELECT Id, ParentProductId, ChildProductId, ParentProduct.Name, ParentProduct.Type, " +
		"ChildProduct.Name, ChildProduct.Type FROM ProductRelatedComponent " +
		"WHERE ParentProductId != NULL AND ChildProductId != NULL"
	result, err := c.QueryAll(ctx, soql)
	if err != nil {
		return nil, err
	}
	edges := make([]ComponentEdge, 0, len(result.Records))
	for _, rec := range result.Records {
		edges = append(edges, ComponentEdge{
			ParentID:   rec.String("ParentProductId"),
			ChildID:    rec.String("ChildProductId"),
			ChildName:  rec.Nested("ChildProduct", "Name"),
			ChildType:  rec.Nested("ChildProduct", "Type"),
			ParentName: rec.Nested("ParentProduct", "Name"),
		})
	}
	return edges, nil
}

// FetchActivePicklists returns all active AttributePicklist records.
func (c *Client) FetchActivePicklists(ctx context.Context) ([]Picklist, error) {
	result, err := c.QueryAll(ctx, "SELECT Id, Name, Status FROM AttributePicklist WHERE Status = 'Active'")
	if err != nil {
		return nil, err
	}
	picklists := make([]Picklist, 0, len(result.Records))
	for _, rec := range result.Records {
		picklists = append(picklists, Picklist{
			ID:     rec.String("Id"),
			Name:   rec.String("Name"),
			Status: rec.String("Status"),
		})
	}
	return picklists, nil
}

// FetchPicklistDefinitions returns active attribute definitions that
// reference a picklist.
func (c *Client) FetchPicklistDefinitions(ctx context.Context) ([]AttributeDefinition, error) {
	result, err := c.QueryAll(ctx, "SELECT Id, Name, Label, PicklistId FROM AttributeDefinition WHERE PicklistId != NULL AND IsActive = true")
	if err != nil {
		return nil, err
	}
	defs := make([]AttributeDefinition, 0, len(result.Records))
	for _, rec := range result.Records {
		defs = append(defs, AttributeDefinition{
			ID:         rec.String("Id"),
			Name:       rec.String("Name"),
			Label:      rec.String("Label"),
			PicklistID: rec.String("PicklistId"),
		})
	}
	return defs, nil
}

// FetchPicklistValues returns all picklist values keyed to a picklist.
func (c *Client) FetchPicklistValues(ctx context.Context) ([]PicklistValue, error) {
	result, err := c.QueryAll(ctx, "SELECT Id, PicklistId, Value, DisplayValue FROM AttributePicklistValue WHERE PicklistId != NULL")
	if err != nil {
		return nil, err
	}
	values := make([]PicklistValue, 0, len(result.Records))
	for _, rec := range result.Records {
		values = append(values, PicklistValue{
			ID:           rec.String("Id"),
			PicklistID:   rec.String("PicklistId"),
			Value:        rec.String("Value"),
			DisplayValue: rec.String("DisplayValue"),
		})
	}
	return values, nil
}

// CountAttributeOverrides counts attribute definition overrides scoped to
// the given product IDs. The count arrives in totalSize of the COUNT query.
func (c *Client) CountAttributeOverrides(ctx context.Context, productIDs []string) (int, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	quoted := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		quoted = append(quoted, "'"+id+"'")
	}
	soql := fmt.Sprintf("SELECT COUNT() FROM ProductAttributeDefinition WHERE Product2Id IN (%s)",
		strings.Join(quoted, ","))
	result, err := c.Query(ctx, soql)
	if err != nil {
		return 0, err
	}
	return result.TotalSize, nil
}

// ProbeObject issues a minimal existence query against the named object type.
// A nil return means the object is queryable for the integration user.
func (c *Client) ProbeObject(ctx context.Context, object string) error {
	_, err := c.Query(ctx, fmt.Sprintf("SELECT Id FROM %s LIMIT 1", object))
	return err
}
