package bear

import (
	"context"
	"net/http"

	"github.com/mesh-intelligence/catalogue/pkg/types"
)

// LoadItemsParams configures a loadCatalog request.
type LoadItemsParams struct {
	Types           []string
	IncludeWithTags []string
	ExcludeWithTags []string
	Production      *int
	CSVDataSets     []string

	// BucketItems restricts the result to items compatible with the insight.
	// AttributesMap resolves its display form URIs to attribute URIs.
	BucketItems   *VisualizationObjectContent
	AttributesMap map[string]types.MetadataObject

	DataSetIdentifier     string
	ReturnAllDateDataSets bool

	// Offset and Limit select one page; LoadAllItems ignores them.
	Offset int
	Limit  int
}

// LoadDateDataSetsParams configures a loadDateDataSets request.
type LoadDateDataSetsParams struct {
	BucketItems   *VisualizationObjectContent
	AttributesMap map[string]types.MetadataObject

	DataSetIdentifier            string
	ReturnAllDateDataSets        bool
	ReturnAllRelatedDateDataSets bool

	IncludeObjectsWithTags []string
	ExcludeObjectsWithTags []string
}

// LoadGroupsParams configures a loadGroups request.
type LoadGroupsParams struct {
	IncludeWithTags []string
	ExcludeWithTags []string
	Production      *int
	CSVDataSets     []string
}

// requiredDataSets picks the date dataset selection: nothing when all related
// datasets are wanted, the custom dataset when one is named, otherwise all or
// production datasets.
func requiredDataSets(dataSetID string, all, allRelated bool) *RequiredDataSets {
	switch {
	case allRelated:
		return nil
	case dataSetID != "":
		return &RequiredDataSets{Type: RequiredDataSetsCustom, CustomIdentifiers: []string{dataSetID}}
	case all:
		return &RequiredDataSets{Type: RequiredDataSetsAll}
	}
	return &RequiredDataSets{Type: RequiredDataSetsProduction}
}

func (c *Client) catalogRequest(ctx context.Context, workspace string, p LoadItemsParams) (CatalogRequest, error) {
	req := CatalogRequest{
		Types:            p.Types,
		Paging:           Paging{Offset: p.Offset, Limit: p.Limit},
		IncludeWithTags:  p.IncludeWithTags,
		ExcludeWithTags:  p.ExcludeWithTags,
		Production:       p.Production,
		CSVDataSets:      p.CSVDataSets,
		RequiredDataSets: requiredDataSets(p.DataSetIdentifier, p.ReturnAllDateDataSets, false),
	}
	if req.Paging.Limit <= 0 {
		req.Paging.Limit = c.pageSize
	}
	if p.BucketItems != nil {
		items, err := c.LoadItemDescriptionObjects(ctx, workspace, p.BucketItems, p.AttributesMap)
		if err != nil {
			return CatalogRequest{}, err
		}
		req.BucketItems = items
	}
	return req, nil
}

func (c *Client) postCatalog(ctx context.Context, workspace string, req CatalogRequest) (CatalogResponse, error) {
	var resp catalogResponseEnvelope
	err := c.do(ctx, OpLoadItems, http.MethodPost, internalPath(workspace, "loadCatalog"), nil,
		catalogRequestEnvelope{CatalogRequest: req}, &resp)
	return resp.CatalogResponse, err
}

// LoadItems loads one page of catalog items.
func (c *Client) LoadItems(ctx context.Context, workspace string, p LoadItemsParams) (CatalogResponse, error) {
	req, err := c.catalogRequest(ctx, workspace, p)
	if err != nil {
		return CatalogResponse{}, err
	}
	return c.postCatalog(ctx, workspace, req)
}

// LoadAllItems loads every page of catalog items. Bucket items are described
// once and reused for every page.
func (c *Client) LoadAllItems(ctx context.Context, workspace string, p LoadItemsParams) ([]CatalogItem, error) {
	p.Offset, p.Limit = 0, c.pageSize
	req, err := c.catalogRequest(ctx, workspace, p)
	if err != nil {
		return nil, err
	}

	var items []CatalogItem
	for {
		page, err := c.postCatalog(ctx, workspace, req)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Catalog...)
		if len(page.Catalog) == 0 || page.Paging.Next == "" {
			return items, nil
		}
		req.Paging.Offset += len(page.Catalog)
	}
}

// LoadAvailableItemURIs returns the URIs of the catalog items compatible with
// p.BucketItems.
func (c *Client) LoadAvailableItemURIs(ctx context.Context, workspace string, p LoadItemsParams) ([]string, error) {
	items, err := c.LoadAllItems(ctx, workspace, p)
	if err != nil {
		return nil, err
	}
	uris := make([]string, 0, len(items))
	for _, item := range items {
		uris = append(uris, item.Links.Self)
	}
	return uris, nil
}

// LoadDateDataSets loads the date datasets compatible with p.BucketItems.
func (c *Client) LoadDateDataSets(ctx context.Context, workspace string, p LoadDateDataSetsParams) (DateDataSetsResponse, error) {
	req := DateDataSetsRequest{
		IncludeAvailableDateAttributes:      true,
		IncludeUnavailableDateDataSetsCount: true,
		RequiredDataSets:                    requiredDataSets(p.DataSetIdentifier, p.ReturnAllDateDataSets, p.ReturnAllRelatedDateDataSets),
		ExcludeObjectsWithTags:              p.ExcludeObjectsWithTags,
		IncludeObjectsWithTags:              p.IncludeObjectsWithTags,
	}
	// Include tags take precedence over exclude tags.
	if len(req.IncludeObjectsWithTags) > 0 {
		req.ExcludeObjectsWithTags = nil
	}
	if p.BucketItems != nil {
		items, err := c.LoadItemDescriptionObjects(ctx, workspace, p.BucketItems, p.AttributesMap)
		if err != nil {
			return DateDataSetsResponse{}, err
		}
		req.BucketItems = items
	}

	var resp dateDataSetsResponseEnvelope
	err := c.do(ctx, OpLoadDateDataSets, http.MethodPost, internalPath(workspace, "loadDateDataSets"), nil,
		dateDataSetsRequestEnvelope{DateDataSetsRequest: req}, &resp)
	return resp.DateDataSetsResponse, err
}

// LoadGroups loads the catalog groups.
func (c *Client) LoadGroups(ctx context.Context, workspace string, p LoadGroupsParams) ([]CatalogGroup, error) {
	var resp groupsResponseEnvelope
	err := c.do(ctx, OpLoadGroups, http.MethodPost, internalPath(workspace, "loadGroups"), nil,
		groupsRequestEnvelope{CatalogGroupsRequest: GroupsRequest(p)}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.CatalogGroupsResponse.CatalogGroups, nil
}
