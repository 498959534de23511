package bear

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// GetObjects loads the metadata objects at uris, in batches of 50.
func (c *Client) GetObjects(ctx context.Context, workspace string, uris []string) ([]WrappedObject, error) {
	var out []WrappedObject
	for start := 0; start < len(uris); start += objectsBatchSize {
		end := min(start+objectsBatchSize, len(uris))

		var req objectsGetRequest
		req.Get.Items = uris[start:end]

		var resp objectsResponse
		if err := c.do(ctx, OpGetObjects, http.MethodPost, mdPath(workspace, "objects/get"), nil, req, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Objects.Items...)
	}
	return out, nil
}

// QueryOptions configures an objects query.
type QueryOptions struct {
	Category string
	Limit    int
}

// GetObjectsByQuery loads every object of one category, following paging.
func (c *Client) GetObjectsByQuery(ctx context.Context, workspace string, opts QueryOptions) ([]WrappedObject, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = objectsBatchSize
	}

	var out []WrappedObject
	offset := 0
	for {
		query := url.Values{}
		query.Set("category", opts.Category)
		query.Set("limit", strconv.Itoa(limit))
		query.Set("offset", strconv.Itoa(offset))

		var resp objectsResponse
		if err := c.do(ctx, OpQueryObjects, http.MethodGet, mdPath(workspace, "objects/query"), query, nil, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Objects.Items...)
		if len(resp.Objects.Items) == 0 || resp.Objects.Paging.Next == "" {
			return out, nil
		}
		offset += len(resp.Objects.Items)
	}
}

// GetIdentifiersFromURIs maps object URIs to identifiers.
func (c *Client) GetIdentifiersFromURIs(ctx context.Context, workspace string, uris []string) ([]IdentifierURIPair, error) {
	var resp identifiersResponse
	err := c.do(ctx, OpIdentifiers, http.MethodPost, mdPath(workspace, "identifiers"), nil,
		identifiersRequest{URIToIdentifier: uris}, &resp)
	return resp.Identifiers, err
}

// GetURIsFromIdentifiers maps object identifiers to URIs.
func (c *Client) GetURIsFromIdentifiers(ctx context.Context, workspace string, identifiers []string) ([]IdentifierURIPair, error) {
	var resp identifiersResponse
	err := c.do(ctx, OpIdentifiers, http.MethodPost, mdPath(workspace, "identifiers"), nil,
		identifiersRequest{IdentifierToURI: identifiers}, &resp)
	return resp.Identifiers, err
}
