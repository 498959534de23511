// Package beartest provides an in-process fake of the bear metadata API for
// tests. Compatibility between catalog items is driven by fixture tables.
package beartest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"

	"github.com/mesh-intelligence/catalogue/internal/bear"
)

// Resource names used by Calls and LastRequest.
const (
	ResourceLoadCatalog      = "loadCatalog"
	ResourceLoadDateDataSets = "loadDateDataSets"
	ResourceLoadGroups       = "loadGroups"
	ResourceObjectsGet       = "objects/get"
	ResourceObjectsQuery     = "objects/query"
	ResourceIdentifiers      = "identifiers"
)

// Workspace is the content the fake serves for one workspace.
type Workspace struct {
	Items        []bear.CatalogItem
	Groups       []bear.CatalogGroup
	Objects      []bear.WrappedObject
	DateDataSets []bear.DateDataSet

	// Identifiers maps URIs of objects absent from Objects (tags, CSV
	// datasets) to their identifiers.
	Identifiers map[string]string

	// Incompatible maps a bucket item description to the URIs of catalog
	// items and date datasets that cannot be combined with it.
	Incompatible map[string][]string
}

// Server is a fake bear backend.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	workspaces map[string]Workspace
	calls      map[string]int
	requests   map[string][]byte

	// QueryNotFound makes objects/query answer 404, like mock backends
	// without the query resource.
	QueryNotFound bool

	// Fail makes the named resource answer 500.
	Fail map[string]bool
}

// NewServer starts a fake backend. Close it when done.
func NewServer() *Server {
	s := &Server{
		workspaces: map[string]Workspace{},
		calls:      map[string]int{},
		requests:   map[string][]byte{},
		Fail:       map[string]bool{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /gdc/internal/projects/{ws}/loadCatalog", s.handle(ResourceLoadCatalog, s.loadCatalog))
	mux.HandleFunc("POST /gdc/internal/projects/{ws}/loadDateDataSets", s.handle(ResourceLoadDateDataSets, s.loadDateDataSets))
	mux.HandleFunc("POST /gdc/internal/projects/{ws}/loadGroups", s.handle(ResourceLoadGroups, s.loadGroups))
	mux.HandleFunc("POST /gdc/md/{ws}/objects/get", s.handle(ResourceObjectsGet, s.objectsGet))
	mux.HandleFunc("GET /gdc/md/{ws}/objects/query", s.handle(ResourceObjectsQuery, s.objectsQuery))
	mux.HandleFunc("POST /gdc/md/{ws}/identifiers", s.handle(ResourceIdentifiers, s.identifiers))
	s.Server = httptest.NewServer(mux)
	return s
}

// AddWorkspace registers the content served for id.
func (s *Server) AddWorkspace(id string, ws Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[id] = ws
}

// Calls returns how many requests resource received.
func (s *Server) Calls(resource string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[resource]
}

// LastRequest returns the body of the last request resource received.
func (s *Server) LastRequest(resource string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[resource]
}

type handlerFunc func(ws Workspace, r *http.Request, body []byte) (any, int)

func (s *Server) handle(resource string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		s.mu.Lock()
		s.calls[resource]++
		s.requests[resource] = body
		ws, ok := s.workspaces[r.PathValue("ws")]
		fail := s.Fail[resource]
		notFound := resource == ResourceObjectsQuery && s.QueryNotFound
		s.mu.Unlock()

		switch {
		case fail:
			http.Error(w, `{"error":{"message":"internal error"}}`, http.StatusInternalServerError)
			return
		case !ok || notFound:
			http.Error(w, `{"error":{"message":"not found"}}`, http.StatusNotFound)
			return
		}

		out, status := fn(ws, r, body)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

// unavailable returns the URIs incompatible with any of the descriptions.
func (ws Workspace) unavailable(descriptions []string) map[string]bool {
	out := map[string]bool{}
	for _, d := range descriptions {
		for _, uri := range ws.Incompatible[d] {
			out[uri] = true
		}
	}
	return out
}

func (s *Server) loadCatalog(ws Workspace, _ *http.Request, body []byte) (any, int) {
	var env struct {
		CatalogRequest bear.CatalogRequest `json:"catalogRequest"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, http.StatusBadRequest
	}
	req := env.CatalogRequest
	blocked := ws.unavailable(req.BucketItems)

	var matched []bear.CatalogItem
	for _, item := range ws.Items {
		if len(req.Types) > 0 && !slices.Contains(req.Types, item.Type) {
			continue
		}
		if len(req.IncludeWithTags) > 0 && !anyShared(item.Groups, req.IncludeWithTags) {
			continue
		}
		if anyShared(item.Groups, req.ExcludeWithTags) {
			continue
		}
		if req.Production != nil && *req.Production == 1 && !bool(item.Production) {
			continue
		}
		if blocked[item.Links.Self] {
			continue
		}
		matched = append(matched, item)
	}

	limit := req.Paging.Limit
	if limit <= 0 {
		limit = len(matched)
	}
	start := min(req.Paging.Offset, len(matched))
	end := min(start+limit, len(matched))

	var resp struct {
		CatalogResponse bear.CatalogResponse `json:"catalogResponse"`
	}
	resp.CatalogResponse.Catalog = append([]bear.CatalogItem{}, matched[start:end]...)
	resp.CatalogResponse.Totals.Available = len(matched)
	resp.CatalogResponse.Paging = bear.Paging{Offset: start, Limit: limit}
	if end < len(matched) {
		resp.CatalogResponse.Paging.Next = "offset=" + strconv.Itoa(end)
	}
	return resp, http.StatusOK
}

func (s *Server) loadDateDataSets(ws Workspace, _ *http.Request, body []byte) (any, int) {
	var env struct {
		DateDataSetsRequest bear.DateDataSetsRequest `json:"dateDataSetsRequest"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, http.StatusBadRequest
	}
	req := env.DateDataSetsRequest
	blocked := ws.unavailable(req.BucketItems)

	var resp struct {
		DateDataSetsResponse bear.DateDataSetsResponse `json:"dateDataSetsResponse"`
	}
	resp.DateDataSetsResponse.DateDataSets = []bear.DateDataSet{}
	for _, ds := range ws.DateDataSets {
		if req.RequiredDataSets != nil && req.RequiredDataSets.Type == bear.RequiredDataSetsCustom &&
			!slices.Contains(req.RequiredDataSets.CustomIdentifiers, ds.Meta.Identifier) {
			continue
		}
		if blocked[ds.Meta.URI] {
			resp.DateDataSetsResponse.UnavailableDateDataSetsCount++
			continue
		}
		resp.DateDataSetsResponse.DateDataSets = append(resp.DateDataSetsResponse.DateDataSets, ds)
	}
	return resp, http.StatusOK
}

func (s *Server) loadGroups(ws Workspace, _ *http.Request, _ []byte) (any, int) {
	var resp struct {
		CatalogGroupsResponse struct {
			CatalogGroups []bear.CatalogGroup `json:"catalogGroups"`
		} `json:"catalogGroupsResponse"`
	}
	resp.CatalogGroupsResponse.CatalogGroups = append([]bear.CatalogGroup{}, ws.Groups...)
	return resp, http.StatusOK
}

type objectsEnvelope struct {
	Objects struct {
		Items  []bear.WrappedObject `json:"items"`
		Paging struct {
			Offset     int    `json:"offset"`
			Count      int    `json:"count"`
			TotalCount int    `json:"totalCount"`
			Next       string `json:"next,omitempty"`
		} `json:"paging"`
	} `json:"objects"`
}

func (s *Server) objectsGet(ws Workspace, _ *http.Request, body []byte) (any, int) {
	var req struct {
		Get struct {
			Items []string `json:"items"`
		} `json:"get"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, http.StatusBadRequest
	}
	var resp objectsEnvelope
	resp.Objects.Items = []bear.WrappedObject{}
	for _, obj := range ws.Objects {
		meta, _ := obj.Meta()
		if slices.Contains(req.Get.Items, meta.URI) {
			resp.Objects.Items = append(resp.Objects.Items, obj)
		}
	}
	return resp, http.StatusOK
}

func (s *Server) objectsQuery(ws Workspace, r *http.Request, _ []byte) (any, int) {
	category := r.URL.Query().Get("category")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	var matched []bear.WrappedObject
	for _, obj := range ws.Objects {
		if _, c := obj.Meta(); c == category {
			matched = append(matched, obj)
		}
	}
	if limit <= 0 {
		limit = len(matched)
	}
	start := min(offset, len(matched))
	end := min(start+limit, len(matched))

	var resp objectsEnvelope
	resp.Objects.Items = append([]bear.WrappedObject{}, matched[start:end]...)
	resp.Objects.Paging.Offset = start
	resp.Objects.Paging.Count = end - start
	resp.Objects.Paging.TotalCount = len(matched)
	if end < len(matched) {
		resp.Objects.Paging.Next = "offset=" + strconv.Itoa(end)
	}
	return resp, http.StatusOK
}

func (s *Server) identifiers(ws Workspace, _ *http.Request, body []byte) (any, int) {
	var req struct {
		URIToIdentifier []string `json:"uriToIdentifier"`
		IdentifierToURI []string `json:"identifierToUri"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, http.StatusBadRequest
	}

	known := map[string]string{}
	for uri, id := range ws.Identifiers {
		known[uri] = id
	}
	for _, obj := range ws.Objects {
		meta, _ := obj.Meta()
		known[meta.URI] = meta.Identifier
	}

	var resp struct {
		Identifiers []bear.IdentifierURIPair `json:"identifiers"`
	}
	resp.Identifiers = []bear.IdentifierURIPair{}
	for _, uri := range req.URIToIdentifier {
		if id, ok := known[uri]; ok {
			resp.Identifiers = append(resp.Identifiers, bear.IdentifierURIPair{Identifier: id, URI: uri})
		}
	}
	for _, id := range req.IdentifierToURI {
		for uri, v := range known {
			if v == id {
				resp.Identifiers = append(resp.Identifiers, bear.IdentifierURIPair{Identifier: id, URI: uri})
			}
		}
	}
	return resp, http.StatusOK
}

func anyShared(a, b []string) bool {
	for _, v := range a {
		if slices.Contains(b, v) {
			return true
		}
	}
	return false
}
