package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/mesh-intelligence/catalogue/pkg/types"
)

// itemView is the printed form of a catalog item.
type itemView struct {
	Type   types.CatalogItemType `json:"type"`
	ID     string                `json:"id"`
	URI    string                `json:"uri"`
	Title  string                `json:"title"`
	Groups []string              `json:"groups,omitempty"`
}

type groupView struct {
	Title string `json:"title"`
	Tag   string `json:"tag"`
}

type catalogView struct {
	Workspace string      `json:"workspace"`
	Groups    []groupView `json:"groups"`
	Items     []itemView  `json:"items"`
}

func newItemView(item types.CatalogItem) itemView {
	view := itemView{Type: item.ItemType(), URI: item.URI(), Title: item.Title()}
	switch v := item.(type) {
	case types.CatalogAttribute:
		view.ID = v.Attribute.ID
	case types.CatalogMeasure:
		view.ID = v.Measure.ID
	case types.CatalogFact:
		view.ID = v.Fact.ID
	case types.CatalogDateDataset:
		view.ID = v.DataSet.ID
	}
	for _, g := range item.Groups() {
		view.Groups = append(view.Groups, refString(g))
	}
	return view
}

func newCatalogView(workspace string, groups []types.CatalogGroup, items []types.CatalogItem) catalogView {
	view := catalogView{Workspace: workspace, Groups: []groupView{}, Items: []itemView{}}
	for _, g := range groups {
		view.Groups = append(view.Groups, groupView{Title: g.Title, Tag: refString(g.Tag)})
	}
	for _, item := range items {
		view.Items = append(view.Items, newItemView(item))
	}
	return view
}

func refString(ref types.ObjRef) string {
	switch r := ref.(type) {
	case types.IdentifierRef:
		return r.Identifier
	case types.URIRef:
		return r.URI
	}
	return ""
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printCatalog(w io.Writer, view catalogView, jsonMode bool) error {
	if jsonMode {
		return printJSON(w, view)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tID\tTITLE\tURI")
	for _, item := range view.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Type, item.ID, item.Title, item.URI)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d items, %d groups\n", len(view.Items), len(view.Groups))
	return nil
}

func printInfos(w io.Writer, infos []types.SnapshotInfo, jsonMode bool) error {
	if jsonMode {
		if infos == nil {
			infos = []types.SnapshotInfo{}
		}
		return printJSON(w, infos)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WORKSPACE\tSNAPSHOT\tLOADED\tITEMS")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", info.Workspace, info.ID, info.LoadedAt.Format(time.RFC3339), info.ItemCount)
	}
	return tw.Flush()
}
