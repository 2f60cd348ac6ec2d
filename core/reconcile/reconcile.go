// Package reconcile merges a freshly parsed schema graph with its
// predecessor so that layout metadata and stable entity IDs survive a
// round trip through DDL text. Matching is by identity first and name
// second; a table that is renamed and restructured in the same edit is
// indistinguishable from a drop plus a create and loses its layout.
package reconcile

import (
	"github.com/FocuswithJustin/SchemaCanvas/core/graph"
)

// Reconcile folds prev into next and returns next. Schema content
// (columns, types, constraints, edges, enums) always comes from next;
// prev contributes only layout, stable IDs, and graph settings. The
// function is total: a nil prev means there is nothing to preserve and
// next is returned unchanged.
//
// Tables match by exact ID, else by case-insensitive label. A matched
// table takes over the old table's ID and layout, and its columns take
// over the IDs of old columns with the same case-insensitive title.
// Unmatched tables keep their fresh IDs and zero layout. Enum types
// match by exact name and edges by constraint name, for ID stability
// across regenerations.
func Reconcile(prev, next *graph.SchemaGraph) *graph.SchemaGraph {
	if prev == nil || next == nil {
		return next
	}

	// Settings never round-trip through DDL, so the previous graph is
	// the only source of truth for them.
	next.Settings = prev.Settings

	for _, t := range next.Tables {
		old, ok := matchTable(prev, t)
		if !ok {
			continue
		}
		t.ID = old.ID
		t.Layout = old.Layout
		for _, c := range t.Columns {
			if oldCol, ok := old.ColumnByTitle(c.Title); ok {
				c.ID = oldCol.ID
			}
		}
	}

	for _, e := range next.EnumTypes {
		if oldEnum, ok := prev.EnumByName(e.Name); ok {
			e.ID = oldEnum.ID
		}
	}

	for _, e := range next.Edges {
		if oldEdge, ok := edgeByConstraintName(prev, e.ConstraintName); ok {
			e.ID = oldEdge.ID
		}
	}

	return next
}

func matchTable(prev *graph.SchemaGraph, t *graph.Table) (*graph.Table, bool) {
	if t.ID != "" {
		if old, ok := prev.TableByID(t.ID); ok {
			return old, true
		}
	}
	return prev.TableByLabel(t.Label)
}

func edgeByConstraintName(g *graph.SchemaGraph, name string) (*graph.ForeignKeyEdge, bool) {
	if name == "" {
		return nil, false
	}
	for _, e := range g.Edges {
		if e.ConstraintName == name {
			return e, true
		}
	}
	return nil, false
}
