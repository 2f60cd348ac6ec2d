// Package sqlgen renders a schema graph as dialect-correct DDL text.
// Generation is deterministic: identical graphs produce byte-identical SQL,
// which the session layer relies on for no-op change detection.
package sqlgen

import (
	"strings"
	"unicode"

	"github.com/FocuswithJustin/SchemaCanvas/core/dialect"
	"github.com/FocuswithJustin/SchemaCanvas/core/errors"
	"github.com/FocuswithJustin/SchemaCanvas/core/graph"
)

// fkSectionMarker heads the trailing ALTER TABLE block. The repair pass
// scopes its foreign-key dedup to sections under this exact comment.
const fkSectionMarker = "-- Foreign key constraints"

// Generate renders the graph as DDL for the given dialect. Generation never
// fails: a column whose logical type has no mapping and an edge referencing
// a missing or unrendered column are skipped, each reported as a warning.
func Generate(d dialect.Dialect, g *graph.SchemaGraph) (string, []error) {
	var stmts []string
	var warnings []error

	if d.SupportsEnums() {
		for _, e := range g.EnumTypes {
			stmts = append(stmts, enumSQL(d, g, e))
		}
	}

	// Dangling edges drop out before any rendering decision, as do edges
	// touching a column the table body will not render.
	skipped := skippedColumns(d, g)
	var edges []*graph.ForeignKeyEdge
	for _, e := range g.Edges {
		if err := checkEdge(g, e); err != nil {
			warnings = append(warnings, err)
			continue
		}
		if skipped[colKeyFor(e.SourceTable, e.SourceColumn)] {
			warnings = append(warnings, errors.NewGraphReference(e.ConstraintName, e.SourceTable, e.SourceColumn))
			continue
		}
		if skipped[colKeyFor(e.TargetTable, e.TargetColumn)] {
			warnings = append(warnings, errors.NewGraphReference(e.ConstraintName, e.TargetTable, e.TargetColumn))
			continue
		}
		edges = append(edges, e)
	}

	// Inline mode renders every surviving edge inside its source table's
	// CREATE TABLE; otherwise all edges defer to the trailing ALTER block.
	var deferred []*graph.ForeignKeyEdge
	if !g.Settings.UseInlineConstraints {
		deferred = edges
	}

	for _, t := range g.Tables {
		stmts = append(stmts, tableSQL(d, g, t, edges, &warnings))
		stmts = append(stmts, indexSQL(d, g, t)...)
	}

	if len(deferred) > 0 {
		stmts = append(stmts, foreignKeyBlock(d, g, deferred))
	}

	if len(stmts) == 0 {
		return "", warnings
	}
	return strings.Join(stmts, "\n\n") + "\n", warnings
}

func enumSQL(d dialect.Dialect, g *graph.SchemaGraph, e *graph.EnumType) string {
	var b strings.Builder
	b.WriteString("CREATE TYPE ")
	b.WriteString(quoteIdent(d, g, e.Name))
	b.WriteString(" AS ENUM (")
	for i, v := range e.Values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(`"`)
		b.WriteString(strings.ReplaceAll(v, `"`, `""`))
		b.WriteString(`"`)
	}
	b.WriteString(");")
	return b.String()
}

func tableSQL(d dialect.Dialect, g *graph.SchemaGraph, t *graph.Table,
	edges []*graph.ForeignKeyEdge, warnings *[]error) string {

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(quoteIdent(d, g, t.Label))
	b.WriteString(" (")

	first := true
	for _, col := range t.Columns {
		typ, err := d.TypeFor(col.Type, col.EnumRef)
		if err != nil {
			*warnings = append(*warnings, err)
			continue
		}
		if col.Type == graph.TypeEnum {
			typ = quoteIdent(d, g, typ)
		}

		if !first {
			b.WriteString(",")
		}
		b.WriteString("\n  ")
		b.WriteString(quoteIdent(d, g, col.Title))
		b.WriteString(" ")
		b.WriteString(typ)

		if col.Default != "" {
			b.WriteString(" DEFAULT ")
			b.WriteString(col.Default)
		}
		if col.HasConstraint(graph.ConstraintNotNull) {
			b.WriteString(" NOT NULL")
		}
		if col.HasConstraint(graph.ConstraintUnique) {
			b.WriteString(" UNIQUE")
		}
		if col.HasConstraint(graph.ConstraintPrimary) {
			b.WriteString(" PRIMARY KEY")
		}

		if g.Settings.UseInlineConstraints {
			for _, e := range edges {
				if strings.EqualFold(e.SourceTable, t.Label) &&
					strings.EqualFold(e.SourceColumn, col.Title) {
					writeInlineReference(&b, d, g, e)
				}
			}
		}

		first = false
	}

	b.WriteString("\n);")
	return b.String()
}

func writeInlineReference(b *strings.Builder, d dialect.Dialect, g *graph.SchemaGraph, e *graph.ForeignKeyEdge) {
	b.WriteString(" REFERENCES ")
	b.WriteString(quoteIdent(d, g, e.TargetTable))
	b.WriteString(" (")
	b.WriteString(quoteIdent(d, g, e.TargetColumn))
	b.WriteString(")")
	writeActions(b, e)
}

// indexSQL emits one CREATE INDEX per index-tagged column. Index constraints
// are never inlined into the CREATE TABLE on any dialect.
func indexSQL(d dialect.Dialect, g *graph.SchemaGraph, t *graph.Table) []string {
	var stmts []string
	for _, col := range t.Columns {
		if !col.HasConstraint(graph.ConstraintIndex) {
			continue
		}
		var b strings.Builder
		b.WriteString("CREATE INDEX ")
		b.WriteString(quoteIdent(d, g, graph.IndexName(t.Label, col.Title)))
		b.WriteString(" ON ")
		b.WriteString(quoteIdent(d, g, t.Label))
		b.WriteString(" (")
		b.WriteString(quoteIdent(d, g, col.Title))
		b.WriteString(");")
		stmts = append(stmts, b.String())
	}
	return stmts
}

func foreignKeyBlock(d dialect.Dialect, g *graph.SchemaGraph, edges []*graph.ForeignKeyEdge) string {
	lines := make([]string, 0, len(edges)+1)
	lines = append(lines, fkSectionMarker)
	for _, e := range edges {
		var b strings.Builder
		b.WriteString("ALTER TABLE ")
		b.WriteString(quoteIdent(d, g, e.SourceTable))
		b.WriteString(" ADD CONSTRAINT ")
		b.WriteString(quoteIdent(d, g, e.ConstraintName))
		b.WriteString(" FOREIGN KEY (")
		b.WriteString(quoteIdent(d, g, e.SourceColumn))
		b.WriteString(") REFERENCES ")
		b.WriteString(quoteIdent(d, g, e.TargetTable))
		b.WriteString(" (")
		b.WriteString(quoteIdent(d, g, e.TargetColumn))
		b.WriteString(")")
		writeActions(&b, e)
		b.WriteString(";")
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func writeActions(b *strings.Builder, e *graph.ForeignKeyEdge) {
	if e.OnDelete != graph.ActionNone {
		b.WriteString(" ON DELETE ")
		b.WriteString(string(e.OnDelete))
	}
	if e.OnUpdate != graph.ActionNone {
		b.WriteString(" ON UPDATE ")
		b.WriteString(string(e.OnUpdate))
	}
}

type colKey struct {
	table  string
	column string
}

func colKeyFor(table, column string) colKey {
	return colKey{strings.ToLower(table), strings.ToLower(column)}
}

// skippedColumns collects the columns whose type has no mapping for the
// dialect. tableSQL drops them from the CREATE TABLE body, so a foreign
// key touching one would reference a column the DDL never defines.
func skippedColumns(d dialect.Dialect, g *graph.SchemaGraph) map[colKey]bool {
	skipped := make(map[colKey]bool)
	for _, t := range g.Tables {
		for _, col := range t.Columns {
			if _, err := d.TypeFor(col.Type, col.EnumRef); err != nil {
				skipped[colKeyFor(t.Label, col.Title)] = true
			}
		}
	}
	return skipped
}

// checkEdge verifies both endpoints of a foreign-key edge exist in the graph.
func checkEdge(g *graph.SchemaGraph, e *graph.ForeignKeyEdge) error {
	src, ok := g.TableByLabel(e.SourceTable)
	if !ok {
		return errors.NewGraphReference(e.ConstraintName, e.SourceTable, e.SourceColumn)
	}
	if _, ok := src.ColumnByTitle(e.SourceColumn); !ok {
		return errors.NewGraphReference(e.ConstraintName, e.SourceTable, e.SourceColumn)
	}
	dst, ok := g.TableByLabel(e.TargetTable)
	if !ok {
		return errors.NewGraphReference(e.ConstraintName, e.TargetTable, e.TargetColumn)
	}
	if _, ok := dst.ColumnByTitle(e.TargetColumn); !ok {
		return errors.NewGraphReference(e.ConstraintName, e.TargetTable, e.TargetColumn)
	}
	return nil
}

// quoteIdent renders an identifier per the graph's quoting policy: quoted
// when CaseSensitiveIdentifiers is set, and always when the name contains
// whitespace. Generation never emits a bare multi-word identifier.
func quoteIdent(d dialect.Dialect, g *graph.SchemaGraph, name string) string {
	if g.Settings.CaseSensitiveIdentifiers || strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return d.Quote(name)
	}
	return name
}
