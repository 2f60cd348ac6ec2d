package sqlparse

import (
	"github.com/FocuswithJustin/SchemaCanvas/core/dialect"
	"github.com/FocuswithJustin/SchemaCanvas/core/errors"
	"github.com/FocuswithJustin/SchemaCanvas/core/graph"
)

// Parse parses DDL text into a schema graph for the given dialect. The graph
// carries freshly generated IDs; matching entities against a previous graph
// generation is the reconciler's job.
func Parse(d dialect.Dialect, sql string) (*graph.SchemaGraph, error) {
	stmts, err := ParseStatements(sql)
	if err != nil {
		return nil, err
	}
	return BuildGraph(d, stmts)
}

// BuildGraph lowers parsed statements into a schema graph. Enum definitions
// are collected first so a table may reference an enum declared later in the
// document; foreign keys and indexes resolve after all tables exist. An
// unmappable column type aborts the whole build.
func BuildGraph(d dialect.Dialect, stmts []Statement) (*graph.SchemaGraph, error) {
	g := graph.NewSchemaGraph()

	for _, stmt := range stmts {
		if ct, ok := stmt.(*CreateTypeStmt); ok {
			g.AddEnum(graph.NewEnumType(ct.Name, ct.Values...))
		}
	}

	for _, stmt := range stmts {
		if ct, ok := stmt.(*CreateTableStmt); ok {
			if err := lowerTable(g, d, ct); err != nil {
				return nil, err
			}
		}
	}

	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *AlterTableStmt:
			lowerAlter(g, s)
		case *CreateIndexStmt:
			lowerIndex(g, s)
		}
	}

	return g, nil
}

func lowerTable(g *graph.SchemaGraph, d dialect.Dialect, stmt *CreateTableStmt) error {
	table := graph.NewTable(stmt.Name)
	g.AddTable(table)

	for i := range stmt.Columns {
		def := &stmt.Columns[i]

		logical, enumRef, err := lowerType(g, d, def)
		if err != nil {
			return err
		}

		col := graph.NewColumn(def.Name, logical)
		col.EnumRef = enumRef
		table.AddColumn(col)

		for _, con := range def.Constraints {
			switch con.Type {
			case ConstraintPrimaryKey:
				col.AddConstraint(graph.ConstraintPrimary)
			case ConstraintNotNull:
				col.AddConstraint(graph.ConstraintNotNull)
			case ConstraintUnique:
				col.AddConstraint(graph.ConstraintUnique)
			case ConstraintDefault:
				col.Default = con.Default
			case ConstraintForeignKey:
				addEdge(g, con.Name, table.Label, col.Title, con.ForeignKey)
			}
		}
	}

	for i := range stmt.Constraints {
		con := &stmt.Constraints[i]
		switch con.Type {
		case ConstraintPrimaryKey:
			tagColumns(table, con.Columns, graph.ConstraintPrimary)
		case ConstraintUnique:
			tagColumns(table, con.Columns, graph.ConstraintUnique)
		case ConstraintForeignKey:
			if len(con.Columns) > 0 {
				addEdge(g, con.Name, table.Label, con.Columns[0], con.ForeignKey)
			}
		}
	}

	return nil
}

// lowerType maps a raw type token to the logical vocabulary. A token naming
// a defined enum type (case-sensitive) becomes an enum reference; anything
// the inverse dialect map cannot place is a parse failure.
func lowerType(g *graph.SchemaGraph, d dialect.Dialect, def *ColumnDef) (graph.LogicalType, string, error) {
	if _, ok := g.EnumByName(def.Type); ok {
		return graph.TypeEnum, def.Type, nil
	}
	if logical, ok := d.LogicalFor(def.Type); ok {
		return logical, "", nil
	}
	return "", "", errors.NewParsef(def.Line, def.Col,
		"column %q has unknown type %q for dialect %q", def.Name, def.Type, string(d))
}

// addEdge registers a foreign-key edge. Edges with an explicitly declared
// constraint name that is already in use are dropped (first declaration
// wins); unnamed edges get a generated, collision-suffixed name.
func addEdge(g *graph.SchemaGraph, name, srcTable, srcColumn string, fk *ForeignKeyClause) {
	if fk == nil {
		return
	}
	if name != "" && g.HasConstraintName(name) {
		return
	}
	g.AddEdge(&graph.ForeignKeyEdge{
		ConstraintName: name,
		SourceTable:    srcTable,
		SourceColumn:   srcColumn,
		TargetTable:    fk.Table,
		TargetColumn:   fk.Column,
		OnDelete:       lowerAction(fk.OnDelete),
		OnUpdate:       lowerAction(fk.OnUpdate),
	})
}

func lowerAlter(g *graph.SchemaGraph, stmt *AlterTableStmt) {
	if stmt.ForeignKey == nil || len(stmt.Columns) == 0 {
		return
	}
	addEdge(g, stmt.ConstraintName, stmt.Table, stmt.Columns[0], stmt.ForeignKey)
}

func lowerIndex(g *graph.SchemaGraph, stmt *CreateIndexStmt) {
	table, ok := g.TableByLabel(stmt.Table)
	if !ok {
		return
	}
	for _, name := range stmt.Columns {
		if col, found := table.ColumnByTitle(name); found {
			col.AddConstraint(graph.ConstraintIndex)
			if stmt.Unique {
				col.AddConstraint(graph.ConstraintUnique)
			}
		}
	}
}

func tagColumns(table *graph.Table, names []string, tag graph.Constraint) {
	for _, name := range names {
		if col, ok := table.ColumnByTitle(name); ok {
			col.AddConstraint(tag)
		}
	}
}

func lowerAction(a ForeignKeyAction) graph.RefAction {
	switch a {
	case FKActionCascade:
		return graph.ActionCascade
	case FKActionRestrict:
		return graph.ActionRestrict
	case FKActionSetNull:
		return graph.ActionSetNull
	case FKActionSetDefault:
		return graph.ActionSetDefault
	case FKActionNoAction:
		return graph.ActionNoAction
	default:
		return graph.ActionNone
	}
}
