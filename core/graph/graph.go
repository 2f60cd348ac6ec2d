// Package graph defines the schema graph: the in-memory model of tables,
// columns, foreign-key edges, and enum types that the sync engine round-trips
// through SQL DDL. The graph is owned by the session; layout metadata is
// opaque here and only preserved across rebuilds.
package graph

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// LogicalType is a column's base type, drawn from a fixed vocabulary.
// Dialect-specific physical type names are derived from it, never stored.
type LogicalType string

const (
	TypeUUID      LogicalType = "uuid"
	TypeVarchar   LogicalType = "varchar"
	TypeText      LogicalType = "text"
	TypeInt4      LogicalType = "int4"
	TypeMoney     LogicalType = "money"
	TypeTimestamp LogicalType = "timestamp"
	TypeBoolean   LogicalType = "boolean"
	TypeJSONB     LogicalType = "jsonb"
	TypeDate      LogicalType = "date"
	TypeTime      LogicalType = "time"
	// TypeEnum marks a reference to a named EnumType; the name lives in
	// Column.EnumRef.
	TypeEnum LogicalType = "enum"
)

// LogicalTypes lists the full vocabulary in declaration order.
var LogicalTypes = []LogicalType{
	TypeUUID, TypeVarchar, TypeText, TypeInt4, TypeMoney,
	TypeTimestamp, TypeBoolean, TypeJSONB, TypeDate, TypeTime, TypeEnum,
}

// Valid reports whether t is part of the vocabulary.
func (t LogicalType) Valid() bool {
	for _, lt := range LogicalTypes {
		if t == lt {
			return true
		}
	}
	return false
}

// Constraint is a column constraint tag.
type Constraint string

const (
	ConstraintPrimary    Constraint = "primary"
	ConstraintUnique     Constraint = "unique"
	ConstraintNotNull    Constraint = "notnull"
	ConstraintIndex      Constraint = "index"
	ConstraintForeignKey Constraint = "foreign-key"
)

// RefAction is a referential action on a foreign-key edge.
// The empty string means the action was not specified.
type RefAction string

const (
	ActionNone       RefAction = ""
	ActionCascade    RefAction = "CASCADE"
	ActionRestrict   RefAction = "RESTRICT"
	ActionSetNull    RefAction = "SET NULL"
	ActionSetDefault RefAction = "SET DEFAULT"
	ActionNoAction   RefAction = "NO ACTION"
)

// ParseRefAction maps raw SQL action text to a RefAction.
func ParseRefAction(s string) (RefAction, bool) {
	switch strings.ToUpper(strings.Join(strings.Fields(s), " ")) {
	case "CASCADE":
		return ActionCascade, true
	case "RESTRICT":
		return ActionRestrict, true
	case "SET NULL":
		return ActionSetNull, true
	case "SET DEFAULT":
		return ActionSetDefault, true
	case "NO ACTION":
		return ActionNoAction, true
	}
	return ActionNone, false
}

// Position is a node's canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout holds the visual metadata attached to a table. The core never
// interprets it; the reconciler copies it verbatim between graph generations.
type Layout struct {
	Position Position       `json:"position"`
	Color    string         `json:"color,omitempty"`
	Style    map[string]any `json:"style,omitempty"`
}

// Column is a single table column.
type Column struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        LogicalType  `json:"type"`
	EnumRef     string       `json:"enumRef,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty"`
	Default     string       `json:"default,omitempty"`
}

// NewColumn creates a column with a fresh ID.
func NewColumn(title string, typ LogicalType) *Column {
	return &Column{
		ID:    uuid.New().String(),
		Title: title,
		Type:  typ,
	}
}

// HasConstraint reports whether the column carries the given tag.
func (c *Column) HasConstraint(tag Constraint) bool {
	for _, t := range c.Constraints {
		if t == tag {
			return true
		}
	}
	return false
}

// AddConstraint appends a tag, preserving order and ignoring duplicates.
func (c *Column) AddConstraint(tag Constraint) {
	if !c.HasConstraint(tag) {
		c.Constraints = append(c.Constraints, tag)
	}
}

// Table is a named, ordered collection of columns plus layout metadata.
type Table struct {
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	Columns []*Column `json:"columns"`
	Layout  Layout    `json:"layout"`
}

// NewTable creates a table with a fresh ID and no columns.
func NewTable(label string) *Table {
	return &Table{
		ID:    uuid.New().String(),
		Label: label,
	}
}

// ColumnByTitle retrieves a column by title (case-insensitive).
func (t *Table) ColumnByTitle(title string) (*Column, bool) {
	lower := strings.ToLower(title)
	for _, col := range t.Columns {
		if strings.ToLower(col.Title) == lower {
			return col, true
		}
	}
	return nil, false
}

// ColumnByID retrieves a column by its stable ID.
func (t *Table) ColumnByID(id string) (*Column, bool) {
	for _, col := range t.Columns {
		if col.ID == id {
			return col, true
		}
	}
	return nil, false
}

// AddColumn appends a column, suffixing its title if a column with the same
// title (case-insensitive) already exists. Titles stay unique per table.
func (t *Table) AddColumn(col *Column) {
	if col.ID == "" {
		col.ID = uuid.New().String()
	}
	col.Title = t.uniqueTitle(col.Title)
	t.Columns = append(t.Columns, col)
}

func (t *Table) uniqueTitle(title string) string {
	if _, ok := t.ColumnByTitle(title); !ok {
		return title
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", title, i)
		if _, ok := t.ColumnByTitle(candidate); !ok {
			return candidate
		}
	}
}

// ForeignKeyEdge links a source column to a target column. Tables and
// columns are referenced by label/title; resolution happens at generation
// time so a dangling edge degrades to a warning instead of invalid SQL.
type ForeignKeyEdge struct {
	ID             string    `json:"id"`
	ConstraintName string    `json:"constraintName"`
	SourceTable    string    `json:"sourceTable"`
	SourceColumn   string    `json:"sourceColumn"`
	TargetTable    string    `json:"targetTable"`
	TargetColumn   string    `json:"targetColumn"`
	OnDelete       RefAction `json:"onDelete,omitempty"`
	OnUpdate       RefAction `json:"onUpdate,omitempty"`
}

// EnumType is a named enumeration (PostgreSQL only). Names are
// case-sensitive and unique within the graph.
type EnumType struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// NewEnumType creates an enum type with a fresh ID.
func NewEnumType(name string, values ...string) *EnumType {
	return &EnumType{
		ID:     uuid.New().String(),
		Name:   name,
		Values: values,
	}
}

// Settings control how DDL is rendered from the graph.
type Settings struct {
	// CaseSensitiveIdentifiers quotes every identifier on emission and makes
	// table labels case-sensitive for uniqueness.
	CaseSensitiveIdentifiers bool `json:"caseSensitiveIdentifiers"`
	// UseInlineConstraints renders foreign keys as inline REFERENCES clauses
	// instead of a trailing ALTER TABLE block.
	UseInlineConstraints bool `json:"useInlineConstraints"`
}

// SchemaGraph is the canonical model. Tables, edges, and enum types keep
// their declaration order; generation walks them in that order so output is
// deterministic.
type SchemaGraph struct {
	Tables    []*Table          `json:"tables"`
	Edges     []*ForeignKeyEdge `json:"edges,omitempty"`
	EnumTypes []*EnumType       `json:"enumTypes,omitempty"`
	Settings  Settings          `json:"settings"`
}

// NewSchemaGraph creates an empty graph with default settings.
func NewSchemaGraph() *SchemaGraph {
	return &SchemaGraph{}
}

// TableByLabel retrieves a table by display label (case-insensitive).
func (g *SchemaGraph) TableByLabel(label string) (*Table, bool) {
	lower := strings.ToLower(label)
	for _, t := range g.Tables {
		if strings.ToLower(t.Label) == lower {
			return t, true
		}
	}
	return nil, false
}

// TableByID retrieves a table by its stable ID.
func (g *SchemaGraph) TableByID(id string) (*Table, bool) {
	for _, t := range g.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// EnumByName retrieves an enum type by name. Enum names are case-sensitive.
func (g *SchemaGraph) EnumByName(name string) (*EnumType, bool) {
	for _, e := range g.EnumTypes {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// AddTable appends a table, suffixing its label on collision. Uniqueness is
// case-insensitive unless Settings.CaseSensitiveIdentifiers is set.
func (g *SchemaGraph) AddTable(t *Table) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.Label = g.uniqueLabel(t.Label)
	g.Tables = append(g.Tables, t)
}

func (g *SchemaGraph) uniqueLabel(label string) string {
	if !g.labelTaken(label) {
		return label
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", label, i)
		if !g.labelTaken(candidate) {
			return candidate
		}
	}
}

func (g *SchemaGraph) labelTaken(label string) bool {
	for _, t := range g.Tables {
		if g.Settings.CaseSensitiveIdentifiers {
			if t.Label == label {
				return true
			}
		} else if strings.EqualFold(t.Label, label) {
			return true
		}
	}
	return false
}

// AddEnum appends an enum type, dropping exact-name duplicates.
func (g *SchemaGraph) AddEnum(e *EnumType) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if _, ok := g.EnumByName(e.Name); ok {
		return
	}
	g.EnumTypes = append(g.EnumTypes, e)
}

// AddEdge appends a foreign-key edge. A missing constraint name is generated
// deterministically from the endpoints; names are kept unique per graph by
// numeric suffixing. The source column gains the foreign-key tag when it
// resolves.
func (g *SchemaGraph) AddEdge(e *ForeignKeyEdge) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.ConstraintName == "" {
		e.ConstraintName = ForeignKeyName(e.SourceTable, e.SourceColumn, e.TargetTable)
	}
	e.ConstraintName = g.uniqueConstraintName(e.ConstraintName)
	g.Edges = append(g.Edges, e)

	if t, ok := g.TableByLabel(e.SourceTable); ok {
		if col, ok := t.ColumnByTitle(e.SourceColumn); ok {
			col.AddConstraint(ConstraintForeignKey)
		}
	}
}

// HasConstraintName reports whether any edge already uses the given name.
func (g *SchemaGraph) HasConstraintName(name string) bool {
	for _, e := range g.Edges {
		if e.ConstraintName == name {
			return true
		}
	}
	return false
}

func (g *SchemaGraph) uniqueConstraintName(name string) string {
	if !g.HasConstraintName(name) {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if !g.HasConstraintName(candidate) {
			return candidate
		}
	}
}

// ForeignKeyName builds the deterministic generated constraint name for an
// edge: fk_<source>_<column>_<target>, lowercased with whitespace folded.
func ForeignKeyName(sourceTable, sourceColumn, targetTable string) string {
	return fmt.Sprintf("fk_%s_%s_%s",
		foldName(sourceTable), foldName(sourceColumn), foldName(targetTable))
}

// IndexName builds the deterministic index name for an indexed column:
// idx_<table>_<column>, lowercased with whitespace folded.
func IndexName(table, column string) string {
	return fmt.Sprintf("idx_%s_%s", foldName(table), foldName(column))
}

func foldName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "_"))
}

// EnsureIDs assigns fresh IDs to every entity missing one. Documents edited
// by hand may omit them.
func (g *SchemaGraph) EnsureIDs() {
	for _, t := range g.Tables {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		for _, c := range t.Columns {
			if c.ID == "" {
				c.ID = uuid.New().String()
			}
		}
	}
	for _, e := range g.Edges {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
	}
	for _, e := range g.EnumTypes {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
	}
}
