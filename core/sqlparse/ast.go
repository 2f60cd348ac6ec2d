package sqlparse

// Statement represents a parsed DDL statement.
type Statement interface {
	statement()
	String() string
}

// CreateTableStmt represents a CREATE TABLE statement.
type CreateTableStmt struct {
	Name        string
	IfNotExists bool
	Columns     []ColumnDef
	Constraints []TableConstraint
}

func (c *CreateTableStmt) statement() {}
func (c *CreateTableStmt) String() string {
	return "CREATE TABLE"
}

// CreateTypeStmt represents a CREATE TYPE ... AS ENUM statement.
type CreateTypeStmt struct {
	Name   string
	Values []string
}

func (c *CreateTypeStmt) statement() {}
func (c *CreateTypeStmt) String() string {
	return "CREATE TYPE"
}

// AlterTableStmt represents an ALTER TABLE ... ADD [CONSTRAINT <name>]
// FOREIGN KEY statement. Other table alterations are skipped at parse time
// and never reach the AST.
type AlterTableStmt struct {
	Table          string
	ConstraintName string
	Columns        []string
	ForeignKey     *ForeignKeyClause
}

func (a *AlterTableStmt) statement() {}
func (a *AlterTableStmt) String() string {
	return "ALTER TABLE"
}

// CreateIndexStmt represents a CREATE [UNIQUE] INDEX statement.
type CreateIndexStmt struct {
	Name        string
	Table       string
	Columns     []string
	Unique      bool
	IfNotExists bool
}

func (c *CreateIndexStmt) statement() {}
func (c *CreateIndexStmt) String() string {
	return "CREATE INDEX"
}

// ColumnDef represents a column definition inside CREATE TABLE. Type holds
// the raw physical type token (e.g. "varchar(255)"); mapping it back to the
// logical vocabulary happens during graph lowering. Line/Col locate the
// definition for error reporting.
type ColumnDef struct {
	Name        string
	Type        string
	Constraints []ColumnConstraint
	Line        int
	Col         int
}

// ColumnConstraint represents an inline column constraint.
type ColumnConstraint struct {
	Type       ConstraintType
	Name       string
	Default    string
	ForeignKey *ForeignKeyClause
}

// TableConstraint represents a table-level constraint.
type TableConstraint struct {
	Type       ConstraintType
	Name       string
	Columns    []string
	ForeignKey *ForeignKeyClause
}

type ConstraintType int

const (
	ConstraintPrimaryKey ConstraintType = iota
	ConstraintNotNull
	ConstraintUnique
	ConstraintDefault
	ConstraintForeignKey
	ConstraintCheck
	ConstraintCollate
)

// ForeignKeyClause represents the REFERENCES part of a foreign-key
// constraint: the referenced table and column plus referential actions.
type ForeignKeyClause struct {
	Table    string
	Column   string
	OnDelete ForeignKeyAction
	OnUpdate ForeignKeyAction
}

// ForeignKeyAction is a referential action on a foreign-key clause.
type ForeignKeyAction int

const (
	FKActionNone ForeignKeyAction = iota
	FKActionCascade
	FKActionRestrict
	FKActionSetNull
	FKActionSetDefault
	FKActionNoAction
)
