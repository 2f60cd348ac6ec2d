// Package sqlparse implements tokenization and parsing of SQL DDL into the
// schema graph. Only the DDL subset the designer round-trips is recognized;
// every other statement kind is skipped, not rejected.
package sqlparse

// TokenType represents the type of a SQL token.
type TokenType int

// Token type constants
const (
	// Special tokens
	TK_EOF TokenType = iota
	TK_ILLEGAL
	TK_SPACE
	TK_COMMENT

	// Literals
	TK_INTEGER
	TK_FLOAT
	TK_STRING
	TK_ID

	// Keywords - statements
	TK_CREATE
	TK_TABLE
	TK_TYPE
	TK_INDEX
	TK_ALTER
	TK_ADD
	TK_DROP

	// Keywords - constraints
	TK_PRIMARY
	TK_KEY
	TK_UNIQUE
	TK_NOT
	TK_NULL
	TK_CHECK
	TK_DEFAULT
	TK_CONSTRAINT
	TK_FOREIGN
	TK_REFERENCES
	TK_COLLATE

	// Keywords - referential actions
	TK_ON
	TK_DELETE
	TK_UPDATE
	TK_SET
	TK_CASCADE
	TK_RESTRICT
	TK_NO
	TK_ACTION

	// Keywords - modifiers
	TK_AS
	TK_IF
	TK_EXISTS
	TK_ENUM

	// Operators
	TK_EQ     // =, ==
	TK_NE     // <>, !=
	TK_LT     // <
	TK_LE     // <=
	TK_GT     // >
	TK_GE     // >=
	TK_PLUS   // +
	TK_MINUS  // -
	TK_STAR   // *
	TK_SLASH  // /
	TK_CONCAT // ||

	// Punctuation
	TK_LP    // (
	TK_RP    // )
	TK_COMMA // ,
	TK_SEMI  // ;
	TK_DOT   // .
)

// Token represents a SQL token with its type, text, and position.
type Token struct {
	Type   TokenType // Token type
	Lexeme string    // Raw text of the token
	Pos    int       // Starting position in source
	Line   int       // Line number (1-based)
	Col    int       // Column number (1-based)
}

// String returns a string representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TK_EOF:
		return "EOF"
	case TK_ILLEGAL:
		return "ILLEGAL"
	case TK_SPACE:
		return "SPACE"
	case TK_COMMENT:
		return "COMMENT"
	case TK_INTEGER:
		return "INTEGER"
	case TK_FLOAT:
		return "FLOAT"
	case TK_STRING:
		return "STRING"
	case TK_ID:
		return "ID"
	case TK_CREATE:
		return "CREATE"
	case TK_TABLE:
		return "TABLE"
	case TK_TYPE:
		return "TYPE"
	case TK_INDEX:
		return "INDEX"
	case TK_ALTER:
		return "ALTER"
	case TK_ADD:
		return "ADD"
	case TK_DROP:
		return "DROP"
	case TK_PRIMARY:
		return "PRIMARY"
	case TK_KEY:
		return "KEY"
	case TK_UNIQUE:
		return "UNIQUE"
	case TK_NOT:
		return "NOT"
	case TK_NULL:
		return "NULL"
	case TK_CHECK:
		return "CHECK"
	case TK_DEFAULT:
		return "DEFAULT"
	case TK_CONSTRAINT:
		return "CONSTRAINT"
	case TK_FOREIGN:
		return "FOREIGN"
	case TK_REFERENCES:
		return "REFERENCES"
	case TK_COLLATE:
		return "COLLATE"
	case TK_ON:
		return "ON"
	case TK_DELETE:
		return "DELETE"
	case TK_UPDATE:
		return "UPDATE"
	case TK_SET:
		return "SET"
	case TK_CASCADE:
		return "CASCADE"
	case TK_RESTRICT:
		return "RESTRICT"
	case TK_NO:
		return "NO"
	case TK_ACTION:
		return "ACTION"
	case TK_AS:
		return "AS"
	case TK_IF:
		return "IF"
	case TK_EXISTS:
		return "EXISTS"
	case TK_ENUM:
		return "ENUM"
	case TK_EQ:
		return "EQ"
	case TK_NE:
		return "NE"
	case TK_LT:
		return "LT"
	case TK_LE:
		return "LE"
	case TK_GT:
		return "GT"
	case TK_GE:
		return "GE"
	case TK_PLUS:
		return "PLUS"
	case TK_MINUS:
		return "MINUS"
	case TK_STAR:
		return "STAR"
	case TK_SLASH:
		return "SLASH"
	case TK_CONCAT:
		return "CONCAT"
	case TK_LP:
		return "LP"
	case TK_RP:
		return "RP"
	case TK_COMMA:
		return "COMMA"
	case TK_SEMI:
		return "SEMI"
	case TK_DOT:
		return "DOT"
	default:
		return "UNKNOWN"
	}
}

// IsKeyword returns true if the token is a SQL keyword.
func (t TokenType) IsKeyword() bool {
	return t >= TK_CREATE && t <= TK_ENUM
}

// IsLiteral returns true if the token is a literal value.
func (t TokenType) IsLiteral() bool {
	return t >= TK_INTEGER && t <= TK_ID
}

// IsOperator returns true if the token is an operator.
func (t TokenType) IsOperator() bool {
	return t >= TK_EQ && t <= TK_CONCAT
}

// IsPunctuation returns true if the token is punctuation.
func (t TokenType) IsPunctuation() bool {
	return t >= TK_LP && t <= TK_DOT
}
