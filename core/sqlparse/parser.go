package sqlparse

import (
	"strings"

	"github.com/FocuswithJustin/SchemaCanvas/core/errors"
)

// Parser implements a recursive descent parser for the DDL subset.
type Parser struct {
	lexer   *Lexer
	tokens  []Token
	current int
}

// NewParser creates a new parser for the given SQL input.
func NewParser(input string) *Parser {
	return &Parser{
		lexer:  NewLexer(input),
		tokens: make([]Token, 0),
	}
}

// Parse parses the SQL input and returns the recognized DDL statements.
// Statement kinds outside the DDL subset (DML, views, functions, transaction
// control) are skipped to the next terminator. Parsing is atomic: the first
// error in a recognized statement aborts the whole parse.
func (p *Parser) Parse() ([]Statement, error) {
	// Tokenize entire input first
	for {
		tok := p.lexer.NextToken()
		if tok.Type != TK_SPACE && tok.Type != TK_COMMENT {
			p.tokens = append(p.tokens, tok)
		}
		if tok.Type == TK_EOF {
			break
		}
	}

	statements := make([]Statement, 0)

	for !p.isAtEnd() {
		if p.match(TK_SEMI) {
			continue // skip empty statements
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			statements = append(statements, stmt)
		}

		// Consume optional semicolon
		p.match(TK_SEMI)
	}

	return statements, nil
}

// parseStatement parses a single statement, or skips one outside the subset.
func (p *Parser) parseStatement() (Statement, error) {
	switch {
	case p.match(TK_CREATE):
		return p.parseCreate()
	case p.match(TK_ALTER):
		return p.parseAlter()
	default:
		p.skipStatement()
		return nil, nil
	}
}

// =============================================================================
// CREATE
// =============================================================================

func (p *Parser) parseCreate() (Statement, error) {
	switch {
	case p.match(TK_TABLE):
		return p.parseCreateTable()
	case p.match(TK_TYPE):
		return p.parseCreateType()
	case p.match(TK_INDEX):
		return p.parseCreateIndex(false)
	case p.check(TK_UNIQUE) && p.peekAhead(1).Type == TK_INDEX:
		p.advance() // consume UNIQUE
		p.advance() // consume INDEX
		return p.parseCreateIndex(true)
	default:
		// CREATE VIEW, TRIGGER, FUNCTION, ... are outside the subset.
		p.skipStatement()
		return nil, nil
	}
}

func (p *Parser) parseCreateTable() (*CreateTableStmt, error) {
	stmt := &CreateTableStmt{}

	if p.match(TK_IF) {
		if !p.match(TK_NOT) || !p.match(TK_EXISTS) {
			return nil, p.error("expected NOT EXISTS after IF")
		}
		stmt.IfNotExists = true
	}

	name, err := p.parseQualifiedName("table name")
	if err != nil {
		return nil, err
	}
	stmt.Name = name

	if !p.match(TK_LP) {
		return nil, p.error("expected ( after table name")
	}

	// Parse column definitions and table constraints. An empty body is
	// legal: the designer emits tables before any columns are added.
	if !p.match(TK_RP) {
		for {
			if p.isTableConstraint() {
				constraint, err := p.parseTableConstraint()
				if err != nil {
					return nil, err
				}
				stmt.Constraints = append(stmt.Constraints, *constraint)
			} else {
				col, err := p.parseColumnDef()
				if err != nil {
					return nil, err
				}
				stmt.Columns = append(stmt.Columns, *col)
			}

			if !p.match(TK_COMMA) {
				break
			}
		}

		if !p.match(TK_RP) {
			return nil, p.error("expected ) after column definitions")
		}
	}

	// Trailing table options (ENGINE=..., WITHOUT ROWID, ...) are ignored.
	for !p.isAtEnd() && !p.check(TK_SEMI) &&
		!p.check(TK_CREATE) && !p.check(TK_ALTER) && !p.check(TK_DROP) {
		p.advance()
	}

	return stmt, nil
}

func (p *Parser) parseCreateType() (Statement, error) {
	name, err := p.parseQualifiedName("type name")
	if err != nil {
		return nil, err
	}

	// Only the AS ENUM form is modeled; composite and range types are
	// outside the subset.
	if !p.match(TK_AS) || !p.match(TK_ENUM) {
		p.skipStatement()
		return nil, nil
	}

	stmt := &CreateTypeStmt{Name: name}

	if !p.match(TK_LP) {
		return nil, p.error("expected ( after ENUM")
	}

	if !p.match(TK_RP) {
		for {
			if !p.check(TK_STRING) && !p.check(TK_ID) {
				return nil, p.error("expected enum value")
			}
			stmt.Values = append(stmt.Values, Unquote(p.advance().Lexeme))

			if !p.match(TK_COMMA) {
				break
			}
		}
		if !p.match(TK_RP) {
			return nil, p.error("expected ) after enum values")
		}
	}

	return stmt, nil
}

func (p *Parser) parseCreateIndex(unique bool) (*CreateIndexStmt, error) {
	stmt := &CreateIndexStmt{Unique: unique}

	if p.match(TK_IF) {
		if !p.match(TK_NOT) || !p.match(TK_EXISTS) {
			return nil, p.error("expected NOT EXISTS after IF")
		}
		stmt.IfNotExists = true
	}

	if !p.isName() {
		return nil, p.error("expected index name")
	}
	stmt.Name = Unquote(p.advance().Lexeme)

	if !p.match(TK_ON) {
		return nil, p.error("expected ON after index name")
	}

	table, err := p.parseQualifiedName("table name")
	if err != nil {
		return nil, err
	}
	stmt.Table = table

	// pg_dump emits USING <method> between the table and the column list
	if p.checkWord("USING") {
		p.advance()
		p.advance()
	}

	cols, err := p.parseColumnNameList()
	if err != nil {
		return nil, err
	}
	stmt.Columns = cols

	return stmt, nil
}

// =============================================================================
// ALTER
// =============================================================================

func (p *Parser) parseAlter() (Statement, error) {
	if !p.match(TK_TABLE) {
		p.skipStatement()
		return nil, nil
	}

	table, err := p.parseQualifiedName("table name")
	if err != nil {
		return nil, err
	}

	if !p.match(TK_ADD) {
		// DROP COLUMN, RENAME, OWNER TO, ... are outside the subset.
		p.skipStatement()
		return nil, nil
	}

	stmt := &AlterTableStmt{Table: table}

	if p.match(TK_CONSTRAINT) {
		if !p.isName() {
			return nil, p.error("expected constraint name")
		}
		stmt.ConstraintName = Unquote(p.advance().Lexeme)
	}

	if !p.match(TK_FOREIGN) {
		// ADD COLUMN and other additions are outside the subset.
		p.skipStatement()
		return nil, nil
	}
	if !p.match(TK_KEY) {
		return nil, p.error("expected KEY after FOREIGN")
	}

	cols, err := p.parseColumnNameList()
	if err != nil {
		return nil, err
	}
	stmt.Columns = cols

	if !p.match(TK_REFERENCES) {
		return nil, p.error("expected REFERENCES after FOREIGN KEY columns")
	}

	fk, err := p.parseReferencesClause()
	if err != nil {
		return nil, err
	}
	stmt.ForeignKey = fk

	return stmt, nil
}

// =============================================================================
// Columns and constraints
// =============================================================================

func (p *Parser) parseColumnDef() (*ColumnDef, error) {
	if !p.isName() {
		return nil, p.error("expected column name")
	}

	tok := p.advance()
	col := &ColumnDef{
		Name: Unquote(tok.Lexeme),
		Line: tok.Line,
		Col:  tok.Col,
	}

	if !p.isName() {
		return nil, p.error("expected type for column %q", col.Name)
	}
	col.Type = p.parseTypeName()

	for p.isColumnConstraint() {
		constraint, err := p.parseColumnConstraint()
		if err != nil {
			return nil, err
		}
		col.Constraints = append(col.Constraints, *constraint)
	}

	return col, nil
}

// parseTypeName reads a type token with optional modifiers, e.g.
// "varchar(255)" or "NUMERIC(19,4)". The raw text is preserved for the
// inverse type map. pg_dump's multi-word spellings fold to a single token:
// "character varying" to varchar, "timestamp with time zone" to timestamp.
func (p *Parser) parseTypeName() string {
	name := Unquote(p.advance().Lexeme)

	if (strings.EqualFold(name, "character") || strings.EqualFold(name, "char")) &&
		p.checkWord("VARYING") {
		p.advance()
		name = "varchar"
	}
	if strings.EqualFold(name, "double") && p.checkWord("PRECISION") {
		p.advance()
		name = "double precision"
	}

	var mods strings.Builder
	if p.match(TK_LP) {
		mods.WriteString("(")
		mods.WriteString(p.advance().Lexeme)
		if p.match(TK_COMMA) {
			mods.WriteString(",")
			mods.WriteString(p.advance().Lexeme)
		}
		if p.match(TK_RP) {
			mods.WriteString(")")
		}
	}

	if (p.checkWord("WITH") || p.checkWord("WITHOUT")) &&
		strings.EqualFold(p.peekAhead(1).Lexeme, "TIME") &&
		strings.EqualFold(p.peekAhead(2).Lexeme, "ZONE") {
		p.advance()
		p.advance()
		p.advance()
	}

	return name + mods.String()
}

func (p *Parser) parseColumnConstraint() (*ColumnConstraint, error) {
	constraint := &ColumnConstraint{}

	// Optional constraint name
	if p.match(TK_CONSTRAINT) {
		if !p.isName() {
			return nil, p.error("expected constraint name")
		}
		constraint.Name = Unquote(p.advance().Lexeme)
	}

	switch {
	case p.match(TK_PRIMARY):
		if !p.match(TK_KEY) {
			return nil, p.error("expected KEY after PRIMARY")
		}
		constraint.Type = ConstraintPrimaryKey
	case p.match(TK_NOT):
		if !p.match(TK_NULL) {
			return nil, p.error("expected NULL after NOT")
		}
		constraint.Type = ConstraintNotNull
	case p.match(TK_UNIQUE):
		constraint.Type = ConstraintUnique
	case p.match(TK_DEFAULT):
		constraint.Type = ConstraintDefault
		constraint.Default = p.parseDefaultValue()
	case p.match(TK_REFERENCES):
		fk, err := p.parseReferencesClause()
		if err != nil {
			return nil, err
		}
		constraint.Type = ConstraintForeignKey
		constraint.ForeignKey = fk
	case p.match(TK_CHECK):
		// CHECK expressions are consumed but not modeled.
		if err := p.skipParenGroup(); err != nil {
			return nil, err
		}
		constraint.Type = ConstraintCheck
	case p.match(TK_COLLATE):
		if !p.isName() {
			return nil, p.error("expected collation name")
		}
		p.advance()
		constraint.Type = ConstraintCollate
	default:
		return nil, p.error("expected column constraint")
	}

	return constraint, nil
}

func (p *Parser) parseTableConstraint() (*TableConstraint, error) {
	constraint := &TableConstraint{}

	// Optional constraint name
	if p.match(TK_CONSTRAINT) {
		if !p.isName() {
			return nil, p.error("expected constraint name")
		}
		constraint.Name = Unquote(p.advance().Lexeme)
	}

	switch {
	case p.match(TK_PRIMARY):
		if !p.match(TK_KEY) {
			return nil, p.error("expected KEY after PRIMARY")
		}
		cols, err := p.parseColumnNameList()
		if err != nil {
			return nil, err
		}
		constraint.Type = ConstraintPrimaryKey
		constraint.Columns = cols
	case p.match(TK_UNIQUE):
		cols, err := p.parseColumnNameList()
		if err != nil {
			return nil, err
		}
		constraint.Type = ConstraintUnique
		constraint.Columns = cols
	case p.match(TK_FOREIGN):
		if !p.match(TK_KEY) {
			return nil, p.error("expected KEY after FOREIGN")
		}
		cols, err := p.parseColumnNameList()
		if err != nil {
			return nil, err
		}
		if !p.match(TK_REFERENCES) {
			return nil, p.error("expected REFERENCES after FOREIGN KEY columns")
		}
		fk, err := p.parseReferencesClause()
		if err != nil {
			return nil, err
		}
		constraint.Type = ConstraintForeignKey
		constraint.Columns = cols
		constraint.ForeignKey = fk
	case p.match(TK_CHECK):
		if err := p.skipParenGroup(); err != nil {
			return nil, err
		}
		constraint.Type = ConstraintCheck
	default:
		return nil, p.error("expected table constraint")
	}

	return constraint, nil
}

func (p *Parser) parseReferencesClause() (*ForeignKeyClause, error) {
	fk := &ForeignKeyClause{}

	table, err := p.parseQualifiedName("referenced table name")
	if err != nil {
		return nil, err
	}
	fk.Table = table

	if p.match(TK_LP) {
		if !p.isName() {
			return nil, p.error("expected referenced column name")
		}
		fk.Column = Unquote(p.advance().Lexeme)
		if !p.match(TK_RP) {
			return nil, p.error("expected ) after referenced column")
		}
	}

	for p.match(TK_ON) {
		isDelete := false
		if p.match(TK_DELETE) {
			isDelete = true
		} else if !p.match(TK_UPDATE) {
			return nil, p.error("expected DELETE or UPDATE after ON")
		}

		action, err := p.parseRefAction()
		if err != nil {
			return nil, err
		}
		if isDelete {
			fk.OnDelete = action
		} else {
			fk.OnUpdate = action
		}
	}

	return fk, nil
}

func (p *Parser) parseRefAction() (ForeignKeyAction, error) {
	switch {
	case p.match(TK_CASCADE):
		return FKActionCascade, nil
	case p.match(TK_RESTRICT):
		return FKActionRestrict, nil
	case p.match(TK_SET):
		if p.match(TK_NULL) {
			return FKActionSetNull, nil
		}
		if p.match(TK_DEFAULT) {
			return FKActionSetDefault, nil
		}
		return FKActionNone, p.error("expected NULL or DEFAULT after SET")
	case p.match(TK_NO):
		if !p.match(TK_ACTION) {
			return FKActionNone, p.error("expected ACTION after NO")
		}
		return FKActionNoAction, nil
	default:
		return FKActionNone, p.error("expected referential action")
	}
}

// parseDefaultValue captures the raw text of a DEFAULT clause: a literal,
// NULL, a keyword like CURRENT_TIMESTAMP, or a function call.
func (p *Parser) parseDefaultValue() string {
	if p.check(TK_COMMA) || p.check(TK_RP) || p.isAtEnd() {
		return ""
	}

	var b strings.Builder
	if p.check(TK_MINUS) || p.check(TK_PLUS) {
		b.WriteString(p.advance().Lexeme)
	}

	tok := p.advance()
	b.WriteString(tok.Lexeme)

	// Function-call form: name(...)
	if (tok.Type == TK_ID || tok.Type.IsKeyword()) && p.check(TK_LP) {
		depth := 0
		for !p.isAtEnd() {
			t := p.advance()
			b.WriteString(t.Lexeme)
			if t.Type == TK_LP {
				depth++
			} else if t.Type == TK_RP {
				depth--
				if depth == 0 {
					break
				}
			}
		}
	}

	return b.String()
}

func (p *Parser) parseColumnNameList() ([]string, error) {
	if !p.match(TK_LP) {
		return nil, p.error("expected ( before column list")
	}

	names := make([]string, 0)
	for {
		if !p.isName() {
			return nil, p.error("expected column name")
		}
		names = append(names, Unquote(p.advance().Lexeme))

		if !p.match(TK_COMMA) {
			break
		}
	}

	if !p.match(TK_RP) {
		return nil, p.error("expected ) after column list")
	}

	return names, nil
}

// parseQualifiedName reads an identifier, dropping any schema qualifier
// (public.orders resolves to orders).
func (p *Parser) parseQualifiedName(what string) (string, error) {
	if !p.isName() {
		return "", p.error("expected %s", what)
	}
	name := Unquote(p.advance().Lexeme)

	for p.match(TK_DOT) {
		if !p.isName() {
			return "", p.error("expected identifier after .")
		}
		name = Unquote(p.advance().Lexeme)
	}

	return name, nil
}

// skipStatement advances past the current statement, through the next
// terminator.
func (p *Parser) skipStatement() {
	for !p.isAtEnd() {
		if p.advance().Type == TK_SEMI {
			return
		}
	}
}

// skipParenGroup consumes a balanced parenthesized group.
func (p *Parser) skipParenGroup() error {
	if !p.match(TK_LP) {
		return p.error("expected (")
	}
	depth := 1
	for depth > 0 {
		if p.isAtEnd() {
			return p.error("unterminated parenthesized group")
		}
		switch p.advance().Type {
		case TK_LP:
			depth++
		case TK_RP:
			depth--
		}
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func (p *Parser) isColumnConstraint() bool {
	return p.check(TK_CONSTRAINT) || p.check(TK_PRIMARY) || p.check(TK_NOT) ||
		p.check(TK_UNIQUE) || p.check(TK_DEFAULT) || p.check(TK_REFERENCES) ||
		p.check(TK_CHECK) || p.check(TK_COLLATE)
}

func (p *Parser) isTableConstraint() bool {
	return p.check(TK_CONSTRAINT) || p.check(TK_PRIMARY) || p.check(TK_FOREIGN) ||
		(p.check(TK_UNIQUE) && p.peekAhead(1).Type == TK_LP)
}

// isName reports whether the current token can serve as an identifier. A few
// keywords (type, key, ...) double as column names in real schemas.
func (p *Parser) isName() bool {
	switch p.peek().Type {
	case TK_ID, TK_TYPE, TK_KEY, TK_INDEX, TK_ENUM, TK_ACTION, TK_NO,
		TK_SET, TK_DELETE, TK_UPDATE:
		return true
	}
	return false
}

func (p *Parser) peek() Token {
	if p.current >= len(p.tokens) {
		return Token{Type: TK_EOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) peekAhead(n int) Token {
	pos := p.current + n
	if pos >= len(p.tokens) {
		return Token{Type: TK_EOF}
	}
	return p.tokens[pos]
}

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.tokens[p.current-1]
}

func (p *Parser) check(t TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == t
}

// checkWord reports whether the current token is the given bare word,
// case-insensitively. Quoted identifiers never match.
func (p *Parser) checkWord(word string) bool {
	return p.check(TK_ID) && strings.EqualFold(p.peek().Lexeme, word)
}

func (p *Parser) match(types ...TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens) || p.peek().Type == TK_EOF
}

func (p *Parser) error(format string, args ...interface{}) error {
	tok := p.peek()
	return errors.NewParsef(tok.Line, tok.Col, format, args...)
}

// ParseStatements is a convenience function to parse a SQL string.
func ParseStatements(sql string) ([]Statement, error) {
	parser := NewParser(sql)
	return parser.Parse()
}
