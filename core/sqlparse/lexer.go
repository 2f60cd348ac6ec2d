package sqlparse

import (
	"fmt"
	"strings"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // current reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number
	col     int  // current column number
}

// NewLexer creates a new Lexer for the given SQL input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing position.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	tok.Pos = l.pos
	tok.Line = l.line
	tok.Col = l.col

	switch l.ch {
	case 0:
		tok.Type = TK_EOF
		tok.Lexeme = ""
	case ';':
		tok.Type = TK_SEMI
		tok.Lexeme = string(l.ch)
		l.readChar()
	case '(':
		tok.Type = TK_LP
		tok.Lexeme = string(l.ch)
		l.readChar()
	case ')':
		tok.Type = TK_RP
		tok.Lexeme = string(l.ch)
		l.readChar()
	case ',':
		tok.Type = TK_COMMA
		tok.Lexeme = string(l.ch)
		l.readChar()
	case '.':
		if isDigit(l.peekChar()) {
			tok = l.readNumber()
		} else {
			tok.Type = TK_DOT
			tok.Lexeme = string(l.ch)
			l.readChar()
		}
	case '+':
		tok.Type = TK_PLUS
		tok.Lexeme = string(l.ch)
		l.readChar()
	case '*':
		tok.Type = TK_STAR
		tok.Lexeme = string(l.ch)
		l.readChar()
	case '-':
		if l.peekChar() == '-' {
			tok = l.readLineComment()
		} else {
			tok.Type = TK_MINUS
			tok.Lexeme = string(l.ch)
			l.readChar()
		}
	case '/':
		if l.peekChar() == '*' {
			tok = l.readBlockComment()
		} else {
			tok.Type = TK_SLASH
			tok.Lexeme = string(l.ch)
			l.readChar()
		}
	case '|':
		if l.peekChar() == '|' {
			tok.Type = TK_CONCAT
			tok.Lexeme = "||"
			l.readChar()
			l.readChar()
		} else {
			tok.Type = TK_ILLEGAL
			tok.Lexeme = string(l.ch)
			l.readChar()
		}
	case '=':
		if l.peekChar() == '=' {
			tok.Type = TK_EQ
			tok.Lexeme = "=="
			l.readChar()
			l.readChar()
		} else {
			tok.Type = TK_EQ
			tok.Lexeme = string(l.ch)
			l.readChar()
		}
	case '<':
		if l.peekChar() == '=' {
			tok.Type = TK_LE
			tok.Lexeme = "<="
			l.readChar()
			l.readChar()
		} else if l.peekChar() == '>' {
			tok.Type = TK_NE
			tok.Lexeme = "<>"
			l.readChar()
			l.readChar()
		} else {
			tok.Type = TK_LT
			tok.Lexeme = string(l.ch)
			l.readChar()
		}
	case '>':
		if l.peekChar() == '=' {
			tok.Type = TK_GE
			tok.Lexeme = ">="
			l.readChar()
			l.readChar()
		} else {
			tok.Type = TK_GT
			tok.Lexeme = string(l.ch)
			l.readChar()
		}
	case '!':
		if l.peekChar() == '=' {
			tok.Type = TK_NE
			tok.Lexeme = "!="
			l.readChar()
			l.readChar()
		} else {
			tok.Type = TK_ILLEGAL
			tok.Lexeme = string(l.ch)
			l.readChar()
		}
	case '\'':
		tok = l.readString('\'')
	case '"':
		tok = l.readQuotedIdentifier('"')
	case '`':
		tok = l.readQuotedIdentifier('`')
	default:
		if isLetter(l.ch) || l.ch == '_' {
			tok = l.readIdentifierOrKeyword()
			return tok
		} else if isDigit(l.ch) {
			tok = l.readNumber()
			return tok
		}
		tok.Type = TK_ILLEGAL
		tok.Lexeme = string(l.ch)
		l.readChar()
	}

	return tok
}

// skipWhitespace skips whitespace characters and updates line/col tracking.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		if l.ch == '\n' {
			l.line++
			l.col = 0
		}
		l.readChar()
	}
}

// readIdentifierOrKeyword reads an identifier or keyword.
func (l *Lexer) readIdentifierOrKeyword() Token {
	startPos := l.pos
	startLine := l.line
	startCol := l.col

	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$' {
		l.readChar()
	}

	lexeme := l.input[startPos:l.pos]
	tokType := lookupKeyword(lexeme)

	return Token{
		Type:   tokType,
		Lexeme: lexeme,
		Pos:    startPos,
		Line:   startLine,
		Col:    startCol,
	}
}

// readNumber reads a numeric literal (integer or float).
func (l *Lexer) readNumber() Token {
	startPos := l.pos
	startLine := l.line
	startCol := l.col
	tokType := TK_INTEGER

	// Read integer part
	for isDigit(l.ch) {
		l.readChar()
	}

	// Check for decimal point
	if l.ch == '.' && isDigit(l.peekChar()) {
		tokType = TK_FLOAT
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// Check for scientific notation
	if l.ch == 'e' || l.ch == 'E' {
		tokType = TK_FLOAT
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return Token{
		Type:   tokType,
		Lexeme: l.input[startPos:l.pos],
		Pos:    startPos,
		Line:   startLine,
		Col:    startCol,
	}
}

// readString reads a string literal enclosed in single quotes.
func (l *Lexer) readString(quote byte) Token {
	startPos := l.pos
	startLine := l.line
	startCol := l.col

	l.readChar() // consume opening quote

	for l.ch != 0 {
		if l.ch == quote {
			// Check for escaped quote (doubled quote)
			if l.peekChar() == quote {
				l.readChar() // consume first quote
				l.readChar() // consume second quote
			} else {
				l.readChar() // consume closing quote
				break
			}
		} else {
			if l.ch == '\n' {
				l.line++
				l.col = 0
			}
			l.readChar()
		}
	}

	return Token{
		Type:   TK_STRING,
		Lexeme: l.input[startPos:l.pos],
		Pos:    startPos,
		Line:   startLine,
		Col:    startCol,
	}
}

// readQuotedIdentifier reads a quoted identifier (double-quoted or backticked).
func (l *Lexer) readQuotedIdentifier(quote byte) Token {
	startPos := l.pos
	startLine := l.line
	startCol := l.col

	l.readChar() // consume opening quote

	for l.ch != 0 && l.ch != quote {
		if l.ch == '\n' {
			l.line++
			l.col = 0
		}
		l.readChar()
	}

	if l.ch == quote {
		l.readChar() // consume closing quote
	}

	return Token{
		Type:   TK_ID,
		Lexeme: l.input[startPos:l.pos],
		Pos:    startPos,
		Line:   startLine,
		Col:    startCol,
	}
}

// readLineComment reads a line comment (-- ...).
func (l *Lexer) readLineComment() Token {
	startPos := l.pos
	startLine := l.line
	startCol := l.col

	l.readChar() // consume first '-'
	l.readChar() // consume second '-'

	for l.ch != 0 && l.ch != '\n' {
		l.readChar()
	}

	return Token{
		Type:   TK_COMMENT,
		Lexeme: l.input[startPos:l.pos],
		Pos:    startPos,
		Line:   startLine,
		Col:    startCol,
	}
}

// readBlockComment reads a block comment (/* ... */).
func (l *Lexer) readBlockComment() Token {
	startPos := l.pos
	startLine := l.line
	startCol := l.col

	l.readChar() // consume '/'
	l.readChar() // consume '*'

	for l.ch != 0 {
		if l.ch == '\n' {
			l.line++
			l.col = 0
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // consume '*'
			l.readChar() // consume '/'
			break
		}
		l.readChar()
	}

	return Token{
		Type:   TK_COMMENT,
		Lexeme: l.input[startPos:l.pos],
		Pos:    startPos,
		Line:   startLine,
		Col:    startCol,
	}
}

// Helper functions

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// lookupKeyword returns the token type for a keyword, or TK_ID if not a keyword.
func lookupKeyword(ident string) TokenType {
	// Convert to uppercase for case-insensitive comparison
	upper := strings.ToUpper(ident)

	switch upper {
	case "CREATE":
		return TK_CREATE
	case "TABLE":
		return TK_TABLE
	case "TYPE":
		return TK_TYPE
	case "INDEX":
		return TK_INDEX
	case "ALTER":
		return TK_ALTER
	case "ADD":
		return TK_ADD
	case "DROP":
		return TK_DROP
	case "PRIMARY":
		return TK_PRIMARY
	case "KEY":
		return TK_KEY
	case "UNIQUE":
		return TK_UNIQUE
	case "NOT":
		return TK_NOT
	case "NULL":
		return TK_NULL
	case "CHECK":
		return TK_CHECK
	case "DEFAULT":
		return TK_DEFAULT
	case "CONSTRAINT":
		return TK_CONSTRAINT
	case "FOREIGN":
		return TK_FOREIGN
	case "REFERENCES":
		return TK_REFERENCES
	case "COLLATE":
		return TK_COLLATE
	case "ON":
		return TK_ON
	case "DELETE":
		return TK_DELETE
	case "UPDATE":
		return TK_UPDATE
	case "SET":
		return TK_SET
	case "CASCADE":
		return TK_CASCADE
	case "RESTRICT":
		return TK_RESTRICT
	case "NO":
		return TK_NO
	case "ACTION":
		return TK_ACTION
	case "AS":
		return TK_AS
	case "IF":
		return TK_IF
	case "EXISTS":
		return TK_EXISTS
	case "ENUM":
		return TK_ENUM
	default:
		return TK_ID
	}
}

// TokenizeAll tokenizes the entire input and returns all tokens (excluding
// whitespace and comments).
func TokenizeAll(input string) ([]Token, error) {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok := lexer.NextToken()
		if tok.Type == TK_SPACE || tok.Type == TK_COMMENT {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == TK_EOF {
			break
		}
		if tok.Type == TK_ILLEGAL {
			return tokens, fmt.Errorf("illegal token at line %d, col %d: %q", tok.Line, tok.Col, tok.Lexeme)
		}
	}

	return tokens, nil
}

// Unquote removes quotes from a quoted identifier or string.
func Unquote(s string) string {
	if len(s) < 2 {
		return s
	}

	if (s[0] == '\'' && s[len(s)-1] == '\'') ||
		(s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '`' && s[len(s)-1] == '`') {
		inner := s[1 : len(s)-1]
		// Replace doubled quotes with single quotes
		quote := string(s[0])
		return strings.ReplaceAll(inner, quote+quote, quote)
	}

	return s
}
