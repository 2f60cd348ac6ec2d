package sqlparse

import (
	"strings"
	"testing"
)

func TestLexerBasicTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{
			"CREATE TABLE users (id uuid PRIMARY KEY);",
			[]TokenType{TK_CREATE, TK_TABLE, TK_ID, TK_LP, TK_ID, TK_ID, TK_PRIMARY, TK_KEY, TK_RP, TK_SEMI, TK_EOF},
		},
		{
			"CREATE TYPE status AS ENUM ('a', 'b');",
			[]TokenType{TK_CREATE, TK_TYPE, TK_ID, TK_AS, TK_ENUM, TK_LP, TK_STRING, TK_COMMA, TK_STRING, TK_RP, TK_SEMI, TK_EOF},
		},
		{
			"ALTER TABLE orders ADD CONSTRAINT fk FOREIGN KEY (uid) REFERENCES users (id)",
			[]TokenType{TK_ALTER, TK_TABLE, TK_ID, TK_ADD, TK_CONSTRAINT, TK_ID, TK_FOREIGN, TK_KEY, TK_LP, TK_ID, TK_RP, TK_REFERENCES, TK_ID, TK_LP, TK_ID, TK_RP, TK_EOF},
		},
		{
			"ON DELETE CASCADE ON UPDATE SET NULL",
			[]TokenType{TK_ON, TK_DELETE, TK_CASCADE, TK_ON, TK_UPDATE, TK_SET, TK_NULL, TK_EOF},
		},
		{
			"varchar(255) NOT NULL DEFAULT 'x'",
			[]TokenType{TK_ID, TK_LP, TK_INTEGER, TK_RP, TK_NOT, TK_NULL, TK_DEFAULT, TK_STRING, TK_EOF},
		},
	}

	for _, tt := range tests {
		lexer := NewLexer(tt.input)
		tokens := make([]TokenType, 0)

		for {
			tok := lexer.NextToken()
			tokens = append(tokens, tok.Type)
			if tok.Type == TK_EOF {
				break
			}
		}

		if len(tokens) != len(tt.expected) {
			t.Errorf("token count mismatch for %q: got %d, want %d", tt.input, len(tokens), len(tt.expected))
			continue
		}

		for i, tokType := range tokens {
			if tokType != tt.expected[i] {
				t.Errorf("token %d mismatch for %q: got %s, want %s", i, tt.input, tokType, tt.expected[i])
			}
		}
	}
}

func TestLexerKeywordsCaseInsensitive(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"create", TK_CREATE},
		{"CREATE", TK_CREATE},
		{"CrEaTe", TK_CREATE},
		{"references", TK_REFERENCES},
		{"cascade", TK_CASCADE},
		{"enum", TK_ENUM},
	}

	for _, tt := range tests {
		lexer := NewLexer(tt.input)
		tok := lexer.NextToken()
		if tok.Type != tt.expected {
			t.Errorf("keyword %q: got %s, want %s", tt.input, tok.Type, tt.expected)
		}
	}
}

func TestLexerLiterals(t *testing.T) {
	tests := []struct {
		input    string
		tokType  TokenType
		expected string
	}{
		{"123", TK_INTEGER, "123"},
		{"3.14", TK_FLOAT, "3.14"},
		{"1.5e10", TK_FLOAT, "1.5e10"},
		{"1.5E-10", TK_FLOAT, "1.5E-10"},
		{"'hello'", TK_STRING, "'hello'"},
		{"'it''s'", TK_STRING, "'it''s'"},
	}

	for _, tt := range tests {
		lexer := NewLexer(tt.input)
		tok := lexer.NextToken()
		if tok.Type != tt.tokType {
			t.Errorf("literal %q: got type %s, want %s", tt.input, tok.Type, tt.tokType)
		}
		if tok.Lexeme != tt.expected {
			t.Errorf("literal %q: got lexeme %q, want %q", tt.input, tok.Lexeme, tt.expected)
		}
	}
}

func TestLexerIdentifiers(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`users`, "users"},
		{`user_name`, "user_name"},
		{`_private`, "_private"},
		{`table123`, "table123"},
		{`"quoted id"`, `"quoted id"`},
		{"`backtick`", "`backtick`"},
	}

	for _, tt := range tests {
		lexer := NewLexer(tt.input)
		tok := lexer.NextToken()
		if tok.Type != TK_ID {
			t.Errorf("identifier %q: got type %s, want TK_ID", tt.input, tok.Type)
		}
		if tok.Lexeme != tt.expected {
			t.Errorf("identifier %q: got %q, want %q", tt.input, tok.Lexeme, tt.expected)
		}
	}
}

func TestLexerComments(t *testing.T) {
	tests := []struct {
		input  string
		lexeme string
	}{
		{"-- line comment\nCREATE", "-- line comment"},
		{"/* block */ CREATE", "/* block */"},
		{"/* multi\nline */ CREATE", "/* multi\nline */"},
	}

	for _, tt := range tests {
		lexer := NewLexer(tt.input)
		tok := lexer.NextToken()
		if tok.Type != TK_COMMENT {
			t.Errorf("input %q: got type %s, want TK_COMMENT", tt.input, tok.Type)
			continue
		}
		if tok.Lexeme != tt.lexeme {
			t.Errorf("input %q: got lexeme %q, want %q", tt.input, tok.Lexeme, tt.lexeme)
		}

		next := lexer.NextToken()
		if next.Type != TK_CREATE {
			t.Errorf("input %q: token after comment = %s, want CREATE", tt.input, next.Type)
		}
	}
}

func TestLexerLineTracking(t *testing.T) {
	input := "CREATE TABLE a (\n  id uuid\n);"
	lexer := NewLexer(input)

	wantPositions := []struct {
		lexeme string
		line   int
		col    int
	}{
		{"CREATE", 1, 1},
		{"TABLE", 1, 8},
		{"a", 1, 14},
		{"(", 1, 16},
		{"id", 2, 3},
		{"uuid", 2, 6},
		{")", 3, 1},
		{";", 3, 2},
	}

	for i, want := range wantPositions {
		tok := lexer.NextToken()
		if tok.Lexeme != want.lexeme {
			t.Fatalf("token %d: got lexeme %q, want %q", i, tok.Lexeme, want.lexeme)
		}
		if tok.Line != want.line || tok.Col != want.col {
			t.Errorf("token %q: got line %d col %d, want line %d col %d",
				tok.Lexeme, tok.Line, tok.Col, want.line, want.col)
		}
	}
}

func TestTokenizeAll(t *testing.T) {
	tokens, err := TokenizeAll("CREATE TABLE t (id uuid); -- trailing comment")
	if err != nil {
		t.Fatalf("TokenizeAll() error = %v", err)
	}

	for _, tok := range tokens {
		if tok.Type == TK_SPACE || tok.Type == TK_COMMENT {
			t.Errorf("TokenizeAll returned filtered token %s", tok.Type)
		}
	}

	// CREATE TABLE t ( id uuid ) ; EOF
	if len(tokens) != 9 {
		t.Errorf("got %d tokens, want 9", len(tokens))
	}
}

func TestTokenizeAllIllegal(t *testing.T) {
	_, err := TokenizeAll("CREATE TABLE t (id ? uuid)")
	if err == nil {
		t.Fatal("expected error for illegal token")
	}
	if !strings.Contains(err.Error(), "illegal token") {
		t.Errorf("error = %q, want it to mention illegal token", err)
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"users"`, "users"},
		{"`users`", "users"},
		{`'pending'`, "pending"},
		{`"say ""hi"""`, `say "hi"`},
		{`'it''s'`, "it's"},
		{`bare`, "bare"},
		{`"`, `"`},
		{``, ``},
	}

	for _, tt := range tests {
		if got := Unquote(tt.input); got != tt.expected {
			t.Errorf("Unquote(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
