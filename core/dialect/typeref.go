package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// TypeRef is a parsed physical type token: a bare name plus optional
// parenthesized integer modifiers, e.g. "varchar(255)" or "NUMERIC(19,4)".
type TypeRef struct {
	Name string `parser:"@Ident"`
	Args []int  `parser:"( \"(\" @Int ( \",\" @Int )* \")\" )?"`
}

// typeLexer defines the lexer for physical type tokens.
var typeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// typeRefParser is the participle parser for physical type tokens.
var typeRefParser = participle.MustBuild[TypeRef](
	participle.Lexer(typeLexer),
	participle.Elide("Whitespace"),
)

// ParseTypeRef parses a raw type token into name and modifiers.
// Supported forms:
//   - "text" (bare name)
//   - "varchar(255)" (one modifier)
//   - "NUMERIC(19, 4)" (two modifiers, spacing ignored)
func ParseTypeRef(s string) (*TypeRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty type token")
	}

	parsed, err := typeRefParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid type token %q: %w", s, err)
	}
	return parsed, nil
}

// String renders the token in canonical form, modifiers without spaces.
func (t *TypeRef) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteString("(")
	for i, a := range t.Args {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(strconv.Itoa(a))
	}
	sb.WriteString(")")
	return sb.String()
}
