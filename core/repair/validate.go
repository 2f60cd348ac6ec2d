package repair

import (
	"github.com/FocuswithJustin/SchemaCanvas/core/errors"
)

// ValidateSQLSyntax reports structural problems in DDL text without fixing
// them: unbalanced parens, a missing final terminator, unclosed quotes. The
// findings are advisory; they never block repair or parsing.
func ValidateSQLSyntax(sql string) []*errors.ValidationWarning {
	var warnings []*errors.ValidationWarning
	depth := 0
	line := 1
	content := false
	i := 0
	n := len(sql)

	for i < n {
		c := sql[i]
		switch {
		case c == '\n':
			line++
			i++

		case c == '-' && i+1 < n && sql[i+1] == '-':
			for i < n && sql[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < n && sql[i+1] == '*':
			end := blockCommentEnd(sql, i)
			for ; i < end; i++ {
				if sql[i] == '\n' {
					line++
				}
			}

		case c == '\'' || c == '"' || c == '`':
			openLine := line
			end, closed := quoteEnd(sql, i)
			for ; i < end; i++ {
				if sql[i] == '\n' {
					line++
				}
			}
			if !closed {
				warnings = append(warnings,
					errors.NewValidationWarning(openLine, "unclosed quote"))
			}
			content = true

		case c == '(':
			depth++
			content = true
			i++

		case c == ')':
			if depth == 0 {
				warnings = append(warnings,
					errors.NewValidationWarning(line, "unmatched closing parenthesis"))
			} else {
				depth--
			}
			content = true
			i++

		case c == ';':
			if depth > 0 {
				warnings = append(warnings,
					errors.NewValidationWarning(line, "unbalanced parentheses in statement"))
				depth = 0
			}
			content = false
			i++

		default:
			if !isSpaceByte(c) {
				content = true
			}
			i++
		}
	}

	if depth > 0 {
		warnings = append(warnings,
			errors.NewValidationWarning(line, "unbalanced parentheses in statement"))
	}
	if content {
		warnings = append(warnings,
			errors.NewValidationWarning(line, "statement not terminated"))
	}

	return warnings
}
