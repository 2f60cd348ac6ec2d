// Package repair normalizes hand-edited DDL text before parsing. Each
// transform is a pure text-to-text function applied in a fixed order; later
// transforms assume the earlier ones already ran. Repair never fails and is
// idempotent over its own output.
package repair

import (
	"regexp"
	"strings"
)

// Repair applies the full transform chain to raw DDL text. It is meant for
// text coming from manual edits; generator output is already well-formed and
// passes through unchanged.
func Repair(raw string) string {
	s := QuoteCompoundIdentifiers(raw)
	s = FixCommonSQLIssues(s)
	s = DedupForeignKeys(s)
	return s
}

// =============================================================================
// Compound identifiers
// =============================================================================

var (
	createTablePattern = regexp.MustCompile(
		`(?i)\b(CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?)([A-Za-z_][A-Za-z0-9_]*)[ \t]+([A-Za-z_][A-Za-z0-9_]*)(\s*\()`)
	alterTablePattern = regexp.MustCompile(
		`(?i)\b(ALTER\s+TABLE\s+(?:IF\s+EXISTS\s+)?)([A-Za-z_][A-Za-z0-9_]*)[ \t]+([A-Za-z_][A-Za-z0-9_]*)(\s+ADD\b)`)
	referencesPattern = regexp.MustCompile(
		`(?i)\b(REFERENCES\s+)([A-Za-z_][A-Za-z0-9_]*)[ \t]+([A-Za-z_][A-Za-z0-9_]*)`)
)

// reservedAfterName lists words that legitimately follow a single-word
// REFERENCES target and must not be folded into a compound name.
var reservedAfterName = map[string]bool{
	"ON": true, "NOT": true, "NULL": true, "DEFAULT": true,
	"PRIMARY": true, "UNIQUE": true, "CHECK": true, "CONSTRAINT": true,
	"REFERENCES": true, "FOREIGN": true, "COLLATE": true, "DEFERRABLE": true,
}

// QuoteCompoundIdentifiers rewrites a CREATE TABLE, ALTER TABLE, or
// REFERENCES clause naming exactly two bare words so the pair becomes one
// double-quoted identifier. Already-quoted names never match; IF NOT EXISTS
// and the ADD keyword anchor the patterns so keywords are not swallowed.
func QuoteCompoundIdentifiers(sql string) string {
	sql = createTablePattern.ReplaceAllString(sql, `${1}"${2} ${3}"${4}`)
	sql = alterTablePattern.ReplaceAllString(sql, `${1}"${2} ${3}"${4}`)
	sql = referencesPattern.ReplaceAllStringFunc(sql, func(m string) string {
		sub := referencesPattern.FindStringSubmatch(m)
		if reservedAfterName[strings.ToUpper(sub[3])] {
			return m
		}
		return sub[1] + `"` + sub[2] + ` ` + sub[3] + `"`
	})
	return sql
}

// =============================================================================
// Syntax normalization
// =============================================================================

// statementStarters maps a statement keyword to the object keywords that may
// follow it. A keyword at paren depth zero only starts a new statement when
// its follower matches, so ALTER TABLE ... DROP COLUMN is never split.
var statementStarters = map[string][]string{
	"CREATE": {"TABLE", "TYPE", "INDEX", "UNIQUE"},
	"ALTER":  {"TABLE"},
	"DROP":   {"TABLE", "TYPE", "INDEX"},
	"INSERT": {"INTO"},
}

// FixCommonSQLIssues corrects a fixed set of authoring mistakes in one
// quote- and comment-aware scan:
//
//   - doubled statement terminators collapse to one
//   - a trailing comma before a closing paren is dropped
//   - a paren-balanced statement followed by a new statement or end of
//     input gains its missing terminator
//   - unclosed column-list parens are closed before the terminator
//   - a stray closing paren outside any group is dropped
//
// Input ending inside an unterminated quote keeps its tail as written:
// the literal swallows the rest of the text, so anything appended after
// it would land inside the literal. ValidateSQLSyntax reports the
// unclosed quote. The transform is idempotent.
func FixCommonSQLIssues(sql string) string {
	out := make([]byte, 0, len(sql)+8)
	depth := 0
	lastContent := -1 // index in out of the last non-whitespace byte
	content := false  // statement content seen since the last terminator
	unclosed := false // input ended inside an unterminated quote
	i := 0
	n := len(sql)

	for i < n {
		c := sql[i]
		switch {
		case c == '-' && i+1 < n && sql[i+1] == '-':
			j := i
			for j < n && sql[j] != '\n' {
				j++
			}
			out = append(out, sql[i:j]...)
			i = j

		case c == '/' && i+1 < n && sql[i+1] == '*':
			j := blockCommentEnd(sql, i)
			out = append(out, sql[i:j]...)
			i = j

		case c == '\'' || c == '"' || c == '`':
			j, closed := quoteEnd(sql, i)
			out = append(out, sql[i:j]...)
			lastContent = len(out) - 1
			content = true
			unclosed = !closed
			i = j

		case c == '(':
			depth++
			out = append(out, c)
			lastContent = len(out) - 1
			content = true
			i++

		case c == ')':
			if depth == 0 {
				i++ // stray closing paren
				continue
			}
			depth--
			out = append(out, c)
			lastContent = len(out) - 1
			content = true
			i++

		case c == ',':
			j := i + 1
			for j < n && isSpaceByte(sql[j]) {
				j++
			}
			if j < n && sql[j] == ')' {
				i++ // trailing comma
				continue
			}
			out = append(out, c)
			lastContent = len(out) - 1
			content = true
			i++

		case c == ';':
			for depth > 0 {
				out = append(out, ')')
				depth--
			}
			if !content {
				i++ // doubled terminator
				continue
			}
			out = append(out, c)
			lastContent = len(out) - 1
			content = false
			i++

		case isWordByte(c):
			j := i
			for j < n && isWordByte(sql[j]) {
				j++
			}
			if depth == 0 && content && startsStatement(sql, i, j) {
				out = insertAfter(out, lastContent, ';')
				content = false
			}
			out = append(out, sql[i:j]...)
			lastContent = len(out) - 1
			content = true
			i = j

		default:
			out = append(out, c)
			if !isSpaceByte(c) {
				lastContent = len(out) - 1
				content = true
			}
			i++
		}
	}

	if content && !unclosed {
		for depth > 0 {
			out = insertAfter(out, lastContent, ')')
			lastContent++
			depth--
		}
		out = insertAfter(out, lastContent, ';')
	}

	return string(out)
}

// startsStatement reports whether the word sql[start:end] opens a new
// statement, i.e. it is a statement keyword followed by its object keyword.
func startsStatement(sql string, start, end int) bool {
	followers, ok := statementStarters[strings.ToUpper(sql[start:end])]
	if !ok {
		return false
	}
	j := end
	for j < len(sql) && isSpaceByte(sql[j]) {
		j++
	}
	k := j
	for k < len(sql) && isWordByte(sql[k]) {
		k++
	}
	next := strings.ToUpper(sql[j:k])
	for _, f := range followers {
		if next == f {
			return true
		}
	}
	return false
}

// =============================================================================
// Foreign-key dedup
// =============================================================================

// fkSectionMarker is the comment header the generator places above its
// ALTER TABLE foreign-key block. Dedup only applies inside such a section.
const fkSectionMarker = "-- Foreign key constraints"

var alterAddConstraintPattern = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+.+\s+ADD\s+CONSTRAINT\s+`)

// DedupForeignKeys drops exact duplicate ALTER TABLE ... ADD CONSTRAINT
// lines inside a foreign-key section, comparing whole trimmed statements
// rather than constraint names. The first occurrence wins. Comments and
// blank lines stay inside the section; any other statement line ends it.
// Text outside a marked section is never touched.
func DedupForeignKeys(sql string) string {
	lines := strings.Split(sql, "\n")
	out := make([]string, 0, len(lines))
	seen := make(map[string]bool)
	inSection := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == fkSectionMarker:
			inSection = true
		case inSection && alterAddConstraintPattern.MatchString(trimmed):
			if seen[trimmed] {
				continue
			}
			seen[trimmed] = true
		case inSection && trimmed != "" && !strings.HasPrefix(trimmed, "--"):
			inSection = false
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// =============================================================================
// Statement splitting
// =============================================================================

// SplitStatements cuts a SQL document at top-level statement terminators,
// honoring quotes and comments. Terminators are dropped and blank pieces
// are skipped.
func SplitStatements(sql string) []string {
	var stmts []string
	start := 0
	i, n := 0, len(sql)
	for i < n {
		c := sql[i]
		switch {
		case c == '-' && i+1 < n && sql[i+1] == '-':
			for i < n && sql[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && sql[i+1] == '*':
			i = blockCommentEnd(sql, i)
		case c == '\'' || c == '"' || c == '`':
			i, _ = quoteEnd(sql, i)
		case c == ';':
			if s := strings.TrimSpace(sql[start:i]); s != "" {
				stmts = append(stmts, s)
			}
			i++
			start = i
		default:
			i++
		}
	}
	if s := strings.TrimSpace(sql[start:]); s != "" {
		stmts = append(stmts, s)
	}
	return stmts
}

// =============================================================================
// Scan helpers
// =============================================================================

// quoteEnd returns the index just past the closing quote and whether the
// quote was actually closed, honoring doubled-quote escapes. An unterminated
// quote runs to end of input.
func quoteEnd(s string, start int) (int, bool) {
	q := s[start]
	i := start + 1
	for i < len(s) {
		if s[i] == q {
			if i+1 < len(s) && s[i+1] == q {
				i += 2
				continue
			}
			return i + 1, true
		}
		i++
	}
	return len(s), false
}

// blockCommentEnd returns the index just past the closing */, or end of
// input for an unterminated comment.
func blockCommentEnd(s string, start int) int {
	i := start + 2
	for i+1 < len(s) {
		if s[i] == '*' && s[i+1] == '/' {
			return i + 2
		}
		i++
	}
	return len(s)
}

func insertAfter(buf []byte, pos int, c byte) []byte {
	buf = append(buf, 0)
	copy(buf[pos+2:], buf[pos+1:])
	buf[pos+1] = c
	return buf
}

func isWordByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
