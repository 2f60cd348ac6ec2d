// Package dialect maps the logical column-type vocabulary to physical SQL
// type tokens per target dialect, and back. It also owns identifier quoting
// rules and the enum-support flag.
package dialect

import (
	"strings"

	"github.com/FocuswithJustin/SchemaCanvas/core/errors"
	"github.com/FocuswithJustin/SchemaCanvas/core/graph"
)

// Dialect is a target SQL flavor, selected by literal string.
type Dialect string

const (
	Postgres Dialect = "postgresql"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// Dialects lists every supported dialect.
var Dialects = []Dialect{Postgres, MySQL, SQLite}

// Parse validates a dialect literal.
func Parse(s string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(s))) {
	case Postgres:
		return Postgres, nil
	case MySQL:
		return MySQL, nil
	case SQLite:
		return SQLite, nil
	}
	return "", errors.Wrapf(errors.ErrInvalidInput, "unknown dialect %q (supported: postgresql, mysql, sqlite)", s)
}

// QuoteChar returns the dialect's identifier quote character.
func (d Dialect) QuoteChar() byte {
	if d == MySQL {
		return '`'
	}
	return '"'
}

// SupportsEnums reports whether the dialect has named enum types.
func (d Dialect) SupportsEnums() bool {
	return d == Postgres
}

// Quote wraps an identifier in the dialect's quote character, doubling any
// embedded quote characters.
func (d Dialect) Quote(ident string) string {
	q := string(d.QuoteChar())
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

// typeMaps is the forward map: logical type to physical token. Each
// dialect's map is injective so the inverse map can recover logical types
// from generated DDL.
var typeMaps = map[Dialect]map[graph.LogicalType]string{
	Postgres: {
		graph.TypeUUID:      "uuid",
		graph.TypeVarchar:   "varchar(255)",
		graph.TypeText:      "text",
		graph.TypeInt4:      "int4",
		graph.TypeMoney:     "money",
		graph.TypeTimestamp: "timestamp",
		graph.TypeBoolean:   "boolean",
		graph.TypeJSONB:     "jsonb",
		graph.TypeDate:      "date",
		graph.TypeTime:      "time",
	},
	MySQL: {
		graph.TypeUUID:      "CHAR(36)",
		graph.TypeVarchar:   "VARCHAR(255)",
		graph.TypeText:      "TEXT",
		graph.TypeInt4:      "INT",
		graph.TypeMoney:     "DECIMAL(19,4)",
		graph.TypeTimestamp: "TIMESTAMP",
		graph.TypeBoolean:   "BOOLEAN",
		graph.TypeJSONB:     "JSON",
		graph.TypeDate:      "DATE",
		graph.TypeTime:      "TIME",
	},
	SQLite: {
		graph.TypeUUID:      "UUID",
		graph.TypeVarchar:   "VARCHAR(255)",
		graph.TypeText:      "TEXT",
		graph.TypeInt4:      "INTEGER",
		graph.TypeMoney:     "NUMERIC(19,4)",
		graph.TypeTimestamp: "TIMESTAMP",
		graph.TypeBoolean:   "BOOLEAN",
		graph.TypeJSONB:     "JSON",
		graph.TypeDate:      "DATE",
		graph.TypeTime:      "TIME",
	},
}

// inverseMaps maps bare upper-cased physical type names back to the logical
// vocabulary, per dialect. Canonical tokens first, then common hand-written
// aliases. Size/precision modifiers are stripped before lookup.
var inverseMaps = map[Dialect]map[string]graph.LogicalType{
	Postgres: {
		"UUID":        graph.TypeUUID,
		"VARCHAR":     graph.TypeVarchar,
		"CHAR":        graph.TypeVarchar,
		"TEXT":        graph.TypeText,
		"INT4":        graph.TypeInt4,
		"INT":         graph.TypeInt4,
		"INTEGER":     graph.TypeInt4,
		"SERIAL":      graph.TypeInt4,
		"MONEY":       graph.TypeMoney,
		"TIMESTAMP":   graph.TypeTimestamp,
		"TIMESTAMPTZ": graph.TypeTimestamp,
		"BOOLEAN":     graph.TypeBoolean,
		"BOOL":        graph.TypeBoolean,
		"JSONB":       graph.TypeJSONB,
		"JSON":        graph.TypeJSONB,
		"DATE":        graph.TypeDate,
		"TIME":        graph.TypeTime,
	},
	MySQL: {
		"CHAR":      graph.TypeUUID,
		"UUID":      graph.TypeUUID,
		"VARCHAR":   graph.TypeVarchar,
		"TEXT":      graph.TypeText,
		"INT":       graph.TypeInt4,
		"INT4":      graph.TypeInt4,
		"INTEGER":   graph.TypeInt4,
		"DECIMAL":   graph.TypeMoney,
		"NUMERIC":   graph.TypeMoney,
		"TIMESTAMP": graph.TypeTimestamp,
		"DATETIME":  graph.TypeTimestamp,
		"BOOLEAN":   graph.TypeBoolean,
		"BOOL":      graph.TypeBoolean,
		"TINYINT":   graph.TypeBoolean,
		"JSON":      graph.TypeJSONB,
		"DATE":      graph.TypeDate,
		"TIME":      graph.TypeTime,
	},
	SQLite: {
		"UUID":      graph.TypeUUID,
		"VARCHAR":   graph.TypeVarchar,
		"CHAR":      graph.TypeVarchar,
		"TEXT":      graph.TypeText,
		"INTEGER":   graph.TypeInt4,
		"INT":       graph.TypeInt4,
		"INT4":      graph.TypeInt4,
		"NUMERIC":   graph.TypeMoney,
		"DECIMAL":   graph.TypeMoney,
		"TIMESTAMP": graph.TypeTimestamp,
		"DATETIME":  graph.TypeTimestamp,
		"BOOLEAN":   graph.TypeBoolean,
		"BOOL":      graph.TypeBoolean,
		"JSON":      graph.TypeJSONB,
		"DATE":      graph.TypeDate,
		"TIME":      graph.TypeTime,
	},
}

// TypeFor returns the physical type token for a logical type. Enum
// references resolve to the enum type's name when the dialect supports
// enums; elsewhere they are an UnsupportedTypeError, as is any logical type
// outside the vocabulary.
func (d Dialect) TypeFor(t graph.LogicalType, enumRef string) (string, error) {
	if t == graph.TypeEnum {
		if !d.SupportsEnums() || enumRef == "" {
			return "", errors.NewUnsupportedType(string(d), string(t))
		}
		return enumRef, nil
	}
	tok, ok := typeMaps[d][t]
	if !ok {
		return "", errors.NewUnsupportedType(string(d), string(t))
	}
	return tok, nil
}

// LogicalFor maps a physical type token back to the logical vocabulary.
// The token may carry size/precision modifiers; matching is on the bare
// upper-cased name. Enum references are not resolved here; the caller
// checks declared enum names before falling back to this map.
func (d Dialect) LogicalFor(token string) (graph.LogicalType, bool) {
	ref, err := ParseTypeRef(token)
	if err != nil {
		return "", false
	}
	lt, ok := inverseMaps[d][strings.ToUpper(ref.Name)]
	return lt, ok
}
