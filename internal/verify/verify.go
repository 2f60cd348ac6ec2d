// Package verify executes DDL against a real in-memory SQLite database as
// an advisory end-to-end check.
//
// Build modes:
//   - Default (CGO_ENABLED=0): pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): mattn/go-sqlite3
//
// Use DriverName/IsCGO to report which implementation a binary carries.
package verify

import (
	"context"
	"database/sql"

	apperrors "github.com/FocuswithJustin/SchemaCanvas/core/errors"
	"github.com/FocuswithJustin/SchemaCanvas/core/repair"
)

// Report summarizes a verification run.
type Report struct {
	Driver     string  `json:"driver"`
	Statements int     `json:"statements"`
	Failed     int     `json:"failed"`
	Tables     int     `json:"tables"`
	Indexes    int     `json:"indexes"`
	Errors     []error `json:"-"`
}

// OK reports whether every statement executed.
func (r *Report) OK() bool { return r.Failed == 0 }

// DriverName returns the database/sql driver selected by the build.
func DriverName() string { return driverName }

// DriverType returns "purego" or "cgo".
func DriverType() string { return driverType }

// IsCGO reports whether the CGO implementation is in use.
func IsCGO() bool { return driverType == "cgo" }

// Run executes each statement of ddl against a fresh in-memory database
// with foreign-key enforcement on. Statement failures are collected in the
// report, not returned; the error return covers environment problems only
// (driver unavailable, connection failure).
func Run(ctx context.Context, ddl string) (*Report, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, apperrors.Wrap(err, "open in-memory sqlite database")
	}
	defer db.Close()
	// Every pooled connection would open its own empty :memory: database;
	// pin to one so the PRAGMA and the DDL land in the same place.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return nil, apperrors.Wrap(err, "enable foreign keys")
	}

	rep := &Report{Driver: driverName}
	for _, stmt := range repair.SplitStatements(ddl) {
		rep.Statements++
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			rep.Failed++
			rep.Errors = append(rep.Errors, apperrors.Wrapf(err, "statement %d", rep.Statements))
		}
	}

	// Count what actually landed.
	const countQuery = `SELECT count(*) FROM sqlite_master WHERE type = ? AND name NOT LIKE 'sqlite_%'`
	if err := db.QueryRowContext(ctx, countQuery, "table").Scan(&rep.Tables); err != nil {
		return nil, apperrors.Wrap(err, "introspect tables")
	}
	if err := db.QueryRowContext(ctx, countQuery, "index").Scan(&rep.Indexes); err != nil {
		return nil, apperrors.Wrap(err, "introspect indexes")
	}

	return rep, nil
}
