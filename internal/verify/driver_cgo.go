//go:build cgo_sqlite

// CGO SQLite driver using mattn/go-sqlite3.
// This is used when the cgo_sqlite build tag is set.
//
// Build with: go build -tags cgo_sqlite
// Requires: CGO_ENABLED=1

package verify

import (
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
)

const (
	driverName = "sqlite3"
	driverType = "cgo"
)
