//go:build !cgo_sqlite

package verify

import (
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	driverName = "sqlite"
	driverType = "purego"
)
