//go:build cgo_sqlite

// Fixtures written by the CGO driver.
// Run with: CGO_ENABLED=1 go test -tags cgo_sqlite ./internal/query/
package query

import (
	_ "github.com/mattn/go-sqlite3" // CGO driver
)

const fixtureDriver = "sqlite3"
