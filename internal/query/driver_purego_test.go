//go:build !cgo_sqlite

package query

import (
	_ "modernc.org/sqlite" // Pure Go SQLite
)

const fixtureDriver = "sqlite"
