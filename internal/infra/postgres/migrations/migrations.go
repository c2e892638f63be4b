// Package migrations holds the bun migrations for the quiz and result tables.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is populated by the per-version files in this package.
var Migrations = migrate.NewMigrations()
