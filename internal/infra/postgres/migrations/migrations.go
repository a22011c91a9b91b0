package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the schema for question sets and the best score.
var Migrations = migrate.NewMigrations()
