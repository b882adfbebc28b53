// Package migrations содержит SQL-миграции goose для PostgreSQL и SQLite.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS
