// Package migrations embeds the SQL schema migrations.
package migrations

import "embed"

// FS holds every numbered .sql migration.
//
//go:embed *.sql
var FS embed.FS
