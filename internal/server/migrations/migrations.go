// Package migrations embeds the goose SQL migrations for the server schema.
// The evolution is append-only: new columns and tables are added in later
// migrations, nothing is rewritten in place.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
