// Package migrations embeds the SQL schema migrations so the binary is
// self-contained. Files are named NNNN_description.sql and applied in
// order by database.Migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
