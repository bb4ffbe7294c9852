// Package migrations embeds the SQL schema migrations applied by goose.
//
// Files are named YYYYMMDDHHMMSS_description.sql and applied in order
// during store initialization.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
