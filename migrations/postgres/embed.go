// Package migrations embeds the SQL schema files.
package migrations

import "embed"

// FS contains the ordered *_up.sql / *_down.sql migrations.
//
//go:embed sql/*.sql
var FS embed.FS

// Dir is the directory within FS where migrations live.
const Dir = "sql"
