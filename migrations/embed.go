package migrations

import "embed"

// FS holds the SQL migrations, one directory per database driver.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
