package migrations

import "embed"

// FS holds the submission store migrations.
//
//go:embed *.sql
var FS embed.FS
