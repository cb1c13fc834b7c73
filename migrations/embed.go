// Package migrations carries the bridge's SQL schema, compiled into the
// binary so a deployment needs no migration files on disk. Pass Files to
// database.DB.Migrate at startup.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
