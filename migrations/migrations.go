// Package migrations embeds the Postgres schema of the audience store so the
// binary can migrate without the SQL files on disk.
package migrations

import "embed"

// FS holds the golang-migrate up and down files.
//
//go:embed *.sql
var FS embed.FS
