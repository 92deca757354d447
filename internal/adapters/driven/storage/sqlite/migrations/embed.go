// Package migrations holds the versioned schema of the library database.
// Files are named NNN_name.up.sql and NNN_name.down.sql; the store applies
// every .up.sql newer than the recorded version, in order.
package migrations

import "embed"

// FS holds the migration scripts.
//
//go:embed *.sql
var FS embed.FS
