// Package migrations holds the schema, applied with golang-migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
