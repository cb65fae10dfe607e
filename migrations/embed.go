// Package migrations embeds the SQL schema migrations so the server and
// the migrate tool carry them inside the binary.
package migrations

import "embed"

// FS holds the numbered golang-migrate files.
//
//go:embed *.sql
var FS embed.FS
