// Package migrations embeds the goose SQL migrations for contacts and the
// send log.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
