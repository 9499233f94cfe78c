// Package migrations embeds the goose SQL migrations of the local storage profile.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
