// Package migrations embeds the versioned SQL schema applied by goose
// when the store opens.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
