// Package migrations embeds the versioned SQL schema files so the server binary and the
// integration tests apply exactly the same schema, wherever they run from.
package migrations

import "embed"

// FS holds every *.sql migration in this directory.
//
//go:embed *.sql
var FS embed.FS
