// Package migrations holds the schema of the checkout database.
package migrations

import (
	"embed"
)

// Version is the schema version the code expects.
const Version = uint(1)

//go:embed *.sql
var FS embed.FS
