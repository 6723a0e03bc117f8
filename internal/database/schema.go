package database

import _ "embed"

// Schema is the full schema produced by applying every migration. Tests use
// it to set up in-memory databases without running the migrator.
//
//go:embed sqlc/schema.sql
var Schema string
