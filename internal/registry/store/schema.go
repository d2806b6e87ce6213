package store

import _ "embed"

// Schema is the registry DDL, applied by migrations tooling and the
// integration test harness.
//
//go:embed schema.sql
var Schema string
