// Package database is the persistence gateway for the circulation core.
//
// It wraps a single SQLite database file and exposes statement-level
// helpers: one parametrized statement per call, no transaction spanning
// calls. Referential and availability rules are enforced by the
// repositories with guard queries and guarded writes, not by storage-level
// constraints (the schema declares foreign keys for documentation only).
//
// # Usage
//
//	gw, err := database.Open(cfg.Database.Path)
//	repo := authors.NewRepository(gw, hub)
package database
