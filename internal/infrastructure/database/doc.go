// Package database provides the SQLite state database for ringext.
//
// The database holds the materialized entity registry and the persisted
// firmware history blob. It is opened with WAL mode and a busy timeout, and
// limited to a single connection.
//
// Schema changes live in the top-level migrations package as paired
// YYYYMMDD_HHMMSS_description.up.sql / .down.sql files, embedded into the
// binary and registered through Migrations.
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
