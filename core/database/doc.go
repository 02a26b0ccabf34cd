// Package database opens the SQL database behind the client metadata cache
// and provides the key/value table stored in it.
//
// # Connect
//
// Connect supports SQLite (the default, a single file next to the mirror) and
// MySQL for shared setups. Both go through GORM.
//
// # Key/value table
//
// KV keeps byte-string keys and values in the kv_entries table, keyed by
// entry_key. Scans return entries in key order, which keeps path prefixes
// together.
//
// # Schema inspection
//
// GetTableColumns and VerifyKV read the live table definition so the CLI can
// report on the cache database.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	kv, err := database.NewKV(db)
package database
