// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens SQL connections and creates the key/value schema.

# Dialects

Two drivers are registered:

  - sqlite: modernc.org/sqlite, the default for device-local data
  - postgres: github.com/lib/pq, for a shared ledger reachable by every device

The dialect is inferred from the URL unless given explicitly:

	dialect, err := db.DialectFor(cfg.DatabaseURL, cfg.DatabaseType)
	conn, err := db.Open(cfg.DatabaseURL, dialect)

Queries are written with ? placeholders and passed through Dialect.Rebind.

# Schema Creation

CreateSchema initializes the single kv table:

	if err := db.CreateSchema(conn, dialect); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - kv: key TEXT PRIMARY KEY, value (BLOB/BYTEA), updated_at

Every document (device identity, event settings, rosters, ledgers, share
bundles) is one row. Writes replace the whole value; there are no partial
updates, which is the scaling limit of the ledger design.
*/
package db
