// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Local store connection string (default: file:ticketgate.db)
  - DatabaseType: sqlite or postgres (inferred from the URL when empty)
  - SharedDatabaseURL: Shared ledger store (default: the local database)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - SyncInterval: Ledger polling cadence (default: 5s)
  - FetchTimeout: Spreadsheet download limit (default: 30s)
  - DeviceLabel: Validator name used when a scan gives none (default: Scanner)

# CLI Flags

	-p              Server port
	-d              Local database URL
	-t              Database type
	-shared-db      Shared ledger database URL
	-sync-interval  Polling interval
	-fetch-timeout  Import download timeout
	-label          Default validator label
	-admin-salt     Admin key salt

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	SHARED_DATABASE_URL → -shared-db
	SYNC_INTERVAL       → -sync-interval
	FETCH_TIMEOUT       → -fetch-timeout
	DEVICE_LABEL        → -label
	ADMIN_KEY_SALT      → -admin-salt

CLI flags take precedence over environment variables. LoadEnvFile reads a
.env file first; variables already in the environment are kept.

# Example

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
*/
package cliparse
