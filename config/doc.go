// Package config loads the configuration of the lending ledger tools and builds
// the resources it describes: the logger and PostgreSQL connection pools for
// the pgx.Pool, sql.DB and sqlx.DB adapters of the postgres ledger engine.
//
// Configuration is read from an optional YAML file and then overridden by
// environment variables:
//
//	LEDGER_ENGINE        file | postgres
//	LEDGER_PATH          path of the ledger text file
//	LEDGER_POSTGRES_DSN  PostgreSQL connection string
//	CATALOG_PATH         path of the catalog text file
//	LOG_LEVEL            debug | info | warn | error
//	LOG_FORMAT           text | json
//
// This package is part of the shell (infrastructure) layer.
package config
