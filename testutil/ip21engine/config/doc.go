// Package config provides database configuration for historian connector testing.
//
// This package contains factory functions for creating connections to the
// PostgreSQL historian mirror using the connector's supported adapters
// (pgx.Pool, sql.DB, sqlx.DB) with a pre-configured test DSN.
//
// The mirror replays the InfoPlus.21 record tables (IP_AIDef, IP_DIDef and
// the shared HISTORY table) on PostgreSQL, so the connector can be exercised
// against a real database without an InfoPlus.21 installation.
package config
