// Package adapters provides database adapter implementations for the historian connector.
//
// This package implements the adapter pattern to support multiple database
// libraries: pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent
// functionality through a common DBAdapter interface, allowing the connector
// to work seamlessly with any supported connection type, including ODBC
// bridges exposed through database/sql drivers.
//
// The adapters handle the specifics of each database library while presenting
// a unified interface for query execution and result handling. Multi-result-set
// navigation, needed for the native historian row-limit directive, is exposed
// through DBRows.NextResultSet and answered honestly by each driver.
package adapters
