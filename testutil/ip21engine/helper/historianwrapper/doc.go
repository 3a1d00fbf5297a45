// Package historianwrapper provides adapter-switching test infrastructure for the
// historian connector.
//
// The wrapper creates a Connector on top of the PostgreSQL historian mirror
// through whichever database adapter the ADAPTER_TYPE environment variable
// selects (pgx.pool, sql.db or sqlx.db), so the same test suite exercises
// all supported adapters. It also provisions and seeds the mirror's record
// tables with the shared tag fixtures.
package historianwrapper
