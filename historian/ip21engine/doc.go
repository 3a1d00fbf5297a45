// Package ip21engine provides an Aspen InfoPlus.21 implementation of the historian interfaces.
//
// This package queries an InfoPlus.21 server through its SQLplus relational
// layer, supporting multiple database adapters (pgx, sql.DB, sqlx) and both
// query dialects a SQLplus endpoint may speak (standard SQL and the native
// historian dialect).
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Tag listing and attribute reads across record groups
//   - Period reads with optional server-side resampling
//   - Dialect-aware pagination (TOP versus SET MAX_ROWS batches)
//   - Canonical attribute naming with per-server overrides
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	conn, _ := ip21engine.NewConnectorFromPGXPool(db, "Microsoft SQL Server")
//
//	// With a default group and operational logging
//	conn, _ := ip21engine.NewConnectorFromPGXPool(
//		db,
//		"Microsoft SQL Server",
//		ip21engine.WithDefaultGroup("IP_AIDef"),
//		ip21engine.WithLogger(logger),
//	)
//
//	_ = conn.Connect(ctx)
//	tags, _ := conn.ListTags(ctx, []string{"IP_AIDef:tc*"}, ip21engine.ListOptions{})
//	frame, _ := conn.ReadTagValuesPeriod(ctx, []string{"IP_AIDef:tc001.pv"}, readOpts)
package ip21engine
