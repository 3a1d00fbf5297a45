package historianwrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/prochist/ip21-connector-go/historian/ip21engine"
	"github.com/prochist/ip21-connector-go/testutil/ip21engine/config"
	"github.com/prochist/ip21-connector-go/testutil/ip21engine/helper"
)

// Adapter type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

// MirrorTestsEnvVar enables the tests that need a provisioned historian mirror.
const MirrorTestsEnvVar = "HISTORIAN_MIRROR_TESTS"

// SkipUnlessMirrorEnabled skips the calling test when no historian mirror is provisioned.
func SkipUnlessMirrorEnabled(t testing.TB) {
	if os.Getenv(MirrorTestsEnvVar) == "" {
		t.Skipf("set %s=1 to run tests against the historian mirror", MirrorTestsEnvVar)
	}
}

// Wrapper interface to abstract over different adapter types
type Wrapper interface {
	GetConnector() *ip21engine.Connector
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool *pgxpool.Pool
	conn *ip21engine.Connector
}

func (w *PGXPoolWrapper) GetConnector() *ip21engine.Connector {
	return w.conn
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db   *sql.DB
	conn *ip21engine.Connector
}

func (w *SQLDBWrapper) GetConnector() *ip21engine.Connector {
	return w.conn
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db   *sqlx.DB
	conn *ip21engine.Connector
}

func (w *SQLXWrapper) GetConnector() *ip21engine.Connector {
	return w.conn
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the appropriate wrapper based on the environment variable.
// The mirror DSN doubles as the connection descriptor, so dialect detection sees
// a native historian endpoint unless an option overrides it.
func CreateWrapperWithTestConfig(t testing.TB, options ...ip21engine.Option) Wrapper {
	adapterTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	switch adapterTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.MirrorPGXPoolConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")

		conn, err := ip21engine.NewConnectorFromPGXPool(connPool, config.MirrorDSN(), options...)
		assert.NoError(t, err, "error creating connector")

		return &PGXPoolWrapper{pool: connPool, conn: conn}

	case typeSQLDB:
		db := config.MirrorSQLDBConfig()

		conn, err := ip21engine.NewConnectorFromSQLDB(db, config.MirrorDSN(), options...)
		assert.NoError(t, err, "error creating connector")

		return &SQLDBWrapper{db: db, conn: conn}

	case typeSQLXDB:
		db := config.MirrorSQLXConfig()

		conn, err := ip21engine.NewConnectorFromSQLX(db, config.MirrorDSN(), options...)
		assert.NoError(t, err, "error creating connector")

		return &SQLXWrapper{db: db, conn: conn}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterTypeFromEnv))
	}
}

// TryCreateConnector tries to create a connector with the given options and returns the error (for testing error cases).
func TryCreateConnector(t testing.TB, options ...ip21engine.Option) error {
	adapterTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	switch adapterTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.MirrorPGXPoolConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")
		defer connPool.Close()

		_, err = ip21engine.NewConnectorFromPGXPool(connPool, config.MirrorDSN(), options...)
		return err

	case typeSQLDB:
		db := config.MirrorSQLDBConfig()
		defer func(db *sql.DB) {
			_ = db.Close() // makes no sense to handle this
		}(db)

		_, err := ip21engine.NewConnectorFromSQLDB(db, config.MirrorDSN(), options...)
		return err

	case typeSQLXDB:
		db := config.MirrorSQLXConfig()
		defer func(db *sqlx.DB) {
			_ = db.Close() // makes no sense to handle this
		}(db)

		_, err := ip21engine.NewConnectorFromSQLX(db, config.MirrorDSN(), options...)
		return err

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterTypeFromEnv))
	}
}

// EnsureMirrorSchema creates the mirror's record tables if they do not exist yet.
// The quoted identifiers must match what the connector's queries render, so the
// mixed-case InfoPlus.21 names survive on PostgreSQL.
func EnsureMirrorSchema(t testing.TB, wrapper Wrapper) {
	groupTableDDL := `CREATE TABLE IF NOT EXISTS "%s" (
		"NAME" text NOT NULL,
		"IP_TAG_TYPE" text,
		"IP_DESCRIPTION" text,
		"IP_ENG_UNITS" text,
		"IP_DCS_NAME" text,
		"IP_TREND_TIME" timestamptz NOT NULL,
		"IP_TREND_VALUE" double precision
	)`

	historyTableDDL := `CREATE TABLE IF NOT EXISTS "HISTORY" (
		"NAME" text NOT NULL,
		"TS" timestamptz NOT NULL,
		"VALUE" double precision,
		"REQUEST" integer NOT NULL,
		"PERIOD" bigint NOT NULL
	)`

	for _, group := range []string{helper.AnalogGroup, helper.DiscreteGroup} {
		execSQL(t, wrapper, fmt.Sprintf(groupTableDDL, group))
	}

	execSQL(t, wrapper, historyTableDDL)
}

// CleanUp empties the mirror's record tables for the given wrapper.
func CleanUp(t testing.TB, wrapper Wrapper) {
	for _, table := range []string{helper.AnalogGroup, helper.DiscreteGroup, "HISTORY"} {
		execSQL(t, wrapper, fmt.Sprintf(`TRUNCATE TABLE "%s"`, table))
	}
}

// SeedTagTrend seeds one tag's trend into its group table: one row per sample,
// each row carrying the tag's attributes the way the SQLplus relational view
// repeats them per history occurrence.
func SeedTagTrend(t testing.TB, wrapper Wrapper, tag helper.TagFixture, start time.Time, points int) {
	insert := fmt.Sprintf(`INSERT INTO "%s"
		("NAME", "IP_TAG_TYPE", "IP_DESCRIPTION", "IP_ENG_UNITS", "IP_DCS_NAME", "IP_TREND_TIME", "IP_TREND_VALUE")
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, tag.Group)

	for i := 0; i < points; i++ {
		execSQL(t, wrapper, insert,
			tag.Name,
			tag.Group,
			tag.Description,
			tag.EngUnits,
			"",
			start.Add(time.Duration(i)*time.Second),
			helper.FixtureTrendValue(i),
		)
	}
}

// SeedHistoryActuals seeds resampled actuals for one tag into the shared
// HISTORY table. The period is stored in the table's unit of tenths of a second.
func SeedHistoryActuals(t testing.TB, wrapper Wrapper, name string, start time.Time, points int, frequency time.Duration) {
	const insert = `INSERT INTO "HISTORY" ("NAME", "TS", "VALUE", "REQUEST", "PERIOD")
		VALUES ($1, $2, $3, 2, $4)`

	periodUnits := int64(frequency / (100 * time.Millisecond))

	for i := 0; i < points; i++ {
		execSQL(t, wrapper, insert,
			name,
			start.Add(time.Duration(i)*frequency),
			helper.FixtureTrendValue(i),
			periodUnits,
		)
	}
}

// SeedAllFixtures provisions the schema, empties it, and seeds every fixture
// tag with the default trend.
func SeedAllFixtures(t testing.TB, wrapper Wrapper) {
	EnsureMirrorSchema(t, wrapper)
	CleanUp(t, wrapper)

	for _, tag := range helper.AllFixtureTags() {
		SeedTagTrend(t, wrapper, tag, helper.FixtureTrendStart(), helper.TrendPointCount)
	}
}

// execSQL routes a statement through whichever adapter the wrapper holds.
func execSQL(t testing.TB, wrapper Wrapper, query string, args ...any) {
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err = w.pool.Exec(context.Background(), query, args...)

	case *SQLDBWrapper:
		_, err = w.db.Exec(query, args...)

	case *SQLXWrapper:
		_, err = w.db.Exec(query, args...)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	assert.NoError(t, err, "error preparing the historian mirror")
}

// CountTrendRows reports how many trend rows one group table holds, to guard
// seeded preconditions.
func CountTrendRows(t testing.TB, wrapper Wrapper, group string) int {
	query := fmt.Sprintf(`SELECT count(*) FROM "%s"`, group)

	var cnt int
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		row := w.pool.QueryRow(context.Background(), query)
		err = row.Scan(&cnt)

	case *SQLDBWrapper:
		row := w.db.QueryRow(query)
		err = row.Scan(&cnt)

	case *SQLXWrapper:
		row := w.db.QueryRow(query)
		err = row.Scan(&cnt)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	assert.NoError(t, err, "error counting mirror rows")

	return cnt
}
