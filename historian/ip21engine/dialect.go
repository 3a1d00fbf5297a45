package ip21engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlserver" // dialect registration

	"github.com/prochist/ip21-connector-go/historian"
)

const (
	// standardDialectMarker identifies a connection descriptor that points at
	// a general-purpose SQL engine instead of the native SQLplus endpoint.
	standardDialectMarker = "sql server"

	goquDialectStandard = "sqlserver"
	goquDialectNative   = "default"

	// maxRowsBatchFormat wraps a query into the SQLplus statement batch that
	// limits row counts out of band. The directive answers with its own empty
	// result set, so the cursor must advance once before fetching rows.
	maxRowsBatchFormat = "SET MAX_ROWS %d; %s;"

	// topClauseFormat is the inline row limit understood by general-purpose
	// SQL engines. It sits between SELECT, an optional DISTINCT, and the
	// projection.
	topClauseFormat = "TOP (%d) "

	selectPrefix         = "SELECT "
	selectDistinctPrefix = "SELECT DISTINCT "
)

// Dialect identifies the SQL variant spoken by the backend connection.
type Dialect int

const (
	// DialectNativeHistorian is the historian's own SQLplus dialect: no
	// inline row limits, no DISTINCT, pagination via the MAX_ROWS directive.
	DialectNativeHistorian Dialect = iota

	// DialectStandardSQL is a general-purpose SQL engine fronting the
	// historian, with inline row limits and DISTINCT available.
	DialectStandardSQL
)

// String returns the dialect name for logs and span attributes.
func (d Dialect) String() string {
	if d == DialectStandardSQL {
		return "standard-sql"
	}

	return "native-historian"
}

// IsStandardDialect reports whether a connection descriptor identifies a
// general-purpose SQL engine. The check is a case-insensitive substring
// match; it is pure so callers can probe descriptors without a connection.
func IsStandardDialect(connectionDescriptor string) bool {
	return strings.Contains(strings.ToLower(connectionDescriptor), standardDialectMarker)
}

// DetectDialect derives the dialect from a connection descriptor.
// Detection happens once at connector construction, never per call.
func DetectDialect(connectionDescriptor string) Dialect {
	if IsStandardDialect(connectionDescriptor) {
		return DialectStandardSQL
	}

	return DialectNativeHistorian
}

// dialectAdapter encapsulates one backend dialect's pagination and
// duplicate-suppression strategy, so call sites never branch on backend
// identity directly.
type dialectAdapter interface {
	// dialect returns the identity of the adapted dialect.
	dialect() Dialect

	// builder returns the goqu dialect to compose queries with.
	builder() goqu.DialectWrapper

	// paginate renders the dataset with the row limit embedded the way the
	// dialect requires. advance reports whether the cursor must move to the
	// next result set after execution before rows can be fetched.
	// A maxResults of zero or less renders the query without any limit.
	paginate(dataset *goqu.SelectDataset, maxResults int) (sqlQuery sqlQueryString, advance bool, err error)

	// distinct applies duplicate suppression where the dialect supports it
	// and leaves the dataset untouched where it does not.
	distinct(dataset *goqu.SelectDataset) *goqu.SelectDataset
}

// standardSQLAdapter speaks to general-purpose SQL engines: inline TOP style
// limits, DISTINCT supported, single result set per query.
type standardSQLAdapter struct{}

func (standardSQLAdapter) dialect() Dialect {
	return DialectStandardSQL
}

func (standardSQLAdapter) builder() goqu.DialectWrapper {
	return goqu.Dialect(goquDialectStandard)
}

func (standardSQLAdapter) paginate(dataset *goqu.SelectDataset, maxResults int) (sqlQueryString, bool, error) {
	sqlQuery, _, toSQLErr := dataset.ToSQL()
	if toSQLErr != nil {
		return "", false, errors.Join(historian.ErrBuildingQueryFailed, toSQLErr)
	}

	if maxResults > 0 {
		return insertTopClause(sqlQuery, maxResults), false, nil
	}

	return sqlQuery, false, nil
}

// insertTopClause splices the row limit into a rendered SELECT, after the
// DISTINCT keyword when duplicate suppression is active.
func insertTopClause(sqlQuery sqlQueryString, maxResults int) sqlQueryString {
	topClause := fmt.Sprintf(topClauseFormat, maxResults)

	for _, prefix := range []string{selectDistinctPrefix, selectPrefix} {
		if strings.HasPrefix(sqlQuery, prefix) {
			return prefix + topClause + strings.TrimPrefix(sqlQuery, prefix)
		}
	}

	return sqlQuery
}

func (standardSQLAdapter) distinct(dataset *goqu.SelectDataset) *goqu.SelectDataset {
	return dataset.Distinct()
}

// nativeHistorianAdapter speaks SQLplus: row limits only through the
// MAX_ROWS directive batch, no DISTINCT, and the data arrives in the second
// result set when the directive is in play.
type nativeHistorianAdapter struct{}

func (nativeHistorianAdapter) dialect() Dialect {
	return DialectNativeHistorian
}

func (nativeHistorianAdapter) builder() goqu.DialectWrapper {
	return goqu.Dialect(goquDialectNative)
}

func (nativeHistorianAdapter) paginate(dataset *goqu.SelectDataset, maxResults int) (sqlQueryString, bool, error) {
	sqlQuery, _, toSQLErr := dataset.ToSQL()
	if toSQLErr != nil {
		return "", false, errors.Join(historian.ErrBuildingQueryFailed, toSQLErr)
	}

	if maxResults > 0 {
		return fmt.Sprintf(maxRowsBatchFormat, maxResults, sqlQuery), true, nil
	}

	return sqlQuery, false, nil
}

func (nativeHistorianAdapter) distinct(dataset *goqu.SelectDataset) *goqu.SelectDataset {
	return dataset
}

// adapterForDialect selects the dialect adapter at construction time.
func adapterForDialect(d Dialect) dialectAdapter {
	if d == DialectStandardSQL {
		return standardSQLAdapter{}
	}

	return nativeHistorianAdapter{}
}
