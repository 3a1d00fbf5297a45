package ip21engine

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/prochist/ip21-connector-go/historian"
)

// The shared HISTORY table serves aggregated reads across all groups. Its
// time and value columns differ from the per-group trend columns, so they
// are aliased in the query to keep one result shape for all period reads.
const (
	historyTableName     = "HISTORY"
	historyTimeColumn    = "TS"
	historyValueColumn   = "VALUE"
	historyRequestColumn = "REQUEST"
	historyPeriodColumn  = "PERIOD"

	// REQUEST selects the retrieval mode; 2 asks for recorded actual values.
	historyRequestActuals = 2

	// PERIOD is expressed in tenths of a second.
	historyPeriodUnit = 100 * time.Millisecond
)

// projectionMode selects which columns a listing query returns.
type projectionMode int

const (
	// projectNameOnly returns just the tag name column.
	projectNameOnly projectionMode = iota

	// projectAllColumns returns every native column of the group table.
	projectAllColumns

	// projectAttributeList returns the translated attribute list, with the
	// tag name column force-included so rows stay keyable.
	projectAttributeList
)

// projection describes the column selection of a listing query.
type projection struct {
	mode       projectionMode
	attributes []string
}

// timeWindow bounds a period read; zero values leave the bound open.
type timeWindow struct {
	first time.Time
	last  time.Time
}

// queryBuilder composes per-group queries in the dialect of the active
// backend. It holds no per-call state.
type queryBuilder struct {
	dialect    dialectAdapter
	attributes historian.AttributeMap
}

// buildListQuery composes the tag listing query for one group: project the
// requested columns, match any of the patterns, order by name for stable
// paging, suppress duplicates where the dialect can.
func (qb queryBuilder) buildListQuery(
	group string,
	patterns []string,
	proj projection,
	maxResults int,
) (sqlQueryString, bool, error) {

	dataset := qb.dialect.builder().
		From(goqu.T(group)).
		Order(goqu.I(historian.NativeName).Asc()).
		Where(namePatternPredicate(historian.NativeName, patterns))

	switch proj.mode {
	case projectNameOnly:
		dataset = dataset.Select(historian.NativeName)

	case projectAttributeList:
		dataset = dataset.Select(toAnySlice(qb.nativeProjection(proj.attributes))...)

	case projectAllColumns:
		// goqu renders a bare select list as *
	}

	dataset = qb.dialect.distinct(dataset)

	return qb.dialect.paginate(dataset, maxResults)
}

// buildTrendQuery composes the time-series query against one group table,
// reading the native name/time/value trend columns inside the window.
func (qb queryBuilder) buildTrendQuery(
	group string,
	patterns []string,
	window timeWindow,
	maxResults int,
) (sqlQueryString, bool, error) {

	dataset := qb.dialect.builder().
		From(goqu.T(group)).
		Select(historian.NativeName, historian.NativeTrendTime, historian.NativeTrendValue).
		Order(goqu.I(historian.NativeTrendTime).Asc())

	dataset = applyTimeWindow(dataset, historian.NativeTrendTime, window)
	dataset = dataset.Where(namePatternPredicate(historian.NativeName, patterns))

	return qb.dialect.paginate(dataset, maxResults)
}

// buildHistoryQuery composes the aggregated read against the shared HISTORY
// table, asking for recorded actuals resampled at the given frequency. The
// time and value columns are aliased to the trend column names so period
// results share one shape.
func (qb queryBuilder) buildHistoryQuery(
	patterns []string,
	window timeWindow,
	frequency time.Duration,
	maxResults int,
) (sqlQueryString, bool, error) {

	if frequency <= 0 {
		return "", false, errors.Join(historian.ErrBuildingQueryFailed, errInvalidFrequency)
	}

	dataset := qb.dialect.builder().
		From(goqu.T(historyTableName)).
		Select(
			goqu.C(historian.NativeName),
			goqu.C(historyTimeColumn).As(historian.NativeTrendTime),
			goqu.C(historyValueColumn).As(historian.NativeTrendValue),
		).
		Order(goqu.I(historyTimeColumn).Asc())

	dataset = applyTimeWindow(dataset, historyTimeColumn, window)
	dataset = dataset.
		Where(namePatternPredicate(historian.NativeName, patterns)).
		Where(goqu.C(historyRequestColumn).Eq(historyRequestActuals)).
		Where(goqu.C(historyPeriodColumn).Eq(periodUnits(frequency)))

	return qb.dialect.paginate(dataset, maxResults)
}

var errInvalidFrequency = errors.New("frequency must be positive")

// nativeProjection translates the requested attribute names to native
// columns, force-includes the name column, and drops duplicates while
// keeping the request order.
func (qb queryBuilder) nativeProjection(attributes []string) []string {
	native := qb.attributes.ToNative(attributes)

	if !slices.Contains(native, historian.NativeName) {
		native = append(native, historian.NativeName)
	}

	columns := make([]string, 0, len(native))
	for _, column := range native {
		if !slices.Contains(columns, column) {
			columns = append(columns, column)
		}
	}

	return columns
}

// namePatternPredicate builds the OR-combined prefix match across all
// patterns requested for a group. This is the only supported combinator.
func namePatternPredicate(column string, patterns []string) goqu.Expression {
	expressions := make([]goqu.Expression, 0, len(patterns))

	for _, pattern := range patterns {
		expressions = append(expressions, goqu.C(column).Like(prefixMatch(pattern)))
	}

	return goqu.Or(expressions...)
}

// prefixMatch appends the trailing wildcard that gives patterns their
// prefix-match semantics, unless the pattern already ends in one.
func prefixMatch(pattern string) string {
	if strings.HasSuffix(pattern, historian.PatternWildcard) {
		return pattern
	}

	return pattern + historian.PatternWildcard
}

// applyTimeWindow bounds the query on the given time column; zero bounds
// are left open so callers can read half-open or unbounded windows.
func applyTimeWindow(dataset *goqu.SelectDataset, column string, window timeWindow) *goqu.SelectDataset {
	if !window.first.IsZero() {
		dataset = dataset.Where(goqu.C(column).Gte(window.first))
	}

	if !window.last.IsZero() {
		dataset = dataset.Where(goqu.C(column).Lte(window.last))
	}

	return dataset
}

// periodUnits converts a resample frequency to the HISTORY table's PERIOD
// unit of tenths of a second.
func periodUnits(frequency time.Duration) int64 {
	return int64(frequency / historyPeriodUnit)
}

// toAnySlice widens a string slice for goqu's variadic select.
func toAnySlice(columns []string) []any {
	values := make([]any, len(columns))
	for i, column := range columns {
		values[i] = column
	}

	return values
}
