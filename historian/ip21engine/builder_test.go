package ip21engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prochist/ip21-connector-go/historian"
)

func newTestBuilder(d Dialect) queryBuilder {
	return queryBuilder{dialect: adapterForDialect(d), attributes: historian.DefaultAttributeMap()}
}

func Test_QueryBuilder_ListQuery_SelectsTheNameColumnByDefault(t *testing.T) {
	// setup
	builder := newTestBuilder(DialectNativeHistorian)

	// act
	sqlQuery, advance, err := builder.buildListQuery("IP_AIDef", []string{"tc%"}, projection{mode: projectNameOnly}, 0)

	// assert
	assert.NoError(t, err)
	assert.False(t, advance)
	assert.Equal(t, `SELECT "NAME" FROM "IP_AIDef" WHERE ("NAME" LIKE 'tc%') ORDER BY "NAME" ASC`, sqlQuery)
}

func Test_QueryBuilder_ListQuery_SuppressesDuplicatesOnStandardBackends(t *testing.T) {
	// setup
	builder := newTestBuilder(DialectStandardSQL)

	// act
	sqlQuery, advance, err := builder.buildListQuery("IP_AIDef", []string{"tc%"}, projection{mode: projectNameOnly}, 0)

	// assert
	assert.NoError(t, err)
	assert.False(t, advance)
	assert.Equal(t, `SELECT DISTINCT "NAME" FROM "IP_AIDef" WHERE ("NAME" LIKE 'tc%') ORDER BY "NAME" ASC`, sqlQuery)
}

func Test_QueryBuilder_ListQuery_CombinesPatternsWithOr(t *testing.T) {
	// setup
	builder := newTestBuilder(DialectNativeHistorian)

	// act
	sqlQuery, _, err := builder.buildListQuery("IP_AIDef", []string{"tc%", "fc%"}, projection{mode: projectNameOnly}, 0)

	// assert
	assert.NoError(t, err)
	assert.Equal(t,
		`SELECT "NAME" FROM "IP_AIDef" WHERE (("NAME" LIKE 'tc%') OR ("NAME" LIKE 'fc%')) ORDER BY "NAME" ASC`,
		sqlQuery)
}

func Test_QueryBuilder_ListQuery_GivesPatternsPrefixMatchSemantics(t *testing.T) {
	// setup
	builder := newTestBuilder(DialectNativeHistorian)

	// act
	sqlQuery, _, err := builder.buildListQuery("IP_AIDef", []string{"tc001.pv"}, projection{mode: projectNameOnly}, 0)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, `SELECT "NAME" FROM "IP_AIDef" WHERE ("NAME" LIKE 'tc001.pv%') ORDER BY "NAME" ASC`, sqlQuery)
}

func Test_QueryBuilder_ListQuery_SelectsEveryColumnForAttributeBrowsing(t *testing.T) {
	// setup
	builder := newTestBuilder(DialectNativeHistorian)

	// act
	sqlQuery, _, err := builder.buildListQuery("IP_AIDef", []string{"tc%"}, projection{mode: projectAllColumns}, 0)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "IP_AIDef" WHERE ("NAME" LIKE 'tc%') ORDER BY "NAME" ASC`, sqlQuery)
}

func Test_QueryBuilder_ListQuery_TranslatesRequestedAttributesToNativeColumns(t *testing.T) {
	// setup
	builder := newTestBuilder(DialectNativeHistorian)
	proj := projection{
		mode:       projectAttributeList,
		attributes: []string{historian.CanonicalDescription, historian.CanonicalEngUnits},
	}

	// act
	sqlQuery, _, err := builder.buildListQuery("IP_AIDef", []string{"fc001.pv%"}, proj, 0)

	// assert: the name column is force-included so rows stay keyable
	assert.NoError(t, err)
	assert.Equal(t,
		`SELECT "IP_DESCRIPTION", "IP_ENG_UNITS", "NAME" FROM "IP_AIDef" WHERE ("NAME" LIKE 'fc001.pv%') ORDER BY "NAME" ASC`,
		sqlQuery)
}

func Test_QueryBuilder_ListQuery_DropsDuplicateProjectionColumns(t *testing.T) {
	// setup: canonical Name and the raw native column translate to the same column
	builder := newTestBuilder(DialectNativeHistorian)
	proj := projection{
		mode:       projectAttributeList,
		attributes: []string{historian.CanonicalName, historian.NativeName, historian.CanonicalEngUnits},
	}

	// act
	sqlQuery, _, err := builder.buildListQuery("IP_AIDef", []string{"tc%"}, proj, 0)

	// assert
	assert.NoError(t, err)
	assert.Equal(t,
		`SELECT "NAME", "IP_ENG_UNITS" FROM "IP_AIDef" WHERE ("NAME" LIKE 'tc%') ORDER BY "NAME" ASC`,
		sqlQuery)
}

func Test_QueryBuilder_ListQuery_LimitsRowsThroughTheMaxRowsDirective(t *testing.T) {
	// setup
	builder := newTestBuilder(DialectNativeHistorian)

	// act
	sqlQuery, advance, err := builder.buildListQuery("IP_AIDef", []string{"tc%"}, projection{mode: projectNameOnly}, 5)

	// assert
	assert.NoError(t, err)
	assert.True(t, advance)
	assert.Equal(t,
		`SET MAX_ROWS 5; SELECT "NAME" FROM "IP_AIDef" WHERE ("NAME" LIKE 'tc%') ORDER BY "NAME" ASC;`,
		sqlQuery)
}

func Test_QueryBuilder_ListQuery_LimitsRowsInlineOnStandardBackends(t *testing.T) {
	// setup
	builder := newTestBuilder(DialectStandardSQL)

	// act
	sqlQuery, advance, err := builder.buildListQuery("IP_AIDef", []string{"tc%"}, projection{mode: projectNameOnly}, 5)

	// assert
	assert.NoError(t, err)
	assert.False(t, advance)
	assert.Equal(t,
		`SELECT DISTINCT TOP (5) "NAME" FROM "IP_AIDef" WHERE ("NAME" LIKE 'tc%') ORDER BY "NAME" ASC`,
		sqlQuery)
}

func Test_QueryBuilder_TrendQuery_ReadsTheTrendColumnsOrderedByTime(t *testing.T) {
	// setup
	builder := newTestBuilder(DialectNativeHistorian)

	// act
	sqlQuery, advance, err := builder.buildTrendQuery("IP_AIDef", []string{"tc001.pv%"}, timeWindow{}, 0)

	// assert
	assert.NoError(t, err)
	assert.False(t, advance)
	assert.Equal(t,
		`SELECT "NAME", "IP_TREND_TIME", "IP_TREND_VALUE" FROM "IP_AIDef" WHERE ("NAME" LIKE 'tc001.pv%') ORDER BY "IP_TREND_TIME" ASC`,
		sqlQuery)
}

func Test_QueryBuilder_TrendQuery_BoundsTheTimeWindow(t *testing.T) {
	// setup
	builder := newTestBuilder(DialectNativeHistorian)
	window := timeWindow{
		first: time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC),
		last:  time.Date(2016, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	// act
	sqlQuery, _, err := builder.buildTrendQuery("IP_AIDef", []string{"tc001.pv%"}, window, 0)

	// assert
	assert.NoError(t, err)
	assert.Equal(t,
		`SELECT "NAME", "IP_TREND_TIME", "IP_TREND_VALUE" FROM "IP_AIDef" `+
			`WHERE (("IP_TREND_TIME" >= '2016-01-01T00:00:00Z') AND ("IP_TREND_TIME" <= '2016-01-02T00:00:00Z') `+
			`AND ("NAME" LIKE 'tc001.pv%')) ORDER BY "IP_TREND_TIME" ASC`,
		sqlQuery)
}

func Test_QueryBuilder_TrendQuery_LeavesZeroBoundsOpen(t *testing.T) {
	// setup
	builder := newTestBuilder(DialectNativeHistorian)
	lower := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		window   timeWindow
		expected string
	}{
		{
			name:   "only a lower bound",
			window: timeWindow{first: lower},
			expected: `SELECT "NAME", "IP_TREND_TIME", "IP_TREND_VALUE" FROM "IP_AIDef" ` +
				`WHERE (("IP_TREND_TIME" >= '2016-01-01T00:00:00Z') AND ("NAME" LIKE 'tc001.pv%')) ` +
				`ORDER BY "IP_TREND_TIME" ASC`,
		},
		{
			name:   "only an upper bound",
			window: timeWindow{last: lower},
			expected: `SELECT "NAME", "IP_TREND_TIME", "IP_TREND_VALUE" FROM "IP_AIDef" ` +
				`WHERE (("IP_TREND_TIME" <= '2016-01-01T00:00:00Z') AND ("NAME" LIKE 'tc001.pv%')) ` +
				`ORDER BY "IP_TREND_TIME" ASC`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			sqlQuery, _, err := builder.buildTrendQuery("IP_AIDef", []string{"tc001.pv%"}, tc.window, 0)

			// assert
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, sqlQuery)
		})
	}
}

func Test_QueryBuilder_TrendQuery_LimitsRowsInlineOnStandardBackends(t *testing.T) {
	// setup: trend reads never deduplicate, the limit is the only standard extra
	builder := newTestBuilder(DialectStandardSQL)

	// act
	sqlQuery, advance, err := builder.buildTrendQuery("IP_AIDef", []string{"tc001.pv%"}, timeWindow{}, 10)

	// assert
	assert.NoError(t, err)
	assert.False(t, advance)
	assert.Equal(t,
		`SELECT TOP (10) "NAME", "IP_TREND_TIME", "IP_TREND_VALUE" FROM "IP_AIDef" WHERE ("NAME" LIKE 'tc001.pv%') ORDER BY "IP_TREND_TIME" ASC`,
		sqlQuery)
}

func Test_QueryBuilder_HistoryQuery_ShapesTheAggregatedRead(t *testing.T) {
	// setup
	builder := newTestBuilder(DialectNativeHistorian)
	window := timeWindow{
		first: time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC),
		last:  time.Date(2016, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	// act: one minute resampling is 600 tenths of a second
	sqlQuery, advance, err := builder.buildHistoryQuery([]string{"tc001.pv%"}, window, time.Minute, 0)

	// assert
	assert.NoError(t, err)
	assert.False(t, advance)
	assert.Equal(t,
		`SELECT "NAME", "TS" AS "IP_TREND_TIME", "VALUE" AS "IP_TREND_VALUE" FROM "HISTORY" `+
			`WHERE (("TS" >= '2016-01-01T00:00:00Z') AND ("TS" <= '2016-01-02T00:00:00Z') `+
			`AND ("NAME" LIKE 'tc001.pv%') AND ("REQUEST" = 2) AND ("PERIOD" = 600)) ORDER BY "TS" ASC`,
		sqlQuery)
}

func Test_QueryBuilder_HistoryQuery_LimitsRowsThroughTheMaxRowsDirective(t *testing.T) {
	// setup
	builder := newTestBuilder(DialectNativeHistorian)

	// act
	sqlQuery, advance, err := builder.buildHistoryQuery([]string{"tc001.pv%"}, timeWindow{}, time.Minute, 25)

	// assert
	assert.NoError(t, err)
	assert.True(t, advance)
	assert.Equal(t,
		`SET MAX_ROWS 25; SELECT "NAME", "TS" AS "IP_TREND_TIME", "VALUE" AS "IP_TREND_VALUE" FROM "HISTORY" `+
			`WHERE (("NAME" LIKE 'tc001.pv%') AND ("REQUEST" = 2) AND ("PERIOD" = 600)) ORDER BY "TS" ASC;`,
		sqlQuery)
}

func Test_QueryBuilder_HistoryQuery_RejectsNonPositiveFrequencies(t *testing.T) {
	// setup
	builder := newTestBuilder(DialectNativeHistorian)

	testCases := []struct {
		name      string
		frequency time.Duration
	}{
		{name: "zero frequency", frequency: 0},
		{name: "negative frequency", frequency: -time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, _, err := builder.buildHistoryQuery([]string{"tc001.pv%"}, timeWindow{}, tc.frequency, 0)

			// assert
			assert.ErrorIs(t, err, historian.ErrBuildingQueryFailed)
			assert.ErrorContains(t, err, "frequency must be positive")
		})
	}
}
