package historian_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prochist/ip21-connector-go/historian"
)

func Test_PivotSamples_BuildsWideTimeIndexedFrame(t *testing.T) {
	// setup
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	samples := []historian.Sample{
		{Name: "fc001.pv", Timestamp: start, Value: 1.0},
		{Name: "tc001.pv", Timestamp: start, Value: 20.0},
		{Name: "fc001.pv", Timestamp: start.Add(time.Second), Value: 1.5},
		{Name: "tc001.pv", Timestamp: start.Add(time.Second), Value: 20.5},
	}

	// act
	frame, dropped := historian.PivotSamples([]string{"fc001.pv", "tc001.pv"}, samples)

	// assert
	assert.Zero(t, dropped)
	assert.Equal(t, []string{"fc001.pv", "tc001.pv"}, frame.Columns())
	assert.Equal(t, 2, frame.NumRows())
	assert.Equal(t, []time.Time{start, start.Add(time.Second)}, frame.Index())

	value, found := frame.At(0, "fc001.pv")
	assert.True(t, found)
	assert.Equal(t, 1.0, value)

	value, found = frame.At(1, "tc001.pv")
	assert.True(t, found)
	assert.Equal(t, 20.5, value)
}

func Test_PivotSamples_SortsRowsAscendingByTimestamp(t *testing.T) {
	// setup
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	samples := []historian.Sample{
		{Name: "fc001.pv", Timestamp: start.Add(2 * time.Second), Value: 3.0},
		{Name: "fc001.pv", Timestamp: start, Value: 1.0},
		{Name: "fc001.pv", Timestamp: start.Add(time.Second), Value: 2.0},
	}

	// act
	frame, _ := historian.PivotSamples([]string{"fc001.pv"}, samples)

	// assert
	assert.Equal(t, []time.Time{start, start.Add(time.Second), start.Add(2 * time.Second)}, frame.Index())

	values, found := frame.Column("fc001.pv")
	assert.True(t, found)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, values)
}

func Test_PivotSamples_EveryRequestedNameBecomesAColumn(t *testing.T) {
	// setup
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	samples := []historian.Sample{
		{Name: "fc001.pv", Timestamp: start, Value: 1.0},
	}

	// act
	frame, dropped := historian.PivotSamples([]string{"fc001.pv", "silent.pv"}, samples)

	// assert
	assert.Zero(t, dropped)
	assert.Equal(t, []string{"fc001.pv", "silent.pv"}, frame.Columns())

	values, found := frame.Column("silent.pv")
	assert.True(t, found)
	assert.Equal(t, []any{nil}, values)
}

func Test_PivotSamples_WithNoSamples_KeepsRequestedColumnsAndZeroRows(t *testing.T) {
	// act
	frame, dropped := historian.PivotSamples([]string{"fc001.pv", "tc001.pv"}, nil)

	// assert
	assert.Zero(t, dropped)
	assert.True(t, frame.IsEmpty())
	assert.Equal(t, 0, frame.NumRows())
	assert.Equal(t, []string{"fc001.pv", "tc001.pv"}, frame.Columns())
}

func Test_PivotSamples_MissingCellsStayNil(t *testing.T) {
	// setup
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	samples := []historian.Sample{
		{Name: "fc001.pv", Timestamp: start, Value: 1.0},
		{Name: "tc001.pv", Timestamp: start.Add(time.Second), Value: 20.0},
	}

	// act
	frame, _ := historian.PivotSamples([]string{"fc001.pv", "tc001.pv"}, samples)

	// assert
	require.Equal(t, 2, frame.NumRows())

	value, found := frame.At(0, "tc001.pv")
	assert.True(t, found)
	assert.Nil(t, value)

	value, found = frame.At(1, "fc001.pv")
	assert.True(t, found)
	assert.Nil(t, value)
}

func Test_PivotSamples_DuplicateTimestampForSameName_OpensASecondRow(t *testing.T) {
	// setup
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	samples := []historian.Sample{
		{Name: "fc001.pv", Timestamp: start, Value: 1.0},
		{Name: "fc001.pv", Timestamp: start, Value: 1.1},
	}

	// act
	frame, dropped := historian.PivotSamples([]string{"fc001.pv"}, samples)

	// assert
	assert.Zero(t, dropped)
	assert.Equal(t, 2, frame.NumRows())
	assert.Equal(t, []time.Time{start, start}, frame.Index())

	values, found := frame.Column("fc001.pv")
	assert.True(t, found)
	assert.Equal(t, []any{1.0, 1.1}, values)
}

func Test_PivotSamples_DropsSamplesForUnrequestedNames(t *testing.T) {
	// setup
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	samples := []historian.Sample{
		{Name: "fc001.pv", Timestamp: start, Value: 1.0},
		{Name: "fc002.pv", Timestamp: start, Value: 2.0},
		{Name: "fc003.pv", Timestamp: start, Value: 3.0},
	}

	// act
	frame, dropped := historian.PivotSamples([]string{"fc001.pv"}, samples)

	// assert
	assert.Equal(t, 2, dropped)
	assert.Equal(t, []string{"fc001.pv"}, frame.Columns())
	assert.Equal(t, 1, frame.NumRows())
}

func Test_PivotSamples_DeduplicatesRequestedNamesInRequestOrder(t *testing.T) {
	// act
	frame, _ := historian.PivotSamples([]string{"tc001.pv", "fc001.pv", "tc001.pv"}, nil)

	// assert
	assert.Equal(t, []string{"tc001.pv", "fc001.pv"}, frame.Columns())
}

func Test_PivotSamples_NullMeasurementIsNotTreatedAsMissing(t *testing.T) {
	// setup
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	samples := []historian.Sample{
		{Name: "fc001.pv", Timestamp: start, Value: nil},
		{Name: "fc001.pv", Timestamp: start, Value: 1.1},
	}

	// act
	frame, _ := historian.PivotSamples([]string{"fc001.pv"}, samples)

	// assert: the null measurement occupies its cell, the second sample opens a new row
	assert.Equal(t, 2, frame.NumRows())

	values, found := frame.Column("fc001.pv")
	assert.True(t, found)
	assert.Equal(t, []any{nil, 1.1}, values)
}

func Test_Frame_At_WithUnknownColumnOrRow(t *testing.T) {
	// setup
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	frame, _ := historian.PivotSamples([]string{"fc001.pv"}, []historian.Sample{
		{Name: "fc001.pv", Timestamp: start, Value: 1.0},
	})

	// act + assert
	_, found := frame.At(0, "nope")
	assert.False(t, found)

	_, found = frame.At(5, "fc001.pv")
	assert.False(t, found)

	_, found = frame.Column("nope")
	assert.False(t, found)
}

func Test_Frame_JSONRoundTrip(t *testing.T) {
	// setup
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	frame, _ := historian.PivotSamples([]string{"fc001.pv", "tc001.pv"}, []historian.Sample{
		{Name: "fc001.pv", Timestamp: start, Value: 1.0},
		{Name: "tc001.pv", Timestamp: start.Add(time.Second), Value: 20.0},
	})

	// act
	encoded, err := frame.MarshalJSON()
	require.NoError(t, err)

	var decoded historian.Frame
	require.NoError(t, decoded.UnmarshalJSON(encoded))

	// assert
	assert.Equal(t, frame.Columns(), decoded.Columns())
	assert.Equal(t, frame.NumRows(), decoded.NumRows())
	assert.True(t, frame.Index()[0].Equal(decoded.Index()[0]))
}
