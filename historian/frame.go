package historian

import (
	"slices"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Frame is a wide, time-indexed result table: one row per timestamp, one
// column per requested tag short name. A nil cell means the tag has no
// sample at that timestamp.
type Frame struct {
	index   []time.Time
	columns []string
	cells   [][]any
}

// pivotRow is a Frame row under construction. filled distinguishes a cell
// that holds a null measurement from one that was never written.
type pivotRow struct {
	timestamp time.Time
	arrival   int
	cells     []any
	filled    []bool
}

// PivotSamples pivots canonical samples into a Frame.
//
// The Frame's columns are exactly the requested names, deduplicated in
// request order; names are included even when no sample carries them, so
// callers can project on the requested set without existence checks.
// Samples whose name is not in the requested set are dropped, and the
// number of dropped samples is returned.
//
// Rows are sorted ascending by timestamp. A second sample for an already
// filled (timestamp, name) cell opens an additional row for the same
// timestamp, ordered after the first by arrival.
func PivotSamples(requestedNames []string, samples []Sample) (*Frame, int) {
	columns := make([]string, 0, len(requestedNames))
	columnIdx := make(map[string]int, len(requestedNames))

	for _, name := range requestedNames {
		if _, duplicate := columnIdx[name]; !duplicate {
			columnIdx[name] = len(columns)
			columns = append(columns, name)
		}
	}

	var rows []*pivotRow
	rowsAt := make(map[int64][]*pivotRow)
	dropped := 0

	for _, sample := range samples {
		col, requested := columnIdx[sample.Name]
		if !requested {
			dropped++
			continue
		}

		key := sample.Timestamp.UnixNano()

		var target *pivotRow
		for _, row := range rowsAt[key] {
			if !row.filled[col] {
				target = row
				break
			}
		}

		if target == nil {
			target = &pivotRow{
				timestamp: sample.Timestamp,
				arrival:   len(rows),
				cells:     make([]any, len(columns)),
				filled:    make([]bool, len(columns)),
			}
			rowsAt[key] = append(rowsAt[key], target)
			rows = append(rows, target)
		}

		target.cells[col] = sample.Value
		target.filled[col] = true
	}

	slices.SortFunc(rows, func(a, b *pivotRow) int {
		if cmp := a.timestamp.Compare(b.timestamp); cmp != 0 {
			return cmp
		}

		return a.arrival - b.arrival
	})

	frame := &Frame{
		index:   make([]time.Time, len(rows)),
		columns: columns,
		cells:   make([][]any, len(rows)),
	}

	for i, row := range rows {
		frame.index[i] = row.timestamp
		frame.cells[i] = row.cells
	}

	return frame, dropped
}

// NumRows returns the number of rows (distinct index entries) in the Frame.
func (f *Frame) NumRows() int {
	return len(f.index)
}

// Columns returns the column names in request order.
func (f *Frame) Columns() []string {
	return f.columns
}

// Index returns the timestamp index, sorted ascending.
func (f *Frame) Index() []time.Time {
	return f.index
}

// IsEmpty reports whether the Frame holds no rows.
func (f *Frame) IsEmpty() bool {
	return len(f.index) == 0
}

// At returns the cell for a row number and column name.
// The second return value is false for an unknown column or row.
func (f *Frame) At(row int, column string) (any, bool) {
	if row < 0 || row >= len(f.index) {
		return nil, false
	}

	col := slices.Index(f.columns, column)
	if col < 0 {
		return nil, false
	}

	return f.cells[row][col], true
}

// Column returns all cells of one column in index order.
// The second return value is false for an unknown column.
func (f *Frame) Column(column string) ([]any, bool) {
	col := slices.Index(f.columns, column)
	if col < 0 {
		return nil, false
	}

	values := make([]any, len(f.cells))
	for i, row := range f.cells {
		values[i] = row[col]
	}

	return values, true
}

// frameJSON is the serialized shape of a Frame.
type frameJSON struct {
	Index   []time.Time `json:"index"`
	Columns []string    `json:"columns"`
	Rows    [][]any     `json:"rows"`
}

// MarshalJSON renders the Frame as an index/columns/rows document.
func (f *Frame) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(frameJSON{
		Index:   f.index,
		Columns: f.columns,
		Rows:    f.cells,
	})
}

// UnmarshalJSON restores a Frame from its serialized shape.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var decoded frameJSON

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &decoded); err != nil {
		return err
	}

	f.index = decoded.Index
	f.columns = decoded.Columns
	f.cells = decoded.Rows

	return nil
}
