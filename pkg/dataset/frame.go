// Package dataset provides an immutable, column-named tabular frame with
// flat-file persistence and random train/test partitioning.
package dataset

import (
	"errors"
	"fmt"
	"slices"
)

// IdentityColumn is the store-assigned identity key stripped on export.
const IdentityColumn = "_id"

var (
	// ErrColumnNotFound indicates a referenced column does not exist.
	ErrColumnNotFound = errors.New("column not found")
	// ErrDuplicateColumn indicates a column name appears more than once.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrRowWidth indicates a row does not match the column count.
	ErrRowWidth = errors.New("row width does not match column count")
)

// Frame is an ordered table of rows under a fixed, named column schema.
// Operations never modify the receiver; they return a new Frame.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// New builds a Frame, copying columns and rows.
func New(columns []string, rows [][]Value) (Frame, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, ok := index[c]; ok {
			return Frame{}, fmt.Errorf("%w: %s", ErrDuplicateColumn, c)
		}
		index[c] = i
	}

	copied := make([][]Value, len(rows))
	for i, r := range rows {
		if len(r) != len(columns) {
			return Frame{}, fmt.Errorf("%w: row %d has %d values, want %d", ErrRowWidth, i, len(r), len(columns))
		}
		copied[i] = slices.Clone(r)
	}

	return Frame{
		columns: slices.Clone(columns),
		index:   index,
		rows:    copied,
	}, nil
}

// MustNew is New for statically known inputs; it panics on error.
func MustNew(columns []string, rows [][]Value) Frame {
	f, err := New(columns, rows)
	if err != nil {
		panic(err)
	}
	return f
}

// FromRecords builds a Frame from ordered key/value records. Column order is
// first-seen key order across all records; keys absent from a record are Missing.
func FromRecords(records []Record) Frame {
	var columns []string
	index := make(map[string]int)

	for _, rec := range records {
		for _, f := range rec {
			if _, ok := index[f.Key]; !ok {
				index[f.Key] = len(columns)
				columns = append(columns, f.Key)
			}
		}
	}

	rows := make([][]Value, len(records))
	for i, rec := range records {
		row := make([]Value, len(columns))
		for _, f := range rec {
			row[index[f.Key]] = f.Value
		}
		rows[i] = row
	}

	return Frame{columns: columns, index: index, rows: rows}
}

// Field is a single named value within a Record.
type Field struct {
	Key   string
	Value Value
}

// Record is an ordered set of fields, typically one source document.
type Record []Field

func (f Frame) Columns() []string {
	return slices.Clone(f.columns)
}

func (f Frame) Len() int {
	return len(f.rows)
}

func (f Frame) Width() int {
	return len(f.columns)
}

func (f Frame) Has(column string) bool {
	_, ok := f.index[column]
	return ok
}

// At returns the value at row i for the named column.
func (f Frame) At(i int, column string) (Value, error) {
	j, ok := f.index[column]
	if !ok {
		return Missing, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	return f.rows[i][j], nil
}

// Row returns a copy of row i.
func (f Frame) Row(i int) []Value {
	return slices.Clone(f.rows[i])
}

// Column returns a copy of the named column's values.
func (f Frame) Column(name string) ([]Value, error) {
	j, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	out := make([]Value, len(f.rows))
	for i, r := range f.rows {
		out[i] = r[j]
	}
	return out, nil
}

// Drop returns a Frame without the named columns. Absent names are ignored.
func (f Frame) Drop(names ...string) Frame {
	keep := make([]string, 0, len(f.columns))
	for _, c := range f.columns {
		if !slices.Contains(names, c) {
			keep = append(keep, c)
		}
	}
	out, _ := f.Select(keep...)
	return out
}

// Select returns a Frame with exactly the named columns in the given order.
func (f Frame) Select(names ...string) (Frame, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		j, ok := f.index[n]
		if !ok {
			return Frame{}, fmt.Errorf("%w: %s", ErrColumnNotFound, n)
		}
		idx[i] = j
	}

	rows := make([][]Value, len(f.rows))
	for i, r := range f.rows {
		row := make([]Value, len(idx))
		for k, j := range idx {
			row[k] = r[j]
		}
		rows[i] = row
	}

	return New(names, rows)
}

// WithColumn returns a Frame with the named column set to values,
// replacing it in place when it exists and appending it otherwise.
func (f Frame) WithColumn(name string, values []Value) (Frame, error) {
	if len(values) != len(f.rows) {
		return Frame{}, fmt.Errorf("%w: column %s has %d values, want %d", ErrRowWidth, name, len(values), len(f.rows))
	}

	columns := slices.Clone(f.columns)
	j, exists := f.index[name]
	if !exists {
		j = len(columns)
		columns = append(columns, name)
	}

	rows := make([][]Value, len(f.rows))
	for i, r := range f.rows {
		row := slices.Clone(r)
		if exists {
			row[j] = values[i]
		} else {
			row = append(row, values[i])
		}
		rows[i] = row
	}

	return New(columns, rows)
}

// Rename returns a Frame with columns renamed per mapping. Unmapped columns keep their names.
func (f Frame) Rename(mapping map[string]string) (Frame, error) {
	columns := make([]string, len(f.columns))
	for i, c := range f.columns {
		if to, ok := mapping[c]; ok {
			columns[i] = to
		} else {
			columns[i] = c
		}
	}
	return New(columns, f.rows)
}

// Take returns a Frame holding the rows at the given indices, in order.
func (f Frame) Take(indices []int) Frame {
	rows := make([][]Value, len(indices))
	for i, j := range indices {
		rows[i] = slices.Clone(f.rows[j])
	}
	return Frame{columns: slices.Clone(f.columns), index: f.index, rows: rows}
}

// Map returns a Frame with fn applied to every value of the named column.
func (f Frame) Map(name string, fn func(Value) (Value, error)) (Frame, error) {
	values, err := f.Column(name)
	if err != nil {
		return Frame{}, err
	}
	for i, v := range values {
		mapped, err := fn(v)
		if err != nil {
			return Frame{}, fmt.Errorf("column %s row %d: %w", name, i, err)
		}
		values[i] = mapped
	}
	return f.WithColumn(name, values)
}

// Matrix returns the frame as a row-major float slice.
// Every value must be a number.
func (f Frame) Matrix() ([]float64, error) {
	data := make([]float64, 0, len(f.rows)*len(f.columns))
	for i, r := range f.rows {
		for j, v := range r {
			n, ok := v.Float()
			if !ok {
				return nil, fmt.Errorf("non-numeric value %q at row %d column %s", v.String(), i, f.columns[j])
			}
			data = append(data, n)
		}
	}
	return data, nil
}
