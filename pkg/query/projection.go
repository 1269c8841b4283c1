// Package query builds parameterized SELECT statements over a single table
// from logical field names.
package query

import "strings"

// Projection maps logical field names to table columns. Columns are selected
// in the order they were projected.
type Projection struct {
	table   string
	columns map[string]string
	order   []string
}

// NewProjection creates a Projection over table.
func NewProjection(table string) *Projection {
	return &Projection{
		table:   table,
		columns: make(map[string]string),
	}
}

// Project maps field to column and appends column to the select list.
func (p *Projection) Project(column, field string) *Projection {
	p.columns[field] = column
	p.order = append(p.order, column)
	return p
}

// Table returns the table name.
func (p *Projection) Table() string {
	return p.table
}

// Column returns the column for field and whether it is projected.
func (p *Projection) Column(field string) (string, bool) {
	col, ok := p.columns[field]
	return col, ok
}

// Columns returns the select list.
func (p *Projection) Columns() string {
	return strings.Join(p.order, ", ")
}
