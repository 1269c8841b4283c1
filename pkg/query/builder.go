package query

import (
	"fmt"
	"strings"
)

// SortField is one ORDER BY term over a logical field.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses "a,-b" into ascending a then descending b.
// Returns nil for empty input.
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if after, ok := strings.CutPrefix(part, "-"); ok {
			fields = append(fields, SortField{Field: after, Descending: true})
			continue
		}
		fields = append(fields, SortField{Field: part})
	}
	return fields
}

type condition struct {
	column string
	arg    any
}

// Builder accumulates equality filters and ordering, then renders numbered
// ($1, $2, ...) statements. Fields that are not projected are rejected.
type Builder struct {
	projection  *Projection
	conditions  []condition
	sort        []SortField
	defaultSort []SortField
	err         error
}

// NewBuilder creates a Builder ordered by defaultSort unless OrderBy overrides it.
func NewBuilder(p *Projection, defaultSort ...SortField) *Builder {
	return &Builder{projection: p, defaultSort: defaultSort}
}

// WhereEquals filters field = value. A nil value adds no condition.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if value == nil {
		return b
	}
	col, ok := b.projection.Column(field)
	if !ok {
		b.fail(fmt.Errorf("unknown filter field %q", field))
		return b
	}
	b.conditions = append(b.conditions, condition{column: col, arg: value})
	return b
}

// OrderBy replaces the default ordering when fields is non-empty.
func (b *Builder) OrderBy(fields []SortField) *Builder {
	for _, f := range fields {
		if _, ok := b.projection.Column(f.Field); !ok {
			b.fail(fmt.Errorf("unknown sort field %q", f.Field))
			return b
		}
	}
	b.sort = fields
	return b
}

// Err returns the first field error recorded by the builder.
func (b *Builder) Err() error {
	return b.err
}

// BuildCount returns a COUNT(*) statement with the current filters.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.where()
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.Table(), where), args
}

// BuildPage returns a filtered, ordered SELECT limited to one page.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	where, args := b.where()
	n := len(args)
	args = append(args, pageSize, (page-1)*pageSize)

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s LIMIT $%d OFFSET $%d",
		b.projection.Columns(),
		b.projection.Table(),
		where,
		b.orderBy(),
		n+1, n+2,
	)
	return sql, args
}

// BuildSingle returns a SELECT for the row whose field equals id.
func (b *Builder) BuildSingle(field string, id any) (string, []any) {
	col, _ := b.projection.Column(field)
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(),
		b.projection.Table(),
		col,
	)
	return sql, []any{id}
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) where() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, len(b.conditions))
	args := make([]any, len(b.conditions))
	for i, c := range b.conditions {
		clauses[i] = fmt.Sprintf("%s = $%d", c.column, i+1)
		args[i] = c.arg
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (b *Builder) orderBy() string {
	fields := b.sort
	if len(fields) == 0 {
		fields = b.defaultSort
	}
	if len(fields) == 0 {
		return ""
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		col, _ := b.projection.Column(f.Field)
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts[i] = col + " " + dir
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
