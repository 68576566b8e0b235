// Package query builds parameterised PostgreSQL SELECT statements over a
// single projected table.
package query

import (
	"fmt"
	"strings"
)

// Projection maps logical field names to alias-qualified columns.
type Projection struct {
	table   string
	alias   string
	columns map[string]string
	order   []string
}

// NewProjection starts a projection of table under alias.
func NewProjection(table, alias string) *Projection {
	return &Projection{table: table, alias: alias, columns: make(map[string]string)}
}

// Field maps name to column. Fields are selected in the order they are added.
func (p *Projection) Field(name, column string) *Projection {
	qualified := p.alias + "." + column
	p.columns[name] = qualified
	p.order = append(p.order, qualified)
	return p
}

// Column returns the qualified column for name. Unknown names panic since
// they can only come from programmer error.
func (p *Projection) Column(name string) string {
	col, ok := p.columns[name]
	if !ok {
		panic(fmt.Sprintf("query: field %q not projected from %s", name, p.table))
	}
	return col
}

func (p *Projection) selectFrom() string {
	return fmt.Sprintf("SELECT %s FROM %s %s", strings.Join(p.order, ", "), p.table, p.alias)
}

// Order is one ORDER BY term.
type Order struct {
	Field string
	Desc  bool
}

// Builder accumulates AND-ed conditions with sequential $N placeholders.
type Builder struct {
	projection *Projection
	where      []string
	args       []any
	order      []Order
}

// NewBuilder creates a Builder with the given ordering.
func NewBuilder(p *Projection, order ...Order) *Builder {
	return &Builder{projection: p, order: order}
}

// Equals adds field = value. Empty strings and nil pointers are skipped.
func (b *Builder) Equals(field string, value any) *Builder {
	if isEmpty(value) {
		return b
	}
	b.args = append(b.args, value)
	b.where = append(b.where, fmt.Sprintf("%s = $%d", b.projection.Column(field), len(b.args)))
	return b
}

// EqualsFold adds a case-insensitive equality. Empty values are skipped.
func (b *Builder) EqualsFold(field, value string) *Builder {
	if value == "" {
		return b
	}
	b.args = append(b.args, value)
	b.where = append(b.where, fmt.Sprintf("LOWER(%s) = LOWER($%d)", b.projection.Column(field), len(b.args)))
	return b
}

// Contains adds field ILIKE %value%. Empty values are skipped.
func (b *Builder) Contains(field, value string) *Builder {
	if value == "" {
		return b
	}
	b.args = append(b.args, "%"+value+"%")
	b.where = append(b.where, fmt.Sprintf("%s ILIKE $%d", b.projection.Column(field), len(b.args)))
	return b
}

// Count returns a COUNT(*) over the current conditions.
func (b *Builder) Count() (string, []any) {
	p := b.projection
	return fmt.Sprintf("SELECT COUNT(*) FROM %s %s%s", p.table, p.alias, b.whereClause()), b.args
}

// Select returns every matching row in order.
func (b *Builder) Select() (string, []any) {
	return b.projection.selectFrom() + b.whereClause() + b.orderClause(), b.args
}

// Page returns one page of matching rows.
func (b *Builder) Page(limit, offset int) (string, []any) {
	sql, args := b.Select()
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, limit, offset), args
}

// One returns at most one matching row.
func (b *Builder) One() (string, []any) {
	sql, args := b.Select()
	return sql + " LIMIT 1", args
}

func (b *Builder) whereClause() string {
	if len(b.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.where, " AND ")
}

func (b *Builder) orderClause() string {
	if len(b.order) == 0 {
		return ""
	}
	terms := make([]string, len(b.order))
	for i, o := range b.order {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		terms[i] = b.projection.Column(o.Field) + " " + dir
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case *string:
		return x == nil || *x == ""
	case *int:
		return x == nil
	}
	return false
}
