package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"fairdash/internal/fairness/models"
)

// Dialect selects placeholder and type syntax for SQL serialization.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// OrdinalColumn is the Postgres load-order column. Distinct values are
// ordered by their first row so both SQL engines agree on first-seen order.
const OrdinalColumn = "id"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidTable reports whether name is safe to use as a table identifier.
func ValidTable(name string) bool {
	return identifierPattern.MatchString(name)
}

type builder struct {
	dialect Dialect
	where   []string
	args    []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	if b.dialect == DialectPostgres {
		return "$" + strconv.Itoa(len(b.args))
	}
	return "?"
}

func (b *builder) clause() string {
	if len(b.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.where, " AND ")
}

// SQL serializes q for the dialect. Every value is bound as an argument.
func (q Query) SQL(d Dialect, table string) (string, []any) {
	b := &builder{dialect: d}
	for _, p := range q.Predicates() {
		switch p.Op {
		case "IS NOT NULL":
			b.where = append(b.where, p.Column+" IS NOT NULL")
		case "IN":
			if d == DialectPostgres {
				b.where = append(b.where, fmt.Sprintf("%s = ANY(%s)", p.Column, b.bind(pq.Array(textValues(p.Values)))))
				continue
			}
			holders := make([]string, len(p.Values))
			for i, v := range p.Values {
				holders[i] = b.bind(v)
			}
			b.where = append(b.where, fmt.Sprintf("%s IN (%s)", p.Column, strings.Join(holders, ", ")))
		case "BETWEEN":
			b.where = append(b.where, fmt.Sprintf("%s BETWEEN %s AND %s", p.Column, b.bind(p.Values[0]), b.bind(p.Values[1])))
		default:
			b.where = append(b.where, fmt.Sprintf("%s %s %s", p.Column, p.Op, b.bind(p.Values[0])))
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(models.Columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	sb.WriteString(b.clause())
	if order := orderColumns(q.OrderBy); len(order) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(order, ", "))
	}
	return sb.String(), b.args
}

// DistinctSQL lists distinct non-null values of a column as text in
// first-seen order: SQLite by rowid, Postgres by OrdinalColumn.
func DistinctSQL(d Dialect, table, column string, where ...models.Condition) (string, []any, error) {
	if !models.IsColumn(column) {
		return "", nil, fmt.Errorf("unknown column %q", column)
	}
	b := &builder{dialect: d}
	b.where = append(b.where, column+" IS NOT NULL")
	for _, c := range where {
		if !models.IsColumn(c.Column) {
			return "", nil, fmt.Errorf("unknown column %q", c.Column)
		}
		b.where = append(b.where, fmt.Sprintf("%s = %s", c.Column, b.bind(c.Value)))
	}
	if d == DialectPostgres {
		return fmt.Sprintf("SELECT %s::text FROM %s%s GROUP BY %s ORDER BY MIN(%s)", column, table, b.clause(), column, OrdinalColumn), b.args, nil
	}
	return fmt.Sprintf("SELECT CAST(%s AS TEXT) FROM %s%s GROUP BY %s ORDER BY MIN(rowid)", column, table, b.clause(), column), b.args, nil
}

// YearBoundsSQL selects the minimum and maximum year.
func YearBoundsSQL(table string) string {
	return fmt.Sprintf("SELECT MIN(%s), MAX(%s) FROM %s", models.ColumnYear, models.ColumnYear, table)
}

func textValues(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func orderColumns(cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if models.IsColumn(c) {
			out = append(out, c)
		}
	}
	return out
}
