package querysql

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/queryir"
)

// SQLCompiler compiles queryir queries to parameterized SQL for SQLite.
//
// Every query selects the catalog columns explicitly, in scan order, and ends
// with the table's stable ORDER BY key so results are identical across runs.
// Values are always bound as parameters, never interpolated.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a query to SQL. Returns (sql, params, error).
// The query is validated against queryir.Catalog first.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}
	if err := queryir.Validate(q).Err(); err != nil {
		return "", nil, fmt.Errorf("invalid query: %w", err)
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	case queryir.Join:
		return c.compileJoin(query)
	case *queryir.Join:
		return c.compileJoin(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	table, _ := queryir.Lookup(q.From)

	var whereClause string
	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter, "")
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		strings.Join(table.ColumnNames(), ", "),
		table.Name,
		whereClause,
		stableOrderKey(table, ""))

	return sql, params, nil
}

func (c *SQLCompiler) compileJoin(j queryir.Join) (string, []any, error) {
	left, _ := queryir.Lookup(j.Left.From)
	right, _ := queryir.Lookup(j.Right.From)

	columns := append(qualify(left.Name, left.ColumnNames()), qualify(right.Name, right.ColumnNames())...)

	var conditions []string
	var params []any
	for _, side := range []queryir.Select{j.Left, j.Right} {
		if side.Filter == nil {
			continue
		}
		sql, sideParams, err := c.compilePredicate(side.Filter, side.From)
		if err != nil {
			return "", nil, fmt.Errorf("compile %s filter: %w", side.From, err)
		}
		conditions = append(conditions, sql)
		params = append(params, sideParams...)
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	sql := fmt.Sprintf("SELECT %s FROM %s INNER JOIN %s ON %s.%s = %s.%s%s ORDER BY %s",
		strings.Join(columns, ", "),
		left.Name,
		right.Name,
		left.Name, j.LeftField,
		right.Name, j.RightField,
		whereClause,
		stableOrderKey(left, left.Name))

	return sql, params, nil
}

// stableOrderKey renders the table's ORDER BY. Text keys use COLLATE BINARY
// so ordering doesn't depend on the connection's collation.
func stableOrderKey(table queryir.Table, qualifier string) string {
	parts := make([]string, len(table.OrderBy))
	for i, key := range table.OrderBy {
		col := column(qualifier, key)
		if c, ok := table.Column(key); ok && c.Kind == queryir.KindText {
			parts[i] = col + " COLLATE BINARY ASC"
		} else {
			parts[i] = col + " ASC"
		}
	}
	return strings.Join(parts, ", ")
}

func (c *SQLCompiler) compilePredicate(p queryir.Predicate, qualifier string) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return compileEquals(pred, qualifier)
	case *queryir.Equals:
		return compileEquals(*pred, qualifier)
	case queryir.In:
		return compileIn(pred, qualifier)
	case *queryir.In:
		return compileIn(*pred, qualifier)
	case queryir.Range:
		return compileRange(pred, qualifier)
	case *queryir.Range:
		return compileRange(*pred, qualifier)
	case queryir.IsNull:
		return column(qualifier, pred.Field) + " IS NULL", nil, nil
	case *queryir.IsNull:
		return column(qualifier, pred.Field) + " IS NULL", nil, nil
	case queryir.And:
		return c.compileAnd(pred, qualifier)
	case *queryir.And:
		return c.compileAnd(*pred, qualifier)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileEquals(eq queryir.Equals, qualifier string) (string, []any, error) {
	param, err := valueToParam(eq.Value)
	if err != nil {
		return "", nil, err
	}
	return column(qualifier, eq.Field) + " = ?", []any{param}, nil
}

// compileIn renders "col IN (?, ?, ...)". An empty list matches nothing.
func compileIn(in queryir.In, qualifier string) (string, []any, error) {
	if len(in.Values) == 0 {
		return "1 = 0", nil, nil
	}

	params := make([]any, len(in.Values))
	for i, v := range in.Values {
		param, err := valueToParam(v)
		if err != nil {
			return "", nil, err
		}
		params[i] = param
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(params)), ", ")
	return fmt.Sprintf("%s IN (%s)", column(qualifier, in.Field), placeholders), params, nil
}

func compileRange(r queryir.Range, qualifier string) (string, []any, error) {
	from, err := valueToParam(r.From)
	if err != nil {
		return "", nil, err
	}
	to, err := valueToParam(r.To)
	if err != nil {
		return "", nil, err
	}
	col := column(qualifier, r.Field)
	return fmt.Sprintf("%s >= ? AND %s < ?", col, col), []any{from, to}, nil
}

func (c *SQLCompiler) compileAnd(and queryir.And, qualifier string) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // vacuous truth
	}

	var sqlParts []string
	var allParams []any
	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred, qualifier)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

// valueToParam converts a literal to the driver value the schema stores:
// dates as "YYYY-MM-DD" and timestamps as "YYYY-MM-DD HH:MM:SS" text.
func valueToParam(v queryir.Value) (any, error) {
	switch val := v.(type) {
	case queryir.String:
		return string(val), nil
	case queryir.Int:
		return int64(val), nil
	case queryir.Float:
		return float64(val), nil
	case queryir.Date:
		return model.Date(val).String(), nil
	case queryir.Month:
		return model.Month(val).FirstDate().String(), nil
	case queryir.Timestamp:
		return time.Time(val).Format(model.TimestampLayout), nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}

func column(qualifier, name string) string {
	if qualifier == "" {
		return name
	}
	return qualifier + "." + name
}

func qualify(qualifier string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = column(qualifier, n)
	}
	return out
}
