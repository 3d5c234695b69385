// Package query builds SQL statements step by step, in any order.
//
//	q := query.New().From("users")
//	q.String() // SELECT * FROM users LIMIT 0, 10;
//
//	q := query.New().
//		From("users").
//		Where("name like :name").
//		Where("dob < :dob").
//		OrderBy("name").
//		Limit("10").
//		Bind(map[string]any{"name": "a%", "dob": "2002-01-01"})
//	q.String() // SELECT * FROM users WHERE (name like :name AND dob < :dob) ORDER BY name LIMIT 10;
//
// A query is reused by calling Init, which resets every component:
//
//	q.Init().From("contacts").Limit("100")
//
// A Query is not safe for concurrent use.
package query

import (
	"maps"
	"slices"
)

const (
	// DefaultLimit is the LIMIT of a SELECT without an explicit limit.
	DefaultLimit = "0, 10"
	// DefaultDeleteLimit is an advisory row count for DELETE; it is never emitted.
	DefaultDeleteLimit = "1"
	// DefaultTable is the table of a query on which From was never called.
	DefaultTable = "TABLE_NAME"
)

// Action selects the statement a Query serializes to.
type Action string

const (
	ActionSelect  Action = "select"
	ActionInsert  Action = "insert"
	ActionUpdate  Action = "update"
	ActionReplace Action = "replace"
	ActionDelete  Action = "delete"
)

// Query holds the components of one statement.
type Query struct {
	raw     string
	action  Action
	sel     string
	table   string
	joins   []string
	where   string
	orderby string
	limit   string
	record  Record
	bind    map[string]any
}

// New returns a query initialized with the optional defaults, see Init.
func New(defaults ...map[string]any) *Query {
	return new(Query).Init(defaults...)
}

// Init resets every component and then seeds the ones named in defaults.
// Recognized keys are raw, action, select, table, joins, where, orderby,
// limit, record and bind; values of the wrong type are ignored. limit also
// takes a row count or an (offset, count) pair.
func (q *Query) Init(defaults ...map[string]any) *Query {
	*q = Query{
		action: ActionSelect,
		sel:    "*",
		table:  DefaultTable,
		bind:   map[string]any{},
	}
	for _, d := range defaults {
		q.seed(d)
	}
	return q
}

func (q *Query) seed(d map[string]any) {
	for k, v := range d {
		switch k {
		case "raw":
			setString(&q.raw, v)
		case "action":
			switch a := v.(type) {
			case Action:
				q.action = a
			case string:
				q.action = Action(a)
			}
		case "select":
			setString(&q.sel, v)
		case "table":
			setString(&q.table, v)
		case "joins":
			if j, ok := toStrings(v); ok {
				q.joins = j
			}
		case "where":
			setString(&q.where, v)
		case "orderby":
			setString(&q.orderby, v)
		case "limit":
			if l, err := limitString(v); err == nil {
				q.limit = l
			}
		case "record":
			if r, ok := toRecord(v); ok {
				q.record = r
			}
		case "bind":
			if b, ok := v.(map[string]any); ok {
				q.bind = maps.Clone(b)
				if q.bind == nil {
					q.bind = map[string]any{}
				}
			}
		}
	}
}

// Raw sets a literal statement which overrides every other component.
func (q *Query) Raw(sql string) *Query {
	q.raw = sql
	return q
}

// Select sets the projection; the fields are joined with ", " and default to "*".
func (q *Query) Select(fields ...string) *Query {
	q.sel = "*"
	if len(fields) > 0 {
		q.sel = joinComma(fields)
	}
	return q
}

// From sets the table of the statement.
func (q *Query) From(table string) *Query {
	q.table = table
	return q
}

// Table is an alias of From.
func (q *Query) Table(table string) *Query { return q.From(table) }

// Into is an alias of From.
func (q *Query) Into(table string) *Query { return q.From(table) }

// In is an alias of From.
func (q *Query) In(table string) *Query { return q.From(table) }

// Join appends a join clause. Clauses are emitted verbatim, in order, so they
// carry their own leading space.
func (q *Query) Join(clause string) *Query {
	q.joins = append(q.joins, clause)
	return q
}

// Where adds a condition. Every call after the first wraps the existing
// expression: Where("a").Where("b").Where("c", "OR") gives ((a AND b) OR c).
func (q *Query) Where(condition string, operator ...string) *Query {
	op := "AND"
	if len(operator) > 0 && operator[0] != "" {
		op = operator[0]
	}
	if q.where == "" {
		q.where = condition
	} else {
		q.where = "(" + q.where + " " + op + " " + condition + ")"
	}
	return q
}

// OrderBy appends an ordering term, e.g. OrderBy("date DESC").OrderBy("name").
func (q *Query) OrderBy(term string) *Query {
	if q.orderby == "" {
		q.orderby = term
	} else {
		q.orderby += ", " + term
	}
	return q
}

// Limit sets the limit, e.g. "10" or "0, 100".
func (q *Query) Limit(limit string) *Query {
	q.limit = limit
	return q
}

// Record sets the row used by insert, update and insertOrUpdate statements.
func (q *Query) Record(r Record) *Query {
	q.record = r.clone()
	return q
}

// Bind adds values for named placeholders, keeping earlier keys.
func (q *Query) Bind(data map[string]any) *Query {
	if q.bind == nil {
		q.bind = map[string]any{}
	}
	maps.Copy(q.bind, data)
	return q
}

// Insert marks the query as an INSERT of r.
func (q *Query) Insert(r Record) *Query {
	q.action = ActionInsert
	return q.Record(r)
}

// Update marks the query as an UPDATE setting r.
func (q *Query) Update(r Record) *Query {
	q.action = ActionUpdate
	return q.Record(r)
}

// InsertOrUpdate marks the query as an INSERT OR REPLACE of r.
func (q *Query) InsertOrUpdate(r Record) *Query {
	q.action = ActionReplace
	return q.Record(r)
}

// Delete marks the query as a DELETE, optionally on table:
//
//	q.Delete("users").Where(...)
//	q.Delete().From("users").Where(...)
func (q *Query) Delete(table ...string) *Query {
	q.action = ActionDelete
	if len(table) > 0 && table[0] != "" {
		return q.From(table[0])
	}
	return q
}

// Get returns a component by name. from, table, into and in all read the
// table; join and joins read the join clauses. Unknown names return nil.
func (q *Query) Get(component string) any {
	switch component {
	case "from", "table", "into", "in":
		return q.table
	case "raw":
		return q.raw
	case "action":
		return q.action
	case "select":
		return q.sel
	case "join", "joins":
		return append([]string{}, q.joins...)
	case "where":
		return q.where
	case "orderby", "order_by":
		return q.orderby
	case "limit":
		return q.limit
	case "record":
		return q.record.clone()
	case "bind":
		return maps.Clone(q.bind)
	}
	return nil
}

// Options applies each entry by calling the setter of the same name. Entries
// without a setter, or whose value does not fit it, are skipped. Keys are
// applied in sorted order.
func (q *Query) Options(data map[string]any) *Query {
	for _, k := range slices.Sorted(maps.Keys(data)) {
		_, _ = q.Call(k, data[k])
	}
	return q
}

func setString(dst *string, v any) {
	if s, ok := v.(string); ok {
		*dst = s
	}
}

func toStrings(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		if len(s) == 0 {
			return nil, true
		}
		return append([]string(nil), s...), true
	case []any:
		var out []string
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	case nil:
		return nil, true
	}
	return nil, false
}

func joinComma(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}
