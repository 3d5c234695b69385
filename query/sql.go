package query

import (
	"fmt"
	"maps"
	"strings"
)

// RecordPrefix namespaces the bind keys derived from the record. The
// namespace is reserved: a caller bind named record_<column> is replaced by
// the value of that record column.
const RecordPrefix = "record_"

// ToSql serializes the query. The returned bind map holds the caller binds
// plus one record_<column> entry per record column; a record entry wins over a
// caller bind of the same name. The query itself is left untouched.
func (q *Query) ToSql() (string, map[string]any, error) {
	bind := maps.Clone(q.bind)
	if bind == nil {
		bind = map[string]any{}
	}
	if q.raw != "" {
		return q.raw, bind, nil
	}

	switch q.action {
	case ActionSelect, "":
		return q.selectSql(), bind, nil
	case ActionInsert:
		return q.insertSql("INSERT INTO", bind)
	case ActionReplace:
		return q.insertSql("INSERT OR REPLACE INTO", bind)
	case ActionUpdate:
		return q.updateSql(bind)
	case ActionDelete:
		return "DELETE FROM " + q.table + " WHERE " + whereOr(q.where, "0=1") + ";", bind, nil
	}
	return "", nil, fmt.Errorf("%w: unknown action %q", ErrMalformedQuery, q.action)
}

// String returns the SQL text, or "" when the query cannot be serialized.
func (q *Query) String() string {
	sql, _, err := q.ToSql()
	if err != nil {
		return ""
	}
	return sql
}

func (q *Query) selectSql() string {
	var sb strings.Builder
	sb.WriteString("SELECT " + q.sel + " FROM " + q.table)
	if q.where != "" {
		sb.WriteString(" WHERE " + q.where)
	}
	for _, j := range q.joins {
		sb.WriteString(j)
	}
	if q.orderby != "" {
		sb.WriteString(" ORDER BY " + q.orderby)
	}
	// aggregates like COUNT(*) return a single row
	if !strings.Contains(q.sel, "(") {
		sb.WriteString(" LIMIT " + whereOr(q.limit, DefaultLimit))
	}
	sb.WriteString(";")
	return sb.String()
}

func (q *Query) insertSql(verb string, bind map[string]any) (string, map[string]any, error) {
	if q.record.Len() == 0 {
		return "", nil, fmt.Errorf("%w: %s without a record", ErrMalformedQuery, q.action)
	}
	cols := q.record.Columns()
	params := make([]string, len(cols))
	for i, c := range cols {
		params[i] = ":" + recordParam(c, q.record, bind)
	}
	sql := verb + " " + q.table + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(params, ", ") + ");"
	return sql, bind, nil
}

func (q *Query) updateSql(bind map[string]any) (string, map[string]any, error) {
	if q.record.Len() == 0 {
		return "", nil, fmt.Errorf("%w: update without a record", ErrMalformedQuery)
	}
	if q.where == "" {
		return "", nil, fmt.Errorf("%w: update without a where condition", ErrMalformedQuery)
	}
	var sets []string
	for _, c := range q.record.Columns() {
		sets = append(sets, c+"=:"+recordParam(c, q.record, bind))
	}
	return "UPDATE " + q.table + " SET " + strings.Join(sets, ", ") + " WHERE " + q.where + ";", bind, nil
}

func recordParam(col string, r Record, bind map[string]any) string {
	name := RecordPrefix + col
	bind[name], _ = r.Get(col)
	return name
}

func whereOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
