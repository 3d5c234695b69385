package database

import (
	"maps"

	"github.com/skadiD/litedb/query"
)

// Record is an ordered column -> value mapping, see query.Record.
type Record = query.Record

// NewRecord builds a record from alternating column/value pairs.
func NewRecord(pairs ...any) Record { return query.NewRecord(pairs...) }

// RecordOf converts a map into a record ordered by column name.
func RecordOf(m map[string]any) Record { return query.RecordOf(m) }

// boundColumn is a record column and the placeholder carrying its value.
type boundColumn struct {
	Column string
	Param  string
}

// bindRecord names a placeholder for every record column without shadowing
// the caller's binds: a column whose name is already bound, by the caller or
// by an earlier column, is carried under "__" + name, with further "_"
// prefixes while that alias is taken too.
// The returned map holds the caller binds plus one entry per column.
func bindRecord(rec Record, bind map[string]any) ([]boundColumn, map[string]any) {
	params := maps.Clone(bind)
	if params == nil {
		params = map[string]any{}
	}

	cols := make([]boundColumn, 0, rec.Len())
	rec.Each(func(col string, v any) {
		name := col
		if _, taken := params[name]; taken {
			name = "__" + col
			for {
				if _, taken := params[name]; !taken {
					break
				}
				name = "_" + name
			}
		}
		params[name] = v
		cols = append(cols, boundColumn{Column: col, Param: name})
	})
	return cols, params
}
