package query

import (
	"fmt"
	"sort"
)

// Record is an ordered column -> value mapping representing one row.
//
// The zero value is an empty record ready to use.
type Record struct {
	cols []string
	vals map[string]any
}

// NewRecord builds a record from alternating column/value pairs, keeping the
// given order. A trailing column without a value is stored as nil.
//
//	query.NewRecord("id", 1, "name", "Jhon")
func NewRecord(pairs ...any) Record {
	var r Record
	for i := 0; i < len(pairs); i += 2 {
		col := fmt.Sprint(pairs[i])
		var v any
		if i+1 < len(pairs) {
			v = pairs[i+1]
		}
		r.Set(col, v)
	}
	return r
}

// RecordOf converts a map into a record ordered by column name.
func RecordOf(m map[string]any) Record {
	cols := make([]string, 0, len(m))
	for k := range m {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	var r Record
	for _, c := range cols {
		r.Set(c, m[c])
	}
	return r
}

// Set adds col, or replaces its value in place when it already exists.
func (r *Record) Set(col string, v any) *Record {
	if r.vals == nil {
		r.vals = make(map[string]any)
	}
	if _, ok := r.vals[col]; !ok {
		r.cols = append(r.cols, col)
	}
	r.vals[col] = v
	return r
}

// Get returns the value stored for col.
func (r Record) Get(col string) (any, bool) {
	v, ok := r.vals[col]
	return v, ok
}

// Columns returns the column names in order.
func (r Record) Columns() []string {
	return append([]string(nil), r.cols...)
}

func (r Record) Len() int { return len(r.cols) }

// Each calls fn for every column in order.
func (r Record) Each(fn func(col string, v any)) {
	for _, c := range r.cols {
		fn(c, r.vals[c])
	}
}

// Map returns an unordered copy of the record.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.cols))
	for _, c := range r.cols {
		m[c] = r.vals[c]
	}
	return m
}

func (r Record) clone() Record {
	var c Record
	r.Each(func(col string, v any) { c.Set(col, v) })
	return c
}

// toRecord accepts the loose record forms used by Options and Init.
func toRecord(v any) (Record, bool) {
	switch r := v.(type) {
	case Record:
		return r.clone(), true
	case *Record:
		if r == nil {
			return Record{}, true
		}
		return r.clone(), true
	case map[string]any:
		return RecordOf(r), true
	case nil:
		return Record{}, true
	}
	return Record{}, false
}
