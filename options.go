package database

import (
	"fmt"
	"maps"
	"strings"
)

// Row is one fetched row, keyed by column name.
type Row map[string]any

// Options controls a table-level operation. Recognized keys are table,
// select, where, order_by (or orderby), limit, offset and bind; any other key
// is ignored.
//
// limit is either a count, with the offset read from the offset key, or an
// (offset, count) pair given as [2]int, []int, []any or Limit.
//
// select, where and order_by are copied into the statement as written; only
// bind values are passed as parameters.
type Options map[string]any

// Limit is the pair form of the limit option.
type Limit struct {
	Offset uint64
	Count  uint64
}

// Target names the table of a table-level call: a Table, or Options holding
// a "table" key.
type Target interface {
	target() (string, Options)
}

// Table is a bare table name.
type Table string

func (t Table) target() (string, Options) { return string(t), nil }

func (o Options) target() (string, Options) {
	t, _ := o["table"].(string)
	return t, o
}

// resolved is an options dictionary with every default applied.
type resolved struct {
	Table   string
	Select  string
	Where   string
	OrderBy string
	Offset  uint64
	Count   uint64
	Bind    map[string]any
}

var (
	// getDefaults apply to reads.
	getDefaults = resolved{Select: "*", Where: "1 = 1", Count: 100}
	// writeDefaults apply to update; the row count is advisory and never emitted.
	writeDefaults = resolved{Select: "*", Where: "1 = 1", Count: 1}
	// removeDefaults leave where empty so a missing predicate is detected.
	removeDefaults = resolved{Select: "*", Count: 1}
)

// resolve merges the target and every options value over defaults. Later
// values win.
func resolve(defaults resolved, target Target, opts ...Options) (resolved, error) {
	r := defaults
	r.Bind = map[string]any{}

	if target == nil {
		return r, ErrMissingTable
	}
	table, base := target.target()
	r.Table = table

	for _, o := range append([]Options{base}, opts...) {
		if err := r.apply(o); err != nil {
			return r, err
		}
	}
	if strings.TrimSpace(r.Table) == "" {
		return r, ErrMissingTable
	}
	return r, nil
}

func (r *resolved) apply(o Options) error {
	if o == nil {
		return nil
	}
	for _, k := range []string{"table", "select", "where"} {
		v, ok := o[k]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidOption, k, v)
		}
		switch k {
		case "table":
			r.Table = s
		case "select":
			r.Select = s
		case "where":
			r.Where = s
		}
	}
	for _, k := range []string{"order_by", "orderby"} {
		if v, ok := o[k]; ok {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidOption, k, v)
			}
			r.OrderBy = s
		}
	}
	if v, ok := o["offset"]; ok {
		n, err := toUint(v)
		if err != nil {
			return fmt.Errorf("offset: %w", err)
		}
		r.Offset = n
	}
	if v, ok := o["limit"]; ok {
		if err := r.applyLimit(v); err != nil {
			return fmt.Errorf("limit: %w", err)
		}
	}
	if v, ok := o["bind"]; ok && v != nil {
		b, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: bind must be map[string]any, got %T", ErrInvalidOption, v)
		}
		maps.Copy(r.Bind, b)
	}
	return nil
}

func (r *resolved) applyLimit(v any) error {
	var pair []any
	switch l := v.(type) {
	case Limit:
		r.Offset, r.Count = l.Offset, l.Count
		return nil
	case *Limit:
		if l != nil {
			r.Offset, r.Count = l.Offset, l.Count
		}
		return nil
	case [2]int:
		pair = []any{l[0], l[1]}
	case [2]uint64:
		pair = []any{l[0], l[1]}
	case []int:
		for _, n := range l {
			pair = append(pair, n)
		}
	case []uint64:
		for _, n := range l {
			pair = append(pair, n)
		}
	case []any:
		pair = l
	default:
		n, err := toUint(v)
		if err != nil {
			return err
		}
		r.Count = n
		return nil
	}

	if len(pair) != 2 {
		return fmt.Errorf("%w: want (offset, count), got %d values", ErrInvalidOption, len(pair))
	}
	offset, err := toUint(pair[0])
	if err != nil {
		return err
	}
	count, err := toUint(pair[1])
	if err != nil {
		return err
	}
	r.Offset, r.Count = offset, count
	return nil
}
