package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnknownMethod is returned by Call for a name with no setter.
	ErrUnknownMethod = errors.New("query: unknown method")
	// ErrMalformedQuery is returned when a query cannot be serialized.
	ErrMalformedQuery = errors.New("query: malformed query")
	// ErrInvalidArgument is returned by Call when the arguments do not fit the setter.
	ErrInvalidArgument = errors.New("query: invalid argument")
)

type setter func(q *Query, args []any) error

// setters is the fixed name -> setter table shared by Call and Options.
// action and joins are state, not setters.
var setters = map[string]setter{
	"raw":            stringSetter((*Query).Raw),
	"from":           stringSetter((*Query).From),
	"table":          stringSetter((*Query).From),
	"into":           stringSetter((*Query).From),
	"in":             stringSetter((*Query).From),
	"join":           stringSetter((*Query).Join),
	"orderby":        stringSetter((*Query).OrderBy),
	"limit":          setLimit,
	"select":         setSelect,
	"where":          setWhere,
	"bind":           setBind,
	"record":         recordSetter((*Query).Record),
	"insert":         recordSetter((*Query).Insert),
	"update":         recordSetter((*Query).Update),
	"insertOrUpdate": recordSetter((*Query).InsertOrUpdate),
	"delete":         setDelete,
}

// Call invokes the setter named method with args. It lets callers drive a
// query from data, e.g. q.Call("where", "id = :id", "OR").
func (q *Query) Call(method string, args ...any) (*Query, error) {
	set, ok := setters[method]
	if !ok {
		return q, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	if err := set(q, args); err != nil {
		return q, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, method, err)
	}
	return q, nil
}

func stringSetter(fn func(*Query, string) *Query) setter {
	return func(q *Query, args []any) error {
		if len(args) != 1 {
			return fmt.Errorf("want 1 argument, got %d", len(args))
		}
		s, ok := args[0].(string)
		if !ok {
			return fmt.Errorf("want string, got %T", args[0])
		}
		fn(q, s)
		return nil
	}
}

func recordSetter(fn func(*Query, Record) *Query) setter {
	return func(q *Query, args []any) error {
		if len(args) != 1 {
			return fmt.Errorf("want 1 argument, got %d", len(args))
		}
		r, ok := toRecord(args[0])
		if !ok {
			return fmt.Errorf("want record, got %T", args[0])
		}
		fn(q, r)
		return nil
	}
}

func setSelect(q *Query, args []any) error {
	var fields []string
	for _, a := range args {
		switch v := a.(type) {
		case string:
			fields = append(fields, v)
		case []string:
			fields = append(fields, v...)
		default:
			return fmt.Errorf("want string fields, got %T", a)
		}
	}
	q.Select(fields...)
	return nil
}

func setWhere(q *Query, args []any) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("want 1 or 2 arguments, got %d", len(args))
	}
	parts, ok := toStrings(args)
	if !ok {
		return fmt.Errorf("want string arguments")
	}
	q.Where(parts[0], parts[1:]...)
	return nil
}

func setBind(q *Query, args []any) error {
	if len(args) != 1 {
		return fmt.Errorf("want 1 argument, got %d", len(args))
	}
	b, ok := args[0].(map[string]any)
	if !ok {
		return fmt.Errorf("want map[string]any, got %T", args[0])
	}
	q.Bind(b)
	return nil
}

func setDelete(q *Query, args []any) error {
	parts, ok := toStrings(args)
	if !ok || len(parts) > 1 {
		return fmt.Errorf("want at most one table name")
	}
	q.Delete(parts...)
	return nil
}

func setLimit(q *Query, args []any) error {
	if len(args) != 1 {
		return fmt.Errorf("want 1 argument, got %d", len(args))
	}
	l, err := limitString(args[0])
	if err != nil {
		return err
	}
	q.Limit(l)
	return nil
}

// limitString renders a limit given as text, a row count, or an
// (offset, count) pair: 5 -> "5", []int{20, 5} -> "20, 5".
func limitString(v any) (string, error) {
	var pair []any
	switch l := v.(type) {
	case string:
		return l, nil
	case [2]int:
		pair = []any{l[0], l[1]}
	case []int:
		for _, n := range l {
			pair = append(pair, n)
		}
	case []any:
		pair = l
	default:
		n, err := toCount(v)
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(n, 10), nil
	}
	if len(pair) != 2 {
		return "", fmt.Errorf("want (offset, count), got %d values", len(pair))
	}
	offset, err := toCount(pair[0])
	if err != nil {
		return "", err
	}
	count, err := toCount(pair[1])
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(offset, 10) + ", " + strconv.FormatUint(count, 10), nil
}

func toCount(v any) (uint64, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case uint64:
		return x, nil
	case float64:
		if x != float64(int64(x)) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		n = int64(x)
	case string:
		p, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", x)
		}
		n = p
	default:
		return 0, fmt.Errorf("want a row count, got %T", v)
	}
	if n < 0 {
		return 0, fmt.Errorf("%d is negative", n)
	}
	return uint64(n), nil
}
