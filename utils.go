package database

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fexli/logger"
)

var (
	dbLog = logger.GetLogger("db", true)

	// LogStatements enables Debug logging of every executed statement.
	LogStatements = false
)

// execErr 统一处理数据表错误，无错误返回 true
func execErr(err error, table, action string, model ...any) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMissingPredicate) {
		return false
	}
	if model != nil {
		dbLog.Debug(logger.WithContent(model))
	}
	dbLog.Warning(logger.WithContent("【"+table+"】<"+action+">错误"),
		logger.WithContent(formatTrace(err, 4, true)), logger.WithBacktraceLevelDelta(2))
	return false
}

func logStatement(sql string, bind map[string]any) {
	if !LogStatements {
		return
	}
	dbLog.Debug(logger.WithContent("SQL:", sql, "Args:", bind), logger.WithBacktraceLevelDelta(2))
}

// toUint reads a non-negative integer out of an option value.
func toUint(v any) (uint64, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		return uint64(x), nil
	case uint8:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case uint64:
		return x, nil
	case float64:
		if x != float64(int64(x)) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidOption, x)
		}
		n = int64(x)
	case string:
		p, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidOption, x)
		}
		n = p
	default:
		return 0, fmt.Errorf("%w: unexpected %T", ErrInvalidOption, v)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrInvalidOption, n)
	}
	return uint64(n), nil
}

// normalize converts driver byte slices into strings so rows print and
// compare naturally.
func normalize(m map[string]any) Row {
	for k, v := range m {
		if b, ok := v.([]byte); ok {
			m[k] = string(b)
		}
	}
	return m
}
