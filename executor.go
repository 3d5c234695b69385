package database

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Result is the outcome of one statement. Reads fill Rows; other statements
// report Success and the number of affected rows.
type Result struct {
	Rows     []Row
	Success  bool
	Affected int64
}

// executor runs named-parameter SQL (":name") against one handle.
type executor struct {
	db *sqlx.DB
}

// isRead reports whether sql fetches rows: its trimmed text starts with SELECT.
func isRead(sql string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sql)), "SELECT")
}

// escapeLiterals doubles every ':' inside a quoted literal or identifier so
// the named-parameter compiler keeps it as text: 'at 10:30' stays a string,
// :name outside quotes is still a parameter.
func escapeLiterals(sql string) string {
	if !strings.Contains(sql, ":") {
		return sql
	}
	var b strings.Builder
	b.Grow(len(sql) + 8)
	var quote rune
	for _, c := range sql {
		switch {
		case quote == 0 && (c == '\'' || c == '"' || c == '`'):
			quote = c
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0 && c == ':':
			b.WriteRune(':')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (x executor) prepare(ctx context.Context, sql string, bind map[string]any) (*sqlx.NamedStmt, error) {
	logStatement(sql, bind)
	stmt, err := x.db.PrepareNamedContext(ctx, escapeLiterals(sql))
	if err != nil {
		return nil, sqlErr(ErrPrepare, err, sql, bind)
	}
	return stmt, nil
}

func (x executor) query(ctx context.Context, sql string, bind map[string]any) (*Result, error) {
	if bind == nil {
		bind = map[string]any{}
	}
	stmt, err := x.prepare(ctx, sql, bind)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	if !isRead(sql) {
		res, err := stmt.ExecContext(ctx, bind)
		if err != nil {
			return &Result{}, sqlErr(ErrExecution, err, sql, bind)
		}
		affected, _ := res.RowsAffected()
		return &Result{Success: true, Affected: affected}, nil
	}

	rows, err := stmt.QueryxContext(ctx, bind)
	if err != nil {
		return nil, sqlErr(ErrExecution, err, sql, bind)
	}
	defer rows.Close()

	result := &Result{Rows: []Row{}, Success: true}
	for rows.Next() {
		m := map[string]any{}
		if err := rows.MapScan(m); err != nil {
			return nil, sqlErr(ErrExecution, err, sql, bind)
		}
		result.Rows = append(result.Rows, normalize(m))
	}
	if err := rows.Err(); err != nil {
		return nil, sqlErr(ErrExecution, err, sql, bind)
	}
	return result, nil
}

// scalar runs a single-value read such as a COUNT(*).
func (x executor) scalar(ctx context.Context, sql string, bind map[string]any, dst any) error {
	stmt, err := x.prepare(ctx, sql, bind)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if err := stmt.GetContext(ctx, dst, bind); err != nil {
		return sqlErr(ErrExecution, err, sql, bind)
	}
	return nil
}

// rows runs a read and hands the open cursor to fn.
func (x executor) rows(ctx context.Context, sql string, bind map[string]any, fn func(*sqlx.Rows) error) error {
	stmt, err := x.prepare(ctx, sql, bind)
	if err != nil {
		return err
	}
	defer stmt.Close()

	rows, err := stmt.QueryxContext(ctx, bind)
	if err != nil {
		return sqlErr(ErrExecution, err, sql, bind)
	}
	defer rows.Close()
	if err := fn(rows); err != nil {
		return sqlErr(ErrExecution, err, sql, bind)
	}
	return nil
}
