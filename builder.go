package database

import (
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lann/builder"
)

// Statements are assembled with squirrel but carry ":name" placeholders of
// their own, so no placeholder rewriting is involved; sqlx binds them by name
// when the statement is prepared.

func selectBuilder(r resolved) sq.SelectBuilder {
	sb := sq.Select(r.Select).From(r.Table)
	if strings.TrimSpace(r.Where) != "" {
		sb = sb.Where(r.Where)
	}
	if strings.TrimSpace(r.OrderBy) != "" {
		sb = sb.OrderBy(r.OrderBy)
	}
	return sb.Limit(r.Count).Offset(r.Offset)
}

// countBuilder derives SELECT COUNT(*) from a select, dropping its ordering and paging.
func countBuilder(sb sq.SelectBuilder) sq.SelectBuilder {
	for _, part := range []string{"OrderByParts", "Limit", "Offset", "Columns"} {
		sb = builder.Delete(sb, part).(sq.SelectBuilder)
	}
	return sb.Columns("COUNT(*)")
}

func insertBuilder(ib sq.InsertBuilder, cols []boundColumn) sq.InsertBuilder {
	names := make([]string, len(cols))
	values := make([]any, len(cols))
	for i, c := range cols {
		names[i] = c.Column
		values[i] = sq.Expr(":" + c.Param)
	}
	return ib.Columns(names...).Values(values...)
}

func updateBuilder(r resolved, cols []boundColumn) sq.UpdateBuilder {
	ub := sq.Update(r.Table)
	for _, c := range cols {
		ub = ub.Set(c.Column, sq.Expr(":"+c.Param))
	}
	if strings.TrimSpace(r.Where) != "" {
		ub = ub.Where(r.Where)
	}
	return ub
}

func deleteBuilder(r resolved) sq.DeleteBuilder {
	return sq.Delete(r.Table).Where(r.Where)
}

// toSql renders a builder, reporting build failures the same way as
// execution failures.
func toSql(s sq.Sqlizer, table, action string) (string, error) {
	sql, _, err := s.ToSql()
	if err != nil {
		err = errors.Join(err, errors.New("error building SQL"))
		execErr(err, table, action)
		return "", err
	}
	return sql, nil
}

func insertInto(table string) sq.InsertBuilder { return sq.Insert(table) }
