package database

import (
	"context"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/jmoiron/sqlx"
)

// Select 查询多条并按 db 标签扫描为 T
//
//	type User struct {
//		ID   int64  `db:"id"`
//		Name string `db:"name"`
//	}
//	users, err := database.Select[User](ctx, db, database.Table("users"), database.Options{"order_by": "name"})
func Select[T any](ctx context.Context, d *Database, target Target, opts ...Options) ([]T, error) {
	r, err := resolve(getDefaults, target, opts...)
	if err != nil {
		return nil, err
	}
	return selectInto[T](ctx, d, r, "Select")
}

// First 查询单条，无结果时返回 ErrNotFound
func First[T any](ctx context.Context, d *Database, target Target, opts ...Options) (*T, error) {
	r, err := resolve(getDefaults, target, opts...)
	if err != nil {
		return nil, err
	}
	r.Count = 1
	results, err := selectInto[T](ctx, d, r, "First")
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return &results[0], nil
}

func selectInto[T any](ctx context.Context, d *Database, r resolved, action string) ([]T, error) {
	sql, err := toSql(selectBuilder(r), r.Table, action)
	if err != nil {
		return nil, err
	}
	results := []T{}
	err = d.exec.rows(ctx, sql, r.Bind, func(rows *sqlx.Rows) error {
		return sqlscan.ScanAll(&results, rows.Rows)
	})
	if !execErr(err, r.Table, action) {
		return nil, err
	}
	return results, nil
}
