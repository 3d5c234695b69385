package database

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/skadiD/litedb/query"
)

// Query runs raw SQL with named ":param" placeholders filled from bind.
// A statement starting with SELECT returns its rows; any other statement
// reports success and the affected row count.
func (d *Database) Query(ctx context.Context, sql string, bind map[string]any) (*Result, error) {
	res, err := d.exec.query(ctx, sql, bind)
	execErr(err, "", "Query")
	return res, err
}

// Execute runs a built query with its binds.
func (d *Database) Execute(ctx context.Context, q *query.Query) (*Result, error) {
	sql, bind, err := q.ToSql()
	if err != nil {
		execErr(err, fmt.Sprint(q.Get("table")), "Execute")
		return nil, err
	}
	return d.Query(ctx, sql, bind)
}

// Get returns the rows selected by the options; by default the first 100.
func (d *Database) Get(ctx context.Context, target Target, opts ...Options) ([]Row, error) {
	r, err := resolve(getDefaults, target, opts...)
	if err != nil {
		return nil, err
	}
	return d.get(ctx, r)
}

func (d *Database) get(ctx context.Context, r resolved) ([]Row, error) {
	sql, err := toSql(selectBuilder(r), r.Table, "Get")
	if err != nil {
		return nil, err
	}
	res, err := d.exec.query(ctx, sql, r.Bind)
	if !execErr(err, r.Table, "Get") {
		return nil, err
	}
	return res.Rows, nil
}

// GetFirst returns the first selected row, or ErrNotFound.
func (d *Database) GetFirst(ctx context.Context, target Target, opts ...Options) (Row, error) {
	r, err := resolve(getDefaults, target, opts...)
	if err != nil {
		return nil, err
	}
	r.Count = 1
	rows, err := d.get(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Has reports whether any row matches the options.
func (d *Database) Has(ctx context.Context, target Target, opts ...Options) (bool, error) {
	_, err := d.GetFirst(ctx, target, opts...)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Count returns the number of rows matching the options; ordering and paging
// are ignored.
func (d *Database) Count(ctx context.Context, target Target, opts ...Options) (int64, error) {
	r, err := resolve(getDefaults, target, opts...)
	if err != nil {
		return 0, err
	}
	sql, err := toSql(countBuilder(selectBuilder(r)), r.Table, "Count")
	if err != nil {
		return 0, err
	}
	var n int64
	err = d.exec.scalar(ctx, sql, r.Bind, &n)
	execErr(err, r.Table, "Count")
	return n, err
}

// Insert adds rec. Values reach the statement as parameters; a column whose
// name is also a key of bind is carried under an alias so bind stays intact
// for the rest of the statement.
func (d *Database) Insert(ctx context.Context, target Target, rec Record, bind ...map[string]any) (bool, error) {
	r, err := resolve(getDefaults, target)
	if err != nil {
		return false, err
	}
	if rec.Len() == 0 {
		return false, fmt.Errorf("%w: empty record", ErrInvalidOption)
	}
	cols, params := bindRecord(rec, mergeBinds(r.Bind, bind))
	sql, err := toSql(insertBuilder(insertInto(r.Table), cols), r.Table, "Insert")
	if err != nil {
		return false, err
	}
	return d.write(ctx, r.Table, "Insert", sql, params)
}

// InsertOrUpdate adds rec, replacing any row it conflicts with. Postgres
// reports ErrUnsupported.
func (d *Database) InsertOrUpdate(ctx context.Context, target Target, rec Record, bind ...map[string]any) (bool, error) {
	r, err := resolve(getDefaults, target)
	if err != nil {
		return false, err
	}
	if rec.Len() == 0 {
		return false, fmt.Errorf("%w: empty record", ErrInvalidOption)
	}
	ib, err := d.engine.upsert(r.Table)
	if err != nil {
		return false, err
	}
	cols, params := bindRecord(rec, mergeBinds(r.Bind, bind))
	sql, err := toSql(insertBuilder(ib, cols), r.Table, "InsertOrUpdate")
	if err != nil {
		return false, err
	}
	return d.write(ctx, r.Table, "InsertOrUpdate", sql, params)
}

// Update sets the columns of rec on the rows matching where, which defaults
// to every row.
//
//	db.Update(ctx, Table("users"), NewRecord("id", 4, "password", "secret"), Options{
//		"where": "id = :id",
//		"bind":  map[string]any{"id": 1},
//	})
//
// updates row 1, moving it to id 4: the record's id is carried as :__id.
func (d *Database) Update(ctx context.Context, target Target, rec Record, opts ...Options) (bool, error) {
	r, err := resolve(writeDefaults, target, opts...)
	if err != nil {
		return false, err
	}
	if rec.Len() == 0 {
		return false, fmt.Errorf("%w: empty record", ErrInvalidOption)
	}
	cols, params := bindRecord(rec, r.Bind)
	sql, err := toSql(updateBuilder(r, cols), r.Table, "Update")
	if err != nil {
		return false, err
	}
	return d.write(ctx, r.Table, "Update", sql, params)
}

// Remove deletes the rows matching where. A where condition is required.
func (d *Database) Remove(ctx context.Context, target Target, opts ...Options) (bool, error) {
	r, err := resolve(removeDefaults, target, opts...)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(r.Where) == "" {
		return false, ErrMissingPredicate
	}
	sql, err := toSql(deleteBuilder(r), r.Table, "Remove")
	if err != nil {
		return false, err
	}
	return d.write(ctx, r.Table, "Remove", sql, r.Bind)
}

func (d *Database) write(ctx context.Context, table, action, sql string, bind map[string]any) (bool, error) {
	res, err := d.exec.query(ctx, sql, bind)
	if !execErr(err, table, action) {
		return false, err
	}
	return res.Success, nil
}

func mergeBinds(base map[string]any, extra []map[string]any) map[string]any {
	out := maps.Clone(base)
	if out == nil {
		out = map[string]any{}
	}
	for _, b := range extra {
		maps.Copy(out, b)
	}
	return out
}
