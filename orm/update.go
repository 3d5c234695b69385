package orm

import (
	"context"
	"reflect"

	database "github.com/skadiD/litedb"
)

// Update 按主键更新 data 的非零字段
func (m *Orm[T]) Update(ctx context.Context, data *T) (bool, error) {
	rec, err := m.record(data, true)
	if err != nil {
		return false, err
	}
	pk, hasPk := rec.Get(m.pk)
	changed := database.NewRecord()
	rec.Each(func(col string, v any) {
		if col != m.pk && v != nil && !reflect.ValueOf(v).IsZero() {
			changed.Set(col, v)
		}
	})
	target := *m
	if target.pkVal == nil && hasPk {
		target.pkVal = pk
	}
	return target.Updates(ctx, changed.Map())
}

// Updates 更新指定列，需先以 Pk 或 Where 限定范围
func (m *Orm[T]) Updates(ctx context.Context, cols map[string]any) (bool, error) {
	opts := m.options(m.where, m.bind)
	if _, ok := opts["where"]; !ok {
		return false, database.ErrMissingPredicate
	}
	return m.db.Update(ctx, opts, database.RecordOf(cols))
}
