package orm

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	database "github.com/skadiD/litedb"
)

// Create 创建单条记录，主键为零值时交由数据库生成
func (m *Orm[T]) Create(ctx context.Context, data *T) (bool, error) {
	rec, err := m.record(data, true)
	if err != nil {
		return false, err
	}
	return m.db.Insert(ctx, database.Table(m.table), rec)
}

// Save 插入或覆盖整行
func (m *Orm[T]) Save(ctx context.Context, data *T) (bool, error) {
	rec, err := m.record(data, true)
	if err != nil {
		return false, err
	}
	return m.db.InsertOrUpdate(ctx, database.Table(m.table), rec)
}

// record reads the db-tagged fields of data in declaration order. Untagged
// fields use their lower-cased name; "-" skips a field.
func (m *Orm[T]) record(data *T, skipZeroPk bool) (database.Record, error) {
	if data == nil {
		return database.Record{}, fmt.Errorf("%w: nil %T", database.ErrInvalidOption, data)
	}
	val := reflect.ValueOf(data).Elem()
	if val.Kind() != reflect.Struct {
		return database.Record{}, fmt.Errorf("%w: %T is not a struct", database.ErrInvalidOption, *data)
	}
	rec := database.NewRecord()
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(f.Tag.Get("db"), ",")
		if col == "-" {
			continue
		}
		if col == "" {
			col = strings.ToLower(f.Name)
		}
		fv := val.Field(i)
		if skipZeroPk && col == m.pk && fv.IsZero() {
			continue
		}
		rec.Set(col, fv.Interface())
	}
	return rec, nil
}
