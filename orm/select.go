package orm

import (
	"context"
	"maps"
	"slices"
	"strings"

	database "github.com/skadiD/litedb"
)

// Selector 查询操作结构体
type Selector[T any] struct {
	m       *Orm[T]
	columns []string
	where   []string
	bind    map[string]any
	orderBy []string
	limit   uint64
	offset  uint64
}

// Select 初始化查询，默认选择所有字段
func (m *Orm[T]) Select(cols ...string) *Selector[T] {
	return &Selector[T]{m: m, columns: cols, where: slices.Clone(m.where), bind: maps.Clone(m.bind), limit: 100}
}

// Where 添加条件
func (s *Selector[T]) Where(cond string, bind ...map[string]any) *Selector[T] {
	s.where = append(s.where, cond)
	for _, b := range bind {
		maps.Copy(s.bind, b)
	}
	return s
}

// OrderBy 添加排序
func (s *Selector[T]) OrderBy(clauses ...string) *Selector[T] {
	s.orderBy = append(s.orderBy, clauses...)
	return s
}

// Limit 设置限制
func (s *Selector[T]) Limit(limit uint64) *Selector[T] {
	s.limit = limit
	return s
}

// Page 分页，页码从 1 开始
func (s *Selector[T]) Page(page, size uint64) *Selector[T] {
	if page == 0 {
		page = 1
	}
	s.limit = size
	s.offset = (page - 1) * size
	return s
}

// Offset 设置偏移
func (s *Selector[T]) Offset(offset uint64) *Selector[T] {
	s.offset = offset
	return s
}

func (s *Selector[T]) options() database.Options {
	opts := s.m.options(s.where, s.bind)
	if len(s.columns) > 0 {
		opts["select"] = strings.Join(s.columns, ", ")
	}
	if len(s.orderBy) > 0 {
		opts["order_by"] = strings.Join(s.orderBy, ", ")
	}
	opts["limit"] = database.Limit{Offset: s.offset, Count: s.limit}
	return opts
}

// Get 多条查询
func (s *Selector[T]) Get(ctx context.Context) ([]T, error) {
	return database.Select[T](ctx, s.m.db, s.options())
}

// One 获取单条记录，无结果时返回 database.ErrNotFound
func (s *Selector[T]) One(ctx context.Context) (*T, error) {
	return database.First[T](ctx, s.m.db, s.options())
}

// Count 统计条数，忽略排序与分页
func (s *Selector[T]) Count(ctx context.Context) (int64, error) {
	return s.m.db.Count(ctx, s.options())
}
