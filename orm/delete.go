package orm

import (
	"context"
)

// Delete 删除 Pk 或 Where 限定的记录
func (m *Orm[T]) Delete(ctx context.Context) (bool, error) {
	return m.db.Remove(ctx, m.options(m.where, m.bind))
}
