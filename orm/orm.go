package orm

import (
	"maps"
	"slices"
	"strings"

	database "github.com/skadiD/litedb"
)

// DefaultPk is the primary key column unless PkColumn says otherwise.
const DefaultPk = "id"

// Orm 以结构体 T 操作一张表，列名取自 db 标签
//
//	type User struct {
//		ID   int64  `db:"id"`
//		Name string `db:"name"`
//	}
//	users, err := orm.Model[User](db).Select().Where("name LIKE :q", map[string]any{"q": "a%"}).Get(ctx)
type Orm[T any] struct {
	db    *database.Database
	table string
	pk    string
	pkVal any
	where []string
	bind  map[string]any
}

// Model 初始化，表名取 database.TableName[T]
func Model[T any](db *database.Database) *Orm[T] {
	return &Orm[T]{db: db, table: database.TableName[T](), pk: DefaultPk, bind: map[string]any{}}
}

// Table 指定表名
func (m *Orm[T]) Table(table string) *Orm[T] {
	m.table = table
	return m
}

// PkColumn 指定主键列
func (m *Orm[T]) PkColumn(col string) *Orm[T] {
	m.pk = col
	return m
}

// Pk 设置主键值
func (m *Orm[T]) Pk(value any) *Orm[T] {
	m.pkVal = value
	return m
}

// Where 条件，多次调用以 AND 连接
func (m *Orm[T]) Where(cond string, bind ...map[string]any) *Orm[T] {
	m.where = append(m.where, cond)
	for _, b := range bind {
		maps.Copy(m.bind, b)
	}
	return m
}

// pkParam keeps the key value clear of user binds.
const pkParam = "__pk"

// options folds the conditions, and the primary key when set, into table options.
func (m *Orm[T]) options(where []string, bind map[string]any) database.Options {
	bind = maps.Clone(bind)
	if bind == nil {
		bind = map[string]any{}
	}
	if m.pkVal != nil {
		where = append(slices.Clone(where), m.pk+" = :"+pkParam)
		bind[pkParam] = m.pkVal
	}
	opts := database.Options{"table": m.table, "bind": bind}
	if len(where) > 0 {
		opts["where"] = joinAnd(where)
	}
	return opts
}

func joinAnd(conds []string) string {
	if len(conds) == 1 {
		return conds[0]
	}
	return "(" + strings.Join(conds, ") AND (") + ")"
}
