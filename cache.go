package database

import (
	"sync"

	"github.com/modern-go/reflect2"
)

// modelSchema is a registered table declaration.
type modelSchema struct {
	Table  string
	Schema Schema
}

var (
	schemaMu    sync.RWMutex
	schemaCache = make(map[uintptr]modelSchema) // 表缓存
)

func typeKey[T any]() uintptr {
	var v T
	return reflect2.TypeOfPtr(&v).Elem().RType()
}

// RegisterModel 注册表模型，NewModelFor[T] 将使用此处登记的表名与结构
//
// An empty table falls back to the lower-cased type name.
func RegisterModel[T any](table string, schema Schema) {
	if table == "" {
		table = tableName[T]()
	}
	schemaMu.Lock()
	defer schemaMu.Unlock()
	schemaCache[typeKey[T]()] = modelSchema{Table: table, Schema: schema}
}

// GetSchema 获取 T 登记的表名与结构
func GetSchema[T any]() (string, Schema, bool) {
	schemaMu.RLock()
	defer schemaMu.RUnlock()
	m, ok := schemaCache[typeKey[T]()]
	return m.Table, m.Schema, ok
}

// TableName returns the table registered for T, else its lower-cased type name.
func TableName[T any]() string {
	if table, _, ok := GetSchema[T](); ok {
		return table
	}
	return tableName[T]()
}
