package database

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
)

// Model binds a table and its schema to a sqlite file.
//
//	type Users struct{}
//
//	users, err := database.NewModelFor[Users](ctx, database.Connection{
//		File:   "users.sqlite",
//		Create: true,
//	}, usersSchema)
//	ok, err := users.InsertOrUpdate(ctx, database.NewRecord(
//		"name", "Someone",
//		"email", "someone@example.com",
//	))
//	user, err := users.GetFirst(ctx, database.Options{
//		"where": "id = :id",
//		"bind":  map[string]any{"id": 1},
//	})
type Model struct {
	db     *Database
	file   string
	table  string
	schema Schema
}

// NewModel opens the model of conn.Table, see NewModelFor.
func NewModel(ctx context.Context, conn Connection, schema Schema) (*Model, error) {
	if conn.Table == "" {
		return nil, ErrMissingTable
	}
	return newModel(ctx, conn, conn.Table, schema)
}

// NewModelFor opens the model of T. The table is conn.Table, else the one
// registered with RegisterModel, else the lower-cased name of T. The schema
// defaults to the registered one.
//
// conn.File must exist unless conn.Create is set, in which case an empty file
// is created and the schema deployed into it.
func NewModelFor[T any](ctx context.Context, conn Connection, schema ...Schema) (*Model, error) {
	table, s, registered := GetSchema[T]()
	if !registered {
		table = tableName[T]()
	}
	if conn.Table != "" {
		table = conn.Table
	}
	if len(schema) > 0 {
		s = schema[0]
	}
	return newModel(ctx, conn, table, s)
}

func newModel(ctx context.Context, conn Connection, table string, schema Schema) (*Model, error) {
	if conn.File == "" {
		return nil, fmt.Errorf("%w: file key is missing in the connection", ErrConnection)
	}

	deploy := false
	exists, err := afero.Exists(AppFs, conn.File)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	if !exists {
		if !conn.Create {
			return nil, fmt.Errorf("%w: file: %s, does not exist", ErrConnection, conn.File)
		}
		if err := afero.WriteFile(AppFs, conn.File, nil, 0o644); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConnection, err)
		}
		deploy = true
	}

	db, err := Connect(ctx, Connection{Type: "sqlite", File: conn.File})
	if err != nil {
		return nil, err
	}
	m := &Model{db: db, file: conn.File, table: table, schema: schema}

	if deploy {
		if err := m.DeploySchema(ctx, m.PrepareSchema()); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return m, nil
}

// DatabaseFile returns the sqlite file of the model.
func (m *Model) DatabaseFile() string { return m.file }

// Table returns the table of the model.
func (m *Model) Table() string { return m.table }

// Database returns the connection of the model.
func (m *Model) Database() *Database { return m.db }

// PrepareSchema renders the DDL of the model; it can also be used to create
// the file by hand.
func (m *Model) PrepareSchema() string { return PrepareSchema(m.table, m.schema) }

// DeploySchema executes a prepared schema against the model's file.
func (m *Model) DeploySchema(ctx context.Context, schema string) error {
	return m.db.DeploySchema(ctx, schema)
}

func (m *Model) Query(ctx context.Context, sql string, bind map[string]any) (*Result, error) {
	return m.db.Query(ctx, sql, bind)
}

func (m *Model) Insert(ctx context.Context, rec Record, bind ...map[string]any) (bool, error) {
	return m.db.Insert(ctx, Table(m.table), rec, bind...)
}

func (m *Model) InsertOrUpdate(ctx context.Context, rec Record, bind ...map[string]any) (bool, error) {
	return m.db.InsertOrUpdate(ctx, Table(m.table), rec, bind...)
}

func (m *Model) Update(ctx context.Context, rec Record, opts ...Options) (bool, error) {
	return m.db.Update(ctx, Table(m.table), rec, opts...)
}

func (m *Model) Remove(ctx context.Context, opts ...Options) (bool, error) {
	return m.db.Remove(ctx, Table(m.table), opts...)
}

func (m *Model) Get(ctx context.Context, opts ...Options) ([]Row, error) {
	return m.db.Get(ctx, Table(m.table), opts...)
}

func (m *Model) GetFirst(ctx context.Context, opts ...Options) (Row, error) {
	return m.db.GetFirst(ctx, Table(m.table), opts...)
}

func (m *Model) Has(ctx context.Context, opts ...Options) (bool, error) {
	return m.db.Has(ctx, Table(m.table), opts...)
}

func (m *Model) Count(ctx context.Context, opts ...Options) (int64, error) {
	return m.db.Count(ctx, Table(m.table), opts...)
}

// Pagination renders the page links of the rows matching opts.
func (m *Model) Pagination(ctx context.Context, args PaginationArgs, opts ...Options) (string, error) {
	return m.db.Pagination(ctx, Table(m.table), args, opts...)
}

// PaginationReverse renders the page links newest first.
func (m *Model) PaginationReverse(ctx context.Context, args PaginationArgs, opts ...Options) (string, error) {
	return m.db.PaginationReverse(ctx, Table(m.table), args, opts...)
}

func (m *Model) Close() error { return m.db.Close() }
