package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skadiD/litedb/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
}

func openTestDB(t *testing.T) *Database {
	t.Helper()
	file := filepath.Join(t.TempDir(), "test.sqlite")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	db, err := Connect(context.Background(), Connection{Type: "sqlite", File: file})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Query(context.Background(),
		"CREATE TABLE accounts (id INTEGER PRIMARY KEY, name TEXT NOT NULL, email TEXT UNIQUE)", nil)
	require.NoError(t, err)
	for _, n := range []string{"alice", "bob", "carol"} {
		_, err := db.Insert(context.Background(), Table("accounts"), NewRecord("name", n, "email", n+"@example.com"))
		require.NoError(t, err)
	}
	return db
}

func TestConnect_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Connect(ctx, Connection{Type: "oracle"})
	assert.ErrorIs(t, err, ErrConnection)
	assert.Contains(t, err.Error(), `"oracle"`)

	_, err = Connect(ctx, Connection{Type: "sqlite"})
	assert.ErrorIs(t, err, ErrConnection)

	_, err = Connect(ctx, Connection{Type: "sqlite3", File: filepath.Join(t.TempDir(), "missing.sqlite")})
	assert.ErrorIs(t, err, ErrConnection)
	assert.Contains(t, err.Error(), "does not exist")

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err = Connect(ctx, Connection{Type: "mysql", Host: "127.0.0.1", Port: 1, User: "root"})
	assert.ErrorIs(t, err, ErrConnection)
}

func TestNewDatabase(t *testing.T) {
	db := openTestDB(t)
	assert.Equal(t, "sqlite", db.Engine())

	pg, err := NewDatabase(db.DB(), "postgresql")
	require.NoError(t, err)
	assert.Equal(t, "postgres", pg.Engine())
	_, err = pg.InsertOrUpdate(context.Background(), Table("accounts"), NewRecord("id", 1, "name", "x"))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = NewDatabase(db.DB(), "mssql")
	assert.ErrorIs(t, err, ErrConnection)
}

func TestDatabase_Query(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	res, err := db.Query(ctx, "SELECT name FROM accounts WHERE id > :id ORDER BY id", map[string]any{"id": 1})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []Row{{"name": "bob"}, {"name": "carol"}}, res.Rows)

	res, err = db.Query(ctx, "UPDATE accounts SET name = upper(name) WHERE id <= :id", map[string]any{"id": 2})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Rows)
	assert.EqualValues(t, 2, res.Affected)

	_, err = db.Query(ctx, "SELECT * FROM nowhere", nil)
	assert.ErrorIs(t, err, ErrPrepare)
	assert.Contains(t, err.Error(), "#### SQL:\nSELECT * FROM nowhere")

	_, err = db.Query(ctx, "INSERT INTO accounts (name, email) VALUES (:name, :email)",
		map[string]any{"name": "dup", "email": "bob@example.com"})
	assert.ErrorIs(t, err, ErrExecution)
}

func TestDatabase_Execute(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	res, err := db.Execute(ctx, query.New().Insert(query.NewRecord("name", "dave", "email", "dave@example.com")).Into("accounts"))
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = db.Execute(ctx, query.New().
		Select("id", "name").
		From("accounts").
		Where("name = :name").
		Bind(map[string]any{"name": "dave"}))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.EqualValues(t, 4, res.Rows[0]["id"])

	res, err = db.Execute(ctx, query.New().Select("count(*) AS n").From("accounts"))
	require.NoError(t, err)
	assert.EqualValues(t, 4, res.Rows[0]["n"])

	_, err = db.Execute(ctx, query.New().Update(query.NewRecord("name", "x")).Table("accounts"))
	assert.ErrorIs(t, err, query.ErrMalformedQuery)
}

func TestDatabase_Get(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	rows, err := db.Get(ctx, Table("accounts"), Options{"select": "name", "order_by": "id DESC", "limit": []int{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, []Row{{"name": "bob"}, {"name": "alice"}}, rows)

	// an Options target carries the table with the rest of the options
	rows, err = db.Get(ctx, Options{"table": "accounts", "where": "email LIKE :e", "bind": map[string]any{"e": "c%"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "carol", rows[0]["name"])

	row, err := db.GetFirst(ctx, Table("accounts"), Options{"order_by": "name DESC"})
	require.NoError(t, err)
	assert.Equal(t, "carol", row["name"])

	_, err = db.GetFirst(ctx, Table("accounts"), Options{"where": "id = 99"})
	assert.ErrorIs(t, err, ErrNotFound)

	has, err := db.Has(ctx, Table("accounts"), Options{"where": "id = 99"})
	require.NoError(t, err)
	assert.False(t, has)

	n, err := db.Count(ctx, Table("accounts"), Options{"where": "id > 1", "limit": 1, "order_by": "id"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = db.Get(ctx, Options{"where": "1 = 1"})
	assert.ErrorIs(t, err, ErrMissingTable)
}

func TestDatabase_Insert(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	// the extra bind does not collide with the record's name column
	ok, err := db.Insert(ctx, Table("accounts"), NewRecord("name", "dave", "email", "dave@example.com"),
		map[string]any{"name": "ignored"})
	require.NoError(t, err)
	assert.True(t, ok)

	row, err := db.GetFirst(ctx, Table("accounts"), Options{"where": "id = 4"})
	require.NoError(t, err)
	assert.Equal(t, "dave", row["name"])

	_, err = db.Insert(ctx, Table("accounts"), NewRecord())
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = db.Update(ctx, Table("accounts"), NewRecord())
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestDatabase_Update(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	ok, err := db.Update(ctx, Table("accounts"), NewRecord("name", "robert"), Options{
		"where": "name = :name",
		"bind":  map[string]any{"name": "bob"},
	})
	require.NoError(t, err)
	assert.True(t, ok)

	row, err := db.GetFirst(ctx, Table("accounts"), Options{"where": "id = 2"})
	require.NoError(t, err)
	assert.Equal(t, "robert", row["name"])

	ok, err = db.Update(ctx, Table("accounts"), RecordOf(map[string]any{"email": "r@example.com", "name": "rob"}),
		Options{"where": "id = 2"})
	require.NoError(t, err)
	assert.True(t, ok)
	row, err = db.GetFirst(ctx, Table("accounts"), Options{"where": "id = 2"})
	require.NoError(t, err)
	assert.Equal(t, Row{"id": int64(2), "name": "rob", "email": "r@example.com"}, row)
}

func TestDatabase_InsertOrUpdate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	ok, err := db.InsertOrUpdate(ctx, Table("accounts"), NewRecord("id", 2, "name", "bobby", "email", "bobby@example.com"))
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := db.Count(ctx, Table("accounts"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	row, err := db.GetFirst(ctx, Table("accounts"), Options{"where": "id = 2"})
	require.NoError(t, err)
	assert.Equal(t, "bobby", row["name"])
}

func TestDatabase_Remove(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.Remove(ctx, Table("accounts"))
	assert.ErrorIs(t, err, ErrMissingPredicate)

	n, err := db.Count(ctx, Table("accounts"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	ok, err := db.Remove(ctx, Table("accounts"), Options{"where": "id = :id", "bind": map[string]any{"id": 1}})
	require.NoError(t, err)
	assert.True(t, ok)

	n, err = db.Count(ctx, Table("accounts"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestSelect(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	list, err := Select[account](ctx, db, Table("accounts"), Options{"order_by": "id"})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, account{ID: 1, Name: "alice", Email: "alice@example.com"}, list[0])

	a, err := First[account](ctx, db, Table("accounts"), Options{"where": "name = :n", "bind": map[string]any{"n": "carol"}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, a.ID)

	_, err = First[account](ctx, db, Table("accounts"), Options{"where": "id = 42"})
	assert.ErrorIs(t, err, ErrNotFound)

	empty, err := Select[account](ctx, db, Table("accounts"), Options{"where": "0 = 1"})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTableName(t *testing.T) {
	type BlogPosts struct{}
	assert.Equal(t, "blogposts", tableName[BlogPosts]())
	assert.Equal(t, "account", tableName[account]())
	assert.Equal(t, "account", tableName[*account]())
}

func TestEscapeLiterals(t *testing.T) {
	for in, want := range map[string]string{
		"SELECT * FROM t WHERE id = :id":             "SELECT * FROM t WHERE id = :id",
		"SELECT '10:30' AS t":                        "SELECT '10::30' AS t",
		"SELECT * FROM t WHERE a = 'x:y' AND b = :b": "SELECT * FROM t WHERE a = 'x::y' AND b = :b",
		`SELECT "a:b" FROM t WHERE c = :c`:           `SELECT "a::b" FROM t WHERE c = :c`,
		"SELECT `a:b` FROM t":                        "SELECT `a::b` FROM t",
		"SELECT 'it''s 1:2', :n":                     "SELECT 'it''s 1::2', :n",
	} {
		assert.Equal(t, want, escapeLiterals(in))
	}
}

func TestDatabase_QuotedColons(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	rows, err := db.Get(ctx, Table("accounts"), Options{"where": "name <> 'at 10:30'"})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	res, err := db.Execute(ctx, query.New().Raw("SELECT '10:30' AS t"))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "10:30", res.Rows[0]["t"])

	_, err = db.Query(ctx, "INSERT INTO accounts (name, email) VALUES ('a:b', :email)",
		map[string]any{"email": "ab@example.com"})
	require.NoError(t, err)
	row, err := db.GetFirst(ctx, Table("accounts"), Options{"where": "email = :e", "bind": map[string]any{"e": "ab@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, "a:b", row["name"])

	require.NoError(t, db.DeploySchema(ctx, PrepareSchema("clock", Schema{
		Fields: []Field{{"id", "INTEGER PRIMARY KEY"}, {"at", "TEXT DEFAULT '00:00'"}},
	})))
	_, err = db.Insert(ctx, Table("clock"), NewRecord("id", 1))
	require.NoError(t, err)
	row, err = db.GetFirst(ctx, Table("clock"), Options{"where": "id = 1"})
	require.NoError(t, err)
	assert.Equal(t, "00:00", row["at"])
}
