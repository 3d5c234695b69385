package query

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDefaults() map[string]any {
	return map[string]any{
		"raw":     "SELECT * from my_table;",
		"action":  "select",
		"select":  "id, date, name",
		"table":   "my_table",
		"joins":   []string{},
		"where":   "id < :max",
		"orderby": "id ASC",
		"limit":   "9, 10",
		"record":  map[string]any{"id": 1, "name": "Mr. James"},
		"bind":    map[string]any{"max": 100},
	}
}

func sampleRecord() Record {
	return NewRecord(
		"id", 1,
		"name", "Jhon",
		"time", int64(1700000000),
		"class", "Query",
		"role", "rien n'a foutre!",
	)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, "0, 10", DefaultLimit)
	assert.Equal(t, "1", DefaultDeleteLimit)
	assert.Equal(t, "TABLE_NAME", DefaultTable)

	q := New()
	assert.Equal(t, ActionSelect, q.Get("action"))
	assert.Equal(t, "*", q.Get("select"))
	assert.Equal(t, DefaultTable, q.Get("table"))
	assert.Equal(t, "", q.Get("where"))
	assert.Equal(t, "", q.Get("limit"))
	assert.Equal(t, []string{}, q.Get("join"))
	assert.Equal(t, map[string]any{}, q.Get("bind"))
}

func TestInit(t *testing.T) {
	q := New()
	c := New()
	c.Select("id").From("users").Where("date > :date").OrderBy("id")
	assert.NotEqual(t, q, c)
	assert.Equal(t, q, c.Init())

	c = New(sampleDefaults())
	q.Init(sampleDefaults())
	assert.Equal(t, c, q)

	c.Init().
		Raw("SELECT * from my_table;").
		Select("id, date, name").
		From("my_table").
		Where("id < :max").
		OrderBy("id ASC").
		Limit("9, 10").
		Record(NewRecord("id", 1, "name", "Mr. James")).
		Bind(map[string]any{"max": 100})
	assert.Equal(t, c, q)

	// reapplying the same defaults is idempotent
	q.Init(sampleDefaults()).Where("x = 1").Init(sampleDefaults())
	assert.Equal(t, New(sampleDefaults()), q)
}

func TestAliases(t *testing.T) {
	for _, set := range []func(*Query, string) *Query{
		(*Query).From, (*Query).Table, (*Query).Into, (*Query).In,
	} {
		q := set(New(), "Paris")
		assert.Equal(t, New().From("Paris"), q)
		for _, name := range []string{"from", "table", "into", "in"} {
			assert.Equal(t, "Paris", q.Get(name))
		}
	}
}

func TestCall(t *testing.T) {
	q, err := New().Call("table", "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", q.Get("from"))

	_, err = q.Call("where", "a=1")
	require.NoError(t, err)
	_, err = q.Call("where", "b=2", "OR")
	require.NoError(t, err)
	assert.Equal(t, "(a=1 OR b=2)", q.Get("where"))

	_, err = q.Call("select", "id", "name")
	require.NoError(t, err)
	assert.Equal(t, "id, name", q.Get("select"))

	_, err = q.Call("hello")
	assert.ErrorIs(t, err, ErrUnknownMethod)
	assert.Contains(t, err.Error(), "hello")

	// state is not a setter
	_, err = q.Call("action", "delete")
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = q.Call("limit", 10)
	require.NoError(t, err)
	assert.Equal(t, "10", q.Get("limit"))

	for _, bad := range []any{-1, 1.5, []int{1, 2, 3}, []any{1, "x"}, true} {
		_, err = q.Call("limit", bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, "%v", bad)
	}
	assert.Equal(t, "10", q.Get("limit"))
}

func TestGet(t *testing.T) {
	q := New().From("my_table")
	q.Select("id").Limit("100").Where("1=1").OrderBy("id DESC")
	assert.Equal(t, "id", q.Get("select"))
	assert.Equal(t, "100", q.Get("limit"))
	assert.Equal(t, "1=1", q.Get("where"))
	assert.Empty(t, q.Get("join"))
	assert.Equal(t, "id DESC", q.Get("orderby"))

	q.Record(NewRecord("id", 1, "hello", "world"))
	assert.Equal(t, map[string]any{"id": 1, "hello": "world"}, q.Get("record").(Record).Map())

	q.Raw("SELECT me")
	assert.Equal(t, "SELECT me", q.Get("raw"))

	q.Bind(map[string]any{"id": 9, "max": 100})
	assert.Equal(t, map[string]any{"id": 9, "max": 100}, q.Get("bind"))

	assert.Nil(t, q.Get("nothing"))

	// returned components are copies
	q.Get("bind").(map[string]any)["id"] = 10
	assert.Equal(t, 9, q.Get("bind").(map[string]any)["id"])
}

func TestOptions(t *testing.T) {
	defaults := sampleDefaults()
	delete(defaults, "table")

	q := New().From("some_table").Options(defaults)
	assert.Equal(t, "some_table", q.Get("from"))
	assert.Equal(t, ActionSelect, q.Get("action"))
	assert.Equal(t, "SELECT * from my_table;", q.Get("raw"))
	assert.Equal(t, "id, date, name", q.Get("select"))
	assert.Equal(t, "id < :max", q.Get("where"))
	assert.Equal(t, "id ASC", q.Get("orderby"))
	assert.Equal(t, "9, 10", q.Get("limit"))
	assert.Equal(t, RecordOf(map[string]any{"id": 1, "name": "Mr. James"}), q.Get("record"))
	assert.Equal(t, map[string]any{"max": 100}, q.Get("bind"))

	before := New().From("t").Where("a=1")
	after := New().From("t").Where("a=1").Options(map[string]any{"unknown_key": "v"})
	assert.Equal(t, before, after)
}

func TestOptions_LimitForms(t *testing.T) {
	for _, tt := range []struct {
		limit any
		want  string
	}{
		{5, "SELECT * FROM t LIMIT 5;"},
		{int64(7), "SELECT * FROM t LIMIT 7;"},
		{float64(9), "SELECT * FROM t LIMIT 9;"},
		{"3", "SELECT * FROM t LIMIT 3;"},
		{[]int{20, 5}, "SELECT * FROM t LIMIT 20, 5;"},
		{[2]int{0, 100}, "SELECT * FROM t LIMIT 0, 100;"},
		{[]any{"10", 10}, "SELECT * FROM t LIMIT 10, 10;"},
	} {
		assert.Equal(t, tt.want, New().From("t").Options(map[string]any{"limit": tt.limit}).String(), "%v", tt.limit)
		assert.Equal(t, tt.want, New(map[string]any{"table": "t", "limit": tt.limit}).String(), "%v", tt.limit)
	}
}

func TestRaw(t *testing.T) {
	q := New().Raw("SELECT HELLO FROM WORLD")
	assert.Equal(t, "SELECT HELLO FROM WORLD", q.String())

	q.Insert(sampleRecord()).From("anything")
	assert.Equal(t, "SELECT HELLO FROM WORLD", q.String())

	q.Raw("")
	assert.True(t, strings.HasPrefix(q.String(), "INSERT INTO anything"))
}

func TestSelect(t *testing.T) {
	q := New()
	assert.True(t, strings.HasPrefix(q.String(), "SELECT * FROM TABLE_NAME"))
	assert.Contains(t, q.String(), "LIMIT")

	q.Select().From("table")
	assert.Equal(t, "*", q.Get("select"))
	assert.True(t, strings.HasPrefix(q.String(), "SELECT * FROM table"))

	q.Select("id, name, date")
	assert.Equal(t, "SELECT id, name, date FROM table LIMIT 0, 10;", q.String())
}

func TestJoin(t *testing.T) {
	q := New().
		Select("u.id, p.title").
		From("users u").
		Join(" LEFT JOIN posts p ON p.user_id = u.id").
		Join(" LEFT JOIN tags g ON g.post_id = p.id").
		Where("u.active = 1")
	assert.Equal(t,
		"SELECT u.id, p.title FROM users u WHERE u.active = 1 LEFT JOIN posts p ON p.user_id = u.id"+
			" LEFT JOIN tags g ON g.post_id = p.id LIMIT 0, 10;",
		q.String())
	assert.Equal(t, []string{
		" LEFT JOIN posts p ON p.user_id = u.id",
		" LEFT JOIN tags g ON g.post_id = p.id",
	}, q.Get("join"))
}

func TestWhere(t *testing.T) {
	q := New().Where("hello=world")
	assert.Equal(t, "hello=world", q.Get("where"))
	assert.Contains(t, q.String(), "WHERE hello=world")

	q.Where("love=life")
	assert.Equal(t, "(hello=world AND love=life)", q.Get("where"))

	q.Where("loop=infinite", "OR")
	assert.Equal(t, "((hello=world AND love=life) OR loop=infinite)", q.Get("where"))
	assert.Contains(t, q.String(), "WHERE ((hello=world AND love=life) OR loop=infinite)")
}

func TestOrderBy(t *testing.T) {
	q := New()
	assert.NotContains(t, q.String(), "ORDER BY")

	q.OrderBy("id")
	assert.Contains(t, q.String(), "ORDER BY id")

	q.OrderBy("date ASC")
	assert.Equal(t, "id, date ASC", q.Get("orderby"))
	assert.Contains(t, q.String(), "ORDER BY id, date ASC")
}

func TestLimit(t *testing.T) {
	limitRe := regexp.MustCompile(`LIMIT (.*);`)
	whereRe := regexp.MustCompile(`WHERE (.*);`)

	q := New().From("paradise")
	m := limitRe.FindStringSubmatch(q.String())
	require.Len(t, m, 2)
	assert.Equal(t, DefaultLimit, m[1])

	q.Delete().From("paradise")
	assert.Empty(t, limitRe.FindStringSubmatch(q.String()))
	m = whereRe.FindStringSubmatch(q.String())
	require.Len(t, m, 2)
	assert.Equal(t, "0=1", m[1])

	q.Where(`humans like "apple"`).Limit("666")
	assert.Equal(t, "666", q.Get("limit"))
	assert.NotContains(t, q.String(), "LIMIT")

	q.Init().Limit("666")
	assert.Contains(t, q.String(), "LIMIT 666;")

	q.Limit("0, 1")
	assert.Contains(t, q.String(), "LIMIT 0, 1;")
}

func TestLimitSkippedForAggregates(t *testing.T) {
	for _, q := range []*Query{
		New().Select("count(*)"),
		New().Select("COUNT(id)").From("users").Where("age > :age").Limit("5"),
		New().Select("max(age) AS oldest").From("users").OrderBy("age"),
	} {
		assert.NotContains(t, q.String(), "LIMIT")
	}
}

func TestRecordAndBind(t *testing.T) {
	r := sampleRecord()
	q := New().Record(r)
	assert.Equal(t, r, q.Get("record"))

	// the query keeps its own copy
	r.Set("id", 2)
	v, _ := q.Get("record").(Record).Get("id")
	assert.Equal(t, 1, v)

	q.Bind(r.Map())
	q.Bind(map[string]any{"yin": "yang"})
	want := r.Map()
	want["yin"] = "yang"
	assert.Equal(t, want, q.Get("bind"))
}

func TestInsert(t *testing.T) {
	q := New().Into("users").Insert(NewRecord("id", 1, "name", "Jhon"))
	sql, bind, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO users (id, name) VALUES (:record_id, :record_name);", sql)
	assert.Equal(t, map[string]any{"record_id": 1, "record_name": "Jhon"}, bind)

	// serializing does not leak record binds into the query
	assert.Equal(t, map[string]any{}, q.Get("bind"))

	_, _, err = New().Insert(Record{}).ToSql()
	assert.ErrorIs(t, err, ErrMalformedQuery)
}

func TestInsertOrUpdate(t *testing.T) {
	q := New().InsertOrUpdate(sampleRecord())
	assert.True(t, strings.HasPrefix(q.String(), "INSERT OR REPLACE INTO TABLE_NAME (id, name, time, class, role)"))
}

func TestUpdate(t *testing.T) {
	q := New().
		Table("users").
		Update(NewRecord("name", "Jhon", "id", 4)).
		Where("id = :id").
		Bind(map[string]any{"id": 1})
	sql, bind, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET name=:record_name, id=:record_id WHERE id = :id;", sql)
	assert.Equal(t, map[string]any{"id": 1, "record_id": 4, "record_name": "Jhon"}, bind)

	_, _, err = New().Update(sampleRecord()).ToSql()
	assert.ErrorIs(t, err, ErrMalformedQuery)
	assert.Equal(t, "", New().Update(sampleRecord()).String())
}

func TestRecordBindsDoNotCollide(t *testing.T) {
	rec := NewRecord("name", "record value", "age", 30)
	bind := map[string]any{"name": "bind value", "age": 18}

	for _, q := range []*Query{
		New().Insert(rec).Bind(bind),
		New().InsertOrUpdate(rec).Bind(bind),
		New().Update(rec).Where("name = :name AND age > :age").Bind(bind),
	} {
		_, got, err := q.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "bind value", got["name"])
		assert.Equal(t, 18, got["age"])
		assert.Equal(t, "record value", got["record_name"])
		assert.Equal(t, 30, got["record_age"])
	}

	// record_ keys belong to the record
	_, got, err := New().Insert(NewRecord("name", "r")).Into("t").Bind(map[string]any{"record_name": "w"}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"record_name": "r"}, got)
}

func TestDelete(t *testing.T) {
	q := New().Delete("the_track")
	assert.Equal(t, "DELETE FROM the_track WHERE 0=1;", q.String())

	q.Init().Delete().From("the_track").Where("id = :id")
	assert.Equal(t, "DELETE FROM the_track WHERE id = :id;", q.String())

	_, err := New().Call("delete", "tracks")
	require.NoError(t, err)
}

func TestToString(t *testing.T) {
	q := New()
	assert.Equal(t, "SELECT * FROM TABLE_NAME LIMIT 0, 10;", q.String())

	q.Select("id, name, age, level").
		From("the_people").
		Where("level=:dumb").
		OrderBy("age DESC").
		Limit("10").
		Bind(map[string]any{"dumb": 0})
	assert.Equal(t, "SELECT id, name, age, level FROM the_people WHERE level=:dumb ORDER BY age DESC LIMIT 10;", q.String())

	assert.Equal(t, "SELECT x FROM t WHERE a=1 ORDER BY b LIMIT 5;",
		New().From("t").Select("x").Where("a=1").OrderBy("b").Limit("5").String())

	q.Init().Raw("BINGO")
	assert.Equal(t, "BINGO", q.String())
}

func BenchmarkQuery_Select(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = New().Select("id, name").From("users").Where("age > :age").OrderBy("name").Limit("10").String()
	}
}
