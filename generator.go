package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fexli/logger"
	"github.com/modern-go/reflect2"
	"github.com/spf13/afero"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const eol = "\n"

// Field is one column of a schema. An empty Definition declares a bare column.
type Field struct {
	Name       string `mapstructure:"name"`
	Definition string `mapstructure:"definition"`
}

// Index is one index of a schema. Kind u or unique creates a unique index;
// any other kind, typically i or index, creates a plain one. The kind is
// part of the index name: users_email_unique.
type Index struct {
	Kind  string `mapstructure:"kind"`
	Field string `mapstructure:"field"`
}

// Schema declares the table of a Model.
//
//	database.Schema{
//		Fields: []database.Field{
//			{"id", "INTEGER PRIMARY KEY"},
//			{"name", "NOT NULL"},
//			{"email", "COLLATE NOCASE"},
//			{"token", ""},
//			{"created_on", "DATETIME DEFAULT CURRENT_TIMESTAMP"},
//		},
//		Indices: []database.Index{{"index", "name"}, {"unique", "email"}},
//	}
type Schema struct {
	Fields  []Field `mapstructure:"fields"`
	Indices []Index `mapstructure:"indices"`
}

// lower is not shared: a Caser keeps state between calls.
func lower(s string) string { return cases.Lower(language.Und).String(s) }

// PrepareSchema renders the CREATE TABLE statement of table followed by one
// CREATE INDEX statement per index.
func PrepareSchema(table string, s Schema) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS " + table + " (")
	sep := eol
	for _, f := range s.Fields {
		sb.WriteString(sep + f.Name + " " + f.Definition)
		sep = ", " + eol
	}
	sb.WriteString(eol + ");" + eol)

	for _, idx := range s.Indices {
		kind := lower(idx.Kind)
		switch kind {
		case "u", "unique":
			sb.WriteString("CREATE UNIQUE INDEX ")
		default:
			sb.WriteString("CREATE INDEX ")
		}
		sb.WriteString(table + "_" + idx.Field + "_" + kind + " ON " + table + "(" + idx.Field + ");" + eol)
	}
	return sb.String()
}

// splitSchema breaks a prepared schema into its statements, each terminated by ";".
func splitSchema(schema string) []string {
	parts := strings.Split(strings.ReplaceAll(schema, eol, ""), ";")
	// the text after the final ";"
	parts = parts[:len(parts)-1]

	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		stmts = append(stmts, p+";")
	}
	return stmts
}

// DeploySchema executes every statement of schema in order, stopping at the
// first failure. Statements already executed are not rolled back. Creating an
// object that already exists is reported as ErrSchemaConflict.
func (d *Database) DeploySchema(ctx context.Context, schema string) error {
	for _, stmt := range splitSchema(schema) {
		if _, err := d.exec.query(ctx, stmt, nil); err != nil {
			if isConflict(err) {
				err = errors.Join(ErrSchemaConflict, err)
			}
			execErr(err, "", "DeploySchema")
			return err
		}
	}
	dbLog.Notice(logger.WithContent("schema deployed"))
	return nil
}

// WriteSchema saves a prepared schema to file on AppFs.
func WriteSchema(file, schema string) error {
	if err := afero.WriteFile(AppFs, file, []byte(schema), 0o644); err != nil {
		return fmt.Errorf("writing schema: %w", err)
	}
	return nil
}

// tableName derives a table name from a Go type: database.Users -> users.
func tableName[T any]() string {
	var v T
	name := reflect2.TypeOfPtr(&v).Elem().String()
	name = strings.TrimLeft(name, "*")
	// generic instantiations: Users[int]
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return lower(name)
}
