package database

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConnection is returned when a backend cannot be opened or reached.
	ErrConnection = errors.New("database: connection failed")
	// ErrPrepare is returned when the backend rejects a statement while preparing it.
	ErrPrepare = errors.New("database: prepare failed")
	// ErrExecution is returned when a prepared statement fails to execute.
	ErrExecution = errors.New("database: execution failed")
	// ErrMissingPredicate is returned by Remove without a where condition.
	ErrMissingPredicate = errors.New("database: where condition is required")
	// ErrMissingTable is returned when a table-level call names no table.
	ErrMissingTable = errors.New("database: table is required")
	// ErrInvalidOption is returned for an option value of an unusable type.
	ErrInvalidOption = errors.New("database: invalid option")
	// ErrSchemaConflict is returned when deploying a schema whose objects already exist.
	ErrSchemaConflict = errors.New("database: schema conflict")
	// ErrNotFound is returned by GetFirst and First when no row matches.
	ErrNotFound = errors.New("database: record not found")
	// ErrUnsupported is returned for an operation the engine cannot perform.
	ErrUnsupported = errors.New("database: unsupported by engine")
)

// sqlErr attaches the statement and its binds to err.
func sqlErr(kind, err error, sql string, bind map[string]any) error {
	return errors.Join(kind, err,
		fmt.Errorf("error executing SQL:\n#### SQL:\n%s\n#### Args:\n%v", sql, bind))
}

// isConflict reports whether the backend refused to create an existing object.
func isConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}
