package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/fexli/logger"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"
)

// AppFs is the filesystem used to check and create database files.
var AppFs = afero.NewOsFs()

// Connection describes a backend to connect to.
type Connection struct {
	// Type is sqlite, mysql or postgres.
	Type     string `mapstructure:"type"`
	File     string `mapstructure:"file"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	// DSN, when set, is handed to the driver as is.
	DSN string `mapstructure:"dsn"`
	// Table is the default table of a Model.
	Table string `mapstructure:"table"`
	// Create lets a Model create a missing sqlite file and deploy its schema.
	Create bool `mapstructure:"create"`
}

// Engine is a backend kind.
type Engine struct {
	Name   string
	driver string
	open   func(Connection) (*sqlx.DB, error)
	upsert func(table string) (sq.InsertBuilder, error)
}

var engines = map[string]*Engine{
	"sqlite": {
		Name:   "sqlite",
		driver: "sqlite3",
		open:   openSQLite,
		upsert: func(table string) (sq.InsertBuilder, error) {
			return sq.Insert(table).Options("OR REPLACE"), nil
		},
	},
	"mysql": {
		Name:   "mysql",
		driver: "mysql",
		open:   openMySQL,
		upsert: func(table string) (sq.InsertBuilder, error) {
			return sq.Replace(table), nil
		},
	},
	"postgres": {
		Name:   "postgres",
		driver: "pgx",
		open:   openPostgres,
		upsert: func(string) (sq.InsertBuilder, error) {
			return sq.InsertBuilder{}, fmt.Errorf("%w: postgres has no insert-or-replace", ErrUnsupported)
		},
	},
}

func lookupEngine(name string) (*Engine, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "sqlite3":
		name = "sqlite"
	case "pgsql", "postgresql", "pgx":
		name = "postgres"
	}
	e, ok := engines[name]
	return e, ok
}

// Database is a connection to one backend.
type Database struct {
	engine *Engine
	db     *sqlx.DB
	exec   executor
}

// Connect opens the backend selected by conn.Type and checks it is reachable.
func Connect(ctx context.Context, conn Connection) (*Database, error) {
	engine, ok := lookupEngine(conn.Type)
	if !ok {
		return nil, fmt.Errorf("%w: connectivity with %q database type is not available", ErrConnection, conn.Type)
	}
	db, err := engine.open(conn)
	if err != nil {
		execErr(err, "", "database.Connect")
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		err = errors.Join(ErrConnection, err)
		execErr(err, "", "database.Connect")
		return nil, err
	}
	dbLog.System(logger.WithContent(engine.Name, "连接成功"))
	return NewDatabase(db, engine.Name)
}

// NewDatabase wraps an already open handle. engine names the dialect used
// for upserts.
func NewDatabase(db *sqlx.DB, engine string) (*Database, error) {
	e, ok := lookupEngine(engine)
	if !ok {
		return nil, fmt.Errorf("%w: unknown engine %q", ErrConnection, engine)
	}
	return &Database{engine: e, db: db, exec: executor{db: db}}, nil
}

// Engine returns the backend kind.
func (d *Database) Engine() string { return d.engine.Name }

// DB returns the underlying handle.
func (d *Database) DB() *sqlx.DB { return d.db }

// Close releases the handle.
func (d *Database) Close() error { return d.db.Close() }

func openSQLite(conn Connection) (*sqlx.DB, error) {
	if conn.DSN != "" {
		return openDriver("sqlite3", conn.DSN)
	}
	if conn.File == "" {
		return nil, fmt.Errorf("%w: connection does not include the file definition", ErrConnection)
	}
	if ok, _ := afero.Exists(AppFs, conn.File); !ok {
		return nil, fmt.Errorf("%w: sqlite file: %s, does not exist", ErrConnection, conn.File)
	}
	return openDriver("sqlite3", conn.File)
}

func openMySQL(conn Connection) (*sqlx.DB, error) {
	dsn := conn.DSN
	if dsn == "" {
		cfg := mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = hostPort(conn, 3306)
		cfg.User = conn.User
		cfg.Passwd = conn.Password
		cfg.DBName = conn.DBName
		dsn = cfg.FormatDSN()
	}
	return openDriver("mysql", dsn)
}

func openPostgres(conn Connection) (*sqlx.DB, error) {
	dsn := conn.DSN
	if dsn == "" {
		u := url.URL{
			Scheme: "postgres",
			Host:   hostPort(conn, 5432),
			Path:   "/" + conn.DBName,
		}
		if conn.User != "" {
			u.User = url.UserPassword(conn.User, conn.Password)
		}
		dsn = u.String()
	}
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrConnection, err)
	}
	return sqlx.NewDb(stdlib.OpenDB(*cfg), "pgx"), nil
}

func openDriver(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Join(ErrConnection, err)
	}
	return db, nil
}

func hostPort(conn Connection, port int) string {
	host := conn.Host
	if host == "" {
		host = "127.0.0.1"
	}
	if conn.Port != 0 {
		port = conn.Port
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
