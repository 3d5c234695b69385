package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	database "github.com/skadiD/litedb"
)

var AppFs = afero.NewOsFs()

const (
	// Name is the config file looked up without extension: .dbq.yaml, .dbq.toml, ...
	Name      = ".dbq"
	EnvPrefix = "DBQ"
)

// Config holds the dbq configuration
type Config struct {
	Connection database.Connection `mapstructure:"connection"`
	Log        Log                 `mapstructure:"log"`
	// File is the config file actually read, empty when none was found.
	File string `mapstructure:"-"`
}

type Log struct {
	// Statements logs every executed statement at debug level.
	Statements bool `mapstructure:"statements"`
}

// Options selects where Load looks.
type Options struct {
	// File is an explicit config file; it must exist.
	File string
	// Dir holds the .env and .env.local files, default ".".
	Dir string
}

// every key is registered so environment variables reach Unmarshal
var defaults = map[string]any{
	"connection.type":     "sqlite",
	"connection.file":     "",
	"connection.host":     "",
	"connection.port":     0,
	"connection.user":     "",
	"connection.password": "",
	"connection.db_name":  "",
	"connection.dsn":      "",
	"connection.table":    "",
	"connection.create":   false,
	"log.statements":      false,
}

// Load reads the configuration from, lowest priority first: defaults, the
// config file, .env, .env.local and DBQ_* environment variables
// (DBQ_CONNECTION_DB_NAME for connection.db_name).
func Load(opts Options) (*Config, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if err := loadEnv(dir); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName(Name)
		v.AddConfigPath(dir)
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "dbq"))
		}
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.File = v.ConfigFileUsed()
	return cfg, nil
}

// loadEnv loads .env without overriding the environment, then .env.local
// over it. Both are read through AppFs; a missing file is skipped.
func loadEnv(dir string) error {
	if err := applyEnv(filepath.Join(dir, ".env"), false); err != nil {
		return err
	}
	return applyEnv(filepath.Join(dir, ".env.local"), true)
}

func applyEnv(path string, override bool) error {
	b, err := afero.ReadFile(AppFs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	vars, err := godotenv.Parse(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for k, v := range vars {
		if _, set := os.LookupEnv(k); set && !override {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}
