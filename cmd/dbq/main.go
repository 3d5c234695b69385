package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	database "github.com/skadiD/litedb"
	"github.com/skadiD/litedb/internal/config"
)

var (
	cfg *config.Config

	configFile string
	connType   string
	connFile   string
	connDSN    string
)

var rootCmd = &cobra.Command{
	Use:   "dbq",
	Short: "Query and manage a database from the command line",
	Long: `dbq runs statements against sqlite, mysql or postgres.

The connection is read from .dbq.yaml (working directory, then home),
.env, .env.local and DBQ_* variables, e.g. DBQ_CONNECTION_FILE=app.sqlite.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(config.Options{File: configFile})
		if err != nil {
			return err
		}
		if connType != "" {
			cfg.Connection.Type = connType
		}
		if connFile != "" {
			cfg.Connection.File = connFile
		}
		if connDSN != "" {
			cfg.Connection.DSN = connDSN
		}
		database.LogStatements = cfg.Log.Statements
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default .dbq.yaml)")
	flags.StringVar(&connType, "type", "", "database type: sqlite, mysql or postgres")
	flags.StringVarP(&connFile, "file", "f", "", "sqlite database file")
	flags.StringVar(&connDSN, "dsn", "", "driver DSN, overrides the other connection settings")

	rootCmd.AddCommand(queryCmd(), getCmd(), countCmd(), removeCmd(), pagesCmd(), schemaCmd(), deployCmd())
}

// connect opens the configured database and closes it once fn returns.
func connect(ctx context.Context, fn func(db *database.Database) error) error {
	db, err := database.Connect(ctx, cfg.Connection)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}
