package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	database "github.com/skadiD/litedb"
	"github.com/skadiD/litedb/internal/config"
)

// selection holds the flags shared by the table commands.
type selection struct {
	sel     string
	where   string
	orderBy string
	limit   uint64
	offset  uint64
	bind    map[string]string
}

func (s *selection) register(cmd *cobra.Command, paging bool) {
	flags := cmd.Flags()
	flags.StringVarP(&s.where, "where", "w", "", "where condition, may use :name parameters")
	flags.StringToStringVarP(&s.bind, "bind", "b", nil, "parameter values, name=value")
	if paging {
		flags.StringVarP(&s.sel, "select", "s", "*", "selected columns")
		flags.StringVarP(&s.orderBy, "order-by", "o", "", "ordering")
		flags.Uint64VarP(&s.limit, "limit", "l", 100, "number of rows")
		flags.Uint64Var(&s.offset, "offset", 0, "rows to skip")
	}
}

func (s *selection) options(cmd *cobra.Command) database.Options {
	opts := database.Options{"bind": bindMap(s.bind)}
	if s.where != "" {
		opts["where"] = s.where
	}
	if cmd.Flags().Lookup("select") == nil {
		return opts
	}
	opts["select"] = s.sel
	if s.orderBy != "" {
		opts["order_by"] = s.orderBy
	}
	opts["limit"] = database.Limit{Offset: s.offset, Count: s.limit}
	return opts
}

func bindMap(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func queryCmd() *cobra.Command {
	var bind map[string]string
	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a raw statement",
		Example: `  dbq query "SELECT * FROM users WHERE id = :id" --bind id=1
  dbq query "DELETE FROM sessions"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return connect(cmd.Context(), func(db *database.Database) error {
				res, err := db.Query(cmd.Context(), args[0], bindMap(bind))
				if err != nil {
					return err
				}
				if res.Rows == nil {
					printSuccess("%d row(s) affected", res.Affected)
					return nil
				}
				return printRows(res.Rows)
			})
		},
	}
	cmd.Flags().StringToStringVarP(&bind, "bind", "b", nil, "parameter values, name=value")
	return cmd
}

func getCmd() *cobra.Command {
	var s selection
	cmd := &cobra.Command{
		Use:   "get <table>",
		Short: "Select rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return connect(cmd.Context(), func(db *database.Database) error {
				rows, err := db.Get(cmd.Context(), database.Table(args[0]), s.options(cmd))
				if err != nil {
					return err
				}
				return printRows(rows)
			})
		},
	}
	s.register(cmd, true)
	return cmd
}

func countCmd() *cobra.Command {
	var s selection
	cmd := &cobra.Command{
		Use:   "count <table>",
		Short: "Count the rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return connect(cmd.Context(), func(db *database.Database) error {
				n, err := db.Count(cmd.Context(), database.Table(args[0]), s.options(cmd))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
	s.register(cmd, false)
	return cmd
}

func removeCmd() *cobra.Command {
	var s selection
	cmd := &cobra.Command{
		Use:   "remove <table>",
		Short: "Delete the rows matching --where",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return connect(cmd.Context(), func(db *database.Database) error {
				if _, err := db.Remove(cmd.Context(), database.Table(args[0]), s.options(cmd)); err != nil {
					return err
				}
				printSuccess("removed from %s", args[0])
				return nil
			})
		},
	}
	s.register(cmd, false)
	_ = cmd.MarkFlagRequired("where")
	return cmd
}

func pagesCmd() *cobra.Command {
	var (
		s       selection
		args    database.PaginationArgs
		reverse bool
	)
	cmd := &cobra.Command{
		Use:   "pages <table>",
		Short: "Render the HTML page links of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, a []string) error {
			return connect(cmd.Context(), func(db *database.Database) error {
				render := db.Pagination
				if reverse {
					render = db.PaginationReverse
				}
				html, err := render(cmd.Context(), database.Table(a[0]), args, s.options(cmd))
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), html)
				return nil
			})
		},
	}
	s.register(cmd, false)
	flags := cmd.Flags()
	flags.IntVar(&args.PerPage, "per-page", database.DefaultPerPage, "rows per page")
	flags.IntVar(&args.IntPages, "int-pages", database.DefaultIntPages, "numbered links around the current page")
	flags.StringVar(&args.BaseURL, "base-url", "", "link target, page=N is appended")
	flags.IntVarP(&args.Page, "page", "p", 0, "current page")
	flags.BoolVarP(&reverse, "reverse", "r", false, "number the pages from the end")
	return cmd
}

// schemaFile is the yaml form of a table schema:
//
//	table: users
//	fields:
//	  - {name: id, definition: INTEGER PRIMARY KEY}
//	  - {name: email, definition: COLLATE NOCASE}
//	indices:
//	  - {kind: unique, field: email}
type schemaFile struct {
	Table           string `mapstructure:"table"`
	database.Schema `mapstructure:",squash"`
}

func readSchema(path, table string) (string, database.Schema, error) {
	v := viper.New()
	v.SetFs(config.AppFs)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return "", database.Schema{}, err
	}
	var f schemaFile
	if err := v.Unmarshal(&f); err != nil {
		return "", database.Schema{}, err
	}
	if table == "" {
		table = f.Table
	}
	if table == "" {
		return "", database.Schema{}, fmt.Errorf("%w: %s names no table, use --table", database.ErrMissingTable, path)
	}
	return table, f.Schema, nil
}

func schemaCmd() *cobra.Command {
	var table, out string
	cmd := &cobra.Command{
		Use:   "schema <schema.yaml>",
		Short: "Print the DDL of a schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, schema, err := readSchema(args[0], table)
			if err != nil {
				return err
			}
			ddl := database.PrepareSchema(name, schema)
			if out == "" {
				fmt.Fprint(cmd.OutOrStdout(), ddl)
				return nil
			}
			if err := database.WriteSchema(out, ddl); err != nil {
				return err
			}
			printSuccess("schema of %s written to %s", name, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&table, "table", "t", "", "table name, overrides the file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the DDL to this file")
	return cmd
}

func deployCmd() *cobra.Command {
	var table string
	cmd := &cobra.Command{
		Use:   "deploy <schema.yaml>",
		Short: "Create the table and indices of a schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, schema, err := readSchema(args[0], table)
			if err != nil {
				return err
			}
			return connect(cmd.Context(), func(db *database.Database) error {
				if err := db.DeploySchema(cmd.Context(), database.PrepareSchema(name, schema)); err != nil {
					return err
				}
				printSuccess("deployed %s", name)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&table, "table", "t", "", "table name, overrides the file")
	return cmd
}
