package main

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	database "github.com/skadiD/litedb"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	mutedColor   = color.New(color.FgHiBlack)
)

func printSuccess(format string, args ...any) {
	successColor.Println("✓ " + fmt.Sprintf(format, args...))
}

func printError(err error) {
	errorColor.Fprintln(os.Stderr, "✗ "+err.Error())
}

// tableData lays rows out under a title-cased header, columns sorted by name.
func tableData(rows []database.Row) pterm.TableData {
	if len(rows) == 0 {
		return nil
	}
	cols := slices.Sorted(maps.Keys(rows[0]))
	title := cases.Title(language.Und, cases.NoLower)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = title.String(c)
	}
	data := pterm.TableData{header}
	for _, row := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = cell(row[c])
		}
		data = append(data, line)
	}
	return data
}

func cell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}

func printRows(rows []database.Row) error {
	if len(rows) == 0 {
		mutedColor.Println("(no rows)")
		return nil
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData(rows)).Render(); err != nil {
		return err
	}
	mutedColor.Printf("(%d rows)\n", len(rows))
	return nil
}
