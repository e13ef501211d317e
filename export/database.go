// Package export loads a downloaded dataset into a SQL table.
//
// Postgres (lib/pq) and MySQL (go-sql-driver/mysql) are supported. Every
// column is stored as text and named col1..colN since Galaxy tabular
// outputs carry no header.
package export

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// DBConfig represents the export target
type DBConfig struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
	Table  string `json:"table"`
}

// DefaultTable is used when DBConfig.Table is empty
const DefaultTable = "galaxy_result"

// openDB is replaced in tests
var openDB = sql.Open

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

type dialect struct {
	driver string
	quote  func(string) string
	param  func(i int) string
}

var (
	postgresDialect = dialect{
		driver: "postgres",
		quote:  func(s string) string { return `"` + s + `"` },
		param:  func(i int) string { return fmt.Sprintf("$%d", i) },
	}
	mysqlDialect = dialect{
		driver: "mysql",
		quote:  func(s string) string { return "`" + s + "`" },
		param:  func(int) string { return "?" },
	}
)

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pq":
		return postgresDialect, nil
	case "mysql":
		return mysqlDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported export driver %q (use postgres or mysql)", driver)
	}
}

// ReadCSV reads all records from path. Rows may have differing lengths.
func ReadCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readRecords(file)
}

func readRecords(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return records, nil
}

func columnCount(records [][]string) int {
	n := 0
	for _, rec := range records {
		n = max(n, len(rec))
	}
	return n
}

func createTableSQL(d dialect, table string, columns int) string {
	cols := make([]string, columns)
	for i := range cols {
		cols[i] = d.quote(fmt.Sprintf("col%d", i+1)) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.quote(table), strings.Join(cols, ", "))
}

func insertSQL(d dialect, table string, columns int) string {
	cols := make([]string, columns)
	params := make([]string, columns)
	for i := range cols {
		cols[i] = d.quote(fmt.Sprintf("col%d", i+1))
		params[i] = d.param(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.quote(table), strings.Join(cols, ", "), strings.Join(params, ", "))
}

// padRow returns rec as driver args, padded with NULLs up to columns
func padRow(rec []string, columns int) []interface{} {
	args := make([]interface{}, columns)
	for i := range args {
		if i < len(rec) {
			args[i] = rec[i]
		}
	}
	return args
}

// LoadCSV creates the target table if needed and inserts every record of
// the CSV file at path in one transaction. It returns the inserted row count.
func LoadCSV(ctx context.Context, cfg DBConfig, path string) (int, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return 0, err
	}

	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}

	records, err := ReadCSV(path)
	if err != nil {
		return 0, err
	}
	columns := columnCount(records)
	if columns == 0 {
		return 0, nil
	}

	db, err := openDB(d.driver, cfg.DSN)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", d.driver, err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return 0, fmt.Errorf("failed to connect to %s: %w", d.driver, err)
	}

	if _, err := db.ExecContext(ctx, createTableSQL(d, table, columns)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL(d, table, columns))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, padRow(rec, columns)...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return len(records), nil
}
