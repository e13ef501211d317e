package export

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	for _, name := range []string{"postgres", "PostgreSQL", "pq"} {
		d, err := dialectFor(name)
		require.NoError(t, err)
		assert.Equal(t, "postgres", d.driver)
	}

	d, err := dialectFor("mysql")
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.driver)

	_, err = dialectFor("sqlite")
	assert.Error(t, err)
}

func TestCreateTableSQL(t *testing.T) {
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "cities" ("col1" TEXT, "col2" TEXT)`,
		createTableSQL(postgresDialect, "cities", 2))
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS `cities` (`col1` TEXT)",
		createTableSQL(mysqlDialect, "cities", 1))
}

func TestInsertSQL(t *testing.T) {
	assert.Equal(t,
		`INSERT INTO "cities" ("col1", "col2", "col3") VALUES ($1, $2, $3)`,
		insertSQL(postgresDialect, "cities", 3))
	assert.Equal(t,
		"INSERT INTO `cities` (`col1`, `col2`) VALUES (?, ?)",
		insertSQL(mysqlDialect, "cities", 2))
}

func TestReadCSVRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "response.csv")
	require.NoError(t, os.WriteFile(path, []byte("Berlin,3755251,BE\nHamburg,1892122\n"), 0644))

	records, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 3, columnCount(records))

	assert.Equal(t, []interface{}{"Hamburg", "1892122", nil}, padRow(records[1], 3))
}

func TestReadCSVMalformed(t *testing.T) {
	_, err := readRecords(strings.NewReader("\"unterminated,1\n"))
	assert.Error(t, err)
}

func TestLoadCSVValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "response.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,1\n"), 0644))

	_, err := LoadCSV(context.Background(), DBConfig{Driver: "oracle", DSN: "x"}, path)
	assert.ErrorContains(t, err, "unsupported export driver")

	_, err = LoadCSV(context.Background(), DBConfig{Driver: "postgres", DSN: "x", Table: "cities; DROP TABLE x"}, path)
	assert.ErrorContains(t, err, "invalid table name")
}

func TestLoadCSVEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "response.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	n, err := LoadCSV(context.Background(), DBConfig{Driver: "mysql", DSN: "user:pass@tcp(127.0.0.1:1)/db"}, path)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// mockDB routes LoadCSV's connection to a sqlmock database for the
// duration of the test
func mockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	dsn := "sqlmock_" + t.Name()
	db, mock, err := sqlmock.NewWithDSN(dsn,
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	orig := openDB
	openDB = func(driver, _ string) (*sql.DB, error) {
		assert.Contains(t, []string{"postgres", "mysql"}, driver)
		return sql.Open("sqlmock", dsn)
	}
	t.Cleanup(func() { openDB = orig })
	return mock
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "response.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSVPostgres(t *testing.T) {
	mock := mockDB(t)
	path := writeCSV(t, "Berlin,3755251,BE\nHamburg,1892122\n")

	mock.ExpectPing()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "cities" ("col1" TEXT, "col2" TEXT, "col3" TEXT)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	insert := mock.ExpectPrepare(`INSERT INTO "cities" ("col1", "col2", "col3") VALUES ($1, $2, $3)`)
	insert.ExpectExec().WithArgs("Berlin", "3755251", "BE").WillReturnResult(sqlmock.NewResult(0, 1))
	insert.ExpectExec().WithArgs("Hamburg", "1892122", nil).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := LoadCSV(context.Background(), DBConfig{Driver: "postgres", DSN: "postgres://localhost/galaxy", Table: "cities"}, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCSVMySQLDefaultTable(t *testing.T) {
	mock := mockDB(t)
	path := writeCSV(t, "Berlin,3755251\n")

	mock.ExpectPing()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS `galaxy_result` (`col1` TEXT, `col2` TEXT)").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO `galaxy_result` (`col1`, `col2`) VALUES (?, ?)").
		ExpectExec().WithArgs("Berlin", "3755251").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	n, err := LoadCSV(context.Background(), DBConfig{Driver: "mysql", DSN: "user:pass@tcp(db:3306)/galaxy"}, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCSVInsertFailureRollsBack(t *testing.T) {
	mock := mockDB(t)
	path := writeCSV(t, "Berlin,3755251\nHamburg,1892122\n")

	mock.ExpectPing()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "cities" ("col1" TEXT, "col2" TEXT)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	insert := mock.ExpectPrepare(`INSERT INTO "cities" ("col1", "col2") VALUES ($1, $2)`)
	insert.ExpectExec().WithArgs("Berlin", "3755251").WillReturnResult(sqlmock.NewResult(0, 1))
	insert.ExpectExec().WithArgs("Hamburg", "1892122").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	n, err := LoadCSV(context.Background(), DBConfig{Driver: "postgres", DSN: "x", Table: "cities"}, path)
	assert.ErrorContains(t, err, "failed to insert row 2")
	assert.ErrorContains(t, err, "disk full")
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCSVPingFailure(t *testing.T) {
	mock := mockDB(t)
	path := writeCSV(t, "Berlin,3755251\n")

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	_, err := LoadCSV(context.Background(), DBConfig{Driver: "postgres", DSN: "x"}, path)
	assert.ErrorContains(t, err, "failed to connect to postgres")
	assert.NoError(t, mock.ExpectationsWereMet())
}
