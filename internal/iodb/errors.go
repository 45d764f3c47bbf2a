package iodb

import (
	"fmt"

	"github.com/aviatlas/avidb/pkg/errcode"
	"github.com/gnames/gn"
)

// ConnectionError creates an error for PostgreSQL connection
// failures.
func ConnectionError(
	host string,
	port int,
	database, user string,
	err error,
) error {
	msg := `Cannot connect to PostgreSQL database

<em>Possible causes:</em>
  - PostgreSQL is not running
  - Database configuration is incorrect
  - Network connectivity issues

<em>How to fix:</em>
  1. Check if PostgreSQL is running:
     <em>pg_isready -h %s -p %d</em>

  2. Verify database exists:
     <em>psql -h %s -U %s -l</em>

  3. Check your configuration file:
     <em>~/.config/avidb/config.yaml</em>

  4. Review connection settings:
     Host: %s
     Port: %d
     Database: %s
     User: %s`

	vars := []any{
		host, port,
		host, user,
		host, port, database, user,
	}

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to connect to %s:%d/%s: %w",
			host, port, database, err),
	}
}

// NotConnectedError creates an error for when a database
// operation is attempted without a connection.
func NotConnectedError() error {
	msg := "Database operation attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// TableCheckError creates an error for when checking the
// database for tables fails.
func TableCheckError(err error) error {
	msg := "Cannot verify database state"

	return &gn.Error{
		Code: errcode.DBTableCheckError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to check database tables: %w", err),
	}
}

// TableExistsCheckError creates an error for when checking a
// single table's existence fails.
func TableExistsCheckError(tableName string, err error) error {
	msg := "Cannot check if table <em>%s</em> exists"
	vars := []any{tableName}

	return &gn.Error{
		Code: errcode.DBTableExistsCheckError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to check table %s: %w",
			tableName, err),
	}
}

// QueryTablesError creates an error for when listing tables
// in the public schema fails.
func QueryTablesError(err error) error {
	msg := "Cannot list database tables"

	return &gn.Error{
		Code: errcode.DBQueryTablesError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to query tables: %w", err),
	}
}

// ScanTableError creates an error for when reading a table
// name from query results fails.
func ScanTableError(err error) error {
	msg := "Cannot read table names from database"

	return &gn.Error{
		Code: errcode.DBScanTableError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to scan table name: %w", err),
	}
}

// DropTableError creates an error for when dropping a table
// fails.
func DropTableError(table string, err error) error {
	msg := "Cannot drop table <em>%s</em>"
	vars := []any{table}

	return &gn.Error{
		Code: errcode.DBDropTableError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to drop table %s: %w", table, err),
	}
}

// EmptyDatabaseError creates an error for when a command that
// needs data runs against a database without tables.
func EmptyDatabaseError(host, database string) error {
	msg := `The database appears to be empty

<em>Required steps:</em>
  1. Create the database schema:
     <em>avidb create</em>

  2. Import the eBird taxonomy:
     <em>avidb convert</em>

<em>Current database state:</em>
  Host: %s
  Database: %s
  Status: No tables found`

	vars := []any{host, database}

	return &gn.Error{
		Code: errcode.DBEmptyDatabaseError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"database has no tables, run 'avidb create' first"),
	}
}
