package storage

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rl1809/inventory-api/internal/core/domain"
)

// MySQL server error numbers
const (
	mysqlBadNull            = 1048
	mysqlDupEntry           = 1062
	mysqlDataTruncated      = 1265
	mysqlTruncatedWrongVal  = 1292
	mysqlIncorrectValue     = 1366
	mysqlDataTooLong        = 1406
	mysqlNoReferencedRow    = 1452
	mysqlCheckViolated      = 3819
	mysqlOutOfRange         = 1264
	mysqlNumericOutOfRange  = 1690
	mysqlTooManyConnections = 1040
	mysqlServerShutdown     = 1053
)

const pgNumericValueOutOfRange = "22003"

var mysqlColumnPattern = regexp.MustCompile(`column '([^']+)'`)

func translateMySQLError(err error) error {
	if err == nil {
		return nil
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		field := mysqlColumn(myErr.Message)
		switch myErr.Number {
		case mysqlOutOfRange, mysqlNumericOutOfRange:
			return &domain.ConstraintError{Field: field, OutOfRange: true, Err: err}
		case mysqlBadNull, mysqlDupEntry, mysqlDataTruncated, mysqlTruncatedWrongVal,
			mysqlIncorrectValue, mysqlDataTooLong, mysqlNoReferencedRow, mysqlCheckViolated:
			return &domain.ConstraintError{Field: field, Err: err}
		case mysqlTooManyConnections, mysqlServerShutdown:
			return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
		}
		return err
	}

	if errors.Is(err, mysql.ErrInvalidConn) || isConnectionError(err) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
	return err
}

func mysqlColumn(message string) string {
	m := mysqlColumnPattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	return m[1]
}

func translatePgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgNumericValueOutOfRange:
			return &domain.ConstraintError{Field: pgOutOfRangeColumn(pgErr), OutOfRange: true, Err: err}
		case strings.HasPrefix(pgErr.Code, "22"), strings.HasPrefix(pgErr.Code, "23"):
			return &domain.ConstraintError{Field: pgErr.ColumnName, Err: err}
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || isConnectionError(err) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
	return err
}

// PostgreSQL leaves ColumnName empty for 22003; the message tells the
// integer column apart from the numeric one.
func pgOutOfRangeColumn(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	switch {
	case strings.Contains(pgErr.Message, "integer out of range"):
		return "quantity"
	case strings.Contains(pgErr.Message, "numeric field overflow"):
		return "unit_price"
	}
	return ""
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
