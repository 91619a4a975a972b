package storage

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory-api/internal/core/domain"
)

func TestTranslateMySQLError_OutOfRange(t *testing.T) {
	raw := &mysql.MySQLError{Number: 1264, Message: "Out of range value for column 'quantity' at row 1"}

	err := translateMySQLError(fmt.Errorf("exec: %w", raw))

	var cerr *domain.ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.OutOfRange)
	assert.Equal(t, "quantity", cerr.Field)
	assert.Equal(t, "quantity out of range", cerr.Error())
	assert.ErrorIs(t, err, domain.ErrConstraint)
	assert.ErrorIs(t, err, raw)
}

func TestTranslateMySQLError_PriceOutOfRange(t *testing.T) {
	raw := &mysql.MySQLError{Number: 1264, Message: "Out of range value for column 'unit_price' at row 1"}

	var cerr *domain.ConstraintError
	require.ErrorAs(t, translateMySQLError(raw), &cerr)
	assert.Equal(t, "unit_price out of range", cerr.Error())
}

func TestTranslateMySQLError_GenericIntegrity(t *testing.T) {
	for _, raw := range []*mysql.MySQLError{
		{Number: 1406, Message: "Data too long for column 'name' at row 1"},
		{Number: 1048, Message: "Column 'name' cannot be null"},
		{Number: 1366, Message: "Incorrect integer value: 'x' for column 'quantity' at row 1"},
	} {
		var cerr *domain.ConstraintError
		require.ErrorAs(t, translateMySQLError(raw), &cerr, "mysql error %d", raw.Number)
		assert.False(t, cerr.OutOfRange)
		assert.Equal(t, "invalid input data", cerr.Error())
	}
}

func TestTranslateMySQLError_Unavailable(t *testing.T) {
	assert.ErrorIs(t, translateMySQLError(mysql.ErrInvalidConn), domain.ErrUnavailable)
	assert.ErrorIs(t, translateMySQLError(driver.ErrBadConn), domain.ErrUnavailable)
	assert.ErrorIs(t, translateMySQLError(&mysql.MySQLError{Number: 1040, Message: "Too many connections"}), domain.ErrUnavailable)
}

func TestTranslateMySQLError_PassThrough(t *testing.T) {
	assert.NoError(t, translateMySQLError(nil))

	other := errors.New("boom")
	assert.Equal(t, other, translateMySQLError(other))
}

func TestTranslatePgError(t *testing.T) {
	tests := []struct {
		name       string
		err        *pgconn.PgError
		outOfRange bool
		message    string
	}{
		{"integer overflow", &pgconn.PgError{Code: "22003", Message: "integer out of range"}, true, "quantity out of range"},
		{"numeric overflow", &pgconn.PgError{Code: "22003", Message: "numeric field overflow"}, true, "unit_price out of range"},
		{"too long", &pgconn.PgError{Code: "22001", Message: "value too long for type character varying(255)"}, false, "invalid input data"},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "name"}, false, "invalid input data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cerr *domain.ConstraintError
			require.ErrorAs(t, translatePgError(tt.err), &cerr)
			assert.Equal(t, tt.outOfRange, cerr.OutOfRange)
			assert.Equal(t, tt.message, cerr.Error())
		})
	}
}

func TestTranslatePgError_Unavailable(t *testing.T) {
	assert.ErrorIs(t, translatePgError(&pgconn.PgError{Code: "57P01"}), domain.ErrUnavailable)
	assert.ErrorIs(t, translatePgError(&pgconn.PgError{Code: "08006"}), domain.ErrUnavailable)
	assert.NoError(t, translatePgError(nil))
}

func TestSchemaDDL(t *testing.T) {
	for _, name := range []string{DriverMySQL, DriverPostgres} {
		ddl, err := SchemaDDL(name)
		require.NoError(t, err)
		assert.Contains(t, ddl, "inventory_items")
		assert.Contains(t, ddl, "unit_price")
	}

	_, err := SchemaDDL("sqlite")
	assert.Error(t, err)
}
