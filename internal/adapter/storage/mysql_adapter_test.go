package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory-api/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sqlx.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/inventory?parseTime=true"
	}

	db, err := OpenMySQL(context.Background(), dsn, PoolOptions{MaxOpenConns: 5, MaxIdleConns: 5})
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := NewMySQLAdapter(db).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

func testItem(name string) domain.NewItem {
	return domain.NewItem{
		Name:        name,
		Quantity:    10,
		Description: "test fixture",
		UnitPrice:   decimal.RequireFromString("19.99"),
	}
}

func TestMySQLCreateAndGet(t *testing.T) {
	db := getMySQLDB(t)
	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	created, err := adapter.Create(ctx, testItem("mysql-create"))
	require.NoError(t, err)
	defer adapter.Delete(ctx, created.ID)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "mysql-create", created.Name)
	assert.Equal(t, int64(10), created.Quantity)
	assert.True(t, created.UnitPrice.Equal(decimal.RequireFromString("19.99")))

	got, err := adapter.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Description, got.Description)
}

func TestMySQLGet_NotFound(t *testing.T) {
	db := getMySQLDB(t)
	adapter := NewMySQLAdapter(db)

	item, err := adapter.Get(context.Background(), -1)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestMySQLUpdate_Partial(t *testing.T) {
	db := getMySQLDB(t)
	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	created, err := adapter.Create(ctx, testItem("mysql-partial"))
	require.NoError(t, err)
	defer adapter.Delete(ctx, created.ID)

	qty := int64(5)
	updated, err := adapter.Update(ctx, created.ID, domain.ItemPatch{Quantity: &qty})
	require.NoError(t, err)

	assert.Equal(t, int64(5), updated.Quantity)
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, created.Description, updated.Description)
	assert.True(t, created.UnitPrice.Equal(updated.UnitPrice))
}

func TestMySQLUpdate_OutOfRangeRollsBack(t *testing.T) {
	db := getMySQLDB(t)
	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	created, err := adapter.Create(ctx, testItem("mysql-range"))
	require.NoError(t, err)
	defer adapter.Delete(ctx, created.ID)

	name := "renamed"
	qty := int64(1) << 40
	_, err = adapter.Update(ctx, created.ID, domain.ItemPatch{Name: &name, Quantity: &qty})

	var cerr *domain.ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.OutOfRange)
	assert.Equal(t, "quantity", cerr.Field)

	got, err := adapter.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "mysql-range", got.Name)
	assert.Equal(t, int64(10), got.Quantity)
}

func TestMySQLUpdate_NotFound(t *testing.T) {
	db := getMySQLDB(t)
	adapter := NewMySQLAdapter(db)

	qty := int64(1)
	_, err := adapter.Update(context.Background(), -1, domain.ItemPatch{Quantity: &qty})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMySQLDelete(t *testing.T) {
	db := getMySQLDB(t)
	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	created, err := adapter.Create(ctx, testItem("mysql-delete"))
	require.NoError(t, err)

	require.NoError(t, adapter.Delete(ctx, created.ID))
	assert.ErrorIs(t, adapter.Delete(ctx, created.ID), domain.ErrNotFound)

	got, err := adapter.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMySQLListAll(t *testing.T) {
	db := getMySQLDB(t)
	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	a, err := adapter.Create(ctx, testItem("mysql-list-a"))
	require.NoError(t, err)
	defer adapter.Delete(ctx, a.ID)
	b, err := adapter.Create(ctx, testItem("mysql-list-b"))
	require.NoError(t, err)
	defer adapter.Delete(ctx, b.ID)

	items, err := adapter.ListAll(ctx)
	require.NoError(t, err)

	seen := map[int64]int{}
	for _, it := range items {
		seen[it.ID]++
	}
	assert.Equal(t, 1, seen[a.ID])
	assert.Equal(t, 1, seen[b.ID])
}

// rowsAffectedDriver accepts every statement and fails to report affected rows.
type rowsAffectedDriver struct{}

type rowsAffectedConn struct{}

type rowsAffectedResult struct{}

func (rowsAffectedDriver) Open(string) (driver.Conn, error) { return rowsAffectedConn{}, nil }

func (rowsAffectedConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (rowsAffectedConn) Close() error              { return nil }
func (rowsAffectedConn) Begin() (driver.Tx, error) { return nil, errors.New("tx not supported") }

func (rowsAffectedConn) ExecContext(context.Context, string, []driver.NamedValue) (driver.Result, error) {
	return rowsAffectedResult{}, nil
}

func (rowsAffectedResult) LastInsertId() (int64, error) { return 0, nil }
func (rowsAffectedResult) RowsAffected() (int64, error) {
	return 0, errors.New("rows affected unavailable")
}

func init() {
	sql.Register("rows-affected-failing", rowsAffectedDriver{})
}

func TestMySQLDelete_RowsAffectedError(t *testing.T) {
	sqlDB, err := sql.Open("rows-affected-failing", "")
	require.NoError(t, err)
	defer sqlDB.Close()

	adapter := NewMySQLAdapter(sqlx.NewDb(sqlDB, "mysql"))
	err = adapter.Delete(context.Background(), 1)

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "rows affected unavailable")
}
