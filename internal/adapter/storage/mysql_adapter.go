package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/rl1809/inventory-api/internal/core/domain"
)

type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

const itemColumns = "id, name, quantity, description, unit_price"

var (
	listItemsQuery  = "SELECT " + itemColumns + " FROM inventory_items ORDER BY id"
	getItemQuery    = "SELECT " + itemColumns + " FROM inventory_items WHERE id = ?"
	lockItemQuery   = getItemQuery + " FOR UPDATE"
	createItemQuery = `
		INSERT INTO inventory_items (name, quantity, description, unit_price)
		VALUES (:name, :quantity, :description, :unit_price)`
	updateItemQuery = `
		UPDATE inventory_items
		SET name = :name, quantity = :quantity, description = :description, unit_price = :unit_price
		WHERE id = :id`
	deleteItemQuery = "DELETE FROM inventory_items WHERE id = ?"
)

type MySQLAdapter struct {
	db *sqlx.DB
}

func NewMySQLAdapter(db *sqlx.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// OpenMySQL connects with strict SQL mode forced on, so out-of-range writes
// fail instead of being clamped by the server.
func OpenMySQL(ctx context.Context, dsn string, opts PoolOptions) (*sqlx.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	cfg.Params["sql_mode"] = "'STRICT_ALL_TABLES'"

	db, err := sqlx.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

func (m *MySQLAdapter) ListAll(ctx context.Context) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	if err := m.db.SelectContext(ctx, &items, listItemsQuery); err != nil {
		return nil, fmt.Errorf("select items: %w", translateMySQLError(err))
	}
	return items, nil
}

func (m *MySQLAdapter) Get(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := m.db.GetContext(ctx, &item, getItemQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select item: %w", translateMySQLError(err))
	}
	return &item, nil
}

func (m *MySQLAdapter) Create(ctx context.Context, input domain.NewItem) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := m.transact(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.NamedExecContext(ctx, createItemQuery, input)
		if err != nil {
			return fmt.Errorf("insert item: %w", translateMySQLError(err))
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		// read back for the column-rounded price
		if err := tx.GetContext(ctx, &item, getItemQuery, id); err != nil {
			return fmt.Errorf("select created item: %w", translateMySQLError(err))
		}
		return nil
	})
	return item, err
}

func (m *MySQLAdapter) Update(ctx context.Context, id int64, patch domain.ItemPatch) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := m.transact(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &item, lockItemQuery, id)
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.NotFoundError{ID: id}
		}
		if err != nil {
			return fmt.Errorf("lock item: %w", translateMySQLError(err))
		}
		if patch.IsEmpty() {
			return nil
		}

		if _, err := tx.NamedExecContext(ctx, updateItemQuery, patch.Apply(item)); err != nil {
			return fmt.Errorf("update item: %w", translateMySQLError(err))
		}
		if err := tx.GetContext(ctx, &item, getItemQuery, id); err != nil {
			return fmt.Errorf("select updated item: %w", translateMySQLError(err))
		}
		return nil
	})
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return item, nil
}

func (m *MySQLAdapter) Delete(ctx context.Context, id int64) error {
	result, err := m.db.ExecContext(ctx, deleteItemQuery, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", translateMySQLError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item rows affected: %w", translateMySQLError(err))
	}
	if rows == 0 {
		return &domain.NotFoundError{ID: id}
	}
	return nil
}

func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return translateMySQLError(m.db.PingContext(ctx))
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	ddl, err := SchemaDDL(DriverMySQL)
	if err != nil {
		return err
	}
	if _, err := m.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table: %w", translateMySQLError(err))
	}
	return nil
}

// transact commits when fn succeeds and rolls back otherwise.
func (m *MySQLAdapter) transact(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", translateMySQLError(err))
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", translateMySQLError(err))
	}
	return nil
}
