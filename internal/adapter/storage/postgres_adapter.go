package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rl1809/inventory-api/internal/core/domain"
)

// Parameters are cast to wide types so range checks happen on assignment to
// the column, inside the server, rather than in the client encoder.
var (
	pgListItemsQuery  = "SELECT " + itemColumns + " FROM inventory_items ORDER BY id"
	pgGetItemQuery    = "SELECT " + itemColumns + " FROM inventory_items WHERE id = $1"
	pgLockItemQuery   = pgGetItemQuery + " FOR UPDATE"
	pgCreateItemQuery = `
		INSERT INTO inventory_items (name, quantity, description, unit_price)
		VALUES ($1, $2::bigint, $3, $4::numeric)
		RETURNING ` + itemColumns
	pgUpdateItemQuery = `
		UPDATE inventory_items
		SET name = $2, quantity = $3::bigint, description = $4, unit_price = $5::numeric
		WHERE id = $1
		RETURNING ` + itemColumns
	pgDeleteItemQuery = "DELETE FROM inventory_items WHERE id = $1"
)

type PostgresAdapter struct {
	pool *pgxpool.Pool
}

func NewPostgresAdapter(pool *pgxpool.Pool) *PostgresAdapter {
	return &PostgresAdapter{pool: pool}
}

func OpenPostgres(ctx context.Context, connStr string, opts PoolOptions) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		config.MaxConns = int32(opts.MaxOpenConns)
	}
	if opts.ConnMaxLifetime > 0 {
		config.MaxConnLifetime = opts.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return pool, nil
}

func (p *PostgresAdapter) ListAll(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := p.pool.Query(ctx, pgListItemsQuery)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", translatePgError(err))
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.InventoryItem])
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", translatePgError(err))
	}
	return items, nil
}

func (p *PostgresAdapter) Get(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	rows, err := p.pool.Query(ctx, pgGetItemQuery, id)
	if err != nil {
		return nil, fmt.Errorf("select item: %w", translatePgError(err))
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.InventoryItem])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", translatePgError(err))
	}
	return &item, nil
}

func (p *PostgresAdapter) Create(ctx context.Context, input domain.NewItem) (domain.InventoryItem, error) {
	rows, err := p.pool.Query(ctx, pgCreateItemQuery,
		input.Name, input.Quantity, input.Description, input.UnitPrice,
	)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("insert item: %w", translatePgError(err))
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.InventoryItem])
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("insert item: %w", translatePgError(err))
	}
	return item, nil
}

func (p *PostgresAdapter) Update(ctx context.Context, id int64, patch domain.ItemPatch) (domain.InventoryItem, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("begin tx: %w", translatePgError(err))
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, pgLockItemQuery, id)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("lock item: %w", translatePgError(err))
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.InventoryItem])
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.InventoryItem{}, &domain.NotFoundError{ID: id}
	}
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("lock item: %w", translatePgError(err))
	}

	if !patch.IsEmpty() {
		next := patch.Apply(item)
		rows, err = tx.Query(ctx, pgUpdateItemQuery,
			id, next.Name, next.Quantity, next.Description, next.UnitPrice,
		)
		if err != nil {
			return domain.InventoryItem{}, fmt.Errorf("update item: %w", translatePgError(err))
		}
		item, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.InventoryItem])
		if err != nil {
			return domain.InventoryItem{}, fmt.Errorf("update item: %w", translatePgError(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("commit: %w", translatePgError(err))
	}
	return item, nil
}

func (p *PostgresAdapter) Delete(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, pgDeleteItemQuery, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", translatePgError(err))
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{ID: id}
	}
	return nil
}

func (p *PostgresAdapter) Ping(ctx context.Context) error {
	return translatePgError(p.pool.Ping(ctx))
}

func (p *PostgresAdapter) EnsureSchema(ctx context.Context) error {
	ddl, err := SchemaDDL(DriverPostgres)
	if err != nil {
		return err
	}
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table: %w", translatePgError(err))
	}
	return nil
}
