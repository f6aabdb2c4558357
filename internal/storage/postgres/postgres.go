package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"refresh_service/internal/config"
	"refresh_service/internal/models"
	"refresh_service/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.Postgres) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	poolConfig, err := pgxpool.ParseConfig(dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: ping failed: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

type productRow struct {
	ID           string            `db:"id"`
	Name         string            `db:"name"`
	Link         *string           `db:"link"`
	Price        *float64          `db:"price"`
	TargetPrice  *float64          `db:"target_price"`
	Image        *string           `db:"image"`
	PriceHistory []json.RawMessage `db:"price_history"`
}

// * Products возвращает все продукты для прохода обновления
func (r *PostgresRepo) Products(ctx context.Context) ([]models.Product, error) {
	const op = "storage.postgres.Products"

	const query = `
		SELECT id, name, link, price, target_price, image, price_history
		FROM products
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, fmt.Errorf("%s: collect: %w", op, err)
	}

	products := make([]models.Product, 0, len(collected))
	for _, row := range collected {
		products = append(products, row.toModel())
	}

	return products, nil
}

// * UpdateScraped обновляет цену и картинку и дописывает запись в конец истории цен
func (r *PostgresRepo) UpdateScraped(ctx context.Context, productID string, fields models.ScrapedFields) error {
	const op = "storage.postgres.UpdateScraped"

	entry, err := json.Marshal(fields.Entry)
	if err != nil {
		return fmt.Errorf("%s: marshal entry: %w", op, err)
	}

	cmd, err := r.pool.Exec(ctx, updateScrapedQuery, fields.Price, fields.Image, entry, productID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmd.RowsAffected() == 0 {
		return storage.ErrProductNotFound
	}

	return nil
}

// * историю не перезаписываем: новая запись добавляется к тому, что уже лежит в jsonb
const updateScrapedQuery = `
	UPDATE products
	SET price = $1,
		image = $2,
		price_history = COALESCE(price_history, '[]'::jsonb) || jsonb_build_array($3::jsonb)
	WHERE id = $4
`

// * Close закрывает соединение с базой данных.
func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func (row productRow) toModel() models.Product {
	p := models.Product{
		ID:           row.ID,
		Name:         row.Name,
		Price:        row.Price,
		TargetPrice:  row.TargetPrice,
		PriceHistory: storage.DecodeHistory(row.PriceHistory),
	}

	if row.Link != nil {
		p.Link = *row.Link
	}
	if row.Image != nil {
		p.Image = *row.Image
	}

	return p
}

// * dsn формирует конфигурацию базы данных.
func dsn(cfg config.Postgres) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}
