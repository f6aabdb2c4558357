package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"refresh_service/internal/models"
	"refresh_service/internal/storage"

	"github.com/redis/go-redis/v9"
)

const scanCount = 100

// RedisRepo keeps each product as a hash under "products:<id>".
type RedisRepo struct {
	client *redis.Client
	prefix string
}

func New(ctx context.Context, address, password string, db int) (*RedisRepo, error) {
	const op = "storage.redis.New"

	rdb := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithClient(rdb), nil
}

func NewWithClient(client *redis.Client) *RedisRepo {
	return &RedisRepo{
		client: client,
		prefix: storage.ProductsCollection + ":",
	}
}

func (r *RedisRepo) key(productID string) string {
	return r.prefix + productID
}

func (r *RedisRepo) Products(ctx context.Context) ([]models.Product, error) {
	const op = "storage.redis.Products"

	var products []models.Product

	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		fields, err := r.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		// the key may have expired or been deleted between SCAN and HGETALL
		if len(fields) == 0 {
			continue
		}

		p, err := productFromHash(strings.TrimPrefix(key, r.prefix), fields)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		products = append(products, p)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return products, nil
}

// UpdateScraped sets price and image and appends one entry to the stored
// priceHistory array, keeping existing entries byte for byte.
func (r *RedisRepo) UpdateScraped(ctx context.Context, productID string, fields models.ScrapedFields) error {
	const op = "storage.redis.UpdateScraped"

	key := r.key(productID)

	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return storage.ErrProductNotFound
	}

	stored, err := r.client.HGet(ctx, key, "priceHistory").Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	history, err := appendHistory(stored, fields.Entry)
	if err != nil {
		return fmt.Errorf("%s: product %s: %w", op, productID, err)
	}

	if err := r.client.HSet(ctx, key,
		"price", fields.Price,
		"image", fields.Image,
		"priceHistory", history,
	).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func appendHistory(stored string, entry models.PriceHistoryEntry) ([]byte, error) {
	var raw []json.RawMessage

	if stored != "" {
		if err := json.Unmarshal([]byte(stored), &raw); err != nil {
			return nil, fmt.Errorf("priceHistory: %w", err)
		}
	}

	next, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}

	return json.Marshal(append(raw, next))
}

// Close закрывает соединение с базой данных.
func (r *RedisRepo) Close() {
	r.client.Close()
}

func productFromHash(id string, fields map[string]string) (models.Product, error) {
	p := models.Product{
		ID:    id,
		Name:  fields["name"],
		Link:  fields["link"],
		Image: fields["image"],
	}

	if v, ok := fields["price"]; ok {
		p.Price = storage.Float(v)
	}
	if v, ok := fields["targetPrice"]; ok {
		p.TargetPrice = storage.Float(v)
	}

	if raw := fields["priceHistory"]; raw != "" {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return p, fmt.Errorf("product %s: priceHistory: %w", id, err)
		}

		p.PriceHistory = storage.DecodeHistory(items)
	}

	return p, nil
}
