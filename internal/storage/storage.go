package storage

import (
	"encoding/json"
	"errors"
	"strconv"

	"refresh_service/internal/models"
)

const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendRedis     = "redis"

	// ProductsCollection names the collection/table/key prefix holding products.
	ProductsCollection = "products"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnknownBackend  = errors.New("unknown storage backend")
)

// Float reads a numeric document field written by any client: native
// numbers as well as numeric strings. Anything else is treated as absent.
func Float(v any) *float64 {
	var f float64

	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int64:
		f = float64(x)
	case int:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}

	return &f
}

// DecodeHistory decodes the entries of a stored priceHistory array that have
// the {price, date} shape and skips the rest. It is a read-only view: writes
// append to the stored array instead of replacing it with this result.
func DecodeHistory(raw []json.RawMessage) []models.PriceHistoryEntry {
	var history []models.PriceHistoryEntry

	for _, item := range raw {
		var entry struct {
			Price any `json:"price"`
			Date  any `json:"date"`
		}
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}

		e := models.PriceHistoryEntry{}
		if v := Float(entry.Price); v != nil {
			e.Price = *v
		}
		e.Date, _ = entry.Date.(string)

		history = append(history, e)
	}

	return history
}
