package storage_test

import (
	"encoding/json"
	"testing"

	"refresh_service/internal/models"
	"refresh_service/internal/storage"

	"github.com/stretchr/testify/require"
)

func TestFloat(t *testing.T) {
	require.Equal(t, 1.5, *storage.Float(1.5))
	require.Equal(t, 120.0, *storage.Float(int64(120)))
	require.Equal(t, 99.9, *storage.Float("99.9"))
	require.Nil(t, storage.Float("Loading..."))
	require.Nil(t, storage.Float(nil))
	require.Nil(t, storage.Float(true))
}

func TestDecodeHistorySkipsForeignEntries(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`{"price":100,"date":"25-10-01","note":"manual"}`),
		json.RawMessage(`"legacy-entry"`),
		json.RawMessage(`{"price":"90","date":"25-10-02"}`),
	}

	require.Equal(t, []models.PriceHistoryEntry{
		{Price: 100, Date: "25-10-01"},
		{Price: 90, Date: "25-10-02"},
	}, storage.DecodeHistory(raw))
}
