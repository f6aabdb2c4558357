package redis

import (
	"testing"

	"refresh_service/internal/models"

	"github.com/stretchr/testify/require"
)

func TestProductFromHash(t *testing.T) {
	p, err := productFromHash("p1", map[string]string{
		"name":         "Kettle",
		"link":         "http://example/item",
		"price":        "100",
		"targetPrice":  "80",
		"image":        "/spinner.gif",
		"priceHistory": `[{"price":100,"date":"25-10-18"}]`,
	})
	require.NoError(t, err)

	require.Equal(t, "p1", p.ID)
	require.Equal(t, 100.0, *p.Price)
	require.Equal(t, 80.0, *p.TargetPrice)
	require.Equal(t, []models.PriceHistoryEntry{{Price: 100, Date: "25-10-18"}}, p.PriceHistory)
}

func TestProductFromHashWithoutOptionalFields(t *testing.T) {
	p, err := productFromHash("p2", map[string]string{"name": "Lamp"})
	require.NoError(t, err)

	require.Nil(t, p.Price)
	require.Empty(t, p.Link)
	require.Empty(t, p.PriceHistory)
}

func TestProductFromHashSkipsLegacyEntries(t *testing.T) {
	p, err := productFromHash("p4", map[string]string{
		"priceHistory": `[{"price":100,"date":"25-10-01"},"legacy-entry"]`,
	})
	require.NoError(t, err)
	require.Equal(t, []models.PriceHistoryEntry{{Price: 100, Date: "25-10-01"}}, p.PriceHistory)
}

func TestProductFromHashBrokenHistory(t *testing.T) {
	_, err := productFromHash("p3", map[string]string{"priceHistory": "{"})
	require.Error(t, err)
}

func TestKey(t *testing.T) {
	r := NewWithClient(nil)
	require.Equal(t, "products:abc", r.key("abc"))
}

func TestAppendHistoryKeepsStoredEntries(t *testing.T) {
	stored := `[{"price":100,"date":"25-10-01","note":"manual"},"legacy-entry"]`

	got, err := appendHistory(stored, models.PriceHistoryEntry{Price: 95, Date: "25-10-18"})
	require.NoError(t, err)
	require.JSONEq(t, `[
		{"price":100,"date":"25-10-01","note":"manual"},
		"legacy-entry",
		{"price":95,"date":"25-10-18"}
	]`, string(got))
}

func TestAppendHistoryEmpty(t *testing.T) {
	got, err := appendHistory("", models.PriceHistoryEntry{Price: 1, Date: "25-10-18"})
	require.NoError(t, err)
	require.JSONEq(t, `[{"price":1,"date":"25-10-18"}]`, string(got))
}

func TestAppendHistoryRejectsBrokenHistory(t *testing.T) {
	_, err := appendHistory("{", models.PriceHistoryEntry{})
	require.Error(t, err)
}
