package price_test

import (
	"testing"

	"refresh_service/internal/lib/price"

	"github.com/stretchr/testify/require"
)

func TestParseStripsCurrencyAndSeparators(t *testing.T) {
	v, ok := price.Parse(" ₹1,29,999 ")
	require.True(t, ok)
	require.Equal(t, 129999.0, v)

	v, ok = price.Parse("1,299.")
	require.True(t, ok)
	require.Equal(t, 1299.0, v)

	v, ok = price.Parse("499.50")
	require.True(t, ok)
	require.Equal(t, 499.5, v)
}

func TestParseRejectsNonNumericText(t *testing.T) {
	for _, in := range []string{"N/A", "", "  ", "₹", "Currently unavailable."} {
		_, ok := price.Parse(in)
		require.False(t, ok, "input %q", in)
		require.Nil(t, price.Ptr(in), "input %q", in)
	}
}

func TestPtrKeepsZero(t *testing.T) {
	p := price.Ptr("0")
	require.NotNil(t, p)
	require.Equal(t, 0.0, *p)
}
