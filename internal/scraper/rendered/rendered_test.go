package rendered

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"refresh_service/internal/models"

	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewAppliesDefaults(t *testing.T) {
	f := New(discard(), Options{UserAgent: "ua"})

	require.Equal(t, DefaultSettleDelay, f.opts.SettleDelay)
	require.Equal(t, DefaultFieldTimeout, f.opts.FieldTimeout)
	require.Len(t, f.allocatorOptions(), len(New(discard(), Options{}).allocatorOptions()))
	require.Len(t, New(discard(), Options{ExecPath: "/usr/bin/chromium"}).allocatorOptions(), len(f.allocatorOptions())+1)
}

func TestFetchReturnsErrorWhenBrowserCannotStart(t *testing.T) {
	f := New(discard(), Options{
		UserAgent: "ua",
		ExecPath:  filepath.Join(t.TempDir(), "no-chrome"),
	})

	res, err := f.Fetch(context.Background(), "http://example/item")
	require.Error(t, err)
	require.Nil(t, res)
}

// chromePath finds a local Chrome for the browser-backed tests.
func chromePath(t *testing.T) string {
	t.Helper()

	if p := os.Getenv("CHROME_PATH"); p != "" {
		return p
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}

	t.Skip("chrome not found, set CHROME_PATH to run browser tests")

	return ""
}

func servePage(t *testing.T, html string) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, html)
	}))
	t.Cleanup(srv.Close)

	return srv.URL
}

func fetchPage(t *testing.T, html string) *models.ScrapeResult {
	t.Helper()

	f := New(discard(), Options{
		UserAgent:    "ua",
		SettleDelay:  100 * time.Millisecond,
		FieldTimeout: 300 * time.Millisecond,
		ExecPath:     chromePath(t),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := f.Fetch(ctx, servePage(t, html))
	require.NoError(t, err)
	require.NotNil(t, res)

	return res
}

func TestFetchReadsScriptRenderedPrice(t *testing.T) {
	res := fetchPage(t, `<html><body>
<img id="landingImage" src="https://img.example/a.jpg">
<div id="buybox"></div>
<script>
  var s = document.createElement("span");
  s.className = "a-price-whole";
  s.textContent = "₹1,299.";
  document.getElementById("buybox").appendChild(s);
</script>
</body></html>`)

	require.NotNil(t, res.Price)
	require.Equal(t, 1299.0, *res.Price)
	require.Equal(t, "https://img.example/a.jpg", res.Image)
}

func TestFetchFallsBackToOldHires(t *testing.T) {
	res := fetchPage(t, `<html><body>
<span class="a-price-whole">499</span>
<img id="landingImage" data-old-hires="https://img.example/hires.jpg">
</body></html>`)

	require.NotNil(t, res.Price)
	require.Equal(t, 499.0, *res.Price)
	require.Equal(t, "https://img.example/hires.jpg", res.Image)
}

func TestFetchLeavesMissingPriceAbsent(t *testing.T) {
	res := fetchPage(t, `<html><body>
<img id="landingImage" src="https://img.example/b.jpg">
</body></html>`)

	require.Nil(t, res.Price)
	require.Equal(t, "https://img.example/b.jpg", res.Image)
}
