package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func echo(name string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(name + " " + r.URL.Path + "?" + r.URL.RawQuery))
	}))
}

func TestGateway_Routes(t *testing.T) {
	market := echo("market")
	defer market.Close()
	wallet := echo("wallet")
	defer wallet.Close()

	h, err := New(Targets{Market: market.URL, Wallet: wallet.URL}, zap.NewNop())
	require.NoError(t, err)

	cases := map[string]string{
		"/api/markets/abc/escrow": "market /v1/markets/abc/escrow?",
		"/api/markets":            "market /v1/markets?",
		"/api/wallet?account=bob": "wallet /wallet?account=bob",
		"/api/wallet/deposit":     "wallet /wallet/deposit?",
	}
	for path, want := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, rec.Body.String(), path)
	}
}

func TestGateway_CORSPreflight(t *testing.T) {
	h, err := New(Targets{Market: "http://localhost:1", Wallet: "http://localhost:2"}, zap.NewNop())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/api/markets", nil)
	req.Header.Set("Origin", "http://front.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGateway_InvalidTarget(t *testing.T) {
	_, err := New(Targets{Market: "::", Wallet: "http://localhost:2"}, zap.NewNop())
	assert.Error(t, err)
}

func TestGateway_UpstreamDown(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()

	h, err := New(Targets{Market: url, Wallet: url}, zap.NewNop())
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/x", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
