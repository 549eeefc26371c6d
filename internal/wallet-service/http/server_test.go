package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/escrow-bet-market/internal/engine"
	"github.com/radieske/escrow-bet-market/internal/engine/memstore"
	"github.com/radieske/escrow-bet-market/internal/shared/auth"
	"github.com/radieske/escrow-bet-market/internal/wallet-service/dto"
)

// memRepo adapta o memstore ao Repo da carteira
type memRepo struct{ s *memstore.Store }

func (m memRepo) GetAccount(_ context.Context, account string) (engine.Account, bool, error) {
	a, ok := m.s.Account(account)
	return a, ok, nil
}

func (m memRepo) Deposit(_ context.Context, account string, amount uint64, _ string) (uint64, error) {
	if err := m.s.Deposit(account, amount); err != nil {
		return 0, err
	}
	a, _ := m.s.Account(account)
	return a.Balance, nil
}

func (m memRepo) Transfer(ctx context.Context, from, to string, amount uint64, signer, memo string) error {
	return m.s.Atomically(ctx, func(tx engine.Tx) error {
		return tx.Transfer(ctx, from, to, amount, signer, memo)
	})
}

type walletHarness struct {
	t   *testing.T
	jwt auth.JWT
	h   http.Handler
}

func newWallet(t *testing.T) *walletHarness {
	j := auth.JWT{Secret: []byte("test"), TokenTTL: time.Hour}
	return &walletHarness{t: t, jwt: j, h: NewServer(zap.NewNop(), memRepo{memstore.New()}, j).Router()}
}

func (w *walletHarness) do(method, path, caller string, body any) *httptest.ResponseRecorder {
	w.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(w.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if caller != "" {
		tok, err := w.jwt.SignFor(caller)
		require.NoError(w.t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	w.h.ServeHTTP(rec, req)
	return rec
}

func TestWallet_DepositTransferBalance(t *testing.T) {
	w := newWallet(t)

	rec := w.do(http.MethodPost, "/wallet/deposit", "alice", dto.DepositRequest{Amount: 500})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = w.do(http.MethodPost, "/wallet/transfer", "alice", dto.TransferRequest{To: "bob", Amount: 200})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = w.do(http.MethodGet, "/wallet?account=bob", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var acc dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acc))
	assert.Equal(t, "200", acc.Balance)
	assert.Equal(t, "bob", acc.Owner)

	rec = w.do(http.MethodGet, "/wallet?account=alice", "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acc))
	assert.Equal(t, "300", acc.Balance)
}

func TestWallet_Errors(t *testing.T) {
	w := newWallet(t)
	require.Equal(t, http.StatusOK, w.do(http.MethodPost, "/wallet/deposit", "alice", dto.DepositRequest{Amount: 10}).Code)

	cases := []struct {
		name   string
		method string
		path   string
		caller string
		body   any
		status int
	}{
		{"sem conta", http.MethodGet, "/wallet", "", nil, http.StatusBadRequest},
		{"depósito sem token", http.MethodPost, "/wallet/deposit", "", dto.DepositRequest{Amount: 1}, http.StatusUnauthorized},
		{"depósito zero", http.MethodPost, "/wallet/deposit", "alice", dto.DepositRequest{}, http.StatusBadRequest},
		{"saldo insuficiente", http.MethodPost, "/wallet/transfer", "alice", dto.TransferRequest{To: "bob", Amount: 11}, http.StatusUnprocessableEntity},
		{"conta inexistente", http.MethodPost, "/wallet/transfer", "carol", dto.TransferRequest{To: "bob", Amount: 1}, http.StatusNotFound},
		{"sem destino", http.MethodPost, "/wallet/transfer", "alice", dto.TransferRequest{Amount: 1}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := w.do(tc.method, tc.path, tc.caller, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestWallet_UnknownAccountHasZeroBalance(t *testing.T) {
	w := newWallet(t)
	rec := w.do(http.MethodGet, "/wallet?account=ninguem", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var acc dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acc))
	assert.Equal(t, "0", acc.Balance)
}
