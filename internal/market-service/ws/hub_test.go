package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_SubscribeAndBroadcast(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", MarketID: "mkt1"}))

	var ack map[string]string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "subscribed", ack["type"])
	assert.Equal(t, 1, hub.Subscribers("mkt1"))

	hub.Broadcast(MarketUpdate{MarketID: "other", Type: "bet_placed"})
	hub.Broadcast(MarketUpdate{MarketID: "mkt1", Type: "market_resolved", Payload: map[string]any{"winner": "A"}})

	var upd MarketUpdate
	require.NoError(t, conn.ReadJSON(&upd))
	assert.Equal(t, "mkt1", upd.MarketID)
	assert.Equal(t, "market_resolved", upd.Type)
}

func TestHub_PingAndUnsubscribe(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", MarketID: "mkt1"}))
	var ack map[string]string
	require.NoError(t, conn.ReadJSON(&ack))

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "unsubscribe", MarketID: "mkt1"}))
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "ping"}))
	var pong map[string]string
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong["type"])
	assert.Equal(t, 0, hub.Subscribers("mkt1"))
}

func TestDecode(t *testing.T) {
	upd, err := Decode([]byte(`{"marketId":"m","type":"market_closed","payload":{"drained":"550"}}`))
	require.NoError(t, err)
	assert.Equal(t, "m", upd.MarketID)
	assert.Equal(t, "market_closed", upd.Type)

	_, err = Decode([]byte(`nope`))
	assert.Error(t, err)
}
