package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/escrow-bet-market/internal/market-service/ws"
	"github.com/radieske/escrow-bet-market/pkg/contracts/events"
)

func TestEncode_MatchesHubFormat(t *testing.T) {
	ev := events.NewMarketEvent(events.TypePayoutClaimed, "bettor1", events.MarketSnapshot{MarketID: "mkt1"})
	ev.Amount = "200"

	b, err := Encode(ev)
	require.NoError(t, err)

	upd, err := ws.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "mkt1", upd.MarketID)
	assert.Equal(t, events.TypePayoutClaimed, upd.Type)
	payload, ok := upd.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "200", payload["amount"])
}
