package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/escrow-bet-market/internal/market-service/ws"
	"github.com/radieske/escrow-bet-market/pkg/contracts/events"
)

type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel}
}

// Publish envia o evento no formato que o hub WS do market-service espera
func (b *RedisBroadcaster) Publish(ctx context.Context, e events.MarketEvent) error {
	payload, err := Encode(e)
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, payload).Err()
}

// Encode monta a mensagem do canal a partir do evento
func Encode(e events.MarketEvent) ([]byte, error) {
	return json.Marshal(ws.MarketUpdate{MarketID: e.MarketID, Type: e.Type, Payload: e})
}
