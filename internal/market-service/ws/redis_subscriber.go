package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StartRedisSubscriber escuta o canal Pub/Sub alimentado pelo projector
// e repassa cada atualização aos clientes inscritos no mercado
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg == nil {
					continue
				}
				upd, err := Decode([]byte(msg.Payload))
				if err != nil {
					log.Warn("ws subscriber decode failed", zap.Error(err))
					continue
				}
				hub.Broadcast(upd)
			}
		}
	}()
}

// Decode lê uma atualização publicada no canal
func Decode(b []byte) (MarketUpdate, error) {
	var upd MarketUpdate
	err := json.Unmarshal(b, &upd)
	return upd, err
}
