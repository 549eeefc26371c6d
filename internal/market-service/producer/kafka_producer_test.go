package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/escrow-bet-market/pkg/contracts/events"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (c *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	c.msgs = append(c.msgs, msgs...)
	return c.err
}

func TestPublish_KeysByMarket(t *testing.T) {
	w := &captureWriter{}
	p := &KafkaPublisher{Writer: w, Topic: "market_events"}

	ev := events.NewMarketEvent(events.TypeMarketResolved, "admin", events.MarketSnapshot{MarketID: "mkt1"})
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "mkt1", string(w.msgs[0].Key))
	assert.Equal(t, "type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, events.TypeMarketResolved, string(w.msgs[0].Headers[0].Value))

	var got events.MarketEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, ev.EventID, got.EventID)
	assert.Equal(t, "admin", got.Actor)
}

func TestPublish_WrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := &KafkaPublisher{Writer: &captureWriter{err: boom}}

	err := p.Publish(context.Background(), events.MarketEvent{Type: events.TypeBetPlaced})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "publish bet_placed")
}
