package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/radieske/escrow-bet-market/pkg/contracts/events"
)

// messageWriter é o que o publisher usa de *kafka.Writer
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	Writer messageWriter
	Topic  string
}

func NewKafkaPublisher(w *kafka.Writer, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Topic: topic}
}

// Publish envia o evento com chave = market id (ordem por mercado na partição)
func (p *KafkaPublisher) Publish(ctx context.Context, e events.MarketEvent) error {
	if e.Ts.IsZero() {
		e.Ts = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal market event")
	}
	msg := kafka.Message{
		Key:   []byte(e.MarketID),
		Value: b,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	return errors.Wrapf(p.Writer.WriteMessages(ctx, msg), "publish %s", e.Type)
}
