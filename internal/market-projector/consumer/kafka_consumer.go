package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/escrow-bet-market/pkg/contracts/events"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Projection interface {
	UpsertSnapshot(ctx context.Context, e events.MarketEvent) error
	InsertHistory(ctx context.Context, e events.MarketEvent) error
}

type SnapshotCache interface {
	Set(ctx context.Context, s events.MarketSnapshot) error
}

type Broadcaster interface {
	Publish(ctx context.Context, e events.MarketEvent) error
}

// Processor consome eventos de mercado do Kafka, atualiza cache e projeção
// no Postgres e repassa ao WS via Redis Pub/Sub
type Processor struct {
	Log         *zap.Logger
	Reader      MessageReader
	DLQ         MessageWriter // mensagens que não decodificam
	Repo        Projection
	Cache       SnapshotCache
	Broadcaster Broadcaster

	OnConsumed func()       // métricas (counter++)
	OnCached   func()       // métricas
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		p.Handle(ctx, m)
	}
}

// Handle processa uma mensagem; falhas de cache e broadcast não bloqueiam a persistência
func (p *Processor) Handle(ctx context.Context, m kafka.Message) {
	if p.OnConsumed != nil {
		p.OnConsumed()
	}

	var ev events.MarketEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil || ev.MarketID == "" || ev.EventID == "" {
		p.Log.Warn("invalid message", zap.Error(err), zap.ByteString("key", m.Key))
		p.fail("decode")
		p.deadLetter(ctx, m)
		return
	}

	if err := p.Cache.Set(ctx, ev.Snapshot); err != nil {
		p.Log.Warn("redis set failed", zap.String("market", ev.MarketID), zap.Error(err))
		p.fail("cache")
	} else if p.OnCached != nil {
		p.OnCached()
	}

	if err := p.Repo.InsertHistory(ctx, ev); err != nil {
		p.Log.Warn("db insert history failed", zap.String("market", ev.MarketID), zap.Error(err))
		p.fail("db_history")
		return
	}
	if err := p.Repo.UpsertSnapshot(ctx, ev); err != nil {
		p.Log.Warn("db upsert failed", zap.String("market", ev.MarketID), zap.Error(err))
		p.fail("db_upsert")
		return
	}
	if p.OnPersist != nil {
		p.OnPersist()
	}

	if p.Broadcaster != nil {
		bctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		if err := p.Broadcaster.Publish(bctx, ev); err != nil {
			p.Log.Warn("ws broadcast publish failed", zap.Error(err))
			p.fail("broadcast")
		}
	}
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	msg := kafka.Message{Key: m.Key, Value: m.Value, Headers: append(m.Headers, kafka.Header{Key: "reason", Value: []byte("decode")})}
	if err := p.DLQ.WriteMessages(ctx, msg); err != nil {
		p.Log.Warn("dlq write failed", zap.Error(err))
		p.fail("dlq")
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
