package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/radieske/escrow-bet-market/pkg/contracts/events"
)

// PostgresRepo persiste a projeção dos mercados: snapshot corrente e histórico de eventos
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo retorna uma instância de repositório Postgres
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// UpsertSnapshot grava o snapshot corrente do mercado
// Só sobrescreve se a versão do snapshot não for menor que a gravada (reentrega fora de ordem)
func (r *PostgresRepo) UpsertSnapshot(ctx context.Context, e events.MarketEvent) error {
	b, err := json.Marshal(e.Snapshot)
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}
	const q = `
		INSERT INTO market_snapshots (market_id, snapshot, last_event_type, version, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (market_id) DO UPDATE SET
		  snapshot        = EXCLUDED.snapshot,
		  last_event_type = EXCLUDED.last_event_type,
		  version         = EXCLUDED.version,
		  updated_at      = EXCLUDED.updated_at
		WHERE market_snapshots.version <= EXCLUDED.version
	`
	_, err = r.DB.ExecContext(ctx, q, e.MarketID, b, e.Type, int64(e.Snapshot.Version), e.Ts)
	return errors.Wrap(err, "upsert snapshot")
}

// InsertHistory insere o evento no histórico; event_id repetido é ignorado
func (r *PostgresRepo) InsertHistory(ctx context.Context, e events.MarketEvent) error {
	b, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	var betID sql.NullString
	if e.Bet != nil {
		betID = sql.NullString{String: e.Bet.BetID, Valid: true}
	}
	const q = `
		INSERT INTO market_events
		  (event_id, market_id, type, actor, bet_id, amount, payload, ts)
		VALUES
		  ($1,$2,$3,$4,$5,NULLIF($6,'')::numeric,$7,$8)
		ON CONFLICT (event_id) DO NOTHING
	`
	_, err = r.DB.ExecContext(ctx, q, e.EventID, e.MarketID, e.Type, e.Actor, betID, e.Amount, b, e.Ts)
	return errors.Wrap(err, "insert history")
}
