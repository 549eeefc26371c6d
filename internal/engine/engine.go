package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/escrow-bet-market/internal/engine/keys"
)

// Config define a política do deployment e a janela de saque
type Config struct {
	Policy PolicyKind
	// ClaimWindow é quanto tempo após a resolução o admin precisa esperar para
	// fechar um mercado com payouts vencedores ainda não sacados.
	// Zero libera o fechamento logo após a resolução.
	ClaimWindow time.Duration
	Now         func() time.Time
}

// Engine aplica as transições de mercado e aposta sobre um Store
type Engine struct {
	store       Store
	keys        *keys.Deriver
	policy      PolicyKind
	claimWindow time.Duration
	now         func() time.Time
	log         *zap.Logger
}

// New cria o engine; log nil desativa o logging
func New(store Store, deriver *keys.Deriver, cfg Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	policy := cfg.Policy
	if policy == "" {
		policy = PolicyBounded
	}
	return &Engine{
		store:       store,
		keys:        deriver,
		policy:      policy,
		claimWindow: cfg.ClaimWindow,
		now:         func() time.Time { return now().UTC() },
		log:         log,
	}
}

// Policy retorna a política de financiamento do deployment
func (e *Engine) Policy() PolicyKind { return e.policy }

// Market lê um mercado
func (e *Engine) Market(ctx context.Context, addr keys.Address) (*Market, error) {
	var out *Market
	err := e.store.Atomically(ctx, func(tx Tx) error {
		m, err := tx.Market(ctx, addr)
		if err != nil {
			return err
		}
		out = m
		return nil
	})
	return out, err
}

// Bet lê uma aposta
func (e *Engine) Bet(ctx context.Context, addr keys.Address) (*Bet, error) {
	var out *Bet
	err := e.store.Atomically(ctx, func(tx Tx) error {
		b, err := tx.Bet(ctx, addr)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// MarketAddress deriva o endereço do mercado para liga/temporada
func (e *Engine) MarketAddress(league, season string) (keys.Address, error) {
	a, _, err := e.keys.MarketAddress(league, season)
	return a, err
}

// BetAddress deriva o endereço da aposta de um apostador em um mercado
func (e *Engine) BetAddress(bettor string, market keys.Address) (keys.Address, error) {
	a, _, err := e.keys.BetAddress(bettor, market)
	return a, err
}
