package engine

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/radieske/escrow-bet-market/internal/engine/keys"
)

// OpenMarketParams são os argumentos de abertura de mercado
type OpenMarketParams struct {
	Admin    string
	League   string
	Season   string
	Outcomes []string
	Odds     []uint64
	Limits   *Limits // obrigatório na política bounded, ausente na accumulating
}

// OpenMarket cria o mercado e sua conta de custódia. Na política bounded o admin
// transfere a reserva de pior caso para a custódia na mesma unidade de trabalho.
func (e *Engine) OpenMarket(ctx context.Context, p OpenMarketParams) (*Market, error) {
	if err := validateShape(p.League, p.Season, p.Outcomes, p.Odds); err != nil {
		return nil, err
	}
	funding, reserve, err := newFunding(e.policy, p.Limits, p.Odds)
	if err != nil {
		return nil, err
	}

	addr, bump, err := e.keys.MarketAddress(p.League, p.Season)
	if err != nil {
		return nil, errors.Wrap(err, "derive market address")
	}
	vault, _, err := e.keys.VaultAddress(addr)
	if err != nil {
		return nil, errors.Wrap(err, "derive vault address")
	}

	m := &Market{
		Address:         addr,
		Admin:           p.Admin,
		League:          p.League,
		Season:          p.Season,
		Outcomes:        append([]string(nil), p.Outcomes...),
		Odds:            append([]uint64(nil), p.Odds...),
		Funding:         funding,
		Vault:           vault,
		PayoutByOutcome: make([]uint64, len(p.Outcomes)),
		CreatedAt:       e.now(),
		Bump:            bump,
		Version:         1,
	}

	err = e.store.Atomically(ctx, func(tx Tx) error {
		if _, err := tx.Market(ctx, addr); err == nil {
			return ErrMarketExists
		} else if !errors.Is(err, ErrMarketNotFound) {
			return err
		}
		if reserve > 0 {
			bal, err := tx.Balance(ctx, p.Admin)
			if err != nil {
				return err
			}
			if bal < reserve {
				return &Error{Code: CodeInsufficientBalance, Message: fmt.Sprintf("reserve %d exceeds admin balance %d", reserve, bal)}
			}
		}

		if err := tx.InsertMarket(ctx, m); err != nil {
			return err
		}
		// a custódia pertence ao endereço do mercado; créditos feitos antes da
		// abertura ficam na custódia
		if err := tx.AdoptAccount(ctx, vault.String(), addr.String()); err != nil {
			return err
		}
		if reserve > 0 {
			return tx.Transfer(ctx, p.Admin, vault.String(), reserve, p.Admin, "reserve:"+addr.String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("market opened",
		zap.String("market", addr.String()),
		zap.String("admin", p.Admin),
		zap.String("league", p.League),
		zap.String("season", p.Season),
		zap.String("policy", string(funding.Kind())),
		zap.Uint64("reserve", reserve),
	)
	return m.Clone(), nil
}

// ResolveMarket declara o resultado vencedor. Só o admin, uma única vez.
func (e *Engine) ResolveMarket(ctx context.Context, admin string, market keys.Address, winningIndex uint8) (*Market, error) {
	var out *Market
	err := e.store.Atomically(ctx, func(tx Tx) error {
		m, err := tx.Market(ctx, market)
		if err != nil {
			return err
		}
		if err := requireAdmin(m, admin); err != nil {
			return err
		}
		if m.Closed {
			return ErrMarketClosed
		}
		if m.Resolved {
			return ErrMarketResolved
		}
		if !m.ValidIndex(winningIndex) {
			return &Error{Code: CodeInvalidTeamIndex, Message: fmt.Sprintf("index %d, market has %d outcomes", winningIndex, len(m.Outcomes))}
		}

		now := e.now()
		w := winningIndex
		m.Resolved = true
		m.WinningIndex = &w
		m.ResolvedAt = &now
		m.UnclaimedPayout = m.PayoutByOutcome[winningIndex]
		m.Version++
		if err := tx.UpdateMarket(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	winner, _ := out.Winner()
	e.log.Info(fmt.Sprintf("Market resolved: outcome %d wins %s", winningIndex, winner),
		zap.String("market", market.String()),
		zap.Uint64("unclaimed_payout", out.UnclaimedPayout),
	)
	return out.Clone(), nil
}

// CloseResult descreve o fechamento: mercado final e quanto voltou ao admin
type CloseResult struct {
	Market  *Market
	Drained uint64
}

// CloseMarket drena a custódia para o admin e fecha a conta. Exige mercado
// resolvido; com payouts vencedores pendentes, exige que a janela de saque tenha passado.
func (e *Engine) CloseMarket(ctx context.Context, admin string, market keys.Address) (*CloseResult, error) {
	var res CloseResult
	err := e.store.Atomically(ctx, func(tx Tx) error {
		m, err := tx.Market(ctx, market)
		if err != nil {
			return err
		}
		if err := requireAdmin(m, admin); err != nil {
			return err
		}
		if !m.Resolved {
			return ErrMarketNotResolved
		}
		if m.Closed {
			return ErrMarketClosed
		}
		now := e.now()
		if m.UnclaimedPayout > 0 && now.Before(m.ResolvedAt.Add(e.claimWindow)) {
			return &Error{Code: CodeClaimsOutstanding, Message: fmt.Sprintf(
				"%d unclaimed until %s", m.UnclaimedPayout, m.ResolvedAt.Add(e.claimWindow).Format("2006-01-02T15:04:05Z07:00"))}
		}
		authority, err := e.marketAuthority(m)
		if err != nil {
			return err
		}

		vault := m.Vault.String()
		bal, err := tx.Balance(ctx, vault)
		if err != nil {
			return err
		}
		if bal > 0 {
			if err := tx.Transfer(ctx, vault, admin, bal, authority, "close:"+market.String()); err != nil {
				return err
			}
		}
		if err := tx.CloseAccount(ctx, vault, authority); err != nil {
			return err
		}

		m.Closed = true
		m.ClosedAt = &now
		m.Version++
		if err := tx.UpdateMarket(ctx, m); err != nil {
			return err
		}
		res = CloseResult{Market: m, Drained: bal}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info(fmt.Sprintf("Market closed for betting: %s %s", res.Market.League, res.Market.Season),
		zap.String("market", market.String()),
		zap.Uint64("drained", res.Drained),
	)
	res.Market = res.Market.Clone()
	return &res, nil
}
