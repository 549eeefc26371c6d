package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/radieske/escrow-bet-market/internal/engine/keys"
)

// PlaceBetParams são os argumentos de uma aposta
type PlaceBetParams struct {
	Bettor       string
	Market       keys.Address
	OutcomeIndex uint8
	Amount       uint64
}

// PlaceBet cria a aposta com payout fixo e move o valor para a custódia.
// As checagens seguem a ordem: resolvido, fechado, valor, vagas/limite,
// saldo, índice; a chave derivada garante uma aposta por apostador.
func (e *Engine) PlaceBet(ctx context.Context, p PlaceBetParams) (*Bet, error) {
	var out *Bet
	err := e.store.Atomically(ctx, func(tx Tx) error {
		m, err := tx.Market(ctx, p.Market)
		if err != nil {
			return err
		}
		if m.Resolved {
			return ErrMarketResolved
		}
		if m.Closed {
			return ErrMarketClosed
		}
		if p.Amount == 0 {
			return ErrInvalidBetAmount
		}
		if err := admit(m.Funding, p.Amount); err != nil {
			return err
		}
		bal, err := tx.Balance(ctx, p.Bettor)
		if err != nil {
			return err
		}
		if bal < p.Amount {
			return &Error{Code: CodeInsufficientBalance, Message: fmt.Sprintf("balance %d below stake %d", bal, p.Amount)}
		}
		if !m.ValidIndex(p.OutcomeIndex) {
			return &Error{Code: CodeInvalidTeamIndex, Message: fmt.Sprintf("index %d, market has %d outcomes", p.OutcomeIndex, len(m.Outcomes))}
		}

		payout, err := checkedMul(p.Amount, m.Odds[p.OutcomeIndex])
		if err != nil {
			return err
		}
		exposure, err := checkedAdd(m.PayoutByOutcome[p.OutcomeIndex], payout)
		if err != nil {
			return err
		}
		if m.BetCount == math.MaxUint32 {
			return ErrMathOverflow
		}

		addr, bump, err := e.keys.BetAddress(p.Bettor, m.Address)
		if err != nil {
			return errors.Wrap(err, "derive bet address")
		}
		b := &Bet{
			Address:      addr,
			Bettor:       p.Bettor,
			Market:       m.Address,
			OutcomeIndex: p.OutcomeIndex,
			Amount:       p.Amount,
			Payout:       payout,
			PlacedAt:     e.now(),
			Bump:         bump,
		}
		// chave já ocupada => ErrBetExists
		if err := tx.InsertBet(ctx, b); err != nil {
			return err
		}
		if err := tx.Transfer(ctx, p.Bettor, m.Vault.String(), p.Amount, p.Bettor, "stake:"+addr.String()); err != nil {
			return err
		}
		if err := record(m.Funding, p.Amount); err != nil {
			return err
		}
		m.PayoutByOutcome[p.OutcomeIndex] = exposure
		m.BetCount++

		if m.Funding.Kind() == PolicyBounded {
			if err := ensureCovered(ctx, tx, m, m.WorstCaseExposure()); err != nil {
				return err
			}
		}
		m.Version++
		if err := tx.UpdateMarket(ctx, m); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("bet placed",
		zap.String("bet", out.Address.String()),
		zap.String("market", p.Market.String()),
		zap.String("bettor", p.Bettor),
		zap.Uint8("outcome", p.OutcomeIndex),
		zap.Uint64("amount", p.Amount),
		zap.Uint64("payout", out.Payout),
	)
	return out.Clone(), nil
}

// ClaimPayout paga a aposta vencedora a partir da custódia, assinando com a
// autoridade derivada do mercado. Cada aposta é paga no máximo uma vez.
func (e *Engine) ClaimPayout(ctx context.Context, bettor string, market, bet keys.Address) (*Bet, error) {
	var out *Bet
	err := e.store.Atomically(ctx, func(tx Tx) error {
		b, err := tx.Bet(ctx, bet)
		if err != nil {
			return err
		}
		if err := e.requireBettor(b, bettor); err != nil {
			return err
		}
		if b.Market != market {
			return ErrBetMarketMismatch
		}
		m, err := tx.Market(ctx, market)
		if err != nil {
			return err
		}
		if !m.Resolved {
			return ErrMarketNotResolved
		}
		if m.Closed {
			return ErrMarketClosed
		}
		if b.Claimed {
			return ErrBetClaimed
		}
		if !b.Won(m) {
			return ErrBetNotWon
		}

		authority, err := e.marketAuthority(m)
		if err != nil {
			return err
		}
		if err := ensureCovered(ctx, tx, m, b.Payout); err != nil {
			return err
		}
		left, err := checkedSub(m.UnclaimedPayout, b.Payout)
		if err != nil {
			return err
		}
		if err := tx.Transfer(ctx, m.Vault.String(), bettor, b.Payout, authority, "payout:"+bet.String()); err != nil {
			return err
		}

		now := e.now()
		b.Claimed = true
		b.ClaimedAt = &now
		if err := tx.UpdateBet(ctx, b); err != nil {
			return err
		}
		m.UnclaimedPayout = left
		m.Version++
		if err := tx.UpdateMarket(ctx, m); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("payout claimed",
		zap.String("bet", bet.String()),
		zap.String("market", market.String()),
		zap.String("bettor", bettor),
		zap.Uint64("payout", out.Payout),
	)
	return out.Clone(), nil
}
