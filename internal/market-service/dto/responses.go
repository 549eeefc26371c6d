package dto

import (
	"strconv"

	"github.com/radieske/escrow-bet-market/internal/engine"
	"github.com/radieske/escrow-bet-market/pkg/contracts/events"
)

type OpenMarketResponse struct {
	MarketID string `json:"marketId"`
	Vault    string `json:"vault"`
	Reserve  string `json:"reserve"`
}

type PlaceBetResponse struct {
	BetID  string `json:"betId"`
	Payout string `json:"payout"`
}

type CloseMarketResponse struct {
	MarketID string `json:"marketId"`
	Drained  string `json:"drained"`
}

type EscrowResponse struct {
	MarketID  string `json:"marketId"`
	Vault     string `json:"vault"`
	Policy    string `json:"policy"`
	Balance   string `json:"balance"`
	Reserve   string `json:"reserve"`
	Exposure  string `json:"exposure"`
	Liability string `json:"liability"`
	Covered   bool   `json:"covered"`
}

// ErrorResponse é o corpo de toda resposta de erro
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func Amount(v uint64) string { return strconv.FormatUint(v, 10) }

// FromMarket monta a visão pública do mercado
func FromMarket(m *engine.Market) events.MarketSnapshot {
	s := events.MarketSnapshot{
		MarketID:        m.Address.String(),
		Admin:           m.Admin,
		League:          m.League,
		Season:          m.Season,
		Outcomes:        append([]string(nil), m.Outcomes...),
		Odds:            append([]uint64(nil), m.Odds...),
		Policy:          string(m.Funding.Kind()),
		Vault:           m.Vault.String(),
		BetCount:        m.BetCount,
		Resolved:        m.Resolved,
		Closed:          m.Closed,
		UnclaimedPayout: Amount(m.UnclaimedPayout),
		Version:         m.Version,
		CreatedAt:       m.CreatedAt,
		ResolvedAt:      m.ResolvedAt,
		ClosedAt:        m.ClosedAt,
	}
	switch f := m.Funding.(type) {
	case *engine.BoundedFunding:
		slots := f.SlotsRemaining
		s.MaxStake = Amount(f.MaxStake)
		s.SlotsRemaining = &slots
		s.Reserve = Amount(f.Reserve)
	case *engine.AccumulatingFunding:
		s.TotalStaked = Amount(f.TotalStaked)
	}
	if m.WinningIndex != nil {
		w := *m.WinningIndex
		s.WinningIndex = &w
	}
	if name, ok := m.Winner(); ok {
		s.Winner = name
	}
	return s
}

func FromBet(b *engine.Bet) *events.BetSnapshot {
	return &events.BetSnapshot{
		BetID:        b.Address.String(),
		MarketID:     b.Market.String(),
		Bettor:       b.Bettor,
		OutcomeIndex: b.OutcomeIndex,
		Amount:       Amount(b.Amount),
		Payout:       Amount(b.Payout),
		Claimed:      b.Claimed,
		PlacedAt:     b.PlacedAt,
		ClaimedAt:    b.ClaimedAt,
	}
}

func FromEscrow(r *engine.EscrowReport) EscrowResponse {
	return EscrowResponse{
		MarketID:  r.Market.String(),
		Vault:     r.Vault.String(),
		Policy:    string(r.Policy),
		Balance:   Amount(r.Balance),
		Reserve:   Amount(r.Reserve),
		Exposure:  Amount(r.Exposure),
		Liability: Amount(r.Liability),
		Covered:   r.Covered,
	}
}
