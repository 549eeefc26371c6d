package events

import "time"

// MarketSnapshot é a visão pública de um mercado, usada no cache, no WS e nos eventos.
// Valores monetários vão como string decimal para não perder precisão em uint64.
type MarketSnapshot struct {
	MarketID        string     `json:"market_id"`
	Admin           string     `json:"admin"`
	League          string     `json:"league"`
	Season          string     `json:"season"`
	Outcomes        []string   `json:"outcomes"`
	Odds            []uint64   `json:"odds"`
	Policy          string     `json:"policy"`
	MaxStake        string     `json:"max_stake,omitempty"`
	SlotsRemaining  *uint32    `json:"slots_remaining,omitempty"`
	Reserve         string     `json:"reserve,omitempty"`
	TotalStaked     string     `json:"total_staked,omitempty"`
	Vault           string     `json:"vault"`
	BetCount        uint32     `json:"bet_count"`
	Resolved        bool       `json:"resolved"`
	WinningIndex    *uint8     `json:"winning_index,omitempty"`
	Winner          string     `json:"winner,omitempty"`
	Closed          bool       `json:"closed"`
	UnclaimedPayout string     `json:"unclaimed_payout"`
	Version         uint64     `json:"version"` // cresce a cada transição; snapshot de versão menor é mais antigo
	CreatedAt       time.Time  `json:"created_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
}

// BetSnapshot é a visão pública de uma aposta
type BetSnapshot struct {
	BetID        string     `json:"bet_id"`
	MarketID     string     `json:"market_id"`
	Bettor       string     `json:"bettor"`
	OutcomeIndex uint8      `json:"outcome_index"`
	Amount       string     `json:"amount"`
	Payout       string     `json:"payout"`
	Claimed      bool       `json:"claimed"`
	PlacedAt     time.Time  `json:"placed_at"`
	ClaimedAt    *time.Time `json:"claimed_at,omitempty"`
}
