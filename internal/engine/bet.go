package engine

import (
	"time"

	"github.com/radieske/escrow-bet-market/internal/engine/keys"
)

// Bet é a aposta de um participante em um resultado de um mercado.
// O payout é fixado no momento da aposta.
type Bet struct {
	Address      keys.Address
	Bettor       string
	Market       keys.Address
	OutcomeIndex uint8
	Amount       uint64
	Payout       uint64
	Claimed      bool
	PlacedAt     time.Time
	ClaimedAt    *time.Time
	Bump         uint8
}

// Won indica se a aposta acertou o resultado de um mercado já resolvido
func (b *Bet) Won(m *Market) bool {
	return m.Resolved && m.WinningIndex != nil && *m.WinningIndex == b.OutcomeIndex
}

func (b *Bet) Clone() *Bet {
	c := *b
	if b.ClaimedAt != nil {
		t := *b.ClaimedAt
		c.ClaimedAt = &t
	}
	return &c
}
