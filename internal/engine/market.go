package engine

import (
	"fmt"
	"time"

	"github.com/radieske/escrow-bet-market/internal/engine/keys"
)

// Capacidades fixas: o registro do mercado é alocado uma vez e não cresce
const (
	MaxLeagueLength  = keys.MaxSeedLength
	MaxSeasonLength  = 20
	MaxOutcomes      = 25
	MaxOutcomeLength = 50
	MinOutcomes      = 2
)

// Market é o registro de um evento apostável com resultados e odds fixos
type Market struct {
	Address keys.Address
	Admin   string
	League  string
	Season  string

	Outcomes []string
	Odds     []uint64

	Resolved     bool
	WinningIndex *uint8
	Closed       bool

	Funding Funding

	// Contabilidade da custódia
	Vault           keys.Address
	BetCount        uint32
	PayoutByOutcome []uint64 // soma dos payouts por resultado
	UnclaimedPayout uint64   // passa a valer só após a resolução

	// Version cresce a cada transição confirmada; ordena snapshots fora do store
	Version uint64

	CreatedAt  time.Time
	ResolvedAt *time.Time
	ClosedAt   *time.Time

	Bump uint8
}

// ValidIndex diz se o índice aponta para um resultado e uma odd existentes
func (m *Market) ValidIndex(i uint8) bool {
	return int(i) < len(m.Outcomes) && int(i) < len(m.Odds)
}

// Winner retorna o nome do resultado vencedor, se resolvido
func (m *Market) Winner() (string, bool) {
	if !m.Resolved || m.WinningIndex == nil {
		return "", false
	}
	return m.Outcomes[*m.WinningIndex], true
}

// WorstCaseExposure é o maior payout agregado entre todos os resultados
func (m *Market) WorstCaseExposure() uint64 { return maxOf(m.PayoutByOutcome) }

// Clone devolve cópia profunda; os stores nunca compartilham slices com o chamador
func (m *Market) Clone() *Market {
	c := *m
	c.Outcomes = append([]string(nil), m.Outcomes...)
	c.Odds = append([]uint64(nil), m.Odds...)
	c.PayoutByOutcome = append([]uint64(nil), m.PayoutByOutcome...)
	if m.Funding != nil {
		c.Funding = m.Funding.clone()
	}
	if m.WinningIndex != nil {
		w := *m.WinningIndex
		c.WinningIndex = &w
	}
	if m.ResolvedAt != nil {
		t := *m.ResolvedAt
		c.ResolvedAt = &t
	}
	if m.ClosedAt != nil {
		t := *m.ClosedAt
		c.ClosedAt = &t
	}
	return &c
}

// validateShape checa nomes, listas e odds antes de qualquer efeito
func validateShape(league, season string, outcomes []string, odds []uint64) error {
	if league == "" || len(league) > MaxLeagueLength {
		return &Error{Code: CodeNameTooLong, Message: fmt.Sprintf("league must be 1..%d bytes", MaxLeagueLength)}
	}
	if season == "" || len(season) > MaxSeasonLength {
		return &Error{Code: CodeNameTooLong, Message: fmt.Sprintf("season must be 1..%d bytes", MaxSeasonLength)}
	}
	if len(outcomes) != len(odds) || len(outcomes) < MinOutcomes || len(outcomes) > MaxOutcomes {
		return &Error{Code: CodeInvalidOutcomes, Message: fmt.Sprintf(
			"got %d outcomes and %d odds, want equal counts in %d..%d", len(outcomes), len(odds), MinOutcomes, MaxOutcomes)}
	}
	for i, o := range outcomes {
		if o == "" || len(o) > MaxOutcomeLength {
			return &Error{Code: CodeNameTooLong, Message: fmt.Sprintf("outcome %d must be 1..%d bytes", i, MaxOutcomeLength)}
		}
	}
	for i, o := range odds {
		if o == 0 {
			return &Error{Code: CodeInvalidOdds, Message: fmt.Sprintf("odds[%d] is zero", i)}
		}
	}
	return nil
}
