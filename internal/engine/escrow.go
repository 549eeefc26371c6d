package engine

import (
	"context"
	"fmt"

	"github.com/radieske/escrow-bet-market/internal/engine/keys"
)

// EscrowReport é a fotografia da custódia de um mercado
type EscrowReport struct {
	Market   keys.Address
	Vault    keys.Address
	Policy   PolicyKind
	Balance  uint64
	Reserve  uint64 // só na política bounded
	Exposure uint64 // maior payout agregado entre os resultados
	// Liability é o que a custódia precisa cobrir agora: payouts vencedores
	// não sacados após a resolução, ou o pior caso antes dela
	Liability uint64
	Covered   bool
}

// ensureCovered garante saldo da custódia >= need
func ensureCovered(ctx context.Context, tx Tx, m *Market, need uint64) error {
	bal, err := tx.Balance(ctx, m.Vault.String())
	if err != nil {
		return err
	}
	if bal < need {
		return &Error{Code: CodeEscrowUnderfunded, Message: fmt.Sprintf("vault %d below required %d", bal, need)}
	}
	return nil
}

// liability calcula o valor que a custódia deve cobrir no estado atual
func liability(m *Market) uint64 {
	switch {
	case m.Closed:
		return 0
	case m.Resolved:
		return m.UnclaimedPayout
	default:
		return m.WorstCaseExposure()
	}
}

// EscrowReport lê saldo e obrigações da custódia de um mercado
func (e *Engine) EscrowReport(ctx context.Context, market keys.Address) (*EscrowReport, error) {
	var r *EscrowReport
	err := e.store.Atomically(ctx, func(tx Tx) error {
		m, err := tx.Market(ctx, market)
		if err != nil {
			return err
		}
		bal, err := tx.Balance(ctx, m.Vault.String())
		if err != nil {
			return err
		}
		r = &EscrowReport{
			Market:    m.Address,
			Vault:     m.Vault,
			Policy:    m.Funding.Kind(),
			Balance:   bal,
			Exposure:  m.WorstCaseExposure(),
			Liability: liability(m),
		}
		if bf, ok := m.Funding.(*BoundedFunding); ok {
			r.Reserve = bf.Reserve
		}
		r.Covered = r.Balance >= r.Liability
		return nil
	})
	return r, err
}
